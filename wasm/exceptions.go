package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// Catch is one handler clause of try_table.
type Catch interface {
	codec.Variant
}

var catchTable = codec.NewTable[Catch]("Catch", codec.ByteTag).
	Case(0x00, "catch", func() Catch { return new(CatchTag) }).
	Case(0x01, "catch_ref", func() Catch { return new(CatchTagRef) }).
	Case(0x02, "catch_all", func() Catch { return new(CatchAll) }).
	Case(0x03, "catch_all_ref", func() Catch { return new(CatchAllRef) })

// TryTable is the immediate of try_table: the block type followed by the
// handler clauses, tried in order.
type TryTable struct {
	Block   BlockType
	Catches []Catch
}

func (t *TryTable) Fields() []codec.Field {
	return []codec.Field{
		{Name: "block", Node: &t.Block},
		{Name: "catches", Node: codec.UnionVec(&t.Catches, catchTable)},
	}
}

func (t *TryTable) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *TryTable) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *TryTable) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }

// CatchTag branches to Label with the payload of a Tag exception.
type CatchTag struct {
	Tag   TagIdx
	Label LabelIdx
}

func (k *CatchTag) Fields() []codec.Field {
	return []codec.Field{{Name: "tag", Node: &k.Tag}, {Name: "label", Node: &k.Label}}
}

func (k *CatchTag) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, k.Fields()) }
func (k *CatchTag) Encode(w *codec.Writer)       { codec.EncodeRecord(w, k.Fields()) }
func (k *CatchTag) ByteLen() (int, bool)         { return codec.RecordLen(k.Fields()) }
func (k *CatchTag) Discriminant() uint32         { return 0x00 }

// CatchTagRef is CatchTag that also pushes the exception reference.
type CatchTagRef struct {
	Tag   TagIdx
	Label LabelIdx
}

func (k *CatchTagRef) Fields() []codec.Field {
	return []codec.Field{{Name: "tag", Node: &k.Tag}, {Name: "label", Node: &k.Label}}
}

func (k *CatchTagRef) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, k.Fields()) }
func (k *CatchTagRef) Encode(w *codec.Writer)       { codec.EncodeRecord(w, k.Fields()) }
func (k *CatchTagRef) ByteLen() (int, bool)         { return codec.RecordLen(k.Fields()) }
func (k *CatchTagRef) Discriminant() uint32         { return 0x01 }

// CatchAll branches to Label on any exception.
type CatchAll struct {
	Label LabelIdx
}

func (k *CatchAll) Fields() []codec.Field        { return []codec.Field{{Name: "label", Node: &k.Label}} }
func (k *CatchAll) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, k.Fields()) }
func (k *CatchAll) Encode(w *codec.Writer)       { codec.EncodeRecord(w, k.Fields()) }
func (k *CatchAll) ByteLen() (int, bool)         { return codec.RecordLen(k.Fields()) }
func (k *CatchAll) Discriminant() uint32         { return 0x02 }

// CatchAllRef is CatchAll that also pushes the exception reference.
type CatchAllRef struct {
	Label LabelIdx
}

func (k *CatchAllRef) Fields() []codec.Field        { return []codec.Field{{Name: "label", Node: &k.Label}} }
func (k *CatchAllRef) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, k.Fields()) }
func (k *CatchAllRef) Encode(w *codec.Writer)       { codec.EncodeRecord(w, k.Fields()) }
func (k *CatchAllRef) ByteLen() (int, bool)         { return codec.RecordLen(k.Fields()) }
func (k *CatchAllRef) Discriminant() uint32         { return 0x03 }

// Throw returns a throw of the given tag.
func Throw(tag TagIdx) Instruction { return Instruction{Opcode: OpThrow, Imm: &tag} }

// Try returns the opener of a legacy try block.
func Try(bt BlockType) Instruction { return Instruction{Opcode: OpTry, Imm: &bt} }
