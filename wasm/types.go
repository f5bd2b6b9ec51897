package wasm

import (
	"fmt"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
)

// ValType is a value type code.
type ValType byte

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32     ValType = 0x7F // 32-bit integer
	ValI64     ValType = 0x7E // 64-bit integer
	ValF32     ValType = 0x7D // 32-bit float
	ValF64     ValType = 0x7C // 64-bit float
	ValV128    ValType = 0x7B // 128-bit vector
	ValFuncRef ValType = 0x70 // function reference
	ValExtern  ValType = 0x6F // external reference
)

var valTypes = []ValType{ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExtern}

// Known reports whether v is a recognised value type.
func (v ValType) Known() bool {
	switch v {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExtern:
		return true
	}
	return false
}

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	}
	return fmt.Sprintf("ValType(0x%02X)", byte(v))
}

func (v *ValType) Decode(c *codec.Cursor) error {
	at := c.Position()
	b, err := c.ReadByte()
	if err != nil {
		return err
	}
	if !ValType(b).Known() {
		return errors.InvalidDiscriminant(at, "ValType", uint32(b))
	}
	*v = ValType(b)
	return nil
}

func (v *ValType) Encode(w *codec.Writer) { w.Byte(byte(*v)) }
func (v *ValType) ByteLen() (int, bool)   { return 1, true }
func (v *ValType) Generate(g *codec.Gen)  { *v = valTypes[g.Intn(len(valTypes))] }

// ValTypes is a count-prefixed list of value types.
type ValTypes = codec.Vec[ValType, *ValType]

// RefType is a reference type code.
type RefType byte

const (
	FuncRef   RefType = RefType(ValFuncRef)
	ExternRef RefType = RefType(ValExtern)
)

func (r RefType) String() string {
	return ValType(r).String()
}

func (r *RefType) Decode(c *codec.Cursor) error {
	at := c.Position()
	b, err := c.ReadByte()
	if err != nil {
		return err
	}
	if RefType(b) != FuncRef && RefType(b) != ExternRef {
		return errors.InvalidDiscriminant(at, "RefType", uint32(b))
	}
	*r = RefType(b)
	return nil
}

func (r *RefType) Encode(w *codec.Writer) { w.Byte(byte(*r)) }
func (r *RefType) ByteLen() (int, bool)   { return 1, true }

func (r *RefType) Generate(g *codec.Gen) {
	*r = FuncRef
	if g.Bool() {
		*r = ExternRef
	}
}

// Mutability of a global.
type Mutability byte

const (
	Const Mutability = 0x00
	Var   Mutability = 0x01
)

func (m *Mutability) Decode(c *codec.Cursor) error {
	at := c.Position()
	b, err := c.ReadByte()
	if err != nil {
		return err
	}
	if b > byte(Var) {
		return errors.InvalidDiscriminant(at, "Mutability", uint32(b))
	}
	*m = Mutability(b)
	return nil
}

func (m *Mutability) Encode(w *codec.Writer) { w.Byte(byte(*m)) }
func (m *Mutability) ByteLen() (int, bool)   { return 1, true }
func (m *Mutability) Generate(g *codec.Gen)  { *m = Mutability(g.Intn(2)) }

// BlockType is the signature of a structured instruction, stored as the
// signed 33-bit value it is encoded as: BlockEmpty, a negative value type
// code, or a non-negative type index.
type BlockType int64

// BlockEmpty is the block type with no parameters and no results.
const BlockEmpty BlockType = -64

// BlockOf returns the block type producing a single value of type v.
func BlockOf(v ValType) BlockType {
	return BlockType(int64(v) - 0x80)
}

// BlockOfType returns the block type with the signature of type t.
func BlockOfType(t TypeIdx) BlockType {
	return BlockType(t)
}

// Empty reports whether b has no parameters and no results.
func (b BlockType) Empty() bool {
	return b == BlockEmpty
}

// Value returns the single result type of b.
func (b BlockType) Value() (ValType, bool) {
	if b < 0 && b != BlockEmpty {
		return ValType(b + 0x80), true
	}
	return 0, false
}

// Type returns the type index of a multi-value block.
func (b BlockType) Type() (TypeIdx, bool) {
	if b >= 0 {
		return TypeIdx(b), true
	}
	return 0, false
}

func (b *BlockType) Decode(c *codec.Cursor) error {
	at := c.Position()
	first, err := c.PeekByte()
	if err != nil {
		return err
	}
	v, err := c.ReadS33()
	if err != nil {
		return err
	}
	if v < 0 && (v < int64(BlockEmpty) || BlockType(v) != BlockEmpty && !ValType(v+0x80).Known()) {
		return errors.InvalidDiscriminant(at, "BlockType", uint32(first))
	}
	*b = BlockType(v)
	return nil
}

func (b *BlockType) Encode(w *codec.Writer) { w.WriteS64(int64(*b)) }
func (b *BlockType) ByteLen() (int, bool)   { return codec.SizeS64(int64(*b)), true }

func (b *BlockType) Generate(g *codec.Gen) {
	switch g.Intn(3) {
	case 0:
		*b = BlockEmpty
	case 1:
		*b = BlockOf(valTypes[g.Intn(len(valTypes))])
	default:
		*b = BlockOfType(TypeIdx(g.Intn(genIndexRange)))
	}
}

// FuncType is a function signature.
type FuncType struct {
	Params  ValTypes
	Results ValTypes
}

func (t *FuncType) Fields() []codec.Field {
	return []codec.Field{
		{Name: "form", Node: codec.Expect(0x60, "FuncType")},
		{Name: "params", Node: &t.Params},
		{Name: "results", Node: &t.Results},
	}
}

func (t *FuncType) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *FuncType) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *FuncType) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }

// Limits bound the size of a memory or table.
type Limits interface {
	codec.Variant
	// Bounds returns the minimum and, if present, the maximum.
	Bounds() (min, max uint32, hasMax bool)
}

var limitsTable = codec.NewTable[Limits]("Limits", codec.ByteTag).
	Case(0x00, "min", func() Limits { return new(MinLimits) }).
	Case(0x01, "min_max", func() Limits { return new(MinMaxLimits) })

// NewLimits returns limits with the given bounds.
func NewLimits(min uint32, max *uint32) Limits {
	if max == nil {
		return &MinLimits{Min: codec.U32(min)}
	}
	return &MinMaxLimits{Min: codec.U32(min), Max: codec.U32(*max)}
}

// MinLimits has a minimum only.
type MinLimits struct {
	Min codec.U32
}

func (l *MinLimits) Fields() []codec.Field {
	return []codec.Field{{Name: "min", Node: &l.Min}}
}

func (l *MinLimits) Decode(c *codec.Cursor) error   { return codec.DecodeRecord(c, l.Fields()) }
func (l *MinLimits) Encode(w *codec.Writer)         { codec.EncodeRecord(w, l.Fields()) }
func (l *MinLimits) ByteLen() (int, bool)           { return codec.RecordLen(l.Fields()) }
func (l *MinLimits) Discriminant() uint32           { return 0x00 }
func (l *MinLimits) Bounds() (uint32, uint32, bool) { return uint32(l.Min), 0, false }

// MinMaxLimits has a minimum and a maximum.
type MinMaxLimits struct {
	Min codec.U32
	Max codec.U32
}

func (l *MinMaxLimits) Fields() []codec.Field {
	return []codec.Field{{Name: "min", Node: &l.Min}, {Name: "max", Node: &l.Max}}
}

func (l *MinMaxLimits) Decode(c *codec.Cursor) error   { return codec.DecodeRecord(c, l.Fields()) }
func (l *MinMaxLimits) Encode(w *codec.Writer)         { codec.EncodeRecord(w, l.Fields()) }
func (l *MinMaxLimits) ByteLen() (int, bool)           { return codec.RecordLen(l.Fields()) }
func (l *MinMaxLimits) Discriminant() uint32           { return 0x01 }
func (l *MinMaxLimits) Bounds() (uint32, uint32, bool) { return uint32(l.Min), uint32(l.Max), true }

// MemType describes a linear memory.
type MemType struct {
	Limits Limits
}

func (m *MemType) Fields() []codec.Field {
	return []codec.Field{{Name: "limits", Node: codec.UnionOf(&m.Limits, limitsTable)}}
}

func (m *MemType) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *MemType) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *MemType) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }

// TableType describes a table.
type TableType struct {
	Elem   RefType
	Limits Limits
}

func (t *TableType) Fields() []codec.Field {
	return []codec.Field{
		{Name: "elem", Node: &t.Elem},
		{Name: "limits", Node: codec.UnionOf(&t.Limits, limitsTable)},
	}
}

func (t *TableType) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *TableType) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *TableType) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }

// GlobalType describes a global variable.
type GlobalType struct {
	Val ValType
	Mut Mutability
}

func (t *GlobalType) Fields() []codec.Field {
	return []codec.Field{{Name: "val", Node: &t.Val}, {Name: "mut", Node: &t.Mut}}
}

func (t *GlobalType) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *GlobalType) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *GlobalType) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }
