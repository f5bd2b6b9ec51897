package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// Import descriptor and export kinds.
const (
	KindFunc   byte = 0 // function
	KindTable  byte = 1 // table
	KindMemory byte = 2 // memory
	KindGlobal byte = 3 // global
	KindTag    byte = 4 // tag (exception handling)
)

// ImportDesc is the imported entity.
type ImportDesc interface {
	codec.Variant
}

var importDescTable = codec.NewTable[ImportDesc]("ImportDesc", codec.ByteTag).
	Case(uint32(KindFunc), "func", func() ImportDesc { return new(ImportFunc) }).
	Case(uint32(KindTable), "table", func() ImportDesc { return new(ImportTable) }).
	Case(uint32(KindMemory), "memory", func() ImportDesc { return new(ImportMemory) }).
	Case(uint32(KindGlobal), "global", func() ImportDesc { return new(ImportGlobal) }).
	Case(uint32(KindTag), "tag", func() ImportDesc { return new(ImportTag) })

// Import is one entry of the import section.
type Import struct {
	Desc   ImportDesc
	Module codec.Name
	Name   codec.Name
}

func (i *Import) Fields() []codec.Field {
	return []codec.Field{
		{Name: "module", Node: &i.Module},
		{Name: "name", Node: &i.Name},
		{Name: "desc", Node: codec.UnionOf(&i.Desc, importDescTable)},
	}
}

func (i *Import) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, i.Fields()) }
func (i *Import) Encode(w *codec.Writer)       { codec.EncodeRecord(w, i.Fields()) }
func (i *Import) ByteLen() (int, bool)         { return codec.RecordLen(i.Fields()) }

// ImportFunc imports a function of the given type.
type ImportFunc struct {
	Type TypeIdx
}

func (d *ImportFunc) Fields() []codec.Field        { return []codec.Field{{Name: "type", Node: &d.Type}} }
func (d *ImportFunc) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *ImportFunc) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *ImportFunc) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }
func (d *ImportFunc) Discriminant() uint32         { return uint32(KindFunc) }

// ImportTable imports a table.
type ImportTable struct {
	TableType
}

func (d *ImportTable) Discriminant() uint32 { return uint32(KindTable) }

// ImportMemory imports a memory.
type ImportMemory struct {
	MemType
}

func (d *ImportMemory) Discriminant() uint32 { return uint32(KindMemory) }

// ImportGlobal imports a global.
type ImportGlobal struct {
	GlobalType
}

func (d *ImportGlobal) Discriminant() uint32 { return uint32(KindGlobal) }

// ImportTag imports an exception tag.
type ImportTag struct {
	Tag
}

func (d *ImportTag) Discriminant() uint32 { return uint32(KindTag) }

// ExportDesc is the exported entity.
type ExportDesc interface {
	codec.Variant
}

var exportDescTable = codec.NewTable[ExportDesc]("ExportDesc", codec.ByteTag).
	Case(uint32(KindFunc), "func", func() ExportDesc { return new(ExportFunc) }).
	Case(uint32(KindTable), "table", func() ExportDesc { return new(ExportTable) }).
	Case(uint32(KindMemory), "memory", func() ExportDesc { return new(ExportMemory) }).
	Case(uint32(KindGlobal), "global", func() ExportDesc { return new(ExportGlobal) }).
	Case(uint32(KindTag), "tag", func() ExportDesc { return new(ExportTag) })

// Export is one entry of the export section.
type Export struct {
	Desc ExportDesc
	Name codec.Name
}

func (e *Export) Fields() []codec.Field {
	return []codec.Field{
		{Name: "name", Node: &e.Name},
		{Name: "desc", Node: codec.UnionOf(&e.Desc, exportDescTable)},
	}
}

func (e *Export) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *Export) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *Export) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }

// ExportFunc exports a function.
type ExportFunc struct {
	Func FuncIdx
}

func (d *ExportFunc) Fields() []codec.Field        { return []codec.Field{{Name: "func", Node: &d.Func}} }
func (d *ExportFunc) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *ExportFunc) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *ExportFunc) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }
func (d *ExportFunc) Discriminant() uint32         { return uint32(KindFunc) }

// ExportTable exports a table.
type ExportTable struct {
	Table TableIdx
}

func (d *ExportTable) Fields() []codec.Field        { return []codec.Field{{Name: "table", Node: &d.Table}} }
func (d *ExportTable) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *ExportTable) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *ExportTable) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }
func (d *ExportTable) Discriminant() uint32         { return uint32(KindTable) }

// ExportMemory exports a memory.
type ExportMemory struct {
	Mem MemIdx
}

func (d *ExportMemory) Fields() []codec.Field        { return []codec.Field{{Name: "mem", Node: &d.Mem}} }
func (d *ExportMemory) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *ExportMemory) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *ExportMemory) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }
func (d *ExportMemory) Discriminant() uint32         { return uint32(KindMemory) }

// ExportGlobal exports a global.
type ExportGlobal struct {
	Global GlobalIdx
}

func (d *ExportGlobal) Fields() []codec.Field        { return []codec.Field{{Name: "global", Node: &d.Global}} }
func (d *ExportGlobal) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *ExportGlobal) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *ExportGlobal) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }
func (d *ExportGlobal) Discriminant() uint32         { return uint32(KindGlobal) }

// ExportTag exports an exception tag.
type ExportTag struct {
	Tag TagIdx
}

func (d *ExportTag) Fields() []codec.Field        { return []codec.Field{{Name: "tag", Node: &d.Tag}} }
func (d *ExportTag) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *ExportTag) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *ExportTag) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }
func (d *ExportTag) Discriminant() uint32         { return uint32(KindTag) }

// Global is a global definition with its constant initializer.
type Global struct {
	Type GlobalType
	Init Expression
}

func (g *Global) Fields() []codec.Field {
	return []codec.Field{{Name: "type", Node: &g.Type}, {Name: "init", Node: &g.Init}}
}

func (g *Global) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, g.Fields()) }
func (g *Global) Encode(w *codec.Writer)       { codec.EncodeRecord(w, g.Fields()) }
func (g *Global) ByteLen() (int, bool)         { return codec.RecordLen(g.Fields()) }

// Tag is an exception tag definition.
type Tag struct {
	Type TypeIdx
}

func (t *Tag) Fields() []codec.Field {
	return []codec.Field{
		{Name: "attribute", Node: codec.Expect(0x00, "Tag")},
		{Name: "type", Node: &t.Type},
	}
}

func (t *Tag) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *Tag) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *Tag) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }

// Locals declares Count locals of one type.
type Locals struct {
	Count codec.U32
	Type  ValType
}

func (l *Locals) Fields() []codec.Field {
	return []codec.Field{{Name: "count", Node: &l.Count}, {Name: "type", Node: &l.Type}}
}

func (l *Locals) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, l.Fields()) }
func (l *Locals) Encode(w *codec.Writer)       { codec.EncodeRecord(w, l.Fields()) }
func (l *Locals) ByteLen() (int, bool)         { return codec.RecordLen(l.Fields()) }

// FuncBody is one entry of the code section.
type FuncBody struct {
	Locals codec.Vec[Locals, *Locals]
	Expr   Expression
}

func (f *FuncBody) Fields() []codec.Field {
	return []codec.Field{{Name: "locals", Node: &f.Locals}, {Name: "expr", Node: &f.Expr}}
}

func (f *FuncBody) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, f.Fields()) }
func (f *FuncBody) Encode(w *codec.Writer)       { codec.EncodeRecord(w, f.Fields()) }
func (f *FuncBody) ByteLen() (int, bool)         { return codec.RecordLen(f.Fields()) }

// Code is a function body held lazily. Each body carries its own size so
// bodies decode independently.
type Code = codec.Lazy[FuncBody, *FuncBody]

// NewCode wraps a body for insertion into the code section.
func NewCode(body FuncBody) Code {
	return codec.NewLazy[FuncBody](body)
}

// DataMode says how a data segment is placed.
type DataMode interface {
	codec.Variant
}

var dataModeTable = codec.NewTable[DataMode]("DataMode", codec.ByteTag).
	Case(0x00, "active", func() DataMode { return new(DataActive) }).
	Case(0x01, "passive", func() DataMode { return new(DataPassive) }).
	Case(0x02, "active_with_memory", func() DataMode { return new(DataActiveMemory) })

// Data is one entry of the data section.
type Data struct {
	Mode  DataMode
	Bytes codec.Span
}

func (d *Data) Fields() []codec.Field {
	return []codec.Field{
		{Name: "mode", Node: codec.UnionOf(&d.Mode, dataModeTable)},
		{Name: "bytes", Node: &d.Bytes},
	}
}

func (d *Data) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *Data) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *Data) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }

// DataActive is copied into memory 0 at Offset during instantiation.
type DataActive struct {
	Offset Expression
}

func (m *DataActive) Fields() []codec.Field        { return []codec.Field{{Name: "offset", Node: &m.Offset}} }
func (m *DataActive) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *DataActive) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *DataActive) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }
func (m *DataActive) Discriminant() uint32         { return 0x00 }

// DataPassive is only copied by memory.init.
type DataPassive struct{}

func (m *DataPassive) Fields() []codec.Field        { return nil }
func (m *DataPassive) Decode(c *codec.Cursor) error { return nil }
func (m *DataPassive) Encode(w *codec.Writer)       {}
func (m *DataPassive) ByteLen() (int, bool)         { return 0, true }
func (m *DataPassive) Discriminant() uint32         { return 0x01 }

// DataActiveMemory is an active segment for an explicit memory.
type DataActiveMemory struct {
	Mem    MemIdx
	Offset Expression
}

func (m *DataActiveMemory) Fields() []codec.Field {
	return []codec.Field{{Name: "mem", Node: &m.Mem}, {Name: "offset", Node: &m.Offset}}
}

func (m *DataActiveMemory) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *DataActiveMemory) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *DataActiveMemory) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }
func (m *DataActiveMemory) Discriminant() uint32         { return 0x02 }
