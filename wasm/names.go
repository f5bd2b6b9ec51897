package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// NameSection is the "name" custom section: debug names for module
// entities, split into subsections that each decode lazily.
type NameSection struct {
	Subsections []NameSubsection
}

// NameSubsection is one subsection of the name section.
type NameSubsection interface {
	codec.Variant
}

var nameSubsectionTable = codec.NewTable[NameSubsection]("NameSubsection", codec.ByteTag).
	Case(0, "module", func() NameSubsection { return new(ModuleNameSubsection) }).
	Case(1, "function", func() NameSubsection { return new(FuncNameSubsection) }).
	Case(2, "local", func() NameSubsection { return new(LocalNameSubsection) }).
	Case(3, "label", func() NameSubsection { return new(LabelNameSubsection) }).
	Case(4, "type", func() NameSubsection { return new(TypeNameSubsection) }).
	Case(5, "table", func() NameSubsection { return new(TableNameSubsection) }).
	Case(6, "memory", func() NameSubsection { return new(MemoryNameSubsection) }).
	Case(7, "global", func() NameSubsection { return new(GlobalNameSubsection) }).
	Case(8, "elem", func() NameSubsection { return new(ElemNameSubsection) }).
	Case(9, "data", func() NameSubsection { return new(DataNameSubsection) }).
	Case(10, "field", func() NameSubsection { return new(FieldNameSubsection) }).
	Case(11, "tag", func() NameSubsection { return new(TagNameSubsection) })

func (n *NameSection) list() *codec.UnionList[NameSubsection] {
	return codec.UnionRun(&n.Subsections, nameSubsectionTable)
}

func (n *NameSection) CustomName() string           { return CustomName }
func (n *NameSection) Decode(c *codec.Cursor) error { return n.list().Decode(c) }
func (n *NameSection) Encode(w *codec.Writer)       { n.list().Encode(w) }
func (n *NameSection) ByteLen() (int, bool)         { return n.list().ByteLen() }
func (n *NameSection) Len() int                     { return len(n.Subsections) }
func (n *NameSection) Index(i int) codec.Node       { return n.list().Index(i) }
func (n *NameSection) Resize(k int)                 { n.list().Resize(k) }

// FuncNames returns the function name map, decoding it if needed. It
// reports false if there is no function subsection.
func (n *NameSection) FuncNames() (*FuncNameMap, bool, error) {
	for _, sub := range n.Subsections {
		if f, ok := sub.(*FuncNameSubsection); ok {
			names, err := f.Get()
			if err != nil {
				return nil, false, err
			}
			return names, true, nil
		}
	}
	return nil, false, nil
}

// NameAssoc names the entity at Index.
type NameAssoc[I comparable, P interface {
	*I
	codec.Node
}] struct {
	Index I
	Name  codec.Name
}

func (a *NameAssoc[I, P]) Fields() []codec.Field {
	return []codec.Field{{Name: "index", Node: P(&a.Index)}, {Name: "name", Node: &a.Name}}
}

func (a *NameAssoc[I, P]) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, a.Fields()) }
func (a *NameAssoc[I, P]) Encode(w *codec.Writer)       { codec.EncodeRecord(w, a.Fields()) }
func (a *NameAssoc[I, P]) ByteLen() (int, bool)         { return codec.RecordLen(a.Fields()) }

// NameMap maps indices of one space to names, in increasing index order.
type NameMap[I comparable, P interface {
	*I
	codec.Node
}] struct {
	Names codec.Vec[NameAssoc[I, P], *NameAssoc[I, P]]
}

func (m *NameMap[I, P]) Fields() []codec.Field {
	return []codec.Field{{Name: "names", Node: &m.Names}}
}

func (m *NameMap[I, P]) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *NameMap[I, P]) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *NameMap[I, P]) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }

// Lookup returns the name recorded for index i.
func (m *NameMap[I, P]) Lookup(i I) (string, bool) {
	for _, a := range m.Names {
		if a.Index == i {
			return string(a.Name), true
		}
	}
	return "", false
}

// IndirectNameAssoc holds the names of the entities nested in Index.
type IndirectNameAssoc[I comparable, P interface {
	*I
	codec.Node
}, J comparable, Q interface {
	*J
	codec.Node
}] struct {
	Index I
	Names NameMap[J, Q]
}

func (a *IndirectNameAssoc[I, P, J, Q]) Fields() []codec.Field {
	return []codec.Field{{Name: "index", Node: P(&a.Index)}, {Name: "names", Node: &a.Names}}
}

func (a *IndirectNameAssoc[I, P, J, Q]) Decode(c *codec.Cursor) error {
	return codec.DecodeRecord(c, a.Fields())
}

func (a *IndirectNameAssoc[I, P, J, Q]) Encode(w *codec.Writer) { codec.EncodeRecord(w, a.Fields()) }
func (a *IndirectNameAssoc[I, P, J, Q]) ByteLen() (int, bool)   { return codec.RecordLen(a.Fields()) }

// IndirectNameMap maps outer indices to name maps of a nested space.
type IndirectNameMap[I comparable, P interface {
	*I
	codec.Node
}, J comparable, Q interface {
	*J
	codec.Node
}] struct {
	Entries codec.Vec[IndirectNameAssoc[I, P, J, Q], *IndirectNameAssoc[I, P, J, Q]]
}

func (m *IndirectNameMap[I, P, J, Q]) Fields() []codec.Field {
	return []codec.Field{{Name: "entries", Node: &m.Entries}}
}

func (m *IndirectNameMap[I, P, J, Q]) Decode(c *codec.Cursor) error {
	return codec.DecodeRecord(c, m.Fields())
}

func (m *IndirectNameMap[I, P, J, Q]) Encode(w *codec.Writer) { codec.EncodeRecord(w, m.Fields()) }
func (m *IndirectNameMap[I, P, J, Q]) ByteLen() (int, bool)   { return codec.RecordLen(m.Fields()) }

// Name maps of each index space.
type (
	FuncNameMap   = NameMap[FuncIdx, *FuncIdx]
	LocalNameMap  = IndirectNameMap[FuncIdx, *FuncIdx, LocalIdx, *LocalIdx]
	LabelNameMap  = IndirectNameMap[FuncIdx, *FuncIdx, LabelIdx, *LabelIdx]
	TypeNameMap   = NameMap[TypeIdx, *TypeIdx]
	TableNameMap  = NameMap[TableIdx, *TableIdx]
	MemoryNameMap = NameMap[MemIdx, *MemIdx]
	GlobalNameMap = NameMap[GlobalIdx, *GlobalIdx]
	ElemNameMap   = NameMap[ElemIdx, *ElemIdx]
	DataNameMap   = NameMap[DataIdx, *DataIdx]
	FieldNameMap  = IndirectNameMap[TypeIdx, *TypeIdx, codec.U32, *codec.U32]
	TagNameMap    = NameMap[TagIdx, *TagIdx]
)

// ModuleNameSubsection holds the module name.
type ModuleNameSubsection struct {
	codec.Lazy[codec.Name, *codec.Name]
}

// FuncNameSubsection names functions.
type FuncNameSubsection struct {
	codec.Lazy[FuncNameMap, *FuncNameMap]
}

// LocalNameSubsection names the locals of each function.
type LocalNameSubsection struct {
	codec.Lazy[LocalNameMap, *LocalNameMap]
}

// LabelNameSubsection names the labels of each function.
type LabelNameSubsection struct {
	codec.Lazy[LabelNameMap, *LabelNameMap]
}

// TypeNameSubsection names types.
type TypeNameSubsection struct {
	codec.Lazy[TypeNameMap, *TypeNameMap]
}

// TableNameSubsection names tables.
type TableNameSubsection struct {
	codec.Lazy[TableNameMap, *TableNameMap]
}

// MemoryNameSubsection names memories.
type MemoryNameSubsection struct {
	codec.Lazy[MemoryNameMap, *MemoryNameMap]
}

// GlobalNameSubsection names globals.
type GlobalNameSubsection struct {
	codec.Lazy[GlobalNameMap, *GlobalNameMap]
}

// ElemNameSubsection names element segments.
type ElemNameSubsection struct {
	codec.Lazy[ElemNameMap, *ElemNameMap]
}

// DataNameSubsection names data segments.
type DataNameSubsection struct {
	codec.Lazy[DataNameMap, *DataNameMap]
}

// FieldNameSubsection names the fields of struct types.
type FieldNameSubsection struct {
	codec.Lazy[FieldNameMap, *FieldNameMap]
}

// TagNameSubsection names tags.
type TagNameSubsection struct {
	codec.Lazy[TagNameMap, *TagNameMap]
}

func (s *ModuleNameSubsection) Discriminant() uint32 { return 0 }
func (s *FuncNameSubsection) Discriminant() uint32   { return 1 }
func (s *LocalNameSubsection) Discriminant() uint32  { return 2 }
func (s *LabelNameSubsection) Discriminant() uint32  { return 3 }
func (s *TypeNameSubsection) Discriminant() uint32   { return 4 }
func (s *TableNameSubsection) Discriminant() uint32  { return 5 }
func (s *MemoryNameSubsection) Discriminant() uint32 { return 6 }
func (s *GlobalNameSubsection) Discriminant() uint32 { return 7 }
func (s *ElemNameSubsection) Discriminant() uint32   { return 8 }
func (s *DataNameSubsection) Discriminant() uint32   { return 9 }
func (s *FieldNameSubsection) Discriminant() uint32  { return 10 }
func (s *TagNameSubsection) Discriminant() uint32    { return 11 }
