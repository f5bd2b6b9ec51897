package wasm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbin/codec"
)

// SectionID is the binary identifier of a module section.
type SectionID byte

// Section IDs define the binary identifiers for each module section.
const (
	SectionCustom    SectionID = 0  // Custom section (can appear anywhere)
	SectionType      SectionID = 1  // Type section (function signatures)
	SectionImport    SectionID = 2  // Import section
	SectionFunction  SectionID = 3  // Function section (type indices)
	SectionTable     SectionID = 4  // Table section
	SectionMemory    SectionID = 5  // Memory section
	SectionGlobal    SectionID = 6  // Global section
	SectionExport    SectionID = 7  // Export section
	SectionStart     SectionID = 8  // Start section
	SectionElement   SectionID = 9  // Element section
	SectionCode      SectionID = 10 // Code section (function bodies)
	SectionData      SectionID = 11 // Data section
	SectionDataCount SectionID = 12 // Data count section (bulk memory)
	SectionTag       SectionID = 13 // Tag section (exception handling)
)

var sectionNames = [...]string{
	SectionCustom:    "custom",
	SectionType:      "type",
	SectionImport:    "import",
	SectionFunction:  "function",
	SectionTable:     "table",
	SectionMemory:    "memory",
	SectionGlobal:    "global",
	SectionExport:    "export",
	SectionStart:     "start",
	SectionElement:   "element",
	SectionCode:      "code",
	SectionData:      "data",
	SectionDataCount: "data_count",
	SectionTag:       "tag",
}

// sectionOrder is the position of each known section in a module. Tags sit
// between memories and globals, and the data count precedes the code.
var sectionOrder = [...]int{
	SectionCustom:    0,
	SectionType:      1,
	SectionImport:    2,
	SectionFunction:  3,
	SectionTable:     4,
	SectionMemory:    5,
	SectionTag:       6,
	SectionGlobal:    7,
	SectionExport:    8,
	SectionStart:     9,
	SectionElement:   10,
	SectionDataCount: 11,
	SectionCode:      12,
	SectionData:      13,
}

func (id SectionID) String() string {
	if int(id) < len(sectionNames) {
		return sectionNames[id]
	}
	return fmt.Sprintf("section(%d)", byte(id))
}

// Known reports whether id is a section this package decodes.
func (id SectionID) Known() bool {
	return int(id) < len(sectionNames)
}

// Order returns the logical position of the section in a module. Custom
// sections have order 0 and may appear anywhere. Unknown ids sort last.
func (id SectionID) Order() int {
	if int(id) < len(sectionOrder) {
		return sectionOrder[id]
	}
	return len(sectionOrder) + int(id)
}

// SectionIDFromString parses a section name as printed by String.
func SectionIDFromString(name string) (SectionID, bool) {
	for id, n := range sectionNames {
		if n == name {
			return SectionID(id), true
		}
	}
	return 0, false
}

// Section is one module section. Known sections hold their payload in a
// lazy node, so a section that is never accessed is copied through
// verbatim on encode.
type Section interface {
	codec.Variant
	ID() SectionID
}

var sectionTable = codec.NewTable[Section]("Section", codec.ByteTag).
	Case(uint32(SectionCustom), "custom", func() Section { return new(CustomSection) }).
	Case(uint32(SectionType), "type", func() Section { return new(TypeSection) }).
	Case(uint32(SectionImport), "import", func() Section { return new(ImportSection) }).
	Case(uint32(SectionFunction), "function", func() Section { return new(FunctionSection) }).
	Case(uint32(SectionTable), "table", func() Section { return new(TableSection) }).
	Case(uint32(SectionMemory), "memory", func() Section { return new(MemorySection) }).
	Case(uint32(SectionGlobal), "global", func() Section { return new(GlobalSection) }).
	Case(uint32(SectionExport), "export", func() Section { return new(ExportSection) }).
	Case(uint32(SectionStart), "start", func() Section { return new(StartSection) }).
	Case(uint32(SectionElement), "element", func() Section { return new(ElementSection) }).
	Case(uint32(SectionCode), "code", func() Section { return new(CodeSection) }).
	Case(uint32(SectionData), "data", func() Section { return new(DataSection) }).
	Case(uint32(SectionDataCount), "data_count", func() Section { return new(DataCountSection) }).
	Case(uint32(SectionTag), "tag", func() Section { return new(TagSection) }).
	Fallback(func(d uint32) Section { return &UnknownSection{RawID: SectionID(d)} })

// Section payloads.
type (
	FuncTypes  = codec.Vec[FuncType, *FuncType]
	Imports    = codec.Vec[Import, *Import]
	TypeIdxs   = codec.Vec[TypeIdx, *TypeIdx]
	TableTypes = codec.Vec[TableType, *TableType]
	MemTypes   = codec.Vec[MemType, *MemType]
	Globals    = codec.Vec[Global, *Global]
	Exports    = codec.Vec[Export, *Export]
	Codes      = codec.Vec[Code, *Code]
	DataSegs   = codec.Vec[Data, *Data]
	Tags       = codec.Vec[Tag, *Tag]
)

// Elements is the payload of the element section.
type Elements []Element

func (e *Elements) list() *codec.UnionList[Element] { return codec.UnionVec((*[]Element)(e), elementTable) }

func (e *Elements) Decode(c *codec.Cursor) error { return e.list().Decode(c) }
func (e *Elements) Encode(w *codec.Writer)       { e.list().Encode(w) }
func (e *Elements) ByteLen() (int, bool)         { return e.list().ByteLen() }
func (e *Elements) Len() int                     { return len(*e) }
func (e *Elements) Index(i int) codec.Node       { return e.list().Index(i) }
func (e *Elements) Resize(n int)                 { e.list().Resize(n) }

// TypeSection declares function signatures.
type TypeSection struct {
	codec.Lazy[FuncTypes, *FuncTypes]
}

// ImportSection declares imports.
type ImportSection struct {
	codec.Lazy[Imports, *Imports]
}

// FunctionSection declares the type of each defined function.
type FunctionSection struct {
	codec.Lazy[TypeIdxs, *TypeIdxs]
}

// TableSection declares tables.
type TableSection struct {
	codec.Lazy[TableTypes, *TableTypes]
}

// MemorySection declares memories.
type MemorySection struct {
	codec.Lazy[MemTypes, *MemTypes]
}

// GlobalSection declares globals.
type GlobalSection struct {
	codec.Lazy[Globals, *Globals]
}

// ExportSection declares exports.
type ExportSection struct {
	codec.Lazy[Exports, *Exports]
}

// StartSection names the start function.
type StartSection struct {
	codec.Lazy[FuncIdx, *FuncIdx]
}

// ElementSection declares element segments.
type ElementSection struct {
	codec.Lazy[Elements, *Elements]
}

// CodeSection holds function bodies, each lazy on its own.
type CodeSection struct {
	codec.Lazy[Codes, *Codes]
}

// DataSection declares data segments.
type DataSection struct {
	codec.Lazy[DataSegs, *DataSegs]
}

// DataCountSection declares the number of data segments.
type DataCountSection struct {
	codec.Lazy[codec.U32, *codec.U32]
}

// TagSection declares exception tags.
type TagSection struct {
	codec.Lazy[Tags, *Tags]
}

// CustomSection holds a named custom payload.
type CustomSection struct {
	codec.Lazy[Custom, *Custom]
}

func (s *TypeSection) Discriminant() uint32      { return uint32(SectionType) }
func (s *ImportSection) Discriminant() uint32    { return uint32(SectionImport) }
func (s *FunctionSection) Discriminant() uint32  { return uint32(SectionFunction) }
func (s *TableSection) Discriminant() uint32     { return uint32(SectionTable) }
func (s *MemorySection) Discriminant() uint32    { return uint32(SectionMemory) }
func (s *GlobalSection) Discriminant() uint32    { return uint32(SectionGlobal) }
func (s *ExportSection) Discriminant() uint32    { return uint32(SectionExport) }
func (s *StartSection) Discriminant() uint32     { return uint32(SectionStart) }
func (s *ElementSection) Discriminant() uint32   { return uint32(SectionElement) }
func (s *CodeSection) Discriminant() uint32      { return uint32(SectionCode) }
func (s *DataSection) Discriminant() uint32      { return uint32(SectionData) }
func (s *DataCountSection) Discriminant() uint32 { return uint32(SectionDataCount) }
func (s *TagSection) Discriminant() uint32       { return uint32(SectionTag) }
func (s *CustomSection) Discriminant() uint32    { return uint32(SectionCustom) }

func (s *TypeSection) ID() SectionID      { return SectionType }
func (s *ImportSection) ID() SectionID    { return SectionImport }
func (s *FunctionSection) ID() SectionID  { return SectionFunction }
func (s *TableSection) ID() SectionID     { return SectionTable }
func (s *MemorySection) ID() SectionID    { return SectionMemory }
func (s *GlobalSection) ID() SectionID    { return SectionGlobal }
func (s *ExportSection) ID() SectionID    { return SectionExport }
func (s *StartSection) ID() SectionID     { return SectionStart }
func (s *ElementSection) ID() SectionID   { return SectionElement }
func (s *CodeSection) ID() SectionID      { return SectionCode }
func (s *DataSection) ID() SectionID      { return SectionData }
func (s *DataCountSection) ID() SectionID { return SectionDataCount }
func (s *TagSection) ID() SectionID       { return SectionTag }
func (s *CustomSection) ID() SectionID    { return SectionCustom }

// Name returns the name of a custom section, decoding it if needed.
func (s *CustomSection) Name() (string, error) {
	c, err := s.Get()
	if err != nil {
		return "", err
	}
	return c.Name(), nil
}

// Constructors for sections built from scratch. The result is dirty and
// encodes from its value.

func NewTypeSection(types ...FuncType) *TypeSection {
	return &TypeSection{codec.NewLazy[FuncTypes](FuncTypes(types))}
}

func NewImportSection(imports ...Import) *ImportSection {
	return &ImportSection{codec.NewLazy[Imports](Imports(imports))}
}

func NewFunctionSection(types ...TypeIdx) *FunctionSection {
	return &FunctionSection{codec.NewLazy[TypeIdxs](TypeIdxs(types))}
}

func NewTableSection(tables ...TableType) *TableSection {
	return &TableSection{codec.NewLazy[TableTypes](TableTypes(tables))}
}

func NewMemorySection(mems ...MemType) *MemorySection {
	return &MemorySection{codec.NewLazy[MemTypes](MemTypes(mems))}
}

func NewGlobalSection(globals ...Global) *GlobalSection {
	return &GlobalSection{codec.NewLazy[Globals](Globals(globals))}
}

func NewExportSection(exports ...Export) *ExportSection {
	return &ExportSection{codec.NewLazy[Exports](Exports(exports))}
}

func NewStartSection(fn FuncIdx) *StartSection {
	return &StartSection{codec.NewLazy[FuncIdx](fn)}
}

func NewElementSection(elems ...Element) *ElementSection {
	return &ElementSection{codec.NewLazy[Elements](Elements(elems))}
}

func NewCodeSection(bodies ...FuncBody) *CodeSection {
	codes := make(Codes, len(bodies))
	for i, b := range bodies {
		codes[i] = NewCode(b)
	}
	return &CodeSection{codec.NewLazy[Codes](codes)}
}

func NewDataSection(segs ...Data) *DataSection {
	return &DataSection{codec.NewLazy[DataSegs](DataSegs(segs))}
}

func NewDataCountSection(n uint32) *DataCountSection {
	return &DataCountSection{codec.NewLazy[codec.U32](codec.U32(n))}
}

func NewTagSection(tags ...Tag) *TagSection {
	return &TagSection{codec.NewLazy[Tags](Tags(tags))}
}

func NewCustomSection(payload CustomPayload) *CustomSection {
	return &CustomSection{codec.NewLazy[Custom](Custom{Payload: payload})}
}

// UnknownSection is a section with an id this package does not know. Its
// payload is kept as opaque bytes and re-emitted unchanged.
type UnknownSection struct {
	Data  codec.Span
	RawID SectionID
}

func (s *UnknownSection) Decode(c *codec.Cursor) error {
	at := c.Position()
	if err := s.Data.Decode(c); err != nil {
		return err
	}
	Logger().Debug("unknown section passthrough",
		zap.Uint8("id", uint8(s.RawID)),
		zap.Int("offset", at),
		zap.Int("size", len(s.Data)),
	)
	return nil
}

func (s *UnknownSection) Encode(w *codec.Writer) { s.Data.Encode(w) }
func (s *UnknownSection) ByteLen() (int, bool)   { return s.Data.ByteLen() }
func (s *UnknownSection) Discriminant() uint32   { return uint32(s.RawID) }
func (s *UnknownSection) ID() SectionID          { return s.RawID }
