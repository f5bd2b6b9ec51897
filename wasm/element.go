package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// Element is an element segment. The eight encodings differ in whether the
// segment is active, passive or declarative, whether an active segment
// names its table, and whether items are function indices or constant
// expressions.
type Element interface {
	codec.Variant
}

// FuncIdxs is a count-prefixed list of function indices.
type FuncIdxs = codec.Vec[FuncIdx, *FuncIdx]

// Expressions is a count-prefixed list of constant expressions.
type Expressions = codec.Vec[Expression, *Expression]

var elementTable = codec.NewTable[Element]("Element", codec.ByteTag).
	Case(0x00, "active_funcs", func() Element { return new(ElemActiveFuncs) }).
	Case(0x01, "passive_funcs", func() Element { return new(ElemPassiveFuncs) }).
	Case(0x02, "active_table_funcs", func() Element { return new(ElemActiveTableFuncs) }).
	Case(0x03, "declarative_funcs", func() Element { return new(ElemDeclarativeFuncs) }).
	Case(0x04, "active_exprs", func() Element { return new(ElemActiveExprs) }).
	Case(0x05, "passive_exprs", func() Element { return new(ElemPassiveExprs) }).
	Case(0x06, "active_table_exprs", func() Element { return new(ElemActiveTableExprs) }).
	Case(0x07, "declarative_exprs", func() Element { return new(ElemDeclarativeExprs) })

// elemKind is the only element kind, funcref.
func elemKind() codec.Node { return codec.Expect(0x00, "ElemKind") }

// ElemActiveFuncs initializes table 0 with functions.
type ElemActiveFuncs struct {
	Offset Expression
	Funcs  FuncIdxs
}

func (e *ElemActiveFuncs) Fields() []codec.Field {
	return []codec.Field{{Name: "offset", Node: &e.Offset}, {Name: "funcs", Node: &e.Funcs}}
}

func (e *ElemActiveFuncs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemActiveFuncs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemActiveFuncs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemActiveFuncs) Discriminant() uint32         { return 0x00 }

// ElemPassiveFuncs is a passive segment of functions.
type ElemPassiveFuncs struct {
	Funcs FuncIdxs
}

func (e *ElemPassiveFuncs) Fields() []codec.Field {
	return []codec.Field{{Name: "kind", Node: elemKind()}, {Name: "funcs", Node: &e.Funcs}}
}

func (e *ElemPassiveFuncs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemPassiveFuncs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemPassiveFuncs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemPassiveFuncs) Discriminant() uint32         { return 0x01 }

// ElemActiveTableFuncs initializes an explicit table with functions.
type ElemActiveTableFuncs struct {
	Offset Expression
	Funcs  FuncIdxs
	Table  TableIdx
}

func (e *ElemActiveTableFuncs) Fields() []codec.Field {
	return []codec.Field{
		{Name: "table", Node: &e.Table},
		{Name: "offset", Node: &e.Offset},
		{Name: "kind", Node: elemKind()},
		{Name: "funcs", Node: &e.Funcs},
	}
}

func (e *ElemActiveTableFuncs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemActiveTableFuncs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemActiveTableFuncs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemActiveTableFuncs) Discriminant() uint32         { return 0x02 }

// ElemDeclarativeFuncs declares functions for ref.func without placing them.
type ElemDeclarativeFuncs struct {
	Funcs FuncIdxs
}

func (e *ElemDeclarativeFuncs) Fields() []codec.Field {
	return []codec.Field{{Name: "kind", Node: elemKind()}, {Name: "funcs", Node: &e.Funcs}}
}

func (e *ElemDeclarativeFuncs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemDeclarativeFuncs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemDeclarativeFuncs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemDeclarativeFuncs) Discriminant() uint32         { return 0x03 }

// ElemActiveExprs initializes table 0 with expressions.
type ElemActiveExprs struct {
	Offset Expression
	Exprs  Expressions
}

func (e *ElemActiveExprs) Fields() []codec.Field {
	return []codec.Field{{Name: "offset", Node: &e.Offset}, {Name: "exprs", Node: &e.Exprs}}
}

func (e *ElemActiveExprs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemActiveExprs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemActiveExprs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemActiveExprs) Discriminant() uint32         { return 0x04 }

// ElemPassiveExprs is a passive segment of expressions.
type ElemPassiveExprs struct {
	Exprs Expressions
	Type  RefType
}

func (e *ElemPassiveExprs) Fields() []codec.Field {
	return []codec.Field{{Name: "type", Node: &e.Type}, {Name: "exprs", Node: &e.Exprs}}
}

func (e *ElemPassiveExprs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemPassiveExprs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemPassiveExprs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemPassiveExprs) Discriminant() uint32         { return 0x05 }

// ElemActiveTableExprs initializes an explicit table with expressions.
type ElemActiveTableExprs struct {
	Offset Expression
	Exprs  Expressions
	Table  TableIdx
	Type   RefType
}

func (e *ElemActiveTableExprs) Fields() []codec.Field {
	return []codec.Field{
		{Name: "table", Node: &e.Table},
		{Name: "offset", Node: &e.Offset},
		{Name: "type", Node: &e.Type},
		{Name: "exprs", Node: &e.Exprs},
	}
}

func (e *ElemActiveTableExprs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemActiveTableExprs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemActiveTableExprs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemActiveTableExprs) Discriminant() uint32         { return 0x06 }

// ElemDeclarativeExprs declares expressions without placing them.
type ElemDeclarativeExprs struct {
	Exprs Expressions
	Type  RefType
}

func (e *ElemDeclarativeExprs) Fields() []codec.Field {
	return []codec.Field{{Name: "type", Node: &e.Type}, {Name: "exprs", Node: &e.Exprs}}
}

func (e *ElemDeclarativeExprs) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ElemDeclarativeExprs) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ElemDeclarativeExprs) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }
func (e *ElemDeclarativeExprs) Discriminant() uint32         { return 0x07 }
