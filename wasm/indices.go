package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// Index types are u32 on the wire. Each is a distinct type so visitors can
// select one index space, e.g. every FuncIdx when renumbering functions.

// genIndexRange bounds generated indices so random trees stay small.
const genIndexRange = 16

// TypeIdx indexes the type section.
type TypeIdx uint32

func (i *TypeIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *TypeIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *TypeIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *TypeIdx) Generate(g *codec.Gen)        { *i = TypeIdx(g.Intn(genIndexRange)) }

// FuncIdx indexes the function index space, imports first.
type FuncIdx uint32

func (i *FuncIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *FuncIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *FuncIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *FuncIdx) Generate(g *codec.Gen)        { *i = FuncIdx(g.Intn(genIndexRange)) }

// TableIdx indexes the table index space.
type TableIdx uint32

func (i *TableIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *TableIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *TableIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *TableIdx) Generate(g *codec.Gen)        { *i = TableIdx(g.Intn(genIndexRange)) }

// MemIdx indexes the memory index space.
type MemIdx uint32

func (i *MemIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *MemIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *MemIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *MemIdx) Generate(g *codec.Gen)        { *i = MemIdx(g.Intn(genIndexRange)) }

// GlobalIdx indexes the global index space.
type GlobalIdx uint32

func (i *GlobalIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *GlobalIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *GlobalIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *GlobalIdx) Generate(g *codec.Gen)        { *i = GlobalIdx(g.Intn(genIndexRange)) }

// ElemIdx indexes the element segments.
type ElemIdx uint32

func (i *ElemIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *ElemIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *ElemIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *ElemIdx) Generate(g *codec.Gen)        { *i = ElemIdx(g.Intn(genIndexRange)) }

// DataIdx indexes the data segments.
type DataIdx uint32

func (i *DataIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *DataIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *DataIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *DataIdx) Generate(g *codec.Gen)        { *i = DataIdx(g.Intn(genIndexRange)) }

// LocalIdx indexes the locals of a function, parameters first.
type LocalIdx uint32

func (i *LocalIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *LocalIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *LocalIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *LocalIdx) Generate(g *codec.Gen)        { *i = LocalIdx(g.Intn(genIndexRange)) }

// LabelIdx indexes the enclosing blocks, innermost first.
type LabelIdx uint32

func (i *LabelIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *LabelIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *LabelIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *LabelIdx) Generate(g *codec.Gen)        { *i = LabelIdx(g.Intn(genIndexRange)) }

// TagIdx indexes the tag index space.
type TagIdx uint32

func (i *TagIdx) Decode(c *codec.Cursor) error { return (*codec.U32)(i).Decode(c) }
func (i *TagIdx) Encode(w *codec.Writer)       { w.WriteU32(uint32(*i)) }
func (i *TagIdx) ByteLen() (int, bool)         { return codec.SizeU32(uint32(*i)), true }
func (i *TagIdx) Generate(g *codec.Gen)        { *i = TagIdx(g.Intn(genIndexRange)) }
