package wasm

import (
	"fmt"
	"reflect"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
	"github.com/wippyai/wasmbin/visit"
)

// Opcode identifies an instruction. Plain opcodes are their byte value.
// Prefixed opcodes carry the prefix byte in the top 8 bits and the
// sub-opcode in the low 24.
type Opcode uint32

// Prefixed returns the opcode for sub-opcode sub under prefix.
func Prefixed(prefix byte, sub uint32) Opcode {
	return Opcode(prefix)<<24 | Opcode(sub)
}

// Prefix returns the prefix byte and sub-opcode of a prefixed opcode.
func (o Opcode) Prefix() (byte, uint32, bool) {
	if o > 0xFF {
		return byte(o >> 24), uint32(o & 0xFFFFFF), true
	}
	return 0, 0, false
}

func (o Opcode) String() string {
	if info, ok := ops.codes[o]; ok {
		return info.name
	}
	if p, sub, ok := o.Prefix(); ok {
		return fmt.Sprintf("0x%02X 0x%X", p, sub)
	}
	return fmt.Sprintf("0x%02X", uint32(o))
}

type opInfo struct {
	name    string
	imm     func() codec.Node
	immType reflect.Type
}

// opSet is the closed table of instructions. Feature files extend it from
// init functions.
type opSet struct {
	codes    map[Opcode]opInfo
	order    []Opcode
	prefixes map[byte]bool
}

var ops = &opSet{
	codes:    make(map[Opcode]opInfo),
	prefixes: make(map[byte]bool),
}

func (s *opSet) add(code Opcode, name string, imm func() codec.Node) {
	if _, dup := s.codes[code]; dup {
		panic(fmt.Sprintf("wasm: duplicate opcode %s", code))
	}
	info := opInfo{name: name, imm: imm}
	if imm != nil {
		info.immType = reflect.TypeOf(imm())
	}
	if p, _, ok := code.Prefix(); ok {
		s.prefixes[p] = true
	}
	s.codes[code] = info
	s.order = append(s.order, code)
}

// run registers consecutive opcodes starting at first, all sharing imm.
func (s *opSet) run(first Opcode, imm func() codec.Node, names ...string) {
	for i, name := range names {
		s.add(first+Opcode(i), name, imm)
	}
}

// immOf returns a constructor of fresh immediates of type T.
func immOf[T any, P interface {
	*T
	codec.Node
}]() func() codec.Node {
	return func() codec.Node { return P(new(T)) }
}

// Instruction is a single instruction with its immediate, if any.
// Imm holds a pointer node whose type is fixed by the opcode, e.g.
// *codec.S32 for i32.const or *MemArg for loads.
type Instruction struct {
	Imm    codec.Node
	Opcode Opcode
}

func (i *Instruction) info() opInfo {
	info, ok := ops.codes[i.Opcode]
	if !ok {
		panic(errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("unknown opcode %s", i.Opcode)))
	}
	if reflect.TypeOf(i.Imm) != info.immType {
		panic(errors.InvalidInput(errors.PhaseEncode,
			fmt.Sprintf("%s: immediate %T, want %v", info.name, i.Imm, info.immType)))
	}
	return info
}

func (i *Instruction) Decode(c *codec.Cursor) error {
	at := c.Position()
	b, err := c.ReadByte()
	if err != nil {
		return err
	}
	code := Opcode(b)
	if ops.prefixes[b] {
		sub, err := c.ReadU32()
		if err != nil {
			return err
		}
		if sub > 0xFFFFFF {
			return errors.InvalidDiscriminant(at, "Instruction", sub)
		}
		code = Prefixed(b, sub)
	}
	info, ok := ops.codes[code]
	if !ok {
		if p, sub, prefixed := code.Prefix(); prefixed {
			return errors.InvalidDiscriminant(at, fmt.Sprintf("Instruction 0x%02X", p), sub)
		}
		return errors.InvalidDiscriminant(at, "Instruction", uint32(b))
	}
	i.Opcode = code
	i.Imm = nil
	if info.imm == nil {
		return nil
	}
	imm := info.imm()
	if err := imm.Decode(c); err != nil {
		return errors.InPath(err, errors.Variant(info.name))
	}
	i.Imm = imm
	return nil
}

func (i *Instruction) Encode(w *codec.Writer) {
	i.info()
	if p, sub, ok := i.Opcode.Prefix(); ok {
		w.Byte(p)
		w.WriteU32(sub)
	} else {
		w.Byte(byte(i.Opcode))
	}
	if i.Imm != nil {
		i.Imm.Encode(w)
	}
}

func (i *Instruction) ByteLen() (int, bool) {
	n := 1
	if _, sub, ok := i.Opcode.Prefix(); ok {
		n += codec.SizeU32(sub)
	}
	if i.Imm == nil {
		return n, true
	}
	m, ok := i.Imm.ByteLen()
	return n + m, ok
}

func (i *Instruction) Discriminant() uint32 { return uint32(i.Opcode) }
func (i *Instruction) CaseName() string     { return i.Opcode.String() }
func (i *Instruction) Payload() codec.Node  { return i.Imm }

func (i *Instruction) Cases() []uint32 {
	out := make([]uint32, len(ops.order))
	for k, code := range ops.order {
		out[k] = uint32(code)
	}
	return out
}

func (i *Instruction) Select(d uint32) bool {
	info, ok := ops.codes[Opcode(d)]
	if !ok {
		return false
	}
	i.Opcode = Opcode(d)
	i.Imm = nil
	if info.imm != nil {
		i.Imm = info.imm()
	}
	return true
}

// Generate picks a random instruction that does not open or close a block.
func (i *Instruction) Generate(g *codec.Gen) {
	code := ops.order[g.Intn(len(ops.order))]
	if structural(code) {
		code = OpNop
	}
	i.Select(uint32(code))
	if i.Imm != nil {
		g.Fill(i.Imm)
	}
}

func structural(code Opcode) bool {
	switch code {
	case OpBlock, OpLoop, OpIf, OpElse, OpEnd,
		OpTry, OpCatch, OpCatchAll, OpDelegate, OpTryTable:
		return true
	}
	return false
}

// opens reports whether code starts a block closed by end. A try may
// instead be closed by delegate.
func opens(code Opcode) bool {
	switch code {
	case OpBlock, OpLoop, OpIf, OpTry, OpTryTable:
		return true
	}
	return false
}

// Expression is an instruction sequence terminated by end. The terminating
// end is implied: it is consumed on decode and appended on encode. Inner
// ends closing nested blocks are ordinary instructions.
type Expression []Instruction

func (e *Expression) Decode(c *codec.Cursor) error {
	var out Expression
	depth := 0
	for i := 0; ; i++ {
		b, err := c.PeekByte()
		if err != nil {
			return err
		}
		if Opcode(b) == OpEnd && depth == 0 {
			_, _ = c.ReadByte()
			break
		}
		var ins Instruction
		if err := ins.Decode(c); err != nil {
			return errors.Element(i, err)
		}
		switch {
		case opens(ins.Opcode):
			depth++
		case ins.Opcode == OpEnd:
			depth--
		case ins.Opcode == OpDelegate && depth > 0:
			depth--
		}
		out = append(out, ins)
	}
	*e = out
	return nil
}

func (e *Expression) Encode(w *codec.Writer) {
	for i := range *e {
		(*e)[i].Encode(w)
	}
	w.Byte(byte(OpEnd))
}

func (e *Expression) ByteLen() (int, bool) {
	total := 1
	for i := range *e {
		n, ok := (*e)[i].ByteLen()
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

func (e *Expression) Len() int               { return len(*e) }
func (e *Expression) Index(i int) codec.Node { return &(*e)[i] }

func (e *Expression) Resize(n int) {
	if n <= len(*e) {
		*e = (*e)[:n]
		return
	}
	*e = append(*e, make([]Instruction, n-len(*e))...)
}

// WalkChildren visits the instructions in order, keeping the label stack
// in step with the block structure. The expression itself is the
// outermost label, with Index -1.
func (e *Expression) WalkChildren(s *visit.Step) error {
	labels := s.Labels()
	mark := labels.Depth()
	defer labels.Truncate(mark)

	labels.Push(visit.Label{Op: byte(OpBlock), Index: -1})
	for i := range *e {
		ins := &(*e)[i]
		if err := s.Index(i, ins); err != nil {
			return err
		}
		switch {
		case opens(ins.Opcode):
			labels.Push(visit.Label{Op: byte(ins.Opcode), Index: i})
		case ins.Opcode == OpEnd:
			labels.Pop()
		case ins.Opcode == OpDelegate && labels.Depth() > mark+1:
			labels.Pop()
		}
	}
	return nil
}

// Generate builds a well-nested random expression.
func (e *Expression) Generate(g *codec.Gen) {
	*e = nil
	e.generate(g)
}

func (e *Expression) generate(g *codec.Gen) {
	n := g.Len()
	for k := 0; k < n; k++ {
		if g.Intn(4) == 0 && g.Nest() {
			opener := blockOpeners[g.Intn(len(blockOpeners))]
			var open Instruction
			open.Select(uint32(opener))
			g.Fill(open.Imm)
			*e = append(*e, open)
			e.generate(g)
			e.close(g, opener)
			g.Unnest()
			continue
		}
		var ins Instruction
		ins.Generate(g)
		*e = append(*e, ins)
	}
}

var blockOpeners = []Opcode{OpBlock, OpLoop, OpIf, OpTry, OpTryTable}

// close appends the optional middle arms of a block and its terminator.
func (e *Expression) close(g *codec.Gen, opener Opcode) {
	switch opener {
	case OpIf:
		if g.Bool() {
			*e = append(*e, Instruction{Opcode: OpElse})
			e.generate(g)
		}
	case OpTry:
		if g.Intn(3) == 0 {
			label := LabelIdx(g.Intn(genIndexRange))
			*e = append(*e, Instruction{Opcode: OpDelegate, Imm: &label})
			return
		}
		if g.Bool() {
			tag := TagIdx(g.Intn(genIndexRange))
			*e = append(*e, Instruction{Opcode: OpCatch, Imm: &tag})
			e.generate(g)
		}
		if g.Bool() {
			*e = append(*e, Instruction{Opcode: OpCatchAll})
			e.generate(g)
		}
	}
	*e = append(*e, Instruction{Opcode: OpEnd})
}

// MemArg is the alignment hint and offset of a memory access.
type MemArg struct {
	Align  codec.U32
	Offset codec.U32
}

func (m *MemArg) Fields() []codec.Field {
	return []codec.Field{{Name: "align", Node: &m.Align}, {Name: "offset", Node: &m.Offset}}
}

func (m *MemArg) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *MemArg) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *MemArg) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }

// BrTable is the immediate of br_table.
type BrTable struct {
	Labels  codec.Vec[LabelIdx, *LabelIdx]
	Default LabelIdx
}

func (b *BrTable) Fields() []codec.Field {
	return []codec.Field{{Name: "labels", Node: &b.Labels}, {Name: "default", Node: &b.Default}}
}

func (b *BrTable) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, b.Fields()) }
func (b *BrTable) Encode(w *codec.Writer)       { codec.EncodeRecord(w, b.Fields()) }
func (b *BrTable) ByteLen() (int, bool)         { return codec.RecordLen(b.Fields()) }

// CallIndirect is the immediate of call_indirect and return_call_indirect.
type CallIndirect struct {
	Type  TypeIdx
	Table TableIdx
}

func (ci *CallIndirect) Fields() []codec.Field {
	return []codec.Field{{Name: "type", Node: &ci.Type}, {Name: "table", Node: &ci.Table}}
}

func (ci *CallIndirect) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, ci.Fields()) }
func (ci *CallIndirect) Encode(w *codec.Writer)       { codec.EncodeRecord(w, ci.Fields()) }
func (ci *CallIndirect) ByteLen() (int, bool)         { return codec.RecordLen(ci.Fields()) }

// MemoryInit is the immediate of memory.init.
type MemoryInit struct {
	Data DataIdx
	Mem  MemIdx
}

func (m *MemoryInit) Fields() []codec.Field {
	return []codec.Field{{Name: "data", Node: &m.Data}, {Name: "mem", Node: &m.Mem}}
}

func (m *MemoryInit) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *MemoryInit) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *MemoryInit) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }

// MemoryCopy is the immediate of memory.copy.
type MemoryCopy struct {
	Dst MemIdx
	Src MemIdx
}

func (m *MemoryCopy) Fields() []codec.Field {
	return []codec.Field{{Name: "dst", Node: &m.Dst}, {Name: "src", Node: &m.Src}}
}

func (m *MemoryCopy) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *MemoryCopy) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *MemoryCopy) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }

// TableInit is the immediate of table.init.
type TableInit struct {
	Elem  ElemIdx
	Table TableIdx
}

func (t *TableInit) Fields() []codec.Field {
	return []codec.Field{{Name: "elem", Node: &t.Elem}, {Name: "table", Node: &t.Table}}
}

func (t *TableInit) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *TableInit) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *TableInit) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }

// TableCopy is the immediate of table.copy.
type TableCopy struct {
	Dst TableIdx
	Src TableIdx
}

func (t *TableCopy) Fields() []codec.Field {
	return []codec.Field{{Name: "dst", Node: &t.Dst}, {Name: "src", Node: &t.Src}}
}

func (t *TableCopy) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, t.Fields()) }
func (t *TableCopy) Encode(w *codec.Writer)       { codec.EncodeRecord(w, t.Fields()) }
func (t *TableCopy) ByteLen() (int, bool)         { return codec.RecordLen(t.Fields()) }

// Constructors for common instructions.

// Op returns an instruction without an immediate.
func Op(code Opcode) Instruction {
	return Instruction{Opcode: code}
}

func I32Const(v int32) Instruction {
	imm := codec.S32(v)
	return Instruction{Opcode: OpI32Const, Imm: &imm}
}

func I64Const(v int64) Instruction {
	imm := codec.S64(v)
	return Instruction{Opcode: OpI64Const, Imm: &imm}
}

func F32Const(v float32) Instruction {
	imm := codec.F32Of(v)
	return Instruction{Opcode: OpF32Const, Imm: &imm}
}

func F64Const(v float64) Instruction {
	imm := codec.F64Of(v)
	return Instruction{Opcode: OpF64Const, Imm: &imm}
}

func LocalGet(idx LocalIdx) Instruction   { return Instruction{Opcode: OpLocalGet, Imm: &idx} }
func LocalSet(idx LocalIdx) Instruction   { return Instruction{Opcode: OpLocalSet, Imm: &idx} }
func LocalTee(idx LocalIdx) Instruction   { return Instruction{Opcode: OpLocalTee, Imm: &idx} }
func GlobalGet(idx GlobalIdx) Instruction { return Instruction{Opcode: OpGlobalGet, Imm: &idx} }
func GlobalSet(idx GlobalIdx) Instruction { return Instruction{Opcode: OpGlobalSet, Imm: &idx} }
func Call(idx FuncIdx) Instruction        { return Instruction{Opcode: OpCall, Imm: &idx} }
func RefFunc(idx FuncIdx) Instruction     { return Instruction{Opcode: OpRefFunc, Imm: &idx} }
func Br(idx LabelIdx) Instruction         { return Instruction{Opcode: OpBr, Imm: &idx} }
func BrIf(idx LabelIdx) Instruction       { return Instruction{Opcode: OpBrIf, Imm: &idx} }
func Block(bt BlockType) Instruction      { return Instruction{Opcode: OpBlock, Imm: &bt} }
func Loop(bt BlockType) Instruction       { return Instruction{Opcode: OpLoop, Imm: &bt} }
func If(bt BlockType) Instruction         { return Instruction{Opcode: OpIf, Imm: &bt} }

// MemOp returns a load or store with the given alignment and offset.
func MemOp(code Opcode, align, offset uint32) Instruction {
	return Instruction{Opcode: code, Imm: &MemArg{Align: codec.U32(align), Offset: codec.U32(offset)}}
}
