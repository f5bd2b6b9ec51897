//go:build wasm_threads

package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// Atomic prefix (0xFE) opcodes
const (
	atomicBase = Opcode(PrefixAtomic) << 24

	OpAtomicNotify  Opcode = atomicBase | 0x00
	OpAtomicWait32  Opcode = atomicBase | 0x01
	OpAtomicWait64  Opcode = atomicBase | 0x02
	OpAtomicFence   Opcode = atomicBase | 0x03
	OpI32AtomicLoad Opcode = atomicBase | 0x10
)

var rmwOps = []string{"add", "sub", "and", "or", "xor", "xchg", "cmpxchg"}

func init() {
	memarg := immOf[MemArg]()

	ops.run(OpAtomicNotify, memarg, "memory.atomic.notify", "memory.atomic.wait32", "memory.atomic.wait64")
	ops.add(OpAtomicFence, "atomic.fence", func() codec.Node { return codec.Expect(0x00, "atomic.fence") })
	ops.run(OpI32AtomicLoad, memarg,
		"i32.atomic.load", "i64.atomic.load",
		"i32.atomic.load8_u", "i32.atomic.load16_u",
		"i64.atomic.load8_u", "i64.atomic.load16_u", "i64.atomic.load32_u",
		"i32.atomic.store", "i64.atomic.store",
		"i32.atomic.store8", "i32.atomic.store16",
		"i64.atomic.store8", "i64.atomic.store16", "i64.atomic.store32")

	next := OpI32AtomicLoad + 14
	for _, op := range rmwOps {
		ops.run(next, memarg,
			"i32.atomic.rmw."+op, "i64.atomic.rmw."+op,
			"i32.atomic.rmw8."+op+"_u", "i32.atomic.rmw16."+op+"_u",
			"i64.atomic.rmw8."+op+"_u", "i64.atomic.rmw16."+op+"_u", "i64.atomic.rmw32."+op+"_u")
		next += 7
	}

	limitsTable.Case(0x03, "shared", func() Limits { return new(SharedLimits) })
}

// SharedLimits bound a shared memory. Shared memories always have a maximum.
type SharedLimits struct {
	Min codec.U32
	Max codec.U32
}

func (l *SharedLimits) Fields() []codec.Field {
	return []codec.Field{{Name: "min", Node: &l.Min}, {Name: "max", Node: &l.Max}}
}

func (l *SharedLimits) Decode(c *codec.Cursor) error   { return codec.DecodeRecord(c, l.Fields()) }
func (l *SharedLimits) Encode(w *codec.Writer)         { codec.EncodeRecord(w, l.Fields()) }
func (l *SharedLimits) ByteLen() (int, bool)           { return codec.RecordLen(l.Fields()) }
func (l *SharedLimits) Discriminant() uint32           { return 0x03 }
func (l *SharedLimits) Bounds() (uint32, uint32, bool) { return uint32(l.Min), uint32(l.Max), true }
