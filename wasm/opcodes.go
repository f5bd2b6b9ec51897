package wasm

import (
	"github.com/wippyai/wasmbin/codec"
)

// Control flow opcodes
const (
	OpUnreachable        Opcode = 0x00
	OpNop                Opcode = 0x01
	OpBlock              Opcode = 0x02
	OpLoop               Opcode = 0x03
	OpIf                 Opcode = 0x04
	OpElse               Opcode = 0x05
	OpTry                Opcode = 0x06
	OpCatch              Opcode = 0x07
	OpThrow              Opcode = 0x08
	OpRethrow            Opcode = 0x09
	OpThrowRef           Opcode = 0x0A
	OpEnd                Opcode = 0x0B
	OpBr                 Opcode = 0x0C
	OpBrIf               Opcode = 0x0D
	OpBrTable            Opcode = 0x0E
	OpReturn             Opcode = 0x0F
	OpCall               Opcode = 0x10
	OpCallIndirect       Opcode = 0x11
	OpReturnCall         Opcode = 0x12
	OpReturnCallIndirect Opcode = 0x13
	OpDelegate           Opcode = 0x18
	OpCatchAll           Opcode = 0x19
	OpDrop               Opcode = 0x1A
	OpSelect             Opcode = 0x1B
	OpSelectTyped        Opcode = 0x1C
	OpTryTable           Opcode = 0x1F
)

// Variable and table access opcodes
const (
	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpLocalTee  Opcode = 0x22
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24
	OpTableGet  Opcode = 0x25
	OpTableSet  Opcode = 0x26
)

// Memory opcodes
const (
	OpI32Load    Opcode = 0x28
	OpI64Load    Opcode = 0x29
	OpI32Store   Opcode = 0x36
	OpI64Store   Opcode = 0x37
	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40
)

// Constant and numeric opcodes
const (
	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF32Const Opcode = 0x43
	OpF64Const Opcode = 0x44
	OpI32Eqz   Opcode = 0x45
	OpI32Add   Opcode = 0x6A
	OpI32Sub   Opcode = 0x6B
	OpI32Mul   Opcode = 0x6C
	OpI64Add   Opcode = 0x7C
)

// Reference opcodes
const (
	OpRefNull   Opcode = 0xD0
	OpRefIsNull Opcode = 0xD1
	OpRefFunc   Opcode = 0xD2
)

// Prefix bytes
const (
	PrefixMisc   byte = 0xFC
	PrefixSIMD   byte = 0xFD
	PrefixAtomic byte = 0xFE
)

// Misc prefix (0xFC) opcodes
const (
	miscBase = Opcode(PrefixMisc) << 24

	OpI32TruncSatF32S Opcode = miscBase | 0x00
	OpMemoryInit      Opcode = miscBase | 0x08
	OpDataDrop        Opcode = miscBase | 0x09
	OpMemoryCopy      Opcode = miscBase | 0x0A
	OpMemoryFill      Opcode = miscBase | 0x0B
	OpTableInit       Opcode = miscBase | 0x0C
	OpElemDrop        Opcode = miscBase | 0x0D
	OpTableCopy       Opcode = miscBase | 0x0E
	OpTableGrow       Opcode = miscBase | 0x0F
	OpTableSize       Opcode = miscBase | 0x10
	OpTableFill       Opcode = miscBase | 0x11
)

// Shared suffixes of the numeric opcode runs.
var (
	intTests   = []string{"eqz", "eq", "ne", "lt_s", "lt_u", "gt_s", "gt_u", "le_s", "le_u", "ge_s", "ge_u"}
	floatCmps  = []string{"eq", "ne", "lt", "gt", "le", "ge"}
	intArith   = []string{"clz", "ctz", "popcnt", "add", "sub", "mul", "div_s", "div_u", "rem_s", "rem_u", "and", "or", "xor", "shl", "shr_s", "shr_u", "rotl", "rotr"}
	floatArith = []string{"abs", "neg", "ceil", "floor", "trunc", "nearest", "sqrt", "add", "sub", "mul", "div", "min", "max", "copysign"}
)

func prefixed(ty string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ty + "." + n
	}
	return out
}

func init() {
	var (
		block    = immOf[BlockType]()
		label    = immOf[LabelIdx]()
		fn       = immOf[FuncIdx]()
		indirect = immOf[CallIndirect]()
		local    = immOf[LocalIdx]()
		global   = immOf[GlobalIdx]()
		table    = immOf[TableIdx]()
		mem      = immOf[MemIdx]()
		tag      = immOf[TagIdx]()
		memarg   = immOf[MemArg]()
	)

	ops.run(OpUnreachable, nil, "unreachable", "nop")
	ops.run(OpBlock, block, "block", "loop", "if")
	ops.add(OpElse, "else", nil)
	ops.add(OpTry, "try", block)
	ops.add(OpCatch, "catch", tag)
	ops.add(OpThrow, "throw", tag)
	ops.add(OpRethrow, "rethrow", label)
	ops.add(OpThrowRef, "throw_ref", nil)
	ops.add(OpEnd, "end", nil)
	ops.run(OpBr, label, "br", "br_if")
	ops.add(OpBrTable, "br_table", immOf[BrTable]())
	ops.add(OpReturn, "return", nil)
	ops.add(OpCall, "call", fn)
	ops.add(OpCallIndirect, "call_indirect", indirect)
	ops.add(OpReturnCall, "return_call", fn)
	ops.add(OpReturnCallIndirect, "return_call_indirect", indirect)
	ops.add(OpDelegate, "delegate", label)
	ops.add(OpCatchAll, "catch_all", nil)
	ops.run(OpDrop, nil, "drop", "select")
	ops.add(OpSelectTyped, "select_typed", immOf[ValTypes]())
	ops.add(OpTryTable, "try_table", immOf[TryTable]())

	ops.run(OpLocalGet, local, "local.get", "local.set", "local.tee")
	ops.run(OpGlobalGet, global, "global.get", "global.set")
	ops.run(OpTableGet, table, "table.get", "table.set")

	ops.run(OpI32Load, memarg,
		"i32.load", "i64.load", "f32.load", "f64.load",
		"i32.load8_s", "i32.load8_u", "i32.load16_s", "i32.load16_u",
		"i64.load8_s", "i64.load8_u", "i64.load16_s", "i64.load16_u", "i64.load32_s", "i64.load32_u",
		"i32.store", "i64.store", "f32.store", "f64.store",
		"i32.store8", "i32.store16", "i64.store8", "i64.store16", "i64.store32")
	ops.run(OpMemorySize, mem, "memory.size", "memory.grow")

	ops.add(OpI32Const, "i32.const", immOf[codec.S32]())
	ops.add(OpI64Const, "i64.const", immOf[codec.S64]())
	ops.add(OpF32Const, "f32.const", immOf[codec.F32]())
	ops.add(OpF64Const, "f64.const", immOf[codec.F64]())

	ops.run(0x45, nil, prefixed("i32", intTests)...)
	ops.run(0x50, nil, prefixed("i64", intTests)...)
	ops.run(0x5B, nil, prefixed("f32", floatCmps)...)
	ops.run(0x61, nil, prefixed("f64", floatCmps)...)
	ops.run(0x67, nil, prefixed("i32", intArith)...)
	ops.run(0x79, nil, prefixed("i64", intArith)...)
	ops.run(0x8B, nil, prefixed("f32", floatArith)...)
	ops.run(0x99, nil, prefixed("f64", floatArith)...)
	ops.run(0xA7, nil,
		"i32.wrap_i64", "i32.trunc_f32_s", "i32.trunc_f32_u", "i32.trunc_f64_s", "i32.trunc_f64_u",
		"i64.extend_i32_s", "i64.extend_i32_u",
		"i64.trunc_f32_s", "i64.trunc_f32_u", "i64.trunc_f64_s", "i64.trunc_f64_u",
		"f32.convert_i32_s", "f32.convert_i32_u", "f32.convert_i64_s", "f32.convert_i64_u", "f32.demote_f64",
		"f64.convert_i32_s", "f64.convert_i32_u", "f64.convert_i64_s", "f64.convert_i64_u", "f64.promote_f32",
		"i32.reinterpret_f32", "i64.reinterpret_f64", "f32.reinterpret_i32", "f64.reinterpret_i64")
	ops.run(0xC0, nil, "i32.extend8_s", "i32.extend16_s", "i64.extend8_s", "i64.extend16_s", "i64.extend32_s")

	ops.add(OpRefNull, "ref.null", immOf[RefType]())
	ops.add(OpRefIsNull, "ref.is_null", nil)
	ops.add(OpRefFunc, "ref.func", fn)

	ops.run(OpI32TruncSatF32S, nil,
		"i32.trunc_sat_f32_s", "i32.trunc_sat_f32_u", "i32.trunc_sat_f64_s", "i32.trunc_sat_f64_u",
		"i64.trunc_sat_f32_s", "i64.trunc_sat_f32_u", "i64.trunc_sat_f64_s", "i64.trunc_sat_f64_u")
	ops.add(OpMemoryInit, "memory.init", immOf[MemoryInit]())
	ops.add(OpDataDrop, "data.drop", immOf[DataIdx]())
	ops.add(OpMemoryCopy, "memory.copy", immOf[MemoryCopy]())
	ops.add(OpMemoryFill, "memory.fill", mem)
	ops.add(OpTableInit, "table.init", immOf[TableInit]())
	ops.add(OpElemDrop, "elem.drop", immOf[ElemIdx]())
	ops.add(OpTableCopy, "table.copy", immOf[TableCopy]())
	ops.run(OpTableGrow, table, "table.grow", "table.size", "table.fill")
}
