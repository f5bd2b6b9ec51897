package wasm

import (
	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
)

// SIMD prefix (0xFD) opcodes
const (
	simdBase = Opcode(PrefixSIMD) << 24

	OpV128Load          Opcode = simdBase | 0x00
	OpV128Store         Opcode = simdBase | 0x0B
	OpV128Const         Opcode = simdBase | 0x0C
	OpI8x16Shuffle      Opcode = simdBase | 0x0D
	OpI8x16Swizzle      Opcode = simdBase | 0x0E
	OpI8x16ExtractLaneS Opcode = simdBase | 0x15
	OpI16x8ExtractLaneS Opcode = simdBase | 0x18
	OpI32x4ExtractLane  Opcode = simdBase | 0x1B
	OpI64x2ExtractLane  Opcode = simdBase | 0x1D
	OpF32x4ExtractLane  Opcode = simdBase | 0x1F
	OpF64x2ExtractLane  Opcode = simdBase | 0x21
	OpI8x16Eq           Opcode = simdBase | 0x23
	OpV128Not           Opcode = simdBase | 0x4D
	OpV128Load8Lane     Opcode = simdBase | 0x54
	OpV128Load32Zero    Opcode = simdBase | 0x5C
	OpI8x16Abs          Opcode = simdBase | 0x60
	OpI16x8Abs          Opcode = simdBase | 0x80
	OpI32x4Abs          Opcode = simdBase | 0xA0
	OpI64x2Abs          Opcode = simdBase | 0xC0
	OpF32x4Abs          Opcode = simdBase | 0xE0
	OpF64x2Abs          Opcode = simdBase | 0xEC
)

var (
	laneShifts = []string{"shl", "shr_s", "shr_u"}
	satArith   = []string{"add", "add_sat_s", "add_sat_u", "sub", "sub_sat_s", "sub_sat_u"}
	minMax     = []string{"min_s", "min_u", "max_s", "max_u"}
	floatLanes = []string{"sqrt", "add", "sub", "mul", "div", "min", "max", "pmin", "pmax"}
)

func init() {
	memarg := immOf[MemArg]()
	lane2 := immOf[LaneIdx2]()
	lane4 := immOf[LaneIdx4]()
	lane8 := immOf[LaneIdx8]()
	lane16 := immOf[LaneIdx16]()

	ops.run(OpV128Load, memarg,
		"v128.load",
		"v128.load8x8_s", "v128.load8x8_u", "v128.load16x4_s", "v128.load16x4_u", "v128.load32x2_s", "v128.load32x2_u",
		"v128.load8_splat", "v128.load16_splat", "v128.load32_splat", "v128.load64_splat",
		"v128.store")
	ops.add(OpV128Const, "v128.const", immOf[V128]())
	ops.add(OpI8x16Shuffle, "i8x16.shuffle", immOf[Shuffle]())
	ops.run(OpI8x16Swizzle, nil,
		"i8x16.swizzle",
		"i8x16.splat", "i16x8.splat", "i32x4.splat", "i64x2.splat", "f32x4.splat", "f64x2.splat")

	ops.run(OpI8x16ExtractLaneS, lane16, "i8x16.extract_lane_s", "i8x16.extract_lane_u", "i8x16.replace_lane")
	ops.run(OpI16x8ExtractLaneS, lane8, "i16x8.extract_lane_s", "i16x8.extract_lane_u", "i16x8.replace_lane")
	ops.run(OpI32x4ExtractLane, lane4, "i32x4.extract_lane", "i32x4.replace_lane")
	ops.run(OpI64x2ExtractLane, lane2, "i64x2.extract_lane", "i64x2.replace_lane")
	ops.run(OpF32x4ExtractLane, lane4, "f32x4.extract_lane", "f32x4.replace_lane")
	ops.run(OpF64x2ExtractLane, lane2, "f64x2.extract_lane", "f64x2.replace_lane")

	ops.run(OpI8x16Eq, nil, prefixed("i8x16", intTests[1:])...)
	ops.run(OpI8x16Eq+10, nil, prefixed("i16x8", intTests[1:])...)
	ops.run(OpI8x16Eq+20, nil, prefixed("i32x4", intTests[1:])...)
	ops.run(OpI8x16Eq+30, nil, prefixed("f32x4", floatCmps)...)
	ops.run(OpI8x16Eq+36, nil, prefixed("f64x2", floatCmps)...)
	ops.run(OpV128Not, nil,
		"v128.not", "v128.and", "v128.andnot", "v128.or", "v128.xor", "v128.bitselect", "v128.any_true")

	ops.add(OpV128Load8Lane, "v128.load8_lane", immOf[MemLane[LaneIdx16, *LaneIdx16]]())
	ops.add(OpV128Load8Lane+1, "v128.load16_lane", immOf[MemLane[LaneIdx8, *LaneIdx8]]())
	ops.add(OpV128Load8Lane+2, "v128.load32_lane", immOf[MemLane[LaneIdx4, *LaneIdx4]]())
	ops.add(OpV128Load8Lane+3, "v128.load64_lane", immOf[MemLane[LaneIdx2, *LaneIdx2]]())
	ops.add(OpV128Load8Lane+4, "v128.store8_lane", immOf[MemLane[LaneIdx16, *LaneIdx16]]())
	ops.add(OpV128Load8Lane+5, "v128.store16_lane", immOf[MemLane[LaneIdx8, *LaneIdx8]]())
	ops.add(OpV128Load8Lane+6, "v128.store32_lane", immOf[MemLane[LaneIdx4, *LaneIdx4]]())
	ops.add(OpV128Load8Lane+7, "v128.store64_lane", immOf[MemLane[LaneIdx2, *LaneIdx2]]())
	ops.run(OpV128Load32Zero, memarg, "v128.load32_zero", "v128.load64_zero")
	ops.run(OpV128Load32Zero+2, nil, "f32x4.demote_f64x2_zero", "f64x2.promote_low_f32x4")

	// The integer shapes interleave with the float rounding ops that were
	// assigned to the gaps.
	ops.run(OpI8x16Abs, nil,
		"i8x16.abs", "i8x16.neg", "i8x16.popcnt", "i8x16.all_true", "i8x16.bitmask",
		"i8x16.narrow_i16x8_s", "i8x16.narrow_i16x8_u",
		"f32x4.ceil", "f32x4.floor", "f32x4.trunc", "f32x4.nearest")
	ops.run(OpI8x16Abs+0x0B, nil, prefixed("i8x16", append(laneShifts, satArith...))...)
	ops.run(OpI8x16Abs+0x14, nil, "f64x2.ceil", "f64x2.floor")
	ops.run(OpI8x16Abs+0x16, nil, prefixed("i8x16", minMax)...)
	ops.run(OpI8x16Abs+0x1A, nil,
		"f64x2.trunc", "i8x16.avgr_u",
		"i16x8.extadd_pairwise_i8x16_s", "i16x8.extadd_pairwise_i8x16_u",
		"i32x4.extadd_pairwise_i16x8_s", "i32x4.extadd_pairwise_i16x8_u")

	ops.run(OpI16x8Abs, nil,
		"i16x8.abs", "i16x8.neg", "i16x8.q15mulr_sat_s", "i16x8.all_true", "i16x8.bitmask",
		"i16x8.narrow_i32x4_s", "i16x8.narrow_i32x4_u",
		"i16x8.extend_low_i8x16_s", "i16x8.extend_high_i8x16_s",
		"i16x8.extend_low_i8x16_u", "i16x8.extend_high_i8x16_u")
	ops.run(OpI16x8Abs+0x0B, nil, prefixed("i16x8", append(laneShifts, satArith...))...)
	ops.add(OpI16x8Abs+0x14, "f64x2.nearest", nil)
	ops.run(OpI16x8Abs+0x15, nil, prefixed("i16x8", append([]string{"mul"}, minMax...))...)
	ops.run(OpI16x8Abs+0x1B, nil,
		"i16x8.avgr_u",
		"i16x8.extmul_low_i8x16_s", "i16x8.extmul_high_i8x16_s",
		"i16x8.extmul_low_i8x16_u", "i16x8.extmul_high_i8x16_u")

	ops.run(OpI32x4Abs, nil, "i32x4.abs", "i32x4.neg")
	ops.run(OpI32x4Abs+0x03, nil, "i32x4.all_true", "i32x4.bitmask")
	ops.run(OpI32x4Abs+0x07, nil,
		"i32x4.extend_low_i16x8_s", "i32x4.extend_high_i16x8_s",
		"i32x4.extend_low_i16x8_u", "i32x4.extend_high_i16x8_u",
		"i32x4.shl", "i32x4.shr_s", "i32x4.shr_u", "i32x4.add")
	ops.add(OpI32x4Abs+0x11, "i32x4.sub", nil)
	ops.run(OpI32x4Abs+0x15, nil, prefixed("i32x4", append([]string{"mul"}, append(minMax, "dot_i16x8_s")...))...)
	ops.run(OpI32x4Abs+0x1C, nil,
		"i32x4.extmul_low_i16x8_s", "i32x4.extmul_high_i16x8_s",
		"i32x4.extmul_low_i16x8_u", "i32x4.extmul_high_i16x8_u")

	ops.run(OpI64x2Abs, nil, "i64x2.abs", "i64x2.neg")
	ops.run(OpI64x2Abs+0x03, nil, "i64x2.all_true", "i64x2.bitmask")
	ops.run(OpI64x2Abs+0x07, nil,
		"i64x2.extend_low_i32x4_s", "i64x2.extend_high_i32x4_s",
		"i64x2.extend_low_i32x4_u", "i64x2.extend_high_i32x4_u",
		"i64x2.shl", "i64x2.shr_s", "i64x2.shr_u", "i64x2.add")
	ops.add(OpI64x2Abs+0x11, "i64x2.sub", nil)
	ops.run(OpI64x2Abs+0x15, nil,
		"i64x2.mul", "i64x2.eq", "i64x2.ne", "i64x2.lt_s", "i64x2.gt_s", "i64x2.le_s", "i64x2.ge_s",
		"i64x2.extmul_low_i32x4_s", "i64x2.extmul_high_i32x4_s",
		"i64x2.extmul_low_i32x4_u", "i64x2.extmul_high_i32x4_u")

	ops.run(OpF32x4Abs, nil, "f32x4.abs", "f32x4.neg")
	ops.run(OpF32x4Abs+0x03, nil, prefixed("f32x4", floatLanes)...)
	ops.run(OpF64x2Abs, nil, "f64x2.abs", "f64x2.neg")
	ops.run(OpF64x2Abs+0x03, nil, prefixed("f64x2", floatLanes)...)
	ops.run(OpF64x2Abs+0x0C, nil,
		"i32x4.trunc_sat_f32x4_s", "i32x4.trunc_sat_f32x4_u",
		"f32x4.convert_i32x4_s", "f32x4.convert_i32x4_u",
		"i32x4.trunc_sat_f64x2_s_zero", "i32x4.trunc_sat_f64x2_u_zero",
		"f64x2.convert_low_i32x4_s", "f64x2.convert_low_i32x4_u")
}

// V128 is the 16 byte little-endian immediate of v128.const.
type V128 [16]byte

func (v *V128) Decode(c *codec.Cursor) error {
	b, err := c.ReadBytes(len(v))
	if err != nil {
		return err
	}
	copy(v[:], b)
	return nil
}

func (v *V128) Encode(w *codec.Writer) { w.WriteBytes(v[:]) }
func (v *V128) ByteLen() (int, bool)   { return len(v), true }

func (v *V128) Generate(g *codec.Gen) {
	for i := range v {
		v[i] = byte(g.Intn(256))
	}
}

// Shuffle holds the 16 lane selectors of i8x16.shuffle. Each indexes the
// 32 lanes of the two operands.
type Shuffle [16]byte

func (s *Shuffle) Decode(c *codec.Cursor) error {
	for i := range s {
		if err := decodeLane(c, 32, "LaneIdx32", &s[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shuffle) Encode(w *codec.Writer) { w.WriteBytes(s[:]) }
func (s *Shuffle) ByteLen() (int, bool)   { return len(s), true }

func (s *Shuffle) Generate(g *codec.Gen) {
	for i := range s {
		s[i] = byte(g.Intn(32))
	}
}

func decodeLane(c *codec.Cursor, lanes byte, ty string, dst *byte) error {
	at := c.Position()
	b, err := c.ReadByte()
	if err != nil {
		return err
	}
	if b >= lanes {
		return errors.InvalidDiscriminant(at, ty, uint32(b))
	}
	*dst = b
	return nil
}

// Lane indices select one lane of a vector shape. Decoding rejects an index
// at or above the lane count.
type (
	LaneIdx2  byte
	LaneIdx4  byte
	LaneIdx8  byte
	LaneIdx16 byte
)

func (l *LaneIdx2) Decode(c *codec.Cursor) error { return decodeLane(c, 2, "LaneIdx2", (*byte)(l)) }
func (l *LaneIdx2) Encode(w *codec.Writer)       { w.Byte(byte(*l)) }
func (l *LaneIdx2) ByteLen() (int, bool)         { return 1, true }
func (l *LaneIdx2) Generate(g *codec.Gen)        { *l = LaneIdx2(g.Intn(2)) }

func (l *LaneIdx4) Decode(c *codec.Cursor) error { return decodeLane(c, 4, "LaneIdx4", (*byte)(l)) }
func (l *LaneIdx4) Encode(w *codec.Writer)       { w.Byte(byte(*l)) }
func (l *LaneIdx4) ByteLen() (int, bool)         { return 1, true }
func (l *LaneIdx4) Generate(g *codec.Gen)        { *l = LaneIdx4(g.Intn(4)) }

func (l *LaneIdx8) Decode(c *codec.Cursor) error { return decodeLane(c, 8, "LaneIdx8", (*byte)(l)) }
func (l *LaneIdx8) Encode(w *codec.Writer)       { w.Byte(byte(*l)) }
func (l *LaneIdx8) ByteLen() (int, bool)         { return 1, true }
func (l *LaneIdx8) Generate(g *codec.Gen)        { *l = LaneIdx8(g.Intn(8)) }

func (l *LaneIdx16) Decode(c *codec.Cursor) error { return decodeLane(c, 16, "LaneIdx16", (*byte)(l)) }
func (l *LaneIdx16) Encode(w *codec.Writer)       { w.Byte(byte(*l)) }
func (l *LaneIdx16) ByteLen() (int, bool)         { return 1, true }
func (l *LaneIdx16) Generate(g *codec.Gen)        { *l = LaneIdx16(g.Intn(16)) }

// MemLane is the immediate of the lane loads and stores: a memory access
// followed by the lane it reads or writes.
type MemLane[L any, P interface {
	*L
	codec.Node
}] struct {
	Mem  MemArg
	Lane L
}

func (m *MemLane[L, P]) Fields() []codec.Field {
	return []codec.Field{{Name: "memarg", Node: &m.Mem}, {Name: "lane", Node: P(&m.Lane)}}
}

func (m *MemLane[L, P]) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, m.Fields()) }
func (m *MemLane[L, P]) Encode(w *codec.Writer)       { codec.EncodeRecord(w, m.Fields()) }
func (m *MemLane[L, P]) ByteLen() (int, bool)         { return codec.RecordLen(m.Fields()) }

// V128Const returns a v128.const of v.
func V128Const(v V128) Instruction { return Instruction{Opcode: OpV128Const, Imm: &v} }
