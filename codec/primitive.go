package codec

import (
	"bytes"
	"math"

	"github.com/wippyai/wasmbin/errors"
)

// Primitive nodes. Plain Go fields can be used as nodes through a pointer
// conversion, e.g. (*codec.U32)(&rec.Count).

// U32 is an unsigned LEB128 u32.
type U32 uint32

func (v *U32) Decode(c *Cursor) error {
	x, err := c.ReadU32()
	*v = U32(x)
	return err
}

func (v *U32) Encode(w *Writer)     { w.WriteU32(uint32(*v)) }
func (v *U32) ByteLen() (int, bool) { return SizeU32(uint32(*v)), true }
func (v *U32) Generate(g *Gen)      { *v = U32(g.Uint32()) }

// U64 is an unsigned LEB128 u64.
type U64 uint64

func (v *U64) Decode(c *Cursor) error {
	x, err := c.ReadU64()
	*v = U64(x)
	return err
}

func (v *U64) Encode(w *Writer)     { w.WriteU64(uint64(*v)) }
func (v *U64) ByteLen() (int, bool) { return SizeU64(uint64(*v)), true }
func (v *U64) Generate(g *Gen)      { *v = U64(g.Uint64()) }

// S32 is a signed LEB128 s32.
type S32 int32

func (v *S32) Decode(c *Cursor) error {
	x, err := c.ReadS32()
	*v = S32(x)
	return err
}

func (v *S32) Encode(w *Writer)     { w.WriteS32(int32(*v)) }
func (v *S32) ByteLen() (int, bool) { return SizeS64(int64(*v)), true }
func (v *S32) Generate(g *Gen)      { *v = S32(int32(g.Uint32())) }

// S64 is a signed LEB128 s64.
type S64 int64

func (v *S64) Decode(c *Cursor) error {
	x, err := c.ReadS64()
	*v = S64(x)
	return err
}

func (v *S64) Encode(w *Writer)     { w.WriteS64(int64(*v)) }
func (v *S64) ByteLen() (int, bool) { return SizeS64(int64(*v)), true }
func (v *S64) Generate(g *Gen)      { *v = S64(int64(g.Uint64())) }

// Byte is a single raw byte.
type Byte byte

func (v *Byte) Decode(c *Cursor) error {
	x, err := c.ReadByte()
	*v = Byte(x)
	return err
}

func (v *Byte) Encode(w *Writer)     { w.Byte(byte(*v)) }
func (v *Byte) ByteLen() (int, bool) { return 1, true }
func (v *Byte) Generate(g *Gen)      { *v = Byte(g.Intn(256)) }

// F32 is a little-endian IEEE 754 single, held as raw bits so NaN payloads
// survive a round trip.
type F32 uint32

// F32Of returns the bits of f.
func F32Of(f float32) F32 { return F32(math.Float32bits(f)) }

// Float returns the value as a float32.
func (v F32) Float() float32 { return math.Float32frombits(uint32(v)) }

func (v *F32) Decode(c *Cursor) error {
	x, err := c.ReadU32LE()
	*v = F32(x)
	return err
}

func (v *F32) Encode(w *Writer)     { w.WriteU32LE(uint32(*v)) }
func (v *F32) ByteLen() (int, bool) { return 4, true }
func (v *F32) Generate(g *Gen)      { *v = F32(g.Uint32()) }

// F64 is a little-endian IEEE 754 double, held as raw bits.
type F64 uint64

// F64Of returns the bits of f.
func F64Of(f float64) F64 { return F64(math.Float64bits(f)) }

// Float returns the value as a float64.
func (v F64) Float() float64 { return math.Float64frombits(uint64(v)) }

func (v *F64) Decode(c *Cursor) error {
	x, err := c.ReadU64LE()
	*v = F64(x)
	return err
}

func (v *F64) Encode(w *Writer)     { w.WriteU64LE(uint64(*v)) }
func (v *F64) ByteLen() (int, bool) { return 8, true }
func (v *F64) Generate(g *Gen)      { *v = F64(g.Uint64()) }

// Name is a length-prefixed UTF-8 string.
type Name string

func (v *Name) Decode(c *Cursor) error {
	s, err := c.ReadName()
	*v = Name(s)
	return err
}

func (v *Name) Encode(w *Writer)     { w.WriteName(string(*v)) }
func (v *Name) ByteLen() (int, bool) { return SizeLen(len(*v)) + len(*v), true }
func (v *Name) Generate(g *Gen)      { *v = Name(g.String()) }

// Span is a length-prefixed opaque byte region. Decoded spans alias the input.
type Span []byte

func (v *Span) Decode(c *Cursor) error {
	b, err := c.ReadSpan()
	if err != nil {
		return err
	}
	*v = b
	return nil
}

func (v *Span) Encode(w *Writer)     { w.WriteSpan(*v) }
func (v *Span) ByteLen() (int, bool) { return SizeLen(len(*v)) + len(*v), true }
func (v *Span) Generate(g *Gen)      { *v = g.Bytes() }

// Raw is the unprefixed remainder of the enclosing bound.
type Raw []byte

func (v *Raw) Decode(c *Cursor) error {
	*v = c.Rest()
	return nil
}

func (v *Raw) Encode(w *Writer)     { w.WriteBytes(*v) }
func (v *Raw) ByteLen() (int, bool) { return len(*v), true }
func (v *Raw) Generate(g *Gen)      { *v = g.Bytes() }

// expect is a fixed byte that carries no state.
type expect struct {
	context string
	value   byte
}

// Expect returns a node for a fixed byte, such as a type form marker.
// Any other byte fails with invalid_discriminant.
func Expect(value byte, context string) Node {
	return expect{context: context, value: value}
}

func (e expect) Decode(c *Cursor) error {
	at := c.Position()
	b, err := c.ReadByte()
	if err != nil {
		return err
	}
	if b != e.value {
		return errors.InvalidDiscriminant(at, e.context, uint32(b))
	}
	return nil
}

func (e expect) Encode(w *Writer)     { w.Byte(e.value) }
func (e expect) ByteLen() (int, bool) { return 1, true }
func (e expect) Generate(*Gen)        {}

// signature is a fixed multi-byte constant.
type signature struct {
	want []byte
	kind errors.Kind
}

// Signature returns a node for a fixed byte sequence. A mismatch fails
// with kind.
func Signature(want []byte, kind errors.Kind) Node {
	return signature{want: want, kind: kind}
}

func (s signature) Decode(c *Cursor) error {
	at := c.Position()
	got, err := c.ReadBytes(len(s.want))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, s.want) {
		return errors.Mismatch(at, s.kind, s.want, got)
	}
	return nil
}

func (s signature) Encode(w *Writer)     { w.WriteBytes(s.want) }
func (s signature) ByteLen() (int, bool) { return len(s.want), true }
func (s signature) Generate(*Gen)        {}
