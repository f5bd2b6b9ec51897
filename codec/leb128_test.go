package codec_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
)

func TestReadU32(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    uint32
		wantErr *errors.Error
	}{
		{"zero", []byte{0x00}, 0, nil},
		{"one byte max", []byte{0x7f}, 127, nil},
		{"two bytes", []byte{0x80, 0x01}, 128, nil},
		{"max", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, math.MaxUint32, nil},
		{"zero padded", []byte{0x80, 0x00}, 0, errors.ErrInvalidEncoding},
		{"one padded twice", []byte{0x81, 0x80, 0x00}, 0, errors.ErrInvalidEncoding},
		{"five byte padding", []byte{0x80, 0x80, 0x80, 0x80, 0x00}, 0, errors.ErrInvalidEncoding},
		{"unused high bits", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, 0, errors.ErrOverflow},
		{"too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, 0, errors.ErrOverflow},
		{"truncated", []byte{0x80}, 0, errors.ErrUnexpectedEOF},
		{"empty", nil, 0, errors.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.NewCursor(tt.input).ReadU32()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadU32(% x) error = %v, want %v", tt.input, err, tt.wantErr.Kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadU32(% x): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ReadU32(% x) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestReadSigned(t *testing.T) {
	tests := []struct {
		name    string
		read    func(*codec.Cursor) (int64, error)
		input   []byte
		want    int64
		wantErr *errors.Error
	}{
		{"s32 minus one", s32, []byte{0x7f}, -1, nil},
		{"s32 minus 64", s32, []byte{0x40}, -64, nil},
		{"s32 plus 64", s32, []byte{0xc0, 0x00}, 64, nil},
		{"s32 minus 128", s32, []byte{0x80, 0x7f}, -128, nil},
		{"s32 max", s32, []byte{0xff, 0xff, 0xff, 0xff, 0x07}, math.MaxInt32, nil},
		{"s32 min", s32, []byte{0x80, 0x80, 0x80, 0x80, 0x78}, math.MinInt32, nil},
		{"s32 negative padded", s32, []byte{0xc0, 0x7f}, 0, errors.ErrInvalidEncoding},
		{"s32 positive padded", s32, []byte{0x81, 0x00}, 0, errors.ErrInvalidEncoding},
		{"s32 out of range", s32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0, errors.ErrOverflow},
		{"s32 too long", s32, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, 0, errors.ErrOverflow},
		{"s33 u32 max", s33, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, math.MaxUint32, nil},
		{"s33 empty block", s33, []byte{0x40}, -64, nil},
		{"s33 out of range", s33, []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, 0, errors.ErrOverflow},
		{"s64 max", s64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}, math.MaxInt64, nil},
		{"s64 min", s64, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}, math.MinInt64, nil},
		{"s64 bad tail", s64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, 0, errors.ErrOverflow},
		{"s64 padded", s64, []byte{0xff, 0x7f}, 0, errors.ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.read(codec.NewCursor(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("read(% x) error = %v, want %v", tt.input, err, tt.wantErr.Kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("read(% x): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("read(% x) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func s32(c *codec.Cursor) (int64, error) {
	v, err := c.ReadS32()
	return int64(v), err
}

func s33(c *codec.Cursor) (int64, error) { return c.ReadS33() }

func s64(c *codec.Cursor) (int64, error) { return c.ReadS64() }

func TestWriteCanonical(t *testing.T) {
	unsigned := []uint64{0, 1, 63, 64, 127, 128, 16383, 16384, math.MaxUint32, math.MaxUint64}
	for _, v := range unsigned {
		w := codec.NewWriter()
		w.WriteU64(v)
		if got := w.Len(); got != codec.SizeU64(v) {
			t.Errorf("WriteU64(%d) wrote %d bytes, SizeU64 = %d", v, got, codec.SizeU64(v))
		}
		got, err := codec.NewCursor(w.Bytes()).ReadU64()
		if err != nil {
			t.Fatalf("ReadU64(WriteU64(%d)): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}

	signed := []int64{0, 1, -1, 63, 64, -64, -65, math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for _, v := range signed {
		w := codec.NewWriter()
		w.WriteS64(v)
		if got := w.Len(); got != codec.SizeS64(v) {
			t.Errorf("WriteS64(%d) wrote %d bytes, SizeS64 = %d", v, got, codec.SizeS64(v))
		}
		got, err := codec.NewCursor(w.Bytes()).ReadS64()
		if err != nil {
			t.Fatalf("ReadS64(WriteS64(%d)): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

func TestOverlongRejectedOneByteLonger(t *testing.T) {
	// Every value gets its minimal form plus one continuation byte.
	for _, v := range []uint32{0, 5, 127, 300, 1 << 20} {
		w := codec.NewWriter()
		w.WriteU32(v)
		enc := w.Bytes()
		if len(enc) == 5 {
			continue
		}
		padded := append([]byte(nil), enc...)
		padded[len(padded)-1] |= 0x80
		padded = append(padded, 0x00)

		_, err := codec.NewCursor(padded).ReadU32()
		if !errors.Is(err, errors.ErrInvalidEncoding) {
			t.Errorf("ReadU32(% x) error = %v, want invalid_encoding", padded, err)
		}
	}
}

func TestReadName(t *testing.T) {
	c := codec.NewCursor([]byte{0x03, 'a', 's', 'm', 0x02, 0xff, 0xfe})
	s, err := c.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if s != "asm" {
		t.Errorf("ReadName = %q, want asm", s)
	}
	_, err = c.ReadName()
	if !errors.Is(err, errors.ErrInvalidUTF8) {
		t.Errorf("ReadName error = %v, want invalid_utf8", err)
	}
}

func TestReadSpanShort(t *testing.T) {
	_, err := codec.NewCursor([]byte{0x05, 1, 2}).ReadSpan()
	if !errors.Is(err, errors.ErrUnexpectedEOF) {
		t.Errorf("ReadSpan error = %v, want unexpected_eof", err)
	}
}

func TestFixedWidth(t *testing.T) {
	w := codec.NewWriter()
	w.WriteU32LE(0x01020304)
	w.WriteU64LE(0x0102030405060708)
	want := []byte{4, 3, 2, 1, 8, 7, 6, 5, 4, 3, 2, 1}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("encoded % x, want % x", w.Bytes(), want)
	}

	c := codec.NewCursor(want)
	a, err := c.ReadU32LE()
	if err != nil || a != 0x01020304 {
		t.Errorf("ReadU32LE = %x, %v", a, err)
	}
	b, err := c.ReadU64LE()
	if err != nil || b != 0x0102030405060708 {
		t.Errorf("ReadU64LE = %x, %v", b, err)
	}
	if _, err := c.ReadU32LE(); !errors.Is(err, errors.ErrUnexpectedEOF) {
		t.Errorf("ReadU32LE past end error = %v", err)
	}
}

func TestNaNPayloadPreserved(t *testing.T) {
	// Signalling NaN with a payload that float conversion could quieten.
	in := []byte{0x01, 0x00, 0x80, 0x7f}
	var f codec.F32
	if err := f.Decode(codec.NewCursor(in)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	w := codec.NewWriter()
	f.Encode(w)
	if !bytes.Equal(w.Bytes(), in) {
		t.Errorf("encoded % x, want % x", w.Bytes(), in)
	}
	if !math.IsNaN(float64(f.Float())) {
		t.Errorf("Float() = %v, want NaN", f.Float())
	}
}

func TestWriteLenPanicsPastU32(t *testing.T) {
	if math.MaxInt == math.MaxInt32 {
		t.Skip("int is 32 bits")
	}
	defer func() {
		if recover() == nil {
			t.Error("WriteLen should panic for lengths above u32")
		}
	}()
	n := uint64(math.MaxUint32) + 1
	codec.NewWriter().WriteLen(int(n))
}
