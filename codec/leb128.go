package codec

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/wasmbin/errors"
)

// LEB128 encoding/decoding for the WebAssembly binary format.
//
// Decoding is strict: an encoding longer than the minimal form fails with
// invalid_encoding, and a value that does not fit the target width fails
// with overflow. Encoding always produces the minimal form.

func (c *Cursor) readUnsigned(bits uint, typeName string) (uint64, error) {
	start := c.Position()
	maxBytes := int((bits + 6) / 7)
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == maxBytes-1 {
			if b&0x80 != 0 || b>>(bits-shift) != 0 {
				return 0, errors.Overflow(start, typeName)
			}
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if i > 0 && b == 0 {
				return 0, errors.InvalidEncoding(start, typeName)
			}
			return result, nil
		}
		shift += 7
	}
}

func (c *Cursor) readSigned(bits uint, typeName string) (int64, error) {
	start := c.Position()
	maxBytes := int((bits + 6) / 7)
	var result int64
	var shift uint
	var prev byte
	for i := 0; ; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == maxBytes-1 {
			if b&0x80 != 0 {
				return 0, errors.Overflow(start, typeName)
			}
			// Payload bits from the sign bit upward must all agree.
			rem := bits - shift
			mask := byte(0x7f) &^ (byte(1)<<(rem-1) - 1)
			if top := b & mask; top != 0 && top != mask {
				return 0, errors.Overflow(start, typeName)
			}
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if i > 0 && ((b == 0x00 && prev&0x40 == 0) || (b == 0x7f && prev&0x40 != 0)) {
				return 0, errors.InvalidEncoding(start, typeName)
			}
			if shift < 64 && b&0x40 != 0 {
				result |= ^int64(0) << shift
			}
			return result, nil
		}
		prev = b
	}
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	v, err := c.readUnsigned(32, "u32")
	return uint32(v), err
}

// ReadU64 reads an unsigned LEB128 encoded uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	return c.readUnsigned(64, "u64")
}

// ReadS32 reads a signed LEB128 encoded int32.
func (c *Cursor) ReadS32() (int32, error) {
	v, err := c.readSigned(32, "s32")
	return int32(v), err
}

// ReadS33 reads a signed 33-bit LEB128 value, as used by block types.
func (c *Cursor) ReadS33() (int64, error) {
	return c.readSigned(33, "s33")
}

// ReadS64 reads a signed LEB128 encoded int64.
func (c *Cursor) ReadS64() (int64, error) {
	return c.readSigned(64, "s64")
}

// ReadSpan reads a u32 length followed by that many bytes.
func (c *Cursor) ReadSpan() ([]byte, error) {
	n, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(c.Remaining()) {
		return nil, errors.UnexpectedEOF(c.Position(), int(n), c.Remaining())
	}
	return c.ReadBytes(int(n))
}

// ReadName reads a length-prefixed UTF-8 string.
func (c *Cursor) ReadName() (string, error) {
	start := c.Position()
	b, err := c.ReadSpan()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(start, b)
	}
	return string(b), nil
}

// ReadU32LE reads a little-endian uint32.
func (c *Cursor) ReadU32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64LE reads a little-endian uint64.
func (c *Cursor) ReadU64LE() (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	w.WriteU64(uint64(v))
}

// WriteU64 writes an unsigned LEB128 encoded uint64.
func (w *Writer) WriteU64(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteS32 writes a signed LEB128 encoded int32.
func (w *Writer) WriteS32(v int32) {
	w.WriteS64(int64(v))
}

// WriteS64 writes a signed LEB128 encoded int64.
func (w *Writer) WriteS64(v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && (b&0x40) == 0) || (v == -1 && (b&0x40) != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.buf.WriteByte(b)
	}
}

// SizeU64 returns the length of the minimal unsigned encoding of v.
func SizeU64(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// SizeU32 returns the length of the minimal unsigned encoding of v.
func SizeU32(v uint32) int {
	return SizeU64(uint64(v))
}

// SizeLen returns the length of the prefix WriteLen emits for n.
func SizeLen(n int) int {
	return SizeU64(uint64(n))
}

// SizeS64 returns the length of the minimal signed encoding of v.
func SizeS64(v int64) int {
	n := 1
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return n
		}
		n++
	}
}
