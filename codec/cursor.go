package codec

import (
	"github.com/wippyai/wasmbin/errors"
)

// Cursor is a bounded, forward-only view over a borrowed byte buffer.
//
// All offsets reported by a Cursor and by the errors it produces are
// absolute offsets into the buffer handed to the outermost decode, also for
// child cursors created by Sub and for lazy payloads decoded later.
type Cursor struct {
	buf  []byte
	off  int
	base int
	opts Options
}

// NewCursor creates a cursor over data with default options.
func NewCursor(data []byte) *Cursor {
	return &Cursor{buf: data}
}

// NewCursorWithOptions creates a cursor over data carrying opts to nested lazy nodes.
func NewCursorWithOptions(data []byte, opts Options) *Cursor {
	return &Cursor{buf: data, opts: opts}
}

func newCursorAt(data []byte, base int, opts Options) *Cursor {
	return &Cursor{buf: data, base: base, opts: opts}
}

// Options returns the decode options this cursor was created with.
func (c *Cursor) Options() Options {
	return c.opts
}

// Position returns the absolute offset of the next byte.
func (c *Cursor) Position() int {
	return c.base + c.off
}

// Remaining reports the bytes left before the bound.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Empty reports whether the cursor reached its bound.
func (c *Cursor) Empty() bool {
	return c.off >= len(c.buf)
}

// ReadByte reads a single byte and advances the position.
func (c *Cursor) ReadByte() (byte, error) {
	if c.off >= len(c.buf) {
		return 0, errors.UnexpectedEOF(c.Position(), 1, 0)
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if c.off >= len(c.buf) {
		return 0, errors.UnexpectedEOF(c.Position(), 1, 0)
	}
	return c.buf[c.off], nil
}

// ReadBytes reads exactly n bytes. The result aliases the underlying buffer
// and has its capacity clipped so appends never write into it.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, errors.UnexpectedEOF(c.Position(), n, c.Remaining())
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// Sub returns a child cursor bounded to the next n bytes and advances the
// receiver past them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	start := c.Position()
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return newCursorAt(b, start, c.opts), nil
}

// Rest consumes and returns everything up to the bound.
func (c *Cursor) Rest() []byte {
	b := c.buf[c.off:len(c.buf):len(c.buf)]
	c.off = len(c.buf)
	return b
}
