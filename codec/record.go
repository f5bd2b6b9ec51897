package codec

import (
	"github.com/wippyai/wasmbin/errors"
)

// DecodeRecord decodes fields in order, stopping at the first failure.
func DecodeRecord(c *Cursor, fields []Field) error {
	for _, f := range fields {
		if err := f.Node.Decode(c); err != nil {
			return errors.InPath(err, errors.Field(f.Name))
		}
	}
	return nil
}

// EncodeRecord encodes fields in order.
func EncodeRecord(w *Writer, fields []Field) {
	for _, f := range fields {
		f.Node.Encode(w)
	}
}

// RecordLen sums the field lengths. It reports false if any is unknown.
func RecordLen(fields []Field) (int, bool) {
	total := 0
	for _, f := range fields {
		n, ok := f.Node.ByteLen()
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}
