package codec

import (
	"github.com/wippyai/wasmbin/errors"
)

// Vec is a count-prefixed sequence of T. The count written on encode is
// always the live length.
type Vec[T any, P interface {
	*T
	Node
}] []T

func (v *Vec[T, P]) Decode(c *Cursor) error {
	n, err := c.ReadU32()
	if err != nil {
		return err
	}
	// Each element needs at least one byte.
	items := make([]T, 0, min(int(n), c.Remaining()))
	for i := 0; i < int(n); i++ {
		var item T
		if err := P(&item).Decode(c); err != nil {
			return errors.Element(i, err)
		}
		items = append(items, item)
	}
	*v = items
	return nil
}

func (v *Vec[T, P]) Encode(w *Writer) {
	w.WriteLen(len(*v))
	for i := range *v {
		P(&(*v)[i]).Encode(w)
	}
}

func (v *Vec[T, P]) ByteLen() (int, bool) {
	total := SizeLen(len(*v))
	for i := range *v {
		n, ok := P(&(*v)[i]).ByteLen()
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

func (v *Vec[T, P]) Len() int {
	return len(*v)
}

func (v *Vec[T, P]) Index(i int) Node {
	return P(&(*v)[i])
}

func (v *Vec[T, P]) Resize(n int) {
	*v = resize(*v, n)
}
