package codec

import (
	"fmt"
	"math"

	"github.com/wippyai/wasmbin/errors"
)

// TagWidth is the encoding of a union discriminant.
type TagWidth uint8

const (
	ByteTag   TagWidth = iota // single byte
	VarintTag                 // unsigned LEB128 u32
)

type tableCase[V Variant] struct {
	name string
	make func() V
}

// Table is the closed set of cases of one union type. Tables are built
// once at package initialization; build-tagged files may add cases from
// init functions.
type Table[V Variant] struct {
	name     string
	width    TagWidth
	cases    map[uint32]tableCase[V]
	order    []uint32
	fallback func(d uint32) V
}

// NewTable creates an empty table. name is reported as the context of
// invalid discriminant errors.
func NewTable[V Variant](name string, width TagWidth) *Table[V] {
	return &Table[V]{
		name:  name,
		width: width,
		cases: make(map[uint32]tableCase[V]),
	}
}

// Case registers discriminant d. Registering a discriminant twice panics.
func (t *Table[V]) Case(d uint32, name string, mk func() V) *Table[V] {
	if _, dup := t.cases[d]; dup {
		panic(fmt.Sprintf("codec: %s: duplicate case 0x%X", t.name, d))
	}
	if t.width == ByteTag && d > math.MaxUint8 {
		panic(fmt.Sprintf("codec: %s: case 0x%X does not fit a byte tag", t.name, d))
	}
	t.cases[d] = tableCase[V]{name: name, make: mk}
	t.order = append(t.order, d)
	return t
}

// Fallback declares a catch-all for discriminants without a case.
func (t *Table[V]) Fallback(mk func(d uint32) V) *Table[V] {
	t.fallback = mk
	return t
}

// Name returns the union's name.
func (t *Table[V]) Name() string {
	return t.name
}

// Cases returns the registered discriminants in registration order.
func (t *Table[V]) Cases() []uint32 {
	out := make([]uint32, len(t.order))
	copy(out, t.order)
	return out
}

// Has reports whether d has a registered case.
func (t *Table[V]) Has(d uint32) bool {
	_, ok := t.cases[d]
	return ok
}

// CaseName returns the name registered for d.
func (t *Table[V]) CaseName(d uint32) string {
	if tc, ok := t.cases[d]; ok {
		return tc.name
	}
	if t.fallback != nil {
		return "unknown"
	}
	return fmt.Sprintf("0x%X", d)
}

// New returns a zero variant for d.
func (t *Table[V]) New(d uint32) (V, bool) {
	if tc, ok := t.cases[d]; ok {
		return tc.make(), true
	}
	if t.fallback != nil {
		return t.fallback(d), true
	}
	var zero V
	return zero, false
}

func (t *Table[V]) readTag(c *Cursor) (uint32, error) {
	if t.width == ByteTag {
		b, err := c.ReadByte()
		return uint32(b), err
	}
	return c.ReadU32()
}

func (t *Table[V]) tagLen(d uint32) int {
	if t.width == ByteTag {
		return 1
	}
	return SizeU32(d)
}

// Decode reads a discriminant and the payload of the selected case.
func (t *Table[V]) Decode(c *Cursor) (V, error) {
	at := c.Position()
	d, err := t.readTag(c)
	if err != nil {
		var zero V
		return zero, err
	}
	return t.DecodeCase(c, at, d)
}

// DecodeCase decodes the payload of case d whose discriminant was already
// consumed at offset at.
func (t *Table[V]) DecodeCase(c *Cursor, at int, d uint32) (V, error) {
	v, ok := t.New(d)
	if !ok {
		return v, errors.InvalidDiscriminant(at, t.name, d)
	}
	if err := v.Decode(c); err != nil {
		var zero V
		return zero, errors.InPath(err, errors.Variant(t.CaseName(d)))
	}
	return v, nil
}

// Encode writes the discriminant of v followed by its payload.
func (t *Table[V]) Encode(w *Writer, v V) {
	d := v.Discriminant()
	if t.width == ByteTag {
		if d > math.MaxUint8 {
			panic(errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("%s: discriminant 0x%X does not fit a byte", t.name, d)))
		}
		w.Byte(byte(d))
	} else {
		w.WriteU32(d)
	}
	v.Encode(w)
}

// ByteLen returns the encoded length of v including its discriminant.
func (t *Table[V]) ByteLen(v V) (int, bool) {
	n, ok := v.ByteLen()
	if !ok {
		return 0, false
	}
	return t.tagLen(v.Discriminant()) + n, true
}

// UnionSlot adapts a variant-typed field to the Union contract.
type UnionSlot[V Variant] struct {
	p *V
	t *Table[V]
}

// UnionOf binds the variant stored at p to table t.
func UnionOf[V Variant](p *V, t *Table[V]) *UnionSlot[V] {
	return &UnionSlot[V]{p: p, t: t}
}

func (s *UnionSlot[V]) Decode(c *Cursor) error {
	v, err := s.t.Decode(c)
	if err != nil {
		return err
	}
	*s.p = v
	return nil
}

func (s *UnionSlot[V]) Encode(w *Writer) {
	s.t.Encode(w, *s.p)
}

func (s *UnionSlot[V]) ByteLen() (int, bool) {
	return s.t.ByteLen(*s.p)
}

func (s *UnionSlot[V]) Discriminant() uint32 {
	return (*s.p).Discriminant()
}

func (s *UnionSlot[V]) CaseName() string {
	return s.t.CaseName(s.Discriminant())
}

func (s *UnionSlot[V]) Payload() Node {
	if any(*s.p) == nil {
		return nil
	}
	return *s.p
}

func (s *UnionSlot[V]) Cases() []uint32 {
	return s.t.Cases()
}

func (s *UnionSlot[V]) Select(d uint32) bool {
	v, ok := s.t.New(d)
	if ok {
		*s.p = v
	}
	return ok
}

// UnionList adapts a slice of variants to the Sequence contract.
type UnionList[V Variant] struct {
	p       *[]V
	t       *Table[V]
	counted bool
}

// UnionVec binds a count-prefixed list of variants.
func UnionVec[V Variant](p *[]V, t *Table[V]) *UnionList[V] {
	return &UnionList[V]{p: p, t: t, counted: true}
}

// UnionRun binds a list of variants that extends to the end of the
// enclosing bound, without a count.
func UnionRun[V Variant](p *[]V, t *Table[V]) *UnionList[V] {
	return &UnionList[V]{p: p, t: t}
}

func (l *UnionList[V]) Decode(c *Cursor) error {
	var items []V
	if l.counted {
		n, err := c.ReadU32()
		if err != nil {
			return err
		}
		items = make([]V, 0, min(int(n), c.Remaining()))
		for i := 0; i < int(n); i++ {
			v, err := l.t.Decode(c)
			if err != nil {
				return errors.Element(i, err)
			}
			items = append(items, v)
		}
	} else {
		for i := 0; !c.Empty(); i++ {
			v, err := l.t.Decode(c)
			if err != nil {
				return errors.Element(i, err)
			}
			items = append(items, v)
		}
	}
	*l.p = items
	return nil
}

func (l *UnionList[V]) Encode(w *Writer) {
	if l.counted {
		w.WriteLen(len(*l.p))
	}
	for _, v := range *l.p {
		l.t.Encode(w, v)
	}
}

func (l *UnionList[V]) ByteLen() (int, bool) {
	total := 0
	if l.counted {
		total = SizeLen(len(*l.p))
	}
	for _, v := range *l.p {
		n, ok := l.t.ByteLen(v)
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

func (l *UnionList[V]) Len() int {
	return len(*l.p)
}

func (l *UnionList[V]) Index(i int) Node {
	return &UnionSlot[V]{p: &(*l.p)[i], t: l.t}
}

func (l *UnionList[V]) Resize(n int) {
	*l.p = resize(*l.p, n)
}

func resize[T any](s []T, n int) []T {
	if n <= len(s) {
		return s[:n]
	}
	return append(s, make([]T, n-len(s))...)
}
