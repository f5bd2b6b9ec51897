package codec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbin/errors"
)

// State is the lifecycle state of a lazy node.
type State uint8

const (
	// Dirty holds a value that must be encoded afresh. The zero Lazy is
	// Dirty with the zero value.
	Dirty State = iota
	// Undecoded holds only the original bytes.
	Undecoded
	// Clean holds the decoded value and the original bytes it came from.
	Clean
	// Detached holds a decoded value whose original bytes were released
	// under DropRaw. It encodes like Dirty.
	Detached
)

func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Undecoded:
		return "undecoded"
	case Clean:
		return "clean"
	case Detached:
		return "detached"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type lazyCore[T any, P interface {
	*T
	Node
}] struct {
	raw   []byte
	base  int
	opts  Options
	value T
	state State
}

func (l *lazyCore[T, P]) fromRaw(raw []byte, base int, opts Options) {
	var zero T
	l.raw = raw
	l.base = base
	l.opts = opts
	l.value = zero
	l.state = Undecoded
}

// State returns the current lifecycle state.
func (l *lazyCore[T, P]) State() State {
	return l.state
}

// Raw returns the original bytes while they can still be emitted verbatim.
func (l *lazyCore[T, P]) Raw() ([]byte, bool) {
	if l.verbatim() {
		return l.raw, true
	}
	return nil, false
}

// Offset returns the absolute input offset of the original bytes.
func (l *lazyCore[T, P]) Offset() int {
	return l.base
}

func (l *lazyCore[T, P]) verbatim() bool {
	switch l.state {
	case Undecoded:
		return true
	case Clean:
		return !Modified(P(&l.value))
	}
	return false
}

func (l *lazyCore[T, P]) decode() error {
	if l.state != Undecoded {
		return nil
	}
	c := newCursorAt(l.raw, l.base, l.opts)
	var v T
	if err := P(&v).Decode(c); err != nil {
		return err
	}
	if !c.Empty() {
		return errors.TrailingBytes(c.Position(), len(l.raw), len(l.raw)-c.Remaining())
	}
	l.value = v
	if l.opts.Retention == DropRaw {
		l.raw = nil
		l.state = Detached
	} else {
		l.state = Clean
	}
	if ce := Logger().Check(zap.DebugLevel, "lazy decode"); ce != nil {
		ce.Write(
			zap.String("type", fmt.Sprintf("%T", l.value)),
			zap.Int("offset", l.base),
			zap.Stringer("state", l.state),
		)
	}
	return nil
}

// Get decodes the value if needed and returns it without marking the node
// dirty. Changes made through the returned pointer are not tracked; use
// GetMut to modify.
func (l *lazyCore[T, P]) Get() (*T, error) {
	if err := l.decode(); err != nil {
		return nil, err
	}
	return &l.value, nil
}

// GetMut decodes the value if needed, marks the node dirty and returns it.
func (l *lazyCore[T, P]) GetMut() (*T, error) {
	if err := l.decode(); err != nil {
		return nil, err
	}
	l.MarkDirty()
	return &l.value, nil
}

// Set replaces the value and marks the node dirty.
func (l *lazyCore[T, P]) Set(v T) {
	l.value = v
	l.raw = nil
	l.state = Dirty
}

// MarkDirty marks a decoded value as modified. It has no effect on an
// undecoded node.
func (l *lazyCore[T, P]) MarkDirty() {
	if l.state == Undecoded {
		return
	}
	if l.state == Clean {
		Logger().Debug("lazy dirtied", zap.Int("offset", l.base))
	}
	l.raw = nil
	l.state = Dirty
}

// Force implements LazyNode.
func (l *lazyCore[T, P]) Force() (Node, error) {
	if err := l.decode(); err != nil {
		return nil, err
	}
	return P(&l.value), nil
}

// Forced implements LazyNode.
func (l *lazyCore[T, P]) Forced() (Node, bool) {
	if l.state == Undecoded {
		return nil, false
	}
	return P(&l.value), true
}

// Generate fills the value from g and leaves the node dirty.
func (l *lazyCore[T, P]) Generate(g *Gen) {
	l.Set(*new(T))
	g.Fill(P(&l.value))
}

// Lazy is a length-prefixed subtree decoded on first access. An unmodified
// Lazy re-emits its original bytes.
type Lazy[T any, P interface {
	*T
	Node
}] struct {
	lazyCore[T, P]
}

// NewLazy returns a dirty Lazy holding v.
func NewLazy[T any, P interface {
	*T
	Node
}](v T) Lazy[T, P] {
	var l Lazy[T, P]
	l.Set(v)
	return l
}

func (l *Lazy[T, P]) Decode(c *Cursor) error {
	raw, err := c.ReadSpan()
	if err != nil {
		return err
	}
	l.fromRaw(raw, c.Position()-len(raw), c.Options())
	return nil
}

func (l *Lazy[T, P]) Encode(w *Writer) {
	if l.verbatim() {
		w.WriteSpan(l.raw)
		return
	}
	v := P(&l.value)
	if n, ok := v.ByteLen(); ok {
		w.WriteLen(n)
		v.Encode(w)
		return
	}
	scratch := NewWriter()
	v.Encode(scratch)
	w.WriteSpan(scratch.Bytes())
}

func (l *Lazy[T, P]) ByteLen() (int, bool) {
	if l.verbatim() {
		return SizeLen(len(l.raw)) + len(l.raw), true
	}
	n, ok := P(&l.value).ByteLen()
	if !ok {
		return 0, false
	}
	return SizeLen(n) + n, true
}

// LazyRest is a subtree occupying the rest of the enclosing bound, decoded
// on first access. It has no length prefix of its own.
type LazyRest[T any, P interface {
	*T
	Node
}] struct {
	lazyCore[T, P]
}

// NewLazyRest returns a dirty LazyRest holding v.
func NewLazyRest[T any, P interface {
	*T
	Node
}](v T) LazyRest[T, P] {
	var l LazyRest[T, P]
	l.Set(v)
	return l
}

func (l *LazyRest[T, P]) Decode(c *Cursor) error {
	base := c.Position()
	l.fromRaw(c.Rest(), base, c.Options())
	return nil
}

func (l *LazyRest[T, P]) Encode(w *Writer) {
	if l.verbatim() {
		w.WriteBytes(l.raw)
		return
	}
	P(&l.value).Encode(w)
}

func (l *LazyRest[T, P]) ByteLen() (int, bool) {
	if l.verbatim() {
		return len(l.raw), true
	}
	return P(&l.value).ByteLen()
}
