package visit

import (
	stderrors "errors"
	"strings"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
)

// SkipChildren is returned by a callback to skip the children of the node
// it was called with. It is not reported as an error.
var SkipChildren = stderrors.New("visit: skip children")

// Policy decides how Walk treats lazy nodes that are still undecoded.
type Policy uint8

const (
	// SkipLazy does not decode lazy nodes.
	SkipLazy Policy = iota
	// ForceLazy decodes lazy nodes without marking them dirty.
	ForceLazy
)

type config struct {
	policy Policy
}

// Option configures a walk.
type Option func(*config)

// WithPolicy sets the lazy node policy of Walk.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// Context describes the position of the node being visited.
type Context struct {
	path   []string
	labels Labels
}

// Path renders the location of the current node from the root.
func (c *Context) Path() string {
	return "(root)" + strings.Join(c.path, "")
}

// Segments returns a copy of the path segments.
func (c *Context) Segments() []string {
	out := make([]string, len(c.path))
	copy(out, c.path)
	return out
}

// Depth returns the nesting depth of the current node.
func (c *Context) Depth() int {
	return len(c.path)
}

// Labels returns the labels enclosing the current node.
func (c *Context) Labels() *Labels {
	return &c.labels
}

// PathError reports a callback failure with the location it occurred at.
type PathError struct {
	Err  error
	Path string
}

func (e *PathError) Error() string {
	return "visit " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a failure to decode a lazy node, as
// opposed to an error returned by a callback.
func IsDecodeError(err error) bool {
	var pe *PathError
	if stderrors.As(err, &pe) {
		return false
	}
	var e *errors.Error
	return stderrors.As(err, &e) && e.Phase == errors.PhaseDecode
}

// Walker is implemented by nodes that traverse their own children.
type Walker interface {
	WalkChildren(s *Step) error
}

// Step visits children on behalf of a Walker.
type Step struct {
	w       *walker
	changed bool
}

// Field visits a named child.
func (s *Step) Field(name string, n codec.Node) error {
	return s.visit(errors.Field(name), n)
}

// Index visits the i-th child.
func (s *Step) Index(i int, n codec.Node) error {
	return s.visit(errors.Index(i), n)
}

// Node visits a child without adding a path segment.
func (s *Step) Node(n codec.Node) error {
	changed, err := s.w.node(n)
	s.changed = s.changed || changed
	return err
}

// Labels returns the label stack of the walk.
func (s *Step) Labels() *Labels {
	return &s.w.ctx.labels
}

func (s *Step) visit(seg string, n codec.Node) error {
	changed, err := s.w.child(seg, n)
	s.changed = s.changed || changed
	return err
}

type walker struct {
	fn     func(ctx *Context, n codec.Node) (bool, error)
	ctx    Context
	force  bool
	mutate bool
}

// Walk calls fn for every node of type T reachable from root, in pre-order.
func Walk[T any](root codec.Node, fn func(ctx *Context, node T) error, opts ...Option) error {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &walker{
		force: cfg.policy == ForceLazy,
		fn: func(ctx *Context, n codec.Node) (bool, error) {
			if v, ok := n.(T); ok {
				return false, fn(ctx, v)
			}
			return false, nil
		},
	}
	_, err := w.node(root)
	return err
}

// Rewrite calls fn for every node of type T reachable from root, decoding
// lazy nodes as it enters them. fn reports whether it changed the node;
// every lazy node above a change is marked dirty. Rewrite reports whether
// anything changed.
func Rewrite[T any](root codec.Node, fn func(ctx *Context, node T) (bool, error)) (bool, error) {
	w := &walker{
		force:  true,
		mutate: true,
		fn: func(ctx *Context, n codec.Node) (bool, error) {
			if v, ok := n.(T); ok {
				return fn(ctx, v)
			}
			return false, nil
		},
	}
	return w.node(root)
}

func (w *walker) node(n codec.Node) (bool, error) {
	changed, err := w.fn(&w.ctx, n)
	if err == SkipChildren {
		return changed, nil
	}
	if err != nil {
		return changed, &PathError{Path: w.ctx.Path(), Err: err}
	}
	c, err := w.children(n)
	return changed || c, err
}

func (w *walker) child(seg string, n codec.Node) (bool, error) {
	w.ctx.path = append(w.ctx.path, seg)
	changed, err := w.node(n)
	w.ctx.path = w.ctx.path[:len(w.ctx.path)-1]
	return changed, err
}

func (w *walker) children(n codec.Node) (bool, error) {
	switch v := n.(type) {
	case Walker:
		s := &Step{w: w}
		err := v.WalkChildren(s)
		return s.changed, err
	case codec.LazyNode:
		return w.lazy(v)
	case codec.Record:
		changed := false
		for _, f := range v.Fields() {
			c, err := w.child(errors.Field(f.Name), f.Node)
			changed = changed || c
			if err != nil {
				return changed, err
			}
		}
		return changed, nil
	case codec.Union:
		p := v.Payload()
		if p == nil {
			return false, nil
		}
		return w.child(errors.Variant(v.CaseName()), p)
	case codec.Sequence:
		changed := false
		for i := 0; i < v.Len(); i++ {
			c, err := w.child(errors.Index(i), v.Index(i))
			changed = changed || c
			if err != nil {
				return changed, err
			}
		}
		return changed, nil
	}
	return false, nil
}

func (w *walker) lazy(l codec.LazyNode) (bool, error) {
	inner, ok := l.Forced()
	if !ok {
		if !w.force {
			return false, nil
		}
		var err error
		inner, err = l.Force()
		if err != nil {
			for i := len(w.ctx.path) - 1; i >= 0; i-- {
				err = errors.InPath(err, w.ctx.path[i])
			}
			return false, err
		}
	}
	changed, err := w.node(inner)
	if changed && w.mutate {
		l.MarkDirty()
	}
	return changed, err
}
