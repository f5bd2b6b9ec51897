package wasm

import (
	"io"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
	"github.com/wippyai/wasmbin/visit"
)

var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6D}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

// Module is a decoded WebAssembly module: the ordered list of its sections.
// Order is preserved as decoded and duplicates are allowed; use CheckOrder
// to diagnose a module that breaks the section ordering rules.
type Module struct {
	Sections []Section
}

// moduleNode is the codec view of a Module.
type moduleNode Module

// Node returns the module as a codec node, the root for visitors.
func (m *Module) Node() codec.Node {
	return (*moduleNode)(m)
}

func (n *moduleNode) Fields() []codec.Field {
	return []codec.Field{
		{Name: "magic", Node: codec.Signature(magic, errors.KindInvalidMagic)},
		{Name: "version", Node: codec.Signature(version, errors.KindInvalidVersion)},
		{Name: "sections", Node: codec.UnionRun(&n.Sections, sectionTable)},
	}
}

func (n *moduleNode) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, n.Fields()) }
func (n *moduleNode) Encode(w *codec.Writer)       { codec.EncodeRecord(w, n.Fields()) }
func (n *moduleNode) ByteLen() (int, bool)         { return codec.RecordLen(n.Fields()) }

// Decode parses a module. Section payloads are not decoded until accessed.
// The module borrows buf: it must not be modified while the module is in use.
func Decode(buf []byte) (*Module, error) {
	return DecodeWithOptions(buf, codec.Options{})
}

// DecodeWithOptions parses a module under opts. With Eager set every lazy
// node is decoded before returning, on worker goroutines when Parallel is
// set. Decode never returns a partial module.
func DecodeWithOptions(buf []byte, opts codec.Options) (*Module, error) {
	m := &Module{}
	c := codec.NewCursorWithOptions(buf, opts)
	if err := m.Node().Decode(c); err != nil {
		return nil, err
	}
	Logger().Debug("decoded module",
		zap.Int("size", len(buf)),
		zap.Int("sections", len(m.Sections)),
		zap.Stringer("retention", opts.Retention),
	)
	if !opts.Eager && !opts.Parallel {
		return m, nil
	}
	var err error
	if opts.Parallel {
		err = m.forceParallel(opts.Workers)
	} else {
		err = m.forceAll()
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// forceSection decodes every lazy node within section i.
func (m *Module) forceSection(i int) error {
	s := m.Sections[i]
	err := visit.Walk(s, func(*visit.Context, codec.Node) error { return nil }, visit.WithPolicy(visit.ForceLazy))
	if err == nil {
		return nil
	}
	err = errors.InPath(err, errors.Variant(sectionTable.CaseName(s.Discriminant())))
	err = errors.InPath(err, errors.Index(i))
	return errors.InPath(err, errors.Field("sections"))
}

func (m *Module) forceAll() error {
	for i := range m.Sections {
		if err := m.forceSection(i); err != nil {
			return err
		}
	}
	return nil
}

// forceParallel decodes sections concurrently and reports the failure of the
// lowest section index.
func (m *Module) forceParallel(workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	Logger().Debug("parallel force",
		zap.Int("sections", len(m.Sections)),
		zap.Int("workers", workers),
	)
	errs := make([]error, len(m.Sections))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range m.Sections {
		g.Go(func() error {
			errs[i] = m.forceSection(i)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Encode serializes the module. Sections never accessed, or accessed but
// not modified, are copied from the input verbatim.
func (m *Module) Encode() []byte {
	n, ok := m.Node().ByteLen()
	w := codec.NewWriter()
	if ok {
		w = codec.NewWriterSize(n)
	}
	m.Node().Encode(w)
	return w.Bytes()
}

// EncodeTo streams the module to dst one section at a time.
func (m *Module) EncodeTo(dst io.Writer) (int64, error) {
	var total int64
	head := codec.NewWriterSize(len(magic) + len(version))
	head.WriteBytes(magic)
	head.WriteBytes(version)
	n, err := head.WriteTo(dst)
	total += n
	if err != nil {
		return total, err
	}
	for _, s := range m.Sections {
		w := codec.NewWriter()
		sectionTable.Encode(w, s)
		n, err := w.WriteTo(dst)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Section returns the first section with the given id.
func (m *Module) Section(id SectionID) (Section, bool) {
	for _, s := range m.Sections {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// FindSection returns the first section of type S.
func FindSection[S Section](m *Module) (S, bool) {
	for _, s := range m.Sections {
		if v, ok := s.(S); ok {
			return v, true
		}
	}
	var zero S
	return zero, false
}

// Custom returns the first custom section with the given name. Custom
// sections before it are decoded to read their names.
func (m *Module) Custom(name string) (*CustomSection, bool, error) {
	for _, s := range m.Sections {
		cs, ok := s.(*CustomSection)
		if !ok {
			continue
		}
		n, err := cs.Name()
		if err != nil {
			return nil, false, err
		}
		if n == name {
			return cs, true, nil
		}
	}
	return nil, false, nil
}

// InsertSection inserts s at its logical position: after every section that
// precedes it in the ordering rules. Custom sections are appended.
func (m *Module) InsertSection(s Section) {
	at := len(m.Sections)
	if s.ID() != SectionCustom {
		order := s.ID().Order()
		for i, cur := range m.Sections {
			if cur.ID() != SectionCustom && cur.ID().Order() > order {
				at = i
				break
			}
		}
	}
	m.Sections = append(m.Sections, nil)
	copy(m.Sections[at+1:], m.Sections[at:])
	m.Sections[at] = s
}

// EnsureSection returns the first section of type S, inserting the one
// built by mk at its logical position if there is none.
func EnsureSection[S Section](m *Module, mk func() S) S {
	if s, ok := FindSection[S](m); ok {
		return s
	}
	s := mk()
	m.InsertSection(s)
	return s
}

// CheckOrder reports the first section that is out of order or repeated.
// Custom sections may appear anywhere. Decode does not enforce ordering.
func (m *Module) CheckOrder() error {
	last := -1
	var prev SectionID
	for i, s := range m.Sections {
		id := s.ID()
		if id == SectionCustom {
			continue
		}
		if id.Order() <= last {
			err := errors.New(errors.PhaseDecode, errors.KindInvalidInput).
				Value(id).
				Detail("section %s after %s", id, prev).
				Build()
			return errors.InPath(errors.InPath(err, errors.Index(i)), errors.Field("sections"))
		}
		last = id.Order()
		prev = id
	}
	return nil
}
