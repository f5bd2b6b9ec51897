package wasm

import (
	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
)

// Well-known custom section names.
const (
	CustomName              = "name"
	CustomProducers         = "producers"
	CustomExternalDebugInfo = "external_debug_info"
	CustomSourceMappingURL  = "sourceMappingURL"
	CustomBuildID           = "build_id"
)

// CustomPayload is the content of a custom section. The section name
// selects the payload type on decode.
type CustomPayload interface {
	codec.Node
	CustomName() string
}

var customPayloads = map[string]func() CustomPayload{
	CustomName:              func() CustomPayload { return new(NameSection) },
	CustomProducers:         func() CustomPayload { return new(ProducersSection) },
	CustomExternalDebugInfo: func() CustomPayload { return new(ExternalDebugInfo) },
	CustomSourceMappingURL:  func() CustomPayload { return new(SourceMappingURL) },
}

// Custom is a named custom section payload.
type Custom struct {
	Payload CustomPayload
}

// Name returns the section name.
func (c *Custom) Name() string {
	if c.Payload == nil {
		return ""
	}
	return c.Payload.CustomName()
}

func (c *Custom) Fields() []codec.Field {
	return []codec.Field{{Name: "payload", Node: c.Payload}}
}

func (c *Custom) Decode(cur *codec.Cursor) error {
	name, err := cur.ReadName()
	if err != nil {
		return err
	}
	var p CustomPayload
	if mk, ok := customPayloads[name]; ok {
		p = mk()
	} else {
		p = &RawCustom{SectionName: name}
	}
	if err := p.Decode(cur); err != nil {
		return errors.InPath(err, errors.Variant(name))
	}
	c.Payload = p
	return nil
}

// payload returns the payload to encode. A section without one has no name
// to write, so encoding it is a caller error.
func (c *Custom) payload() CustomPayload {
	if c.Payload == nil {
		panic(errors.InvalidInput(errors.PhaseEncode, "custom section without payload"))
	}
	return c.Payload
}

func (c *Custom) Encode(w *codec.Writer) {
	p := c.payload()
	w.WriteName(p.CustomName())
	p.Encode(w)
}

func (c *Custom) ByteLen() (int, bool) {
	p := c.payload()
	n, ok := p.ByteLen()
	name := p.CustomName()
	return codec.SizeLen(len(name)) + len(name) + n, ok
}

// Generate picks one of the known payloads or a raw one.
func (c *Custom) Generate(g *codec.Gen) {
	var p CustomPayload
	switch g.Intn(5) {
	case 0:
		p = new(NameSection)
	case 1:
		p = new(ProducersSection)
	case 2:
		p = new(ExternalDebugInfo)
	case 3:
		p = new(SourceMappingURL)
	default:
		p = new(RawCustom)
	}
	g.Fill(p)
	c.Payload = p
}

// RawCustom is a custom section without a known structure.
type RawCustom struct {
	SectionName string
	Data        codec.Raw
}

// NewRawCustom returns a raw custom payload.
func NewRawCustom(name string, data []byte) *RawCustom {
	return &RawCustom{SectionName: name, Data: data}
}

func (r *RawCustom) CustomName() string           { return r.SectionName }
func (r *RawCustom) Fields() []codec.Field        { return []codec.Field{{Name: "data", Node: &r.Data}} }
func (r *RawCustom) Decode(c *codec.Cursor) error { return r.Data.Decode(c) }
func (r *RawCustom) Encode(w *codec.Writer)       { r.Data.Encode(w) }
func (r *RawCustom) ByteLen() (int, bool)         { return r.Data.ByteLen() }

// Generate draws a name outside the well-known ones.
func (r *RawCustom) Generate(g *codec.Gen) {
	r.SectionName = "x-" + g.String()
	r.Data.Generate(g)
}

// ProducerFields is the content of the producers section.
type ProducerFields = codec.Vec[ProducerField, *ProducerField]

// ProducersSection records the toolchain that produced the module. The
// fields fill the rest of the section and decode on first access, so
// reading the section name leaves them untouched.
type ProducersSection struct {
	codec.LazyRest[ProducerFields, *ProducerFields]
}

// NewProducersSection returns a producers payload holding fields.
func NewProducersSection(fields ...ProducerField) *ProducersSection {
	return &ProducersSection{codec.NewLazyRest[ProducerFields](ProducerFields(fields))}
}

func (p *ProducersSection) CustomName() string { return CustomProducers }

// ProducerField is one producers entry, such as "language" or "processed-by".
type ProducerField struct {
	Name   codec.Name
	Values codec.Vec[VersionedName, *VersionedName]
}

func (f *ProducerField) Fields() []codec.Field {
	return []codec.Field{{Name: "name", Node: &f.Name}, {Name: "values", Node: &f.Values}}
}

func (f *ProducerField) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, f.Fields()) }
func (f *ProducerField) Encode(w *codec.Writer)       { codec.EncodeRecord(w, f.Fields()) }
func (f *ProducerField) ByteLen() (int, bool)         { return codec.RecordLen(f.Fields()) }

// VersionedName is a tool name with its version.
type VersionedName struct {
	Name    codec.Name
	Version codec.Name
}

func (v *VersionedName) Fields() []codec.Field {
	return []codec.Field{{Name: "name", Node: &v.Name}, {Name: "version", Node: &v.Version}}
}

func (v *VersionedName) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, v.Fields()) }
func (v *VersionedName) Encode(w *codec.Writer)       { codec.EncodeRecord(w, v.Fields()) }
func (v *VersionedName) ByteLen() (int, bool)         { return codec.RecordLen(v.Fields()) }

// ExternalDebugInfo points to debug information stored outside the module.
type ExternalDebugInfo struct {
	URL codec.Name
}

func (e *ExternalDebugInfo) CustomName() string           { return CustomExternalDebugInfo }
func (e *ExternalDebugInfo) Fields() []codec.Field        { return []codec.Field{{Name: "url", Node: &e.URL}} }
func (e *ExternalDebugInfo) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, e.Fields()) }
func (e *ExternalDebugInfo) Encode(w *codec.Writer)       { codec.EncodeRecord(w, e.Fields()) }
func (e *ExternalDebugInfo) ByteLen() (int, bool)         { return codec.RecordLen(e.Fields()) }

// SourceMappingURL points to a source map for the module.
type SourceMappingURL struct {
	URL codec.Name
}

func (s *SourceMappingURL) CustomName() string           { return CustomSourceMappingURL }
func (s *SourceMappingURL) Fields() []codec.Field        { return []codec.Field{{Name: "url", Node: &s.URL}} }
func (s *SourceMappingURL) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, s.Fields()) }
func (s *SourceMappingURL) Encode(w *codec.Writer)       { codec.EncodeRecord(w, s.Fields()) }
func (s *SourceMappingURL) ByteLen() (int, bool)         { return codec.RecordLen(s.Fields()) }
