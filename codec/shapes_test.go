package codec_test

import (
	"github.com/wippyai/wasmbin/codec"
)

// pair is a two-field record.
type pair struct {
	A uint32
	B codec.Name
}

func (p *pair) Fields() []codec.Field {
	return []codec.Field{
		{Name: "a", Node: (*codec.U32)(&p.A)},
		{Name: "b", Node: &p.B},
	}
}

func (p *pair) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, p.Fields()) }
func (p *pair) Encode(w *codec.Writer)       { codec.EncodeRecord(w, p.Fields()) }
func (p *pair) ByteLen() (int, bool)         { return codec.RecordLen(p.Fields()) }

// shape is a union with cases circle (0) and square (1).
type shape interface {
	codec.Variant
}

type circle struct{ R uint32 }

func (*circle) Discriminant() uint32           { return 0 }
func (s *circle) Decode(c *codec.Cursor) error { return (*codec.U32)(&s.R).Decode(c) }
func (s *circle) Encode(w *codec.Writer)       { (*codec.U32)(&s.R).Encode(w) }
func (s *circle) ByteLen() (int, bool)         { return (*codec.U32)(&s.R).ByteLen() }

type square struct{ Side codec.Name }

func (*square) Discriminant() uint32           { return 1 }
func (s *square) Decode(c *codec.Cursor) error { return s.Side.Decode(c) }
func (s *square) Encode(w *codec.Writer)       { s.Side.Encode(w) }
func (s *square) ByteLen() (int, bool)         { return s.Side.ByteLen() }

var shapes = codec.NewTable[shape]("shape", codec.ByteTag).
	Case(0, "circle", func() shape { return &circle{} }).
	Case(1, "square", func() shape { return &square{} })

// opaque is the catch-all of openShapes.
type opaque struct {
	D    uint32
	Data codec.Span
}

func (o *opaque) Discriminant() uint32         { return o.D }
func (o *opaque) Decode(c *codec.Cursor) error { return o.Data.Decode(c) }
func (o *opaque) Encode(w *codec.Writer)       { o.Data.Encode(w) }
func (o *opaque) ByteLen() (int, bool)         { return o.Data.ByteLen() }

var openShapes = codec.NewTable[shape]("open shape", codec.VarintTag).
	Case(0, "circle", func() shape { return &circle{} }).
	Fallback(func(d uint32) shape { return &opaque{D: d} })

// drawing holds a union field, a list of unions and a list of records.
type drawing struct {
	Main   shape
	Extra  []shape
	Labels codec.Vec[pair, *pair]
}

func (d *drawing) Fields() []codec.Field {
	return []codec.Field{
		{Name: "main", Node: codec.UnionOf(&d.Main, shapes)},
		{Name: "extra", Node: codec.UnionVec(&d.Extra, shapes)},
		{Name: "labels", Node: &d.Labels},
	}
}

func (d *drawing) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *drawing) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *drawing) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }

// doc has a lazy body between two eager fields.
type doc struct {
	Title codec.Name
	Body  codec.Lazy[pair, *pair]
	Tail  codec.U32
}

func (d *doc) Fields() []codec.Field {
	return []codec.Field{
		{Name: "title", Node: &d.Title},
		{Name: "body", Node: &d.Body},
		{Name: "tail", Node: &d.Tail},
	}
}

func (d *doc) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, d.Fields()) }
func (d *doc) Encode(w *codec.Writer)       { codec.EncodeRecord(w, d.Fields()) }
func (d *doc) ByteLen() (int, bool)         { return codec.RecordLen(d.Fields()) }

// folder nests lazy docs inside a lazy list.
type folder struct {
	Docs codec.Lazy[codec.Vec[doc, *doc], *codec.Vec[doc, *doc]]
}

func (f *folder) Fields() []codec.Field {
	return []codec.Field{{Name: "docs", Node: &f.Docs}}
}

func (f *folder) Decode(c *codec.Cursor) error { return codec.DecodeRecord(c, f.Fields()) }
func (f *folder) Encode(w *codec.Writer)       { codec.EncodeRecord(w, f.Fields()) }
func (f *folder) ByteLen() (int, bool)         { return codec.RecordLen(f.Fields()) }

func encode(n codec.Node) []byte {
	w := codec.NewWriter()
	n.Encode(w)
	return w.Bytes()
}

// splitmix is a deterministic Source.
type splitmix struct{ state uint64 }

func (s *splitmix) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
