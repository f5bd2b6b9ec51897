package codec

// Source is an abstract stream of random choices.
type Source interface {
	Uint64() uint64
}

// intnSource is implemented by sources that can draw a bounded value more
// economically than a full Uint64.
type intnSource interface {
	Intn(n int) int
}

// Generator is implemented by nodes that construct themselves from a Gen
// instead of the shape-driven default.
type Generator interface {
	Generate(g *Gen)
}

// Gen drives randomized construction of a tree from a Source.
type Gen struct {
	src   Source
	depth int

	// MaxDepth bounds nesting of sequences and recursive shapes.
	MaxDepth int
	// MaxLen bounds sequence lengths and byte strings.
	MaxLen int
}

// NewGen creates a Gen with default bounds.
func NewGen(src Source) *Gen {
	return &Gen{src: src, MaxDepth: 6, MaxLen: 8}
}

// Fill populates n with random content drawn from src.
func Fill(src Source, n Node) {
	NewGen(src).Fill(n)
}

// Uint64 draws a full 64-bit value.
func (g *Gen) Uint64() uint64 {
	return g.src.Uint64()
}

// Uint32 draws a 32-bit value.
func (g *Gen) Uint32() uint32 {
	return uint32(g.src.Uint64())
}

// Intn draws a value in [0, n). It returns 0 when n <= 1.
func (g *Gen) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	if s, ok := g.src.(intnSource); ok {
		return s.Intn(n)
	}
	return int(g.src.Uint64() % uint64(n))
}

// Bool draws a boolean.
func (g *Gen) Bool() bool {
	return g.Intn(2) == 1
}

// Len draws a sequence length honoring MaxLen and MaxDepth.
func (g *Gen) Len() int {
	if g.depth >= g.MaxDepth {
		return 0
	}
	return g.Intn(g.MaxLen + 1)
}

// Bytes draws a short byte string.
func (g *Gen) Bytes() []byte {
	b := make([]byte, g.Intn(g.MaxLen+1))
	for i := range b {
		b[i] = byte(g.Intn(256))
	}
	return b
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz_.-0123456789"

// String draws a short valid UTF-8 string.
func (g *Gen) String() string {
	b := make([]byte, g.Intn(g.MaxLen+1))
	for i := range b {
		b[i] = nameAlphabet[g.Intn(len(nameAlphabet))]
	}
	return string(b)
}

// Depth returns the current nesting depth.
func (g *Gen) Depth() int {
	return g.depth
}

// Nest reports whether one more level of nesting is allowed, and if so
// enters it. Callers pair a true result with Unnest.
func (g *Gen) Nest() bool {
	if g.depth >= g.MaxDepth {
		return false
	}
	g.depth++
	return true
}

// Unnest leaves a level entered by Nest.
func (g *Gen) Unnest() {
	g.depth--
}

// Fill populates n. Generators construct themselves; records fill every
// field, unions pick a case, and sequences pick a length and fill each
// element.
func (g *Gen) Fill(n Node) {
	switch v := n.(type) {
	case Generator:
		v.Generate(g)
	case Record:
		for _, f := range v.Fields() {
			g.Fill(f.Node)
		}
	case Union:
		cases := v.Cases()
		if len(cases) == 0 || !v.Select(cases[g.Intn(len(cases))]) {
			return
		}
		g.Fill(v.Payload())
	case Sequence:
		v.Resize(g.Len())
		if v.Len() == 0 {
			return
		}
		g.depth++
		for i := 0; i < v.Len(); i++ {
			g.Fill(v.Index(i))
		}
		g.depth--
	}
}
