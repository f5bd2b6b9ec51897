package codec

// Retention selects what a lazy node keeps after its first decode.
type Retention uint8

const (
	// RetainRaw keeps the original bytes so an unmodified node re-emits them verbatim.
	RetainRaw Retention = iota
	// DropRaw releases the original bytes once decoded. The node is then
	// Detached and always re-encoded from its value.
	DropRaw
)

func (r Retention) String() string {
	switch r {
	case RetainRaw:
		return "retain"
	case DropRaw:
		return "drop"
	}
	return "unknown"
}

// Options configures a decode. The zero value decodes lazily and retains raw spans.
type Options struct {
	Retention Retention
	// Eager forces every lazy node during decode.
	Eager bool
	// Parallel forces top-level lazy nodes on worker goroutines. Implies Eager.
	Parallel bool
	// Workers bounds the goroutines used by Parallel; <= 0 means GOMAXPROCS.
	Workers int
}
