package codec

// Node is the contract every shape in a decoded tree satisfies.
//
// Decode reads the node from c, Encode writes it to w, and ByteLen reports
// the encoded size when it is known without encoding. Encode does not fail:
// an in-memory state that cannot be represented is a programming error and
// panics.
type Node interface {
	Decode(c *Cursor) error
	Encode(w *Writer)
	ByteLen() (int, bool)
}

// Field is a named record member.
type Field struct {
	Name string
	Node Node
}

// Record is an ordered fixed set of fields.
type Record interface {
	Node
	Fields() []Field
}

// Variant is one case of a tagged union. Its Encode writes the payload only;
// the tag is derived from Discriminant when the union is encoded.
type Variant interface {
	Node
	Discriminant() uint32
}

// Union is a tagged union slot holding exactly one active variant.
type Union interface {
	Node
	Discriminant() uint32
	CaseName() string
	Payload() Node
	// Cases lists the discriminants the union's table accepts.
	Cases() []uint32
	// Select replaces the active variant with a fresh value of case d.
	Select(d uint32) bool
}

// Sequence is an ordered homogeneous list.
type Sequence interface {
	Node
	Len() int
	Index(i int) Node
	// Resize truncates or extends the list with zero elements.
	Resize(n int)
}

// LazyNode is a subtree whose decode is deferred.
type LazyNode interface {
	Node
	State() State
	// Force decodes the value if needed and returns it without marking the node dirty.
	Force() (Node, error)
	// Forced returns the value if it is available without decoding.
	Forced() (Node, bool)
	MarkDirty()
}

// Modified reports whether any lazy node within n, n included, must be
// re-encoded from its value instead of copied verbatim.
func Modified(n Node) bool {
	switch v := n.(type) {
	case LazyNode:
		switch v.State() {
		case Dirty, Detached:
			return true
		case Undecoded:
			return false
		}
		inner, ok := v.Forced()
		return ok && Modified(inner)
	case Record:
		for _, f := range v.Fields() {
			if Modified(f.Node) {
				return true
			}
		}
	case Union:
		if p := v.Payload(); p != nil {
			return Modified(p)
		}
	case Sequence:
		for i := 0; i < v.Len(); i++ {
			if Modified(v.Index(i)) {
				return true
			}
		}
	}
	return false
}
