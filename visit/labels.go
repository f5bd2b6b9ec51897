package visit

// Label is a branch target opened by a structured instruction.
type Label struct {
	// Op is the opcode that opened the label.
	Op byte
	// Index is the position of the opening instruction in its expression,
	// or -1 for the implicit label of the expression itself.
	Index int
}

// Labels is the stack of labels enclosing the node being visited,
// innermost last.
type Labels struct {
	stack []Label
}

// Push opens a label.
func (l *Labels) Push(lbl Label) {
	l.stack = append(l.stack, lbl)
}

// Pop closes the innermost label. Popping an empty stack is a no-op.
func (l *Labels) Pop() (Label, bool) {
	if len(l.stack) == 0 {
		return Label{}, false
	}
	lbl := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	return lbl, true
}

// Depth returns the number of open labels.
func (l *Labels) Depth() int {
	return len(l.stack)
}

// Truncate closes labels until depth remain.
func (l *Labels) Truncate(depth int) {
	if depth >= 0 && depth < len(l.stack) {
		l.stack = l.stack[:depth]
	}
}

// Resolve returns the label a relative branch depth refers to, where 0 is
// the innermost label.
func (l *Labels) Resolve(rel uint32) (Label, bool) {
	if uint64(rel) >= uint64(len(l.stack)) {
		return Label{}, false
	}
	return l.stack[len(l.stack)-1-int(rel)], true
}
