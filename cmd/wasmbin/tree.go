package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/wasm"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	caseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	lazyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// maxSpan is the number of bytes of a span shown before eliding.
const maxSpan = 16

// printer renders a node tree one line per node. Undecoded lazy nodes are
// shown as their byte range unless force is set.
type printer struct {
	w      io.Writer
	force  bool
	styled bool
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(depth int, label, text string) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	if label != "" {
		b.WriteString(p.render(labelStyle, label))
		if text != "" {
			b.WriteString(": ")
		}
	}
	b.WriteString(text)
	b.WriteByte('\n')
	io.WriteString(p.w, b.String())
}

// section prints section i with its id and encoded size.
func (p *printer) section(i int, s wasm.Section) {
	head := fmt.Sprintf("[%d] %s", i, s.ID())
	if cs, ok := s.(*wasm.CustomSection); ok {
		if name, err := cs.Name(); err == nil {
			head += fmt.Sprintf(" %q", name)
		}
	}
	if n, ok := s.ByteLen(); ok {
		head += fmt.Sprintf(" (%d bytes)", n)
	}
	if p.styled {
		head = titleStyle.Render(head)
	}
	io.WriteString(p.w, head+"\n")
	p.children(1, s)
}

// node prints n under label at depth.
func (p *printer) node(depth int, label string, n codec.Node) {
	switch v := n.(type) {
	case codec.LazyNode:
		inner, ok := p.forced(v)
		if !ok {
			p.line(depth, label, p.lazySummary(v))
			return
		}
		p.node(depth, label, inner)
	case codec.Union:
		head := p.render(caseStyle, v.CaseName())
		payload := v.Payload()
		if payload == nil || composite(payload) && empty(payload) {
			p.line(depth, label, head)
			return
		}
		if !composite(payload) {
			p.line(depth, label, head+" "+leaf(payload))
			return
		}
		p.line(depth, label, head)
		p.children(depth+1, payload)
	case codec.Sequence:
		p.line(depth, label, fmt.Sprintf("(%d)", v.Len()))
		p.children(depth+1, v)
	case codec.Record:
		p.line(depth, label, "")
		p.children(depth+1, v)
	default:
		p.line(depth, label, leaf(n))
	}
}

// children prints the members of a composite node at depth.
func (p *printer) children(depth int, n codec.Node) {
	switch v := n.(type) {
	case codec.LazyNode:
		inner, ok := p.forced(v)
		if !ok {
			p.line(depth, "", p.lazySummary(v))
			return
		}
		p.children(depth, inner)
	case codec.Union:
		p.node(depth, "", v)
	case codec.Sequence:
		for i := 0; i < v.Len(); i++ {
			p.node(depth, fmt.Sprintf("[%d]", i), v.Index(i))
		}
	case codec.Record:
		for _, f := range v.Fields() {
			p.node(depth, f.Name, f.Node)
		}
	default:
		p.line(depth, "", leaf(n))
	}
}

func (p *printer) forced(l codec.LazyNode) (codec.Node, bool) {
	if inner, ok := l.Forced(); ok {
		return inner, true
	}
	if !p.force {
		return nil, false
	}
	inner, err := l.Force()
	if err != nil {
		p.line(0, "", p.render(errorStyle, "error: "+err.Error()))
		return nil, false
	}
	return inner, true
}

type rawHolder interface {
	Raw() ([]byte, bool)
	Offset() int
}

func (p *printer) lazySummary(l codec.LazyNode) string {
	text := "<" + l.State().String() + ">"
	if r, ok := l.(rawHolder); ok {
		if raw, ok := r.Raw(); ok {
			text = fmt.Sprintf("<%s %d bytes at 0x%x>", l.State(), len(raw), r.Offset())
		}
	}
	return p.render(lazyStyle, text)
}

func composite(n codec.Node) bool {
	switch n.(type) {
	case codec.LazyNode, codec.Union, codec.Sequence, codec.Record:
		return true
	}
	return false
}

func empty(n codec.Node) bool {
	switch v := n.(type) {
	case codec.Record:
		return len(v.Fields()) == 0
	case codec.Sequence:
		return v.Len() == 0
	}
	return false
}

// leaf formats a primitive node by the value it points to.
func leaf(n codec.Node) string {
	switch v := n.(type) {
	case *codec.Span:
		return spanText(*v)
	case *codec.Name:
		return fmt.Sprintf("%q", string(*v))
	}
	rv := reflect.ValueOf(n)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "<nil>"
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return spanText(rv.Bytes())
	}
	if !rv.CanInterface() {
		return rv.Type().String()
	}
	return fmt.Sprint(rv.Interface())
}

func spanText(b []byte) string {
	if len(b) > maxSpan {
		return fmt.Sprintf("%d bytes % x ...", len(b), b[:maxSpan])
	}
	return fmt.Sprintf("%d bytes % x", len(b), b)
}
