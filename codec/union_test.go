package codec_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
)

func TestUnionDecode(t *testing.T) {
	// main: square "ab", extra: [circle 7], labels: [{1 "x"}]
	in := []byte{0x01, 0x02, 'a', 'b', 0x01, 0x00, 0x07, 0x01, 0x01, 0x01, 'x'}

	var d drawing
	if err := d.Decode(codec.NewCursor(in)); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	sq, ok := d.Main.(*square)
	if !ok {
		t.Fatalf("Main = %T, want *square", d.Main)
	}
	if sq.Side != "ab" {
		t.Errorf("Side = %q, want ab", sq.Side)
	}
	if diff := cmp.Diff([]shape{&circle{R: 7}}, d.Extra); diff != "" {
		t.Errorf("Extra mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]pair{{A: 1, B: "x"}}, []pair(d.Labels)); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}

	if got := encode(&d); !bytes.Equal(got, in) {
		t.Errorf("encode = % x, want % x", got, in)
	}
	if n, ok := d.ByteLen(); !ok || n != len(in) {
		t.Errorf("ByteLen = %d, %v, want %d", n, ok, len(in))
	}
}

func TestUnionDiscriminantClosure(t *testing.T) {
	var s shape
	err := codec.UnionOf(&s, shapes).Decode(codec.NewCursor([]byte{0x02, 0x00}))
	if !errors.Is(err, errors.ErrInvalidDiscriminant) {
		t.Fatalf("Decode error = %v, want invalid_discriminant", err)
	}

	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatal("expected *errors.Error")
	}
	want := errors.Discriminant{Context: "shape", Value: 2}
	if e.Value != want {
		t.Errorf("Value = %#v, want %#v", e.Value, want)
	}
	if e.Offset != 0 {
		t.Errorf("Offset = %d, want 0", e.Offset)
	}
	if s != nil {
		t.Errorf("failed decode assigned %T", s)
	}
}

func TestUnionVariantPath(t *testing.T) {
	// extra[1] is a square whose name is truncated.
	in := []byte{0x00, 0x01, 0x02, 0x00, 0x02, 0x01, 0x05, 'a'}
	var d drawing
	err := d.Decode(codec.NewCursor(in))

	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("Decode error = %v", err)
	}
	if got, want := e.PathString(), "(root).extra[1]:<square>"; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
	var elem *errors.ElementError
	if !errors.As(err, &elem) || elem.Index != 1 {
		t.Errorf("ElementError = %+v, want index 1", elem)
	}
}

func TestUnionFallback(t *testing.T) {
	in := []byte{0x90, 0x01, 0x02, 0xaa, 0xbb}
	var s shape
	slot := codec.UnionOf(&s, openShapes)
	if err := slot.Decode(codec.NewCursor(in)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	o, ok := s.(*opaque)
	if !ok {
		t.Fatalf("decoded %T, want *opaque", s)
	}
	if o.D != 0x90 {
		t.Errorf("D = %#x, want 0x90", o.D)
	}
	if slot.CaseName() != "unknown" {
		t.Errorf("CaseName = %q", slot.CaseName())
	}
	if got := encode(slot); !bytes.Equal(got, in) {
		t.Errorf("encode = % x, want % x", got, in)
	}
}

func TestUnionSelect(t *testing.T) {
	var s shape = &circle{R: 1}
	slot := codec.UnionOf(&s, shapes)
	if !slot.Select(1) {
		t.Fatal("Select(1) failed")
	}
	if slot.Discriminant() != 1 || slot.CaseName() != "square" {
		t.Errorf("after Select: %d %s", slot.Discriminant(), slot.CaseName())
	}
	if slot.Select(9) {
		t.Error("Select(9) should fail on a closed table")
	}
	if diff := cmp.Diff([]uint32{0, 1}, slot.Cases()); diff != "" {
		t.Errorf("Cases mismatch (-want +got):\n%s", diff)
	}
}

func TestTableDuplicateCasePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate case should panic")
		}
	}()
	codec.NewTable[shape]("dup", codec.ByteTag).
		Case(0, "a", func() shape { return &circle{} }).
		Case(0, "b", func() shape { return &circle{} })
}

func TestExpect(t *testing.T) {
	n := codec.Expect(0x60, "FuncType")
	if err := n.Decode(codec.NewCursor([]byte{0x60})); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err := n.Decode(codec.NewCursor([]byte{0x61}))
	if !errors.Is(err, errors.ErrInvalidDiscriminant) {
		t.Errorf("Decode(0x61) error = %v", err)
	}
}

func TestSignature(t *testing.T) {
	n := codec.Signature([]byte("\x00asm"), errors.KindInvalidMagic)
	if err := n.Decode(codec.NewCursor([]byte("\x00asm"))); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := n.Decode(codec.NewCursor([]byte("\x7fELF"))); !errors.Is(err, errors.ErrInvalidMagic) {
		t.Errorf("Decode(ELF) error = %v", err)
	}
	if err := n.Decode(codec.NewCursor([]byte("\x00a"))); !errors.Is(err, errors.ErrUnexpectedEOF) {
		t.Errorf("Decode(short) error = %v", err)
	}
}
