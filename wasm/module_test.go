package wasm_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
	"github.com/wippyai/wasmbin/wasm"
)

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// addModule exports add(i32, i32) i32.
var addModule = concat(header,
	[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00},
	[]byte{0x0A, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B},
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func buildAdd() *wasm.Module {
	return &wasm.Module{Sections: []wasm.Section{
		wasm.NewTypeSection(wasm.FuncType{
			Params:  wasm.ValTypes{wasm.ValI32, wasm.ValI32},
			Results: wasm.ValTypes{wasm.ValI32},
		}),
		wasm.NewFunctionSection(0),
		wasm.NewExportSection(wasm.Export{Name: "add", Desc: &wasm.ExportFunc{Func: 0}}),
		wasm.NewCodeSection(wasm.FuncBody{Expr: wasm.Expression{
			wasm.LocalGet(0),
			wasm.LocalGet(1),
			wasm.Op(wasm.OpI32Add),
		}}),
	}}
}

// buildSIMD exports lane() i32, which reads lane 0 of a v128 constant.
func buildSIMD() *wasm.Module {
	lane := wasm.LaneIdx4(0)
	return &wasm.Module{Sections: []wasm.Section{
		wasm.NewTypeSection(wasm.FuncType{Results: wasm.ValTypes{wasm.ValI32}}),
		wasm.NewFunctionSection(0),
		wasm.NewExportSection(wasm.Export{Name: "lane", Desc: &wasm.ExportFunc{Func: 0}}),
		wasm.NewCodeSection(wasm.FuncBody{Expr: wasm.Expression{
			wasm.V128Const(wasm.V128{7}),
			{Opcode: wasm.OpI32x4ExtractLane, Imm: &lane},
		}}),
	}}
}

func decode(t *testing.T, data []byte) *wasm.Module {
	t.Helper()
	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return m
}

func state(s wasm.Section) codec.State {
	return s.(codec.LazyNode).State()
}

func asError(t *testing.T, err error) *errors.Error {
	t.Helper()
	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v (%T) carries no *errors.Error", err, err)
	}
	return e
}

func TestEncodeFromScratch(t *testing.T) {
	m := buildAdd()
	if got := m.Encode(); !bytes.Equal(got, addModule) {
		t.Fatalf("Encode = % x\nwant     % x", got, addModule)
	}

	var buf bytes.Buffer
	n, err := m.EncodeTo(&buf)
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	if n != int64(len(addModule)) {
		t.Errorf("EncodeTo wrote %d bytes, want %d", n, len(addModule))
	}
	if !bytes.Equal(buf.Bytes(), addModule) {
		t.Errorf("EncodeTo = % x", buf.Bytes())
	}
}

func TestDecodeIsLazy(t *testing.T) {
	m := decode(t, addModule)

	if len(m.Sections) != 4 {
		t.Fatalf("got %d sections, want 4", len(m.Sections))
	}
	wantIDs := []wasm.SectionID{wasm.SectionType, wasm.SectionFunction, wasm.SectionExport, wasm.SectionCode}
	for i, s := range m.Sections {
		if s.ID() != wantIDs[i] {
			t.Errorf("section %d id = %v, want %v", i, s.ID(), wantIDs[i])
		}
		if state(s) != codec.Undecoded {
			t.Errorf("section %d state = %v, want undecoded", i, state(s))
		}
	}

	if got := m.Encode(); !bytes.Equal(got, addModule) {
		t.Fatalf("re-encode = % x", got)
	}
	for i, s := range m.Sections {
		if state(s) != codec.Undecoded {
			t.Errorf("encode forced section %d", i)
		}
	}
}

func TestGetKeepsSectionVerbatim(t *testing.T) {
	m := decode(t, addModule)

	ts, ok := wasm.FindSection[*wasm.TypeSection](m)
	if !ok {
		t.Fatal("no type section")
	}
	types, err := ts.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := wasm.FuncTypes{{
		Params:  wasm.ValTypes{wasm.ValI32, wasm.ValI32},
		Results: wasm.ValTypes{wasm.ValI32},
	}}
	if diff := cmp.Diff(want, *types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
	if ts.State() != codec.Clean {
		t.Errorf("State = %v, want clean", ts.State())
	}
	raw, ok := ts.Raw()
	if !ok || !bytes.Equal(raw, addModule[10:17]) {
		t.Errorf("Raw = % x, %v", raw, ok)
	}
	if got := m.Encode(); !bytes.Equal(got, addModule) {
		t.Errorf("re-encode = % x", got)
	}
}

func TestDirtyIsolation(t *testing.T) {
	m := decode(t, addModule)

	cs, _ := wasm.FindSection[*wasm.CodeSection](m)
	codes, err := cs.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, err := (*codes)[0].GetMut()
	if err != nil {
		t.Fatalf("GetMut: %v", err)
	}
	body.Expr = append(body.Expr, wasm.Op(wasm.OpNop))

	want := concat(addModule[:30],
		[]byte{0x0A, 0x0A, 0x01, 0x08, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x01, 0x0B},
	)
	if got := m.Encode(); !bytes.Equal(got, want) {
		t.Fatalf("Encode = % x\nwant     % x", got, want)
	}
	for i, s := range m.Sections[:3] {
		if state(s) != codec.Undecoded {
			t.Errorf("section %d state = %v, want undecoded", i, state(s))
		}
	}
	if cs.State() != codec.Clean {
		t.Errorf("code section state = %v, want clean", cs.State())
	}
	if !codec.Modified(cs) {
		t.Error("code section not reported modified")
	}
}

func TestSetReplacesSection(t *testing.T) {
	m := decode(t, addModule)

	ex, _ := wasm.FindSection[*wasm.ExportSection](m)
	ex.Set(wasm.Exports{{Name: "sum", Desc: &wasm.ExportFunc{Func: 0}}})

	got := decode(t, m.Encode())
	ex2, _ := wasm.FindSection[*wasm.ExportSection](got)
	exports, err := ex2.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(*exports) != 1 || (*exports)[0].Name != "sum" {
		t.Errorf("exports = %+v", *exports)
	}
}

func TestSectionTrailingBytes(t *testing.T) {
	data := concat(header, []byte{0x01, 0x0A, 0x01, 0x60, 0x03, 0x7F, 0x7F, 0x7F, 0x01, 0x7F, 0x00, 0x00})

	m := decode(t, data)
	ts := m.Sections[0].(*wasm.TypeSection)
	_, err := ts.Get()
	if !errors.Is(err, errors.ErrTrailingBytes) {
		t.Fatalf("Get error = %v, want trailing bytes", err)
	}
	if v := asError(t, err).Value; v != (errors.Trailing{Expected: 10, Consumed: 8}) {
		t.Errorf("Value = %+v", v)
	}

	_, err = wasm.DecodeWithOptions(data, codec.Options{Eager: true})
	if !errors.Is(err, errors.ErrTrailingBytes) {
		t.Fatalf("eager error = %v, want trailing bytes", err)
	}
	if p := asError(t, err).PathString(); p != "(root).sections[0]:<type>" {
		t.Errorf("path = %q", p)
	}
}

func TestUnknownSectionPassthrough(t *testing.T) {
	data := concat(header,
		[]byte{0x20, 0x03, 0xAA, 0xBB, 0xCC},
		[]byte{0x03, 0x02, 0x01, 0x00},
	)

	m, err := wasm.DecodeWithOptions(data, codec.Options{Eager: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	u, ok := m.Sections[0].(*wasm.UnknownSection)
	if !ok {
		t.Fatalf("section 0 is %T", m.Sections[0])
	}
	if u.ID() != 0x20 || !bytes.Equal(u.Data, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("unknown section = %v % x", u.ID(), []byte(u.Data))
	}
	if u.ID().Known() {
		t.Error("id 0x20 reported known")
	}
	if got := m.Encode(); !bytes.Equal(got, data) {
		t.Errorf("Encode = % x", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
		path string
	}{
		{"empty", nil, errors.ErrUnexpectedEOF, "(root).magic"},
		{"short magic", []byte{0x00, 0x61, 0x73}, errors.ErrUnexpectedEOF, "(root).magic"},
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}, errors.ErrInvalidMagic, "(root).magic"},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, errors.ErrInvalidVersion, "(root).version"},
		{"section past end", concat(header, []byte{0x01, 0x05, 0x01}), errors.ErrUnexpectedEOF, "(root).sections[0]:<type>"},
		{"overlong size", concat(header, []byte{0x01, 0x80, 0x00}), errors.ErrInvalidEncoding, "(root).sections[0]:<type>"},
		{"missing size", concat(header, []byte{0x01}), errors.ErrUnexpectedEOF, "(root).sections[0]:<type>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := wasm.Decode(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if m != nil {
				t.Error("partial module returned")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if p := asError(t, err).PathString(); p != tt.path {
				t.Errorf("path = %q, want %q", p, tt.path)
			}
		})
	}
}

func TestEagerReportsLowestSection(t *testing.T) {
	data := concat(header,
		[]byte{0x03, 0x02, 0x01, 0x00},
		[]byte{0x01, 0x0A, 0x01, 0x60, 0x03, 0x7F, 0x7F, 0x7F, 0x01, 0x7F, 0x00, 0x00},
		[]byte{0x05, 0x03, 0x01, 0x00, 0x01},
		[]byte{0x03, 0x01, 0x05},
	)

	tests := []struct {
		name string
		opts codec.Options
	}{
		{"sequential", codec.Options{Eager: true}},
		{"parallel", codec.Options{Parallel: true, Workers: 4}},
		{"parallel one worker", codec.Options{Eager: true, Parallel: true, Workers: 1}},
		{"parallel default workers", codec.Options{Parallel: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.DecodeWithOptions(data, tt.opts)
			if !errors.Is(err, errors.ErrTrailingBytes) {
				t.Fatalf("error = %v, want trailing bytes", err)
			}
			if p := asError(t, err).PathString(); p != "(root).sections[1]:<type>" {
				t.Errorf("path = %q", p)
			}
		})
	}
}

func TestParallelForcesEverything(t *testing.T) {
	m, err := wasm.DecodeWithOptions(addModule, codec.Options{Parallel: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, s := range m.Sections {
		if state(s) != codec.Clean {
			t.Errorf("section %d state = %v, want clean", i, state(s))
		}
	}
	cs, _ := wasm.FindSection[*wasm.CodeSection](m)
	codes, _ := cs.Get()
	if st := (*codes)[0].State(); st != codec.Clean {
		t.Errorf("code entry state = %v, want clean", st)
	}
	if got := m.Encode(); !bytes.Equal(got, addModule) {
		t.Errorf("Encode = % x", got)
	}
}

func TestNestedLazyErrorPath(t *testing.T) {
	// The second body holds an unknown opcode.
	data := concat(header,
		[]byte{0x0A, 0x09, 0x02, 0x03, 0x00, 0x01, 0x0B, 0x03, 0x00, 0xFF, 0x0B},
	)

	m := decode(t, data)
	cs := m.Sections[0].(*wasm.CodeSection)
	codes, err := cs.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := (*codes)[0].Get(); err != nil {
		t.Fatalf("body 0: %v", err)
	}

	_, err = wasm.DecodeWithOptions(data, codec.Options{Eager: true})
	if !errors.Is(err, errors.ErrInvalidDiscriminant) {
		t.Fatalf("error = %v, want invalid discriminant", err)
	}
	e := asError(t, err)
	if p := e.PathString(); p != "(root).sections[0]:<code>[1].expr[0]" {
		t.Errorf("path = %q", p)
	}
	if v := e.Value; v != (errors.Discriminant{Context: "Instruction", Value: 0xFF}) {
		t.Errorf("Value = %+v", v)
	}
	if e.Offset != 17 {
		t.Errorf("Offset = %d, want 17", e.Offset)
	}
}

func TestDropRaw(t *testing.T) {
	m, err := wasm.DecodeWithOptions(addModule, codec.Options{Retention: codec.DropRaw, Eager: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, s := range m.Sections {
		if state(s) != codec.Detached {
			t.Errorf("section %d state = %v, want detached", i, state(s))
		}
	}
	if got := m.Encode(); !bytes.Equal(got, addModule) {
		t.Errorf("Encode = % x", got)
	}
}

func TestInsertSection(t *testing.T) {
	m := &wasm.Module{Sections: []wasm.Section{
		wasm.NewTypeSection(),
		wasm.NewCodeSection(),
	}}

	m.InsertSection(wasm.NewCustomSection(wasm.NewRawCustom("first", nil)))
	m.InsertSection(wasm.NewFunctionSection())
	m.InsertSection(wasm.NewDataCountSection(0))
	m.InsertSection(wasm.NewTagSection())
	m.InsertSection(wasm.NewGlobalSection())

	var got []wasm.SectionID
	for _, s := range m.Sections {
		got = append(got, s.ID())
	}
	want := []wasm.SectionID{
		wasm.SectionType,
		wasm.SectionFunction,
		wasm.SectionTag,
		wasm.SectionGlobal,
		wasm.SectionDataCount,
		wasm.SectionCode,
		wasm.SectionCustom,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if err := m.CheckOrder(); err != nil {
		t.Errorf("CheckOrder: %v", err)
	}

	es := wasm.EnsureSection(m, func() *wasm.ExportSection { return wasm.NewExportSection() })
	if again := wasm.EnsureSection(m, func() *wasm.ExportSection { return wasm.NewExportSection() }); again != es {
		t.Error("EnsureSection created a second export section")
	}
	if m.Sections[4] != wasm.Section(es) {
		t.Errorf("export section at wrong position: %v", m.Sections[4].ID())
	}
}

func TestCheckOrder(t *testing.T) {
	tests := []struct {
		name     string
		sections []wasm.Section
		path     string
	}{
		{"ordered", []wasm.Section{wasm.NewTypeSection(), wasm.NewFunctionSection(), wasm.NewCodeSection()}, ""},
		{"custom anywhere", []wasm.Section{
			wasm.NewCustomSection(wasm.NewRawCustom("a", nil)),
			wasm.NewTypeSection(),
			wasm.NewCustomSection(wasm.NewRawCustom("b", nil)),
			wasm.NewImportSection(),
		}, ""},
		{"reversed", []wasm.Section{wasm.NewCodeSection(), wasm.NewTypeSection()}, "(root).sections[1]"},
		{"duplicate", []wasm.Section{wasm.NewTypeSection(), wasm.NewTypeSection()}, "(root).sections[1]"},
		{"data count after code", []wasm.Section{wasm.NewCodeSection(), wasm.NewDataCountSection(1)}, "(root).sections[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &wasm.Module{Sections: tt.sections}
			err := m.CheckOrder()
			if tt.path == "" {
				if err != nil {
					t.Fatalf("CheckOrder: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if p := asError(t, err).PathString(); p != tt.path {
				t.Errorf("path = %q, want %q", p, tt.path)
			}
		})
	}
}

func TestDuplicateSectionsDecode(t *testing.T) {
	data := concat(header,
		[]byte{0x03, 0x02, 0x01, 0x00},
		[]byte{0x03, 0x02, 0x01, 0x00},
	)
	m := decode(t, data)
	if len(m.Sections) != 2 {
		t.Fatalf("got %d sections", len(m.Sections))
	}
	if err := m.CheckOrder(); err == nil {
		t.Error("CheckOrder accepted duplicate function sections")
	}
	if got := m.Encode(); !bytes.Equal(got, data) {
		t.Errorf("Encode = % x", got)
	}
}

func TestSectionLookup(t *testing.T) {
	m := decode(t, addModule)

	s, ok := m.Section(wasm.SectionExport)
	if !ok || s.ID() != wasm.SectionExport {
		t.Fatalf("Section(export) = %v, %v", s, ok)
	}
	if _, ok := m.Section(wasm.SectionData); ok {
		t.Error("found a data section")
	}
	if _, ok := wasm.FindSection[*wasm.MemorySection](m); ok {
		t.Error("found a memory section")
	}
	for _, s := range m.Sections {
		if state(s) != codec.Undecoded {
			t.Errorf("lookup forced %v", s.ID())
		}
	}
}

func TestSectionIDNames(t *testing.T) {
	for id := wasm.SectionCustom; id <= wasm.SectionTag; id++ {
		got, ok := wasm.SectionIDFromString(id.String())
		if !ok || got != id {
			t.Errorf("SectionIDFromString(%q) = %v, %v", id.String(), got, ok)
		}
	}
	if _, ok := wasm.SectionIDFromString("bogus"); ok {
		t.Error("parsed bogus section name")
	}
	if s := wasm.SectionID(0x42).String(); s != "section(66)" {
		t.Errorf("String = %q", s)
	}
}
