package wasm_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/errors"
	"github.com/wippyai/wasmbin/wasm"
)

// buildCallers has two functions: f0 does nothing, f1 calls f0. f1 is
// exported as "run", both sit in a table, and both are named.
func buildCallers() *wasm.Module {
	ft := wasm.FuncType{}
	return &wasm.Module{Sections: []wasm.Section{
		wasm.NewTypeSection(ft),
		wasm.NewFunctionSection(0, 0),
		wasm.NewTableSection(wasm.TableType{Elem: wasm.FuncRef, Limits: wasm.NewLimits(2, nil)}),
		wasm.NewExportSection(wasm.Export{Name: "run", Desc: &wasm.ExportFunc{Func: 1}}),
		wasm.NewElementSection(&wasm.ElemActiveFuncs{
			Offset: wasm.Expression{wasm.I32Const(0)},
			Funcs:  wasm.FuncIdxs{0, 1},
		}),
		wasm.NewCodeSection(
			wasm.FuncBody{Expr: wasm.Expression{wasm.Op(wasm.OpNop)}},
			wasm.FuncBody{Expr: wasm.Expression{wasm.Call(0)}},
		),
		wasm.NewCustomSection(&wasm.NameSection{Subsections: []wasm.NameSubsection{
			&wasm.ModuleNameSubsection{Lazy: codec.NewLazy[codec.Name](codec.Name("callers"))},
			&wasm.FuncNameSubsection{Lazy: codec.NewLazy[wasm.FuncNameMap](wasm.FuncNameMap{
				Names: codec.Vec[wasm.NameAssoc[wasm.FuncIdx, *wasm.FuncIdx], *wasm.NameAssoc[wasm.FuncIdx, *wasm.FuncIdx]]{
					{Index: 0, Name: "idle"},
					{Index: 1, Name: "run"},
				},
			})},
		}}),
	}}
}

func funcNames(t *testing.T, m *wasm.Module) *wasm.FuncNameMap {
	t.Helper()
	cs, ok, err := m.Custom(wasm.CustomName)
	if err != nil || !ok {
		t.Fatalf("Custom(name) = %v, %v", ok, err)
	}
	c, err := cs.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ns, ok := c.Payload.(*wasm.NameSection)
	if !ok {
		t.Fatalf("payload is %T", c.Payload)
	}
	names, ok, err := ns.FuncNames()
	if err != nil || !ok {
		t.Fatalf("FuncNames = %v, %v", ok, err)
	}
	return names
}

func TestInsertFuncImport(t *testing.T) {
	m := decode(t, buildCallers().Encode())

	idx, err := m.InsertFuncImport("env", "log", 0)
	if err != nil {
		t.Fatalf("InsertFuncImport: %v", err)
	}
	if idx != 0 {
		t.Errorf("index = %d, want 0", idx)
	}
	if err := m.CheckOrder(); err != nil {
		t.Errorf("CheckOrder: %v", err)
	}

	got := decode(t, m.Encode())

	if n, err := got.FuncImports(); err != nil || n != 1 {
		t.Errorf("FuncImports = %d, %v", n, err)
	}

	es, _ := wasm.FindSection[*wasm.ExportSection](got)
	exports, _ := es.Get()
	if f := (*exports)[0].Desc.(*wasm.ExportFunc).Func; f != 2 {
		t.Errorf("export run = %d, want 2", f)
	}

	els, _ := wasm.FindSection[*wasm.ElementSection](got)
	elems, _ := els.Get()
	if diff := cmp.Diff(wasm.FuncIdxs{1, 2}, (*elems)[0].(*wasm.ElemActiveFuncs).Funcs); diff != "" {
		t.Errorf("element funcs (-want +got):\n%s", diff)
	}

	cs, _ := wasm.FindSection[*wasm.CodeSection](got)
	codes, _ := cs.Get()
	body, err := (*codes)[1].Get()
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if f := *body.Expr[0].Imm.(*wasm.FuncIdx); f != 1 {
		t.Errorf("call target = %d, want 1", f)
	}

	names := funcNames(t, got)
	for i, want := range map[wasm.FuncIdx]string{1: "idle", 2: "run"} {
		if name, ok := names.Lookup(i); !ok || name != want {
			t.Errorf("name of %d = %q, %v, want %q", i, name, ok, want)
		}
	}
	if _, ok := names.Lookup(0); ok {
		t.Error("import got a name")
	}
}

func TestInsertFuncImportSIMDBody(t *testing.T) {
	data := buildSIMD().Encode()
	if _, err := wasm.DecodeWithOptions(data, codec.Options{Eager: true}); err != nil {
		t.Fatalf("eager decode: %v", err)
	}

	m := decode(t, data)
	if _, err := m.InsertFuncImport("env", "log", 0); err != nil {
		t.Fatalf("InsertFuncImport: %v", err)
	}
	got, err := wasm.DecodeWithOptions(m.Encode(), codec.Options{Eager: true})
	if err != nil {
		t.Fatalf("decode edited module: %v", err)
	}
	es, _ := wasm.FindSection[*wasm.ExportSection](got)
	exports, _ := es.Get()
	if f := (*exports)[0].Desc.(*wasm.ExportFunc).Func; f != 1 {
		t.Errorf("export lane = %d, want 1", f)
	}
	cs, _ := wasm.FindSection[*wasm.CodeSection](got)
	codes, _ := cs.Get()
	body, _ := (*codes)[0].Get()
	if v := *body.Expr[0].Imm.(*wasm.V128); v != (wasm.V128{7}) {
		t.Errorf("v128.const = % x", v[:])
	}
}

func TestInsertFuncImportKeepsUntouchedSections(t *testing.T) {
	in := buildCallers().Encode()
	m := decode(t, in)

	if _, err := m.InsertFuncImport("env", "log", 0); err != nil {
		t.Fatalf("InsertFuncImport: %v", err)
	}

	ts, _ := wasm.FindSection[*wasm.TypeSection](m)
	if ts.State() != codec.Clean || codec.Modified(ts) {
		t.Errorf("type section state = %v", ts.State())
	}
	tab, _ := wasm.FindSection[*wasm.TableSection](m)
	if codec.Modified(tab) {
		t.Error("table section modified")
	}
	cs, _ := wasm.FindSection[*wasm.CodeSection](m)
	codes, _ := cs.Get()
	if st := (*codes)[0].State(); st != codec.Clean {
		t.Errorf("body 0 state = %v, want clean", st)
	}
	if st := (*codes)[1].State(); st != codec.Dirty {
		t.Errorf("body 1 state = %v, want dirty", st)
	}

	out := m.Encode()
	// Header, type section and import section come first; the type
	// section bytes are copied unchanged.
	typeLen := 2 + int(in[9])
	if !bytes.Equal(out[:8+typeLen], in[:8+typeLen]) {
		t.Errorf("type section changed: % x", out[:8+typeLen])
	}
}

func TestInsertFuncImportAfterExisting(t *testing.T) {
	m := buildCallers()
	m.InsertSection(wasm.NewImportSection(
		wasm.Import{Module: "env", Name: "mem", Desc: &wasm.ImportMemory{MemType: wasm.MemType{Limits: wasm.NewLimits(1, nil)}}},
		wasm.Import{Module: "env", Name: "first", Desc: &wasm.ImportFunc{Type: 0}},
	))
	m = decode(t, m.Encode())

	idx, err := m.InsertFuncImport("env", "second", 0)
	if err != nil {
		t.Fatalf("InsertFuncImport: %v", err)
	}
	if idx != 1 {
		t.Errorf("index = %d, want 1", idx)
	}

	got := decode(t, m.Encode())
	is, _ := wasm.FindSection[*wasm.ImportSection](got)
	imps, _ := is.Get()
	if len(*imps) != 3 || (*imps)[2].Name != "second" {
		t.Fatalf("imports = %+v", *imps)
	}
	names := funcNames(t, got)
	if name, _ := names.Lookup(0); name != "idle" {
		t.Errorf("name of 0 = %q, want idle", name)
	}
	if name, _ := names.Lookup(2); name != "run" {
		t.Errorf("name of 2 = %q, want run", name)
	}
	if _, ok := names.Lookup(1); ok {
		t.Error("new import got a name")
	}
}

func TestBuildID(t *testing.T) {
	m := decode(t, addModule)
	id := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	m.AddBuildID(id)

	out := m.Encode()
	tail := concat([]byte{0x00, 0x0D, 0x08}, []byte(wasm.CustomBuildID), id)
	if !bytes.Equal(out[len(addModule):], tail) {
		t.Errorf("tail = % x, want % x", out[len(addModule):], tail)
	}

	got, ok, err := decode(t, out).BuildID()
	if err != nil || !ok {
		t.Fatalf("BuildID = %v, %v", ok, err)
	}
	if !bytes.Equal(got, id) {
		t.Errorf("BuildID = % x", got)
	}

	if _, ok, err := decode(t, addModule).BuildID(); ok || err != nil {
		t.Errorf("BuildID on plain module = %v, %v", ok, err)
	}
}

func TestCustomSections(t *testing.T) {
	m := buildAdd()
	m.InsertSection(wasm.NewCustomSection(wasm.NewProducersSection(wasm.ProducerField{
		Name: "language",
		Values: codec.Vec[wasm.VersionedName, *wasm.VersionedName]{
			{Name: "Go", Version: "1.25"},
		},
	})))
	m.InsertSection(wasm.NewCustomSection(&wasm.SourceMappingURL{URL: "add.wasm.map"}))
	m.InsertSection(wasm.NewCustomSection(&wasm.ExternalDebugInfo{URL: "add.debug.wasm"}))
	m.InsertSection(wasm.NewCustomSection(wasm.NewRawCustom("vendor", []byte{1, 2, 3})))

	data := m.Encode()
	got, err := wasm.DecodeWithOptions(data, codec.Options{Eager: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out := got.Encode(); !bytes.Equal(out, data) {
		t.Errorf("re-encode differs")
	}

	tests := []struct {
		name string
		want wasm.CustomPayload
	}{
		{wasm.CustomProducers, &wasm.ProducersSection{}},
		{wasm.CustomSourceMappingURL, &wasm.SourceMappingURL{URL: "add.wasm.map"}},
		{wasm.CustomExternalDebugInfo, &wasm.ExternalDebugInfo{URL: "add.debug.wasm"}},
		{"vendor", wasm.NewRawCustom("vendor", []byte{1, 2, 3})},
	}
	for _, tt := range tests {
		cs, ok, err := got.Custom(tt.name)
		if err != nil || !ok {
			t.Fatalf("Custom(%q) = %v, %v", tt.name, ok, err)
		}
		c, _ := cs.Get()
		if c.Name() != tt.name {
			t.Errorf("Name = %q, want %q", c.Name(), tt.name)
		}
		switch p := c.Payload.(type) {
		case *wasm.ProducersSection:
			fields, err := p.Get()
			if err != nil {
				t.Fatalf("producers: %v", err)
			}
			if len(*fields) != 1 || (*fields)[0].Values[0].Version != "1.25" {
				t.Errorf("producers = %+v", *fields)
			}
		default:
			if diff := cmp.Diff(tt.want, c.Payload); diff != "" {
				t.Errorf("%s (-want +got):\n%s", tt.name, diff)
			}
		}
	}

	if cs, ok, err := got.Custom("missing"); cs != nil || ok || err != nil {
		t.Errorf("Custom(missing) = %v, %v, %v", cs, ok, err)
	}
}

func TestCustomPayloadErrorIsReported(t *testing.T) {
	// A "name" section whose function subsection declares one entry but
	// holds none.
	data := concat(header, []byte{0x00, 0x08, 0x04, 'n', 'a', 'm', 'e', 0x01, 0x01, 0x01})

	m := decode(t, data)
	if _, ok, err := m.Custom(wasm.CustomName); !ok || err != nil {
		t.Fatalf("Custom: %v", err)
	}
	if got := m.Encode(); !bytes.Equal(got, data) {
		t.Errorf("Encode = % x", got)
	}
	if _, err := wasm.DecodeWithOptions(data, codec.Options{Eager: true}); err == nil {
		t.Error("eager decode accepted a broken name subsection")
	}
}

func TestCustomWithoutPayloadPanics(t *testing.T) {
	m := &wasm.Module{Sections: []wasm.Section{&wasm.CustomSection{}}}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindInvalidInput}) {
			t.Errorf("panic value = %v", r)
		}
	}()
	m.Encode()
}

func TestFuncNamesMissing(t *testing.T) {
	ns := &wasm.NameSection{Subsections: []wasm.NameSubsection{
		&wasm.ModuleNameSubsection{Lazy: codec.NewLazy[codec.Name](codec.Name("solo"))},
	}}
	names, ok, err := ns.FuncNames()
	if names != nil || ok || err != nil {
		t.Errorf("FuncNames = %v, %v, %v", names, ok, err)
	}
}

func TestProducersDecodeOnAccess(t *testing.T) {
	m := buildAdd()
	m.InsertSection(wasm.NewCustomSection(wasm.NewProducersSection(wasm.ProducerField{
		Name:   "processed-by",
		Values: codec.Vec[wasm.VersionedName, *wasm.VersionedName]{{Name: "wasmbin", Version: "0.1"}},
	})))
	data := m.Encode()

	got := decode(t, data)
	cs, ok, err := got.Custom(wasm.CustomProducers)
	if err != nil || !ok {
		t.Fatalf("Custom(producers) = %v, %v", ok, err)
	}
	c, _ := cs.Get()
	p := c.Payload.(*wasm.ProducersSection)
	if st := p.State(); st != codec.Undecoded {
		t.Errorf("producers state = %v, want undecoded", st)
	}

	fields, err := p.GetMut()
	if err != nil {
		t.Fatalf("GetMut: %v", err)
	}
	(*fields)[0].Values[0].Version = "0.2"

	back := decode(t, got.Encode())
	cs, _, _ = back.Custom(wasm.CustomProducers)
	c, _ = cs.Get()
	fields, err = c.Payload.(*wasm.ProducersSection).Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v := (*fields)[0].Values[0].Version; v != "0.2" {
		t.Errorf("version = %q, want 0.2", v)
	}
}
