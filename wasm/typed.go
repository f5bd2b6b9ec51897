package wasm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbin/errors"
)

// TypedModule views a module by index space. Every space lists its imports
// first, in import order, then the entities the module defines, so an index
// from an instruction selects its slice element directly.
//
// The view points into the module. Bodies stay lazy; decode one with
// Body.Get, or edit it with Body.GetMut and re-encode the module.
type TypedModule struct {
	Name     string
	Types    []FuncType
	Funcs    []TypedFunc
	Tables   []TypedTable
	Memories []TypedMemory
	Globals  []TypedGlobal
	Tags     []TypedTag
	Start    *FuncIdx
}

// Origin records how an entity enters and leaves the module. Import is nil
// for defined entities.
type Origin struct {
	Import  *Import
	Exports []string
}

// Imported reports whether the entity is imported.
func (o *Origin) Imported() bool { return o.Import != nil }

// TypedFunc is one entry of the function index space.
type TypedFunc struct {
	Origin
	Body *Code
	Name string
	Type TypeIdx
}

// TypedTable is one entry of the table index space.
type TypedTable struct {
	Origin
	Type TableType
}

// TypedMemory is one entry of the memory index space.
type TypedMemory struct {
	Origin
	Type MemType
}

// TypedGlobal is one entry of the global index space. Init is nil for
// imports.
type TypedGlobal struct {
	Origin
	Init Expression
	Type GlobalType
}

// TypedTag is one entry of the tag index space.
type TypedTag struct {
	Origin
	Type TypeIdx
}

// Typed builds the index-space view of m, decoding the sections that
// declare entities. Function bodies are not decoded.
func (m *Module) Typed() (*TypedModule, error) {
	t := &TypedModule{}
	if err := t.collectTypes(m); err != nil {
		return nil, err
	}
	if err := t.collectImports(m); err != nil {
		return nil, err
	}
	if err := t.collectDefined(m); err != nil {
		return nil, err
	}
	if err := t.collectExports(m); err != nil {
		return nil, err
	}
	if err := t.collectNames(m); err != nil {
		return nil, err
	}
	if s, ok := FindSection[*StartSection](m); ok {
		start, err := s.Get()
		if err != nil {
			return nil, err
		}
		fn := *start
		t.Start = &fn
	}
	Logger().Debug("typed view",
		zap.Int("types", len(t.Types)),
		zap.Int("funcs", len(t.Funcs)),
		zap.Int("globals", len(t.Globals)),
	)
	return t, nil
}

// Func returns the function at idx.
func (t *TypedModule) Func(idx FuncIdx) (*TypedFunc, bool) {
	if uint64(idx) >= uint64(len(t.Funcs)) {
		return nil, false
	}
	return &t.Funcs[idx], true
}

// FuncType returns the signature of the function at idx.
func (t *TypedModule) FuncType(idx FuncIdx) (*FuncType, bool) {
	f, ok := t.Func(idx)
	if !ok || uint64(f.Type) >= uint64(len(t.Types)) {
		return nil, false
	}
	return &t.Types[f.Type], true
}

// Exported returns the function exported under name.
func (t *TypedModule) Exported(name string) (FuncIdx, bool) {
	for i := range t.Funcs {
		for _, n := range t.Funcs[i].Exports {
			if n == name {
				return FuncIdx(i), true
			}
		}
	}
	return 0, false
}

func (t *TypedModule) collectTypes(m *Module) error {
	s, ok := FindSection[*TypeSection](m)
	if !ok {
		return nil
	}
	types, err := s.Get()
	if err != nil {
		return err
	}
	t.Types = *types
	return nil
}

func (t *TypedModule) collectImports(m *Module) error {
	s, ok := FindSection[*ImportSection](m)
	if !ok {
		return nil
	}
	imps, err := s.Get()
	if err != nil {
		return err
	}
	for i := range *imps {
		imp := &(*imps)[i]
		from := Origin{Import: imp}
		switch d := imp.Desc.(type) {
		case *ImportFunc:
			t.Funcs = append(t.Funcs, TypedFunc{Origin: from, Type: d.Type})
		case *ImportTable:
			t.Tables = append(t.Tables, TypedTable{Origin: from, Type: d.TableType})
		case *ImportMemory:
			t.Memories = append(t.Memories, TypedMemory{Origin: from, Type: d.MemType})
		case *ImportGlobal:
			t.Globals = append(t.Globals, TypedGlobal{Origin: from, Type: d.GlobalType})
		case *ImportTag:
			t.Tags = append(t.Tags, TypedTag{Origin: from, Type: d.Type})
		}
	}
	return nil
}

func (t *TypedModule) collectDefined(m *Module) error {
	var types TypeIdxs
	if s, ok := FindSection[*FunctionSection](m); ok {
		v, err := s.Get()
		if err != nil {
			return err
		}
		types = *v
	}
	var codes Codes
	if s, ok := FindSection[*CodeSection](m); ok {
		v, err := s.Get()
		if err != nil {
			return err
		}
		codes = *v
	}
	if len(types) != len(codes) {
		return errors.InvalidInput(errors.PhaseDecode,
			fmt.Sprintf("%d function declarations, %d bodies", len(types), len(codes)))
	}
	for i, ty := range types {
		t.Funcs = append(t.Funcs, TypedFunc{Type: ty, Body: &codes[i]})
	}

	if s, ok := FindSection[*TableSection](m); ok {
		v, err := s.Get()
		if err != nil {
			return err
		}
		for _, tt := range *v {
			t.Tables = append(t.Tables, TypedTable{Type: tt})
		}
	}
	if s, ok := FindSection[*MemorySection](m); ok {
		v, err := s.Get()
		if err != nil {
			return err
		}
		for _, mt := range *v {
			t.Memories = append(t.Memories, TypedMemory{Type: mt})
		}
	}
	if s, ok := FindSection[*GlobalSection](m); ok {
		v, err := s.Get()
		if err != nil {
			return err
		}
		for _, g := range *v {
			t.Globals = append(t.Globals, TypedGlobal{Type: g.Type, Init: g.Init})
		}
	}
	if s, ok := FindSection[*TagSection](m); ok {
		v, err := s.Get()
		if err != nil {
			return err
		}
		for _, tag := range *v {
			t.Tags = append(t.Tags, TypedTag{Type: tag.Type})
		}
	}
	return nil
}

func (t *TypedModule) collectExports(m *Module) error {
	s, ok := FindSection[*ExportSection](m)
	if !ok {
		return nil
	}
	exports, err := s.Get()
	if err != nil {
		return err
	}
	for _, e := range *exports {
		name := string(e.Name)
		var (
			o *Origin
			n int
		)
		switch d := e.Desc.(type) {
		case *ExportFunc:
			o, n = t.origin(len(t.Funcs), uint32(d.Func), func(i int) *Origin { return &t.Funcs[i].Origin })
		case *ExportTable:
			o, n = t.origin(len(t.Tables), uint32(d.Table), func(i int) *Origin { return &t.Tables[i].Origin })
		case *ExportMemory:
			o, n = t.origin(len(t.Memories), uint32(d.Mem), func(i int) *Origin { return &t.Memories[i].Origin })
		case *ExportGlobal:
			o, n = t.origin(len(t.Globals), uint32(d.Global), func(i int) *Origin { return &t.Globals[i].Origin })
		case *ExportTag:
			o, n = t.origin(len(t.Tags), uint32(d.Tag), func(i int) *Origin { return &t.Tags[i].Origin })
		}
		if o == nil {
			return errors.InvalidInput(errors.PhaseDecode,
				fmt.Sprintf("export %q: index out of range (%d entries)", name, n))
		}
		o.Exports = append(o.Exports, name)
	}
	return nil
}

func (t *TypedModule) origin(n int, idx uint32, at func(int) *Origin) (*Origin, int) {
	if uint64(idx) >= uint64(n) {
		return nil, n
	}
	return at(int(idx)), n
}

func (t *TypedModule) collectNames(m *Module) error {
	cs, ok, err := m.Custom(CustomName)
	if err != nil || !ok {
		return err
	}
	c, err := cs.Get()
	if err != nil {
		return err
	}
	ns, ok := c.Payload.(*NameSection)
	if !ok {
		return nil
	}
	for _, sub := range ns.Subsections {
		if mn, ok := sub.(*ModuleNameSubsection); ok {
			name, err := mn.Get()
			if err != nil {
				return err
			}
			t.Name = string(*name)
		}
	}
	names, ok, err := ns.FuncNames()
	if err != nil || !ok {
		return err
	}
	for i := range t.Funcs {
		if name, ok := names.Lookup(FuncIdx(i)); ok {
			t.Funcs[i].Name = name
		}
	}
	return nil
}
