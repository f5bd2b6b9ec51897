package wasm

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/visit"
)

// AddBuildID appends a build_id custom section holding id.
func (m *Module) AddBuildID(id []byte) *CustomSection {
	s := NewCustomSection(NewRawCustom(CustomBuildID, id))
	m.InsertSection(s)
	return s
}

// BuildID returns the payload of the first build_id custom section.
func (m *Module) BuildID() ([]byte, bool, error) {
	s, ok, err := m.Custom(CustomBuildID)
	if err != nil || !ok {
		return nil, false, err
	}
	c, err := s.Get()
	if err != nil {
		return nil, false, err
	}
	raw, ok := c.Payload.(*RawCustom)
	if !ok {
		return nil, false, nil
	}
	return raw.Data, true, nil
}

// FuncImports returns the number of imported functions. Function imports
// occupy the lowest function indices.
func (m *Module) FuncImports() (int, error) {
	s, ok := FindSection[*ImportSection](m)
	if !ok {
		return 0, nil
	}
	imps, err := s.Get()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, imp := range *imps {
		if _, ok := imp.Desc.(*ImportFunc); ok {
			n++
		}
	}
	return n, nil
}

// InsertFuncImport adds a function import of the given type and returns its
// index. Every function index at or above the new one is shifted up by one
// throughout the module, name maps included. Sections without a shifted
// reference stay verbatim.
func (m *Module) InsertFuncImport(module, name string, typ TypeIdx) (FuncIdx, error) {
	n, err := m.FuncImports()
	if err != nil {
		return 0, err
	}
	at := FuncIdx(n)
	shifted := 0
	_, err = visit.Rewrite(m.Node(), func(_ *visit.Context, f *FuncIdx) (bool, error) {
		if *f < at {
			return false, nil
		}
		*f++
		shifted++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	s := EnsureSection(m, func() *ImportSection { return NewImportSection() })
	imps, err := s.GetMut()
	if err != nil {
		return 0, err
	}
	*imps = append(*imps, Import{
		Module: codec.Name(module),
		Name:   codec.Name(name),
		Desc:   &ImportFunc{Type: typ},
	})
	Logger().Debug("inserted function import",
		zap.String("module", module),
		zap.String("name", name),
		zap.Uint32("index", uint32(at)),
		zap.Int("shifted", shifted),
	)
	return at, nil
}
