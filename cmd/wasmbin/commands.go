package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/wasm"
)

func (a *app) dump(args []string) error {
	fs := a.flags("dump")
	kind := fs.String("section", "", "only sections of this kind (type, import, code, ...)")
	custom := fs.String("custom", "", "only the custom section with this name")
	force := fs.Bool("force", false, "decode lazy nodes instead of showing their byte ranges")
	path, err := a.parse(fs, args)
	if err != nil {
		return err
	}

	var want wasm.SectionID
	if *kind != "" {
		id, ok := wasm.SectionIDFromString(*kind)
		if !ok {
			return fmt.Errorf("unknown section kind %q", *kind)
		}
		want = id
	}

	_, m, err := a.load(path, codec.Options{})
	if err != nil {
		return err
	}
	p := &printer{w: a.out, force: *force, styled: a.styled}
	shown := 0
	for i, s := range m.Sections {
		if *kind != "" && s.ID() != want {
			continue
		}
		if *custom != "" {
			cs, ok := s.(*wasm.CustomSection)
			if !ok {
				continue
			}
			name, err := cs.Name()
			if err != nil {
				return fmt.Errorf("section %d: %w", i, err)
			}
			if name != *custom {
				continue
			}
		}
		p.section(i, s)
		shown++
	}
	if shown == 0 && (*kind != "" || *custom != "") {
		return fmt.Errorf("no matching section")
	}
	return nil
}

func (a *app) roundtrip(args []string) error {
	fs := a.flags("roundtrip")
	eager := fs.Bool("eager", false, "decode every lazy node before encoding")
	parallel := fs.Bool("parallel", false, "decode sections on worker goroutines")
	workers := fs.Int("workers", 0, "parallel workers (default GOMAXPROCS)")
	path, err := a.parse(fs, args)
	if err != nil {
		return err
	}

	data, m, err := a.load(path, codec.Options{Eager: *eager, Parallel: *parallel, Workers: *workers})
	if err != nil {
		return err
	}
	out := m.Encode()
	if !bytes.Equal(data, out) {
		at := firstDiff(data, out)
		return fmt.Errorf("round trip differs at offset 0x%x (input %d bytes, output %d bytes)", at, len(data), len(out))
	}
	fmt.Fprintf(a.out, "%s: %d sections, %d bytes, identical\n", path, len(m.Sections), len(out))
	return nil
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func (a *app) buildID(args []string) error {
	fs := a.flags("build-id")
	content := fs.Bool("content", false, "derive the id from a BLAKE3 digest of the module instead of a random UUID")
	output := fs.StringP("output", "o", "", "write the module here (default: overwrite FILE)")
	path, err := a.parse(fs, args)
	if err != nil {
		return err
	}

	data, m, err := a.load(path, codec.Options{})
	if err != nil {
		return err
	}
	existing, ok, err := m.BuildID()
	if err != nil {
		return fmt.Errorf("read build id: %w", err)
	}
	if ok {
		return fmt.Errorf("%s already has build id %s", path, hex.EncodeToString(existing))
	}

	var id []byte
	if *content {
		sum := blake3.Sum256(data)
		id = sum[:16]
	} else {
		u := uuid.New()
		id = u[:]
	}
	m.AddBuildID(id)

	dst := *output
	if dst == "" {
		if path == "-" {
			return fmt.Errorf("build-id: -o is required when reading stdin")
		}
		dst = path
	}
	if err := a.writeModule(dst, m); err != nil {
		return err
	}
	a.log.Debug("build id added", zap.String("path", dst), zap.Binary("id", id))
	fmt.Fprintln(a.out, hex.EncodeToString(id))
	return nil
}

func (a *app) writeModule(path string, m *wasm.Module) error {
	if path == "-" {
		_, err := m.EncodeTo(a.out)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := m.EncodeTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func (a *app) validate(args []string) error {
	fs := a.flags("validate")
	path, err := a.parse(fs, args)
	if err != nil {
		return err
	}

	data, m, err := a.load(path, codec.Options{Eager: true, Parallel: true})
	if err != nil {
		return err
	}
	if err := m.CheckOrder(); err != nil {
		return fmt.Errorf("order: %w", err)
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	defer compiled.Close(ctx)

	fmt.Fprintf(a.out, "%s: valid\n", path)
	if name := compiled.Name(); name != "" {
		fmt.Fprintf(a.out, "Module: %s\n", name)
	}
	imports := compiled.ImportedFunctions()
	fmt.Fprintf(a.out, "Imported functions: %d\n", len(imports))
	for _, def := range imports {
		module, name, _ := def.Import()
		fmt.Fprintf(a.out, "  %s.%s%s\n", module, name, signature(def.ParamTypes(), def.ResultTypes()))
	}
	exports := compiled.ExportedFunctions()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(a.out, "Exported functions: %d\n", len(names))
	for _, name := range names {
		def := exports[name]
		fmt.Fprintf(a.out, "  %s%s\n", name, signature(def.ParamTypes(), def.ResultTypes()))
	}
	return nil
}

func signature(params, results []byte) string {
	s := "(" + valTypes(params) + ")"
	if len(results) > 0 {
		s += " -> " + valTypes(results)
	}
	return s
}

func valTypes(ts []byte) string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = wasm.ValType(t).String()
	}
	return strings.Join(out, ", ")
}
