// Package wasmbin is a lazy, minimally invasive WebAssembly binary codec.
//
// Decoding a module slices each section out of the input without parsing
// it. A section is parsed the first time it is accessed, and encoding copies
// every section that was not modified straight from the input, so tools that
// patch one function body or append one custom section leave the rest of the
// module byte-for-byte intact.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmbin/
//	├── codec/           Node contract, cursor and writer, LEB128, records,
//	│                    unions, sequences and lazy nodes
//	├── wasm/            Module, sections, types, instructions, custom sections
//	├── visit/           Pre-order walks and rewrites with label tracking
//	├── arbitrary/       Random node construction for fuzzing
//	├── errors/          Structured decode errors with paths
//	└── cmd/wasmbin/     dump, roundtrip, build-id, validate and browse
//
// # Quick Start
//
// Add a custom section to a module:
//
//	m, err := wasm.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m.AddBuildID(id)
//	out := m.Encode() // data followed by the new section
//
// Redirect every call to function 3:
//
//	_, err := visit.Rewrite(m.Node(), func(_ *visit.Context, ins *wasm.Instruction) (bool, error) {
//	    if ins.Opcode != wasm.OpCall || *ins.Imm.(*wasm.FuncIdx) != 3 {
//	        return false, nil
//	    }
//	    *ins.Imm.(*wasm.FuncIdx) = 7
//	    return true, nil
//	})
//
// # Errors
//
// Decode errors are *errors.Error values carrying the phase, kind, byte
// offset and the path of the failing node from the module root:
//
//	[decode] unexpected_eof at (root).sections[3]:<code>[0].expr[5] (offset 0x4a)
//
// # Thread Safety
//
// A decoded Module is not safe for concurrent mutation. Parallel decode
// forces each section on its own goroutine; sections share no state.
package wasmbin
