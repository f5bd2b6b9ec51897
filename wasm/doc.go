// Package wasm is the WebAssembly module catalogue for the codec engine.
//
// A module decodes into an ordered list of sections. Each known section
// keeps its payload in a lazy node: the bytes are sliced out of the input
// at decode time and parsed only when accessed. Encoding copies every
// section that was never accessed, or accessed without modification, from
// the input unchanged, so a tool that edits one function body rewrites only
// that body and the sections around it.
//
// # Decoding
//
//	data, _ := os.ReadFile("module.wasm")
//	m, err := wasm.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Force every lazy node up front, on worker goroutines:
//
//	m, err := wasm.DecodeWithOptions(data, codec.Options{Eager: true, Parallel: true})
//
// The decoded module borrows data.
//
// # Accessing sections
//
//	if code, ok := wasm.FindSection[*wasm.CodeSection](m); ok {
//	    bodies, _ := code.Get()    // decode, keep clean
//	    body, _ := (*bodies)[0].GetMut() // decode, mark dirty
//	    body.Expr = append(wasm.Expression{wasm.Op(wasm.OpNop)}, body.Expr...)
//	}
//	out := m.Encode()
//
// # Supported features
//
//	WebAssembly 2.0:
//	  - Core value types, functions, tables, memories, globals
//	  - Sign extension and saturating truncation
//	  - Bulk memory and reference types (0xFC prefix)
//	  - Typed select, table.get, table.set
//
//	Proposals:
//	  - Tail calls (return_call, return_call_indirect)
//	  - Exception handling tags (tag section, tag imports and exports)
//	  - Threads: atomics and shared limits, with the wasm_threads build tag
//
// # Custom sections
//
// The name, producers, external_debug_info and sourceMappingURL custom
// sections are decoded into typed payloads. Name subsections are lazy on
// their own. Other custom sections are kept as raw bytes.
//
// # Ordering
//
// Decode accepts sections in any order and allows duplicates. CheckOrder
// reports the first violation of the ordering rules; InsertSection places a
// new section at its logical position.
package wasm
