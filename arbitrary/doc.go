// Package arbitrary provides random-choice sources for building well-typed
// trees without an input buffer.
//
// NewUnstructured turns fuzzer-provided bytes into choices, so that every
// corpus entry maps to one tree and shrinking the input shrinks the tree.
// NewRand draws from a seeded PCG generator for property tests.
//
//	var m wasm.Module
//	arbitrary.Fill(arbitrary.NewUnstructured(data), &m)
//	out := m.Encode()
package arbitrary
