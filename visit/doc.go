// Package visit walks decoded trees.
//
// Traversal is driven by node shape: records visit their fields in order,
// unions visit the active variant, sequences visit each element, and lazy
// nodes visit their value. Nodes are visited before their children.
//
// Walk is read-only. By default it does not decode lazy nodes that are
// still undecoded, so walking a freshly decoded module touches only what
// was already materialized:
//
//	err := visit.Walk(m, func(ctx *visit.Context, idx *wasm.FuncIdx) error {
//		fmt.Println(ctx.Path(), *idx)
//		return nil
//	}, visit.WithPolicy(visit.ForceLazy))
//
// Rewrite decodes every lazy node it enters and marks a lazy node dirty
// only when the callback reported a change somewhere beneath it, so
// untouched subtrees are still re-emitted verbatim.
//
// Nodes with their own addressing rules implement Walker. Expressions use
// it to maintain a Labels stack so branch depths can be resolved against
// the enclosing blocks.
package visit
