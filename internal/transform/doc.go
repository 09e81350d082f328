// Package transform provides the semantic edit surface over the operation
// applier: one method per edit (insert text, mark a range, split a node,
// wrap, unwrap, move, ...), each of which resolves its target paths fresh
// from keys, emits the minimal operations, and then normalizes the
// smallest sufficient ancestor scope.
//
// Every method follows the same contract:
//
//  1. Paths are resolved from the supplied keys against the document in
//     the current state, never reused across calls, since earlier edits may
//     have shifted sibling indices.
//  2. The minimal operations are applied in order through the applier.
//  3. Unless suppressed with WithoutNormalize, the normalizer repairs the
//     edit's ancestor scope afterwards: the parent for mark/text and
//     structural sibling edits, the source/destination common ancestor
//     for moves, and the node itself for property merges.
//
// Suppressing normalization lets callers compose multi-step edits through
// temporarily-invalid intermediate states and validate once at the end,
// as SplitDescendants does internally.
//
// A sequence of operations issued by one call is atomic only from the
// caller's point of view: if a later operation fails, the error reports
// the failure and the state already produced by the committed prefix is
// discarded. Callers keep their original input state, which no operation
// ever mutates.
package transform
