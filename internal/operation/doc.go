// Package operation defines the closed set of atomic document mutations.
//
// Every edit to a document state is expressed as one of thirteen tagged
// operation records: add_mark, remove_mark, set_mark, insert_node,
// remove_node, move_node, insert_text, remove_text, split_node, join_node,
// set_node, set_selection and set_data. Operations are ordered and
// non-commutative; the applier executes them one at a time, in sequence.
//
// The set is closed by construction: Op is a sealed interface, so the
// applier's type switch enumerates every possible operation and treats an
// unknown dynamic type as a fatal error rather than a silent no-op.
package operation
