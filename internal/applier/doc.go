// Package applier executes operations against document states.
//
// Apply is a total pure function over (state, operation): it returns a new
// state and never mutates its input. It fails fatally, with an error rather
// than a silent no-op, when a path or key does not resolve, when a precondition
// does not hold (joining with no previous sibling), or when the operation's
// dynamic type is outside the closed set.
//
// Besides mutating the tree, every handler rebases the selection so that
// anchor and focus keep pointing at the same logical characters across
// inserts, removals, splits and joins. The rebasing rules live in one pure
// function (rebase) so they can be tested apart from tree mutation.
package applier
