package applier

import "errors"

// Errors returned by operation application.
var (
	// ErrUnknownOperation indicates an operation outside the closed set.
	// Applying one fails loudly to guard against silently-ignored,
	// future-incompatible log entries.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrNoPreviousSibling indicates a join_node target with nothing to
	// join into.
	ErrNoPreviousSibling = errors.New("node has no previous sibling")

	// ErrJoinIncompatible indicates a join between a text node and a
	// container, which has no coherent offset base.
	ErrJoinIncompatible = errors.New("cannot join text and container nodes")

	// ErrRootImmutable indicates a structural operation aimed at the
	// document root, which cannot be split, moved, joined or removed.
	ErrRootImmutable = errors.New("document root cannot be restructured")
)
