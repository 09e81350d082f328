package document

import "errors"

// Errors returned by document lookups and node edits.
var (
	// ErrNodeNotFound indicates a key does not resolve to a node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrPathNotFound indicates a path does not resolve against the tree.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotText indicates a text operation targeted a container node.
	ErrNotText = errors.New("node is not a text node")

	// ErrNotContainer indicates a child operation targeted a text node.
	ErrNotContainer = errors.New("node is not a container")

	// ErrRangeOutOfBounds indicates an offset or length outside the node.
	ErrRangeOutOfBounds = errors.New("range out of bounds")

	// ErrInvalidMark indicates a mark with no type or malformed data.
	ErrInvalidMark = errors.New("invalid mark")

	// ErrDuplicateKey indicates an insert would reuse an existing key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrIndexOutOfBounds indicates a child index outside a container.
	ErrIndexOutOfBounds = errors.New("child index out of bounds")
)
