package document

import "github.com/google/uuid"

// Key uniquely identifies a node. Keys are assigned once, at creation,
// and survive every copy-on-write copy of the same logical node. They are
// never reused within a document.
type Key string

// NewKey returns a fresh globally unique key.
func NewKey() Key {
	return Key(uuid.NewString())
}

// String returns the key as a string.
func (k Key) String() string {
	return string(k)
}
