package document

import "fmt"

// Point is one selection endpoint: a text node key plus a rune offset
// within that node.
type Point struct {
	Key    Key
	Offset int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("%s:%d", shortKey(p.Key), p.Offset)
}

// Selection is the active cursor or range: an anchor point (where the
// selection started) and a focus point (where it currently ends), plus a
// flag recording whether any selection is set at all. Start and end are
// derived by document order, not by anchor/focus order; see
// Document.SelectionEdges.
type Selection struct {
	Anchor Point
	Focus  Point
	Set    bool
}

// Deselected returns the unset selection.
func Deselected() Selection {
	return Selection{}
}

// Collapsed builds a cursor selection: both endpoints at the same point.
func Collapsed(p Point) Selection {
	return Selection{Anchor: p, Focus: p, Set: true}
}

// IsCollapsed reports whether the selection is a bare cursor.
func (s Selection) IsCollapsed() bool {
	return s.Set && s.Anchor == s.Focus
}

// String returns a human-readable representation of the selection.
func (s Selection) String() string {
	if !s.Set {
		return "Selection(unset)"
	}
	if s.IsCollapsed() {
		return fmt.Sprintf("Cursor(%s)", s.Anchor)
	}
	return fmt.Sprintf("Selection(%s..%s)", s.Anchor, s.Focus)
}
