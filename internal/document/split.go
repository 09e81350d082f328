package document

import "fmt"

// Split divides the node into two sibling records at position: a rune
// offset for text nodes, a child index for containers. The left half keeps
// the node's key; the right half takes rightKey and a copy of the node's
// type and properties. Position 0 or the node's full length is legal and
// yields an empty half.
func (n *Node) Split(position int, rightKey Key) (left, right *Node, err error) {
	if position < 0 || position > n.Length() {
		return nil, nil, fmt.Errorf("%w: split position %d of %d", ErrRangeOutOfBounds, position, n.Length())
	}
	left = n.clone()
	right = n.clone()
	right.key = rightKey
	if n.kind == KindText {
		ls, rs := splitSpansAt(n.spans, position)
		left.spans = coalesceSpans(ls)
		right.spans = coalesceSpans(rs)
		return left, right, nil
	}
	left.children = append([]Key(nil), n.children[:position]...)
	right.children = append([]Key(nil), n.children[position:]...)
	return left, right, nil
}

// Merge appends another node's content onto this one, producing the
// record that survives a join: spans for text nodes, children for
// containers. Both nodes must share the container/text capability.
func (n *Node) Merge(other *Node) (*Node, error) {
	if n.IsText() != other.IsText() {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrNotContainer, other.kind, n.kind)
	}
	out := n.clone()
	if n.kind == KindText {
		out.spans = coalesceSpans(append(out.spans, other.spans...))
		return out, nil
	}
	out.children = append(out.children, other.children...)
	return out, nil
}
