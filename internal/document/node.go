package document

import "fmt"

// Kind classifies a node. Document, Block and Inline are containers with
// ordered children; Text is a leaf holding spans.
type Kind uint8

const (
	KindDocument Kind = iota // the tree root
	KindBlock                // block-level container
	KindInline               // inline container
	KindText                 // text leaf
)

// String returns the kind's wire name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseKind parses a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "document":
		return KindDocument, nil
	case "block":
		return KindBlock, nil
	case "inline":
		return KindInline, nil
	case "text":
		return KindText, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

// IsContainer reports whether nodes of this kind carry children.
func (k Kind) IsContainer() bool {
	return k != KindText
}

// Node is one record in the document tree. Nodes are immutable: every
// mutator returns a new record carrying the same key. Container kinds hold
// ordered child keys; the text kind holds ordered spans.
type Node struct {
	key      Key
	kind     Kind
	typ      string
	data     map[string]any
	children []Key
	spans    []Span
}

// Key returns the node's stable identifier.
func (n *Node) Key() Key { return n.key }

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Type returns the node's subtype (e.g. "paragraph", "link").
func (n *Node) Type() string { return n.typ }

// IsText reports whether the node is a text leaf.
func (n *Node) IsText() bool { return n.kind == KindText }

// Data returns a copy of the node's property bag.
func (n *Node) Data() map[string]any {
	if len(n.data) == 0 {
		return nil
	}
	out := make(map[string]any, len(n.data))
	for k, v := range n.data {
		out[k] = v
	}
	return out
}

// Get looks up one property.
func (n *Node) Get(prop string) (any, bool) {
	v, ok := n.data[prop]
	return v, ok
}

// Children returns a copy of the node's ordered child keys.
func (n *Node) Children() []Key {
	if len(n.children) == 0 {
		return nil
	}
	return append([]Key(nil), n.children...)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Spans returns a copy of the node's spans.
func (n *Node) Spans() []Span {
	if len(n.spans) == 0 {
		return nil
	}
	return append([]Span(nil), n.spans...)
}

// Text returns the node's concatenated text. Empty for containers.
func (n *Node) Text() string {
	return spansText(n.spans)
}

// Length returns the node's size: rune count for text nodes, child count
// for containers. This is the offset base used by join_node.
func (n *Node) Length() int {
	if n.kind == KindText {
		return spansLen(n.spans)
	}
	return len(n.children)
}

// String returns a short human-readable description.
func (n *Node) String() string {
	if n.kind == KindText {
		return fmt.Sprintf("Text(%s %q)", shortKey(n.key), n.Text())
	}
	return fmt.Sprintf("%s(%s %s children=%d)", n.kind, shortKey(n.key), n.typ, len(n.children))
}

func shortKey(k Key) string {
	s := string(k)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// clone returns a shallow copy with its own data, children and span slices.
func (n *Node) clone() *Node {
	out := &Node{key: n.key, kind: n.kind, typ: n.typ}
	if len(n.data) > 0 {
		out.data = make(map[string]any, len(n.data))
		for k, v := range n.data {
			out.data[k] = v
		}
	}
	out.children = append([]Key(nil), n.children...)
	out.spans = append([]Span(nil), n.spans...)
	return out
}

// WithType returns a copy of the node with a new subtype.
func (n *Node) WithType(typ string) *Node {
	out := n.clone()
	out.typ = typ
	return out
}

// MergeData returns a copy with props shallow-merged into the property bag.
func (n *Node) MergeData(props map[string]any) *Node {
	out := n.clone()
	if out.data == nil {
		out.data = make(map[string]any, len(props))
	}
	for k, v := range props {
		out.data[k] = v
	}
	return out
}

// InsertText splices text at a rune offset. A nil mark set inherits the
// marks already in effect at the offset.
func (n *Node) InsertText(offset int, text string, marks []Mark) (*Node, error) {
	if n.kind != KindText {
		return nil, fmt.Errorf("%w: %s", ErrNotText, n.key)
	}
	if marks == nil {
		marks = marksAtOffset(n.spans, offset)
	}
	spans, err := insertIntoSpans(n.spans, offset, text, marks)
	if err != nil {
		return nil, err
	}
	out := n.clone()
	out.spans = spans
	return out, nil
}

// RemoveText deletes count runes starting at a rune offset.
func (n *Node) RemoveText(offset, count int) (*Node, error) {
	if n.kind != KindText {
		return nil, fmt.Errorf("%w: %s", ErrNotText, n.key)
	}
	spans, err := removeFromSpans(n.spans, offset, count)
	if err != nil {
		return nil, err
	}
	out := n.clone()
	out.spans = spans
	return out, nil
}

// AddMark applies a mark across the half-open rune range [offset, offset+length).
func (n *Node) AddMark(offset, length int, m Mark) (*Node, error) {
	return n.updateMarks(offset, length, func(marks []Mark) []Mark {
		return addToMarkSet(marks, m)
	})
}

// RemoveMark removes a mark across [offset, offset+length).
func (n *Node) RemoveMark(offset, length int, m Mark) (*Node, error) {
	return n.updateMarks(offset, length, func(marks []Mark) []Mark {
		return removeFromMarkSet(marks, m)
	})
}

// SetMark replaces a mark across [offset, offset+length) with the mark
// produced by merging props onto it.
func (n *Node) SetMark(offset, length int, m Mark, props MarkProps) (*Node, error) {
	replacement, err := m.Apply(props)
	if err != nil {
		return nil, err
	}
	return n.updateMarks(offset, length, func(marks []Mark) []Mark {
		return replaceInMarkSet(marks, m, replacement)
	})
}

func (n *Node) updateMarks(offset, length int, fn func([]Mark) []Mark) (*Node, error) {
	if n.kind != KindText {
		return nil, fmt.Errorf("%w: %s", ErrNotText, n.key)
	}
	spans, err := updateMarkRange(n.spans, offset, length, fn)
	if err != nil {
		return nil, err
	}
	out := n.clone()
	out.spans = spans
	return out, nil
}

// MarksAt returns the marks in effect at a rune offset.
func (n *Node) MarksAt(offset int) []Mark {
	return marksAtOffset(n.spans, offset)
}

// Coalesce returns the node with its span partition restored to canonical
// form. Returns the receiver when already canonical.
func (n *Node) Coalesce() *Node {
	if n.kind != KindText {
		return n
	}
	spans := coalesceSpans(n.spans)
	if len(spans) == len(n.spans) {
		same := true
		for i := range spans {
			if spans[i].Text != n.spans[i].Text || !sameMarks(spans[i].Marks, n.spans[i].Marks) {
				same = false
				break
			}
		}
		if same {
			return n
		}
	}
	out := n.clone()
	out.spans = spans
	return out
}
