package operation

import (
	"fmt"

	"github.com/dshills/richdoc/internal/document"
)

// Kind tags an operation record.
type Kind uint8

const (
	KindAddMark Kind = iota
	KindRemoveMark
	KindSetMark
	KindInsertNode
	KindRemoveNode
	KindMoveNode
	KindInsertText
	KindRemoveText
	KindSplitNode
	KindJoinNode
	KindSetNode
	KindSetSelection
	KindSetData
)

var kindNames = map[Kind]string{
	KindAddMark:      "add_mark",
	KindRemoveMark:   "remove_mark",
	KindSetMark:      "set_mark",
	KindInsertNode:   "insert_node",
	KindRemoveNode:   "remove_node",
	KindMoveNode:     "move_node",
	KindInsertText:   "insert_text",
	KindRemoveText:   "remove_text",
	KindSplitNode:    "split_node",
	KindJoinNode:     "join_node",
	KindSetNode:      "set_node",
	KindSetSelection: "set_selection",
	KindSetData:      "set_data",
}

// String returns the operation's wire tag.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind parses a wire tag into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown operation tag %q", s)
}

// Op is one atomic, tagged mutation record. The interface is sealed: only
// the types in this package implement it.
type Op interface {
	Kind() Kind
	String() string
	isOp()
}

// AddMark applies a mark across the half-open character range
// [Offset, Offset+Length) of the text node at Path.
type AddMark struct {
	Path   document.Path
	Offset int
	Length int
	Mark   document.Mark
}

func (AddMark) Kind() Kind { return KindAddMark }
func (AddMark) isOp()      {}
func (op AddMark) String() string {
	return fmt.Sprintf("add_mark(%s, [%d,%d), %s)", op.Path, op.Offset, op.Offset+op.Length, op.Mark)
}

// RemoveMark removes a mark across [Offset, Offset+Length) of the text
// node at Path.
type RemoveMark struct {
	Path   document.Path
	Offset int
	Length int
	Mark   document.Mark
}

func (RemoveMark) Kind() Kind { return KindRemoveMark }
func (RemoveMark) isOp()      {}
func (op RemoveMark) String() string {
	return fmt.Sprintf("remove_mark(%s, [%d,%d), %s)", op.Path, op.Offset, op.Offset+op.Length, op.Mark)
}

// SetMark replaces Mark across [Offset, Offset+Length) with the mark
// produced by merging Properties onto it.
type SetMark struct {
	Path       document.Path
	Offset     int
	Length     int
	Mark       document.Mark
	Properties document.MarkProps
}

func (SetMark) Kind() Kind { return KindSetMark }
func (SetMark) isOp()      {}
func (op SetMark) String() string {
	return fmt.Sprintf("set_mark(%s, [%d,%d), %s)", op.Path, op.Offset, op.Offset+op.Length, op.Mark)
}

// InsertNode inserts Node as a new child. The path's final element is the
// insertion index; the rest addresses the parent.
type InsertNode struct {
	Path document.Path
	Node *document.Template
}

func (InsertNode) Kind() Kind { return KindInsertNode }
func (InsertNode) isOp()      {}
func (op InsertNode) String() string {
	return fmt.Sprintf("insert_node(%s)", op.Path)
}

// RemoveNode deletes the node at Path and its subtree. Node optionally
// snapshots the removed subtree so the record is self-describing in logs;
// the applier does not consult it.
type RemoveNode struct {
	Path document.Path
	Node *document.Template
}

func (RemoveNode) Kind() Kind { return KindRemoveNode }
func (RemoveNode) isOp()      {}
func (op RemoveNode) String() string {
	return fmt.Sprintf("remove_node(%s)", op.Path)
}

// MoveNode removes the node at Path and re-inserts it at NewPath. Both
// paths are interpreted against the state supplied to the applier; the
// destination additionally accounts for the removal (see the applier).
type MoveNode struct {
	Path    document.Path
	NewPath document.Path
}

func (MoveNode) Kind() Kind { return KindMoveNode }
func (MoveNode) isOp()      {}
func (op MoveNode) String() string {
	return fmt.Sprintf("move_node(%s -> %s)", op.Path, op.NewPath)
}

// InsertText splices Text into the text node at Path at a character
// offset. A nil mark set inherits the marks already present at the offset.
type InsertText struct {
	Path   document.Path
	Offset int
	Text   string
	Marks  []document.Mark
}

func (InsertText) Kind() Kind { return KindInsertText }
func (InsertText) isOp()      {}
func (op InsertText) String() string {
	return fmt.Sprintf("insert_text(%s, %d, %q)", op.Path, op.Offset, op.Text)
}

// RemoveText deletes Text's length in characters from the text node at
// Path, starting at Offset. Text records what was removed.
type RemoveText struct {
	Path   document.Path
	Offset int
	Text   string
}

func (RemoveText) Kind() Kind { return KindRemoveText }
func (RemoveText) isOp()      {}
func (op RemoveText) String() string {
	return fmt.Sprintf("remove_text(%s, %d, %q)", op.Path, op.Offset, op.Text)
}

// SplitNode splits the node at Path into two siblings at Position: a
// character offset for text nodes, a child index for containers. The left
// half keeps the key; the right half receives a fresh one.
type SplitNode struct {
	Path     document.Path
	Position int
}

func (SplitNode) Kind() Kind { return KindSplitNode }
func (SplitNode) isOp()      {}
func (op SplitNode) String() string {
	return fmt.Sprintf("split_node(%s, %d)", op.Path, op.Position)
}

// JoinNode merges the node at Path into its immediate previous sibling and
// discards it. Position records the previous sibling's size (the offset
// base) for log readers; the applier recomputes it.
type JoinNode struct {
	Path     document.Path
	Position int
}

func (JoinNode) Kind() Kind { return KindJoinNode }
func (JoinNode) isOp()      {}
func (op JoinNode) String() string {
	return fmt.Sprintf("join_node(%s)", op.Path)
}

// SetNode shallow-merges Properties onto the node at Path. The reserved
// structural properties (key, children, text content) are dropped with a
// warning; identity and structure change only through the structural
// operations.
type SetNode struct {
	Path       document.Path
	Properties map[string]any
}

func (SetNode) Kind() Kind { return KindSetNode }
func (SetNode) isOp()      {}
func (op SetNode) String() string {
	return fmt.Sprintf("set_node(%s, %d props)", op.Path, len(op.Properties))
}

// SelectionProps is a partial selection update. Nil fields keep the
// current value. AnchorPath/FocusPath address endpoints positionally; the
// applier resolves them to keys against the current document before
// merging.
type SelectionProps struct {
	Anchor       *document.Point
	Focus        *document.Point
	AnchorPath   document.Path
	AnchorOffset *int
	FocusPath    document.Path
	FocusOffset  *int
	Set          *bool
}

// SetSelection merges SelectionProps into the state's selection, then
// re-validates and clamps the result against the document.
type SetSelection struct {
	Properties SelectionProps
}

func (SetSelection) Kind() Kind { return KindSetSelection }
func (SetSelection) isOp()      {}
func (op SetSelection) String() string {
	return "set_selection()"
}

// SetData shallow-merges Properties onto the document-level metadata bag.
type SetData struct {
	Properties map[string]any
}

func (SetData) Kind() Kind { return KindSetData }
func (SetData) isOp()      {}
func (op SetData) String() string {
	return fmt.Sprintf("set_data(%d props)", len(op.Properties))
}
