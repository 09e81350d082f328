package applier

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// Applier executes operations. It is stateless apart from its warning
// logger, so one Applier may serve any number of states.
type Applier struct {
	logger *slog.Logger
}

// Option configures an Applier during creation.
type Option func(*Applier)

// WithLogger sets the logger used for recoverable input warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Applier. Warnings are discarded unless a logger is set.
func New(opts ...Option) *Applier {
	a := &Applier{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply executes one operation against a state, returning the new state.
// The input state is never modified. Every path in the operation is
// resolved against the supplied state; a path or key that does not resolve
// is fatal.
func (a *Applier) Apply(s document.State, op operation.Op) (document.State, error) {
	switch op := op.(type) {
	case operation.AddMark:
		return a.applyAddMark(s, op)
	case operation.RemoveMark:
		return a.applyRemoveMark(s, op)
	case operation.SetMark:
		return a.applySetMark(s, op)
	case operation.InsertNode:
		return a.applyInsertNode(s, op)
	case operation.RemoveNode:
		return a.applyRemoveNode(s, op)
	case operation.MoveNode:
		return a.applyMoveNode(s, op)
	case operation.InsertText:
		return a.applyInsertText(s, op)
	case operation.RemoveText:
		return a.applyRemoveText(s, op)
	case operation.SplitNode:
		return a.applySplitNode(s, op)
	case operation.JoinNode:
		return a.applyJoinNode(s, op)
	case operation.SetNode:
		return a.applySetNode(s, op)
	case operation.SetSelection:
		return a.applySetSelection(s, op)
	case operation.SetData:
		return a.applySetData(s, op)
	default:
		return document.State{}, fmt.Errorf("%w: %T", ErrUnknownOperation, op)
	}
}

// ApplyAll executes operations in order. If one fails, the error is
// returned along with the state produced by the already-committed prefix;
// no rollback is attempted.
func (a *Applier) ApplyAll(s document.State, ops []operation.Op) (document.State, error) {
	for _, op := range ops {
		next, err := a.Apply(s, op)
		if err != nil {
			return s, fmt.Errorf("applying %s: %w", op, err)
		}
		s = next
	}
	return s, nil
}

func (a *Applier) applyAddMark(s document.State, op operation.AddMark) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	updated, err := n.AddMark(op.Offset, op.Length, op.Mark)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.ReplaceNode(updated)
	if err != nil {
		return document.State{}, err
	}
	return s.WithDoc(doc), nil
}

func (a *Applier) applyRemoveMark(s document.State, op operation.RemoveMark) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	updated, err := n.RemoveMark(op.Offset, op.Length, op.Mark)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.ReplaceNode(updated)
	if err != nil {
		return document.State{}, err
	}
	return s.WithDoc(doc), nil
}

func (a *Applier) applySetMark(s document.State, op operation.SetMark) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	updated, err := n.SetMark(op.Offset, op.Length, op.Mark, op.Properties)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.ReplaceNode(updated)
	if err != nil {
		return document.State{}, err
	}
	return s.WithDoc(doc), nil
}

func (a *Applier) applyInsertNode(s document.State, op operation.InsertNode) (document.State, error) {
	parentPath, index, ok := op.Path.Parent()
	if !ok {
		return document.State{}, fmt.Errorf("%w: insert_node path carries no index", document.ErrPathNotFound)
	}
	parent, err := s.Doc.KeyAt(parentPath)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.InsertTemplate(parent, index, op.Node)
	if err != nil {
		return document.State{}, err
	}
	return s.WithDoc(doc), nil
}

func (a *Applier) applyInsertText(s document.State, op operation.InsertText) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	updated, err := n.InsertText(op.Offset, op.Text, op.Marks)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.ReplaceNode(updated)
	if err != nil {
		return document.State{}, err
	}
	s = s.WithDoc(doc)
	return s.WithSelection(rebase(s.Selection, op, rebaseInfo{key: n.Key()})), nil
}

func (a *Applier) applyRemoveText(s document.State, op operation.RemoveText) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	updated, err := n.RemoveText(op.Offset, utf8.RuneCountInString(op.Text))
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.ReplaceNode(updated)
	if err != nil {
		return document.State{}, err
	}
	s = s.WithDoc(doc)
	return s.WithSelection(rebase(s.Selection, op, rebaseInfo{key: n.Key()})), nil
}

func (a *Applier) applySplitNode(s document.State, op operation.SplitNode) (document.State, error) {
	parentPath, index, ok := op.Path.Parent()
	if !ok {
		return document.State{}, fmt.Errorf("%w: split_node", ErrRootImmutable)
	}
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	rightKey := document.NewKey()
	left, right, err := n.Split(op.Position, rightKey)
	if err != nil {
		return document.State{}, err
	}
	parent, err := s.Doc.KeyAt(parentPath)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.ReplaceNode(left)
	if err != nil {
		return document.State{}, err
	}
	doc, err = doc.InsertRecord(parent, index+1, right)
	if err != nil {
		return document.State{}, err
	}
	s = s.WithDoc(doc)
	return s.WithSelection(rebase(s.Selection, op, rebaseInfo{key: n.Key(), newKey: rightKey})), nil
}

func (a *Applier) applyJoinNode(s document.State, op operation.JoinNode) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	prevKey, ok := s.Doc.PreviousSibling(n.Key())
	if !ok {
		return document.State{}, fmt.Errorf("%w: %s", ErrNoPreviousSibling, op.Path)
	}
	prev, err := s.Doc.Node(prevKey)
	if err != nil {
		return document.State{}, err
	}
	if prev.IsText() != n.IsText() {
		return document.State{}, fmt.Errorf("%w: %s into %s", ErrJoinIncompatible, n.Kind(), prev.Kind())
	}
	base := prev.Length()
	merged, err := prev.Merge(n)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.Detach(n.Key())
	if err != nil {
		return document.State{}, err
	}
	doc, err = doc.ReplaceNode(merged)
	if err != nil {
		return document.State{}, err
	}
	doc, err = doc.DeleteRecord(n.Key())
	if err != nil {
		return document.State{}, err
	}
	s = s.WithDoc(doc)
	info := rebaseInfo{key: n.Key(), prevKey: prevKey, base: base}
	return s.WithSelection(rebase(s.Selection, op, info)), nil
}

func (a *Applier) applyMoveNode(s document.State, op operation.MoveNode) (document.State, error) {
	oldParentPath, oldIndex, ok := op.Path.Parent()
	if !ok {
		return document.State{}, fmt.Errorf("%w: move_node", ErrRootImmutable)
	}
	if len(op.NewPath) == 0 {
		return document.State{}, fmt.Errorf("%w: move_node destination carries no index", document.ErrPathNotFound)
	}
	key, err := s.Doc.KeyAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	doc, err := s.Doc.Detach(key)
	if err != nil {
		return document.State{}, err
	}

	// Destination resolution. When the destination path passes through the
	// old parent at an index after the removed node, the removal shifted
	// that sibling down by one; compensate before resolving. This covers
	// both the same-parent case (the adjusted element is the insertion
	// index itself) and one level of divergence below the shared parent.
	// Deeper divergences resolve fresh against the post-removal tree.
	adjusted := op.NewPath.Clone()
	if adjusted.HasPrefix(oldParentPath) && len(adjusted) > len(oldParentPath) &&
		oldIndex < adjusted[len(oldParentPath)] {
		adjusted[len(oldParentPath)]--
	}
	newParentPath, newIndex, _ := adjusted.Parent()
	parent, err := doc.KeyAt(newParentPath)
	if err != nil {
		return document.State{}, err
	}
	doc, err = doc.Attach(parent, newIndex, key)
	if err != nil {
		return document.State{}, err
	}
	return s.WithDoc(doc), nil
}

func (a *Applier) applyRemoveNode(s document.State, op operation.RemoveNode) (document.State, error) {
	key, err := s.Doc.KeyAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	if key == s.Doc.Root() {
		return document.State{}, fmt.Errorf("%w: remove_node", ErrRootImmutable)
	}

	info := rebaseInfo{key: key, removed: map[document.Key]bool{}}
	if prevKey, ok := s.Doc.PreviousText(key); ok {
		prev, err := s.Doc.Node(prevKey)
		if err != nil {
			return document.State{}, err
		}
		info.prev = document.Point{Key: prevKey, Offset: prev.Length()}
		info.hasPrev = true
	}
	if nextKey, ok := s.Doc.NextText(key); ok {
		info.next = document.Point{Key: nextKey}
		info.hasNext = true
	}

	doc, removed, err := s.Doc.RemoveSubtree(key)
	if err != nil {
		return document.State{}, err
	}
	for _, rk := range removed {
		info.removed[rk] = true
	}
	s = s.WithDoc(doc)
	return s.WithSelection(rebase(s.Selection, op, info)), nil
}

// structuralProps are the set_node properties that would change a node's
// identity or structure; they are dropped with a warning.
var structuralProps = map[string]bool{
	"key":      true,
	"kind":     true,
	"children": true,
	"nodes":    true,
	"text":     true,
	"spans":    true,
	"ranges":   true,
}

func (a *Applier) applySetNode(s document.State, op operation.SetNode) (document.State, error) {
	n, err := s.Doc.NodeAt(op.Path)
	if err != nil {
		return document.State{}, err
	}
	updated := n
	data := map[string]any{}
	for k, v := range op.Properties {
		switch {
		case structuralProps[k]:
			a.logger.Warn("set_node cannot change structural property, dropped",
				"property", k, "node", n.Key().String())
		case k == "type":
			typ, ok := v.(string)
			if !ok {
				a.logger.Warn("set_node type property is not a string, dropped",
					"node", n.Key().String())
				continue
			}
			updated = updated.WithType(typ)
		case k == "data":
			m, ok := v.(map[string]any)
			if !ok {
				a.logger.Warn("set_node data property is not a map, dropped",
					"node", n.Key().String())
				continue
			}
			for dk, dv := range m {
				data[dk] = dv
			}
		default:
			data[k] = v
		}
	}
	if len(data) > 0 {
		updated = updated.MergeData(data)
	}
	if updated == n {
		return s, nil
	}
	doc, err := s.Doc.ReplaceNode(updated)
	if err != nil {
		return document.State{}, err
	}
	return s.WithDoc(doc), nil
}

func (a *Applier) applySetSelection(s document.State, op operation.SetSelection) (document.State, error) {
	sel := s.Selection
	p := op.Properties

	if p.AnchorPath != nil {
		key, err := s.Doc.KeyAt(p.AnchorPath)
		if err != nil {
			return document.State{}, err
		}
		sel.Anchor.Key = key
		sel.Set = true
	}
	if p.Anchor != nil {
		sel.Anchor = *p.Anchor
		sel.Set = true
	}
	if p.AnchorOffset != nil {
		sel.Anchor.Offset = *p.AnchorOffset
		sel.Set = true
	}
	if p.FocusPath != nil {
		key, err := s.Doc.KeyAt(p.FocusPath)
		if err != nil {
			return document.State{}, err
		}
		sel.Focus.Key = key
		sel.Set = true
	}
	if p.Focus != nil {
		sel.Focus = *p.Focus
		sel.Set = true
	}
	if p.FocusOffset != nil {
		sel.Focus.Offset = *p.FocusOffset
		sel.Set = true
	}
	if p.Set != nil {
		sel.Set = *p.Set
	}

	if sel.Set {
		clamped, err := clampPoint(s.Doc, sel.Anchor)
		if err != nil {
			return document.State{}, err
		}
		sel.Anchor = clamped
		clamped, err = clampPoint(s.Doc, sel.Focus)
		if err != nil {
			return document.State{}, err
		}
		sel.Focus = clamped
	} else {
		sel = document.Deselected()
	}
	return s.WithSelection(sel), nil
}

// clampPoint validates an endpoint against the document and clamps its
// offset into the node's bounds. An unresolvable key is fatal.
func clampPoint(d *document.Document, p document.Point) (document.Point, error) {
	n, err := d.Node(p.Key)
	if err != nil {
		return document.Point{}, err
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if max := n.Length(); p.Offset > max {
		p.Offset = max
	}
	return p, nil
}

func (a *Applier) applySetData(s document.State, op operation.SetData) (document.State, error) {
	return s.MergeData(op.Properties), nil
}
