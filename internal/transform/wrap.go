package transform

import (
	"fmt"

	"github.com/dshills/richdoc/internal/applier"
	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// WrapBlock wraps the node at key in a fresh block container built from
// the template (a Template, a type string via map form, or a JSON-shaped
// map). Any children the template carries are discarded.
func (t *Transformer) WrapBlock(s State, key Key, block any, opts ...CallOption) (State, error) {
	return t.wrapNode(s, key, block, document.KindBlock, opts)
}

// WrapInline wraps the node at key in a fresh inline container.
func (t *Transformer) WrapInline(s State, key Key, inline any, opts ...CallOption) (State, error) {
	return t.wrapNode(s, key, inline, document.KindInline, opts)
}

func (t *Transformer) wrapNode(s State, key Key, container any, kind document.Kind, opts []CallOption) (State, error) {
	o := newCallOptions(opts)
	tpl, err := coerce.Node(container)
	if err != nil {
		return State{}, err
	}
	tpl.Kind = kind
	tpl.Children = nil
	tpl.Spans = nil

	parent, ok := s.Doc.Parent(key)
	if !ok {
		return State{}, fmt.Errorf("%w: wrap", applier.ErrRootImmutable)
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	parentPath, index, _ := path.Parent()

	// The empty container takes the node's position; the node shifts one
	// to the right, then moves inside as the container's sole child.
	containerPath := append(parentPath.Clone(), index)
	s, err = t.ap.Apply(s, operation.InsertNode{Path: containerPath, Node: tpl})
	if err != nil {
		return State{}, err
	}
	shifted := append(parentPath.Clone(), index+1)
	inside := append(containerPath.Clone(), 0)
	s, err = t.ap.Apply(s, operation.MoveNode{Path: shifted, NewPath: inside})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, parent, o)
}

// UnwrapNode lifts the node at key out of its parent container:
//
//   - Sole child: the node takes the parent's position in the grandparent
//     and the emptied parent is removed.
//   - First or last child: the node moves immediately before or after the
//     parent, which keeps its remaining children.
//   - Interior child: the parent is split at the node's index and the node
//     moves out between the two halves.
//
// Unwrapping out of the document root is disallowed.
func (t *Transformer) UnwrapNode(s State, key Key, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	parent, ok := s.Doc.Parent(key)
	if !ok {
		return State{}, fmt.Errorf("%w: unwrap", applier.ErrRootImmutable)
	}
	grandparent, ok := s.Doc.Parent(parent)
	if !ok {
		return State{}, fmt.Errorf("%w: unwrap out of the root", applier.ErrRootImmutable)
	}
	pnode, err := s.Doc.Node(parent)
	if err != nil {
		return State{}, err
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	parentPath, index, _ := path.Parent()
	gpPath, parentIndex, _ := parentPath.Parent()

	switch {
	case pnode.ChildCount() == 1:
		before := append(gpPath.Clone(), parentIndex)
		s, err = t.ap.Apply(s, operation.MoveNode{Path: path, NewPath: before})
		if err != nil {
			return State{}, err
		}
		// The emptied parent shifted one to the right; resolve it fresh.
		emptied, err := s.Doc.Path(parent)
		if err != nil {
			return State{}, err
		}
		snapshot, err := s.Doc.TemplateOf(parent)
		if err != nil {
			return State{}, err
		}
		s, err = t.ap.Apply(s, operation.RemoveNode{Path: emptied, Node: snapshot})
		if err != nil {
			return State{}, err
		}

	case index == 0:
		before := append(gpPath.Clone(), parentIndex)
		s, err = t.ap.Apply(s, operation.MoveNode{Path: path, NewPath: before})
		if err != nil {
			return State{}, err
		}

	case index == pnode.ChildCount()-1:
		after := append(gpPath.Clone(), parentIndex+1)
		s, err = t.ap.Apply(s, operation.MoveNode{Path: path, NewPath: after})
		if err != nil {
			return State{}, err
		}

	default:
		// Split the parent around the node, then pull the node out from
		// the front of the right half to sit between the halves.
		s, err = t.ap.Apply(s, operation.SplitNode{Path: parentPath, Position: index})
		if err != nil {
			return State{}, err
		}
		moved, err := s.Doc.Path(key)
		if err != nil {
			return State{}, err
		}
		between := append(gpPath.Clone(), parentIndex+1)
		s, err = t.ap.Apply(s, operation.MoveNode{Path: moved, NewPath: between})
		if err != nil {
			return State{}, err
		}
	}
	return t.normalizeAt(s, grandparent, o)
}
