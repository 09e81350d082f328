package transform

import (
	"fmt"

	"github.com/dshills/richdoc/internal/applier"
	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// InsertNode materializes a detached node (a Template or a JSON-shaped
// map) as a child of parent at index.
func (t *Transformer) InsertNode(s State, parent Key, index int, node any, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	tpl, err := coerce.Node(node)
	if err != nil {
		return State{}, err
	}
	parentPath, err := s.Doc.Path(parent)
	if err != nil {
		return State{}, err
	}
	path := append(parentPath.Clone(), index)
	s, err = t.ap.Apply(s, operation.InsertNode{Path: path, Node: tpl})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, parent, o)
}

// RemoveNode deletes the node at key and its subtree, relocating any
// stranded selection endpoints to the nearest surviving text.
func (t *Transformer) RemoveNode(s State, key Key, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	snapshot, err := s.Doc.TemplateOf(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	s, err = t.ap.Apply(s, operation.RemoveNode{Path: path, Node: snapshot})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}

// SetNode shallow-merges properties (a map, or a type-string shorthand)
// onto the node at key. Structural properties are dropped with a warning.
func (t *Transformer) SetNode(s State, key Key, properties any, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	props, err := coerce.Properties(properties)
	if err != nil {
		return State{}, err
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	s, err = t.ap.Apply(s, operation.SetNode{Path: path, Properties: props})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, key, o)
}

// MoveNode re-homes the node at key to become newParent's child at
// newIndex. Normalization covers the common ancestor of the source and
// destination parents.
func (t *Transformer) MoveNode(s State, key, newParent Key, newIndex int, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	newParentPath, err := s.Doc.Path(newParent)
	if err != nil {
		return State{}, err
	}
	scope, err := s.Doc.CommonAncestor(scopeParent(s, key), newParent)
	if err != nil {
		return State{}, err
	}
	newPath := append(newParentPath.Clone(), newIndex)
	s, err = t.ap.Apply(s, operation.MoveNode{Path: path, NewPath: newPath})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}

// SplitNode splits the node at key into two siblings at position: a
// character offset for text nodes, a child index for containers.
func (t *Transformer) SplitNode(s State, key Key, position int, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	s, err = t.ap.Apply(s, operation.SplitNode{Path: path, Position: position})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}

// SplitDescendants splits the text node at textKey at offset and then
// each of its ancestors up to, but not including, ancestor, so the split
// seam runs through the whole branch. Intermediate splits skip
// normalization; the final state is normalized once at ancestor's parent.
func (t *Transformer) SplitDescendants(s State, textKey Key, offset int, ancestor Key, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	if textKey == ancestor || !s.Doc.Descends(textKey, ancestor) {
		return State{}, fmt.Errorf("%w: %s is not a proper descendant of %s", document.ErrNodeNotFound, textKey, ancestor)
	}
	path, err := s.Doc.Path(textKey)
	if err != nil {
		return State{}, err
	}
	s, err = t.ap.Apply(s, operation.SplitNode{Path: path, Position: offset})
	if err != nil {
		return State{}, err
	}

	// Walk upward: each ancestor splits just after the child that was
	// split below it, so the child's new right sibling lands in the
	// ancestor's new right half.
	cur := textKey
	for {
		parent, ok := s.Doc.Parent(cur)
		if !ok || parent == ancestor {
			break
		}
		curPath, err := s.Doc.Path(cur)
		if err != nil {
			return State{}, err
		}
		parentPath, index, _ := curPath.Parent()
		s, err = t.ap.Apply(s, operation.SplitNode{Path: parentPath, Position: index + 1})
		if err != nil {
			return State{}, err
		}
		cur = parent
	}
	return t.normalizeAt(s, scopeParent(s, ancestor), o)
}

// JoinNode merges the node at key into its immediate previous sibling.
// Having no previous sibling is a fatal precondition failure, checked
// before any operation is built.
func (t *Transformer) JoinNode(s State, key Key, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	prevKey, ok := s.Doc.PreviousSibling(key)
	if !ok {
		return State{}, fmt.Errorf("%w: %s", applier.ErrNoPreviousSibling, path)
	}
	prev, err := s.Doc.Node(prevKey)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	s, err = t.ap.Apply(s, operation.JoinNode{Path: path, Position: prev.Length()})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}
