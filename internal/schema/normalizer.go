package schema

import (
	"fmt"

	"github.com/dshills/richdoc/internal/applier"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// Normalizer repairs a subtree until it satisfies the schema. Structural
// repairs go through the operation applier so the selection is rebased
// exactly as it would be for a caller-issued edit.
type Normalizer struct {
	applier *applier.Applier
}

// NewNormalizer creates a normalizer issuing repairs through ap. A nil
// applier gets a default one.
func NewNormalizer(ap *applier.Applier) *Normalizer {
	if ap == nil {
		ap = applier.New()
	}
	return &Normalizer{applier: ap}
}

// repair describes one violation found in a pass.
type repair struct {
	coalesce *document.Node // text node needing span re-coalescing
	remove   document.Key   // disallowed child or underfull node
	join     document.Key   // text sibling to merge into its predecessor
}

// Normalize repairs the subtree rooted at key. A stale key is a fatal
// lookup failure. Repairs run one at a time, re-scanning after each, since
// a repair can shift paths; the pass count is bounded by the subtree size.
func (nm *Normalizer) Normalize(s document.State, key document.Key, sch *Schema) (document.State, error) {
	if _, err := s.Doc.Node(key); err != nil {
		return document.State{}, err
	}
	maxPasses := s.Doc.Len()*2 + 8
	for pass := 0; pass < maxPasses; pass++ {
		r, found, err := nm.findViolation(s.Doc, key, sch)
		if err != nil {
			return document.State{}, err
		}
		if !found {
			return s, nil
		}
		s, err = nm.apply(s, r)
		if err != nil {
			return document.State{}, err
		}
	}
	return document.State{}, fmt.Errorf("normalization of %s did not converge", key)
}

func (nm *Normalizer) findViolation(d *document.Document, key document.Key, sch *Schema) (repair, bool, error) {
	var out repair
	found := false
	var visit func(k document.Key) error
	visit = func(k document.Key) error {
		if found {
			return nil
		}
		n, err := d.Node(k)
		if err != nil {
			return err
		}
		if n.IsText() {
			if c := n.Coalesce(); c != n {
				out = repair{coalesce: c}
				found = true
			}
			return nil
		}
		rule, hasRule := sch.ruleFor(n)
		var prevText bool
		for _, ck := range n.Children() {
			child, err := d.Node(ck)
			if err != nil {
				return err
			}
			if hasRule && !rule.allowsChild(child) {
				out = repair{remove: ck}
				found = true
				return nil
			}
			if child.IsText() && prevText && hasRule && rule.MergeAdjacentTexts {
				out = repair{join: ck}
				found = true
				return nil
			}
			prevText = child.IsText()
		}
		if hasRule && rule.MinChildren > 0 && n.ChildCount() < rule.MinChildren && k != d.Root() {
			out = repair{remove: k}
			found = true
			return nil
		}
		for _, ck := range n.Children() {
			if err := visit(ck); err != nil {
				return err
			}
			if found {
				return nil
			}
		}
		return nil
	}
	if err := visit(key); err != nil {
		return repair{}, false, err
	}
	return out, found, nil
}

func (nm *Normalizer) apply(s document.State, r repair) (document.State, error) {
	switch {
	case r.coalesce != nil:
		// Text is unchanged, only the span partition; swap the record in
		// directly rather than synthesizing an operation.
		doc, err := s.Doc.ReplaceNode(r.coalesce)
		if err != nil {
			return document.State{}, err
		}
		return s.WithDoc(doc), nil
	case r.remove != "":
		path, err := s.Doc.Path(r.remove)
		if err != nil {
			return document.State{}, err
		}
		return nm.applier.Apply(s, operation.RemoveNode{Path: path})
	case r.join != "":
		path, err := s.Doc.Path(r.join)
		if err != nil {
			return document.State{}, err
		}
		prevKey, ok := s.Doc.PreviousSibling(r.join)
		if !ok {
			return document.State{}, fmt.Errorf("%w: %s", applier.ErrNoPreviousSibling, path)
		}
		prev, err := s.Doc.Node(prevKey)
		if err != nil {
			return document.State{}, err
		}
		return nm.applier.Apply(s, operation.JoinNode{Path: path, Position: prev.Length()})
	default:
		return s, nil
	}
}
