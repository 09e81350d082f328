package transform

import (
	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// Select merges a partial selection update into the state's selection.
// Endpoint paths, if supplied, are resolved to keys against the current
// document; the merged result is re-validated and clamped. Selection
// changes are not normalized.
func (t *Transformer) Select(s State, props operation.SelectionProps) (State, error) {
	return t.ap.Apply(s, operation.SetSelection{Properties: props})
}

// Collapse places a cursor at a point.
func (t *Transformer) Collapse(s State, p document.Point) (State, error) {
	return t.Select(s, operation.SelectionProps{Anchor: &p, Focus: &p})
}

// Deselect clears the selection entirely.
func (t *Transformer) Deselect(s State) (State, error) {
	unset := false
	return t.Select(s, operation.SelectionProps{Set: &unset})
}

// SetData shallow-merges properties onto the document-level metadata bag.
// No tree or selection effect, and nothing to normalize.
func (t *Transformer) SetData(s State, properties any) (State, error) {
	props, err := coerce.Properties(properties)
	if err != nil {
		return State{}, err
	}
	return t.ap.Apply(s, operation.SetData{Properties: props})
}
