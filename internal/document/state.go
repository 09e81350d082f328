package document

// State is the unit the operation applier transforms: the document tree,
// the active selection, and a document-level metadata bag. States are
// values; an operation produces a new State and leaves its input intact.
type State struct {
	Doc       *Document
	Selection Selection
	Data      map[string]any
}

// NewState wraps a document in a state with no selection and no metadata.
func NewState(d *Document) State {
	return State{Doc: d}
}

// WithDoc returns the state with the document swapped.
func (s State) WithDoc(d *Document) State {
	s.Doc = d
	return s
}

// WithSelection returns the state with the selection swapped.
func (s State) WithSelection(sel Selection) State {
	s.Selection = sel
	return s
}

// MergeData returns the state with props shallow-merged into the metadata
// bag. The original bag is not modified.
func (s State) MergeData(props map[string]any) State {
	merged := make(map[string]any, len(s.Data)+len(props))
	for k, v := range s.Data {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}
	s.Data = merged
	return s
}
