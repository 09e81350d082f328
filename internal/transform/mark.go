package transform

import (
	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/operation"
)

// AddMark applies a mark across [offset, offset+length) of the text node
// at key. The mark may be a Mark, a type string, or a {"type","data"} map.
func (t *Transformer) AddMark(s State, key Key, offset, length int, mark any, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	m, err := coerce.Mark(mark)
	if err != nil {
		return State{}, err
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	s, err = t.ap.Apply(s, operation.AddMark{Path: path, Offset: offset, Length: length, Mark: m})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}

// RemoveMark removes a mark across [offset, offset+length) of the text
// node at key.
func (t *Transformer) RemoveMark(s State, key Key, offset, length int, mark any, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	m, err := coerce.Mark(mark)
	if err != nil {
		return State{}, err
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	s, err = t.ap.Apply(s, operation.RemoveMark{Path: path, Offset: offset, Length: length, Mark: m})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}

// SetMark replaces a mark across [offset, offset+length) with the mark
// produced by merging props onto it. Props may be MarkProps, a new type
// string, or a {"type","data"} map.
func (t *Transformer) SetMark(s State, key Key, offset, length int, mark, props any, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	m, err := coerce.Mark(mark)
	if err != nil {
		return State{}, err
	}
	p, err := coerce.MarkProps(props)
	if err != nil {
		return State{}, err
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	s, err = t.ap.Apply(s, operation.SetMark{Path: path, Offset: offset, Length: length, Mark: m, Properties: p})
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}
