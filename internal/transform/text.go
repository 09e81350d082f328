package transform

import (
	"fmt"

	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// InsertText splices text into the text node at key at a character
// offset. A nil mark value inherits the marks at the offset; otherwise it
// may be a mark, a slice of marks, or their loose map/string forms.
func (t *Transformer) InsertText(s State, key Key, offset int, text string, marks any, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	ms, err := coerce.Marks(marks)
	if err != nil {
		return State{}, err
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)
	op := operation.InsertText{Path: path, Offset: offset, Text: coerce.Text(text), Marks: ms}
	s, err = t.ap.Apply(s, op)
	if err != nil {
		return State{}, err
	}
	return t.normalizeAt(s, scope, o)
}

// RemoveText deletes the character range [offset, offset+length) from the
// text node at key.
//
// The node's spans are not addressable by raw character offset, so the
// request decomposes into one removal per overlapping span fragment. The
// removals are applied in reverse document order: removing a later
// fragment first leaves every still-pending earlier offset valid.
func (t *Transformer) RemoveText(s State, key Key, offset, length int, opts ...CallOption) (State, error) {
	o := newCallOptions(opts)
	n, err := s.Doc.Node(key)
	if err != nil {
		return State{}, err
	}
	if !n.IsText() {
		return State{}, fmt.Errorf("%w: %s", document.ErrNotText, key)
	}
	if offset < 0 || length < 0 || offset+length > n.Length() {
		return State{}, fmt.Errorf("%w: [%d,%d) of %d", document.ErrRangeOutOfBounds, offset, offset+length, n.Length())
	}
	path, err := s.Doc.Path(key)
	if err != nil {
		return State{}, err
	}
	scope := scopeParent(s, key)

	type fragment struct {
		offset int
		text   string
	}
	var frags []fragment
	pos := 0
	for _, span := range n.Spans() {
		spanLen := span.Len()
		start, end := offset, offset+length
		if start < pos {
			start = pos
		}
		if end > pos+spanLen {
			end = pos + spanLen
		}
		if start < end {
			runes := []rune(span.Text)
			frags = append(frags, fragment{offset: start, text: string(runes[start-pos : end-pos])})
		}
		pos += spanLen
	}

	for i := len(frags) - 1; i >= 0; i-- {
		s, err = t.ap.Apply(s, operation.RemoveText{Path: path, Offset: frags[i].offset, Text: frags[i].text})
		if err != nil {
			return State{}, err
		}
	}
	return t.normalizeAt(s, scope, o)
}
