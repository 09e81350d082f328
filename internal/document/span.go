package document

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Span is a contiguous run of text sharing one mark set. The spans of a
// text node partition its text with no gaps and no overlaps, and adjacent
// spans with equal mark sets are coalesced after every mark mutation.
type Span struct {
	Text  string
	Marks []Mark
}

// NewSpan builds a span, normalizing its mark set (sorted, deduplicated).
func NewSpan(text string, marks ...Mark) Span {
	return Span{Text: text, Marks: normalizeMarks(marks)}
}

// Len returns the span length in runes.
func (s Span) Len() int {
	return utf8.RuneCountInString(s.Text)
}

// HasMark reports whether the span carries the given mark.
func (s Span) HasMark(m Mark) bool {
	for _, have := range s.Marks {
		if have == m {
			return true
		}
	}
	return false
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("Span(%q marks=%d)", s.Text, len(s.Marks))
}

// normalizeMarks returns a sorted, deduplicated copy of the mark set.
func normalizeMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		dup := false
		for _, have := range out {
			if have == m {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Data < out[j].Data
	})
	return out
}

// sameMarks reports whether two normalized mark sets are equal.
func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// addToMarkSet returns the set with m added, or the set unchanged if m is
// already present.
func addToMarkSet(marks []Mark, m Mark) []Mark {
	for _, have := range marks {
		if have == m {
			return marks
		}
	}
	return normalizeMarks(append(append([]Mark(nil), marks...), m))
}

// removeFromMarkSet returns the set with m removed.
func removeFromMarkSet(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, have := range marks {
		if have != m {
			out = append(out, have)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// replaceInMarkSet returns the set with old replaced by new. The set is
// unchanged if old is absent.
func replaceInMarkSet(marks []Mark, old, new Mark) []Mark {
	out := make([]Mark, 0, len(marks))
	found := false
	for _, have := range marks {
		if have == old {
			found = true
			continue
		}
		out = append(out, have)
	}
	if !found {
		return marks
	}
	return addToMarkSet(out, new)
}

// spansLen returns the total rune length of the spans.
func spansLen(spans []Span) int {
	total := 0
	for _, s := range spans {
		total += s.Len()
	}
	return total
}

// spansText returns the concatenated text of the spans.
func spansText(spans []Span) string {
	out := ""
	for _, s := range spans {
		out += s.Text
	}
	return out
}

// splitSpansAt splits the spans at a rune offset. A span crossing the
// offset is divided into two spans sharing its mark set.
func splitSpansAt(spans []Span, offset int) (left, right []Span) {
	pos := 0
	for i, s := range spans {
		n := s.Len()
		if pos+n <= offset {
			left = append(left, s)
			pos += n
			continue
		}
		if pos >= offset {
			right = append(right, spans[i:]...)
			return left, right
		}
		// Span crosses the offset.
		runes := []rune(s.Text)
		cut := offset - pos
		left = append(left, Span{Text: string(runes[:cut]), Marks: s.Marks})
		right = append(right, Span{Text: string(runes[cut:]), Marks: s.Marks})
		right = append(right, spans[i+1:]...)
		return left, right
	}
	return left, right
}

// coalesceSpans restores the span partition invariant: empty spans are
// dropped and adjacent spans with equal mark sets are merged. A node with
// no text keeps exactly one empty span so its mark state survives.
func coalesceSpans(spans []Span) []Span {
	var out []Span
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if len(out) > 0 && sameMarks(out[len(out)-1].Marks, s.Marks) {
			out[len(out)-1] = Span{
				Text:  out[len(out)-1].Text + s.Text,
				Marks: out[len(out)-1].Marks,
			}
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		var marks []Mark
		if len(spans) > 0 {
			marks = spans[0].Marks
		}
		return []Span{{Marks: marks}}
	}
	return out
}

// insertIntoSpans splices text with the given marks at a rune offset.
func insertIntoSpans(spans []Span, offset int, text string, marks []Mark) ([]Span, error) {
	if offset < 0 || offset > spansLen(spans) {
		return nil, fmt.Errorf("%w: offset %d of %d", ErrRangeOutOfBounds, offset, spansLen(spans))
	}
	left, right := splitSpansAt(spans, offset)
	merged := append(append(left, Span{Text: text, Marks: normalizeMarks(marks)}), right...)
	return coalesceSpans(merged), nil
}

// removeFromSpans deletes count runes starting at a rune offset.
func removeFromSpans(spans []Span, offset, count int) ([]Span, error) {
	if offset < 0 || count < 0 || offset+count > spansLen(spans) {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", ErrRangeOutOfBounds, offset, offset+count, spansLen(spans))
	}
	left, rest := splitSpansAt(spans, offset)
	_, right := splitSpansAt(rest, count)
	out := coalesceSpans(append(left, right...))
	// A removal that empties the node keeps the first span's mark state,
	// which the split halves no longer carry.
	if len(out) == 1 && out[0].Text == "" && out[0].Marks == nil && len(spans) > 0 {
		out[0].Marks = spans[0].Marks
	}
	return out, nil
}

// updateMarkRange rewrites the mark sets of the half-open rune range
// [offset, offset+length) through fn, keeping the partition coalesced.
func updateMarkRange(spans []Span, offset, length int, fn func([]Mark) []Mark) ([]Span, error) {
	if offset < 0 || length < 0 || offset+length > spansLen(spans) {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", ErrRangeOutOfBounds, offset, offset+length, spansLen(spans))
	}
	left, rest := splitSpansAt(spans, offset)
	mid, right := splitSpansAt(rest, length)
	out := append([]Span(nil), left...)
	for _, s := range mid {
		out = append(out, Span{Text: s.Text, Marks: normalizeMarks(fn(s.Marks))})
	}
	out = append(out, right...)
	return coalesceSpans(out), nil
}

// marksAtOffset returns the marks in effect at a rune offset: the marks of
// the character immediately before it, or of the first span at offset 0.
func marksAtOffset(spans []Span, offset int) []Mark {
	if len(spans) == 0 {
		return nil
	}
	if offset <= 0 {
		return spans[0].Marks
	}
	pos := 0
	for _, s := range spans {
		pos += s.Len()
		if offset <= pos {
			return s.Marks
		}
	}
	return spans[len(spans)-1].Marks
}
