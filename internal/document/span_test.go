package document

import (
	"errors"
	"testing"
)

func TestNewMarkCanonicalData(t *testing.T) {
	a, err := NewMark("link", map[string]any{"href": "/a", "title": "A"})
	if err != nil {
		t.Fatalf("new mark failed: %v", err)
	}
	b, err := NewMark("link", map[string]any{"title": "A", "href": "/a"})
	if err != nil {
		t.Fatalf("new mark failed: %v", err)
	}
	if a != b {
		t.Errorf("marks built from equal payloads should compare equal: %s vs %s", a, b)
	}
}

func TestNewMarkEmptyType(t *testing.T) {
	_, err := NewMark("", nil)
	if !errors.Is(err, ErrInvalidMark) {
		t.Errorf("expected ErrInvalidMark, got %v", err)
	}
}

func TestMarkApplyMergesData(t *testing.T) {
	m, _ := NewMark("link", map[string]any{"href": "/old", "title": "T"})
	out, err := m.Apply(MarkProps{Data: map[string]any{"href": "/new"}})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	data := out.DataMap()
	if data["href"] != "/new" {
		t.Errorf("expected href /new, got %v", data["href"])
	}
	if data["title"] != "T" {
		t.Errorf("expected title preserved, got %v", data["title"])
	}
	if out.Type != "link" {
		t.Errorf("expected type preserved, got %q", out.Type)
	}
}

func TestNewSpanNormalizesMarks(t *testing.T) {
	bold := PlainMark("bold")
	italic := PlainMark("italic")
	s := NewSpan("hi", italic, bold, italic)
	if len(s.Marks) != 2 {
		t.Fatalf("expected 2 marks after dedupe, got %d", len(s.Marks))
	}
	if s.Marks[0] != bold || s.Marks[1] != italic {
		t.Errorf("expected sorted marks [bold italic], got %v", s.Marks)
	}
}

func TestSplitSpansAtCrossing(t *testing.T) {
	spans := []Span{NewSpan("hello", PlainMark("bold")), NewSpan(" world")}
	left, right := splitSpansAt(spans, 3)
	if spansText(left) != "hel" || spansText(right) != "lo world" {
		t.Errorf("expected hel | lo world, got %q | %q", spansText(left), spansText(right))
	}
	if !sameMarks(left[0].Marks, right[0].Marks) {
		t.Error("split halves should share the crossed span's marks")
	}
}

func TestSplitSpansAtBoundary(t *testing.T) {
	spans := []Span{NewSpan("ab", PlainMark("bold")), NewSpan("cd")}
	left, right := splitSpansAt(spans, 2)
	if len(left) != 1 || len(right) != 1 {
		t.Fatalf("expected 1|1 spans, got %d|%d", len(left), len(right))
	}
	if left[0].Text != "ab" || right[0].Text != "cd" {
		t.Errorf("expected ab | cd, got %q | %q", left[0].Text, right[0].Text)
	}
}

func TestCoalesceSpansMergesEqualNeighbors(t *testing.T) {
	spans := []Span{NewSpan("ab", PlainMark("bold")), NewSpan("", PlainMark("italic")), NewSpan("cd", PlainMark("bold"))}
	out := coalesceSpans(spans)
	if len(out) != 1 {
		t.Fatalf("expected 1 span, got %d", len(out))
	}
	if out[0].Text != "abcd" {
		t.Errorf("expected abcd, got %q", out[0].Text)
	}
}

func TestCoalesceSpansKeepsOneEmptySpan(t *testing.T) {
	out := coalesceSpans([]Span{{Text: "", Marks: []Mark{PlainMark("bold")}}})
	if len(out) != 1 {
		t.Fatalf("expected exactly one empty span, got %d", len(out))
	}
	if out[0].Text != "" || len(out[0].Marks) != 1 {
		t.Errorf("empty node should keep its mark state, got %v", out[0])
	}
}

func TestInsertIntoSpansOutOfBounds(t *testing.T) {
	_, err := insertIntoSpans([]Span{NewSpan("hi")}, 3, "x", nil)
	if !errors.Is(err, ErrRangeOutOfBounds) {
		t.Errorf("expected ErrRangeOutOfBounds, got %v", err)
	}
}

func TestRemoveFromSpansAcrossBoundary(t *testing.T) {
	spans := []Span{NewSpan("hello", PlainMark("bold")), NewSpan(" world")}
	out, err := removeFromSpans(spans, 3, 5)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if spansText(out) != "helorld" {
		t.Errorf("expected helorld, got %q", spansText(out))
	}
}

func TestUpdateMarkRangeSplitsBoundaries(t *testing.T) {
	spans := []Span{NewSpan("hello world")}
	out, err := updateMarkRange(spans, 2, 5, func(marks []Mark) []Mark {
		return addToMarkSet(marks, PlainMark("bold"))
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(out))
	}
	if out[1].Text != "llo w" || !out[1].HasMark(PlainMark("bold")) {
		t.Errorf("expected marked middle span llo w, got %v", out[1])
	}
	if out[0].HasMark(PlainMark("bold")) || out[2].HasMark(PlainMark("bold")) {
		t.Error("outer spans should be unmarked")
	}
}

func TestMarksAtOffset(t *testing.T) {
	bold := PlainMark("bold")
	spans := []Span{NewSpan("ab", bold), NewSpan("cd")}

	if marks := marksAtOffset(spans, 0); !sameMarks(marks, []Mark{bold}) {
		t.Errorf("offset 0 should take the first span's marks, got %v", marks)
	}
	// At a boundary the character before wins.
	if marks := marksAtOffset(spans, 2); !sameMarks(marks, []Mark{bold}) {
		t.Errorf("offset 2 should take the preceding span's marks, got %v", marks)
	}
	if marks := marksAtOffset(spans, 3); len(marks) != 0 {
		t.Errorf("offset 3 should be unmarked, got %v", marks)
	}
}

func TestNodeInsertTextInheritsMarks(t *testing.T) {
	n := NewText(NewSpan("ab", PlainMark("bold"))).WithKey("t").node()
	out, err := n.InsertText(2, "c", nil)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	spans := out.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected a single coalesced span, got %d", len(spans))
	}
	if spans[0].Text != "abc" || !spans[0].HasMark(PlainMark("bold")) {
		t.Errorf("inserted text should inherit the bold mark, got %v", spans[0])
	}
}

func TestNodeInsertTextExplicitMarks(t *testing.T) {
	n := NewText(NewSpan("ab", PlainMark("bold"))).WithKey("t").node()
	out, err := n.InsertText(2, "c", []Mark{})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	spans := out.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Text != "c" || len(spans[1].Marks) != 0 {
		t.Errorf("empty mark set should not inherit, got %v", spans[1])
	}
}

func TestNodeRemoveTextRuneOffsets(t *testing.T) {
	n := NewText(NewSpan("héllo")).WithKey("t").node()
	out, err := n.RemoveText(1, 2)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if out.Text() != "hlo" {
		t.Errorf("expected hlo, got %q", out.Text())
	}
	if out.Length() != 3 {
		t.Errorf("expected rune length 3, got %d", out.Length())
	}
}

func TestNodeRemoveAllTextKeepsEmptySpan(t *testing.T) {
	n := NewText(NewSpan("hi", PlainMark("bold"))).WithKey("t").node()
	out, err := n.RemoveText(0, 2)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	spans := out.Spans()
	if len(spans) != 1 || spans[0].Text != "" {
		t.Fatalf("expected one empty span, got %v", spans)
	}
	if !spans[0].HasMark(PlainMark("bold")) {
		t.Error("emptied node should keep its mark state")
	}
}

func TestNodeAddRemoveMarkRoundTrip(t *testing.T) {
	n := NewText(NewSpan("hello")).WithKey("t").node()
	bold := PlainMark("bold")

	marked, err := n.AddMark(1, 3, bold)
	if err != nil {
		t.Fatalf("add mark failed: %v", err)
	}
	if len(marked.Spans()) != 3 {
		t.Fatalf("expected 3 spans after partial mark, got %d", len(marked.Spans()))
	}

	unmarked, err := marked.RemoveMark(1, 3, bold)
	if err != nil {
		t.Fatalf("remove mark failed: %v", err)
	}
	spans := unmarked.Spans()
	if len(spans) != 1 || spans[0].Text != "hello" || len(spans[0].Marks) != 0 {
		t.Errorf("expected a single unmarked span, got %v", spans)
	}
}

func TestNodeSetMark(t *testing.T) {
	link, _ := NewMark("link", map[string]any{"href": "/old"})
	n := NewText(NewSpan("hello", link)).WithKey("t").node()

	out, err := n.SetMark(0, 5, link, MarkProps{Data: map[string]any{"href": "/new"}})
	if err != nil {
		t.Fatalf("set mark failed: %v", err)
	}
	spans := out.Spans()
	if len(spans) != 1 || len(spans[0].Marks) != 1 {
		t.Fatalf("expected one span with one mark, got %v", spans)
	}
	if spans[0].Marks[0].DataMap()["href"] != "/new" {
		t.Errorf("expected replaced href, got %s", spans[0].Marks[0])
	}
}

func TestNodeCoalesceReturnsReceiverWhenCanonical(t *testing.T) {
	n := NewText(NewSpan("hi")).WithKey("t").node()
	if n.Coalesce() != n {
		t.Error("canonical node should coalesce to itself")
	}
}

func TestNodeMarkOnContainerFails(t *testing.T) {
	n := NewBlock("paragraph").WithKey("b").node()
	_, err := n.AddMark(0, 1, PlainMark("bold"))
	if !errors.Is(err, ErrNotText) {
		t.Errorf("expected ErrNotText, got %v", err)
	}
}
