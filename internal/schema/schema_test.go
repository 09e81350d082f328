package schema

import (
	"testing"

	"github.com/dshills/richdoc/internal/applier"
	"github.com/dshills/richdoc/internal/document"
)

const testRules = `
rules:
  - match:
      kind: block
      type: list
    children:
      - kinds: [block]
        types: [item]
    min_children: 1
  - match:
      kind: block
    merge_adjacent_texts: true
`

func TestParseRules(t *testing.T) {
	sch, err := Parse([]byte(testRules))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sch.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(sch.Rules))
	}
	r := sch.Rules[0]
	if r.Match.Kind != "block" || r.Match.Type != "list" {
		t.Errorf("unexpected matcher: %+v", r.Match)
	}
	if len(r.Children) != 1 || r.MinChildren != 1 {
		t.Errorf("unexpected constraints: %+v", r)
	}
	if !sch.Rules[1].MergeAdjacentTexts {
		t.Error("second rule should merge adjacent texts")
	}
}

func TestRuleForFirstMatchWins(t *testing.T) {
	sch, err := Parse([]byte(testRules))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	d, err := document.FromTemplate(document.NewDocumentTemplate(
		document.NewBlock("list").WithKey("l"),
		document.NewBlock("paragraph").WithKey("p"),
	))
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}

	list, _ := d.Node("l")
	rule, ok := sch.ruleFor(list)
	if !ok || rule.MinChildren != 1 {
		t.Errorf("expected the list rule, got %+v (%v)", rule, ok)
	}
	para, _ := d.Node("p")
	rule, ok = sch.ruleFor(para)
	if !ok || !rule.MergeAdjacentTexts {
		t.Errorf("expected the generic block rule, got %+v (%v)", rule, ok)
	}
}

func TestNilSchemaHasNoRules(t *testing.T) {
	var sch *Schema
	d, err := document.FromTemplate(document.NewDocumentTemplate(
		document.NewBlock("paragraph").WithKey("p"),
	))
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	n, _ := d.Node("p")
	if _, ok := sch.ruleFor(n); ok {
		t.Error("a nil schema should match nothing")
	}
}

func TestNormalizeRemovesDisallowedChild(t *testing.T) {
	sch, err := Parse([]byte(testRules))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	d, err := document.FromTemplate(document.NewDocumentTemplate(
		document.NewBlock("list",
			document.NewBlock("item", document.NewText(document.NewSpan("ok"))).WithKey("item"),
			document.NewBlock("paragraph").WithKey("stray"),
		).WithKey("l"),
	))
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	nm := NewNormalizer(nil)

	s, err := nm.Normalize(document.NewState(d), d.Root(), sch)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if s.Doc.Has("stray") {
		t.Error("the disallowed child should be removed")
	}
	if !s.Doc.Has("item") {
		t.Error("the allowed child should survive")
	}
	if err := s.Doc.Validate(); err != nil {
		t.Errorf("document should validate: %v", err)
	}
}

func TestNormalizeRemovesUnderfullNode(t *testing.T) {
	sch, err := Parse([]byte(testRules))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	d, err := document.FromTemplate(document.NewDocumentTemplate(
		document.NewBlock("list").WithKey("empty"),
		document.NewBlock("paragraph",
			document.NewText(document.NewSpan("keep")).WithKey("t"),
		).WithKey("p"),
	))
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	nm := NewNormalizer(nil)

	s, err := nm.Normalize(document.NewState(d), d.Root(), sch)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if s.Doc.Has("empty") {
		t.Error("the underfull list should be removed")
	}
	if !s.Doc.Has("t") {
		t.Error("unrelated content should survive")
	}
}

func TestNormalizeJoinsAdjacentTexts(t *testing.T) {
	sch, err := Parse([]byte(testRules))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	d, err := document.FromTemplate(document.NewDocumentTemplate(
		document.NewBlock("paragraph",
			document.NewText(document.NewSpan("hello ")).WithKey("a"),
			document.NewText(document.NewSpan("world")).WithKey("b"),
		).WithKey("p"),
	))
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	nm := NewNormalizer(applier.New())
	s := document.NewState(d)
	s = s.WithSelection(document.Collapsed(document.Point{Key: "b", Offset: 3}))

	s, err = nm.Normalize(s, d.Root(), sch)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	p, _ := s.Doc.Node("p")
	if p.ChildCount() != 1 {
		t.Fatalf("expected one merged text child, got %d", p.ChildCount())
	}
	a, _ := s.Doc.Node("a")
	if a.Text() != "hello world" {
		t.Errorf("expected hello world, got %q", a.Text())
	}
	// Selection in the absorbed node follows the join.
	if s.Selection.Anchor.Key != "a" || s.Selection.Anchor.Offset != 9 {
		t.Errorf("expected cursor a:9, got %s", s.Selection.Anchor)
	}
}

func TestNormalizeStaleKeyIsFatal(t *testing.T) {
	d, err := document.FromTemplate(document.NewDocumentTemplate())
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	nm := NewNormalizer(nil)
	if _, err := nm.Normalize(document.NewState(d), "ghost", nil); err == nil {
		t.Error("a stale key should be fatal")
	}
}

func TestNormalizeNoSchemaStillCoalesces(t *testing.T) {
	tpl := document.NewDocumentTemplate(
		document.NewBlock("paragraph",
			document.NewText(document.NewSpan("x")).WithKey("t"),
		).WithKey("p"),
	)
	d, err := document.FromTemplate(tpl)
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	nm := NewNormalizer(nil)
	if _, err := nm.Normalize(document.NewState(d), d.Root(), nil); err != nil {
		t.Errorf("normalize with no schema should succeed: %v", err)
	}
}
