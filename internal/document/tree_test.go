package document

import (
	"errors"
	"testing"
)

// twoParagraphs builds a small document:
//
//	document
//	  block:paragraph (p1)
//	    text "hello" (t1)
//	    text "world" (t2)
//	  block:paragraph (p2)
//	    text "bye" (t3)
func twoParagraphs(t *testing.T) *Document {
	t.Helper()
	tpl := NewDocumentTemplate(
		NewBlock("paragraph",
			NewText(NewSpan("hello")).WithKey("t1"),
			NewText(NewSpan("world")).WithKey("t2"),
		).WithKey("p1"),
		NewBlock("paragraph",
			NewText(NewSpan("bye")).WithKey("t3"),
		).WithKey("p2"),
	)
	d, err := FromTemplate(tpl)
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	return d
}

func TestFromTemplateMintsMissingKeys(t *testing.T) {
	d, err := FromTemplate(NewDocumentTemplate(NewBlock("paragraph", NewText(NewSpan("x")))))
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("expected 3 nodes, got %d", d.Len())
	}
	if err := d.Validate(); err != nil {
		t.Errorf("fresh document should validate: %v", err)
	}
}

func TestFromTemplateRejectsDuplicateKeys(t *testing.T) {
	tpl := NewDocumentTemplate(
		NewText(NewSpan("a")).WithKey("dup"),
		NewText(NewSpan("b")).WithKey("dup"),
	)
	_, err := FromTemplate(tpl)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestFromTemplateRejectsNonDocumentRoot(t *testing.T) {
	_, err := FromTemplate(NewBlock("paragraph"))
	if !errors.Is(err, ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}
}

func TestPathKeyAtRoundTrip(t *testing.T) {
	d := twoParagraphs(t)
	for _, key := range []Key{"p1", "t1", "t2", "p2", "t3"} {
		path, err := d.Path(key)
		if err != nil {
			t.Fatalf("path of %s failed: %v", key, err)
		}
		back, err := d.KeyAt(path)
		if err != nil {
			t.Fatalf("key at %s failed: %v", path, err)
		}
		if back != key {
			t.Errorf("path %s resolved to %s, expected %s", path, back, key)
		}
	}
}

func TestKeyAtDanglingPath(t *testing.T) {
	d := twoParagraphs(t)
	_, err := d.KeyAt(Path{0, 5})
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func TestPathCompareOrdersPrefixFirst(t *testing.T) {
	cases := []struct {
		a, b Path
		want int
	}{
		{Path{0}, Path{1}, -1},
		{Path{0, 1}, Path{0, 1}, 0},
		{Path{0}, Path{0, 3}, -1},
		{Path{1, 2}, Path{0, 9}, 1},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Errorf("Compare(%s, %s) = %d, expected %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSiblings(t *testing.T) {
	d := twoParagraphs(t)

	prev, ok := d.PreviousSibling("t2")
	if !ok || prev != "t1" {
		t.Errorf("expected previous sibling t1, got %s (%v)", prev, ok)
	}
	if _, ok := d.PreviousSibling("t1"); ok {
		t.Error("first child should have no previous sibling")
	}
	next, ok := d.NextSibling("t1")
	if !ok || next != "t2" {
		t.Errorf("expected next sibling t2, got %s (%v)", next, ok)
	}
	if _, ok := d.NextSibling("t2"); ok {
		t.Error("last child should have no next sibling")
	}
}

func TestTextsDocumentOrder(t *testing.T) {
	d := twoParagraphs(t)
	texts := d.Texts()
	want := []Key{"t1", "t2", "t3"}
	if len(texts) != len(want) {
		t.Fatalf("expected %d texts, got %d", len(want), len(texts))
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("texts[%d] = %s, expected %s", i, texts[i], want[i])
		}
	}
}

func TestPreviousNextText(t *testing.T) {
	d := twoParagraphs(t)

	prev, ok := d.PreviousText("t3")
	if !ok || prev != "t2" {
		t.Errorf("expected previous text t2, got %s (%v)", prev, ok)
	}
	if _, ok := d.PreviousText("t1"); ok {
		t.Error("first text should have no previous text")
	}

	// The next text after a container skips the container's own subtree.
	next, ok := d.NextText("p1")
	if !ok || next != "t3" {
		t.Errorf("expected next text t3, got %s (%v)", next, ok)
	}
}

func TestCommonAncestor(t *testing.T) {
	d := twoParagraphs(t)

	ca, err := d.CommonAncestor("t1", "t2")
	if err != nil || ca != "p1" {
		t.Errorf("expected common ancestor p1, got %s (%v)", ca, err)
	}
	ca, err = d.CommonAncestor("t1", "t3")
	if err != nil || ca != d.Root() {
		t.Errorf("expected the root, got %s (%v)", ca, err)
	}
	// One endpoint being the other's ancestor returns the ancestor itself.
	ca, err = d.CommonAncestor("t1", "p1")
	if err != nil || ca != "p1" {
		t.Errorf("expected p1, got %s (%v)", ca, err)
	}
}

func TestMutatorsPreserveOldDocument(t *testing.T) {
	d := twoParagraphs(t)
	before := d.Len()

	d2, err := d.InsertTemplate("p2", 0, NewText(NewSpan("new")))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if d.Len() != before {
		t.Errorf("original document grew from %d to %d nodes", before, d.Len())
	}
	if d2.Len() != before+1 {
		t.Errorf("expected %d nodes in the new document, got %d", before+1, d2.Len())
	}
	n, err := d.Node("p2")
	if err != nil {
		t.Fatalf("node lookup failed: %v", err)
	}
	if n.ChildCount() != 1 {
		t.Errorf("original p2 should still have 1 child, got %d", n.ChildCount())
	}
}

func TestRemoveSubtree(t *testing.T) {
	d := twoParagraphs(t)
	d2, removed, err := d.RemoveSubtree("p1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("expected 3 removed keys, got %d", len(removed))
	}
	if d2.Has("t1") || d2.Has("t2") || d2.Has("p1") {
		t.Error("removed subtree records should be gone")
	}
	if err := d2.Validate(); err != nil {
		t.Errorf("document should validate after removal: %v", err)
	}

	if _, _, err := d.RemoveSubtree(d.Root()); err == nil {
		t.Error("removing the root should fail")
	}
}

func TestDetachAttach(t *testing.T) {
	d := twoParagraphs(t)
	d2, err := d.Detach("t2")
	if err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if _, err := d2.Path("t2"); err == nil {
		t.Error("detached node should have no path")
	}
	d3, err := d2.Attach("p2", 1, "t2")
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	path, err := d3.Path("t2")
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}
	if !path.Equal(Path{1, 1}) {
		t.Errorf("expected path /1/1, got %s", path)
	}
	if err := d3.Validate(); err != nil {
		t.Errorf("document should validate after re-attach: %v", err)
	}
}

func TestAttachRejectsAttachedNode(t *testing.T) {
	d := twoParagraphs(t)
	_, err := d.Attach("p2", 0, "t1")
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestTemplateOfRoundTrip(t *testing.T) {
	d := twoParagraphs(t)
	tpl, err := d.TemplateOf(d.Root())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	d2, err := FromTemplate(tpl)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if d2.Len() != d.Len() {
		t.Errorf("expected %d nodes, got %d", d.Len(), d2.Len())
	}
	n, err := d2.Node("t1")
	if err != nil {
		t.Fatalf("t1 lookup failed: %v", err)
	}
	if n.Text() != "hello" {
		t.Errorf("expected hello, got %q", n.Text())
	}
}

func TestComparePointsAndEdges(t *testing.T) {
	d := twoParagraphs(t)

	cmp, err := d.ComparePoints(Point{Key: "t1", Offset: 2}, Point{Key: "t3", Offset: 0})
	if err != nil || cmp != -1 {
		t.Errorf("expected -1, got %d (%v)", cmp, err)
	}
	cmp, err = d.ComparePoints(Point{Key: "t1", Offset: 3}, Point{Key: "t1", Offset: 1})
	if err != nil || cmp != 1 {
		t.Errorf("expected 1, got %d (%v)", cmp, err)
	}

	// A backwards selection still yields ordered edges.
	sel := Selection{Anchor: Point{Key: "t3", Offset: 1}, Focus: Point{Key: "t1", Offset: 0}, Set: true}
	start, end, err := d.SelectionEdges(sel)
	if err != nil {
		t.Fatalf("edges failed: %v", err)
	}
	if start.Key != "t1" || end.Key != "t3" {
		t.Errorf("expected edges t1..t3, got %s..%s", start.Key, end.Key)
	}
}

func TestNodeSplitText(t *testing.T) {
	d := twoParagraphs(t)
	n, _ := d.Node("t1")
	left, right, err := n.Split(2, "t1r")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if left.Text() != "he" || right.Text() != "llo" {
		t.Errorf("expected he | llo, got %q | %q", left.Text(), right.Text())
	}
	if left.Key() != "t1" || right.Key() != "t1r" {
		t.Errorf("left keeps the key, right takes the new one: %s | %s", left.Key(), right.Key())
	}
}

func TestNodeSplitContainer(t *testing.T) {
	d := twoParagraphs(t)
	n, _ := d.Node("p1")
	left, right, err := n.Split(1, "p1r")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if left.ChildCount() != 1 || right.ChildCount() != 1 {
		t.Errorf("expected 1|1 children, got %d|%d", left.ChildCount(), right.ChildCount())
	}
	if right.Type() != "paragraph" {
		t.Errorf("right half should copy the type, got %q", right.Type())
	}
}

func TestNodeSplitOutOfBounds(t *testing.T) {
	d := twoParagraphs(t)
	n, _ := d.Node("t1")
	if _, _, err := n.Split(9, "x"); !errors.Is(err, ErrRangeOutOfBounds) {
		t.Errorf("expected ErrRangeOutOfBounds, got %v", err)
	}
}

func TestNodeMergeKindMismatch(t *testing.T) {
	d := twoParagraphs(t)
	text, _ := d.Node("t1")
	block, _ := d.Node("p1")
	if _, err := block.Merge(text); !errors.Is(err, ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}
}
