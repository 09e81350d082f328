package codec

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/richdoc/internal/applier"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

func testDocument(t *testing.T) *document.Document {
	t.Helper()
	link, err := document.NewMark("link", map[string]any{"href": "/home"})
	if err != nil {
		t.Fatalf("building mark failed: %v", err)
	}
	tpl := document.NewDocumentTemplate(
		document.NewBlock("paragraph",
			document.NewText(
				document.NewSpan("hello ", document.PlainMark("bold")),
				document.NewSpan("world", link),
			).WithKey("t1"),
		).WithKey("p1").WithData(map[string]any{"align": "left"}),
	)
	d, err := document.FromTemplate(tpl)
	if err != nil {
		t.Fatalf("building document failed: %v", err)
	}
	return d
}

func TestDocumentRoundTrip(t *testing.T) {
	d := testDocument(t)
	encoded, err := EncodeDocument(d)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	reencoded, err := EncodeDocument(decoded)
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Errorf("round trip is not stable:\n%s", cmp.Diff(string(encoded), string(reencoded)))
	}
	n, err := decoded.Node("t1")
	if err != nil {
		t.Fatalf("keys should survive the round trip: %v", err)
	}
	if n.Text() != "hello world" {
		t.Errorf("expected hello world, got %q", n.Text())
	}
	if len(n.Spans()) != 2 {
		t.Errorf("span partition should survive, got %d spans", len(n.Spans()))
	}
}

func TestDecodeDocumentRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeDocument([]byte(`{"kind":`)); err == nil {
		t.Error("invalid JSON should be fatal")
	}
}

func TestStateRoundTripWithSelection(t *testing.T) {
	s := document.NewState(testDocument(t))
	s = s.WithSelection(document.Selection{
		Anchor: document.Point{Key: "t1", Offset: 2},
		Focus:  document.Point{Key: "t1", Offset: 7},
		Set:    true,
	})
	s = s.MergeData(map[string]any{"title": "Home"})

	encoded, err := EncodeState(s)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeState(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !decoded.Selection.Set {
		t.Fatal("selection should survive")
	}
	if decoded.Selection.Anchor != s.Selection.Anchor || decoded.Selection.Focus != s.Selection.Focus {
		t.Errorf("expected %s, got %s", s.Selection, decoded.Selection)
	}
	if decoded.Data["title"] != "Home" {
		t.Errorf("metadata should survive, got %v", decoded.Data)
	}
}

func TestDecodeStateRejectsDanglingSelection(t *testing.T) {
	s := document.NewState(testDocument(t))
	encoded, err := EncodeState(s)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// Splice a selection with unknown keys into the top-level object.
	patched := string(encoded[:len(encoded)-2]) + `,"selection":{"anchor":{"key":"ghost","offset":0},"focus":{"key":"ghost","offset":0}}` + "\n}"
	if _, err := DecodeState([]byte(patched)); err == nil {
		t.Error("a selection endpoint outside the document should be fatal")
	}
}

func TestOpRoundTrips(t *testing.T) {
	link, _ := document.NewMark("link", map[string]any{"href": "/x"})
	five := 5
	set := true
	ops := []operation.Op{
		operation.AddMark{Path: document.Path{0, 0}, Offset: 1, Length: 4, Mark: document.PlainMark("bold")},
		operation.RemoveMark{Path: document.Path{0, 0}, Offset: 0, Length: 2, Mark: link},
		operation.SetMark{Path: document.Path{0, 0}, Offset: 0, Length: 2, Mark: link,
			Properties: document.MarkProps{Data: map[string]any{"href": "/y"}}},
		operation.InsertNode{Path: document.Path{1}, Node: document.NewBlock("quote",
			document.NewText(document.NewSpan("q", document.PlainMark("bold"))).WithKey("qt"),
		).WithKey("qb")},
		operation.RemoveNode{Path: document.Path{0}},
		operation.MoveNode{Path: document.Path{0, 0}, NewPath: document.Path{0, 2}},
		operation.InsertText{Path: document.Path{0, 0}, Offset: 5, Text: ", there",
			Marks: []document.Mark{document.PlainMark("bold")}},
		operation.InsertText{Path: document.Path{0, 0}, Offset: 5, Text: "plain"},
		operation.RemoveText{Path: document.Path{0, 0}, Offset: 3, Text: "lo w"},
		operation.SplitNode{Path: document.Path{0, 0}, Position: 5},
		operation.JoinNode{Path: document.Path{0, 1}, Position: 5},
		operation.SetNode{Path: document.Path{0}, Properties: map[string]any{"type": "heading"}},
		operation.SetSelection{Properties: operation.SelectionProps{
			Anchor:      &document.Point{Key: "t1", Offset: 2},
			FocusPath:   document.Path{0, 0},
			FocusOffset: &five,
			Set:         &set,
		}},
		operation.SetData{Properties: map[string]any{"title": "Doc"}},
	}

	for _, op := range ops {
		encoded, err := EncodeOp(op)
		if err != nil {
			t.Fatalf("encoding %s failed: %v", op, err)
		}
		decoded, err := DecodeOp(encoded)
		if err != nil {
			t.Fatalf("decoding %s failed: %v", op, err)
		}
		if diff := cmp.Diff(op, decoded); diff != "" {
			t.Errorf("%s did not round trip:\n%s", op.Kind(), diff)
		}
	}
}

func TestDecodeOpUnknownTagIsFatal(t *testing.T) {
	if _, err := DecodeOp([]byte(`{"type":"transmogrify","path":[0]}`)); err == nil {
		t.Error("an unknown operation tag should be fatal")
	}
}

func TestDecodeLogBothShapes(t *testing.T) {
	jsonl := []byte(`
{"type":"insert_text","path":[0,0],"offset":5,"text":"!"}
{"type":"remove_text","path":[0,0],"offset":5,"text":"!"}
`)
	ops, err := DecodeLog(jsonl)
	if err != nil {
		t.Fatalf("decoding JSONL failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}

	array := []byte(`[
		{"type":"insert_text","path":[0,0],"offset":5,"text":"!"},
		{"type":"remove_text","path":[0,0],"offset":5,"text":"!"}
	]`)
	fromArray, err := DecodeLog(array)
	if err != nil {
		t.Fatalf("decoding array failed: %v", err)
	}
	if diff := cmp.Diff(ops, fromArray); diff != "" {
		t.Errorf("both log shapes should decode identically:\n%s", diff)
	}
}

func TestLogReplayMatchesDirectApplication(t *testing.T) {
	ops := []operation.Op{
		operation.InsertText{Path: document.Path{0, 0}, Offset: 11, Text: "!"},
		operation.AddMark{Path: document.Path{0, 0}, Offset: 0, Length: 5, Mark: document.PlainMark("em")},
		operation.SplitNode{Path: document.Path{0, 0}, Position: 6},
	}
	ap := applier.New()

	direct, err := ap.ApplyAll(document.NewState(testDocument(t)), ops)
	if err != nil {
		t.Fatalf("direct application failed: %v", err)
	}

	log, err := EncodeLog(ops)
	if err != nil {
		t.Fatalf("encoding log failed: %v", err)
	}
	decoded, err := DecodeLog(log)
	if err != nil {
		t.Fatalf("decoding log failed: %v", err)
	}
	replayed, err := ap.ApplyAll(document.NewState(testDocument(t)), decoded)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	a, _ := direct.Doc.Node("t1")
	b, _ := replayed.Doc.Node("t1")
	if diff := cmp.Diff(a.Spans(), b.Spans()); diff != "" {
		t.Errorf("replayed spans diverge:\n%s", diff)
	}
	root, _ := direct.Doc.Node(direct.Doc.Root())
	rroot, _ := replayed.Doc.Node(replayed.Doc.Root())
	if root.ChildCount() != rroot.ChildCount() {
		t.Errorf("replayed structure diverges: %d vs %d root children",
			root.ChildCount(), rroot.ChildCount())
	}
}
