// Package document provides the persistent rich-text document tree.
//
// A document is a tree of nodes: one Document root, Block and Inline
// containers, and Text leaves. Containers hold an ordered list of child
// nodes; Text leaves hold an ordered list of Spans, contiguous runs of
// text sharing one mark set.
//
// Nodes are addressed two ways:
//
//   - Key: a globally unique, stable identifier assigned at creation and
//     preserved across copy-on-write copies of the same logical node.
//   - Path: a positional address, the sequence of child indices from the
//     root. Paths are derived on demand and must never be persisted across
//     edits, because earlier edits shift sibling indices.
//
// The tree is persistent: Document values are immutable and every mutator
// returns a new Document sharing unchanged node records with the old one.
// Holding an old Document is always safe; it never observes later edits.
//
// Basic usage:
//
//	d, _ := document.FromTemplate(document.NewDocumentTemplate(
//	    document.NewBlock("paragraph",
//	        document.NewText(document.NewSpan("hello")),
//	    ),
//	))
//
//	key := d.Texts()[0]
//	n, _ := d.Node(key)
//	n2, _ := n.InsertText(5, ", world", nil)
//	d2, _ := d.ReplaceNode(n2)
//
//	// d still reads "hello"; d2 reads "hello, world".
package document
