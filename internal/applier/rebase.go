package applier

import (
	"unicode/utf8"

	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// rebaseInfo carries the per-application facts the rebasing rules need but
// the operation record alone cannot supply: the key of the node the
// operation resolved to, the applier-minted right-sibling key for splits,
// the retained sibling and offset base for joins, and the removal context
// for node removals.
type rebaseInfo struct {
	key     document.Key               // node the operation targeted
	newKey  document.Key               // split_node: manufactured right sibling
	prevKey document.Key               // join_node: retained sibling
	base    int                        // join_node: retained sibling's prior size
	removed map[document.Key]bool      // remove_node: deleted subtree keys
	prev    document.Point             // remove_node: end of nearest preceding text
	next    document.Point             // remove_node: start of nearest following text
	hasPrev bool
	hasNext bool
}

// rebase relocates a selection after an operation so both endpoints keep
// addressing the same logical position. Operations that cannot displace a
// selection (mark edits, inserts of new nodes, moves, property merges)
// leave it untouched.
func rebase(sel document.Selection, op operation.Op, info rebaseInfo) document.Selection {
	if !sel.Set {
		return sel
	}
	if rm, ok := op.(operation.RemoveNode); ok {
		return rebaseRemoveNode(sel, rm, info)
	}
	sel.Anchor = rebasePoint(sel.Anchor, op, info)
	sel.Focus = rebasePoint(sel.Focus, op, info)
	return sel
}

func rebasePoint(p document.Point, op operation.Op, info rebaseInfo) document.Point {
	switch op := op.(type) {
	case operation.InsertText:
		// Inserting exactly at a cursor pushes it forward.
		if p.Key == info.key && p.Offset >= op.Offset {
			p.Offset += utf8.RuneCountInString(op.Text)
		}
	case operation.RemoveText:
		n := utf8.RuneCountInString(op.Text)
		if p.Key == info.key && p.Offset > op.Offset {
			if p.Offset >= op.Offset+n {
				p.Offset -= n
			} else {
				// Inside the removed range: collapse to the removal start.
				p.Offset = op.Offset
			}
		}
	case operation.SplitNode:
		if p.Key == info.key && p.Offset >= op.Position {
			p.Key = info.newKey
			p.Offset -= op.Position
		}
	case operation.JoinNode:
		if p.Key == info.key {
			p.Key = info.prevKey
			p.Offset += info.base
		}
	}
	return p
}

// rebaseRemoveNode relocates endpoints stranded inside a removed subtree:
// to the end of the nearest preceding text node, else the start of the
// nearest following one. When the document holds no text at all the
// selection is cleared entirely.
func rebaseRemoveNode(sel document.Selection, _ operation.RemoveNode, info rebaseInfo) document.Selection {
	relocate := func(p document.Point) (document.Point, bool) {
		if !info.removed[p.Key] {
			return p, true
		}
		if info.hasPrev {
			return info.prev, true
		}
		if info.hasNext {
			return info.next, true
		}
		return document.Point{}, false
	}
	anchor, ok := relocate(sel.Anchor)
	if !ok {
		return document.Deselected()
	}
	focus, ok := relocate(sel.Focus)
	if !ok {
		return document.Deselected()
	}
	sel.Anchor = anchor
	sel.Focus = focus
	return sel
}
