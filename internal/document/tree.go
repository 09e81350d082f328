package document

import "fmt"

// Document is the persistent tree. Node records live in an arena keyed by
// their stable keys; paths are recomputed from the parent index on demand
// rather than stored. Every mutator clones the arena maps (the records
// themselves are shared) and returns a new Document, so a prior Document
// value never observes later edits.
type Document struct {
	root    Key
	nodes   map[Key]*Node
	parents map[Key]Key
}

// New returns a document with an empty root node.
func New() *Document {
	root := &Node{key: NewKey(), kind: KindDocument}
	return &Document{
		root:    root.key,
		nodes:   map[Key]*Node{root.key: root},
		parents: map[Key]Key{},
	}
}

// FromTemplate materializes a template subtree as a full document. The
// template must be of the document kind. Missing keys are minted; the
// caller's template is not modified.
func FromTemplate(t *Template) (*Document, error) {
	if t.Kind != KindDocument {
		return nil, fmt.Errorf("%w: root template must be a document, got %s", ErrNotContainer, t.Kind)
	}
	t = t.Clone().EnsureKeys()
	d := &Document{
		root:    t.Key,
		nodes:   map[Key]*Node{},
		parents: map[Key]Key{},
	}
	if err := d.materialize(t, ""); err != nil {
		return nil, err
	}
	return d, nil
}

// materialize adds the template subtree to the arena in place. Only used
// while building a fresh clone.
func (d *Document) materialize(t *Template, parent Key) error {
	if _, exists := d.nodes[t.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, t.Key)
	}
	n := t.node()
	for _, c := range t.Children {
		n.children = append(n.children, c.Key)
	}
	d.nodes[t.Key] = n
	if parent != "" {
		d.parents[t.Key] = parent
	}
	for _, c := range t.Children {
		if err := d.materialize(c, t.Key); err != nil {
			return err
		}
	}
	return nil
}

// clone returns a document sharing all node records but owning its maps.
func (d *Document) clone() *Document {
	nodes := make(map[Key]*Node, len(d.nodes))
	for k, v := range d.nodes {
		nodes[k] = v
	}
	parents := make(map[Key]Key, len(d.parents))
	for k, v := range d.parents {
		parents[k] = v
	}
	return &Document{root: d.root, nodes: nodes, parents: parents}
}

// Root returns the root node's key.
func (d *Document) Root() Key { return d.root }

// Len returns the number of nodes in the tree.
func (d *Document) Len() int { return len(d.nodes) }

// Has reports whether a key resolves to a node.
func (d *Document) Has(k Key) bool {
	_, ok := d.nodes[k]
	return ok
}

// Node resolves a key. A missing key is a fatal structural error.
func (d *Document) Node(k Key) (*Node, error) {
	n, ok := d.nodes[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	return n, nil
}

// Parent returns the key of a node's parent. The root has none.
func (d *Document) Parent(k Key) (Key, bool) {
	p, ok := d.parents[k]
	return p, ok
}

// Path resolves a key to its positional address.
func (d *Document) Path(k Key) (Path, error) {
	if !d.Has(k) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	var rev []int
	cur := k
	for cur != d.root {
		parent, ok := d.parents[cur]
		if !ok {
			return nil, fmt.Errorf("%w: %s is detached", ErrNodeNotFound, cur)
		}
		idx := d.childIndex(parent, cur)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s not among children of %s", ErrNodeNotFound, cur, parent)
		}
		rev = append(rev, idx)
		cur = parent
	}
	path := make(Path, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path, nil
}

func (d *Document) childIndex(parent, child Key) int {
	p, ok := d.nodes[parent]
	if !ok {
		return -1
	}
	for i, c := range p.children {
		if c == child {
			return i
		}
	}
	return -1
}

// KeyAt resolves a path to a key. A dangling path is a fatal error.
func (d *Document) KeyAt(p Path) (Key, error) {
	cur := d.root
	for depth, idx := range p {
		n := d.nodes[cur]
		if idx < 0 || idx >= len(n.children) {
			return "", fmt.Errorf("%w: %s at depth %d", ErrPathNotFound, p, depth)
		}
		cur = n.children[idx]
	}
	return cur, nil
}

// NodeAt resolves a path to a node.
func (d *Document) NodeAt(p Path) (*Node, error) {
	k, err := d.KeyAt(p)
	if err != nil {
		return nil, err
	}
	return d.nodes[k], nil
}

// Ancestors returns a node's ancestor keys, nearest first, ending at the root.
func (d *Document) Ancestors(k Key) []Key {
	var out []Key
	cur := k
	for {
		p, ok := d.parents[cur]
		if !ok {
			return out
		}
		out = append(out, p)
		cur = p
	}
}

// CommonAncestor returns the closest key that is either of a and b or an
// ancestor of both.
func (d *Document) CommonAncestor(a, b Key) (Key, error) {
	if !d.Has(a) {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, a)
	}
	if !d.Has(b) {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, b)
	}
	onPath := map[Key]bool{a: true}
	for _, anc := range d.Ancestors(a) {
		onPath[anc] = true
	}
	if onPath[b] {
		return b, nil
	}
	for _, anc := range d.Ancestors(b) {
		if onPath[anc] {
			return anc, nil
		}
	}
	return "", fmt.Errorf("%w: no common ancestor of %s and %s", ErrNodeNotFound, a, b)
}

// Descends reports whether k lies inside the subtree rooted at ancestor,
// including k == ancestor.
func (d *Document) Descends(k, ancestor Key) bool {
	cur := k
	for {
		if cur == ancestor {
			return true
		}
		p, ok := d.parents[cur]
		if !ok {
			return false
		}
		cur = p
	}
}

// PreviousSibling returns the sibling immediately before a node.
func (d *Document) PreviousSibling(k Key) (Key, bool) {
	parent, ok := d.parents[k]
	if !ok {
		return "", false
	}
	idx := d.childIndex(parent, k)
	if idx <= 0 {
		return "", false
	}
	return d.nodes[parent].children[idx-1], true
}

// NextSibling returns the sibling immediately after a node.
func (d *Document) NextSibling(k Key) (Key, bool) {
	parent, ok := d.parents[k]
	if !ok {
		return "", false
	}
	idx := d.childIndex(parent, k)
	if idx < 0 || idx+1 >= len(d.nodes[parent].children) {
		return "", false
	}
	return d.nodes[parent].children[idx+1], true
}

// Texts returns the keys of all text nodes in document order.
func (d *Document) Texts() []Key {
	var out []Key
	d.walk(d.root, func(n *Node) {
		if n.kind == KindText {
			out = append(out, n.key)
		}
	})
	return out
}

func (d *Document) walk(k Key, fn func(*Node)) {
	n, ok := d.nodes[k]
	if !ok {
		return
	}
	fn(n)
	for _, c := range n.children {
		d.walk(c, fn)
	}
}

// PreviousText returns the closest text node strictly before k in document
// order, excluding k's own subtree.
func (d *Document) PreviousText(k Key) (Key, bool) {
	path, err := d.Path(k)
	if err != nil {
		return "", false
	}
	var found Key
	ok := false
	for _, t := range d.Texts() {
		tp, err := d.Path(t)
		if err != nil {
			continue
		}
		if tp.Compare(path) < 0 {
			found, ok = t, true
		}
	}
	return found, ok
}

// NextText returns the closest text node strictly after k in document
// order, excluding k's own subtree.
func (d *Document) NextText(k Key) (Key, bool) {
	path, err := d.Path(k)
	if err != nil {
		return "", false
	}
	for _, t := range d.Texts() {
		tp, err := d.Path(t)
		if err != nil {
			continue
		}
		if tp.Compare(path) > 0 && !tp.HasPrefix(path) {
			return t, true
		}
	}
	return "", false
}

// Subtree returns the keys of the subtree rooted at k, in document order.
func (d *Document) Subtree(k Key) []Key {
	var out []Key
	d.walk(k, func(n *Node) { out = append(out, n.key) })
	return out
}

// ComparePoints orders two selection points by document position.
func (d *Document) ComparePoints(a, b Point) (int, error) {
	if a.Key == b.Key {
		switch {
		case a.Offset < b.Offset:
			return -1, nil
		case a.Offset > b.Offset:
			return 1, nil
		default:
			return 0, nil
		}
	}
	pa, err := d.Path(a.Key)
	if err != nil {
		return 0, err
	}
	pb, err := d.Path(b.Key)
	if err != nil {
		return 0, err
	}
	return pa.Compare(pb), nil
}

// SelectionEdges returns the selection's endpoints in document order.
func (d *Document) SelectionEdges(s Selection) (start, end Point, err error) {
	cmp, err := d.ComparePoints(s.Anchor, s.Focus)
	if err != nil {
		return Point{}, Point{}, err
	}
	if cmp <= 0 {
		return s.Anchor, s.Focus, nil
	}
	return s.Focus, s.Anchor, nil
}

// TemplateOf snapshots the subtree rooted at k as a detached template,
// preserving keys. Useful for carrying removed nodes in operation records
// and for serialization.
func (d *Document) TemplateOf(k Key) (*Template, error) {
	n, err := d.Node(k)
	if err != nil {
		return nil, err
	}
	t := &Template{Key: n.key, Kind: n.kind, Type: n.typ, Data: n.Data()}
	if n.kind == KindText {
		t.Spans = n.Spans()
		return t, nil
	}
	for _, c := range n.children {
		ct, err := d.TemplateOf(c)
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, ct)
	}
	return t, nil
}

// ReplaceNode swaps a new record in for the node with the same key. Parent
// pointers for the record's children are refreshed, so records whose child
// lists changed (split, join) keep the index consistent.
func (d *Document) ReplaceNode(n *Node) (*Document, error) {
	if !d.Has(n.key) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, n.key)
	}
	out := d.clone()
	out.nodes[n.key] = n
	for _, c := range n.children {
		out.parents[c] = n.key
	}
	return out, nil
}

// InsertTemplate materializes a template subtree as the parent's child at
// index. Missing template keys are minted; colliding keys are fatal.
func (d *Document) InsertTemplate(parent Key, index int, t *Template) (*Document, error) {
	p, err := d.Node(parent)
	if err != nil {
		return nil, err
	}
	if !p.kind.IsContainer() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, parent)
	}
	if index < 0 || index > len(p.children) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfBounds, index, len(p.children))
	}
	t = t.Clone().EnsureKeys()
	out := d.clone()
	if err := out.materialize(t, parent); err != nil {
		return nil, err
	}
	np := p.clone()
	np.children = append(np.children, "")
	copy(np.children[index+1:], np.children[index:])
	np.children[index] = t.Key
	out.nodes[parent] = np
	return out, nil
}

// InsertRecord adds a brand-new record as the parent's child at index.
// The record's children must already exist in the arena; their parent
// pointers are re-aimed at the record. Used by split_node for the
// manufactured right sibling.
func (d *Document) InsertRecord(parent Key, index int, n *Node) (*Document, error) {
	if d.Has(n.key) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, n.key)
	}
	p, err := d.Node(parent)
	if err != nil {
		return nil, err
	}
	if !p.kind.IsContainer() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, parent)
	}
	if index < 0 || index > len(p.children) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfBounds, index, len(p.children))
	}
	out := d.clone()
	out.nodes[n.key] = n
	out.parents[n.key] = parent
	for _, c := range n.children {
		out.parents[c] = n.key
	}
	np := p.clone()
	np.children = append(np.children, "")
	copy(np.children[index+1:], np.children[index:])
	np.children[index] = n.key
	out.nodes[parent] = np
	return out, nil
}

// Detach removes a node from its parent's child list without deleting its
// records. The node becomes unreachable until re-attached.
func (d *Document) Detach(k Key) (*Document, error) {
	parent, ok := d.parents[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no parent", ErrNodeNotFound, k)
	}
	idx := d.childIndex(parent, k)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	out := d.clone()
	p := d.nodes[parent].clone()
	p.children = append(p.children[:idx], p.children[idx+1:]...)
	out.nodes[parent] = p
	delete(out.parents, k)
	return out, nil
}

// Attach inserts a detached node's existing records under parent at index.
func (d *Document) Attach(parent Key, index int, k Key) (*Document, error) {
	if !d.Has(k) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	if _, attached := d.parents[k]; attached || k == d.root {
		return nil, fmt.Errorf("%w: %s is already attached", ErrDuplicateKey, k)
	}
	p, err := d.Node(parent)
	if err != nil {
		return nil, err
	}
	if !p.kind.IsContainer() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, parent)
	}
	if index < 0 || index > len(p.children) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfBounds, index, len(p.children))
	}
	out := d.clone()
	np := p.clone()
	np.children = append(np.children, "")
	copy(np.children[index+1:], np.children[index:])
	np.children[index] = k
	out.nodes[parent] = np
	out.parents[k] = parent
	return out, nil
}

// RemoveSubtree detaches a node and deletes every record in its subtree.
// Returns the removed keys. The root cannot be removed.
func (d *Document) RemoveSubtree(k Key) (*Document, []Key, error) {
	if k == d.root {
		return nil, nil, fmt.Errorf("%w: cannot remove the root", ErrNodeNotFound)
	}
	removed := d.Subtree(k)
	out, err := d.Detach(k)
	if err != nil {
		return nil, nil, err
	}
	for _, rk := range removed {
		delete(out.nodes, rk)
		delete(out.parents, rk)
	}
	return out, removed, nil
}

// DeleteRecord drops a detached record from the arena. Used by join_node
// after the node's content has been merged into its sibling.
func (d *Document) DeleteRecord(k Key) (*Document, error) {
	if !d.Has(k) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, k)
	}
	if _, attached := d.parents[k]; attached {
		return nil, fmt.Errorf("%w: %s is still attached", ErrDuplicateKey, k)
	}
	out := d.clone()
	delete(out.nodes, k)
	return out, nil
}

// Validate checks structural invariants: every child resolves, parent
// pointers agree with child lists, every record is reachable from the
// root exactly once, and text nodes keep a non-empty span partition.
// Intended for tests.
func (d *Document) Validate() error {
	seen := map[Key]bool{}
	var check func(k Key) error
	check = func(k Key) error {
		n, ok := d.nodes[k]
		if !ok {
			return fmt.Errorf("%w: dangling child %s", ErrNodeNotFound, k)
		}
		if seen[k] {
			return fmt.Errorf("%w: %s reachable twice", ErrDuplicateKey, k)
		}
		seen[k] = true
		if n.kind == KindText {
			if len(n.children) > 0 {
				return fmt.Errorf("%w: text node %s has children", ErrNotContainer, k)
			}
			if len(n.spans) == 0 {
				return fmt.Errorf("text node %s has no spans", k)
			}
		}
		for _, c := range n.children {
			if d.parents[c] != k {
				return fmt.Errorf("parent index of %s disagrees with children of %s", c, k)
			}
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(d.root); err != nil {
		return err
	}
	if len(seen) != len(d.nodes) {
		return fmt.Errorf("%d records unreachable from the root", len(d.nodes)-len(seen))
	}
	return nil
}
