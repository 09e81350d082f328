package document

// Template describes a detached node, before it joins a document. Insert
// operations carry templates; materializing one allocates arena records
// for the whole subtree. Templates with no key are given one on insertion,
// so callers may hand-build them without minting keys.
type Template struct {
	Key      Key
	Kind     Kind
	Type     string
	Data     map[string]any
	Children []*Template // container kinds
	Spans    []Span      // text kind
}

// NewDocumentTemplate builds a document-root template.
func NewDocumentTemplate(children ...*Template) *Template {
	return &Template{Kind: KindDocument, Children: children}
}

// NewBlock builds a block container template.
func NewBlock(typ string, children ...*Template) *Template {
	return &Template{Kind: KindBlock, Type: typ, Children: children}
}

// NewInline builds an inline container template.
func NewInline(typ string, children ...*Template) *Template {
	return &Template{Kind: KindInline, Type: typ, Children: children}
}

// NewText builds a text leaf template.
func NewText(spans ...Span) *Template {
	return &Template{Kind: KindText, Spans: spans}
}

// WithData attaches a property bag and returns the template for chaining.
func (t *Template) WithData(data map[string]any) *Template {
	t.Data = data
	return t
}

// WithKey pins the template to a specific key and returns it for chaining.
func (t *Template) WithKey(k Key) *Template {
	t.Key = k
	return t
}

// EnsureKeys mints keys for every template in the subtree that lacks one.
func (t *Template) EnsureKeys() *Template {
	if t.Key == "" {
		t.Key = NewKey()
	}
	for _, c := range t.Children {
		c.EnsureKeys()
	}
	return t
}

// Clone returns a deep copy of the template subtree. Keys are preserved.
func (t *Template) Clone() *Template {
	out := &Template{Key: t.Key, Kind: t.Kind, Type: t.Type}
	if len(t.Data) > 0 {
		out.Data = make(map[string]any, len(t.Data))
		for k, v := range t.Data {
			out.Data[k] = v
		}
	}
	for _, c := range t.Children {
		out.Children = append(out.Children, c.Clone())
	}
	out.Spans = append([]Span(nil), t.Spans...)
	return out
}

// node materializes the template itself (not its children) as a record.
func (t *Template) node() *Node {
	n := &Node{key: t.Key, kind: t.Kind, typ: t.Type}
	if len(t.Data) > 0 {
		n.data = make(map[string]any, len(t.Data))
		for k, v := range t.Data {
			n.data[k] = v
		}
	}
	if t.Kind == KindText {
		n.spans = coalesceSpans(t.Spans)
	}
	return n
}
