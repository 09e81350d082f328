package coerce

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/richdoc/internal/document"
)

// ErrBadInput indicates a value that cannot be coerced to the target type.
var ErrBadInput = errors.New("cannot coerce value")

// Text canonicalizes caller-supplied text to Unicode NFC.
func Text(s string) string {
	return norm.NFC.String(s)
}

// Mark coerces a mark from a Mark value, a bare type string, or a map of
// the form {"type": ..., "data": {...}}.
func Mark(v any) (document.Mark, error) {
	switch m := v.(type) {
	case document.Mark:
		if m.Type == "" {
			return document.Mark{}, fmt.Errorf("%w: mark with empty type", ErrBadInput)
		}
		return m, nil
	case string:
		if m == "" {
			return document.Mark{}, fmt.Errorf("%w: empty mark type", ErrBadInput)
		}
		return document.PlainMark(m), nil
	case map[string]any:
		typ, _ := m["type"].(string)
		var data map[string]any
		if d, ok := m["data"].(map[string]any); ok {
			data = d
		}
		return document.NewMark(typ, data)
	default:
		return document.Mark{}, fmt.Errorf("%w: %T to mark", ErrBadInput, v)
	}
}

// Marks coerces a mark set. Nil stays nil, which insert_text reads as
// "inherit the marks at the offset".
func Marks(v any) ([]document.Mark, error) {
	switch ms := v.(type) {
	case nil:
		return nil, nil
	case []document.Mark:
		out := make([]document.Mark, 0, len(ms))
		for _, m := range ms {
			coerced, err := Mark(m)
			if err != nil {
				return nil, err
			}
			out = append(out, coerced)
		}
		return out, nil
	case []string:
		out := make([]document.Mark, 0, len(ms))
		for _, m := range ms {
			coerced, err := Mark(m)
			if err != nil {
				return nil, err
			}
			out = append(out, coerced)
		}
		return out, nil
	case []any:
		out := make([]document.Mark, 0, len(ms))
		for _, m := range ms {
			coerced, err := Mark(m)
			if err != nil {
				return nil, err
			}
			out = append(out, coerced)
		}
		return out, nil
	default:
		m, err := Mark(v)
		if err != nil {
			return nil, err
		}
		return []document.Mark{m}, nil
	}
}

// MarkProps coerces a partial mark update from MarkProps, a replacement
// type string, or a map of the form {"type": ..., "data": {...}}.
func MarkProps(v any) (document.MarkProps, error) {
	switch p := v.(type) {
	case document.MarkProps:
		return p, nil
	case string:
		return document.MarkProps{Type: p}, nil
	case map[string]any:
		out := document.MarkProps{}
		if typ, ok := p["type"].(string); ok {
			out.Type = typ
		}
		if data, ok := p["data"].(map[string]any); ok {
			out.Data = data
		}
		return out, nil
	default:
		return document.MarkProps{}, fmt.Errorf("%w: %T to mark properties", ErrBadInput, v)
	}
}

// Properties coerces a node property bag. A bare string is shorthand for
// {"type": s}.
func Properties(v any) (map[string]any, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]any, len(p))
		for k, val := range p {
			out[k] = val
		}
		return out, nil
	case string:
		return map[string]any{"type": p}, nil
	default:
		return nil, fmt.Errorf("%w: %T to properties", ErrBadInput, v)
	}
}

// Node coerces a detached node from a Template or a JSON-shaped map:
//
//	{"kind": "block", "type": "paragraph", "nodes": [...]}
//	{"kind": "text", "spans": [{"text": "hi", "marks": ["bold"]}]}
//	{"kind": "text", "text": "plain"}
//
// Missing keys are minted, text is NFC-normalized, and mark data is
// canonicalized. The caller's value is never modified.
func Node(v any) (*document.Template, error) {
	switch n := v.(type) {
	case *document.Template:
		return normalizeTemplate(n.Clone()), nil
	case document.Template:
		return normalizeTemplate(n.Clone()), nil
	case map[string]any:
		return nodeFromMap(n)
	default:
		return nil, fmt.Errorf("%w: %T to node", ErrBadInput, v)
	}
}

func normalizeTemplate(t *document.Template) *document.Template {
	for i, s := range t.Spans {
		t.Spans[i] = document.NewSpan(Text(s.Text), s.Marks...)
	}
	for _, c := range t.Children {
		normalizeTemplate(c)
	}
	return t.EnsureKeys()
}

func nodeFromMap(m map[string]any) (*document.Template, error) {
	kindName, _ := m["kind"].(string)
	if kindName == "" {
		kindName = "block"
	}
	kind, err := document.ParseKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	t := &document.Template{Kind: kind}
	if key, ok := m["key"].(string); ok {
		t.Key = document.Key(key)
	}
	if typ, ok := m["type"].(string); ok {
		t.Type = typ
	}
	if data, ok := m["data"].(map[string]any); ok {
		t.Data = make(map[string]any, len(data))
		for k, v := range data {
			t.Data[k] = v
		}
	}
	if kind == document.KindText {
		if err := textFromMap(t, m); err != nil {
			return nil, err
		}
		return normalizeTemplate(t), nil
	}
	if children, ok := m["nodes"].([]any); ok {
		for _, c := range children {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %T as child node", ErrBadInput, c)
			}
			child, err := nodeFromMap(cm)
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, child)
		}
	}
	return normalizeTemplate(t), nil
}

func textFromMap(t *document.Template, m map[string]any) error {
	if spans, ok := m["spans"].([]any); ok {
		for _, s := range spans {
			sm, ok := s.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %T as span", ErrBadInput, s)
			}
			text, _ := sm["text"].(string)
			marks, err := Marks(sm["marks"])
			if err != nil {
				return err
			}
			t.Spans = append(t.Spans, document.NewSpan(text, marks...))
		}
		return nil
	}
	text, _ := m["text"].(string)
	t.Spans = []document.Span{document.NewSpan(text)}
	return nil
}
