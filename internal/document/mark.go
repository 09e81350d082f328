package document

import (
	"encoding/json"
	"fmt"
)

// Mark is an immutable character-level formatting value: a type plus an
// optional data payload. Marks are compared by value, never by identity.
// Data is stored as canonical JSON (encoding/json writes object keys in
// sorted order), so two marks built from equal payloads compare equal
// with ==.
type Mark struct {
	Type string
	Data string // canonical JSON object; empty when the mark has no data
}

// NewMark builds a mark from a type and an optional data payload.
func NewMark(typ string, data map[string]any) (Mark, error) {
	if typ == "" {
		return Mark{}, fmt.Errorf("%w: empty type", ErrInvalidMark)
	}
	if len(data) == 0 {
		return Mark{Type: typ}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return Mark{}, fmt.Errorf("%w: %v", ErrInvalidMark, err)
	}
	return Mark{Type: typ, Data: string(b)}, nil
}

// PlainMark builds a data-less mark. Convenient for the common case.
func PlainMark(typ string) Mark {
	return Mark{Type: typ}
}

// DataMap decodes the mark's data payload. Returns nil when there is none.
func (m Mark) DataMap() map[string]any {
	if m.Data == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(m.Data), &out); err != nil {
		return nil
	}
	return out
}

// String returns a human-readable representation of the mark.
func (m Mark) String() string {
	if m.Data == "" {
		return fmt.Sprintf("Mark(%s)", m.Type)
	}
	return fmt.Sprintf("Mark(%s %s)", m.Type, m.Data)
}

// MarkProps describes a partial update to a mark, used by set_mark.
// A zero Type keeps the existing type; a nil Data keeps the existing
// data; otherwise Data is shallow-merged over the existing payload.
type MarkProps struct {
	Type string
	Data map[string]any
}

// Apply merges the props onto the mark, producing the replacement mark.
func (m Mark) Apply(p MarkProps) (Mark, error) {
	typ := m.Type
	if p.Type != "" {
		typ = p.Type
	}
	if p.Data == nil {
		return Mark{Type: typ, Data: m.Data}, nil
	}
	merged := m.DataMap()
	if merged == nil {
		merged = make(map[string]any, len(p.Data))
	}
	for k, v := range p.Data {
		merged[k] = v
	}
	return NewMark(typ, merged)
}
