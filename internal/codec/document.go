package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/document"
)

type nodeDTO struct {
	Key   string         `json:"key"`
	Kind  string         `json:"kind"`
	Type  string         `json:"type,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
	Nodes []nodeDTO      `json:"nodes,omitempty"`
	Spans []spanDTO      `json:"spans,omitempty"`
}

type spanDTO struct {
	Text  string    `json:"text"`
	Marks []markDTO `json:"marks,omitempty"`
}

type markDTO struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

type pointDTO struct {
	Key    string `json:"key"`
	Offset int    `json:"offset"`
}

type stateDTO struct {
	Document  nodeDTO        `json:"document"`
	Selection *selectionDTO  `json:"selection,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

type selectionDTO struct {
	Anchor pointDTO `json:"anchor"`
	Focus  pointDTO `json:"focus"`
}

// EncodeDocument serializes a document tree as indented JSON.
func EncodeDocument(d *document.Document) ([]byte, error) {
	dto, err := nodeToDTO(d, d.Root())
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(dto, "", "  ")
}

// EncodeState serializes a full state: document, selection and metadata.
func EncodeState(s document.State) ([]byte, error) {
	dto, err := nodeToDTO(s.Doc, s.Doc.Root())
	if err != nil {
		return nil, err
	}
	out := stateDTO{Document: dto, Data: s.Data}
	if s.Selection.Set {
		out.Selection = &selectionDTO{
			Anchor: pointDTO{Key: s.Selection.Anchor.Key.String(), Offset: s.Selection.Anchor.Offset},
			Focus:  pointDTO{Key: s.Selection.Focus.Key.String(), Offset: s.Selection.Focus.Offset},
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

func nodeToDTO(d *document.Document, k document.Key) (nodeDTO, error) {
	n, err := d.Node(k)
	if err != nil {
		return nodeDTO{}, err
	}
	dto := nodeDTO{
		Key:  n.Key().String(),
		Kind: n.Kind().String(),
		Type: n.Type(),
		Data: n.Data(),
	}
	if n.IsText() {
		for _, s := range n.Spans() {
			span := spanDTO{Text: s.Text}
			for _, m := range s.Marks {
				span.Marks = append(span.Marks, markDTO{Type: m.Type, Data: m.DataMap()})
			}
			dto.Spans = append(dto.Spans, span)
		}
		return dto, nil
	}
	for _, c := range n.Children() {
		child, err := nodeToDTO(d, c)
		if err != nil {
			return nodeDTO{}, err
		}
		dto.Nodes = append(dto.Nodes, child)
	}
	return dto, nil
}

// DecodeDocument parses a JSON document tree.
func DecodeDocument(data []byte) (*document.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decoding document: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.Get("document").Exists() {
		root = root.Get("document")
	}
	value, ok := root.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding document: expected a JSON object")
	}
	tpl, err := coerce.Node(value)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return document.FromTemplate(tpl)
}

// DecodeState parses a JSON state: a document plus optional selection and
// metadata. A bare document object is accepted and wrapped.
func DecodeState(data []byte) (document.State, error) {
	d, err := DecodeDocument(data)
	if err != nil {
		return document.State{}, err
	}
	s := document.NewState(d)

	root := gjson.ParseBytes(data)
	if sel := root.Get("selection"); sel.Exists() {
		anchor := document.Point{
			Key:    document.Key(sel.Get("anchor.key").String()),
			Offset: int(sel.Get("anchor.offset").Int()),
		}
		focus := document.Point{
			Key:    document.Key(sel.Get("focus.key").String()),
			Offset: int(sel.Get("focus.offset").Int()),
		}
		if !d.Has(anchor.Key) || !d.Has(focus.Key) {
			return document.State{}, fmt.Errorf("decoding state: %w: selection endpoint", document.ErrNodeNotFound)
		}
		s.Selection = document.Selection{Anchor: anchor, Focus: focus, Set: true}
	}
	if meta := root.Get("data"); meta.Exists() {
		if m, ok := meta.Value().(map[string]any); ok {
			s.Data = m
		}
	}
	return s, nil
}
