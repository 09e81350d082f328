package codec

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/richdoc/internal/coerce"
	"github.com/dshills/richdoc/internal/document"
	"github.com/dshills/richdoc/internal/operation"
)

// EncodeOp serializes one operation as a compact JSON record tagged with
// its wire name.
func EncodeOp(op operation.Op) ([]byte, error) {
	b := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		b, err = sjson.SetBytes(b, path, value)
	}
	set("type", op.Kind().String())

	switch op := op.(type) {
	case operation.AddMark:
		set("path", []int(op.Path))
		set("offset", op.Offset)
		set("length", op.Length)
		setMark(&b, &err, "mark", op.Mark)
	case operation.RemoveMark:
		set("path", []int(op.Path))
		set("offset", op.Offset)
		set("length", op.Length)
		setMark(&b, &err, "mark", op.Mark)
	case operation.SetMark:
		set("path", []int(op.Path))
		set("offset", op.Offset)
		set("length", op.Length)
		setMark(&b, &err, "mark", op.Mark)
		if op.Properties.Type != "" {
			set("properties.type", op.Properties.Type)
		}
		if op.Properties.Data != nil {
			set("properties.data", op.Properties.Data)
		}
	case operation.InsertNode:
		set("path", []int(op.Path))
		setTemplate(&b, &err, "node", op.Node)
	case operation.RemoveNode:
		set("path", []int(op.Path))
		if op.Node != nil {
			setTemplate(&b, &err, "node", op.Node)
		}
	case operation.MoveNode:
		set("path", []int(op.Path))
		set("newPath", []int(op.NewPath))
	case operation.InsertText:
		set("path", []int(op.Path))
		set("offset", op.Offset)
		set("text", op.Text)
		if op.Marks != nil {
			marks := make([]map[string]any, 0, len(op.Marks))
			for _, m := range op.Marks {
				marks = append(marks, markMap(m))
			}
			set("marks", marks)
		}
	case operation.RemoveText:
		set("path", []int(op.Path))
		set("offset", op.Offset)
		set("text", op.Text)
	case operation.SplitNode:
		set("path", []int(op.Path))
		set("position", op.Position)
	case operation.JoinNode:
		set("path", []int(op.Path))
		set("position", op.Position)
	case operation.SetNode:
		set("path", []int(op.Path))
		set("properties", op.Properties)
	case operation.SetSelection:
		p := op.Properties
		if p.Anchor != nil {
			set("properties.anchor.key", p.Anchor.Key.String())
			set("properties.anchor.offset", p.Anchor.Offset)
		}
		if p.Focus != nil {
			set("properties.focus.key", p.Focus.Key.String())
			set("properties.focus.offset", p.Focus.Offset)
		}
		if p.AnchorPath != nil {
			set("properties.anchorPath", []int(p.AnchorPath))
		}
		if p.FocusPath != nil {
			set("properties.focusPath", []int(p.FocusPath))
		}
		if p.AnchorOffset != nil {
			set("properties.anchorOffset", *p.AnchorOffset)
		}
		if p.FocusOffset != nil {
			set("properties.focusOffset", *p.FocusOffset)
		}
		if p.Set != nil {
			set("properties.set", *p.Set)
		}
	case operation.SetData:
		set("properties", op.Properties)
	default:
		return nil, fmt.Errorf("encoding: unknown operation %T", op)
	}
	return b, err
}

func setMark(b *[]byte, err *error, path string, m document.Mark) {
	if *err != nil {
		return
	}
	*b, *err = sjson.SetBytes(*b, path, markMap(m))
}

func markMap(m document.Mark) map[string]any {
	out := map[string]any{"type": m.Type}
	if d := m.DataMap(); d != nil {
		out["data"] = d
	}
	return out
}

func setTemplate(b *[]byte, err *error, path string, t *document.Template) {
	if *err != nil {
		return
	}
	*b, *err = sjson.SetBytes(*b, path, templateMap(t))
}

func templateMap(t *document.Template) map[string]any {
	out := map[string]any{"kind": t.Kind.String()}
	if t.Key != "" {
		out["key"] = t.Key.String()
	}
	if t.Type != "" {
		out["type"] = t.Type
	}
	if len(t.Data) > 0 {
		out["data"] = t.Data
	}
	if t.Kind == document.KindText {
		spans := make([]map[string]any, 0, len(t.Spans))
		for _, s := range t.Spans {
			span := map[string]any{"text": s.Text}
			if len(s.Marks) > 0 {
				marks := make([]map[string]any, 0, len(s.Marks))
				for _, m := range s.Marks {
					marks = append(marks, markMap(m))
				}
				span["marks"] = marks
			}
			spans = append(spans, span)
		}
		out["spans"] = spans
		return out
	}
	if len(t.Children) > 0 {
		children := make([]map[string]any, 0, len(t.Children))
		for _, c := range t.Children {
			children = append(children, templateMap(c))
		}
		out["nodes"] = children
	}
	return out
}

// DecodeOp parses one operation record. An unknown tag is fatal.
func DecodeOp(data []byte) (operation.Op, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decoding operation: invalid JSON")
	}
	rec := gjson.ParseBytes(data)
	tag := rec.Get("type").String()
	kind, err := operation.ParseKind(tag)
	if err != nil {
		return nil, fmt.Errorf("decoding operation: %w", err)
	}

	switch kind {
	case operation.KindAddMark:
		m, err := decodeMark(rec.Get("mark"))
		if err != nil {
			return nil, err
		}
		return operation.AddMark{
			Path:   decodePath(rec.Get("path")),
			Offset: int(rec.Get("offset").Int()),
			Length: int(rec.Get("length").Int()),
			Mark:   m,
		}, nil
	case operation.KindRemoveMark:
		m, err := decodeMark(rec.Get("mark"))
		if err != nil {
			return nil, err
		}
		return operation.RemoveMark{
			Path:   decodePath(rec.Get("path")),
			Offset: int(rec.Get("offset").Int()),
			Length: int(rec.Get("length").Int()),
			Mark:   m,
		}, nil
	case operation.KindSetMark:
		m, err := decodeMark(rec.Get("mark"))
		if err != nil {
			return nil, err
		}
		props := document.MarkProps{Type: rec.Get("properties.type").String()}
		if d := rec.Get("properties.data"); d.Exists() {
			if dm, ok := d.Value().(map[string]any); ok {
				props.Data = dm
			}
		}
		return operation.SetMark{
			Path:       decodePath(rec.Get("path")),
			Offset:     int(rec.Get("offset").Int()),
			Length:     int(rec.Get("length").Int()),
			Mark:       m,
			Properties: props,
		}, nil
	case operation.KindInsertNode:
		tpl, err := decodeTemplate(rec.Get("node"))
		if err != nil {
			return nil, err
		}
		return operation.InsertNode{Path: decodePath(rec.Get("path")), Node: tpl}, nil
	case operation.KindRemoveNode:
		op := operation.RemoveNode{Path: decodePath(rec.Get("path"))}
		if n := rec.Get("node"); n.Exists() {
			tpl, err := decodeTemplate(n)
			if err != nil {
				return nil, err
			}
			op.Node = tpl
		}
		return op, nil
	case operation.KindMoveNode:
		return operation.MoveNode{
			Path:    decodePath(rec.Get("path")),
			NewPath: decodePath(rec.Get("newPath")),
		}, nil
	case operation.KindInsertText:
		op := operation.InsertText{
			Path:   decodePath(rec.Get("path")),
			Offset: int(rec.Get("offset").Int()),
			Text:   rec.Get("text").String(),
		}
		if marks := rec.Get("marks"); marks.Exists() {
			ms, err := coerce.Marks(marks.Value())
			if err != nil {
				return nil, err
			}
			op.Marks = ms
		}
		return op, nil
	case operation.KindRemoveText:
		return operation.RemoveText{
			Path:   decodePath(rec.Get("path")),
			Offset: int(rec.Get("offset").Int()),
			Text:   rec.Get("text").String(),
		}, nil
	case operation.KindSplitNode:
		return operation.SplitNode{
			Path:     decodePath(rec.Get("path")),
			Position: int(rec.Get("position").Int()),
		}, nil
	case operation.KindJoinNode:
		return operation.JoinNode{
			Path:     decodePath(rec.Get("path")),
			Position: int(rec.Get("position").Int()),
		}, nil
	case operation.KindSetNode:
		props, _ := rec.Get("properties").Value().(map[string]any)
		return operation.SetNode{Path: decodePath(rec.Get("path")), Properties: props}, nil
	case operation.KindSetSelection:
		return decodeSetSelection(rec.Get("properties"))
	case operation.KindSetData:
		props, _ := rec.Get("properties").Value().(map[string]any)
		return operation.SetData{Properties: props}, nil
	default:
		return nil, fmt.Errorf("decoding operation: unhandled tag %q", tag)
	}
}

func decodeSetSelection(props gjson.Result) (operation.Op, error) {
	var p operation.SelectionProps
	if a := props.Get("anchor"); a.Exists() {
		point := document.Point{Key: document.Key(a.Get("key").String()), Offset: int(a.Get("offset").Int())}
		p.Anchor = &point
	}
	if f := props.Get("focus"); f.Exists() {
		point := document.Point{Key: document.Key(f.Get("key").String()), Offset: int(f.Get("offset").Int())}
		p.Focus = &point
	}
	if ap := props.Get("anchorPath"); ap.Exists() {
		p.AnchorPath = decodePath(ap)
	}
	if fp := props.Get("focusPath"); fp.Exists() {
		p.FocusPath = decodePath(fp)
	}
	if ao := props.Get("anchorOffset"); ao.Exists() {
		v := int(ao.Int())
		p.AnchorOffset = &v
	}
	if fo := props.Get("focusOffset"); fo.Exists() {
		v := int(fo.Int())
		p.FocusOffset = &v
	}
	if set := props.Get("set"); set.Exists() {
		v := set.Bool()
		p.Set = &v
	}
	return operation.SetSelection{Properties: p}, nil
}

func decodePath(res gjson.Result) document.Path {
	if !res.Exists() {
		return nil
	}
	var p document.Path
	res.ForEach(func(_, v gjson.Result) bool {
		p = append(p, int(v.Int()))
		return true
	})
	return p
}

func decodeMark(res gjson.Result) (document.Mark, error) {
	if res.Type == gjson.String {
		return coerce.Mark(res.String())
	}
	v, ok := res.Value().(map[string]any)
	if !ok {
		return document.Mark{}, fmt.Errorf("decoding operation: malformed mark")
	}
	return coerce.Mark(v)
}

func decodeTemplate(res gjson.Result) (*document.Template, error) {
	v, ok := res.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding operation: malformed node")
	}
	return coerce.Node(v)
}

// EncodeLog serializes operations one record per line.
func EncodeLog(ops []operation.Op) ([]byte, error) {
	var buf bytes.Buffer
	for _, op := range ops {
		b, err := EncodeOp(op)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// DecodeLog parses an operation log: either a JSON array of records or
// one record per line.
func DecodeLog(data []byte) ([]operation.Op, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var ops []operation.Op
	if trimmed[0] == '[' {
		if !gjson.ValidBytes(trimmed) {
			return nil, fmt.Errorf("decoding log: invalid JSON")
		}
		var firstErr error
		gjson.ParseBytes(trimmed).ForEach(func(_, rec gjson.Result) bool {
			op, err := DecodeOp([]byte(rec.Raw))
			if err != nil {
				firstErr = err
				return false
			}
			ops = append(ops, op)
			return true
		})
		return ops, firstErr
	}
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		op, err := DecodeOp(line)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
