package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"

	"github.com/dshills/richdoc/internal/document"
)

const previewWidth = 40

var (
	kindColor = map[document.Kind]*color.Color{
		document.KindDocument: color.New(color.FgMagenta, color.Bold),
		document.KindBlock:    color.New(color.FgCyan),
		document.KindInline:   color.New(color.FgGreen),
		document.KindText:     color.New(color.FgYellow),
	}
	keyColor  = color.New(color.Faint)
	markColor = color.New(color.FgRed)
)

// printTree writes an indented, colored summary of the document to w.
// Text previews are padded to a fixed display width so mark lists line
// up in a column.
func printTree(w io.Writer, d *document.Document) error {
	return printNode(w, d, d.Root(), 0)
}

func printNode(w io.Writer, d *document.Document, k document.Key, depth int) error {
	n, err := d.Node(k)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)
	label := n.Kind().String()
	if n.Type() != "" {
		label += ":" + n.Type()
	}

	if n.IsText() {
		fmt.Fprintf(w, "%s%s %s\n", indent, kindColor[n.Kind()].Sprint(label), keyColor.Sprintf("(%s)", short(k)))
		for _, span := range n.Spans() {
			preview := pad(quote(span.Text), previewWidth)
			marks := make([]string, 0, len(span.Marks))
			for _, m := range span.Marks {
				marks = append(marks, m.Type)
			}
			line := indent + "  " + preview
			if len(marks) > 0 {
				line += " " + markColor.Sprint(strings.Join(marks, ","))
			}
			fmt.Fprintln(w, line)
		}
		return nil
	}

	fmt.Fprintf(w, "%s%s %s\n", indent, kindColor[n.Kind()].Sprint(label), keyColor.Sprintf("(%s)", short(k)))
	for _, c := range n.Children() {
		if err := printNode(w, d, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func short(k document.Key) string {
	s := k.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func quote(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}

// pad aligns by rendered width, not byte or rune count, so wide
// characters and emoji do not skew the column.
func pad(s string, width int) string {
	w := uniseg.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
