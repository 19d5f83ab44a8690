package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ByLCY/docshot/document"
)

// node is a minimal element tree; text holds all character data below the element.
type node struct {
	name     string
	text     strings.Builder
	children []*node
}

// XML extracts tables from a tabular XML export. Any element named table
// (case-insensitive) is a table; its row/tr descendants are rows and their
// cell/td descendants are cells. Paragraphs are not produced. The declared
// encoding is honoured, so Windows-1251 and KOI8-R exports decode correctly.
func XML(r io.Reader) (document.Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	root, err := parseTree(dec)
	if err != nil {
		return document.Document{}, fmt.Errorf("parsing XML: %w", err)
	}

	var doc document.Document
	walk(root, func(n *node) {
		if !strings.EqualFold(n.name, "table") {
			return
		}
		var t document.Table
		for _, row := range descendants(n, "row", "tr") {
			var cells document.Row
			for _, cell := range descendants(row, "cell", "td") {
				cells = append(cells, cleanText(strings.TrimSpace(cell.text.String())))
			}
			if len(cells) > 0 {
				t.Rows = append(t.Rows, cells)
			}
		}
		if len(t.Rows) > 0 {
			doc.Add(t)
		}
	})
	return doc, nil
}

func parseTree(dec *xml.Decoder) (*node, error) {
	root := &node{}
	stack := []*node{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			for _, n := range stack[1:] {
				n.text.Write(t)
			}
		}
	}
	if len(root.children) == 0 {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// walk visits n and its descendants in document order.
func walk(n *node, visit func(*node)) {
	visit(n)
	for _, c := range n.children {
		walk(c, visit)
	}
}

// descendants returns elements below n whose name is one of names, in
// document order, without descending into matches.
func descendants(n *node, names ...string) []*node {
	var out []*node
	for _, c := range n.children {
		matched := false
		for _, name := range names {
			if strings.EqualFold(c.name, name) {
				matched = true
				break
			}
		}
		if matched {
			out = append(out, c)
			continue
		}
		out = append(out, descendants(c, names...)...)
	}
	return out
}
