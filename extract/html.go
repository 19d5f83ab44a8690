package extract

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/ByLCY/docshot/document"
)

// HTML extracts paragraphs (p, headings, list items) and tables from an HTML
// page in document order. contentType may carry a charset parameter; when
// empty the encoding is sniffed from the document itself.
func HTML(r io.Reader, contentType string) (document.Document, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return document.Document{}, fmt.Errorf("detecting charset: %w", err)
	}
	root, err := html.Parse(utf8Reader)
	if err != nil {
		return document.Document{}, fmt.Errorf("parsing HTML: %w", err)
	}
	var doc document.Document
	collectHTML(root, &doc)
	return doc, nil
}

func collectHTML(n *html.Node, doc *document.Document) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template", "head":
			return
		case "table":
			doc.Add(parseHTMLTable(n))
			return
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "caption", "blockquote":
			if !containsTable(n) {
				doc.Add(document.Paragraph{Text: textContent(n)})
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTML(c, doc)
	}
}

// parseHTMLTable reads rows from thead/tbody/tfoot and direct tr children.
// A cell with colspan n is repeated n times. Nested tables stay inside
// their cell's text.
func parseHTMLTable(table *html.Node) document.Table {
	var t document.Table
	var addRows func(section *html.Node)
	addRows = func(section *html.Node) {
		for c := section.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				addRows(c)
			case "tr":
				if row := parseHTMLRow(c); len(row) > 0 {
					t.Rows = append(t.Rows, row)
				}
			}
		}
	}
	addRows(table)
	return t
}

func parseHTMLRow(tr *html.Node) document.Row {
	var row document.Row
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		text := textContent(c)
		for i := 0; i < colspan(c); i++ {
			row = append(row, text)
		}
	}
	return row
}

func colspan(n *html.Node) int {
	for _, a := range n.Attr {
		if a.Key == "colspan" {
			if v, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil && v > 0 {
				return min(v, 1000)
			}
		}
	}
	return 1
}

func containsTable(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "table" || containsTable(c)) {
			return true
		}
	}
	return false
}

// textContent returns the text below n with <br> and block ends as newlines.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "br":
				sb.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteByte('\n')
			}
		}
	}
	rec(n)
	return cleanText(strings.TrimSpace(sb.String()))
}
