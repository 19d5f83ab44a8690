package dsl

import (
	"fmt"

	"github.com/ByLCY/docshot/binding"
	"github.com/ByLCY/docshot/document"
)

// ToDocument evaluates the AST against data and returns the structured
// document. Placeholders that do not resolve stay as written; an each whose
// path is not an array is an error.
func ToDocument(doc *Document, data any) (document.Document, error) {
	var out document.Document
	if doc == nil {
		return out, nil
	}
	out.Name = doc.Name
	for _, b := range doc.Blocks {
		switch {
		case b.Paragraph != nil:
			out.Add(document.Paragraph{Text: binding.Interpolate(string(b.Paragraph.Text), data)})
		case b.Table != nil:
			t, err := buildTable(b.Table, data)
			if err != nil {
				return document.Document{}, err
			}
			out.Add(t)
		}
	}
	return out, nil
}

func buildTable(stmt *TableStmt, data any) (document.Table, error) {
	var t document.Table
	for _, rs := range stmt.Rows {
		switch {
		case rs.Row != nil:
			t.Rows = append(t.Rows, interpolateCells(rs.Row.Cells, data))
		case rs.Each != nil:
			val, ok := binding.Resolve(data, rs.Each.Path)
			if !ok {
				return t, fmt.Errorf("%s: each %s: path not found", rs.Each.Pos, rs.Each.Path)
			}
			items, ok := val.([]any)
			if !ok {
				return t, fmt.Errorf("%s: each %s: not an array", rs.Each.Pos, rs.Each.Path)
			}
			for _, item := range items {
				t.Rows = append(t.Rows, interpolateCells(rs.Each.Cells, item))
			}
		}
	}
	return t, nil
}

func interpolateCells(cells []StringLiteral, data any) document.Row {
	row := make(document.Row, len(cells))
	for i, c := range cells {
		row[i] = binding.Interpolate(string(c), data)
	}
	return row
}
