// Package document holds the structured form of a source document: an ordered
// list of paragraphs and tables, already stripped of the container format.
package document

import "strings"

// Block 是文档中的一个单元，只能是 Paragraph 或 Table。
type Block interface {
	block()
}

// Paragraph 是一段正文。
type Paragraph struct {
	Text string `json:"text"`
}

// Table 是按行组织的表格，行与行之间的单元格数量可以不同。
type Table struct {
	Rows []Row `json:"rows"`
}

// Row 是按列顺序排列的单元格文本。
type Row []string

func (Paragraph) block() {}
func (Table) block()     {}

// Document 是一次转换请求的输入，按出现顺序保存所有块。
type Document struct {
	Name   string  `json:"name,omitempty"`
	Blocks []Block `json:"-"`
}

// Add appends blocks in order and returns the document for chaining.
func (d *Document) Add(blocks ...Block) *Document {
	d.Blocks = append(d.Blocks, blocks...)
	return d
}

// Paragraphs returns the paragraphs in document order.
func (d Document) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, b := range d.Blocks {
		if p, ok := b.(Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the tables in document order.
func (d Document) Tables() []Table {
	var out []Table
	for _, b := range d.Blocks {
		if t, ok := b.(Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Empty reports whether the document has neither paragraphs nor tables.
func (d Document) Empty() bool {
	return len(d.Blocks) == 0
}

// Columns returns the widest row's cell count.
func (t Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Cell 返回第 i 列的文本，越界（参差行）时返回空串。
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Blank reports whether every cell of the row is whitespace.
func (r Row) Blank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
