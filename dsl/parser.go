// Package dsl parses hand-written .docshot documents:
//
//	doc Schedule v1 {
//	  paragraph "Группа ${group}"
//	  table {
//	    row { "День" "Пара" }
//	    each lessons { "${day}" "${time}" }
//	  }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		// 路径形式的标识符（data.items[0]）作为一个 token
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*(?:\.[A-Za-z_][A-Za-z0-9_-]*|\[\d+\])*`},
		{Name: "Symbol", Pattern: `[,;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a .docshot file.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'doc' @Ident"`
	Version string         `parser:"@Ident"`
	Blocks  []*Block       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Block is one top-level statement.
type Block struct {
	Paragraph *ParagraphStmt `parser:"  @@"`
	Table     *TableStmt     `parser:"| @@"`
}

// Kind returns the human-readable block type.
func (b *Block) Kind() string {
	switch {
	case b == nil:
		return "unknown"
	case b.Paragraph != nil:
		return "paragraph"
	case b.Table != nil:
		return "table"
	default:
		return "unknown"
	}
}

// ParagraphStmt 一段正文，可以包含 ${path} 占位符。
type ParagraphStmt struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Text StringLiteral  `parser:"'paragraph' @String"`
}

// TableStmt 由 row 和 each 组成。
type TableStmt struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Rows []*RowStmt     `parser:"'table' Newline* '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// RowStmt is either a literal row or a data-driven row template.
type RowStmt struct {
	Row  *Row  `parser:"  @@"`
	Each *Each `parser:"| @@"`
}

// Row lists cell literals; commas between cells are optional.
type Row struct {
	Pos   lexer.Position  `parser:"" json:"-"`
	Cells []StringLiteral `parser:"'row' '{' Newline* ( @String ( ',' | Newline )* )* '}'"`
}

// Each repeats its cell templates once per element of the array at Path.
// Placeholders inside the cells resolve against the element.
type Each struct {
	Pos   lexer.Position  `parser:"" json:"-"`
	Path  string          `parser:"'each' @Ident"`
	Cells []StringLiteral `parser:"'{' Newline* ( @String ( ',' | Newline )* )* '}'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
