package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ByLCY/docshot/document"
)

const docxMainPart = "word/document.xml"

// paragraphXML is a <w:p>. Its children are kept in order so text inside
// hyperlinks and tracked insertions stays where it was written.
type paragraphXML struct {
	Children []paragraphChildXML `xml:",any"`
}

// paragraphChildXML is either a run (Content holds its t/tab/br children) or
// a run container such as hyperlink, ins or smartTag (Runs holds its runs).
type paragraphChildXML struct {
	XMLName xml.Name
	Content []runChildXML `xml:",any"`
	Runs    []runXML      `xml:"r"`
}

// runXML keeps the run's children in order so tabs and breaks land between
// the right pieces of text.
type runXML struct {
	Content []runChildXML `xml:",any"`
}

type runChildXML struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

type tableXML struct {
	Rows []rowXML `xml:"tr"`
}

type rowXML struct {
	Cells []cellXML `xml:"tc"`
}

type cellXML struct {
	Props      cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
}

type cellPropsXML struct {
	GridSpan *valXML `xml:"gridSpan"`
	VMerge   *valXML `xml:"vMerge"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

// DOCX extracts top-level body paragraphs and tables, in document order,
// from a word-processor archive.
//
// Table cells are reported per grid column: a cell spanning n columns
// (gridSpan) is repeated n times and a vertically merged continuation cell
// (vMerge without "restart") repeats the text of the cell above. A cell's
// paragraphs are joined with newlines.
func DOCX(r io.ReaderAt, size int64) (document.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return document.Document{}, fmt.Errorf("opening ZIP archive: %w", err)
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxMainPart {
			part = f
			break
		}
	}
	if part == nil {
		return document.Document{}, fmt.Errorf("missing required file: %s", docxMainPart)
	}
	rc, err := part.Open()
	if err != nil {
		return document.Document{}, fmt.Errorf("opening %s: %w", docxMainPart, err)
	}
	defer rc.Close()

	doc, err := parseBody(xml.NewDecoder(rc))
	if err != nil {
		return document.Document{}, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// parseBody streams document.xml and decodes each direct child of <w:body>,
// which keeps paragraphs and tables in their original order.
func parseBody(dec *xml.Decoder) (document.Document, error) {
	var doc document.Document
	depth, bodyDepth := 0, -1
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return doc, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if bodyDepth < 0 {
				if t.Name.Local == "body" {
					bodyDepth = depth
				}
				continue
			}
			if depth != bodyDepth+1 {
				continue
			}
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := dec.DecodeElement(&p, &t); err != nil {
					return doc, err
				}
				doc.Add(document.Paragraph{Text: p.text()})
			case "tbl":
				var tbl tableXML
				if err := dec.DecodeElement(&tbl, &t); err != nil {
					return doc, err
				}
				doc.Add(tbl.table())
			default:
				if err := dec.Skip(); err != nil {
					return doc, err
				}
			}
			// DecodeElement and Skip consume the end element.
			depth--
		case xml.EndElement:
			if depth == bodyDepth {
				bodyDepth = -2
			}
			depth--
		}
		if bodyDepth == -2 {
			break
		}
	}
	return doc, nil
}

func (p paragraphXML) text() string {
	var sb strings.Builder
	for _, c := range p.Children {
		switch c.XMLName.Local {
		case "r":
			runXML{Content: c.Content}.writeTo(&sb)
		case "hyperlink", "ins", "smartTag", "fldSimple":
			for _, r := range c.Runs {
				r.writeTo(&sb)
			}
		}
	}
	return cleanText(sb.String())
}

func (r runXML) writeTo(sb *strings.Builder) {
	for _, c := range r.Content {
		switch c.XMLName.Local {
		case "t":
			sb.WriteString(c.Text)
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "noBreakHyphen":
			sb.WriteByte('-')
		}
	}
}

func (t tableXML) table() document.Table {
	var (
		out   document.Table
		above []string // text per grid column of the previous row
	)
	for _, row := range t.Rows {
		var cells document.Row
		for _, c := range row.Cells {
			text := c.text()
			col := len(cells)
			if c.Props.VMerge != nil && c.Props.VMerge.Val != "restart" && col < len(above) {
				text = above[col]
			}
			for i := 0; i < c.span(); i++ {
				cells = append(cells, text)
			}
		}
		above = cells
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func (c cellXML) text() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.text()
	}
	return strings.Join(parts, "\n")
}

func (c cellXML) span() int {
	if c.Props.GridSpan == nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(c.Props.GridSpan.Val))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
