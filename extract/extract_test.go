package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ByLCY/docshot/document"
)

// buildDOCX creates a minimal archive whose body is bodyXML.
func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	w, err = zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>` + bodyXML + `<w:sectPr/></w:body>
</w:document>`))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func TestDOCXKeepsBlockOrder(t *testing.T) {
	data := buildDOCX(t, para("УТВЕРЖДАЮ")+`
<w:tbl>
  <w:tr><w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>`+para("после таблицы"))

	doc, err := DOCX(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)

	assert.Equal(t, document.Paragraph{Text: "УТВЕРЖДАЮ"}, doc.Blocks[0])
	assert.Equal(t, document.Table{Rows: []document.Row{{"A", "B"}}}, doc.Blocks[1])
	assert.Equal(t, document.Paragraph{Text: "после таблицы"}, doc.Blocks[2])
}

func TestDOCXRunsTabsBreaksAndHyperlinks(t *testing.T) {
	data := buildDOCX(t, `<w:p>
  <w:r><w:t>Пара</w:t><w:tab/><w:t>1</w:t><w:br/><w:t>ауд.</w:t></w:r>
  <w:hyperlink><w:r><w:t> 101</w:t></w:r></w:hyperlink>
</w:p>`)
	doc, err := DOCX(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs(), 1)
	assert.Equal(t, "Пара\t1\nауд. 101", doc.Paragraphs()[0].Text)
}

func TestDOCXHyperlinkKeepsPosition(t *testing.T) {
	data := buildDOCX(t, `<w:p>
  <w:pPr><w:jc w:val="left"/></w:pPr>
  <w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">see </w:t></w:r>
  <w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink>
  <w:r><w:t xml:space="preserve"> today</w:t></w:r>
  <w:ins><w:r><w:t xml:space="preserve">!</w:t></w:r></w:ins>
  <w:del><w:r><w:delText>removed</w:delText></w:r></w:del>
</w:p>`)
	doc, err := DOCX(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs(), 1)
	assert.Equal(t, "see link today!", doc.Paragraphs()[0].Text)
}

func TestDOCXGridSpanAndVerticalMerge(t *testing.T) {
	data := buildDOCX(t, `<w:tbl>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>Пн</w:t></w:r></w:p></w:tc>
    <w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>Математика</w:t></w:r></w:p><w:p><w:r><w:t>ауд. 5</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
    <w:tc><w:p><w:r><w:t>Физика</w:t></w:r></w:p></w:tc>
    <w:tc><w:p/></w:tc>
  </w:tr>
</w:tbl>`)
	doc, err := DOCX(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	tables := doc.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, []document.Row{
		{"Пн", "Математика\nауд. 5", "Математика\nауд. 5"},
		{"Пн", "Физика", ""},
	}, tables[0].Rows)
}

func TestDOCXMissingMainPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = DOCX(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestDOCXNotAZip(t *testing.T) {
	_, err := DOCX(strings.NewReader("plain text"), 10)
	require.Error(t, err)
}

func TestXMLTables(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8"?>
<export>
  <Table>
    <row><cell>  Группа </cell><cell>Время</cell></row>
    <row><cell>ИС-21</cell><cell>09:00 09:50 10:40</cell></row>
  </Table>
  <table><tr><td><b>жирный</b> текст</td></tr><tr/></table>
  <table></table>
</export>`
	doc, err := XML(strings.NewReader(src))
	require.NoError(t, err)
	tables := doc.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, []document.Row{{"Группа", "Время"}, {"ИС-21", "09:00 09:50 10:40"}}, tables[0].Rows)
	assert.Equal(t, []document.Row{{"жирный текст"}}, tables[1].Rows)
	assert.Empty(t, doc.Paragraphs())
}

func TestXMLDeclaredCharset(t *testing.T) {
	body := `<?xml version="1.0" encoding="windows-1251"?><table><row><cell>Понедельник</cell></row></table>`
	encoded, err := charmap.Windows1251.NewEncoder().String(body)
	require.NoError(t, err)

	doc, err := XML(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, doc.Tables(), 1)
	assert.Equal(t, "Понедельник", doc.Tables()[0].Rows[0][0])
}

func TestXMLEmptyInput(t *testing.T) {
	_, err := XML(strings.NewReader("   "))
	require.Error(t, err)
}

func TestHTMLParagraphsAndTables(t *testing.T) {
	src := `<!DOCTYPE html><html><head><title>skip</title><style>p{}</style></head><body>
<h1>Расписание</h1>
<p>Пара: 09:00<br>11:25</p>
<script>var x = 1;</script>
<table>
  <thead><tr><th colspan="2">День</th></tr></thead>
  <tbody><tr><td>Пн</td><td>Физика</td></tr></tbody>
</table>
<ul><li>пункт</li></ul>
</body></html>`
	doc, err := HTML(strings.NewReader(src), "text/html; charset=utf-8")
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 4)
	assert.Equal(t, document.Paragraph{Text: "Расписание"}, doc.Blocks[0])
	assert.Equal(t, document.Paragraph{Text: "Пара: 09:00\n11:25"}, doc.Blocks[1])
	assert.Equal(t, document.Table{Rows: []document.Row{{"День", "День"}, {"Пн", "Физика"}}}, doc.Blocks[2])
	assert.Equal(t, document.Paragraph{Text: "пункт"}, doc.Blocks[3])
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "\u0439", cleanText("\u0438\u0306"))
	assert.Equal(t, "a b", cleanText("a\u00a0b\u200b"))
	assert.Equal(t, "a\nb", cleanText("a\nb"))
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		head string
		want Format
	}{
		{"a.DOCX", "", FormatDOCX},
		{"a.xml", "", FormatXML},
		{"a.htm", "", FormatHTML},
		{"upload", "PK\x03\x04rest", FormatDOCX},
		{"upload", "  <!DOCTYPE html><html>", FormatHTML},
		{"upload", "<?xml version=\"1.0\"?>", FormatXML},
	}
	for _, c := range cases {
		got, err := DetectFormat(c.name, []byte(c.head))
		require.NoError(t, err, c.name)
		assert.Equal(t, c.want, got, c.name)
	}
	_, err := DetectFormat("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileSetsName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<table><row><cell>x</cell></row></table>`), 0o644))

	doc, format, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, FormatXML, format)
	assert.Equal(t, "schedule.xml", doc.Name)
	assert.Len(t, doc.Tables(), 1)
}
