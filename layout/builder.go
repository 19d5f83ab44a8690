package layout

import (
	"errors"
	"fmt"

	"github.com/ByLCY/docshot/document"
)

// ErrNoFont 表示 BuildOptions 缺少测量字体。
var ErrNoFont = errors.New("layout: 缺少测量字体")

// Build 根据已过滤的文档与 profile 计算画布尺寸并放置段落和表格。
//
// 画布宽度：存在表格时为 min(最宽表格的自然宽度 + 2×margin, MaxCanvasWidth)，否则为
// DefaultCanvasWidth。高度为 2×margin + 段落行数×行高 + Σ(表格高度 + 表格间距)，
// 不超过 MaxCanvasHeight。段落先于表格绘制，表格水平居中。
func Build(doc document.Document, p Profile, opts BuildOptions) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if opts.TableFont == nil || (p.Paragraphs && opts.ParagraphFont == nil) {
		return nil, ErrNoFont
	}

	var (
		paragraphs []document.Paragraph
		tables     []document.Table
	)
	for _, b := range doc.Blocks {
		switch b := b.(type) {
		case document.Paragraph:
			if p.Paragraphs {
				paragraphs = append(paragraphs, b)
			}
		case document.Table:
			if len(b.Rows) > 0 && b.Columns() > 0 {
				tables = append(tables, b)
			}
		default:
			return nil, fmt.Errorf("layout: 未知的块类型 %T", b)
		}
	}

	natural := make([]ColumnWidthPlan, len(tables))
	widest := 0
	for i, t := range tables {
		natural[i] = NaturalColumnWidths(t, opts.TableFont, p.CellPadding, p.ColumnCap)
		if s := natural[i].Sum(); s > widest {
			widest = s
		}
	}

	width := p.DefaultCanvasWidth
	if len(tables) > 0 {
		width = min(widest+2*p.Margin, p.MaxCanvasWidth)
	}
	avail := width - 2*p.Margin

	res := &Result{
		Profile:    p.Name,
		Width:      width,
		Margin:     p.Margin,
		Background: p.Background,
	}

	// 先折行并规划全部表格，得到预分配高度。
	wrapped := make([][]string, len(paragraphs))
	height := 2 * p.Margin
	for i, para := range paragraphs {
		wrapped[i] = Wrap(para.Text, opts.ParagraphFont, float64(avail))
		height += len(wrapped[i]) * p.ParagraphLineHeight
	}
	boxes := make([]TableBox, len(tables))
	for i, t := range tables {
		cols := FitColumns(natural[i], avail, p.ColumnFloor)
		rows := PlanRows(t, opts.TableFont, cols, p.CellInnerMargin, p.LinePitch, p.RowPadding)
		boxes[i] = TableBox{
			Width:       cols.Sum(),
			Height:      rows.Sum(),
			Columns:     cols,
			Rows:        rows,
			FontSize:    p.TableFontSize,
			TextColor:   p.TextColor,
			BorderColor: p.BorderColor,
			BorderWidth: p.BorderWidth,
		}
		height += boxes[i].Height + p.TableSpacing
	}
	res.Height = min(height, p.MaxCanvasHeight)

	// 内容底线：超过该位置的行或表格不再放置。
	limit := res.Height - p.Margin
	y := p.Margin
	for i, para := range paragraphs {
		box := TextBox{
			Content:    para.Text,
			X:          p.Margin,
			Y:          y,
			Width:      avail,
			LineHeight: p.ParagraphLineHeight,
			FontSize:   p.ParagraphFontSize,
			Color:      p.TextColor,
		}
		for _, line := range wrapped[i] {
			if y+p.ParagraphLineHeight > limit {
				res.OmittedLines++
				continue
			}
			w, _ := opts.ParagraphFont.Measure(line)
			box.Lines = append(box.Lines, TextLine{Content: line, X: p.Margin, Y: y, Width: w})
			y += p.ParagraphLineHeight
		}
		if len(box.Lines) == 0 {
			continue
		}
		box.Height = y - box.Y
		res.Texts = append(res.Texts, box)
	}

	for i, t := range tables {
		if y+p.TableSpacing >= limit {
			res.Omitted = len(tables) - i
			break
		}
		y += p.TableSpacing
		box := boxes[i]
		box.X = p.Margin + (avail-box.Width)/2
		box.Y = y
		box.Cells = placeCells(t, box, opts.TableFont, p)
		res.Tables = append(res.Tables, box)
		y += box.Height
	}

	res.UsedHeight = max(min(y+p.Margin, res.Height), 2*p.Margin)
	return res, nil
}

// placeCells 为每个非空单元格计算折行结果，超出 CellLineCap 的行被静默丢弃。
func placeCells(t document.Table, box TableBox, m Measurer, p Profile) []TableCell {
	colX := box.Columns.Offsets()
	rowY := box.Rows.Offsets()
	var cells []TableCell
	for r, row := range t.Rows {
		for c, w := range box.Columns {
			lines := CellLines(row.Cell(c), m, w, p.CellInnerMargin)
			if len(lines) == 0 {
				continue
			}
			cell := TableCell{
				Row:    r,
				Col:    c,
				X:      box.X + colX[c],
				Y:      box.Y + rowY[r],
				Width:  w,
				Height: box.Rows[r],
			}
			if len(lines) > p.CellLineCap {
				cell.Dropped = len(lines) - p.CellLineCap
				lines = lines[:p.CellLineCap]
			}
			for i, line := range lines {
				lw, _ := m.Measure(line)
				cell.Lines = append(cell.Lines, TextLine{
					Content: line,
					X:       cell.X + p.TextOffsetX,
					Y:       cell.Y + p.TextOffsetY + i*p.LinePitch,
					Width:   lw,
				})
			}
			cells = append(cells, cell)
		}
	}
	return cells
}
