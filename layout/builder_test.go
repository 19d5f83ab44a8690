package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/ByLCY/docshot/document"
)

func stubOptions() BuildOptions {
	return BuildOptions{ParagraphFont: runeMeasurer{6}, TableFont: runeMeasurer{6}}
}

func buildDoc(t *testing.T, p Profile, blocks ...document.Block) *Result {
	t.Helper()
	var doc document.Document
	doc.Add(blocks...)
	res, err := Build(doc, p, stubOptions())
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

var scheduleTable = document.Table{Rows: []document.Row{{"Пара", "Аудитория"}, {"1", "101"}}}

func TestCanvasWidthFollowsWidestTable(t *testing.T) {
	res := buildDoc(t, General(), scheduleTable)
	// 列宽 [44,74]，画布宽 = 118 + 2×35。
	if res.Width != 188 {
		t.Fatalf("画布宽度错误: got=%d want=188", res.Width)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("应放置 1 个表格，实际 %d", len(res.Tables))
	}
	tb := res.Tables[0]
	if tb.X != 35 || tb.Y != 60 || tb.Width != 118 || tb.Height != 36 {
		t.Fatalf("表格位置错误: %+v", tb)
	}
	if res.Height != 131 || res.UsedHeight != 131 {
		t.Fatalf("画布高度错误: height=%d used=%d", res.Height, res.UsedHeight)
	}
}

func TestCanvasWidthCapped(t *testing.T) {
	wide := make(document.Row, 12)
	for i := range wide {
		wide[i] = "columnheadertext"
	}
	res := buildDoc(t, General(), document.Table{Rows: []document.Row{wide, wide}})
	if res.Width != 1200 {
		t.Fatalf("画布宽度应封顶 1200，实际 %d", res.Width)
	}
	if got := res.Tables[0].Columns.Sum(); got > res.Width-2*res.Margin {
		t.Fatalf("表格宽度 %d 超出可用宽度", got)
	}
}

func TestParagraphsFirstThenTables(t *testing.T) {
	res := buildDoc(t, General(), scheduleTable, document.Paragraph{Text: "Hello world"})
	if len(res.Texts) != 1 || len(res.Texts[0].Lines) != 1 {
		t.Fatalf("段落排版错误: %+v", res.Texts)
	}
	if y := res.Texts[0].Lines[0].Y; y != 35 {
		t.Fatalf("段落应位于顶部边距处: y=%d", y)
	}
	if y := res.Tables[0].Y; y != 90 {
		t.Fatalf("表格应位于段落之后: y=%d", y)
	}
	if res.Height != 161 || res.UsedHeight != 161 {
		t.Fatalf("画布高度错误: height=%d used=%d", res.Height, res.UsedHeight)
	}
}

func TestDefaultWidthWithoutTables(t *testing.T) {
	res := buildDoc(t, General(), document.Paragraph{Text: "только текст"})
	if res.Width != 600 {
		t.Fatalf("无表格时应使用默认宽度 600，实际 %d", res.Width)
	}
}

func TestTablesCentered(t *testing.T) {
	narrow := document.Table{Rows: []document.Row{{"a"}, {"b"}}}
	res := buildDoc(t, General(), scheduleTable, narrow)
	avail := res.Width - 2*res.Margin
	for _, tb := range res.Tables {
		if want := res.Margin + (avail-tb.Width)/2; tb.X != want {
			t.Fatalf("表格未居中: x=%d want=%d", tb.X, want)
		}
	}
}

func TestCompactSkipsParagraphsAndCapsCellLines(t *testing.T) {
	res := buildDoc(t, Compact(),
		document.Paragraph{Text: "ignored"},
		document.Table{Rows: []document.Row{{"aa bb cc dd ee"}}},
	)
	if len(res.Texts) != 0 {
		t.Fatalf("compact 配置不应渲染段落")
	}
	tb := res.Tables[0]
	if tb.Rows[0] != 5*11+6 {
		t.Fatalf("行高应按全部折行计算: %d", tb.Rows[0])
	}
	if len(tb.Cells) != 1 {
		t.Fatalf("单元格数量错误: %d", len(tb.Cells))
	}
	cell := tb.Cells[0]
	if len(cell.Lines) != 2 || cell.Dropped != 3 {
		t.Fatalf("每格行数上限未生效: lines=%d dropped=%d", len(cell.Lines), cell.Dropped)
	}
	if cell.Lines[0].Content != "aa" || cell.Lines[1].Content != "bb" {
		t.Fatalf("保留的行错误: %+v", cell.Lines)
	}
	if cell.Lines[1].Y-cell.Lines[0].Y != 11 {
		t.Fatalf("行距错误: %+v", cell.Lines)
	}
}

func TestHeightCeilingOmitsTables(t *testing.T) {
	p := General()
	p.MaxCanvasHeight = 100
	res := buildDoc(t, p, scheduleTable, scheduleTable, scheduleTable)
	if res.Height != 100 {
		t.Fatalf("预分配高度应被限制为 100，实际 %d", res.Height)
	}
	if len(res.Tables) != 1 || res.Omitted != 2 {
		t.Fatalf("应放置 1 个表格并省略 2 个: placed=%d omitted=%d", len(res.Tables), res.Omitted)
	}
	if res.UsedHeight > res.Height {
		t.Fatalf("裁剪高度 %d 超过预分配高度 %d", res.UsedHeight, res.Height)
	}
}

func TestEmptyDocumentKeepsMargins(t *testing.T) {
	res := buildDoc(t, General())
	if res.UsedHeight != 70 {
		t.Fatalf("空文档高度应为上下边距之和: %d", res.UsedHeight)
	}
}

// TestUsedHeightBounds 对随机文档断言 2×margin ≤ UsedHeight ≤ Height。
func TestUsedHeightBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 200; iter++ {
		p := General()
		if iter%2 == 1 {
			p = Compact()
		}
		p.MaxCanvasHeight = 2*p.Margin + 1 + rng.Intn(2000)
		var blocks []document.Block
		for b := rng.Intn(6); b > 0; b-- {
			if rng.Intn(2) == 0 {
				blocks = append(blocks, document.Paragraph{Text: randomText(rng, rng.Intn(40))})
				continue
			}
			rows := make([]document.Row, 1+rng.Intn(8))
			for r := range rows {
				row := make(document.Row, rng.Intn(7))
				for c := range row {
					row[c] = randomText(rng, rng.Intn(6))
				}
				rows[r] = row
			}
			blocks = append(blocks, document.Table{Rows: rows})
		}
		res := buildDoc(t, p, blocks...)
		if res.UsedHeight < 2*p.Margin || res.UsedHeight > res.Height {
			t.Fatalf("高度越界: used=%d planned=%d margin=%d", res.UsedHeight, res.Height, p.Margin)
		}
		for _, tb := range res.Tables {
			if tb.Columns.Sum() > res.Width-2*p.Margin {
				t.Fatalf("表格宽度越界: %d > %d", tb.Columns.Sum(), res.Width-2*p.Margin)
			}
			for _, c := range tb.Cells {
				if len(c.Lines) > p.CellLineCap {
					t.Fatalf("单元格行数超过上限: %d", len(c.Lines))
				}
			}
		}
	}
}

func TestBuildRequiresFonts(t *testing.T) {
	_, err := Build(document.Document{}, General(), BuildOptions{TableFont: runeMeasurer{6}})
	if !errors.Is(err, ErrNoFont) {
		t.Fatalf("缺少段落字体应返回 ErrNoFont，实际 %v", err)
	}
	if _, err := Build(document.Document{}, Compact(), BuildOptions{TableFont: runeMeasurer{6}}); err != nil {
		t.Fatalf("compact 不需要段落字体: %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	for _, p := range []Profile{General(), Compact()} {
		if err := p.Validate(); err != nil {
			t.Fatalf("内置配置应合法: %v", err)
		}
	}
	bad := General()
	bad.CellLineCap = 0
	bad.Margin = 700
	if err := bad.Validate(); err == nil {
		t.Fatalf("非法配置应返回错误")
	}
	if _, err := Build(document.Document{}, bad, stubOptions()); err == nil {
		t.Fatalf("Build 应拒绝非法配置")
	}
}

func TestProfileByName(t *testing.T) {
	if p, err := ProfileByName("Compact"); err != nil || p.Name != "compact" {
		t.Fatalf("ProfileByName(Compact) = %v, %v", p.Name, err)
	}
	if _, err := ProfileByName("poster"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("未知配置应返回 ErrUnknownProfile，实际 %v", err)
	}
}

func TestDebugJSON(t *testing.T) {
	res := buildDoc(t, General(), scheduleTable)
	var buf bytes.Buffer
	if err := EncodeDebugJSON(res, &buf); err != nil {
		t.Fatal(err)
	}
	var back Result
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	if back.Width != res.Width || len(back.Tables) != 1 || len(back.Tables[0].Cells) != len(res.Tables[0].Cells) {
		t.Fatalf("调试 JSON 内容不一致")
	}
}
