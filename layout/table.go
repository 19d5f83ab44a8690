package layout

import "github.com/ByLCY/docshot/document"

// NaturalColumnWidths 计算每列的自然宽度：该列所有单元格中最宽单词的宽度（向上取整）加上
// padding，再以 columnCap 为上限。参差行中缺失的单元格按空串处理。
func NaturalColumnWidths(t document.Table, m Measurer, padding, columnCap int) ColumnWidthPlan {
	cols := t.Columns()
	plan := make(ColumnWidthPlan, cols)
	for _, row := range t.Rows {
		for i := 0; i < cols; i++ {
			w := ceilPx(MaxWordWidth(row.Cell(i), m)) + padding
			if w > columnCap {
				w = columnCap
			}
			if w > plan[i] {
				plan[i] = w
			}
		}
	}
	return plan
}

// FitColumns 将列宽收进 available：超出时先把每列抬到 floor，仍超出则按
// available/sum 等比缩放并截断为整数。顺序固定为先 floor 后缩放。
// 返回新切片，不修改 widths。
func FitColumns(widths ColumnWidthPlan, available, floor int) ColumnWidthPlan {
	plan := make(ColumnWidthPlan, len(widths))
	copy(plan, widths)
	if available <= 0 {
		for i := range plan {
			plan[i] = 0
		}
		return plan
	}
	if plan.Sum() <= available {
		return plan
	}
	for i := range plan {
		if plan[i] < floor {
			plan[i] = floor
		}
	}
	sum := plan.Sum()
	if sum <= available {
		return plan
	}
	// w*available/sum 的整数除法即截断后的缩放结果，避免浮点误差。
	for i := range plan {
		plan[i] = int(int64(plan[i]) * int64(available) / int64(sum))
	}
	return plan
}

// PlanColumns is NaturalColumnWidths followed by FitColumns with the profile's constants.
func PlanColumns(t document.Table, m Measurer, p Profile, available int) ColumnWidthPlan {
	return FitColumns(NaturalColumnWidths(t, m, p.CellPadding, p.ColumnCap), available, p.ColumnFloor)
}

// CellLines wraps one cell against its column width minus innerMargin.
func CellLines(cell string, m Measurer, colWidth, innerMargin int) []string {
	return Wrap(cell, m, float64(colWidth-innerMargin))
}

// RowLineCount 返回一行中各单元格折行后的最大行数，至少为 1。
func RowLineCount(row document.Row, m Measurer, cols ColumnWidthPlan, innerMargin int) int {
	n := 1
	for i, w := range cols {
		if c := len(CellLines(row.Cell(i), m, w, innerMargin)); c > n {
			n = c
		}
	}
	return n
}

// PlanRows 计算每行高度：最大折行数 × linePitch + rowPadding。行高不受每格行数上限影响。
func PlanRows(t document.Table, m Measurer, cols ColumnWidthPlan, innerMargin, linePitch, rowPadding int) RowHeightPlan {
	plan := make(RowHeightPlan, len(t.Rows))
	for r, row := range t.Rows {
		plan[r] = RowLineCount(row, m, cols, innerMargin)*linePitch + rowPadding
	}
	return plan
}
