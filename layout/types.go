package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。所有坐标与尺寸单位均为像素。

// Result 保存一次转换的画布几何：画布尺寸、段落与表格的位置。
type Result struct {
	Profile    string     `json:"profile"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`     // 预分配高度（已受 MaxCanvasHeight 限制）
	UsedHeight int        `json:"usedHeight"` // 裁剪后的高度
	Margin     int        `json:"margin"`
	Background Color      `json:"background"`
	Texts      []TextBox  `json:"texts"`
	Tables     []TableBox `json:"tables"`
	// Omitted 记录因高度上限而未放置的表格数量。
	Omitted      int `json:"omitted,omitempty"`
	OmittedLines int `json:"omittedLines,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// TextBox 表示一个已经排好坐标的段落。
type TextBox struct {
	Content    string     `json:"content"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Width      int        `json:"width"`
	LineHeight int        `json:"lineHeight"`
	FontSize   float64    `json:"fontSize"`
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Height     int        `json:"height"`
}

// TextLine 表示排版后的一行文本，X/Y 为行顶部左上角。
type TextLine struct {
	Content string  `json:"content"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   float64 `json:"width"`
}

// TableBox 保存表格的位置、列宽/行高计划与单元格文本。
type TableBox struct {
	X           int             `json:"x"`
	Y           int             `json:"y"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Columns     ColumnWidthPlan `json:"columns"`
	Rows        RowHeightPlan   `json:"rows"`
	Cells       []TableCell     `json:"cells"`
	FontSize    float64         `json:"fontSize"`
	TextColor   Color           `json:"textColor"`
	BorderColor Color           `json:"borderColor"`
	BorderWidth float64         `json:"borderWidth"`
}

// TableCell 记录一个非空单元格的区域与截断后的行。
type TableCell struct {
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Lines  []TextLine `json:"lines"`
	// Dropped 是超过每格行数上限而被丢弃的行数。
	Dropped int `json:"dropped,omitempty"`
}

// ColumnWidthPlan 是每一列的像素宽度。
type ColumnWidthPlan []int

// RowHeightPlan 是每一行的像素高度。
type RowHeightPlan []int

// Sum returns the total width.
func (p ColumnWidthPlan) Sum() int { return sumInts(p) }

// Sum returns the total height.
func (p RowHeightPlan) Sum() int { return sumInts(p) }

// Offsets returns the left edge of every column relative to the table origin.
func (p ColumnWidthPlan) Offsets() []int { return offsets(p) }

// Offsets returns the top edge of every row relative to the table origin.
func (p RowHeightPlan) Offsets() []int { return offsets(p) }

func sumInts(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func offsets(xs []int) []int {
	out := make([]int, len(xs))
	acc := 0
	for i, x := range xs {
		out[i] = acc
		acc += x
	}
	return out
}
