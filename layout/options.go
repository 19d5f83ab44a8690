package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Measurer 返回文本在某一字号下的像素宽高。实现必须总能给出结果（必要时退化为估算）。
type Measurer interface {
	Measure(text string) (width, height float64)
}

// BuildOptions 配置布局阶段所需的依赖：段落与表格各自的测量字体。
type BuildOptions struct {
	ParagraphFont Measurer
	TableFont     Measurer
}

// Profile 是一组布局常量。general 与 compact 两套配置共用同一个引擎。
type Profile struct {
	Name string `json:"name" yaml:"name"`

	MaxCanvasWidth     int `json:"maxCanvasWidth" yaml:"max_canvas_width"`
	MaxCanvasHeight    int `json:"maxCanvasHeight" yaml:"max_canvas_height"`
	DefaultCanvasWidth int `json:"defaultCanvasWidth" yaml:"default_canvas_width"`
	Margin             int `json:"margin" yaml:"margin"`

	// Paragraphs 为 false 时不渲染任何段落。
	Paragraphs          bool    `json:"paragraphs" yaml:"paragraphs"`
	ParagraphFontSize   float64 `json:"paragraphFontSize" yaml:"paragraph_font_size"`
	ParagraphLineHeight int     `json:"paragraphLineHeight" yaml:"paragraph_line_height"`

	TableFontSize   float64 `json:"tableFontSize" yaml:"table_font_size"`
	ColumnCap       int     `json:"columnCap" yaml:"column_cap"`
	CellPadding     int     `json:"cellPadding" yaml:"cell_padding"`
	ColumnFloor     int     `json:"columnFloor" yaml:"column_floor"`
	CellInnerMargin int     `json:"cellInnerMargin" yaml:"cell_inner_margin"`
	LinePitch       int     `json:"linePitch" yaml:"line_pitch"`
	RowPadding      int     `json:"rowPadding" yaml:"row_padding"`
	CellLineCap     int     `json:"cellLineCap" yaml:"cell_line_cap"`
	TableSpacing    int     `json:"tableSpacing" yaml:"table_spacing"`
	// TextOffsetX/Y 是单元格文字相对单元格左上角的偏移。
	TextOffsetX int `json:"textOffsetX" yaml:"text_offset_x"`
	TextOffsetY int `json:"textOffsetY" yaml:"text_offset_y"`

	// 表格清理与单元格时间压缩，由 filter 使用。
	MinTableRows int  `json:"minTableRows" yaml:"min_table_rows"`
	CompactCells bool `json:"compactCells" yaml:"compact_cells"`

	TextColor   Color   `json:"textColor" yaml:"-"`
	BorderColor Color   `json:"borderColor" yaml:"-"`
	Background  Color   `json:"background" yaml:"-"`
	BorderWidth float64 `json:"borderWidth" yaml:"border_width"`
}

// General is the profile for word-processor documents: paragraphs plus
// richly formatted tables on a canvas up to 1200px wide.
func General() Profile {
	return Profile{
		Name:                "general",
		MaxCanvasWidth:      1200,
		MaxCanvasHeight:     12000,
		DefaultCanvasWidth:  600,
		Margin:              35,
		Paragraphs:          true,
		ParagraphFontSize:   14,
		ParagraphLineHeight: 30,
		TableFontSize:       10,
		ColumnCap:           200,
		CellPadding:         20,
		ColumnFloor:         60,
		CellInnerMargin:     4,
		LinePitch:           12,
		RowPadding:          6,
		CellLineCap:         5,
		TableSpacing:        25,
		TextOffsetX:         2,
		TextOffsetY:         3,
		MinTableRows:        2,
		TextColor:           Black,
		BorderColor:         Black,
		Background:          White,
		BorderWidth:         1,
	}
}

// Compact is the profile for pure tabular exports: no paragraphs, narrow
// columns and at most two lines per cell.
func Compact() Profile {
	return Profile{
		Name:               "compact",
		MaxCanvasWidth:     1600,
		MaxCanvasHeight:    16000,
		DefaultCanvasWidth: 1600,
		Margin:             10,
		Paragraphs:         false,
		ParagraphFontSize:  10,
		TableFontSize:      10,
		ColumnCap:          150,
		CellPadding:        10,
		ColumnFloor:        40,
		CellInnerMargin:    4,
		LinePitch:          11,
		RowPadding:         6,
		CellLineCap:        2,
		TableSpacing:       20,
		TextOffsetX:        2,
		TextOffsetY:        3,
		MinTableRows:       1,
		CompactCells:       true,
		TextColor:          Black,
		BorderColor:        Black,
		Background:         White,
		BorderWidth:        1,
	}
}

// ErrUnknownProfile 表示无法识别的配置名称。
var ErrUnknownProfile = errors.New("unknown profile")

// ProfileByName returns General or Compact by (case-insensitive) name.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "general", "docx", "":
		return General(), nil
	case "compact", "xml":
		return Compact(), nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// Validate 检查常量是否可用于布局。
func (p Profile) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s 必须大于 0（当前 %d）", name, v))
		}
	}
	nonNegative := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s 不能为负数（当前 %d）", name, v))
		}
	}
	positive("maxCanvasWidth", p.MaxCanvasWidth)
	positive("maxCanvasHeight", p.MaxCanvasHeight)
	positive("defaultCanvasWidth", p.DefaultCanvasWidth)
	positive("columnCap", p.ColumnCap)
	positive("linePitch", p.LinePitch)
	positive("cellLineCap", p.CellLineCap)
	nonNegative("margin", p.Margin)
	nonNegative("cellPadding", p.CellPadding)
	nonNegative("columnFloor", p.ColumnFloor)
	nonNegative("cellInnerMargin", p.CellInnerMargin)
	nonNegative("rowPadding", p.RowPadding)
	nonNegative("tableSpacing", p.TableSpacing)
	nonNegative("minTableRows", p.MinTableRows)
	if p.TableFontSize <= 0 {
		errs = append(errs, fmt.Errorf("tableFontSize 必须大于 0（当前 %g）", p.TableFontSize))
	}
	if p.Paragraphs {
		positive("paragraphLineHeight", p.ParagraphLineHeight)
		if p.ParagraphFontSize <= 0 {
			errs = append(errs, fmt.Errorf("paragraphFontSize 必须大于 0（当前 %g）", p.ParagraphFontSize))
		}
	}
	if p.DefaultCanvasWidth > p.MaxCanvasWidth {
		errs = append(errs, fmt.Errorf("defaultCanvasWidth %d 超过 maxCanvasWidth %d", p.DefaultCanvasWidth, p.MaxCanvasWidth))
	}
	if 2*p.Margin >= p.MaxCanvasWidth || 2*p.Margin >= p.DefaultCanvasWidth {
		errs = append(errs, fmt.Errorf("margin %d 超过画布宽度", p.Margin))
	}
	if 2*p.Margin >= p.MaxCanvasHeight {
		errs = append(errs, fmt.Errorf("margin %d 超过画布高度上限", p.Margin))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}
