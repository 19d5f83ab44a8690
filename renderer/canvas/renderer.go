package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/docshot/fonts"
	"github.com/ByLCY/docshot/layout"
	"github.com/ByLCY/docshot/renderer"
)

// 1px 线宽落在像素中心，避免抗锯齿把线条摊到两个像素上。
const pixelCenter = 0.5

// renderMu 串行化 canvas 的绘制与光栅化：tdewolff/canvas 在描边时
// (bentleyOttmann) 写包级变量，并发调用会产生数据竞争。布局仍可并行。
var renderMu sync.Mutex

// Renderer draws layout results via github.com/tdewolff/canvas. One canvas
// unit (mm) is one output pixel.
//
// A Renderer belongs to one conversion: it caches faces per size in a plain
// map and is not safe for concurrent use.
type Renderer struct {
	family *fonts.Family
	faces  map[faceKey]*fonts.Font
}

type faceKey struct {
	size  float64
	color layout.Color
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ renderer.Rasterizer = (*Renderer)(nil)
)

// New creates a renderer drawing text with family.
func New(family *fonts.Family) *Renderer {
	return &Renderer{family: family, faces: map[faceKey]*fonts.Font{}}
}

// Draw builds a canvas of Width × UsedHeight; anything below the crop line is
// left out of the canvas.
func (r *Renderer) Draw(result *layout.Result) (*canvas.Canvas, error) {
	if result == nil {
		return nil, errors.New("渲染结果为空")
	}
	if result.Width <= 0 || result.UsedHeight <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %dx%d", result.Width, result.UsedHeight)
	}
	w, h := float64(result.Width), float64(result.UsedHeight)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	ctx.SetFillColor(colorFromLayout(result.Background))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	for _, tb := range result.Texts {
		r.drawTextBox(ctx, tb)
	}
	for _, tb := range result.Tables {
		r.drawTable(ctx, tb)
	}
	return c, nil
}

// Rasterize draws result and returns an opaque RGBA image of exactly
// Width × UsedHeight pixels.
func (r *Renderer) Rasterize(result *layout.Result) (*image.RGBA, error) {
	renderMu.Lock()
	defer renderMu.Unlock()
	c, err := r.Draw(result)
	if err != nil {
		return nil, err
	}
	raw := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)

	// 合成到白底并按布局尺寸裁剪，保证输出不含透明像素。
	bounds := image.Rect(0, 0, result.Width, result.UsedHeight)
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(rgba(result.Background)), image.Point{}, draw.Src)
	draw.Draw(out, bounds, raw, raw.Bounds().Min, draw.Over)
	return out, nil
}

// Render renders the result into a single-page PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	renderMu.Lock()
	defer renderMu.Unlock()
	c, err := r.Draw(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, c.W, c.H, nil)
	writer.SetInfo(result.Profile, "", "", "", "docshot")
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) {
	font := r.font(tb.FontSize, tb.Color)
	for _, line := range tb.Lines {
		r.drawLine(ctx, font, line)
	}
}

// drawTable 绘制外框、列分隔线、行分隔线以及单元格文本。
func (r *Renderer) drawTable(ctx *canvas.Context, tb layout.TableBox) {
	x, y := float64(tb.X)+pixelCenter, float64(tb.Y)+pixelCenter
	w, h := float64(tb.Width), float64(tb.Height)

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(colorFromLayout(tb.BorderColor))
	ctx.SetStrokeWidth(tb.BorderWidth)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))

	for i, off := range tb.Columns.Offsets() {
		if i == 0 {
			continue
		}
		ctx.DrawPath(x+float64(off), y, segment(0, h))
	}
	for i, off := range tb.Rows.Offsets() {
		if i == 0 {
			continue
		}
		ctx.DrawPath(x, y+float64(off), segment(w, 0))
	}

	font := r.font(tb.FontSize, tb.TextColor)
	for _, cell := range tb.Cells {
		for _, line := range cell.Lines {
			r.drawLine(ctx, font, line)
		}
	}
}

func (r *Renderer) drawLine(ctx *canvas.Context, font *fonts.Font, line layout.TextLine) {
	face := font.Face()
	if face == nil || line.Content == "" {
		return
	}
	// 基线位置：行顶部加上字体上升部。
	baseline := float64(line.Y) + font.Ascent()
	ctx.DrawText(float64(line.X), baseline, canvas.NewTextLine(face, line.Content, canvas.Left))
}

func (r *Renderer) font(size float64, col layout.Color) *fonts.Font {
	key := faceKey{size: size, color: col}
	if f, ok := r.faces[key]; ok {
		return f
	}
	f := r.family.FontColor(size, colorFromLayout(col))
	r.faces[key] = f
	return f
}

func segment(dx, dy float64) *canvas.Path {
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(dx, dy)
	return p
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func rgba(c layout.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
