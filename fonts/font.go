package fonts

import (
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
)

// Canvas works in millimetres and font sizes in points. One pixel is mapped
// to one millimetre, so a pixel size converts to points with pxToPt.
const pxToPt = 1.0 / 0.352777

// Fixed-width estimate used when a face cannot report metrics, relative to
// the font size: a 10px font estimates 6px per rune and 12px per line.
const (
	estimateAdvance = 0.6
	estimateHeight  = 1.2
)

// Family is a parsed font owned by one conversion.
type Family struct {
	family *canvas.FontFamily
}

// Font is a font handle at a fixed pixel size. It satisfies layout.Measurer.
type Font struct {
	family *canvas.FontFamily
	face   *canvas.FontFace
	size   float64
}

// Font returns a black face of the given pixel size.
func (f *Family) Font(sizePx float64) *Font {
	return f.FontColor(sizePx, canvas.Black)
}

// FontColor returns a face of the given pixel size drawn in col.
func (f *Family) FontColor(sizePx float64, col color.Color) *Font {
	if f == nil || f.family == nil {
		return Estimate(sizePx)
	}
	return &Font{
		family: f.family,
		face:   f.family.Face(sizePx*pxToPt, col, canvas.FontRegular, canvas.FontNormal),
		size:   sizePx,
	}
}

// Estimate returns a handle without metrics; Measure always uses the
// fixed-width estimate and Face returns nil.
func Estimate(sizePx float64) *Font {
	return &Font{size: sizePx}
}

// WithColor returns the same font drawn in col.
func (f *Font) WithColor(col color.Color) *Font {
	if f.family == nil {
		return f
	}
	return (&Family{family: f.family}).FontColor(f.size, col)
}

// Size returns the pixel size.
func (f *Font) Size() float64 { return f.size }

// Face returns the canvas face, nil for estimate-only handles.
func (f *Font) Face() *canvas.FontFace { return f.face }

// Measure returns the pixel width and height of text. It never fails: if the
// face is missing or reports garbage, the fixed-width estimate is returned.
func (f *Font) Measure(text string) (w, h float64) {
	if f == nil {
		return estimate(text, 0)
	}
	if f.face == nil {
		return estimate(text, f.size)
	}
	defer func() {
		if recover() != nil {
			w, h = estimate(text, f.size)
		}
	}()
	w = f.face.TextWidth(text)
	m := f.face.Metrics()
	h = m.Ascent + m.Descent
	if !finite(w) || !finite(h) || w < 0 || h <= 0 {
		return estimate(text, f.size)
	}
	return w, h
}

// Ascent is the distance from the top of a line to its baseline, in pixels.
func (f *Font) Ascent() float64 {
	if f.face == nil {
		return f.size
	}
	a := f.face.Metrics().Ascent
	if !finite(a) || a <= 0 {
		return f.size
	}
	return a
}

func estimate(text string, size float64) (float64, float64) {
	if size <= 0 {
		size = 10
	}
	n := utf8.RuneCountInString(text)
	return float64(n) * size * estimateAdvance, size * estimateHeight
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
