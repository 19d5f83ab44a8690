// Package convert turns a structured document into a raster image: it
// filters noise, lays the document out under a profile and draws it.
//
// Convert is a pure function of the document, the profile and the shared
// read-only font provider. It performs no I/O and keeps no state between
// calls, so one Converter may serve any number of goroutines.
package convert

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ByLCY/docshot/document"
	"github.com/ByLCY/docshot/filter"
	"github.com/ByLCY/docshot/fonts"
	"github.com/ByLCY/docshot/layout"
	canvasrenderer "github.com/ByLCY/docshot/renderer/canvas"
)

// ErrNoContent is returned when nothing survives filtering. It is a valid
// outcome rather than a failure and is never wrapped in a ConversionError.
var ErrNoContent = errors.New("convert: no content")

// Conversion stages reported by ConversionError.
const (
	StageFonts  = "fonts"
	StageLayout = "layout"
	StageRender = "render"
)

// ConversionError reports an internal failure together with the stage it
// happened in. Callers typically fall back to delivering the source file.
type ConversionError struct {
	Stage string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert: %s: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &ConversionError{Stage: stage, Err: err}
}

// Converter holds the shared, read-only collaborators of every conversion.
type Converter struct {
	fonts  *fonts.Provider
	rules  *filter.Rules
	logger *slog.Logger
}

// New returns a Converter. A nil rules set filters nothing but empty text;
// a nil logger uses slog.Default.
func New(provider *fonts.Provider, rules *filter.Rules, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{fonts: provider, rules: rules, logger: logger}
}

// Plan is a laid-out document ready to be drawn.
type Plan struct {
	// Filtered is the document after noise filtering and table cleanup.
	Filtered document.Document
	Layout   *layout.Result
	family   *fonts.Family
}

// Plan filters doc and computes its layout under p.
func (c *Converter) Plan(doc document.Document, p layout.Profile) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, stageErr(StageLayout, err)
	}
	filtered := c.rules.Apply(doc, filter.Options{
		Paragraphs:   p.Paragraphs,
		CompactCells: p.CompactCells,
		MinTableRows: p.MinTableRows,
	})
	if filtered.Empty() {
		return nil, ErrNoContent
	}

	family, err := c.fonts.Family()
	if err != nil {
		return nil, stageErr(StageFonts, err)
	}
	res, err := layout.Build(filtered, p, layout.BuildOptions{
		ParagraphFont: family.Font(p.ParagraphFontSize),
		TableFont:     family.Font(p.TableFontSize),
	})
	if err != nil {
		return nil, stageErr(StageLayout, err)
	}
	return &Plan{Filtered: filtered, Layout: res, family: family}, nil
}

// Rasterize draws a plan into an opaque RGBA image.
func (c *Converter) Rasterize(plan *Plan) (img *image.RGBA, err error) {
	defer recoverStage(StageRender, &err)
	img, err = canvasrenderer.New(plan.family).Rasterize(plan.Layout)
	if err != nil {
		return nil, stageErr(StageRender, err)
	}
	return img, nil
}

// RenderPDF draws a plan into a single-page PDF.
func (c *Converter) RenderPDF(plan *Plan) (data []byte, err error) {
	defer recoverStage(StageRender, &err)
	data, err = canvasrenderer.New(plan.family).Render(plan.Layout)
	if err != nil {
		return nil, stageErr(StageRender, err)
	}
	return data, nil
}

// Convert renders doc under profile p. It returns ErrNoContent when nothing
// survives filtering and a *ConversionError for any other failure.
func (c *Converter) Convert(doc document.Document, p layout.Profile) (*image.RGBA, error) {
	plan, err := c.Plan(doc, p)
	if err != nil {
		return nil, err
	}
	img, err := c.Rasterize(plan)
	if err != nil {
		return nil, err
	}
	c.logPlan(doc, plan)
	return img, nil
}

func (c *Converter) logPlan(doc document.Document, plan *Plan) {
	res := plan.Layout
	dropped := 0
	for _, tb := range res.Tables {
		for _, cell := range tb.Cells {
			dropped += cell.Dropped
		}
	}
	c.logger.Debug("document converted",
		"name", doc.Name,
		"profile", res.Profile,
		"width", res.Width,
		"height", res.UsedHeight,
		"paragraphs", len(res.Texts),
		"tables", len(res.Tables),
		"omitted_tables", res.Omitted,
		"dropped_lines", dropped,
	)
}

// recoverStage turns a panic in the drawing backend into a ConversionError.
func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		*err = stageErr(stage, fmt.Errorf("panic: %v", r))
	}
}
