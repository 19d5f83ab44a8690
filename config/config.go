// Package config loads the optional docshot.yaml file. Every field is
// optional; anything left out keeps the built-in default.
//
//	fonts:
//	  candidates: [/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf]
//	  remote_url: https://example.org/font.ttf
//	  timeout: 5s
//	noise:
//	  replace: false
//	  patterns: ["Исп\\. .*"]
//	profiles:
//	  general:
//	    margin: 10mm
//	    paragraph_font_size: 12pt
//	    paragraph_line_height: 2.1x
//	    border_color: "#333333"
//	output:
//	  format: png
//	  quality: 85
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/docshot/filter"
	"github.com/ByLCY/docshot/fonts"
	"github.com/ByLCY/docshot/layout"
)

// Config is the decoded file.
type Config struct {
	Fonts    FontsConfig                `yaml:"fonts"`
	Noise    NoiseConfig                `yaml:"noise"`
	Profiles map[string]ProfileOverride `yaml:"profiles"`
	Output   OutputConfig               `yaml:"output"`
}

// FontsConfig mirrors fonts.Options.
type FontsConfig struct {
	// Candidates 为 nil 时使用内置列表；显式的空列表表示不探测本地字体。
	Candidates []string      `yaml:"candidates"`
	RemoteURL  *string       `yaml:"remote_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// NoiseConfig extends or replaces filter.DefaultPatterns.
type NoiseConfig struct {
	Replace  bool     `yaml:"replace"`
	Patterns []string `yaml:"patterns"`
}

// OutputConfig selects the encoder.
type OutputConfig struct {
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
}

// ProfileOverride holds per-profile overrides. Nil fields are left alone.
type ProfileOverride struct {
	MaxCanvasWidth      *Length     `yaml:"max_canvas_width"`
	MaxCanvasHeight     *Length     `yaml:"max_canvas_height"`
	DefaultCanvasWidth  *Length     `yaml:"default_canvas_width"`
	Margin              *Length     `yaml:"margin"`
	Paragraphs          *bool       `yaml:"paragraphs"`
	ParagraphFontSize   *Length     `yaml:"paragraph_font_size"`
	ParagraphLineHeight *LineHeight `yaml:"paragraph_line_height"`
	TableFontSize       *Length     `yaml:"table_font_size"`
	ColumnCap           *Length     `yaml:"column_cap"`
	CellPadding         *Length     `yaml:"cell_padding"`
	ColumnFloor         *Length     `yaml:"column_floor"`
	CellInnerMargin     *Length     `yaml:"cell_inner_margin"`
	LinePitch           *Length     `yaml:"line_pitch"`
	RowPadding          *Length     `yaml:"row_padding"`
	CellLineCap         *int        `yaml:"cell_line_cap"`
	TableSpacing        *Length     `yaml:"table_spacing"`
	MinTableRows        *int        `yaml:"min_table_rows"`
	CompactCells        *bool       `yaml:"compact_cells"`
	TextColor           *Color      `yaml:"text_color"`
	BorderColor         *Color      `yaml:"border_color"`
	Background          *Color      `yaml:"background"`
	BorderWidth         *Length     `yaml:"border_width"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Output: OutputConfig{Format: "jpeg", Quality: 85},
	}
}

// Load reads and decodes path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	// 同一 profile 只能出现一次（general 与 docx 不能同时设置）
	seen := make(map[string]string, len(cfg.Profiles))
	for name := range cfg.Profiles {
		p, err := layout.ProfileByName(name)
		if err != nil {
			return Config{}, err
		}
		if prev, ok := seen[p.Name]; ok {
			a, b := min(prev, name), max(prev, name)
			return Config{}, fmt.Errorf("profiles %q and %q both configure %s", a, b, p.Name)
		}
		seen[p.Name] = name
	}
	return cfg, nil
}

// FontOptions converts the fonts section.
func (c Config) FontOptions(logger *slog.Logger) fonts.Options {
	opts := fonts.Options{
		Candidates: c.Fonts.Candidates,
		RemoteURL:  fonts.DefaultRemoteURL,
		Timeout:    c.Fonts.Timeout,
		Logger:     logger,
	}
	if c.Fonts.RemoteURL != nil {
		opts.RemoteURL = *c.Fonts.RemoteURL
	}
	return opts
}

// NoisePatterns returns the effective noise pattern list.
func (c Config) NoisePatterns() []string {
	if c.Noise.Replace {
		return append([]string(nil), c.Noise.Patterns...)
	}
	out := append([]string(nil), filter.DefaultPatterns...)
	return append(out, c.Noise.Patterns...)
}

// Rules compiles NoisePatterns.
func (c Config) Rules() (*filter.Rules, error) {
	rules, err := filter.NewRules(c.NoisePatterns())
	if err != nil {
		return nil, fmt.Errorf("noise patterns: %w", err)
	}
	return rules, nil
}

// Profile returns the named built-in profile with this file's overrides
// applied. Aliases ("docx", "xml") share the override of their profile;
// Parse rejects files that set a profile twice, and for hand-built configs
// the canonical key is applied last.
func (c Config) Profile(name string) (layout.Profile, error) {
	p, err := layout.ProfileByName(name)
	if err != nil {
		return layout.Profile{}, err
	}
	// 别名按名称排序先应用，正式名称最后应用，结果与 map 顺序无关
	var keys []string
	for key := range c.Profiles {
		if base, err := layout.ProfileByName(key); err == nil && base.Name == p.Name && key != p.Name {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	if _, ok := c.Profiles[p.Name]; ok {
		keys = append(keys, p.Name)
	}
	for _, key := range keys {
		c.Profiles[key].Apply(&p)
	}
	if err := p.Validate(); err != nil {
		return layout.Profile{}, err
	}
	return p, nil
}

// Apply writes the set fields into p.
func (o ProfileOverride) Apply(p *layout.Profile) {
	setInt := func(dst *int, l *Length) {
		if l != nil {
			*dst = l.WholePixels()
		}
	}
	setFloat := func(dst *float64, l *Length) {
		if l != nil {
			*dst = l.Pixels()
		}
	}
	setInt(&p.MaxCanvasWidth, o.MaxCanvasWidth)
	setInt(&p.MaxCanvasHeight, o.MaxCanvasHeight)
	setInt(&p.DefaultCanvasWidth, o.DefaultCanvasWidth)
	setInt(&p.Margin, o.Margin)
	setFloat(&p.ParagraphFontSize, o.ParagraphFontSize)
	setFloat(&p.TableFontSize, o.TableFontSize)
	setInt(&p.ColumnCap, o.ColumnCap)
	setInt(&p.CellPadding, o.CellPadding)
	setInt(&p.ColumnFloor, o.ColumnFloor)
	setInt(&p.CellInnerMargin, o.CellInnerMargin)
	setInt(&p.LinePitch, o.LinePitch)
	setInt(&p.RowPadding, o.RowPadding)
	setInt(&p.TableSpacing, o.TableSpacing)
	setFloat(&p.BorderWidth, o.BorderWidth)
	// 行高按（可能已被覆盖的）段落字号解析
	if o.ParagraphLineHeight != nil {
		p.ParagraphLineHeight = o.ParagraphLineHeight.Resolve(p.ParagraphFontSize)
	}
	if o.Paragraphs != nil {
		p.Paragraphs = *o.Paragraphs
	}
	if o.CellLineCap != nil {
		p.CellLineCap = *o.CellLineCap
	}
	if o.MinTableRows != nil {
		p.MinTableRows = *o.MinTableRows
	}
	if o.CompactCells != nil {
		p.CompactCells = *o.CompactCells
	}
	if o.TextColor != nil {
		p.TextColor = layout.Color(*o.TextColor)
	}
	if o.BorderColor != nil {
		p.BorderColor = layout.Color(*o.BorderColor)
	}
	if o.Background != nil {
		p.Background = layout.Color(*o.Background)
	}
}

// Length is a layout.Length read from a YAML scalar ("14px", "10pt", 12).
type Length struct {
	layout.Length
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Length) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", value.Line)
	}
	parsed, err := layout.ParseLength(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	l.Length = parsed
	return nil
}

// LineHeight is a layout.LineHeightSpec read from YAML ("2.1x", "30px").
type LineHeight struct {
	layout.LineHeightSpec
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *LineHeight) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: line height must be a scalar", value.Line)
	}
	spec, err := layout.ParseLineHeight(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	h.LineHeightSpec = spec
	return nil
}

// Color is written as "#rgb" or "#rrggbb".
type Color layout.Color

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = Color(parsed)
	return nil
}

// ParseColor parses a hex color.
func ParseColor(s string) (layout.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return layout.Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("invalid color %q", s)
	}
	return layout.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
