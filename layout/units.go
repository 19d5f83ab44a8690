package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths for configuration values. Layout itself
// works in whole pixels; lengths are resolved to pixels at the edge.

// Unit represents the original unit of a length value as written in config.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as pixels or factors
	UnitPX               // CSS pixels (1/96 in)
	UnitPT               // points (1/72 in)
	UnitMM               // millimeters
	UnitIN               // inches
)

// Conversion constants between pt, mm and px.
const (
	PtToMm  = 0.352777
	MmToPt  = 1.0 / PtToMm
	PxPerIn = 96.0
	PxPerPt = PxPerIn / 72.0
	PxPerMm = PxPerIn / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Pixels converts the length to pixels. Unit-less values are already pixels.
func (l Length) Pixels() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerPt
	case UnitMM:
		return l.Value * PxPerMm
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// WholePixels rounds the length to the nearest pixel.
func (l Length) WholePixels() int {
	return int(math.Round(l.Pixels()))
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses strings such as "14px", "10pt", "3.5mm" or "12".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	if f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return Length{}, fmt.Errorf("invalid length %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec is either a factor of the font size (e.g. "2.1x") or an
// absolute length (e.g. "30px").
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight accepts "1.5x" for a factor and any ParseLength form for an
// absolute height.
func ParseLineHeight(value string) (LineHeightSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	// "px" 也以 x 结尾，属于绝对长度
	if strings.HasSuffix(v, "x") && !strings.HasSuffix(v, "px") {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "x")), 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, fmt.Errorf("invalid line height factor %q", value)
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LineHeightSpec{}, err
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, nil
}

// Resolve computes the line height in whole pixels for a font of fontSizePx.
func (s LineHeightSpec) Resolve(fontSizePx float64) int {
	switch s.Kind {
	case LineHeightFactor:
		return int(math.Round(fontSizePx * s.Factor))
	case LineHeightAbsolute:
		return s.Len.WholePixels()
	default:
		return int(math.Round(fontSizePx * 1.4))
	}
}
