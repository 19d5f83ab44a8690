package layout

import (
	"math"
	"strings"
)

// Wrap 将文本按空白拆分为单词并贪心折行：在 "当前行 + 单词 + 空格" 的宽度小于 maxWidth
// 时继续追加，否则另起一行。单个超宽单词独占一行，允许溢出，不做拆分或连字符处理。
func Wrap(text string, m Measurer, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var (
		lines   []string
		current string
	)
	for _, word := range words {
		test := current + word + " "
		if w, _ := m.Measure(test); w < maxWidth {
			current = test
			continue
		}
		if current != "" {
			lines = append(lines, strings.TrimSpace(current))
		}
		current = word + " "
	}
	if current != "" {
		lines = append(lines, strings.TrimSpace(current))
	}
	return lines
}

// MaxWordWidth returns the measured width of the widest whitespace-separated
// word in text, or 0 for blank text.
func MaxWordWidth(text string, m Measurer) float64 {
	widest := 0.0
	for _, word := range strings.Fields(text) {
		if w, _ := m.Measure(word); w > widest {
			widest = w
		}
	}
	return widest
}

func ceilPx(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if math.IsInf(v, 1) || v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(v))
}
