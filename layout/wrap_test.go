package layout

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// runeMeasurer 是测试用的等宽测量：每个字符 perRune 像素，行高固定 12。
type runeMeasurer struct{ perRune float64 }

func (m runeMeasurer) Measure(text string) (float64, float64) {
	return float64(utf8.RuneCountInString(text)) * m.perRune, 12
}

// mapMeasurer 为指定单词返回固定宽度，其余文本按每字符 6 像素计算。
type mapMeasurer map[string]float64

func (m mapMeasurer) Measure(text string) (float64, float64) {
	if w, ok := m[text]; ok {
		return w, 12
	}
	return float64(utf8.RuneCountInString(text)) * 6, 12
}

func TestWrapGreedy(t *testing.T) {
	got := Wrap("aaa bbb ccc", runeMeasurer{6}, 50)
	want := []string{"aaa bbb", "ccc"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("折行结果错误: got=%q want=%q", got, want)
	}
}

func TestWrapOverlongWordStaysWhole(t *testing.T) {
	got := Wrap("x supercalifragilistic y", runeMeasurer{6}, 30)
	want := []string{"x", "supercalifragilistic", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("超宽单词应独占一行且不拆分: got=%q want=%q", got, want)
	}
}

func TestWrapBlank(t *testing.T) {
	if got := Wrap(" \t\n ", runeMeasurer{6}, 100); len(got) != 0 {
		t.Fatalf("空白文本应无行: %q", got)
	}
}

func TestWrapCollapsesWhitespace(t *testing.T) {
	got := Wrap("  a \n\t b  ", runeMeasurer{6}, 1000)
	if !reflect.DeepEqual(got, []string{"a b"}) {
		t.Fatalf("unexpected lines %q", got)
	}
}

// TestWrapLinesFitUnlessSingleWord 断言：每一行宽度 ≤ maxWidth，除非该行是单个超宽单词。
func TestWrapLinesFitUnlessSingleWord(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := runeMeasurer{6}
	for iter := 0; iter < 500; iter++ {
		text := randomText(rng, rng.Intn(30))
		maxWidth := float64(rng.Intn(200))
		lines := Wrap(text, m, maxWidth)
		for _, line := range lines {
			w, _ := m.Measure(line)
			if w <= maxWidth {
				continue
			}
			if strings.Contains(line, " ") {
				t.Fatalf("多词行超宽: text=%q max=%g line=%q width=%g", text, maxWidth, line, w)
			}
		}
		if got, want := strings.Join(lines, " "), strings.Join(strings.Fields(text), " "); got != want {
			t.Fatalf("折行丢失或改写了单词: got=%q want=%q", got, want)
		}
	}
}

func randomText(rng *rand.Rand, words int) string {
	letters := []rune("abcdefghijАБВГДежзик")
	parts := make([]string, words)
	for i := range parts {
		n := 1 + rng.Intn(12)
		r := make([]rune, n)
		for j := range r {
			r[j] = letters[rng.Intn(len(letters))]
		}
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
