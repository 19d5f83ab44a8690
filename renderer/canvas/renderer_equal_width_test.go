package canvasrenderer

import (
	"reflect"
	"testing"

	"github.com/ByLCY/docshot/layout"
)

// 行宽恰好等于 maxWidth 时不能再追加单词：比较是严格小于。
func TestWrapBreaksWhenWidthEqualsLimit(t *testing.T) {
	font := builtinFamily(t).Font(10)

	limit, _ := font.Measure("SAMPLE-A SAMPLE-B ")
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	got := layout.Wrap("SAMPLE-A SAMPLE-B", font, limit)
	if want := []string{"SAMPLE-A", "SAMPLE-B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("equal width should break: got=%q want=%q", got, want)
	}

	got = layout.Wrap("SAMPLE-A SAMPLE-B", font, limit+0.01)
	if want := []string{"SAMPLE-A SAMPLE-B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("slightly wider limit should fit one line: got=%q want=%q", got, want)
	}
}
