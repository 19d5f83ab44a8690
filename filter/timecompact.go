package filter

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// timePattern matches hour[:.-]minute tokens such as 9:00, 09.50 or 10-40.
var timePattern = func() *regexp2.Regexp {
	re := regexp2.MustCompile(`\b\d{1,2}[:.\-]\d{2}\b`, regexp2.None)
	re.MatchTimeout = matchTimeout
	return re
}()

// CompactTimes keeps only the first and last time token of text when it has
// more than two; every other token is removed and whitespace collapsed. Text
// with two or fewer tokens is returned unchanged.
func CompactTimes(text string) string {
	matches := findTimes(text)
	if len(matches) <= 2 {
		return text
	}

	// regexp2 reports positions in runes.
	runes := []rune(text)
	var b strings.Builder
	prev := 0
	last := len(matches) - 1
	for i, m := range matches {
		b.WriteString(string(runes[prev:m.Index]))
		if i == 0 || i == last {
			b.WriteString(m.String())
		}
		prev = m.Index + m.Length
	}
	b.WriteString(string(runes[prev:]))
	return CollapseSpace(b.String())
}

// CountTimes returns the number of time tokens in text.
func CountTimes(text string) int {
	return len(findTimes(text))
}

func findTimes(text string) []*regexp2.Match {
	var out []*regexp2.Match
	m, err := timePattern.FindStringMatch(text)
	for err == nil && m != nil {
		out = append(out, m)
		m, err = timePattern.FindNextMatch(m)
	}
	if err != nil {
		return nil
	}
	return out
}
