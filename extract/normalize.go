package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cleanText converts text to NFC, so that decomposed Cyrillic such as "й"
// written as "и"+U+0306 measures and matches noise patterns like its composed
// form. Non-breaking spaces become plain spaces and zero-width characters
// are dropped. Line breaks are kept.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u2007', '\u202f':
			return ' '
		case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00ad':
			return -1
		}
		return r
	}, s)
}
