// Package filter drops boilerplate paragraphs, compacts redundant time
// tokens and cleans up tables before layout.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/ByLCY/docshot/document"
)

// matchTimeout bounds a single pattern evaluation; a pattern that times out
// is treated as not matching.
const matchTimeout = 200 * time.Millisecond

// Rules is a compiled, read-only set of noise patterns. It is safe for
// concurrent use.
type Rules struct {
	patterns []*regexp2.Regexp
}

// Options selects the per-profile behaviour of Apply.
type Options struct {
	// Paragraphs keeps paragraph blocks; when false every paragraph is dropped.
	Paragraphs bool
	// CompactCells applies time compaction to table cells as well.
	CompactCells bool
	// MinTableRows drops tables with fewer non-blank rows.
	MinTableRows int
}

// NewRules compiles patterns case-insensitively. Patterns use .NET syntax, so
// \w, \d and \b are Unicode aware.
func NewRules(patterns []string) (*Rules, error) {
	r := &Rules{patterns: make([]*regexp2.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp2.Compile(p, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("compiling noise pattern %q: %w", p, err)
		}
		re.MatchTimeout = matchTimeout
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// DefaultRules returns the rules built from DefaultPatterns.
func DefaultRules() *Rules {
	r, err := NewRules(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of compiled patterns.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.patterns)
}

// IsNoise reports whether text matches any pattern.
func (r *Rules) IsNoise(text string) bool {
	if r == nil {
		return false
	}
	for _, re := range r.patterns {
		if ok, err := re.MatchString(text); err == nil && ok {
			return true
		}
	}
	return false
}

// Apply returns a new document with noise paragraphs removed, surviving
// paragraphs time-compacted and tables cleaned according to opts. The input
// document is not modified.
func (r *Rules) Apply(doc document.Document, opts Options) document.Document {
	out := document.Document{Name: doc.Name}
	for _, b := range doc.Blocks {
		switch b := b.(type) {
		case document.Paragraph:
			if !opts.Paragraphs {
				continue
			}
			text := strings.TrimSpace(b.Text)
			if text == "" || r.IsNoise(text) {
				continue
			}
			out.Blocks = append(out.Blocks, document.Paragraph{Text: CompactTimes(text)})
		case document.Table:
			if t, ok := cleanTable(b, opts); ok {
				out.Blocks = append(out.Blocks, t)
			}
		}
	}
	return out
}

// cleanTable collapses whitespace in every cell and drops blank rows. The table
// survives only if it keeps at least opts.MinTableRows rows (and at least one).
func cleanTable(t document.Table, opts Options) (document.Table, bool) {
	var rows []document.Row
	for _, row := range t.Rows {
		cells := make(document.Row, len(row))
		for i, c := range row {
			c = CollapseSpace(c)
			if opts.CompactCells {
				c = CompactTimes(c)
			}
			cells[i] = c
		}
		if cells.Blank() {
			continue
		}
		rows = append(rows, cells)
	}
	min := opts.MinTableRows
	if min < 1 {
		min = 1
	}
	if len(rows) < min {
		return document.Table{}, false
	}
	return document.Table{Rows: rows}, true
}

// CollapseSpace replaces runs of whitespace with one space and trims the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
