// Package diff renders the difference between two states of an entity as
// unified-style text. Entities are compared through their indented JSON
// encoding, one line per field or list element.
package diff

import (
	"fmt"
	"strings"

	"github.com/jpl-au/exambank/internal/store"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines shown before/after changes.
// When equal sections exceed 2*contextLines, they're collapsed with "...".
const contextLines = 3

// Result holds diff output.
type Result struct {
	Old  string `json:"old"`  // old label
	New  string `json:"new"`  // new label
	Diff string `json:"diff"` // plain diff text
}

// Changed reports whether the two sides differ.
func (r Result) Changed() bool {
	for _, line := range strings.Split(r.Diff, "\n") {
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "+ ") {
			return true
		}
	}
	return false
}

// Entities diffs two entity values. A nil side diffs as "null", so an
// insert shows every field added and a delete every field removed.
func Entities(before, after any, oldLabel, newLabel string) (Result, error) {
	a, err := store.MarshalJSON(before)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", oldLabel, err)
	}
	b, err := store.MarshalJSON(after)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", newLabel, err)
	}
	return Compute(string(a)+"\n", string(b)+"\n", oldLabel, newLabel), nil
}

// Compute returns a line-level diff between old and new content.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(oldContent, newContent)
	d := dmp.DiffMain(c1, c2, false)
	d = dmp.DiffCharsToLines(d, lines)

	return Result{
		Old:  oldLabel,
		New:  newLabel,
		Diff: format(d),
	}
}

// format converts diffs to unified-style text.
func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) <= 2*contextLines {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
				continue
			}
			for _, l := range lines[:contextLines] {
				b.WriteString("  " + l + "\n")
			}
			b.WriteString("  ...\n")
			for _, l := range lines[len(lines)-contextLines:] {
				b.WriteString("  " + l + "\n")
			}
		}
	}
	return b.String()
}

// Colourise adds ANSI colours to diff output.
func Colourise(d string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	)

	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red + line + reset + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green + line + reset + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the full diff with header.
func (r Result) Format(colour bool) string {
	header := fmt.Sprintf("--- %s\n+++ %s\n", r.Old, r.New)
	if colour {
		return header + Colourise(r.Diff)
	}
	return header + r.Diff
}
