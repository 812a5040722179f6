// Package progress reports how far a long bundle import or export has got.
// Output goes to stderr so stdout stays clean for piping, and nothing is
// printed unless stderr is a terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// minItems is the smallest total worth reporting progress for.
const minItems = 5

// Progress tracks and displays operation progress.
type Progress struct {
	w       io.Writer
	label   string
	total   int
	current int
	isTTY   bool
}

// New creates a progress reporter that writes to stderr.
func New(label string, total int) *Progress {
	return &Progress{
		w:     os.Stderr,
		label: label,
		total: total,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Step advances the counter by one and redraws the line.
func (p *Progress) Step() {
	p.current++
	if !p.visible() {
		return
	}
	fmt.Fprintf(p.w, "\r%s... %d/%d (%d%%)", p.label, p.current, p.total, p.current*100/p.total)
}

// Done clears the progress line to make way for final output.
func (p *Progress) Done() {
	if !p.visible() {
		return
	}
	fmt.Fprintf(p.w, "\r%40s\r", "")
}

func (p *Progress) visible() bool {
	return p.isTTY && p.total >= minItems
}
