// Package report renders prune outcomes for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"emptydir/internal/oracle"
)

const (
	colorRed   = "1"
	colorGreen = "2"
	colorBlue  = "4"
)

// Printer writes deleted paths and the summary to out and failures to errOut.
// Colour is only emitted when the writer is a terminal that supports it.
type Printer struct {
	out    *termenv.Output
	errOut *termenv.Output
}

// New creates a Printer. noColor forces plain output on both writers.
func New(out, errOut io.Writer, noColor bool) *Printer {
	var opts []termenv.OutputOption
	if noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &Printer{
		out:    termenv.NewOutput(out, opts...),
		errOut: termenv.NewOutput(errOut, opts...),
	}
}

// Deleted prints a removed directory
func (p *Printer) Deleted(path string) {
	fmt.Fprintln(p.out, path)
}

// Failed prints a directory that was approved but could not be removed
func (p *Printer) Failed(path string, err error) {
	msg := fmt.Sprintf("Tried to delete %s, but got error: %v", path, err)
	fmt.Fprintln(p.errOut, p.errOut.String(msg).Foreground(p.errOut.Color(colorRed)))
}

// Summary prints the trailing count line
func (p *Printer) Summary(deleted int) {
	color := colorGreen
	if deleted == 0 {
		color = colorBlue
	}
	fmt.Fprintln(p.out, p.out.String(SummaryLine(deleted)).Foreground(p.out.Color(color)))
}

// Kept explains why the root survived a run that changed nothing
func (p *Printer) Kept(d oracle.Decision) {
	if d.CanDelete() {
		return
	}
	fmt.Fprintf(p.errOut, "%s: %s\n", d.Path, d.ToHumanReadable())
}

// SummaryLine returns the uncoloured summary for a deletion count
func SummaryLine(deleted int) string {
	switch deleted {
	case 0:
		return "no empty directories found"
	case 1:
		return "1 directory deleted"
	default:
		return humanize.Comma(int64(deleted)) + " directories deleted"
	}
}
