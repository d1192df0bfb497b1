// Package ui renders the per-implementation outcome of a run
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/recookio/recook/pkg/batch"
)

var statusStyles = map[batch.Status]lipgloss.Style{
	batch.StatusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	batch.StatusUpdated: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	batch.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	batch.StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

var idStyle = lipgloss.NewStyle().Bold(true)

// Renderer writes run reports to a terminal or plain writer
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer creates a Renderer; styling is enabled only when out is a
// terminal.
func NewRenderer(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Renderer{out: out, color: color}
}

// Render writes one line per implementation
func (r *Renderer) Render(reports []batch.ImplReport) {
	for _, report := range reports {
		status := fmt.Sprintf("%-8s", report.Status)
		id := report.ID
		if r.color {
			status = statusStyles[report.Status].Render(status)
			id = idStyle.Render(id)
		}

		line := status + " " + id
		if report.Version != "" {
			line += fmt.Sprintf(" (%s)", report.Version)
		}
		if report.Detail != "" {
			line += ": " + report.Detail
		}
		fmt.Fprintln(r.out, line)
	}
}

// Summary writes a one-line count of outcomes
func (r *Renderer) Summary(reports []batch.ImplReport) {
	counts := map[batch.Status]int{}
	for _, report := range reports {
		counts[report.Status]++
	}
	fmt.Fprintf(r.out, "%d ok, %d updated, %d skipped, %d failed\n",
		counts[batch.StatusOK], counts[batch.StatusUpdated],
		counts[batch.StatusSkipped], counts[batch.StatusFailed])
}
