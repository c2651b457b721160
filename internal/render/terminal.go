// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

const sectionPreviewLen = 300

// Printer writes the styled terminal summary. With noColor all styles
// degrade to plain text, so output stays pipe-friendly.
type Printer struct {
	out io.Writer

	header  lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
}

// NewPrinter builds a Printer writing to out.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:     out,
		header:  lipgloss.NewStyle(),
		label:   lipgloss.NewStyle(),
		muted:   lipgloss.NewStyle(),
		success: lipgloss.NewStyle(),
		warn:    lipgloss.NewStyle(),
		danger:  lipgloss.NewStyle(),
	}
	if !noColor {
		p.header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		p.label = lipgloss.NewStyle().Bold(true)
		p.muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		p.success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		p.warn = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		p.danger = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	return p
}

// Out returns the underlying writer, for wiring into pipeline progress.
func (p *Printer) Out() io.Writer { return p.out }

// Infof prints a plain status line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Successf prints a success-styled line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.out, p.success.Render(fmt.Sprintf(format, args...)))
}

// Warnf prints a warning-styled line.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.out, p.warn.Render(fmt.Sprintf(format, args...)))
}

// Banner prints the application header.
func (p *Printer) Banner() {
	fmt.Fprintln(p.out, p.header.Render("Blood Test Analyser"))
	fmt.Fprintln(p.out, p.muted.Render(strings.Repeat("=", 40)))
}

// Summary prints the run header, the detected markers with colored
// statuses, a short preview of each agent section, and the saved report
// path.
func (p *Printer) Summary(a *types.Analysis) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Source:"), filepath.Base(a.SourceFile))
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Query:"), a.Query)
	if a.Backend != "" {
		fmt.Fprintf(p.out, "%s %s (%s)\n", p.label.Render("Backend:"), a.Backend, a.Model)
	}
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Elapsed:"), formatElapsed(a.Elapsed))

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.header.Render("Detected Markers"))
	p.markerLines(a.Markers)

	for _, s := range a.Sections {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, p.header.Render(s.Title))
		fmt.Fprintln(p.out, sectionPreview(s.Content))
	}

	if a.ReportPath != "" {
		fmt.Fprintln(p.out)
		p.Successf("Report saved: %s", a.ReportPath)
		fmt.Fprintln(p.out, p.muted.Render("Open the report file for the complete analysis."))
	}
}

func (p *Printer) markerLines(set types.MarkerSet) {
	if len(set) == 0 {
		fmt.Fprintln(p.out, p.muted.Render("  none detected; see the analysis sections"))
		return
	}
	for _, name := range set.Names() {
		m := set[name]
		status := p.styleForStatus(m.Status).Render(StatusGlyph(m.Status))
		fmt.Fprintf(p.out, "  %-14s %s %s  %s  %s\n",
			titleCase(name), formatValue(m.Value), m.Unit, status,
			p.muted.Render("(ref "+markers.FormatRange(name)+")"))
	}
}

func (p *Printer) styleForStatus(s types.MarkerStatus) lipgloss.Style {
	switch s {
	case types.StatusNormal:
		return p.success
	case types.StatusLow, types.StatusHigh:
		return p.danger
	default:
		return p.muted
	}
}

func sectionPreview(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= sectionPreviewLen {
		return content
	}
	cut := sectionPreviewLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "\n(full details in the saved report)"
}
