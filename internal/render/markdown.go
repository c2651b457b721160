// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render produces the two output surfaces of an analysis run:
// the saved markdown report and the styled terminal summary.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

// Filename returns the report filename for a run started at t, e.g.
// blood_analysis_20260824_153000.md.
func Filename(t time.Time) string {
	return fmt.Sprintf("blood_analysis_%s.md", t.Format("20060102_150405"))
}

// Markdown renders the full analysis report. preview is a short excerpt
// of the extracted report text shown near the top so the reader can
// verify the agents worked from the right document.
func Markdown(a *types.Analysis, preview string) string {
	var b strings.Builder

	b.WriteString("# Blood Test Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s  \n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Processing Time:** %s  \n", formatElapsed(a.Elapsed))
	fmt.Fprintf(&b, "**Source File:** %s  \n", filepath.Base(a.SourceFile))
	fmt.Fprintf(&b, "**Query:** %s  \n", a.Query)
	if a.Backend != "" {
		fmt.Fprintf(&b, "**Backend:** %s (%s)  \n", a.Backend, a.Model)
	}
	fmt.Fprintf(&b, "**Markers Detected:** %d\n\n", len(a.Markers))
	b.WriteString("---\n\n")

	if preview != "" {
		b.WriteString("## Report Content Preview\n\n")
		b.WriteString("```\n")
		b.WriteString(preview)
		b.WriteString("\n```\n\n---\n\n")
	}

	b.WriteString("## Blood Markers\n\n")
	writeMarkerTable(&b, a.Markers)
	b.WriteString("\n---\n\n")

	for _, s := range a.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		b.WriteString(strings.TrimSpace(s.Content))
		b.WriteString("\n\n---\n\n")
	}

	b.WriteString(disclaimers)
	return b.String()
}

// Save writes the markdown report under dir, creating it if needed, and
// returns the path of the written file.
func Save(dir string, a *types.Analysis, preview string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, Filename(a.CreatedAt))
	if err := os.WriteFile(path, []byte(Markdown(a, preview)), 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}

func writeMarkerTable(b *strings.Builder, set types.MarkerSet) {
	if len(set) == 0 {
		b.WriteString("*No markers were detected automatically. See the analysis sections below for manual interpretation.*\n")
		return
	}

	b.WriteString("| Marker | Value | Unit | Reference | Status |\n")
	b.WriteString("|--------|-------|------|-----------|--------|\n")
	for _, name := range set.Names() {
		m := set[name]
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			titleCase(name), formatValue(m.Value), m.Unit, markers.FormatRange(name), StatusGlyph(m.Status))
	}
}

// StatusGlyph renders a marker status for tables and terminal output.
func StatusGlyph(s types.MarkerStatus) string {
	switch s {
	case types.StatusNormal:
		return "✓ Normal"
	case types.StatusLow:
		return "▼ Low"
	case types.StatusHigh:
		return "▲ High"
	default:
		return "See analysis"
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func titleCase(name string) string {
	if name == "" {
		return name
	}
	// Canonical names are lowercase single words or abbreviations (hdl,
	// bun); abbreviations of three letters or fewer are uppercased.
	if len(name) <= 3 {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

const disclaimers = `## Important Disclaimers

- This analysis is for **informational purposes only** and does not replace professional medical advice.
- **Always consult your healthcare provider** before making medical, nutritional, or exercise changes.
- Blood test interpretation requires clinical context and professional medical judgment.
- For urgent health concerns, seek immediate medical attention.

## Next Steps

1. **Schedule an appointment** with your healthcare provider to discuss these results.
2. **Share this analysis** with your doctor for professional interpretation.
3. **Request follow-up testing** if recommended.
4. **Implement lifestyle changes gradually** under medical supervision.
`
