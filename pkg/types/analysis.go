// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Section is one agent's contribution to an analysis.
type Section struct {
	// Agent identifies the agent that produced the section
	// (e.g. "medical-doctor").
	Agent string `json:"agent" yaml:"agent"`

	// Title is the human-readable section heading.
	Title string `json:"title" yaml:"title"`

	// Content is the narrative text.
	Content string `json:"content" yaml:"content"`
}

// Analysis is the complete result of one pipeline run.
type Analysis struct {
	// ID is assigned when the analysis is recorded in history; empty
	// otherwise.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	SourceFile string    `json:"source_file" yaml:"source_file"`
	Query      string    `json:"query" yaml:"query"`

	// Backend and Model record which provider produced the narrative
	// sections. Both are empty for offline runs.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`

	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Markers are the values detected by pattern matching.
	Markers MarkerSet `json:"markers" yaml:"markers"`

	// Sections are the narrative outputs in pipeline order.
	Sections []Section `json:"sections" yaml:"sections"`

	// ReportPath is where the markdown report was written.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// Narrative concatenates all section contents. Used for full-text
// indexing in the history store.
func (a *Analysis) Narrative() string {
	var out string
	for i, s := range a.Sections {
		if i > 0 {
			out += "\n\n"
		}
		out += s.Content
	}
	return out
}
