// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

// defaultMaxPromptBytes caps how much report text is embedded in each
// agent prompt.
const defaultMaxPromptBytes = 3000

// Input is the material the pipeline forwards to its agents.
type Input struct {
	// ReportText is the full extracted report text; the pipeline embeds
	// at most MaxPromptBytes of it per prompt.
	ReportText string

	// Query is the user's free-text question.
	Query string

	// Markers are the values detected by pattern matching.
	Markers types.MarkerSet

	// NutritionNotes and ExerciseNotes are the rule-derived guidance
	// embedded in the respective prompts.
	NutritionNotes string
	ExerciseNotes  string
}

// Pipeline invokes the three agents in a fixed sequence, threading each
// stage's output into the prompts of the stages after it.
type Pipeline struct {
	Backend     Backend
	MaxRetries  int
	MaxTokens   int
	Temperature float64

	// MaxPromptBytes overrides the report-text cap when positive.
	MaxPromptBytes int

	// Progress, when set, receives a line as each stage starts.
	Progress io.Writer
}

// Run executes doctor, nutritionist, and physiologist in order and
// returns one section per agent. A stage failure aborts the run with the
// stage name in the error.
func (p *Pipeline) Run(ctx context.Context, in Input) ([]types.Section, error) {
	data := PromptData{
		Query:          in.Query,
		ReportExcerpt:  p.excerpt(in.ReportText),
		MarkerSummary:  SummarizeMarkers(in.Markers),
		NutritionNotes: in.NutritionNotes,
		ExerciseNotes:  in.ExerciseNotes,
	}

	var sections []types.Section

	findings, err := p.runAgent(ctx, Doctor, data)
	if err != nil {
		return nil, err
	}
	data.DoctorFindings = findings
	sections = append(sections, types.Section{Agent: Doctor.Name, Title: Doctor.Title, Content: findings})

	plan, err := p.runAgent(ctx, Nutritionist, data)
	if err != nil {
		return sections, err
	}
	data.NutritionPlan = plan
	sections = append(sections, types.Section{Agent: Nutritionist.Name, Title: Nutritionist.Title, Content: plan})

	program, err := p.runAgent(ctx, Physiologist, data)
	if err != nil {
		return sections, err
	}
	sections = append(sections, types.Section{Agent: Physiologist.Name, Title: Physiologist.Title, Content: program})

	return sections, nil
}

func (p *Pipeline) runAgent(ctx context.Context, agent *Agent, data PromptData) (string, error) {
	if p.Progress != nil {
		fmt.Fprintf(p.Progress, "running %s\n", agent.Name)
	}

	prompt, err := agent.BuildPrompt(data)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", agent.Name, err)
	}

	req := Request{
		System:      agent.System,
		Prompt:      prompt,
		MaxTokens:   p.maxTokens(),
		Temperature: p.Temperature,
	}

	text, err := completeWithRetry(ctx, p.Backend, req, p.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", agent.Name, err)
	}
	return text, nil
}

func (p *Pipeline) maxTokens() int {
	if p.MaxTokens > 0 {
		return p.MaxTokens
	}
	return 4096
}

// excerpt truncates report text to the prompt cap, backing up to a rune
// boundary so prompts never carry a split UTF-8 sequence.
func (p *Pipeline) excerpt(text string) string {
	limit := p.MaxPromptBytes
	if limit <= 0 {
		limit = defaultMaxPromptBytes
	}
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + "..."
}
