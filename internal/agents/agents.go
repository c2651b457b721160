// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

// Agent is a role-scoped prompt configuration. The system prompt fixes
// the role; the template builds the user turn from the pipeline data.
type Agent struct {
	// Name identifies the agent in errors, history, and report sections.
	Name string

	// Title is the report section heading.
	Title string

	// System is the role-scoped system prompt.
	System string

	tmpl *template.Template
}

// PromptData is the material available to agent prompt templates. Fields
// are filled incrementally as the pipeline advances.
type PromptData struct {
	Query          string
	ReportExcerpt  string
	MarkerSummary  string
	NutritionNotes string
	ExerciseNotes  string

	// DoctorFindings is the medical agent's output, available to the
	// nutrition and exercise agents.
	DoctorFindings string

	// NutritionPlan is the nutrition agent's output, available to the
	// exercise agent.
	NutritionPlan string
}

// BuildPrompt renders the agent's user-turn prompt.
func (a *Agent) BuildPrompt(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", a.Name, err)
	}
	return buf.String(), nil
}

// Doctor interprets the actual values against reference ranges and is
// always the first stage.
var Doctor = &Agent{
	Name:  "medical-doctor",
	Title: "Medical Analysis",
	System: "You are a board-certified physician with long experience in internal medicine " +
		"and laboratory diagnostics. You work only with the blood test data you are given: " +
		"quote the exact values found in the report, compare them against standard reference " +
		"ranges, and never emit placeholder text such as [Value]. When a value cannot be found, " +
		"say what you did find and give general guidance within that limit.",
	tmpl: template.Must(template.New("doctor").Parse(`Analyze this blood test report and provide a medical interpretation.

User query: {{.Query}}

Detected markers:
{{.MarkerSummary}}

Blood test report content:
{{.ReportExcerpt}}

Instructions:
1. Work only with the values visible above; quote the real numbers.
2. Compare each value against its standard reference range and state the clinical significance of anything abnormal.
3. Address the user query directly where the data allows.
4. If a relevant value is unclear or absent, say so explicitly instead of guessing.
5. Close with specific, prioritized recommendations and a clear statement of which markers you analyzed.`)),
}

// Nutritionist translates the medical findings into dietary changes.
var Nutritionist = &Agent{
	Name:  "clinical-nutritionist",
	Title: "Nutrition Recommendations",
	System: "You are a registered dietitian experienced in medical nutrition therapy. You base " +
		"every recommendation on the actual blood values and the physician's findings you are " +
		"given: exact foods, portions, and meal timing. You never emit template text or " +
		"placeholder values.",
	tmpl: template.Must(template.New("nutritionist").Parse(`Provide nutrition recommendations grounded in this blood test and the physician's analysis.

Detected markers:
{{.MarkerSummary}}

Physician's analysis:
{{.DoctorFindings}}

Rule-derived nutrition notes (verify and refine, do not repeat verbatim):
{{.NutritionNotes}}

Blood test report content:
{{.ReportExcerpt}}

Instructions:
1. Tie every recommendation to a specific value from the report.
2. Give exact foods with portion sizes and practical meal planning.
3. Name supplements only where the values justify them, with the caveat to confirm with a physician.
4. If the detected values do not support a targeted plan, say so and give evidence-based general guidance.`)),
}

// Physiologist closes the pipeline with an exercise prescription shaped
// by both prior stages.
var Physiologist = &Agent{
	Name:  "exercise-physiologist",
	Title: "Exercise Plan",
	System: "You are a certified exercise physiologist who designs practical programs from " +
		"actual blood test results. You set exact parameters - duration, intensity, frequency - " +
		"from the specific markers found, and you flag every safety constraint the values imply.",
	tmpl: template.Must(template.New("physiologist").Parse(`Create an exercise plan grounded in this blood test, the physician's analysis, and the nutrition plan.

Detected markers:
{{.MarkerSummary}}

Physician's analysis:
{{.DoctorFindings}}

Nutrition plan:
{{.NutritionPlan}}

Rule-derived exercise notes (verify and refine, do not repeat verbatim):
{{.ExerciseNotes}}

Instructions:
1. Assess exercise readiness from the specific markers found and name any that constrain intensity.
2. Prescribe exact parameters: activity, duration, intensity, weekly frequency, and a 12-week progression.
3. Include safety considerations and stop conditions tied to the actual findings.`)),
}

// SummarizeMarkers renders a MarkerSet as one line per marker for prompt
// embedding: "hemoglobin: 11.5 g/dL (low, reference 12.0-16.0 g/dL)".
// Returns a fixed sentence when nothing was detected so templates never
// embed an empty block.
func SummarizeMarkers(set types.MarkerSet) string {
	if len(set) == 0 {
		return "No markers were detected automatically; extract values from the report text directly."
	}

	var b strings.Builder
	for _, name := range set.Names() {
		m := set[name]
		fmt.Fprintf(&b, "- %s: %s %s", name, trimValue(m.Value), m.Unit)
		if m.Status == types.StatusUnknown {
			b.WriteString(" (no reference range configured)\n")
			continue
		}
		fmt.Fprintf(&b, " (%s, reference %s)\n", m.Status, markers.FormatRange(name))
	}
	return strings.TrimRight(b.String(), "\n")
}

func trimValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
