// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package advice derives deterministic nutrition and exercise guidance
// from detected blood markers. The output seeds the agent prompts with
// concrete, value-anchored talking points and stands alone as the report
// body when the pipeline runs offline.
package advice

import (
	"fmt"
	"strings"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

// Thresholds that trigger targeted guidance beyond the plain reference
// ranges. Values in mg/dL except hemoglobin (g/dL).
const (
	hemoglobinLow       = 12.0
	hemoglobinHigh      = 16.0
	cholesterolElevated = 200
	cholesterolHighRisk = 240
	glucoseElevated     = 100
	glucoseDiabetic     = 126
)

// Nutrition builds dietary guidance from the detected markers. Markers
// without targeted rules fall back to general guidance so the section is
// never empty.
func Nutrition(set types.MarkerSet) string {
	var b strings.Builder

	b.WriteString("### Nutrition guidance from detected values\n\n")

	targeted := false

	if hb, ok := set[markers.Hemoglobin]; ok {
		targeted = true
		fmt.Fprintf(&b, "**Hemoglobin: %.1f g/dL.** ", hb.Value)
		switch {
		case hb.Value < hemoglobinLow:
			b.WriteString("Below the reference range (12.0-16.0 g/dL), consistent with low iron stores.\n\n")
			b.WriteString("- Include iron-rich foods daily: lean red meat (3-4 oz), lentils (1 cup cooked), spinach (1 cup cooked), fortified cereals.\n")
			b.WriteString("- Pair iron-rich meals with vitamin C (citrus, bell peppers, tomatoes) to improve absorption.\n")
			b.WriteString("- Separate coffee, tea, and calcium supplements from iron-rich meals by 1-2 hours.\n\n")
		case hb.Value > hemoglobinHigh:
			b.WriteString("Above the reference range.\n\n")
			b.WriteString("- Increase daily water intake to 10-12 glasses.\n")
			b.WriteString("- Avoid iron supplements unless prescribed.\n")
			b.WriteString("- Discuss the elevated level with a physician.\n\n")
		default:
			b.WriteString("Within the reference range; continue a balanced intake of iron from varied protein sources.\n\n")
		}
	}

	if chol, ok := set[markers.Cholesterol]; ok {
		targeted = true
		fmt.Fprintf(&b, "**Total cholesterol: %.0f mg/dL.** ", chol.Value)
		if chol.Value > cholesterolElevated {
			b.WriteString("Above the desirable level (<= 200 mg/dL).\n\n")
			b.WriteString("- Emphasize fatty fish (2-3 servings/week), oats (1 cup cooked daily), legumes, and a daily ounce of nuts.\n")
			b.WriteString("- Cook with olive oil; limit red meat to twice weekly, lean cuts.\n")
			b.WriteString("- Replace full-fat dairy and fried or packaged foods with low-fat and baked alternatives.\n")
			fmt.Fprintf(&b, "- A 10-15%% reduction over three months would bring the level to roughly %.0f-%.0f mg/dL.\n\n",
				chol.Value*0.85, chol.Value*0.90)
		} else {
			b.WriteString("Within the desirable range; maintain the current pattern of healthy fats.\n\n")
		}
	}

	if glu, ok := set[markers.Glucose]; ok {
		targeted = true
		fmt.Fprintf(&b, "**Glucose: %.0f mg/dL.** ", glu.Value)
		switch {
		case glu.Value >= glucoseDiabetic:
			b.WriteString("In the diabetes range (>= 126 mg/dL fasting).\n\n")
			writeGlucoseDiet(&b)
		case glu.Value >= glucoseElevated:
			b.WriteString("In the prediabetes range (100-125 mg/dL fasting).\n\n")
			writeGlucoseDiet(&b)
		default:
			b.WriteString("Within the healthy fasting range (70-99 mg/dL); keep carbohydrate intake balanced and meal timing regular.\n\n")
		}
	}

	if !targeted {
		b.WriteString("No targeted markers were detected automatically. General daily targets:\n\n")
		b.WriteString("- Vegetables: 5-9 servings; fruits: 2-4 servings; whole grains: 6-8 servings.\n")
		b.WriteString("- Lean protein: 5-6 oz total; healthy fats: 2-3 tablespoons (olive oil, nuts).\n")
		b.WriteString("- Water: 8-10 glasses; limit sugary beverages and alcohol.\n\n")
	}

	b.WriteString("Reassess with follow-up blood work in three months, and review significant dietary changes with a healthcare provider.\n")

	return b.String()
}

func writeGlucoseDiet(b *strings.Builder) {
	b.WriteString("- Favor whole grains, legumes, non-starchy vegetables, and lean protein at every meal.\n")
	b.WriteString("- Eat every 3-4 hours and avoid large single portions of carbohydrate.\n")
	b.WriteString("- Avoid refined grains, sugary drinks, and sweets.\n\n")
}

// Exercise builds an activity plan from the detected markers. Risk
// findings reduce the starting intensity and add monitoring notes.
func Exercise(set types.MarkerSet) string {
	var b strings.Builder

	b.WriteString("### Exercise guidance from detected values\n\n")
	b.WriteString("Obtain physician approval before starting a new exercise program.\n\n")

	var risks, notes []string

	if chol, ok := set[markers.Cholesterol]; ok && chol.Value > cholesterolHighRisk {
		risks = append(risks, fmt.Sprintf("high total cholesterol (%.0f mg/dL)", chol.Value))
		notes = append(notes, "Prioritize aerobic work; aim for 150+ minutes of cardio per week and monitor heart rate.")
	}
	if glu, ok := set[markers.Glucose]; ok && glu.Value >= glucoseDiabetic {
		risks = append(risks, fmt.Sprintf("glucose in the diabetes range (%.0f mg/dL)", glu.Value))
		notes = append(notes, "Check blood sugar before and after sessions; exercise 1-2 hours after meals; stop if dizzy or weak.")
	}
	if hb, ok := set[markers.Hemoglobin]; ok && hb.Value < hemoglobinLow {
		risks = append(risks, fmt.Sprintf("low hemoglobin (%.1f g/dL)", hb.Value))
		notes = append(notes, "Begin at low intensity; reduced oxygen-carrying capacity limits early workloads.")
	}

	if len(risks) > 0 {
		b.WriteString("Findings that shape this plan:\n\n")
		for _, r := range risks {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	// Reduced starting prescription when any risk finding is present.
	if len(risks) > 0 {
		b.WriteString("**Cardiovascular program (modified):** low to moderate intensity, 20-30 minutes, 3-4 sessions per week, 50-70% of maximum heart rate.\n\n")
	} else {
		b.WriteString("**Cardiovascular program:** moderate intensity, 30-45 minutes, 4-5 sessions per week, 50-70% of maximum heart rate.\n\n")
	}

	b.WriteString("Recommended activities: walking, swimming, cycling on flat terrain, elliptical, water aerobics.\n\n")
	b.WriteString("**Strength program:** 2-3 sessions per week, full-body functional movements, 48 hours between sessions. ")
	b.WriteString("Starter routine: bodyweight squats 2x8-12, wall push-ups 2x5-10, band rows 2x8-12, plank 2x15-30s, glute bridges 2x10-15.\n\n")

	if len(notes) > 0 {
		b.WriteString("Marker-specific precautions:\n\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	b.WriteString("Progression: weeks 1-2 establish consistency; weeks 3-4 add 5 minutes per session; weeks 5-8 add a strength day; weeks 9-12 raise intensity.\n\n")
	b.WriteString("Stop immediately and seek medical attention for chest pain, unusual shortness of breath, dizziness, irregular heartbeat, or nausea during exercise.\n")

	return b.String()
}
