// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markers

import (
	"fmt"
	"strconv"

	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

// Range is a reference interval for a marker. UpperOnly ranges (e.g.
// total cholesterol) classify only against the upper bound: anything at
// or below High is normal. Precision is the number of decimal places
// the bounds are declared at and carries through to display.
type Range struct {
	Low       float64
	High      float64
	Unit      string
	UpperOnly bool
	Precision int
}

// referenceRanges holds the reference intervals used for status
// classification. Markers without an entry classify as StatusUnknown and
// are left to narrative interpretation.
var referenceRanges = map[string]Range{
	Hemoglobin:    {Low: 12.0, High: 16.0, Unit: "g/dL", Precision: 1},
	Cholesterol:   {High: 200, Unit: "mg/dL", UpperOnly: true},
	Glucose:       {Low: 70, High: 99, Unit: "mg/dL"},
	Protein:       {Low: 6.0, High: 8.3, Unit: "g/dL", Precision: 1},
	Albumin:       {Low: 3.5, High: 5.0, Unit: "g/dL", Precision: 1},
	Creatinine:    {Low: 0.6, High: 1.3, Unit: "mg/dL", Precision: 1},
	Triglycerides: {High: 150, Unit: "mg/dL", UpperOnly: true},
	Sodium:        {Low: 135, High: 145, Unit: "mEq/L"},
	Potassium:     {Low: 3.5, High: 5.0, Unit: "mEq/L", Precision: 1},
}

// Reference returns the reference range for a marker name.
func Reference(name string) (Range, bool) {
	r, ok := referenceRanges[name]
	return r, ok
}

// Classify places value against the marker's reference range.
func Classify(name string, value float64) types.MarkerStatus {
	r, ok := referenceRanges[name]
	if !ok {
		return types.StatusUnknown
	}
	if value > r.High {
		return types.StatusHigh
	}
	if !r.UpperOnly && value < r.Low {
		return types.StatusLow
	}
	return types.StatusNormal
}

// FormatRange renders a reference range for display ("12.0-16.0 g/dL",
// "<= 200 mg/dL"). Bounds render at their declared precision. Returns
// "-" for markers without a configured range.
func FormatRange(name string) string {
	r, ok := referenceRanges[name]
	if !ok {
		return "-"
	}
	if r.UpperOnly {
		return fmt.Sprintf("<= %s %s", r.bound(r.High), r.Unit)
	}
	return fmt.Sprintf("%s-%s %s", r.bound(r.Low), r.bound(r.High), r.Unit)
}

func (r Range) bound(v float64) string {
	return strconv.FormatFloat(v, 'f', r.Precision, 64)
}
