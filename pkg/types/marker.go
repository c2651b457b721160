// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for the blood-test
// analysis pipeline: configuration, detected markers, and analysis results.
package types

import "sort"

// MarkerStatus classifies a marker value against its reference range.
type MarkerStatus string

const (
	StatusNormal MarkerStatus = "normal"
	StatusLow    MarkerStatus = "low"
	StatusHigh   MarkerStatus = "high"

	// StatusUnknown marks values for markers without a configured
	// reference range; they are surfaced for narrative interpretation.
	StatusUnknown MarkerStatus = "unknown"
)

// Marker is a single laboratory value detected in a report.
type Marker struct {
	// Name is the canonical marker name (e.g. "hemoglobin").
	Name string `json:"name" yaml:"name"`

	// Value is the numeric reading as printed in the report.
	Value float64 `json:"value" yaml:"value"`

	// Unit is the conventional unit for the marker (e.g. "g/dL").
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Status is the classification against the reference range.
	Status MarkerStatus `json:"status" yaml:"status"`
}

// MarkerSet maps canonical marker names to detected values.
type MarkerSet map[string]Marker

// Names returns the detected marker names in sorted order.
func (s MarkerSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Abnormal returns the subset of markers whose status is low or high,
// keyed by name.
func (s MarkerSet) Abnormal() MarkerSet {
	out := make(MarkerSet)
	for name, m := range s {
		if m.Status == StatusLow || m.Status == StatusHigh {
			out[name] = m
		}
	}
	return out
}
