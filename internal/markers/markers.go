// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markers detects numeric laboratory values in report text via
// pattern matching and classifies them against reference ranges.
package markers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

// Canonical marker names.
const (
	Hemoglobin    = "hemoglobin"
	Cholesterol   = "cholesterol"
	Glucose       = "glucose"
	Protein       = "protein"
	Albumin       = "albumin"
	Creatinine    = "creatinine"
	HDL           = "hdl"
	LDL           = "ldl"
	Triglycerides = "triglycerides"
	BUN           = "bun"
	Sodium        = "sodium"
	Potassium     = "potassium"
)

// definition describes how one marker is recognized. Patterns are ordered
// most specific (label with unit) to least specific (bare abbreviation);
// the first match whose captured value parses and falls inside the
// plausibility bounds wins, and scanning for that marker stops.
type definition struct {
	name     string
	unit     string
	min, max float64
	patterns []*regexp.Regexp
}

func pats(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// definitions is scanned in order for every report. Plausibility bounds
// reject numbers matched out of context (dates, patient IDs, reference
// ranges printed beside a result).
var definitions = []definition{
	{
		name: Hemoglobin, unit: "g/dL", min: 5, max: 25,
		patterns: pats(
			`hemoglobin[:\s]*(\d+\.?\d*)\s*g/dl`,
			`hgb[:\s]*(\d+\.?\d*)\s*g/dl`,
			`hb[:\s]*(\d+\.?\d*)\s*g/dl`,
			`hemoglobin\s*(?:level)?[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)hb\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Cholesterol, unit: "mg/dL", min: 50, max: 500,
		patterns: pats(
			`total\s*cholesterol[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`cholesterol\s*(?:total)?[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`t\.?\s*chol[:\s]*(\d+\.?\d*)`,
			`cholesterol[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)chol\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Glucose, unit: "mg/dL", min: 30, max: 600,
		patterns: pats(
			`(?:fasting|blood)\s*glucose[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`glucose[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`glucose[:\s]*(\d+\.?\d*)`,
			`blood\s*sugar[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)glu\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Protein, unit: "g/dL", min: 2, max: 15,
		patterns: pats(
			`total\s*protein[:\s]*(\d+\.?\d*)\s*g/dl`,
			`protein\s*(?:total)?[:\s]*(\d+\.?\d*)\s*g/dl`,
			`t\.?\s*protein[:\s]*(\d+\.?\d*)`,
			`protein[:\s]*(\d+\.?\d*)`,
		),
	},
	{
		name: Albumin, unit: "g/dL", min: 2, max: 15,
		patterns: pats(
			`albumin[:\s]*(\d+\.?\d*)\s*g/dl`,
			`albumin[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)alb\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Creatinine, unit: "mg/dL", min: 0.1, max: 15,
		patterns: pats(
			`creatinine[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`creatinine[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)creat\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: HDL, unit: "mg/dL", min: 10, max: 300,
		patterns: pats(
			`hdl\s*(?:cholesterol)?[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`hdl\s*cholesterol[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)hdl\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: LDL, unit: "mg/dL", min: 10, max: 300,
		patterns: pats(
			`ldl\s*(?:cholesterol)?[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`ldl\s*cholesterol[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)ldl\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Triglycerides, unit: "mg/dL", min: 20, max: 1000,
		patterns: pats(
			`triglycerides[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`triglycerides[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)trig\s*:?\s*(\d+\.?\d*)`,
			`(?:^|\s)tg\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: BUN, unit: "mg/dL", min: 5, max: 100,
		patterns: pats(
			`bun[:\s]*(\d+\.?\d*)\s*mg/dl`,
			`blood\s*urea\s*nitrogen[:\s]*(\d+\.?\d*)`,
			`(?:^|\s)bun\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Sodium, unit: "mEq/L", min: 100, max: 200,
		patterns: pats(
			`sodium[:\s]*(\d+\.?\d*)\s*(?:meq/l|mmol/l)?`,
			`(?:^|\s)na\s*:?\s*(\d+\.?\d*)`,
		),
	},
	{
		name: Potassium, unit: "mEq/L", min: 1, max: 10,
		patterns: pats(
			`potassium[:\s]*(\d+\.?\d*)\s*(?:meq/l|mmol/l)?`,
			`(?:^|\s)k\s*:?\s*(\d+\.?\d*)`,
		),
	},
}

// Extract scans report text for known markers. Matching is
// case-insensitive over a lowercased copy of the text. For each marker
// the first plausibility-validated match wins; markers that never match
// are simply absent from the result.
func Extract(text string) types.MarkerSet {
	set := make(types.MarkerSet)
	if strings.TrimSpace(text) == "" {
		return set
	}

	lower := strings.ToLower(text)

	for _, def := range definitions {
		for _, pat := range def.patterns {
			value, ok := firstPlausible(pat, lower, def.min, def.max)
			if !ok {
				continue
			}
			set[def.name] = types.Marker{
				Name:   def.name,
				Value:  value,
				Unit:   def.unit,
				Status: Classify(def.name, value),
			}
			break
		}
	}

	return set
}

// firstPlausible returns the first captured value of pat in text that
// parses as a float inside [min, max].
func firstPlausible(pat *regexp.Regexp, text string, min, max float64) (float64, bool) {
	for _, m := range pat.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if value >= min && value <= max {
			return value, true
		}
	}
	return 0, false
}

// Unit returns the conventional unit for a canonical marker name, or ""
// if the marker is unknown.
func Unit(name string) string {
	for _, def := range definitions {
		if def.name == name {
			return def.unit
		}
	}
	return ""
}

// Known reports whether name is a canonical marker name.
func Known(name string) bool {
	for _, def := range definitions {
		if def.name == name {
			return true
		}
	}
	return false
}
