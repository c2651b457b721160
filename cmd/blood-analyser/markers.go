// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/render"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/report"
)

var markersCmd = &cobra.Command{
	Use:   "markers [report.pdf]",
	Short: "Extract laboratory markers from a report without running agents",
	Long: `Markers reads a PDF blood-test report and prints the laboratory values
detected by pattern matching, classified against reference ranges. No
LLM calls are made.`,
	Args: cobra.ExactArgs(1),
	RunE: runMarkers,
}

func runMarkers(cmd *cobra.Command, args []string) error {
	rep, err := report.Read(args[0])
	if err != nil {
		return err
	}

	set := markers.Extract(rep.Text)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}

	if len(set) == 0 {
		fmt.Println("No markers detected.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-8s  %-7s  %-16s  %s\n",
		"Marker", "Value", "Unit", "Reference", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))

	for _, name := range set.Names() {
		m := set[name]
		fmt.Fprintf(os.Stdout, "%-14s  %-8.4g  %-7s  %-16s  %s\n",
			name, m.Value, m.Unit, markers.FormatRange(name), render.StatusGlyph(m.Status))
	}

	fmt.Fprintf(os.Stdout, "\n%d marker(s) detected\n", len(set))
	return nil
}

func init() {
	markersCmd.Flags().Bool("json", false, "output markers as JSON")

	rootCmd.AddCommand(markersCmd)
}
