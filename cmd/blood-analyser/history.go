// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/history"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/render"
	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past analyses (list, show, search, trend, export)",
	Long: `History queries the local SQLite database of past analyses. Use
subcommands to list recent runs, show one in full, search narratives
with full-text queries, follow one marker across reports, or export
everything to YAML.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No analyses recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-26s  %-10s  %s\n",
		"ID", "Date", "Source", "Backend", "Report")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range records {
		source := filepath.Base(r.SourceFile)
		if len(source) > 26 {
			source = source[:23] + "..."
		}
		backend := r.Backend
		if backend == "" {
			backend = "offline"
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-26s  %-10s  %s\n",
			r.ID[:8], r.CreatedAt.Format("2006-01-02 15:04"), source, backend, filepath.Base(r.ReportPath))
	}

	fmt.Fprintf(os.Stdout, "\n%d analyses\n", len(records))
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one analysis in full, including markers and narrative",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Printf("ID:      %s\n", r.ID)
	fmt.Printf("Date:    %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Source:  %s\n", r.SourceFile)
	fmt.Printf("Query:   %s\n", r.Query)
	if r.Backend != "" {
		fmt.Printf("Backend: %s (%s)\n", r.Backend, r.Model)
	}
	fmt.Printf("Report:  %s\n", r.ReportPath)

	if len(r.Markers) > 0 {
		fmt.Println("\nMarkers:")
		for _, name := range r.Markers.Names() {
			m := r.Markers[name]
			fmt.Printf("  %-14s %g %s  %s\n", name, m.Value, m.Unit, render.StatusGlyph(m.Status))
		}
	}

	fmt.Println("\nNarrative:")
	fmt.Println(r.Narrative)
	return nil
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over stored analysis narratives",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%s  %s  %s\n", r.ID[:8], r.CreatedAt.Format("2006-01-02"), filepath.Base(r.SourceFile))
		fmt.Printf("    %s\n", r.Snippet)
	}
	fmt.Printf("\n%d matches\n", len(results))
	return nil
}

// --- trend subcommand ---

var historyTrendCmd = &cobra.Command{
	Use:   "trend [marker]",
	Short: "Show one marker's values across all recorded analyses",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryTrend,
}

func runHistoryTrend(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(args[0])
	if !markers.Known(name) {
		return fmt.Errorf("unknown marker %q", name)
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	points, err := store.Trend(context.Background(), name)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}

	if len(points) == 0 {
		fmt.Printf("No recorded readings for %s.\n", name)
		return nil
	}

	fmt.Printf("%s (reference %s)\n\n", name, markers.FormatRange(name))
	for _, p := range points {
		fmt.Printf("%s  %8g %-7s  %s\n",
			p.CreatedAt.Format("2006-01-02"), p.Value, p.Unit, render.StatusGlyph(p.Status))
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all recorded analyses to YAML",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.ExportYAML(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	dir, _ := cmd.Flags().GetString("history-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return history.NewStore(types.HistoryConfig{
		HistoryDir: dir,
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "history", "directory containing the history database")
	historyCmd.PersistentFlags().Int("max-results", 20, "maximum number of results")
	historyCmd.PersistentFlags().Bool("json", false, "output results as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyTrendCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
