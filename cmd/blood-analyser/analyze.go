// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/advice"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/agents"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/history"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/markers"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/render"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/report"
	"github.com/prakhar1009/blood-test-analyser-debug/internal/secrets"
	"github.com/prakhar1009/blood-test-analyser-debug/pkg/types"
)

const defaultQuery = "Provide a comprehensive analysis of my blood test results with specific recommendations"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [report.pdf]",
	Short: "Run the full analysis pipeline on a blood-test report",
	Long: `Analyze extracts the text layer of a PDF blood-test report, detects
laboratory markers, and runs three sequential agents (medical doctor,
clinical nutritionist, exercise physiologist) over the content. The
result is saved as a markdown report and summarised on the terminal.

With --offline the agents are skipped and the report contains only the
rule-derived nutrition and exercise guidance.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := analysisConfig()
	out := outputConfig()
	histCfg := historyConfigFromViper()

	printer := render.NewPrinter(os.Stdout, out.NoColor)
	printer.Banner()

	rep, err := report.Read(args[0])
	if err != nil {
		return err
	}
	printer.Infof("extracted %d of %d page(s), %d characters", len(rep.Pages), rep.PageCount, len(rep.Text))

	set := markers.Extract(rep.Text)
	printer.Infof("detected %d marker(s)", len(set))

	nutrition := advice.Nutrition(set)
	exercise := advice.Exercise(set)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	a := &types.Analysis{
		CreatedAt:  start,
		SourceFile: rep.Path,
		Query:      cfg.Query,
		Markers:    set,
	}

	if cfg.Offline {
		a.Sections = []types.Section{
			{Agent: "rule-engine", Title: "Nutrition Recommendations", Content: nutrition},
			{Agent: "rule-engine", Title: "Exercise Plan", Content: exercise},
		}
	} else {
		backend, err := buildBackend(cfg)
		if err != nil {
			return err
		}
		a.Backend = backend.Name()
		a.Model = cfg.Model

		pipeline := &agents.Pipeline{
			Backend:        backend,
			MaxRetries:     cfg.MaxRetries,
			MaxTokens:      cfg.MaxTokens,
			Temperature:    cfg.Temperature,
			MaxPromptBytes: cfg.MaxPromptBytes,
			Progress:       printer.Out(),
		}
		sections, err := pipeline.Run(ctx, agents.Input{
			ReportText:     rep.Text,
			Query:          cfg.Query,
			Markers:        set,
			NutritionNotes: nutrition,
			ExerciseNotes:  exercise,
		})
		if err != nil {
			return fmt.Errorf("analysis pipeline: %w", err)
		}
		a.Sections = sections
	}
	a.Elapsed = time.Since(start)

	path, err := render.Save(out.ReportsDir, a, rep.Preview(1000))
	if err != nil {
		return err
	}
	a.ReportPath = path

	if !histCfg.Disabled {
		if err := recordHistory(ctx, histCfg, a); err != nil {
			printer.Warnf("history not recorded: %v", err)
		}
	}

	printer.Summary(a)
	return nil
}

func recordHistory(ctx context.Context, cfg types.HistoryConfig, a *types.Analysis) error {
	store, err := history.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Save(ctx, a)
	return err
}

// buildBackend constructs the configured provider backend, resolving the
// API key from the --api-key flag, .secrets/, or the environment.
func buildBackend(cfg types.AnalysisConfig) (agents.Backend, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Backend {
	case "anthropic":
		key := secrets.Resolve(loadedSecrets, cfg.APIKey, "anthropic-api-key", "ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("anthropic API key required: use --api-key, .secrets/anthropic-api-key, or ANTHROPIC_API_KEY")
		}
		return &agents.AnthropicBackend{APIKey: key, Model: cfg.Model, Client: client}, nil
	case "openai":
		key := secrets.Resolve(loadedSecrets, cfg.APIKey, "openai-api-key", "OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("openai API key required: use --api-key, .secrets/openai-api-key, or OPENAI_API_KEY")
		}
		return &agents.OpenAIBackend{APIKey: key, Model: cfg.Model, Client: client}, nil
	case "ollama":
		return agents.NewOllamaBackend(cfg.Model)
	default:
		return nil, fmt.Errorf("unknown backend %q: use anthropic, openai, or ollama", cfg.Backend)
	}
}

func analysisConfig() types.AnalysisConfig {
	cfg := types.AnalysisConfig{
		Query:          viper.GetString("analysis.query"),
		Offline:        viper.GetBool("analysis.offline"),
		MaxPromptBytes: viper.GetInt("analysis.max_prompt_bytes"),
	}
	cfg.Backend = viper.GetString("analysis.backend")
	cfg.Model = viper.GetString("analysis.model")
	cfg.APIKey = viper.GetString("analysis.api_key")
	cfg.MaxRetries = viper.GetInt("analysis.max_retries")
	cfg.MaxTokens = viper.GetInt("analysis.max_tokens")
	cfg.Temperature = viper.GetFloat64("analysis.temperature")
	cfg.Timeout = viper.GetDuration("analysis.timeout")

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Backend)
	}
	return cfg
}

func defaultModel(backend string) string {
	switch backend {
	case "anthropic":
		return "claude-sonnet-4-5-20250929"
	case "ollama":
		return "llama3.1"
	default:
		return "gpt-4o-mini"
	}
}

func outputConfig() types.OutputConfig {
	return types.OutputConfig{
		ReportsDir: viper.GetString("output.reports_dir"),
		NoColor:    viper.GetBool("output.no_color"),
	}
}

func historyConfigFromViper() types.HistoryConfig {
	return types.HistoryConfig{
		HistoryDir: viper.GetString("history.history_dir"),
		MaxResults: viper.GetInt("history.max_results"),
		Disabled:   viper.GetBool("history.disabled"),
	}
}

func init() {
	f := analyzeCmd.Flags()
	f.String("query", defaultQuery, "free-text question guiding the analysis")
	f.String("backend", "openai", "LLM provider: anthropic, openai, or ollama")
	f.String("model", "", "model identifier (default depends on backend)")
	f.String("api-key", "", "provider API key (overrides .secrets/ and environment)")
	f.Int("max-retries", 3, "retry attempts per agent call")
	f.Int("max-tokens", 4096, "response token cap per agent")
	f.Float64("temperature", 0.1, "sampling temperature")
	f.Duration("timeout", 60*time.Second, "per-request HTTP timeout")
	f.Int("max-prompt-bytes", 3000, "report text cap per agent prompt")
	f.Bool("offline", false, "skip the agents; report rule-derived guidance only")
	f.String("reports-dir", "reports", "directory for markdown reports")
	f.Bool("no-color", false, "disable styled terminal output")
	f.String("history-dir", "history", "directory for the analysis history database")
	f.Bool("no-history", false, "do not record this analysis in history")

	viper.BindPFlag("analysis.query", f.Lookup("query"))
	viper.BindPFlag("analysis.backend", f.Lookup("backend"))
	viper.BindPFlag("analysis.model", f.Lookup("model"))
	viper.BindPFlag("analysis.api_key", f.Lookup("api-key"))
	viper.BindPFlag("analysis.max_retries", f.Lookup("max-retries"))
	viper.BindPFlag("analysis.max_tokens", f.Lookup("max-tokens"))
	viper.BindPFlag("analysis.temperature", f.Lookup("temperature"))
	viper.BindPFlag("analysis.timeout", f.Lookup("timeout"))
	viper.BindPFlag("analysis.max_prompt_bytes", f.Lookup("max-prompt-bytes"))
	viper.BindPFlag("analysis.offline", f.Lookup("offline"))
	viper.BindPFlag("output.reports_dir", f.Lookup("reports-dir"))
	viper.BindPFlag("output.no_color", f.Lookup("no-color"))
	viper.BindPFlag("history.history_dir", f.Lookup("history-dir"))
	viper.BindPFlag("history.disabled", f.Lookup("no-history"))

	rootCmd.AddCommand(analyzeCmd)
}
