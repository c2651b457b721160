// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for components that call an LLM API.
type AIConfig struct {
	// Backend selects the provider: "anthropic", "openai", or "ollama".
	Backend string `json:"backend" yaml:"backend"`

	// Model is the model identifier (e.g. "gpt-4o-mini",
	// "claude-sonnet-4-5-20250929", "llama3.1").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider. Unused by ollama.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens caps the length of each agent response (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature controls response randomness (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// Timeout is the per-request HTTP timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AnalysisConfig holds settings for the analysis pipeline.
type AnalysisConfig struct {
	AIConfig `yaml:",inline"`

	// Query is the free-text question guiding the analysis.
	Query string `json:"query" yaml:"query"`

	// Offline skips the LLM agents and renders only the deterministic
	// guidance derived from detected markers.
	Offline bool `json:"offline" yaml:"offline"`

	// MaxPromptBytes caps how much report text is embedded in each agent
	// prompt (default 3000).
	MaxPromptBytes int `json:"max_prompt_bytes" yaml:"max_prompt_bytes"`
}

// OutputConfig holds settings for report rendering.
type OutputConfig struct {
	// ReportsDir is the directory where markdown reports are written
	// (default "reports").
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`

	// NoColor disables styled terminal output.
	NoColor bool `json:"no_color" yaml:"no_color"`
}

// HistoryConfig holds settings for the local analysis history.
type HistoryConfig struct {
	// HistoryDir is the directory containing the history database
	// (default "history").
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Disabled skips recording analyses.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	History  HistoryConfig  `json:"history" yaml:"history"`
}
