// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the blood-analyser CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prakhar1009/blood-test-analyser-debug/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the blood-analyser CLI.
var rootCmd = &cobra.Command{
	Use:   "blood-analyser",
	Short: "Analyse PDF blood-test reports with LLM agents",
	Long: `blood-analyser reads a PDF blood-test report, detects laboratory markers
with pattern matching, and runs the text through three sequential agents
(medical doctor, clinical nutritionist, exercise physiologist) to produce
a markdown analysis report.

Use analyze for the full pipeline, markers for extraction only, and
history to query past analyses.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./blood-analyser.yaml or ~/.config/blood-analyser/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("blood-analyser")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "blood-analyser"))
		}
	}

	viper.SetEnvPrefix("BLOOD_ANALYSER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
