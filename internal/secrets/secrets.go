// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: anthropic-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// knownKeys are the secret files the application consults. Anything
// else in the directory is ignored.
var knownKeys = map[string]bool{
	"anthropic-api-key": true,
	"openai-api-key":    true,
}

// Load reads the supported key files in dir and returns a map of
// filename to trimmed contents. Files with other names are ignored. A
// missing directory or missing files are not errors; Load returns an
// empty map. Unreadable files produce a warning on stderr but do not
// abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !knownKeys[name] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns the first non-empty value among an explicitly supplied
// override, the loaded secret named key, and the environment variable
// envVar. API keys can therefore come from a flag, the .secrets/
// directory, or the environment, in that order.
func Resolve(loaded map[string]string, override, key, envVar string) string {
	if override != "" {
		return override
	}
	if v, ok := loaded[key]; ok && v != "" {
		return v
	}
	return os.Getenv(envVar)
}
