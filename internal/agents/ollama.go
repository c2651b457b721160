// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaBackend runs completions against a local Ollama server. The
// server address comes from OLLAMA_HOST via the client's environment
// lookup; no API key is involved.
type OllamaBackend struct {
	Model  string
	Client *api.Client
}

// NewOllamaBackend builds a backend from the environment.
func NewOllamaBackend(model string) (*OllamaBackend, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return &OllamaBackend{Model: model, Client: client}, nil
}

// Name returns the backend identifier.
func (b *OllamaBackend) Name() string { return "ollama" }

// Complete sends one chat request with streaming disabled and returns
// the accumulated response content.
func (b *OllamaBackend) Complete(ctx context.Context, req Request) (string, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:  b.Model,
		Stream: &stream,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	var out strings.Builder
	err := b.Client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("empty response from ollama model %s", b.Model)
	}
	return out.String(), nil
}
