// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agents runs the analysis pipeline: three role-scoped LLM agents
// (medical doctor, clinical nutritionist, exercise physiologist) invoked
// in sequence, each grounded in the report text, the detected markers,
// and the output of the agents before it.
package agents

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Request is one completion call to a provider.
type Request struct {
	// System is the role-scoped system prompt.
	System string

	// Prompt is the user-turn content.
	Prompt string

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// Backend abstracts the LLM provider so tests can supply a mock and the
// provider stays swappable. Each implementation handles a single
// completion request and returns the response text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// backoffBase controls the base duration for exponential backoff between
// failed completion attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// completeWithRetry calls the backend with exponential backoff.
func completeWithRetry(ctx context.Context, backend Backend, req Request, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
