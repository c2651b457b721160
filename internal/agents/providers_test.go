// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicComplete(t *testing.T) {
	var gotReq anthropicRequest
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "Your hemoglobin is low."}},
		})
	}))
	defer srv.Close()

	orig := anthropicAPIURL
	anthropicAPIURL = srv.URL
	t.Cleanup(func() { anthropicAPIURL = orig })

	b := &AnthropicBackend{APIKey: "ak-test", Model: "claude-sonnet-4-5-20250929", Client: srv.Client()}
	got, err := b.Complete(context.Background(), Request{
		System:      "You are a physician.",
		Prompt:      "Interpret these values.",
		MaxTokens:   1024,
		Temperature: 0.1,
	})

	require.NoError(t, err)
	assert.Equal(t, "Your hemoglobin is low.", got)

	assert.Equal(t, "ak-test", gotHeaders.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	assert.Equal(t, "claude-sonnet-4-5-20250929", gotReq.Model)
	assert.Equal(t, "You are a physician.", gotReq.System)
	assert.Equal(t, 1024, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestAnthropicCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{
			name: "non-200 status surfaces body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": {"message": "invalid x-api-key"}}`))
			},
			errMsg: "401",
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(anthropicResponse{})
			},
			errMsg: "no text content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			orig := anthropicAPIURL
			anthropicAPIURL = srv.URL
			t.Cleanup(func() { anthropicAPIURL = orig })

			b := &AnthropicBackend{APIKey: "k", Model: "m", Client: srv.Client()}
			_, err := b.Complete(context.Background(), Request{Prompt: "p", MaxTokens: 10})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestOpenAIComplete(t *testing.T) {
	var gotReq openAIRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Eat more lentils."}}]}`))
	}))
	defer srv.Close()

	orig := openAIAPIURL
	openAIAPIURL = srv.URL
	t.Cleanup(func() { openAIAPIURL = orig })

	b := &OpenAIBackend{APIKey: "sk-test", Model: "gpt-4o-mini", Client: srv.Client()}
	got, err := b.Complete(context.Background(), Request{
		System:      "You are a dietitian.",
		Prompt:      "Plan meals.",
		MaxTokens:   512,
		Temperature: 0.1,
	})

	require.NoError(t, err)
	assert.Equal(t, "Eat more lentils.", got)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "You are a dietitian.", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, 512, gotReq.MaxTokens)
}

func TestOpenAICompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("overloaded"))
			},
			errMsg: "503",
		},
		{
			name: "error payload with 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error": {"message": "model not found", "type": "invalid_request_error"}}`))
			},
			errMsg: "model not found",
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
			errMsg: "no completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			orig := openAIAPIURL
			openAIAPIURL = srv.URL
			t.Cleanup(func() { openAIAPIURL = orig })

			b := &OpenAIBackend{APIKey: "k", Model: "m", Client: srv.Client()}
			_, err := b.Complete(context.Background(), Request{Prompt: "p", MaxTokens: 10})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
