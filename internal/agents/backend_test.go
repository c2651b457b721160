// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend returns scripted responses and records the requests it saw.
type mockBackend struct {
	responses []string
	errs      []error
	calls     []Request
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Complete(_ context.Context, req Request) (string, error) {
	i := len(m.calls)
	m.calls = append(m.calls, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func TestCompleteWithRetry(t *testing.T) {
	orig := backoffBase
	backoffBase = time.Millisecond
	t.Cleanup(func() { backoffBase = orig })

	t.Run("returns first success", func(t *testing.T) {
		b := &mockBackend{responses: []string{"analysis text"}}
		got, err := completeWithRetry(context.Background(), b, Request{Prompt: "p"}, 3)
		require.NoError(t, err)
		assert.Equal(t, "analysis text", got)
		assert.Len(t, b.calls, 1)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		b := &mockBackend{
			errs:      []error{fmt.Errorf("boom"), fmt.Errorf("boom")},
			responses: []string{"", "", "recovered"},
		}
		got, err := completeWithRetry(context.Background(), b, Request{}, 3)
		require.NoError(t, err)
		assert.Equal(t, "recovered", got)
		assert.Len(t, b.calls, 3)
	})

	t.Run("exhausts retries and wraps last error", func(t *testing.T) {
		b := &mockBackend{
			errs: []error{fmt.Errorf("e1"), fmt.Errorf("e2"), fmt.Errorf("e3")},
		}
		_, err := completeWithRetry(context.Background(), b, Request{}, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 retries")
		assert.Contains(t, err.Error(), "e3")
		assert.Len(t, b.calls, 3)
	})

	t.Run("honors context cancellation during backoff", func(t *testing.T) {
		backoffBase = time.Minute
		t.Cleanup(func() { backoffBase = time.Millisecond })

		ctx, cancel := context.WithCancel(context.Background())
		b := &mockBackend{errs: []error{fmt.Errorf("boom")}}

		done := make(chan error, 1)
		go func() {
			_, err := completeWithRetry(ctx, b, Request{}, 3)
			done <- err
		}()

		// Let the first attempt fail, then cancel while it backs off.
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("completeWithRetry did not return after cancellation")
		}
	})
}
