package openai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan Chunk) (string, error) {
	var b strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			return b.String(), chunk.Err
		}
		b.WriteString(chunk.Delta)
	}
	return b.String(), nil
}

func TestRelaySSE(t *testing.T) {
	body := strings.NewReader(`data: {"choices":[{"delta":{"content":"こん"}}]}

data: {"choices":[{"delta":{"content":"にちは"}}]}

data: {"choices":[{"delta":{}}]}

data: [DONE]
`)

	out := make(chan Chunk)
	go func() {
		defer close(out)
		err := relaySSE(context.Background(), body, out)
		require.NoError(t, err)
	}()

	text, err := collect(t, out)
	require.NoError(t, err)
	require.Equal(t, "こんにちは", text)
}

func TestRelaySSEMalformed(t *testing.T) {
	body := strings.NewReader("data: {not json}\n")

	out := make(chan Chunk)
	done := make(chan error, 1)
	go func() {
		defer close(out)
		done <- relaySSE(context.Background(), body, out)
	}()

	for range out {
	}
	require.Error(t, <-done)
}

func TestRelaySSECancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := strings.NewReader(`data: {"choices":[{"delta":{"content":"x"}}]}` + "\n")
	out := make(chan Chunk)
	done := make(chan error, 1)
	go func() {
		defer close(out)
		done <- relaySSE(ctx, body, out)
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on cancellation")
	}
}

func TestRequestDefaults(t *testing.T) {
	var req Request
	req.applyDefaults()
	require.Equal(t, DefaultModel, req.Model)
	require.Equal(t, 0.7, req.Temperature)
	require.Equal(t, 2000, req.MaxTokens)
}
