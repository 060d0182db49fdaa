package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

// Chunk is one unit of a streamed completion: a token delta, or a
// terminal error. the channel closes after either the [DONE] marker
// or an Err chunk.
type Chunk struct {
	Delta string
	Err   error
}

type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream runs a chat completion with stream: true and relays token
// deltas over the returned channel. cancelling the context stops the
// stream. this uses net/http directly since the body has to be
// consumed incrementally.
func (c *Client) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	ctx, span := tracer.Start(ctx, "Stream")

	req.applyDefaults()
	req.Stream = true

	payload, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	res, err := c.raw.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		err := fmt.Errorf("openai: stream failed: %s: %s", res.Status, string(body))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer res.Body.Close()
		defer span.End()

		err := relaySSE(ctx, res.Body, out)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			select {
			case out <- Chunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// relaySSE parses `data: {...}` lines off the body and pushes token
// deltas until [DONE] or EOF.
func relaySSE(ctx context.Context, body io.Reader, out chan<- Chunk) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}

		var event streamEvent
		err := json.Unmarshal([]byte(data), &event)
		if err != nil {
			return fmt.Errorf("openai: malformed stream event: %w", err)
		}
		if len(event.Choices) == 0 {
			continue
		}
		delta := event.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		select {
		case out <- Chunk{Delta: delta}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
