package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"searchlight-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/openai")

const DefaultModel = "gpt-4o-mini"

// Models the chat surface lets callers pick from.
var Models = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4-turbo",
}

type Client struct {
	http    *resty.Client
	raw     *http.Client
	baseURL string
	apiKey  string
}

func NewClient(apiKey string) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetAuthToken(apiKey)
	client.SetTimeout(time.Second * 120)
	telemetry.InstrumentResty(client, "lib/openai")

	return &Client{
		http:    client,
		raw:     &http.Client{Timeout: time.Minute * 5},
		baseURL: "https://api.openai.com/v1",
		apiKey:  apiKey,
	}
}

// SetBaseURL points the client at a different endpoint, used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
	c.http.SetBaseURL(u)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

func (r *Request) applyDefaults() {
	if r.Model == "" {
		r.Model = DefaultModel
	}
	if r.Temperature == 0 {
		r.Temperature = 0.7
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = 2000
	}
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one synchronous chat completion and returns the
// assistant message content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := tracer.Start(ctx, "Complete")
	defer span.End()

	req.applyDefaults()
	req.Stream = false
	span.SetAttributes(attribute.String("model", req.Model))

	var body completionResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		SetError(&body).
		Post("/chat/completions")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if res.IsError() {
		msg := res.Status()
		if body.Error != nil {
			msg = body.Error.Message
		}
		err := fmt.Errorf("openai: %s", msg)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if len(body.Choices) == 0 {
		err := fmt.Errorf("openai: response carried no choices")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return body.Choices[0].Message.Content, nil
}
