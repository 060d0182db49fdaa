package insights

import (
	"context"
	"errors"
	"net/url"
	"time"

	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/lib/openai"
	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/seoaudit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/insights")

// the narrow views of the data clients the service needs. the real
// clients satisfy these, tests substitute fakes.
type TrafficAPI interface {
	RunReport(ctx context.Context, query ga4.Query) (*ga4.Report, error)
}

type AuditAPI interface {
	Run(ctx context.Context, pageURL string) (*seoaudit.Audit, error)
}

type ChatAPI interface {
	Complete(ctx context.Context, req openai.Request) (string, error)
	Stream(ctx context.Context, req openai.Request) (<-chan openai.Chunk, error)
}

type Service struct {
	traffic TrafficAPI
	search  gsc.Searcher
	auditor AuditAPI
	llm     ChatAPI
	model   string

	// overridable clock for tests
	now func() time.Time
}

type Options struct {
	Traffic TrafficAPI
	Search  gsc.Searcher
	Auditor AuditAPI
	LLM     ChatAPI
	Model   string
}

func NewService(opts Options) *Service {
	model := opts.Model
	if model == "" {
		model = openai.DefaultModel
	}
	return &Service{
		traffic: opts.Traffic,
		search:  opts.Search,
		auditor: opts.Auditor,
		llm:     opts.LLM,
		model:   model,
		now:     timezone.Now,
	}
}

func pagePath(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" {
		return pageURL
	}
	return u.Path
}

func asStatusError(err error, target *seoaudit.StatusError) bool {
	return errors.As(err, target)
}

// Ask builds the data context for a question and runs one synchronous
// completion over it.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "Ask")
	defer span.End()

	req, err := s.buildRequest(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	answer, err := s.llm.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return answer, nil
}

// AskStream is Ask with token streaming.
func (s *Service) AskStream(ctx context.Context, question string) (<-chan openai.Chunk, error) {
	ctx, span := tracer.Start(ctx, "AskStream")
	defer span.End()

	req, err := s.buildRequest(ctx, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stream, err := s.llm.Stream(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return stream, nil
}

func (s *Service) buildRequest(ctx context.Context, question string) (openai.Request, error) {
	dataContext, err := s.BuildContext(ctx, question)
	if err != nil {
		return openai.Request{}, err
	}

	triggers := DetectTriggers(question)
	return openai.Request{
		Model: s.model,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(question, dataContext, triggers)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}, nil
}
