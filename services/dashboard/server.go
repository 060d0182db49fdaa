package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/lib/openai"
	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/recommend"
	"searchlight-backend/services/reports"
	"searchlight-backend/services/seoaudit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/dashboard")

// the narrow views of the backing services the handlers need.
type TrafficAPI interface {
	RunReport(ctx context.Context, query ga4.Query) (*ga4.Report, error)
}

type AuditAPI interface {
	Run(ctx context.Context, pageURL string) (*seoaudit.Audit, error)
}

type InsightsAPI interface {
	Ask(ctx context.Context, question string) (string, error)
	AskStream(ctx context.Context, question string) (<-chan openai.Chunk, error)
}

type SeriesAPI interface {
	PullSeries(ctx context.Context, source, metric string, since time.Time) ([]reports.SeriesPoint, error)
}

type Options struct {
	Traffic  TrafficAPI
	Search   gsc.Searcher
	Auditor  AuditAPI
	Insights InsightsAPI
	// Sites routes chat requests that name a site to another
	// assistant. Requests without a site use Insights.
	Sites  map[string]InsightsAPI
	Series SeriesAPI
	Engine *recommend.Engine
}

type Service struct {
	traffic  TrafficAPI
	search   gsc.Searcher
	auditor  AuditAPI
	insights InsightsAPI
	sites    map[string]InsightsAPI
	series   SeriesAPI
	engine   *recommend.Engine

	// overridable clock for tests
	now func() time.Time
}

func NewService(opts Options) *Service {
	return &Service{
		traffic:  opts.Traffic,
		search:   opts.Search,
		auditor:  opts.Auditor,
		insights: opts.Insights,
		sites:    opts.Sites,
		series:   opts.Series,
		engine:   opts.Engine,
		now:      timezone.Now,
	}
}

// chatBackend picks the assistant for a site, the default one when
// the name is empty.
func (s *Service) chatBackend(site string) (InsightsAPI, bool) {
	if site == "" {
		return s.insights, true
	}
	backend, ok := s.sites[site]
	return backend, ok
}

// Router assembles the http api.
func Router(svc *Service, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(time.Minute * 2))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", svc.handleHealth)
		r.Get("/kpi", svc.handleKpi)
		r.Get("/trend", svc.handleTrend)
		r.Post("/audit", svc.handleAudit)
		r.Post("/chat", svc.handleChat)
		r.Post("/convert", svc.handleConvert)
		r.Post("/recommendations", svc.handleRecommendations)
	})
	router.Get("/ws/chat", svc.handleChatSocket)

	return router
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
