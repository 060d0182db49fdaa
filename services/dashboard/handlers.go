package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/services/htmlgen"
	"searchlight-backend/services/recommend"
	"searchlight-backend/services/reports"

	"go.opentelemetry.io/otel/codes"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return 30
	}
	return days
}

// KpiResponse is the headline metrics with previous-period deltas.
type KpiResponse struct {
	Days int `json:"days"`

	Traffic         ga4.Summary `json:"traffic"`
	PreviousTraffic ga4.Summary `json:"previous_traffic"`
	SessionsChange  float64     `json:"sessions_change_pct"`

	Search     gsc.Aggregate  `json:"search"`
	Comparison gsc.Comparison `json:"search_comparison"`
}

func pct(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func (s *Service) handleKpi(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Kpi")
	defer span.End()

	days := queryDays(r)
	now := s.now()

	const dateFormat = "2006-01-02"
	currentStart := now.AddDate(0, 0, -days)
	currentEnd := now
	previousStart := now.AddDate(0, 0, -days*2)
	previousEnd := currentStart.AddDate(0, 0, -1)

	current, err := s.traffic.RunReport(ctx, ga4.Query{
		StartDate: currentStart.Format(dateFormat),
		EndDate:   currentEnd.Format(dateFormat),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	previous, err := s.traffic.RunReport(ctx, ga4.Query{
		StartDate: previousStart.Format(dateFormat),
		EndDate:   previousEnd.Format(dateFormat),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	currentRows, err := s.search.SearchAnalytics(ctx, gsc.Query{
		StartDate:  currentStart.Format(dateFormat),
		EndDate:    currentEnd.Format(dateFormat),
		Dimensions: []string{"query", "page"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	previousRows, err := s.search.SearchAnalytics(ctx, gsc.Query{
		StartDate:  previousStart.Format(dateFormat),
		EndDate:    previousEnd.Format(dateFormat),
		Dimensions: []string{"query", "page"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := KpiResponse{
		Days:            days,
		Traffic:         ga4.Summarize(current),
		PreviousTraffic: ga4.Summarize(previous),
		Search:          gsc.Totals(currentRows),
		Comparison:      gsc.Compare(gsc.Totals(currentRows), gsc.Totals(previousRows)),
	}
	resp.SessionsChange = pct(resp.Traffic.Sessions, resp.PreviousTraffic.Sessions)
	writeJSON(w, http.StatusOK, resp)
}

// trendSources maps metric names to the snapshot source they live in.
var trendSources = map[string]string{
	"sessions":    reports.SourceTraffic,
	"users":       reports.SourceTraffic,
	"pageviews":   reports.SourceTraffic,
	"bounce_rate": reports.SourceTraffic,
	"conversions": reports.SourceTraffic,
	"revenue":     reports.SourceTraffic,
	"clicks":      reports.SourceSearch,
	"impressions": reports.SourceSearch,
	"ctr":         reports.SourceSearch,
	"position":    reports.SourceSearch,
}

type TrendResponse struct {
	Metric string                `json:"metric"`
	Days   int                   `json:"days"`
	Points []reports.SeriesPoint `json:"points"`
}

func (s *Service) handleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Trend")
	defer span.End()

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "sessions"
	}
	source, ok := trendSources[metric]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown metric: "+metric)
		return
	}
	days := queryDays(r)

	points, err := s.series.PullSeries(ctx, source, metric, s.now().AddDate(0, 0, -days))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TrendResponse{
		Metric: metric,
		Days:   days,
		Points: points,
	})
}

func (s *Service) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Audit")
	defer span.End()

	var req struct {
		URL string `json:"url"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"url\": \"...\"}")
		return
	}

	audit, err := s.auditor.Run(ctx, req.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (s *Service) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Chat")
	defer span.End()

	var req struct {
		Question string `json:"question"`
		Site     string `json:"site"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"question\": \"...\"}")
		return
	}
	backend, ok := s.chatBackend(req.Site)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown site: "+req.Site)
		return
	}

	answer, err := backend.Ask(ctx, req.Question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Service) handleConvert(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "Convert")
	defer span.End()

	article, err := htmlgen.ParseCSV(r.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	err = htmlgen.Render(&buf, article)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Service) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Recommendations")
	defer span.End()

	var req struct {
		Article  recommend.Article   `json:"article"`
		Products []recommend.Product `json:"products"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, "products must not be empty")
		return
	}

	recs := s.engine.Recommend(ctx, req.Article, req.Products)
	writeJSON(w, http.StatusOK, map[string]any{
		"article_id":      req.Article.ID,
		"recommendations": recs,
		"quality":         recommend.AnalyzeQuality(recs),
	})
}
