package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/reports/db"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type TrafficAPI interface {
	RunReport(ctx context.Context, query ga4.Query) (*ga4.Report, error)
}

type Generator struct {
	store   Store
	traffic TrafficAPI
	search  gsc.Searcher
	outDir  string
}

func NewGenerator(store Store, traffic TrafficAPI, search gsc.Searcher, outDir string) *Generator {
	if outDir == "" {
		outDir = filepath.Join("data", "processed")
	}
	return &Generator{
		store:   store,
		traffic: traffic,
		search:  search,
		outDir:  outDir,
	}
}

// Daily fetches yesterday's traffic and search totals and stores them
// as the day's snapshot.
func (g *Generator) Daily(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Daily")
	defer span.End()

	yesterday := timezone.Now().AddDate(0, 0, -1)
	date := yesterday.Format("2006-01-02")

	report, err := g.traffic.RunReport(ctx, ga4.Query{
		StartDate: date,
		EndDate:   date,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("daily traffic fetch: %w", err)
	}
	summary := ga4.Summarize(report)

	err = g.store.PushSnapshot(ctx, yesterday, SourceTraffic, map[string]float64{
		"sessions":    summary.Sessions,
		"users":       summary.Users,
		"pageviews":   summary.PageViews,
		"bounce_rate": summary.BounceRate,
		"conversions": summary.Conversions,
		"revenue":     summary.Revenue,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	rows, err := g.search.SearchAnalytics(ctx, gsc.Query{
		StartDate:  date,
		EndDate:    date,
		Dimensions: []string{"query", "page"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("daily search fetch: %w", err)
	}
	totals := gsc.Totals(rows)

	err = g.store.PushSnapshot(ctx, yesterday, SourceSearch, map[string]float64{
		"clicks":      totals.Clicks,
		"impressions": totals.Impressions,
		"ctr":         totals.Ctr,
		"position":    totals.Position,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// SummaryReport is the rollup handed to the cli, the mailer and the
// notion publisher.
type SummaryReport struct {
	GeneratedAt time.Time
	PeriodDays  int

	Traffic ga4.Summary
	Search  gsc.Aggregate

	TopPages   []gsc.Aggregate
	TopQueries []gsc.Aggregate

	Recommendations []string
}

// Summary fetches both sources over a trailing window and rolls them
// up with rule-based recommendations.
func (g *Generator) Summary(ctx context.Context, days int) (*SummaryReport, error) {
	ctx, span := tracer.Start(ctx, "Summary")
	defer span.End()

	if days <= 0 {
		days = 30
	}
	span.SetAttributes(attribute.Int("days", days))

	report, err := g.traffic.RunReport(ctx, ga4.Query{Days: days})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rows, err := g.search.SearchAnalytics(ctx, gsc.Query{
		Days:       days,
		Dimensions: []string{"query", "page"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := &SummaryReport{
		GeneratedAt: timezone.Now(),
		PeriodDays:  days,
		Traffic:     ga4.Summarize(report),
		Search:      gsc.Totals(rows),
		TopPages:    gsc.TopPages(rows, 10),
		TopQueries:  gsc.TopQueries(rows, 10),
	}
	out.Recommendations = recommendations(out)
	return out, nil
}

// recommendations derives the rule-based improvement list from the
// rolled up metrics.
func recommendations(r *SummaryReport) []string {
	var recs []string
	if r.Search.Position > 10 {
		recs = append(recs, "平均検索順位が10位以下です。主要ページのSEO改善(タイトル・内部リンク・コンテンツ拡充)を検討してください。")
	}
	if r.Traffic.BounceRate > 0.6 {
		recs = append(recs, "直帰率が60%を超えています。ランディングページのコンテンツと導線の見直しを検討してください。")
	}
	if r.Search.Impressions > 0 && r.Search.Ctr < 2 {
		recs = append(recs, "検索CTRが2%未満です。タイトルとメタディスクリプションの改善を検討してください。")
	}
	return recs
}

// RenderMarkdown formats a summary report in the layout the notion
// publisher and the mailer share.
func RenderMarkdown(r *SummaryReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# アクセス解析レポート (%d日間)\n\n", r.PeriodDays)
	fmt.Fprintf(&b, "生成日時: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "## トラフィック\n\n")
	fmt.Fprintf(&b, "- セッション: %.0f\n", r.Traffic.Sessions)
	fmt.Fprintf(&b, "- ユーザー: %.0f\n", r.Traffic.Users)
	fmt.Fprintf(&b, "- ページビュー: %.0f\n", r.Traffic.PageViews)
	fmt.Fprintf(&b, "- 直帰率: %.1f%%\n", r.Traffic.BounceRate*100)
	fmt.Fprintf(&b, "- コンバージョン: %.0f\n\n", r.Traffic.Conversions)

	fmt.Fprintf(&b, "## 検索パフォーマンス\n\n")
	fmt.Fprintf(&b, "- クリック: %.0f\n", r.Search.Clicks)
	fmt.Fprintf(&b, "- インプレッション: %.0f\n", r.Search.Impressions)
	fmt.Fprintf(&b, "- CTR: %.2f%%\n", r.Search.Ctr)
	fmt.Fprintf(&b, "- 平均順位: %.1f\n\n", r.Search.Position)

	if len(r.TopPages) > 0 {
		fmt.Fprintf(&b, "## 上位ページ\n\n")
		for _, page := range r.TopPages {
			fmt.Fprintf(&b, "- %s: クリック %.0f, CTR %.2f%%\n", page.Key, page.Clicks, page.Ctr)
		}
		b.WriteString("\n")
	}
	if len(r.TopQueries) > 0 {
		fmt.Fprintf(&b, "## 上位クエリ\n\n")
		for _, query := range r.TopQueries {
			fmt.Fprintf(&b, "- %s: クリック %.0f, 平均順位 %.1f\n", query.Key, query.Clicks, query.Position)
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "## 改善提案\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String()
}

// WriteMarkdown renders a summary to the output directory and records
// it in the report index.
func (g *Generator) WriteMarkdown(ctx context.Context, r *SummaryReport) (string, error) {
	ctx, span := tracer.Start(ctx, "WriteMarkdown")
	defer span.End()

	err := os.MkdirAll(g.outDir, 0o755)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	path := filepath.Join(g.outDir, fmt.Sprintf(
		"report_%s_%dd.md",
		r.GeneratedAt.Format("20060102_150405"),
		r.PeriodDays,
	))
	err = os.WriteFile(path, []byte(RenderMarkdown(r)), 0o644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	err = g.store.qry.CreateGeneratedReport(ctx, db.CreateGeneratedReportParams{
		ID:         uuid.NewString(),
		CreatedAt:  r.GeneratedAt.Unix(),
		PeriodDays: int64(r.PeriodDays),
		Path:       path,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("path", path))
	return path, nil
}
