package reports

import (
	"context"
	"fmt"

	"searchlight-backend/lib/notion"

	"go.opentelemetry.io/otel/codes"
)

// PublishToNotion writes a summary report into the notion report
// database as a draft page and returns the page id.
func PublishToNotion(ctx context.Context, client *notion.Client, databaseID string, report *SummaryReport) (string, error) {
	ctx, span := tracer.Start(ctx, "PublishToNotion")
	defer span.End()

	meta := notion.PageMeta{
		Title:  fmt.Sprintf("アクセス解析レポート %s", report.GeneratedAt.Format("2006-01-02")),
		Date:   report.GeneratedAt,
		Period: fmt.Sprintf("%d日間", report.PeriodDays),
		Score:  round1(reportScore(report)),
		Status: "draft",
	}

	pageID, err := client.CreateReportPage(ctx, databaseID, meta, RenderMarkdown(report))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return pageID, nil
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

// reportScore is a 0-100 health score over the headline metrics: start
// from 100 and dock points for a weak position, a weak ctr and a high
// bounce rate.
func reportScore(r *SummaryReport) float64 {
	score := 100.0
	if r.Search.Position > 10 {
		score -= 30
	} else if r.Search.Position > 5 {
		score -= 15
	}
	if r.Search.Impressions > 0 && r.Search.Ctr < 2 {
		score -= 25
	}
	if r.Traffic.BounceRate > 0.6 {
		score -= 25
	} else if r.Traffic.BounceRate > 0.4 {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	return score
}
