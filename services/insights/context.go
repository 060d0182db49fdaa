package insights

import (
	"context"
	"fmt"
	"strings"

	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/services/seoaudit"

	"go.opentelemetry.io/otel/attribute"
)

// formatInt renders a float total with thousands separators, the way
// the numbers read in japanese reports.
func formatInt(f float64) string {
	n := int64(f)
	negative := n < 0
	if negative {
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// BuildContext assembles the data context for a question: it parses
// the date window, detects which sources the question wants, fetches
// them and renders everything as one text document for the llm.
// failures of individual sources degrade into explanatory sections
// instead of failing the whole question.
func (s *Service) BuildContext(ctx context.Context, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "BuildContext")
	defer span.End()

	dateRange := ParseDateRange(question, s.now())
	triggers := DetectTriggers(question)

	span.SetAttributes(
		attribute.Int("days", dateRange.Days),
		attribute.Bool("seo", triggers.SEO),
		attribute.Bool("ga4", triggers.GA4),
		attribute.Bool("gsc", triggers.GSC),
		attribute.Bool("yearly", triggers.Yearly),
		attribute.Int("urls", len(triggers.URLs)),
	)

	var sections []string
	sections = append(sections, fmt.Sprintf(
		"分析期間: %s 〜 %s (%d日間)",
		dateRange.Start.Format("2006-01-02"),
		dateRange.End.Format("2006-01-02"),
		dateRange.Days,
	))

	if triggers.SEO && triggers.PageSpecific() {
		sections = append(sections, s.auditSections(ctx, triggers.URLs)...)
	}

	if triggers.Yearly {
		sections = append(sections, s.yearlySection(ctx, triggers, dateRange))
	}

	if triggers.GA4 || triggers.None() {
		sections = append(sections, s.trafficSection(ctx, triggers, dateRange))
	}

	if triggers.GSC || triggers.None() {
		sections = append(sections, s.searchSection(ctx, triggers, dateRange))
	}

	return strings.Join(sections, "\n\n"), nil
}

func (s *Service) auditSections(ctx context.Context, urls []string) []string {
	if len(urls) > maxAuditURLs {
		urls = urls[:maxAuditURLs]
	}

	var sections []string
	for _, pageURL := range urls {
		audit, err := s.auditor.Run(ctx, pageURL)
		if err != nil {
			sections = append(sections, auditFailureSection(pageURL, err))
			continue
		}
		sections = append(sections, seoaudit.RenderText(audit))
	}
	return sections
}

// auditFailureSection turns a fetch failure into context the llm can
// explain to the user, distinguishing timeouts from refused
// connections and status errors.
func auditFailureSection(pageURL string, err error) string {
	var statusErr seoaudit.StatusError
	switch {
	case seoaudit.IsTimeout(err):
		return fmt.Sprintf(
			"ページ分析 (%s): タイムアウトのため取得できませんでした。サーバーの応答が遅い可能性があります。",
			pageURL,
		)
	case asStatusError(err, &statusErr):
		return fmt.Sprintf(
			"ページ分析 (%s): サーバーがエラーを返しました (%s)。URLが正しいか確認してください。",
			pageURL, statusErr.Status,
		)
	default:
		return fmt.Sprintf(
			"ページ分析 (%s): 接続できませんでした (%s)。",
			pageURL, err,
		)
	}
}

func (s *Service) trafficSection(ctx context.Context, triggers Triggers, dateRange DateRange) string {
	report, err := s.traffic.RunReport(ctx, ga4.Query{
		StartDate: dateRange.Start.Format("2006-01-02"),
		EndDate:   dateRange.End.Format("2006-01-02"),
	})
	if err != nil {
		return fmt.Sprintf("トラフィックデータ: 取得に失敗しました (%s)。", err)
	}

	summary := ga4.Summarize(report)

	var b strings.Builder
	fmt.Fprintf(&b, "トラフィックデータ (GA4):\n")
	fmt.Fprintf(&b, "- セッション: %s\n", formatInt(summary.Sessions))
	fmt.Fprintf(&b, "- ユーザー: %s\n", formatInt(summary.Users))
	fmt.Fprintf(&b, "- ページビュー: %s\n", formatInt(summary.PageViews))
	fmt.Fprintf(&b, "- 直帰率: %.1f%%\n", summary.BounceRate*100)
	fmt.Fprintf(&b, "- 平均セッション時間: %.0f秒\n", summary.AvgSessionDuration)
	fmt.Fprintf(&b, "- コンバージョン: %s\n", formatInt(summary.Conversions))
	fmt.Fprintf(&b, "- 収益: %s", formatInt(summary.Revenue))

	if triggers.PageSpecific() {
		for _, pageURL := range triggers.URLs {
			pageSummary, ok := ga4.PageSummary(report, pagePath(pageURL))
			if !ok {
				fmt.Fprintf(&b, "\nページ別 (%s): データなし", pageURL)
				continue
			}
			fmt.Fprintf(&b, "\nページ別 (%s): セッション %s, ページビュー %s",
				pageURL, formatInt(pageSummary.Sessions), formatInt(pageSummary.PageViews))
		}
	}
	return b.String()
}

func (s *Service) searchSection(ctx context.Context, triggers Triggers, dateRange DateRange) string {
	rows, err := s.search.SearchAnalytics(ctx, gsc.Query{
		StartDate:  dateRange.Start.Format("2006-01-02"),
		EndDate:    dateRange.End.Format("2006-01-02"),
		Dimensions: []string{"query", "page"},
	})
	if err != nil {
		return fmt.Sprintf("検索データ: 取得に失敗しました (%s)。", err)
	}

	totals := gsc.Totals(rows)

	var b strings.Builder
	fmt.Fprintf(&b, "検索データ (Search Console):\n")
	fmt.Fprintf(&b, "- クリック: %s\n", formatInt(totals.Clicks))
	fmt.Fprintf(&b, "- インプレッション: %s\n", formatInt(totals.Impressions))
	fmt.Fprintf(&b, "- CTR: %.2f%%\n", totals.Ctr)
	fmt.Fprintf(&b, "- 平均順位: %.1f", totals.Position)

	if triggers.PageSpecific() {
		for _, pageURL := range triggers.URLs {
			stats, err := gsc.PageStats(rows, pagePath(pageURL))
			if err != nil {
				fmt.Fprintf(&b, "\nページ別 (%s): 検索データなし", pageURL)
				continue
			}
			fmt.Fprintf(&b, "\nページ別 (%s): クリック %s, CTR %.2f%%, 平均順位 %.1f",
				pageURL, formatInt(stats.Clicks), stats.Ctr, stats.Position)
		}
	}

	if topPages := gsc.TopPages(rows, 5); len(topPages) > 0 {
		fmt.Fprintf(&b, "\n上位ページ:")
		for _, page := range topPages {
			fmt.Fprintf(&b, "\n- %s: クリック %s, CTR %.2f%%",
				page.Key, formatInt(page.Clicks), page.Ctr)
		}
	}
	if topQueries := gsc.TopQueries(rows, 5); len(topQueries) > 0 {
		fmt.Fprintf(&b, "\n上位クエリ:")
		for _, query := range topQueries {
			fmt.Fprintf(&b, "\n- %s: クリック %s, 平均順位 %.1f",
				query.Key, formatInt(query.Clicks), query.Position)
		}
	}
	return b.String()
}

func (s *Service) yearlySection(ctx context.Context, triggers Triggers, dateRange DateRange) string {
	pageURL := ""
	if triggers.PageSpecific() {
		pageURL = pagePath(triggers.URLs[0])
	}

	comparison, err := gsc.YearComparison(ctx, s.search, pageURL, dateRange.Days)
	if err != nil {
		return fmt.Sprintf("前年比較: 取得に失敗しました (%s)。", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "前年比較 (検索, %d日間):\n", dateRange.Days)
	fmt.Fprintf(&b, "- クリック: %s → %s (%+.1f%%)\n",
		formatInt(comparison.Previous.Clicks), formatInt(comparison.Current.Clicks), comparison.ClicksChangePct)
	fmt.Fprintf(&b, "- インプレッション: %s → %s (%+.1f%%)\n",
		formatInt(comparison.Previous.Impressions), formatInt(comparison.Current.Impressions), comparison.ImpressionsPct)
	fmt.Fprintf(&b, "- CTR: %.2f%% → %.2f%%\n", comparison.Previous.Ctr, comparison.Current.Ctr)
	fmt.Fprintf(&b, "- 平均順位: %.1f → %.1f", comparison.Previous.Position, comparison.Current.Position)
	return b.String()
}
