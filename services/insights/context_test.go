package insights

import (
	"context"
	"fmt"
	"testing"
	"time"

	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/lib/openai"
	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/seoaudit"

	"github.com/stretchr/testify/require"
)

type fakeTraffic struct {
	report *ga4.Report
	err    error
	calls  int
}

func (f *fakeTraffic) RunReport(ctx context.Context, query ga4.Query) (*ga4.Report, error) {
	f.calls++
	return f.report, f.err
}

type fakeSearch struct {
	rows  []gsc.Row
	err   error
	calls int
}

func (f *fakeSearch) SearchAnalytics(ctx context.Context, query gsc.Query) ([]gsc.Row, error) {
	f.calls++
	return f.rows, f.err
}

type fakeAuditor struct {
	err   error
	calls int
}

func (f *fakeAuditor) Run(ctx context.Context, pageURL string) (*seoaudit.Audit, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &seoaudit.Audit{URL: pageURL}, nil
}

type fakeChat struct {
	lastRequest openai.Request
}

func (f *fakeChat) Complete(ctx context.Context, req openai.Request) (string, error) {
	f.lastRequest = req
	return "分析結果です", nil
}

func (f *fakeChat) Stream(ctx context.Context, req openai.Request) (<-chan openai.Chunk, error) {
	f.lastRequest = req
	out := make(chan openai.Chunk, 2)
	out <- openai.Chunk{Delta: "分析"}
	out <- openai.Chunk{Delta: "結果"}
	close(out)
	return out, nil
}

func testService(traffic *fakeTraffic, search *fakeSearch, auditor *fakeAuditor, chat *fakeChat) *Service {
	s := NewService(Options{
		Traffic: traffic,
		Search:  search,
		Auditor: auditor,
		LLM:     chat,
	})
	s.now = func() time.Time {
		return time.Date(2025, time.November, 18, 12, 0, 0, 0, timezone.Location)
	}
	return s
}

func testGA4Report() *ga4.Report {
	return &ga4.Report{
		Metrics:    ga4.DefaultMetrics,
		Dimensions: ga4.DefaultDimensions,
		Rows: []ga4.Row{
			{
				Dimensions: map[string]string{"date": "20251101", "pagePath": "/gifts/birthday"},
				Metrics:    map[string]float64{"sessions": 1234, "totalUsers": 1000, "screenPageViews": 2500},
			},
		},
	}
}

func testGSCRows() []gsc.Row {
	return []gsc.Row{
		{Keys: []string{"誕生日プレゼント", "https://example.com/gifts/birthday"}, Clicks: 120, Impressions: 4000, Position: 5},
	}
}

func TestBuildContextTrafficOnly(t *testing.T) {
	traffic := &fakeTraffic{report: testGA4Report()}
	search := &fakeSearch{rows: testGSCRows()}
	auditor := &fakeAuditor{}
	s := testService(traffic, search, auditor, &fakeChat{})

	out, err := s.BuildContext(context.Background(), "今月のセッション数を教えて")
	require.NoError(t, err)

	require.Contains(t, out, "トラフィックデータ")
	require.Contains(t, out, "1,234")
	require.NotContains(t, out, "検索データ")
	require.Zero(t, auditor.calls)
	require.Zero(t, search.calls)
}

func TestBuildContextFallbackFetchesBoth(t *testing.T) {
	traffic := &fakeTraffic{report: testGA4Report()}
	search := &fakeSearch{rows: testGSCRows()}
	s := testService(traffic, search, &fakeAuditor{}, &fakeChat{})

	out, err := s.BuildContext(context.Background(), "サイトの調子はどう？")
	require.NoError(t, err)

	require.Contains(t, out, "トラフィックデータ")
	require.Contains(t, out, "検索データ")
	require.Equal(t, 1, traffic.calls)
	require.Equal(t, 1, search.calls)
}

func TestBuildContextPageSpecific(t *testing.T) {
	traffic := &fakeTraffic{report: testGA4Report()}
	search := &fakeSearch{rows: testGSCRows()}
	auditor := &fakeAuditor{}
	s := testService(traffic, search, auditor, &fakeChat{})

	out, err := s.BuildContext(context.Background(),
		"https://example.com/gifts/birthday のアクセスと検索順位を教えて")
	require.NoError(t, err)

	require.Equal(t, 1, auditor.calls)
	require.Contains(t, out, "ページ別 (https://example.com/gifts/birthday)")
	require.Contains(t, out, "SEO audit")
}

func TestBuildContextAuditTimeout(t *testing.T) {
	traffic := &fakeTraffic{report: testGA4Report()}
	search := &fakeSearch{rows: testGSCRows()}
	auditor := &fakeAuditor{err: context.DeadlineExceeded}
	s := testService(traffic, search, auditor, &fakeChat{})

	out, err := s.BuildContext(context.Background(),
		"https://example.com/slow-page を分析して")
	require.NoError(t, err)
	require.Contains(t, out, "タイムアウト")
}

func TestBuildContextAuditStatusError(t *testing.T) {
	auditor := &fakeAuditor{err: fmt.Errorf("fetch: %w", seoaudit.StatusError{StatusCode: 404, Status: "404 Not Found"})}
	s := testService(&fakeTraffic{report: testGA4Report()}, &fakeSearch{rows: testGSCRows()}, auditor, &fakeChat{})

	out, err := s.BuildContext(context.Background(),
		"https://example.com/gone を分析して")
	require.NoError(t, err)
	require.Contains(t, out, "404 Not Found")
}

func TestBuildContextSourceFailureDegrades(t *testing.T) {
	traffic := &fakeTraffic{err: fmt.Errorf("quota exceeded")}
	search := &fakeSearch{rows: testGSCRows()}
	s := testService(traffic, search, &fakeAuditor{}, &fakeChat{})

	out, err := s.BuildContext(context.Background(), "セッション数は？")
	require.NoError(t, err)
	require.Contains(t, out, "取得に失敗しました")
}

func TestAskUsesYearlyPrompt(t *testing.T) {
	chat := &fakeChat{}
	s := testService(&fakeTraffic{report: testGA4Report()}, &fakeSearch{rows: testGSCRows()}, &fakeAuditor{}, chat)

	answer, err := s.Ask(context.Background(), "前年比でアクセスはどう変化した？")
	require.NoError(t, err)
	require.Equal(t, "分析結果です", answer)

	require.Len(t, chat.lastRequest.Messages, 2)
	require.Equal(t, "system", chat.lastRequest.Messages[0].Role)
	require.Contains(t, chat.lastRequest.Messages[1].Content, "前年との比較分析")
	require.Contains(t, chat.lastRequest.Messages[1].Content, "前年比較 (検索")
}

func TestAskStream(t *testing.T) {
	chat := &fakeChat{}
	s := testService(&fakeTraffic{report: testGA4Report()}, &fakeSearch{rows: testGSCRows()}, &fakeAuditor{}, chat)

	stream, err := s.AskStream(context.Background(), "今月のアクセスは？")
	require.NoError(t, err)

	var got string
	for chunk := range stream {
		require.NoError(t, chunk.Err)
		got += chunk.Delta
	}
	require.Equal(t, "分析結果", got)
}

func TestFormatInt(t *testing.T) {
	require.Equal(t, "0", formatInt(0))
	require.Equal(t, "999", formatInt(999))
	require.Equal(t, "1,000", formatInt(1000))
	require.Equal(t, "1,234,567", formatInt(1234567.9))
	require.Equal(t, "-12,345", formatInt(-12345))
}
