package ga4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testReport() *Report {
	return &Report{
		Metrics:    DefaultMetrics,
		Dimensions: DefaultDimensions,
		Rows: []Row{
			{
				Dimensions: map[string]string{"date": "20251002", "pagePath": "/gifts/birthday"},
				Metrics: map[string]float64{
					"sessions": 100, "totalUsers": 80, "screenPageViews": 150,
					"bounceRate": 0.4, "averageSessionDuration": 60,
					"conversions": 2, "totalRevenue": 5000,
				},
			},
			{
				Dimensions: map[string]string{"date": "20251001", "pagePath": "/gifts/birthday"},
				Metrics: map[string]float64{
					"sessions": 200, "totalUsers": 150, "screenPageViews": 300,
					"bounceRate": 0.6, "averageSessionDuration": 90,
					"conversions": 4, "totalRevenue": 10000,
				},
			},
			{
				Dimensions: map[string]string{"date": "20251001", "pagePath": "/about"},
				Metrics: map[string]float64{
					"sessions": 50, "totalUsers": 40, "screenPageViews": 60,
					"bounceRate": 0.8, "averageSessionDuration": 30,
					"conversions": 0, "totalRevenue": 0,
				},
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testReport())
	require.Equal(t, float64(350), s.Sessions)
	require.Equal(t, float64(270), s.Users)
	require.Equal(t, float64(510), s.PageViews)
	require.InDelta(t, 0.6, s.BounceRate, 1e-9)
	require.InDelta(t, 60, s.AvgSessionDuration, 1e-9)
	require.Equal(t, float64(6), s.Conversions)
	require.Equal(t, float64(15000), s.Revenue)

	require.Equal(t, Summary{}, Summarize(nil))
	require.Equal(t, Summary{}, Summarize(&Report{}))
}

func TestPageSummary(t *testing.T) {
	s, ok := PageSummary(testReport(), "/gifts/BIRTHDAY")
	require.True(t, ok)
	require.Equal(t, float64(300), s.Sessions)

	_, ok = PageSummary(testReport(), "/nonexistent")
	require.False(t, ok)
}

func TestDailySeries(t *testing.T) {
	series := DailySeries(testReport(), "sessions")
	require.Len(t, series, 2)
	require.Equal(t, "20251001", series[0].Date)
	require.Equal(t, float64(250), series[0].Value)
	require.Equal(t, "20251002", series[1].Date)
	require.Equal(t, float64(100), series[1].Value)
}
