package ga4

// Summary is the rollup of a traffic report over its whole date range.
type Summary struct {
	Sessions           float64
	Users              float64
	PageViews          float64
	BounceRate         float64
	AvgSessionDuration float64
	Conversions        float64
	Revenue            float64
	Rows               int
}

// Summarize totals the additive metrics and averages the rate metrics
// of a flattened report. a nil or empty report summarizes to zeroes.
func Summarize(report *Report) Summary {
	var s Summary
	if report == nil || len(report.Rows) == 0 {
		return s
	}

	for _, row := range report.Rows {
		s.Sessions += row.Metrics["sessions"]
		s.Users += row.Metrics["totalUsers"]
		s.PageViews += row.Metrics["screenPageViews"]
		s.BounceRate += row.Metrics["bounceRate"]
		s.AvgSessionDuration += row.Metrics["averageSessionDuration"]
		s.Conversions += row.Metrics["conversions"]
		s.Revenue += row.Metrics["totalRevenue"]
	}
	n := float64(len(report.Rows))
	s.BounceRate /= n
	s.AvgSessionDuration /= n
	s.Rows = len(report.Rows)
	return s
}

// PageSummary rolls up the rows whose pagePath contains the given path.
// the second return reports whether any row matched.
func PageSummary(report *Report, path string) (Summary, bool) {
	if report == nil {
		return Summary{}, false
	}
	filtered := &Report{Metrics: report.Metrics, Dimensions: report.Dimensions}
	for _, row := range report.Rows {
		if containsFold(row.Dimensions["pagePath"], path) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	if len(filtered.Rows) == 0 {
		return Summary{}, false
	}
	return Summarize(filtered), true
}
