package ga4

import (
	"slices"
	"strings"
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// DailyPoint is one day of an aggregated metric. dates come back from
// the api as YYYYMMDD.
type DailyPoint struct {
	Date  string
	Value float64
}

// DailySeries extracts an ordered (date, value) series for one metric
// from a report that includes the date dimension.
func DailySeries(report *Report, metric string) []DailyPoint {
	if report == nil {
		return nil
	}
	byDate := map[string]float64{}
	var order []string
	for _, row := range report.Rows {
		date := row.Dimensions["date"]
		if date == "" {
			continue
		}
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}
		byDate[date] += row.Metrics[metric]
	}

	// the api does not guarantee row order
	slices.Sort(order)

	series := make([]DailyPoint, 0, len(order))
	for _, date := range order {
		series = append(series, DailyPoint{Date: date, Value: byDate[date]})
	}
	return series
}
