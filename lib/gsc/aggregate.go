package gsc

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"searchlight-backend/lib/timezone"
)

// Aggregate is one grouped search analytics entry. Ctr is recomputed
// from the grouped totals as a percentage, not averaged from row ctrs.
type Aggregate struct {
	Key         string
	Clicks      float64
	Impressions float64
	Ctr         float64
	Position    float64
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// groupBy groups rows on one key index, sums clicks/impressions,
// recomputes ctr from the sums and averages position.
func groupBy(rows []Row, keyIndex int) []Aggregate {
	sums := map[string]*Aggregate{}
	counts := map[string]int{}
	var order []string

	for _, row := range rows {
		if keyIndex >= len(row.Keys) {
			continue
		}
		key := row.Keys[keyIndex]
		agg, ok := sums[key]
		if !ok {
			agg = &Aggregate{Key: key}
			sums[key] = agg
			order = append(order, key)
		}
		agg.Clicks += row.Clicks
		agg.Impressions += row.Impressions
		agg.Position += row.Position
		counts[key]++
	}

	out := make([]Aggregate, 0, len(order))
	for _, key := range order {
		agg := sums[key]
		if agg.Impressions > 0 {
			agg.Ctr = round2(agg.Clicks / agg.Impressions * 100)
		}
		agg.Position = round2(agg.Position / float64(counts[key]))
		out = append(out, *agg)
	}

	slices.SortStableFunc(out, func(a, b Aggregate) int {
		if a.Clicks != b.Clicks {
			if a.Clicks > b.Clicks {
				return -1
			}
			return 1
		}
		return 0
	})
	return out
}

func truncate(aggs []Aggregate, limit int) []Aggregate {
	if limit > 0 && len(aggs) > limit {
		return aggs[:limit]
	}
	return aggs
}

// TopPages groups rows fetched with dimensions ["query", "page"] by
// page and returns the top entries by clicks.
func TopPages(rows []Row, limit int) []Aggregate {
	return truncate(groupBy(rows, 1), limit)
}

// TopQueries groups the same rows by query.
func TopQueries(rows []Row, limit int) []Aggregate {
	return truncate(groupBy(rows, 0), limit)
}

// PageStats aggregates every row whose page url contains the given
// path fragment, case-insensitively.
func PageStats(rows []Row, pageURL string) (Aggregate, error) {
	needle := strings.ToLower(pageURL)
	var matched []Row
	for _, row := range rows {
		if len(row.Keys) < 2 {
			continue
		}
		if strings.Contains(strings.ToLower(row.Keys[1]), needle) {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return Aggregate{}, fmt.Errorf("no search data for page %q", pageURL)
	}

	agg := Aggregate{Key: pageURL}
	for _, row := range matched {
		agg.Clicks += row.Clicks
		agg.Impressions += row.Impressions
		agg.Position += row.Position
	}
	if agg.Impressions > 0 {
		agg.Ctr = round2(agg.Clicks / agg.Impressions * 100)
	}
	agg.Position = round2(agg.Position / float64(len(matched)))
	return agg, nil
}

// Totals sums a row set into a single aggregate.
func Totals(rows []Row) Aggregate {
	var agg Aggregate
	for _, row := range rows {
		agg.Clicks += row.Clicks
		agg.Impressions += row.Impressions
		agg.Position += row.Position
	}
	if agg.Impressions > 0 {
		agg.Ctr = round2(agg.Clicks / agg.Impressions * 100)
	}
	if len(rows) > 0 {
		agg.Position = round2(agg.Position / float64(len(rows)))
	}
	return agg
}

// Comparison is a year-over-year delta of search totals.
type Comparison struct {
	Current  Aggregate
	Previous Aggregate

	ClicksChange      float64
	ClicksChangePct   float64
	ImpressionsChange float64
	ImpressionsPct    float64
	CtrChange         float64
	PositionChange    float64
}

func pctChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// Searcher is the part of Client the aggregations need, kept small so
// callers can fake it.
type Searcher interface {
	SearchAnalytics(ctx context.Context, query Query) ([]Row, error)
}

// YearComparison fetches the trailing window ending today and the same
// window one year earlier and diffs the totals. pageURL narrows both
// windows to a single page when non-empty.
func YearComparison(ctx context.Context, client Searcher, pageURL string, days int) (Comparison, error) {
	if days <= 0 {
		days = 30
	}
	now := timezone.Now().AddDate(0, 0, -2)

	fetch := func(end string, start string) (Aggregate, error) {
		rows, err := client.SearchAnalytics(ctx, Query{
			StartDate:  start,
			EndDate:    end,
			Dimensions: []string{"query", "page"},
		})
		if err != nil {
			return Aggregate{}, err
		}
		if pageURL != "" {
			return PageStats(rows, pageURL)
		}
		return Totals(rows), nil
	}

	current, err := fetch(
		now.Format("2006-01-02"),
		now.AddDate(0, 0, -days).Format("2006-01-02"),
	)
	if err != nil {
		return Comparison{}, err
	}

	lastYear := now.AddDate(-1, 0, 0)
	previous, err := fetch(
		lastYear.Format("2006-01-02"),
		lastYear.AddDate(0, 0, -days).Format("2006-01-02"),
	)
	if err != nil {
		return Comparison{}, err
	}

	return Compare(current, previous), nil
}

// Compare diffs two aggregates into a Comparison.
func Compare(current, previous Aggregate) Comparison {
	return Comparison{
		Current:  current,
		Previous: previous,

		ClicksChange:      current.Clicks - previous.Clicks,
		ClicksChangePct:   pctChange(current.Clicks, previous.Clicks),
		ImpressionsChange: current.Impressions - previous.Impressions,
		ImpressionsPct:    pctChange(current.Impressions, previous.Impressions),
		CtrChange:         round2(current.Ctr - previous.Ctr),
		PositionChange:    round2(current.Position - previous.Position),
	}
}
