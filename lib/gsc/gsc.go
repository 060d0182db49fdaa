package gsc

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"searchlight-backend/lib/googleauth"
	"searchlight-backend/lib/telemetry"
	"searchlight-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/gsc")

type Client struct {
	http    *resty.Client
	tokens  googleauth.TokenSource
	SiteURL string
}

func NewClient(tokens googleauth.TokenSource, siteURL string) *Client {
	client := resty.New()
	client.SetBaseURL("https://www.googleapis.com/webmasters/v3")
	client.SetTimeout(time.Second * 60)
	telemetry.InstrumentResty(client, "lib/gsc")

	return &Client{
		http:    client,
		tokens:  tokens,
		SiteURL: siteURL,
	}
}

type Query struct {
	// days back from today, ignored when StartDate/EndDate are set
	Days       int
	StartDate  string
	EndDate    string
	Dimensions []string
	RowLimit   int
}

func (q Query) dateRange() (string, string) {
	if q.StartDate != "" && q.EndDate != "" {
		return q.StartDate, q.EndDate
	}
	days := q.Days
	if days <= 0 {
		days = 30
	}
	now := timezone.Now()
	// search console data lags a couple days behind
	end := now.AddDate(0, 0, -2)
	return end.AddDate(0, 0, -days).Format("2006-01-02"), end.Format("2006-01-02")
}

// Row is one search analytics row. Keys line up with the requested
// dimensions (query, page, date, ...). Ctr is the api's fraction
// (0..1), Position the mean ranking.
type Row struct {
	Keys        []string
	Clicks      float64
	Impressions float64
	Ctr         float64
	Position    float64
}

type queryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
	StartRow   int      `json:"startRow"`
}

type queryResponse struct {
	Rows []Row `json:"rows"`
}

// SearchAnalytics queries the search console search analytics endpoint.
// missing rows (new site, empty window) come back as an empty slice.
func (c *Client) SearchAnalytics(ctx context.Context, query Query) ([]Row, error) {
	ctx, span := tracer.Start(ctx, "SearchAnalytics")
	defer span.End()

	if c.SiteURL == "" {
		err := fmt.Errorf("gsc: no site url configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	dimensions := query.Dimensions
	if len(dimensions) == 0 {
		dimensions = []string{"query", "page"}
	}
	rowLimit := query.RowLimit
	if rowLimit <= 0 {
		rowLimit = 25000
	}

	start, end := query.dateRange()
	span.SetAttributes(
		attribute.String("site", c.SiteURL),
		attribute.String("start", start),
		attribute.String("end", end),
	)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var body queryResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(queryRequest{
			StartDate:  start,
			EndDate:    end,
			Dimensions: dimensions,
			RowLimit:   rowLimit,
		}).
		SetResult(&body).
		Post(fmt.Sprintf("/sites/%s/searchAnalytics/query", url.PathEscape(c.SiteURL)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("gsc: query failed: %s: %s", res.Status(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", len(body.Rows)))
	return body.Rows, nil
}
