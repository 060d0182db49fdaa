package ga4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"searchlight-backend/lib/googleauth"
	"searchlight-backend/lib/telemetry"
	"searchlight-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/ga4")

// DefaultMetrics are the metrics fetched when a query doesn't name any.
var DefaultMetrics = []string{
	"sessions",
	"totalUsers",
	"screenPageViews",
	"bounceRate",
	"averageSessionDuration",
	"conversions",
	"totalRevenue",
}

// DefaultDimensions are the dimensions fetched when a query doesn't name any.
var DefaultDimensions = []string{
	"date",
	"pagePath",
	"sessionSourceMedium",
	"deviceCategory",
	"country",
}

type Client struct {
	http       *resty.Client
	tokens     googleauth.TokenSource
	PropertyID string
}

func NewClient(tokens googleauth.TokenSource, propertyID string) *Client {
	client := resty.New()
	client.SetBaseURL("https://analyticsdata.googleapis.com/v1beta")
	client.SetTimeout(time.Second * 60)
	telemetry.InstrumentResty(client, "lib/ga4")

	return &Client{
		http:       client,
		tokens:     tokens,
		PropertyID: propertyID,
	}
}

type Query struct {
	// days back from today, ignored when StartDate/EndDate are set
	Days       int
	StartDate  string
	EndDate    string
	Metrics    []string
	Dimensions []string
	Limit      int
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
	return now.AddDate(0, 0, -days).Format("2006-01-02"), now.Format("2006-01-02")
}

// Row is one flattened report row: dimension values keyed by dimension
// name, metric values keyed by metric name. Metric values the API
// returned in a non-numeric form count as 0 in Metrics and keep their
// raw string in Raw.
type Row struct {
	Dimensions map[string]string
	Metrics    map[string]float64
	Raw        map[string]string
}

type Report struct {
	Metrics    []string
	Dimensions []string
	Rows       []Row
}

type nameObject struct {
	Name string `json:"name"`
}

type runReportRequest struct {
	DateRanges []struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"dateRanges"`
	Metrics    []nameObject `json:"metrics"`
	Dimensions []nameObject `json:"dimensions"`
	Limit      int          `json:"limit"`
}

type reportRow struct {
	DimensionValues []struct {
		Value string `json:"value"`
	} `json:"dimensionValues"`
	MetricValues []struct {
		Value string `json:"value"`
	} `json:"metricValues"`
}

type runReportResponse struct {
	Rows []reportRow `json:"rows"`
}

func flattenRow(raw reportRow, metrics, dimensions []string) Row {
	row := Row{
		Dimensions: make(map[string]string, len(dimensions)),
		Metrics:    make(map[string]float64, len(metrics)),
	}
	for i, dv := range raw.DimensionValues {
		if i < len(dimensions) {
			row.Dimensions[dimensions[i]] = dv.Value
		}
	}
	for i, mv := range raw.MetricValues {
		if i < len(metrics) {
			f, err := strconv.ParseFloat(mv.Value, 64)
			if err != nil {
				// unparseable metric values count as 0, raw kept
				if row.Raw == nil {
					row.Raw = map[string]string{}
				}
				row.Raw[metrics[i]] = mv.Value
				f = 0
			}
			row.Metrics[metrics[i]] = f
		}
	}
	return row
}

// RunReport runs a single report against the GA4 data api and flattens
// the response. an empty property or missing rows yields an empty
// report rather than an error.
func (c *Client) RunReport(ctx context.Context, query Query) (*Report, error) {
	ctx, span := tracer.Start(ctx, "RunReport")
	defer span.End()

	if c.PropertyID == "" {
		err := fmt.Errorf("ga4: no property id configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics := query.Metrics
	if len(metrics) == 0 {
		metrics = DefaultMetrics
	}
	dimensions := query.Dimensions
	if len(dimensions) == 0 {
		dimensions = DefaultDimensions
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 100000
	}

	start, end := query.dateRange()
	span.SetAttributes(
		attribute.String("property", c.PropertyID),
		attribute.String("start", start),
		attribute.String("end", end),
	)

	req := runReportRequest{Limit: limit}
	req.DateRanges = append(req.DateRanges, struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}{StartDate: start, EndDate: end})
	for _, m := range metrics {
		req.Metrics = append(req.Metrics, nameObject{Name: m})
	}
	for _, d := range dimensions {
		req.Dimensions = append(req.Dimensions, nameObject{Name: d})
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var body runReportResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(req).
		SetResult(&body).
		Post(fmt.Sprintf("/properties/%s:runReport", c.PropertyID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("ga4: runReport failed: %s: %s", res.Status(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := &Report{Metrics: metrics, Dimensions: dimensions}
	for _, raw := range body.Rows {
		report.Rows = append(report.Rows, flattenRow(raw, metrics, dimensions))
	}

	span.SetAttributes(attribute.Int("rows", len(report.Rows)))
	return report, nil
}
