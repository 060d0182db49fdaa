package pagespeed

import (
	"context"
	"fmt"
	"time"

	"searchlight-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/pagespeed")

type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(apiKey string) *Client {
	client := resty.New()
	client.SetBaseURL("https://www.googleapis.com/pagespeedonline/v5")
	// lighthouse runs take a while
	client.SetTimeout(time.Second * 120)
	telemetry.InstrumentResty(client, "lib/pagespeed")

	return &Client{http: client, apiKey: apiKey}
}

// Result carries the lighthouse category scores (0-100) and the lab
// metric display values for one audited page.
type Result struct {
	URL      string
	Strategy Strategy

	Performance   float64
	Accessibility float64
	BestPractices float64
	SEO           float64

	FirstContentfulPaint   string
	LargestContentfulPaint string
	CumulativeLayoutShift  string
	TotalBlockingTime      string
}

type apiResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score float64 `json:"score"`
		} `json:"categories"`
		Audits map[string]struct {
			DisplayValue string `json:"displayValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

func (c *Client) Audit(ctx context.Context, pageURL string, strategy Strategy) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Audit")
	defer span.End()

	span.SetAttributes(
		attribute.String("url", pageURL),
		attribute.String("strategy", string(strategy)),
	)

	if strategy == "" {
		strategy = StrategyMobile
	}

	params := map[string]string{
		"url":      pageURL,
		"strategy": string(strategy),
	}
	if c.apiKey != "" {
		params["key"] = c.apiKey
	}

	var body apiResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParamsFromValues(map[string][]string{
			"category": {"performance", "accessibility", "best-practices", "seo"},
		}).
		SetResult(&body).
		Get("/runPagespeed")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("pagespeed: %s: %s", res.Status(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	categoryScore := func(name string) float64 {
		return body.LighthouseResult.Categories[name].Score * 100
	}
	auditValue := func(name string) string {
		return body.LighthouseResult.Audits[name].DisplayValue
	}

	return &Result{
		URL:      pageURL,
		Strategy: strategy,

		Performance:   categoryScore("performance"),
		Accessibility: categoryScore("accessibility"),
		BestPractices: categoryScore("best-practices"),
		SEO:           categoryScore("seo"),

		FirstContentfulPaint:   auditValue("first-contentful-paint"),
		LargestContentfulPaint: auditValue("largest-contentful-paint"),
		CumulativeLayoutShift:  auditValue("cumulative-layout-shift"),
		TotalBlockingTime:      auditValue("total-blocking-time"),
	}, nil
}
