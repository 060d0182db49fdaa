package seoaudit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"searchlight-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const fetchAttempts = 3

type Fetcher struct {
	http *resty.Client
}

func NewFetcher() (*Fetcher, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "ja,en-US;q=0.7,en;q=0.3")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "services/seoaudit")

	return &Fetcher{http: client}, nil
}

// StatusError is a non-2xx response. it is not retried since the
// server answered, it just didn't like the request.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// IsTimeout reports whether an error chain ends in a deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Fetch gets a page and parses it. transport failures are retried up
// to 3 times with a linearly growing wait, status errors fail fast.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	span.SetAttributes(attribute.String("url", pageURL))

	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		res, err := f.http.R().SetContext(ctx).Get(pageURL)
		if err == nil && res.IsError() {
			err = StatusError{StatusCode: res.StatusCode(), Status: res.Status()}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err == nil {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, fmt.Errorf("parse %s: %w", pageURL, err)
			}
			return doc, nil
		}

		lastErr = err
		span.AddEvent("retrying fetch")
		if attempt < fetchAttempts {
			select {
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			case <-ctx.Done():
				span.RecordError(ctx.Err())
				span.SetStatus(codes.Error, ctx.Err().Error())
				return nil, ctx.Err()
			}
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, fmt.Errorf("fetch %s: %w", pageURL, lastErr)
}
