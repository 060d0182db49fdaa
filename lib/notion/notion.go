package notion

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

var tracer = otel.Tracer("lib/notion")

const apiVersion = "2022-06-28"

type Client struct {
	http *resty.Client
}

func NewClient(token string) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.notion.com/v1")
	client.SetAuthToken(token)
	client.SetHeader("Notion-Version", apiVersion)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "lib/notion")

	return &Client{http: client}
}

func (c *Client) post(ctx context.Context, path string, reqBody any, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(out).
		Post(path)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("notion: %s %s: %s", path, res.Status(), res.String())
	}
	return nil
}

type idResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateReportDatabase creates the analytics report database under a
// parent page with title/date/status/period/score columns.
func (c *Client) CreateReportDatabase(ctx context.Context, parentPageID string) (string, error) {
	ctx, span := tracer.Start(ctx, "CreateReportDatabase")
	defer span.End()

	body := map[string]any{
		"parent": map[string]any{"type": "page_id", "page_id": parentPageID},
		"title":  richText("Analytics Reports"),
		"properties": map[string]any{
			"Name":   map[string]any{"title": map[string]any{}},
			"Date":   map[string]any{"date": map[string]any{}},
			"Period": map[string]any{"rich_text": map[string]any{}},
			"Score":  map[string]any{"number": map[string]any{"format": "number"}},
			"Status": map[string]any{
				"select": map[string]any{
					"options": []map[string]any{
						{"name": "draft", "color": "gray"},
						{"name": "review", "color": "yellow"},
						{"name": "published", "color": "green"},
					},
				},
			},
		},
	}

	var out idResponse
	err := c.post(ctx, "/databases", body, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("database_id", out.ID))
	return out.ID, nil
}

// PageMeta is the database row metadata for one report page.
type PageMeta struct {
	Title  string
	Date   time.Time
	Period string
	Score  float64
	Status string
}

// CreateReportPage creates a page in the report database and fills its
// body with blocks converted from markdown.
func (c *Client) CreateReportPage(ctx context.Context, databaseID string, meta PageMeta, markdown string) (string, error) {
	ctx, span := tracer.Start(ctx, "CreateReportPage")
	defer span.End()

	status := meta.Status
	if status == "" {
		status = "draft"
	}

	body := map[string]any{
		"parent": map[string]any{"type": "database_id", "database_id": databaseID},
		"properties": map[string]any{
			"Name":   map[string]any{"title": richTextContent(meta.Title)},
			"Date":   map[string]any{"date": map[string]any{"start": meta.Date.Format("2006-01-02")}},
			"Period": map[string]any{"rich_text": richTextContent(meta.Period)},
			"Score":  map[string]any{"number": meta.Score},
			"Status": map[string]any{"select": map[string]any{"name": status}},
		},
		"children": MarkdownToBlocks(markdown),
	}

	var out idResponse
	err := c.post(ctx, "/pages", body, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("page_id", out.ID))
	return out.ID, nil
}

// UpdateStatus flips the Status select of a report page.
func (c *Client) UpdateStatus(ctx context.Context, pageID, status string) error {
	ctx, span := tracer.Start(ctx, "UpdateStatus")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"properties": map[string]any{
				"Status": map[string]any{"select": map[string]any{"name": status}},
			},
		}).
		Patch(fmt.Sprintf("/pages/%s", pageID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if res.IsError() {
		err := fmt.Errorf("notion: update status: %s: %s", res.Status(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// SearchReportsByDate queries the report database for pages whose Date
// falls inside [start, end].
func (c *Client) SearchReportsByDate(ctx context.Context, databaseID string, start, end time.Time) ([]string, error) {
	ctx, span := tracer.Start(ctx, "SearchReportsByDate")
	defer span.End()

	body := map[string]any{
		"filter": map[string]any{
			"and": []map[string]any{
				{
					"property": "Date",
					"date":     map[string]any{"on_or_after": start.Format("2006-01-02")},
				},
				{
					"property": "Date",
					"date":     map[string]any{"on_or_before": end.Format("2006-01-02")},
				},
			},
		},
	}

	var out struct {
		Results []idResponse `json:"results"`
	}
	err := c.post(ctx, fmt.Sprintf("/databases/%s/query", databaseID), body, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ids := make([]string, len(out.Results))
	for i, r := range out.Results {
		ids[i] = r.ID
	}
	return ids, nil
}
