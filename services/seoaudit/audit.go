package seoaudit

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"searchlight-backend/lib/htmlutil"
	"searchlight-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/seoaudit")

type Basic struct {
	Title              string
	TitleLength        int
	TitleOptimal       bool
	Description        string
	DescriptionLength  int
	DescriptionOptimal bool
	Keywords           string
	Canonical          string
	Robots             string
}

type Content struct {
	Headings      map[string][]string
	HeadingCounts map[string]int
	H1Optimal     bool
	Structure     string
	WordCount     int
	RuneCount     int
	LongEnough    bool
	Paragraphs    int
	Lists         int
}

type Accessibility struct {
	ImagesTotal      int
	ImagesWithAlt    int
	AltCoverage      float64
	LinksWithoutText int
	InputsTotal      int
	InputsLabeled    int
}

type StructuredData struct {
	JSONLDBlocks int
	Microdata    int
	RDFa         int
	HasAny       bool
}

type Links struct {
	Internal     int
	External     int
	Nofollow     int
	InternalURLs []string
	ExternalURLs []string
}

type Technical struct {
	OpenGraph    map[string]string
	TwitterCards map[string]string
	HasViewport  bool
	Charset      string
	Lang         string
}

type Performance struct {
	ExternalScripts     int
	ExternalStylesheets int
	InlineStyles        int
	ImagesLazy          int
	LazyRatio           float64
}

type Audit struct {
	URL       string
	FetchedAt string

	Basic          Basic
	Content        Content
	HeadingQuality HeadingQuality
	Accessibility  Accessibility
	StructuredData StructuredData
	Links          Links
	Technical      Technical
	Performance    Performance
}

// Run fetches a page and audits it.
func (f *Fetcher) Run(ctx context.Context, pageURL string) (*Audit, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	doc, err := f.Fetch(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return Analyze(doc, pageURL), nil
}

// Analyze runs every audit section over an already parsed document.
func Analyze(doc *goquery.Document, pageURL string) *Audit {
	audit := &Audit{
		URL:       pageURL,
		FetchedAt: timezone.Now().Format("2006-01-02 15:04:05"),
	}

	audit.Basic = analyzeBasic(doc)
	audit.Content = analyzeContent(doc)
	audit.HeadingQuality = AnalyzeHeadings(audit.Content.Headings)
	audit.Accessibility = analyzeAccessibility(doc)
	audit.StructuredData = analyzeStructuredData(doc)
	audit.Links = analyzeLinks(doc, pageURL)
	audit.Technical = analyzeTechnical(doc)
	audit.Performance = analyzePerformance(doc, pageURL)
	return audit
}

func metaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find("meta[name='" + name + "']").First().Attr("content")
	return strings.TrimSpace(content)
}

func analyzeBasic(doc *goquery.Document) Basic {
	var b Basic

	b.Title = htmlutil.CleanText(doc.Find("title").First().Text())
	b.TitleLength = len([]rune(b.Title))
	b.TitleOptimal = b.TitleLength >= 30 && b.TitleLength <= 60

	b.Description = metaContent(doc, "description")
	b.DescriptionLength = len([]rune(b.Description))
	b.DescriptionOptimal = b.DescriptionLength >= 120 && b.DescriptionLength <= 160

	b.Keywords = metaContent(doc, "keywords")
	b.Robots = metaContent(doc, "robots")
	b.Canonical, _ = doc.Find("link[rel='canonical']").First().Attr("href")
	return b
}

var headingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

func analyzeContent(doc *goquery.Document) Content {
	c := Content{
		Headings:      map[string][]string{},
		HeadingCounts: map[string]int{},
	}

	for _, level := range headingLevels {
		doc.Find(level).Each(func(_ int, sel *goquery.Selection) {
			text := htmlutil.CleanText(sel.Text())
			if text == "" {
				return
			}
			c.Headings[level] = append(c.Headings[level], text)
		})
		c.HeadingCounts[level] = len(c.Headings[level])
	}

	h1s := c.HeadingCounts["h1"]
	c.H1Optimal = h1s == 1
	switch {
	case h1s == 0:
		c.Structure = "missing h1"
	case h1s > 1:
		c.Structure = "multiple h1"
	case c.HeadingCounts["h2"] == 0:
		c.Structure = "no h2 sections"
	default:
		c.Structure = "ok"
	}

	body := doc.Find("body")
	var text string
	if len(body.Nodes) > 0 {
		text = htmlutil.VisibleText(body.Nodes[0])
	}
	text = htmlutil.CleanText(text)
	c.WordCount = len(strings.Fields(text))
	c.RuneCount = len([]rune(strings.ReplaceAll(text, " ", "")))
	c.LongEnough = c.WordCount >= 300

	c.Paragraphs = doc.Find("p").Length()
	c.Lists = doc.Find("ul, ol").Length()
	return c
}

func analyzeAccessibility(doc *goquery.Document) Accessibility {
	var a Accessibility

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		a.ImagesTotal++
		alt, exists := sel.Attr("alt")
		if exists && strings.TrimSpace(alt) != "" {
			a.ImagesWithAlt++
		}
	})
	if a.ImagesTotal > 0 {
		a.AltCoverage = float64(a.ImagesWithAlt) / float64(a.ImagesTotal)
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if htmlutil.CleanText(sel.Text()) != "" {
			return
		}
		// image links with alt text still read fine
		if sel.Find("img[alt]").Length() > 0 {
			return
		}
		if label, ok := sel.Attr("aria-label"); ok && label != "" {
			return
		}
		a.LinksWithoutText++
	})

	doc.Find("input").Each(func(_ int, sel *goquery.Selection) {
		inputType, _ := sel.Attr("type")
		if inputType == "hidden" || inputType == "submit" || inputType == "button" {
			return
		}
		a.InputsTotal++

		if label, ok := sel.Attr("aria-label"); ok && label != "" {
			a.InputsLabeled++
			return
		}
		id, ok := sel.Attr("id")
		if ok && doc.Find("label[for='"+id+"']").Length() > 0 {
			a.InputsLabeled++
		}
	})
	return a
}

func analyzeStructuredData(doc *goquery.Document) StructuredData {
	var s StructuredData

	doc.Find("script[type='application/ld+json']").Each(func(_ int, sel *goquery.Selection) {
		var parsed any
		if json.Unmarshal([]byte(sel.Text()), &parsed) == nil {
			s.JSONLDBlocks++
		}
	})
	s.Microdata = doc.Find("[itemscope]").Length()
	s.RDFa = doc.Find("[typeof]").Length()
	s.HasAny = s.JSONLDBlocks > 0 || s.Microdata > 0 || s.RDFa > 0
	return s
}

const maxSampleURLs = 10

func analyzeLinks(doc *goquery.Document, pageURL string) Links {
	var l Links

	base, err := url.Parse(pageURL)
	if err != nil {
		return l
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}

		if rel, _ := sel.Attr("rel"); strings.Contains(rel, "nofollow") {
			l.Nofollow++
		}

		if resolved.Host == base.Host {
			l.Internal++
			if len(l.InternalURLs) < maxSampleURLs {
				l.InternalURLs = append(l.InternalURLs, resolved.String())
			}
		} else {
			l.External++
			if len(l.ExternalURLs) < maxSampleURLs {
				l.ExternalURLs = append(l.ExternalURLs, resolved.String())
			}
		}
	})
	return l
}

func analyzeTechnical(doc *goquery.Document) Technical {
	t := Technical{
		OpenGraph:    map[string]string{},
		TwitterCards: map[string]string{},
	}

	doc.Find("meta[property]").Each(func(_ int, sel *goquery.Selection) {
		property, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		if strings.HasPrefix(property, "og:") {
			t.OpenGraph[property] = content
		}
	})
	doc.Find("meta[name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		content, _ := sel.Attr("content")
		if strings.HasPrefix(name, "twitter:") {
			t.TwitterCards[name] = content
		}
	})

	t.HasViewport = doc.Find("meta[name='viewport']").Length() > 0
	t.Charset, _ = doc.Find("meta[charset]").First().Attr("charset")
	t.Lang, _ = doc.Find("html").First().Attr("lang")
	return t
}

func analyzePerformance(doc *goquery.Document, pageURL string) Performance {
	var p Performance

	base, _ := url.Parse(pageURL)

	crossHost := func(href string) bool {
		if base == nil {
			return false
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return false
		}
		return resolved.Host != base.Host
	}

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if crossHost(src) {
			p.ExternalScripts++
		}
	})
	doc.Find("link[rel='stylesheet']").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if crossHost(href) {
			p.ExternalStylesheets++
		}
	})

	p.InlineStyles = doc.Find("[style]").Length() + doc.Find("style").Length()

	var imgTotal int
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		imgTotal++
		if loading, _ := sel.Attr("loading"); loading == "lazy" {
			p.ImagesLazy++
		}
	})
	if imgTotal > 0 {
		p.LazyRatio = float64(p.ImagesLazy) / float64(imgTotal)
	}
	return p
}
