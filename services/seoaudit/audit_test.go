package seoaudit

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>誕生日プレゼント特集2025。相手別・予算別におすすめギフトを紹介</title>
<meta name="description" content="誕生日プレゼント選びに迷ったらこちら。男性向け・女性向け・年代別のおすすめギフトを、予算別ランキングと選び方のコツつきで100点以上紹介します。失敗しないプレゼント選びはここから始まります。">
<meta name="robots" content="index, follow">
<link rel="canonical" href="https://example.com/gifts/birthday">
<meta property="og:title" content="誕生日プレゼント特集">
<meta property="og:type" content="article">
<meta name="twitter:card" content="summary_large_image">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Article"}</script>
</head>
<body>
<h1>誕生日プレゼント おすすめ 特集</h1>
<h2>男性に喜ばれる誕生日プレゼントの選び方を丁寧に解説します</h2>
<p>` + "本文テキスト。" + `</p>
<h2>女性に喜ばれる誕生日プレゼントの選び方を丁寧に解説します</h2>
<p>本文テキスト。</p>
<h2>短いH2</h2>
<h3>予算5000円で買えるおすすめ誕生日プレゼント</h3>
<ul><li>item</li></ul>
<img src="/a.jpg" alt="プレゼントの写真" loading="lazy">
<img src="/b.jpg">
<a href="/gifts/anniversary">記念日ギフト</a>
<a href="https://other.example.net/x" rel="nofollow sponsored">外部リンク</a>
<a href="https://example.com/gifts/christmas"></a>
<script src="https://cdn.example.net/lib.js"></script>
</body>
</html>`

func sampleDoc(t *testing.T) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	require.NoError(t, err)
	return doc
}

func TestAnalyzeBasic(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.True(t, audit.Basic.TitleOptimal, "title length %d", audit.Basic.TitleLength)
	require.True(t, audit.Basic.DescriptionOptimal, "description length %d", audit.Basic.DescriptionLength)
	require.Equal(t, "https://example.com/gifts/birthday", audit.Basic.Canonical)
	require.Equal(t, "index, follow", audit.Basic.Robots)
}

func TestAnalyzeContent(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.Equal(t, 1, audit.Content.HeadingCounts["h1"])
	require.Equal(t, 3, audit.Content.HeadingCounts["h2"])
	require.Equal(t, 1, audit.Content.HeadingCounts["h3"])
	require.True(t, audit.Content.H1Optimal)
	require.Equal(t, "ok", audit.Content.Structure)
	require.Equal(t, 2, audit.Content.Paragraphs)
	require.Equal(t, 1, audit.Content.Lists)
}

func TestAnalyzeAccessibility(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.Equal(t, 2, audit.Accessibility.ImagesTotal)
	require.Equal(t, 1, audit.Accessibility.ImagesWithAlt)
	require.InDelta(t, 0.5, audit.Accessibility.AltCoverage, 1e-9)
	require.Equal(t, 1, audit.Accessibility.LinksWithoutText)
}

func TestAnalyzeStructuredData(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.Equal(t, 1, audit.StructuredData.JSONLDBlocks)
	require.True(t, audit.StructuredData.HasAny)
}

func TestAnalyzeLinks(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.Equal(t, 2, audit.Links.Internal)
	require.Equal(t, 1, audit.Links.External)
	require.Equal(t, 1, audit.Links.Nofollow)
	require.Contains(t, audit.Links.InternalURLs, "https://example.com/gifts/anniversary")
}

func TestAnalyzeTechnical(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.Equal(t, "誕生日プレゼント特集", audit.Technical.OpenGraph["og:title"])
	require.Equal(t, "summary_large_image", audit.Technical.TwitterCards["twitter:card"])
	require.True(t, audit.Technical.HasViewport)
	require.Equal(t, "utf-8", audit.Technical.Charset)
	require.Equal(t, "ja", audit.Technical.Lang)
}

func TestAnalyzePerformance(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")

	require.Equal(t, 1, audit.Performance.ExternalScripts)
	require.Equal(t, 1, audit.Performance.ImagesLazy)
	require.InDelta(t, 0.5, audit.Performance.LazyRatio, 1e-9)
}

func TestRenderText(t *testing.T) {
	audit := Analyze(sampleDoc(t), "https://example.com/gifts/birthday")
	text := RenderText(audit)
	require.Contains(t, text, "SEO audit: https://example.com/gifts/birthday")
	require.Contains(t, text, "[heading quality]")
	require.Contains(t, text, "structure: ok")
}

func TestMissingH1(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><h2>section</h2></body></html>`,
	))
	require.NoError(t, err)
	audit := Analyze(doc, "https://example.com/")
	require.Equal(t, "missing h1", audit.Content.Structure)
	require.False(t, audit.Content.H1Optimal)
}
