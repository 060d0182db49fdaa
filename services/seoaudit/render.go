package seoaudit

import (
	"fmt"
	"strings"
)

func checkmark(ok bool) string {
	if ok {
		return "ok"
	}
	return "needs work"
}

// RenderText formats an audit as the plain text report used by the
// cli and the chat context.
func RenderText(a *Audit) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SEO audit: %s (fetched %s)\n", a.URL, a.FetchedAt)

	fmt.Fprintf(&b, "\n[basic]\n")
	fmt.Fprintf(&b, "title: %q (%d chars, %s)\n", a.Basic.Title, a.Basic.TitleLength, checkmark(a.Basic.TitleOptimal))
	fmt.Fprintf(&b, "description: %d chars (%s)\n", a.Basic.DescriptionLength, checkmark(a.Basic.DescriptionOptimal))
	if a.Basic.Canonical != "" {
		fmt.Fprintf(&b, "canonical: %s\n", a.Basic.Canonical)
	}
	if a.Basic.Robots != "" {
		fmt.Fprintf(&b, "robots: %s\n", a.Basic.Robots)
	}

	fmt.Fprintf(&b, "\n[content]\n")
	fmt.Fprintf(&b, "structure: %s\n", a.Content.Structure)
	for _, level := range headingLevels {
		if n := a.Content.HeadingCounts[level]; n > 0 {
			fmt.Fprintf(&b, "%s: %d\n", level, n)
		}
	}
	fmt.Fprintf(&b, "words: %d, runes: %d (%s)\n", a.Content.WordCount, a.Content.RuneCount, checkmark(a.Content.LongEnough))
	fmt.Fprintf(&b, "paragraphs: %d, lists: %d\n", a.Content.Paragraphs, a.Content.Lists)

	fmt.Fprintf(&b, "\n[heading quality] score %d/100\n", a.HeadingQuality.Score)
	fmt.Fprintf(&b, "h2 optimal: %d/%d, h3 optimal: %d/%d\n",
		a.HeadingQuality.H2.OptimalCount, a.HeadingQuality.H2.Count,
		a.HeadingQuality.H3.OptimalCount, a.HeadingQuality.H3.Count)
	if len(a.HeadingQuality.Keywords) > 0 {
		fmt.Fprintf(&b, "keywords: %s (h2 coverage %.0f%%, h3 coverage %.0f%%)\n",
			strings.Join(a.HeadingQuality.Keywords, ", "),
			a.HeadingQuality.H2Coverage*100,
			a.HeadingQuality.H3Coverage*100)
	}
	for _, issue := range a.HeadingQuality.H2.TooShort {
		fmt.Fprintf(&b, "h2 too short (%d): %s\n", issue.Length, issue.Text)
	}
	for _, issue := range a.HeadingQuality.H2.TooLong {
		fmt.Fprintf(&b, "h2 too long (%d): %s\n", issue.Length, issue.Text)
	}
	for _, dup := range a.HeadingQuality.H2.Duplicates {
		fmt.Fprintf(&b, "h2 duplicated: %s\n", dup)
	}

	fmt.Fprintf(&b, "\n[accessibility]\n")
	fmt.Fprintf(&b, "image alt coverage: %d/%d (%.0f%%)\n",
		a.Accessibility.ImagesWithAlt, a.Accessibility.ImagesTotal, a.Accessibility.AltCoverage*100)
	fmt.Fprintf(&b, "links without text: %d\n", a.Accessibility.LinksWithoutText)
	if a.Accessibility.InputsTotal > 0 {
		fmt.Fprintf(&b, "labeled inputs: %d/%d\n", a.Accessibility.InputsLabeled, a.Accessibility.InputsTotal)
	}

	fmt.Fprintf(&b, "\n[structured data]\n")
	fmt.Fprintf(&b, "json-ld: %d, microdata: %d, rdfa: %d\n",
		a.StructuredData.JSONLDBlocks, a.StructuredData.Microdata, a.StructuredData.RDFa)

	fmt.Fprintf(&b, "\n[links]\n")
	fmt.Fprintf(&b, "internal: %d, external: %d, nofollow: %d\n",
		a.Links.Internal, a.Links.External, a.Links.Nofollow)

	fmt.Fprintf(&b, "\n[technical]\n")
	fmt.Fprintf(&b, "og tags: %d, twitter tags: %d, viewport: %v, charset: %s, lang: %s\n",
		len(a.Technical.OpenGraph), len(a.Technical.TwitterCards),
		a.Technical.HasViewport, a.Technical.Charset, a.Technical.Lang)

	fmt.Fprintf(&b, "\n[performance]\n")
	fmt.Fprintf(&b, "external scripts: %d, external stylesheets: %d, inline styles: %d, lazy images: %.0f%%\n",
		a.Performance.ExternalScripts, a.Performance.ExternalStylesheets,
		a.Performance.InlineStyles, a.Performance.LazyRatio*100)

	return b.String()
}
