package insights

import (
	"net/url"
	"regexp"
	"strings"
)

// Triggers describes which data sources a question asks for.
type Triggers struct {
	SEO    bool
	GA4    bool
	GSC    bool
	Yearly bool
	URLs   []string
}

// PageSpecific reports whether the question names concrete pages.
func (t Triggers) PageSpecific() bool {
	return len(t.URLs) > 0
}

// None reports that no source matched, in which case the context
// builder falls back to fetching both traffic and search summaries.
func (t Triggers) None() bool {
	return !t.SEO && !t.GA4 && !t.GSC && !t.Yearly
}

var urlRegex = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

// the audit path is expensive, cap how many pages one question can pull in
const maxAuditURLs = 3

// ExtractURLs pulls http(s) urls out of a question and normalizes
// them: fragments dropped, an empty path becomes "/", trailing
// slashes on non-root paths dropped. unparsable matches are kept
// as written.
func ExtractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)

	var out []string
	seen := map[string]struct{}{}
	for _, raw := range matches {
		normalized := normalizeURL(raw)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	} else if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

var seoKeywords = []string{
	"seo", "タイトル", "ディスクリプション", "見出し", "メタ", "alt",
	"構造化データ", "html", "css", "ページ分析", "コンテンツ分析",
	"改善提案", "最適化",
}

var yearlyKeywords = []string{
	"昨年", "今年", "前年", "前年比", "yoy", "比較", "比べて", "対比",
	"変化", "増減", "推移", "トレンド",
}

var ga4Keywords = []string{
	"トラフィック", "セッション", "ユーザー", "ページビュー", "バウンス",
	"滞在時間", "コンバージョン", "売上", "収益", "アクセス", "集客",
	"オーガニック", "流入", "訪問", "来訪",
}

var gscKeywords = []string{
	"検索", "seo", "クリック", "インプレッション", "ctr", "ポジション",
	"順位", "キーワード", "クエリ", "検索流入", "オーガニック", "集客",
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// DetectTriggers scans a question for topic keywords and urls and
// decides which sources the context needs.
func DetectTriggers(question string) Triggers {
	lowered := strings.ToLower(question)

	t := Triggers{
		URLs: ExtractURLs(question),
	}

	t.SEO = containsAny(lowered, seoKeywords) || t.PageSpecific()
	t.Yearly = containsAny(lowered, yearlyKeywords)
	t.GA4 = containsAny(lowered, ga4Keywords) || t.Yearly || t.PageSpecific()
	t.GSC = containsAny(lowered, gscKeywords) || t.Yearly || t.PageSpecific()
	return t
}
