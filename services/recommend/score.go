package recommend

import (
	"math"
	"strings"
	"time"

	"searchlight-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// seasonKeywords are folded into the article's seasonal terms so that
// products tagged for the current season score higher right now.
var seasonKeywords = map[string][]string{
	"spring": {"春", "桜", "新生活", "入学", "卒業"},
	"summer": {"夏", "暑中見舞い", "お中元", "夏休み"},
	"autumn": {"秋", "お歳暮", "ハロウィン", "紅葉"},
	"winter": {"冬", "クリスマス", "年末", "バレンタイン"},
}

func season(now time.Time) string {
	switch now.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "autumn"
	default:
		return "winter"
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, fa := range a {
		normA += fa * fa
		if fb, ok := b[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range b {
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func articleTokens(article Article) []string {
	var tokens []string
	tokens = append(tokens, textutil.Tokenize(article.Title)...)
	for _, kw := range article.Keywords {
		tokens = append(tokens, textutil.Tokenize(kw)...)
	}
	for _, q := range article.SearchQueries {
		tokens = append(tokens, textutil.Tokenize(q)...)
	}
	for _, kw := range article.SeasonalKeywords {
		tokens = append(tokens, textutil.Tokenize(kw)...)
	}
	return tokens
}

func productTokens(product Product) []string {
	var tokens []string
	tokens = append(tokens, textutil.Tokenize(product.Name)...)
	tokens = append(tokens, textutil.Tokenize(product.Description)...)
	for _, tag := range product.Tags {
		tokens = append(tokens, textutil.Tokenize(tag)...)
	}
	tokens = append(tokens, textutil.Tokenize(product.Category)...)
	tokens = append(tokens, textutil.Tokenize(product.Subcategory)...)
	return tokens
}

const (
	nearMissSimilarity = 0.85
	nearMissCreditMax  = 0.2
)

// keywordScore is the term-frequency cosine between the article text
// (title, keywords, search queries, seasonal terms) and the product
// text, plus a small credit for article keywords that almost match a
// product token by JaroWinkler.
func keywordScore(article Article, product Product) float64 {
	prodTokens := productTokens(product)
	base := cosine(
		textutil.TermFrequency(articleTokens(article)),
		textutil.TermFrequency(prodTokens),
	)

	credit := 0.0
	for _, kw := range article.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		best := 0.0
		exact := false
		for _, tok := range prodTokens {
			if tok == kw {
				exact = true
				break
			}
			sim := matchr.JaroWinkler(kw, tok, false)
			if sim > best {
				best = sim
			}
		}
		if !exact && best > nearMissSimilarity {
			credit += (best - nearMissSimilarity) / (1 - nearMissSimilarity) * 0.1
		}
	}
	if credit > nearMissCreditMax {
		credit = nearMissCreditMax
	}
	return clamp01(base + credit)
}

func jaccard(a, b []string) float64 {
	setA := map[string]struct{}{}
	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" {
			setA[s] = struct{}{}
		}
	}
	setB := map[string]struct{}{}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" {
			setB[s] = struct{}{}
		}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// personaScore is the audience jaccard, defaulting to 0.5 when either
// side gives no audience.
func personaScore(article Article, product Product) float64 {
	if len(article.Audience) == 0 || len(product.Audience) == 0 {
		return 0.5
	}
	return jaccard(article.Audience, product.Audience)
}

// sceneScore is the fraction of the article's scenes that appear in the
// product's scene suitability list.
func sceneScore(article Article, product Product) float64 {
	if article.Scene == "" || len(product.Scenes) == 0 {
		return 0.5
	}
	scenes := strings.Split(article.Scene, ",")
	matched := 0
	total := 0
	for _, scene := range scenes {
		scene = strings.TrimSpace(scene)
		if scene == "" {
			continue
		}
		total++
		for _, ps := range product.Scenes {
			if strings.Contains(ps, scene) {
				matched++
				break
			}
		}
	}
	if total == 0 {
		return 0.5
	}
	return float64(matched) / float64(total)
}

// budgetScore is 1 inside the window, with a 0.5 slope penalty below
// it and a gentler 0.3 slope above it. A window without a usable upper
// bound (unset or below the minimum) is open above the minimum.
func budgetScore(article Article, product Product) float64 {
	minBudget := float64(article.BudgetMin)
	maxBudget := float64(article.BudgetMax)
	if minBudget <= 0 && maxBudget <= 0 {
		return 0.5
	}
	price := float64(product.Price)
	if minBudget > 0 && price < minBudget {
		return math.Max(0, 1-(minBudget-price)/minBudget*0.5)
	}
	if maxBudget < minBudget || price <= maxBudget {
		return 1
	}
	return math.Max(0, 1-(price-maxBudget)/maxBudget*0.3)
}

// seasonalScore is the jaccard of the article's seasonal terms (plus
// the current season's stock keywords) against the product's seasonal
// suitability.
func seasonalScore(article Article, product Product, now time.Time) float64 {
	if len(article.SeasonalKeywords) == 0 || len(product.Seasons) == 0 {
		return 0.5
	}
	combined := append([]string{}, article.SeasonalKeywords...)
	combined = append(combined, seasonKeywords[season(now)]...)
	return jaccard(combined, product.Seasons)
}
