package recommend

import (
	"context"
	"math"
	"slices"
	"time"

	"searchlight-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/recommend")

const (
	defaultThreshold = 0.6
	defaultLimit     = 10
)

type Options struct {
	Weights Weights
	// Threshold is the minimum confidence a match must reach, 0.6 when
	// unset.
	Threshold float64
	// Limit caps the recommendations per article, 10 when unset.
	Limit int
}

type Engine struct {
	weights   Weights
	threshold float64
	limit     int
	now       func() time.Time
}

func NewEngine(options Options) (*Engine, error) {
	if options.Weights == (Weights{}) {
		options.Weights = DefaultWeights()
	}
	err := options.Weights.Validate()
	if err != nil {
		return nil, err
	}
	if options.Threshold <= 0 {
		options.Threshold = defaultThreshold
	}
	if options.Limit <= 0 {
		options.Limit = defaultLimit
	}
	return &Engine{
		weights:   options.Weights,
		threshold: options.Threshold,
		limit:     options.Limit,
		now:       timezone.Now,
	}, nil
}

// Breakdown carries the per-factor sub-scores of one match.
type Breakdown struct {
	Keyword    float64
	Persona    float64
	Scene      float64
	Budget     float64
	Seasonal   float64
	Popularity float64
	Conversion float64

	Total float64
}

// Score computes the weighted match score of one article-product pair
// along with the human readable match reasons.
func (e *Engine) Score(article Article, product Product) (Breakdown, []string) {
	b := Breakdown{
		Keyword:    keywordScore(article, product),
		Persona:    personaScore(article, product),
		Scene:      sceneScore(article, product),
		Budget:     budgetScore(article, product),
		Seasonal:   seasonalScore(article, product, e.now()),
		Popularity: clamp01(product.Popularity / 100),
		Conversion: clamp01(product.ConversionRate / 100),
	}
	b.Total = b.Keyword*e.weights.Keyword +
		b.Persona*e.weights.Persona +
		b.Scene*e.weights.Scene +
		b.Budget*e.weights.Budget +
		b.Seasonal*e.weights.Seasonal +
		b.Popularity*e.weights.Popularity +
		b.Conversion*e.weights.Conversion

	var reasons []string
	if b.Keyword > 0.7 {
		reasons = append(reasons, "キーワードの高一致")
	}
	if b.Persona > 0.8 {
		reasons = append(reasons, "ターゲットペルソナの一致")
	}
	if b.Scene > 0.8 {
		reasons = append(reasons, "シーンの適合性")
	}
	if b.Budget > 0.9 {
		reasons = append(reasons, "予算の適合")
	}
	if b.Seasonal > 0.8 {
		reasons = append(reasons, "季節性の一致")
	}
	if b.Popularity > 0.8 {
		reasons = append(reasons, "人気商品")
	}
	if b.Conversion > 0.7 {
		reasons = append(reasons, "高いコンバージョン率")
	}
	return b, reasons
}

// Recommend scores every product against the article, drops matches
// under the confidence threshold and returns the top matches by score.
func (e *Engine) Recommend(ctx context.Context, article Article, products []Product) []Recommendation {
	_, span := tracer.Start(ctx, "Recommend")
	defer span.End()

	span.SetAttributes(
		attribute.String("article_id", article.ID),
		attribute.Int("products", len(products)),
	)

	var out []Recommendation
	for _, product := range products {
		breakdown, reasons := e.Score(article, product)
		confidence := math.Min(breakdown.Total*1.2, 1)
		if confidence < e.threshold {
			continue
		}
		out = append(out, Recommendation{
			ProductID:   product.ID,
			ProductName: product.Name,
			Score:       breakdown.Total,
			Confidence:  confidence,
			Reasons:     reasons,
		})
	}

	slices.SortStableFunc(out, func(a, b Recommendation) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	if len(out) > e.limit {
		out = out[:e.limit]
	}

	span.SetAttributes(attribute.Int("matches", len(out)))
	return out
}

// RecommendBatch maps article ids to their recommendations.
func (e *Engine) RecommendBatch(ctx context.Context, articles []Article, products []Product) map[string][]Recommendation {
	ctx, span := tracer.Start(ctx, "RecommendBatch")
	defer span.End()

	out := make(map[string][]Recommendation, len(articles))
	for _, article := range articles {
		out[article.ID] = e.Recommend(ctx, article, products)
	}
	return out
}

// Quality summarizes a recommendation list for tuning.
type Quality struct {
	Total          int     `json:"total_recommendations"`
	AverageScore   float64 `json:"average_score"`
	MaxScore       float64 `json:"max_score"`
	MinScore       float64 `json:"min_score"`
	HighConfidence int     `json:"high_confidence_count"`
}

func AnalyzeQuality(recs []Recommendation) Quality {
	q := Quality{Total: len(recs)}
	if len(recs) == 0 {
		return q
	}
	q.MinScore = recs[0].Score
	for _, rec := range recs {
		q.AverageScore += rec.Score
		if rec.Score > q.MaxScore {
			q.MaxScore = rec.Score
		}
		if rec.Score < q.MinScore {
			q.MinScore = rec.Score
		}
		if rec.Confidence > 0.8 {
			q.HighConfidence++
		}
	}
	q.AverageScore /= float64(len(recs))
	return q
}
