package recommend

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func giftArticle() Article {
	return Article{
		ID:               "a1",
		Title:            "彼女への誕生日プレゼント おすすめスイーツ10選",
		Keywords:         []string{"誕生日プレゼント", "スイーツ", "彼女"},
		Persona:          "20代女性",
		Scene:            "誕生日",
		Audience:         []string{"彼女", "友達"},
		BudgetMin:        3000,
		BudgetMax:        10000,
		SeasonalKeywords: []string{"冬", "クリスマス"},
		SearchQueries:    []string{"誕生日 スイーツ ギフト"},
	}
}

func sweetsProduct() Product {
	return Product{
		ID:             "p1",
		Name:           "誕生日スイーツギフトセット",
		Category:       "スイーツ",
		Subcategory:    "焼き菓子",
		Description:    "誕生日プレゼントに人気のスイーツ詰め合わせ",
		Price:          5000,
		Tags:           []string{"誕生日", "スイーツ", "ギフト"},
		Audience:       []string{"彼女", "友達"},
		Seasons:        []string{"冬", "クリスマス"},
		Scenes:         []string{"誕生日", "記念日"},
		Popularity:     90,
		ConversionRate: 80,
	}
}

func unrelatedProduct() Product {
	return Product{
		ID:          "p2",
		Name:        "工具セット",
		Category:    "DIY",
		Description: "家庭用の電動ドライバーセット",
		Price:       25000,
		Scenes:      []string{"日曜大工"},
		Popularity:  10,
	}
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	bad := DefaultWeights()
	bad.Keyword = 0.5
	require.Error(t, bad.Validate())

	negative := DefaultWeights()
	negative.Keyword = -0.1
	negative.Persona = 0.6
	require.Error(t, negative.Validate())
}

func TestSubScores(t *testing.T) {
	article := giftArticle()

	t.Run("keyword similarity favors the matching product", func(t *testing.T) {
		match := keywordScore(article, sweetsProduct())
		miss := keywordScore(article, unrelatedProduct())
		require.Greater(t, match, miss)
		require.GreaterOrEqual(t, match, 0.0)
		require.LessOrEqual(t, match, 1.0)
	})

	t.Run("persona defaults to 0.5 without audiences", func(t *testing.T) {
		require.Equal(t, 0.5, personaScore(Article{}, sweetsProduct()))
		require.Equal(t, 1.0, personaScore(article, sweetsProduct()))
	})

	t.Run("scene ratio", func(t *testing.T) {
		require.Equal(t, 1.0, sceneScore(article, sweetsProduct()))
		require.Equal(t, 0.0, sceneScore(article, unrelatedProduct()))

		multi := article
		multi.Scene = "誕生日, 日曜大工"
		require.Equal(t, 0.5, sceneScore(multi, sweetsProduct()))
	})

	t.Run("budget window", func(t *testing.T) {
		require.Equal(t, 1.0, budgetScore(article, sweetsProduct()))

		cheap := sweetsProduct()
		cheap.Price = 1500
		// 1 - (3000-1500)/3000*0.5 = 0.75
		require.InDelta(t, 0.75, budgetScore(article, cheap), 1e-9)

		pricey := sweetsProduct()
		pricey.Price = 15000
		// 1 - (15000-10000)/10000*0.3 = 0.85
		require.InDelta(t, 0.85, budgetScore(article, pricey), 1e-9)

		absurd := sweetsProduct()
		absurd.Price = 1000000
		require.Equal(t, 0.0, budgetScore(article, absurd))
	})

	t.Run("budget window without an upper bound", func(t *testing.T) {
		minOnly := article
		minOnly.BudgetMin = 3000
		minOnly.BudgetMax = 0

		require.Equal(t, 1.0, budgetScore(minOnly, sweetsProduct()))

		pricey := sweetsProduct()
		pricey.Price = 1000000
		require.Equal(t, 1.0, budgetScore(minOnly, pricey))

		cheap := sweetsProduct()
		cheap.Price = 1500
		require.InDelta(t, 0.75, budgetScore(minOnly, cheap), 1e-9)

		inverted := minOnly
		inverted.BudgetMax = 1000
		require.Equal(t, 1.0, budgetScore(inverted, pricey))
	})

	t.Run("seasonal jaccard includes the current season terms", func(t *testing.T) {
		winter := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
		score := seasonalScore(article, sweetsProduct(), winter)
		require.Greater(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)

		require.Equal(t, 0.5, seasonalScore(Article{}, sweetsProduct(), winter))
	})

	t.Run("season boundaries", func(t *testing.T) {
		require.Equal(t, "spring", season(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
		require.Equal(t, "summer", season(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
		require.Equal(t, "autumn", season(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)))
		require.Equal(t, "winter", season(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	})
}

func TestEngineRecommend(t *testing.T) {
	engine, err := NewEngine(Options{})
	require.NoError(t, err)

	ctx := context.Background()
	article := giftArticle()
	products := []Product{unrelatedProduct(), sweetsProduct()}

	recs := engine.Recommend(ctx, article, products)
	require.NotEmpty(t, recs)
	require.Equal(t, "p1", recs[0].ProductID)
	require.GreaterOrEqual(t, recs[0].Confidence, 0.6)
	require.NotEmpty(t, recs[0].Reasons)

	// the unrelated product falls under the threshold
	for _, rec := range recs {
		require.NotEqual(t, "p2", rec.ProductID)
	}
}

func TestEngineRecommendBatch(t *testing.T) {
	engine, err := NewEngine(Options{})
	require.NoError(t, err)

	a1 := giftArticle()
	a2 := giftArticle()
	a2.ID = "a2"

	out := engine.RecommendBatch(context.Background(), []Article{a1, a2}, []Product{sweetsProduct()})
	require.Len(t, out, 2)
	require.NotEmpty(t, out["a1"])
	require.NotEmpty(t, out["a2"])
}

func TestEngineLimit(t *testing.T) {
	engine, err := NewEngine(Options{Limit: 1, Threshold: 0.01})
	require.NoError(t, err)

	recs := engine.Recommend(context.Background(), giftArticle(), []Product{
		sweetsProduct(), unrelatedProduct(),
	})
	require.Len(t, recs, 1)
}

func TestScoreBounds(t *testing.T) {
	engine, err := NewEngine(Options{})
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(7))
	words := []string{"誕生日", "スイーツ", "彼女", "クリスマス", "花束", "コスメ", "上司", "雑貨", "gift", "set"}
	pick := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = words[rnd.Intn(len(words))]
		}
		return out
	}

	for i := 0; i < 200; i++ {
		article := Article{
			Title:            words[rnd.Intn(len(words))],
			Keywords:         pick(rnd.Intn(4)),
			Scene:            words[rnd.Intn(len(words))],
			Audience:         pick(rnd.Intn(3)),
			BudgetMin:        rnd.Intn(5000),
			BudgetMax:        5000 + rnd.Intn(20000),
			SeasonalKeywords: pick(rnd.Intn(3)),
		}
		product := Product{
			Name:           words[rnd.Intn(len(words))],
			Description:    words[rnd.Intn(len(words))],
			Price:          rnd.Intn(50000),
			Tags:           pick(rnd.Intn(4)),
			Audience:       pick(rnd.Intn(3)),
			Seasons:        pick(rnd.Intn(3)),
			Scenes:         pick(rnd.Intn(3)),
			Popularity:     rnd.Float64() * 100,
			ConversionRate: rnd.Float64() * 100,
		}

		breakdown, _ := engine.Score(article, product)
		require.GreaterOrEqual(t, breakdown.Total, 0.0)
		require.LessOrEqual(t, breakdown.Total, 1.0)
	}
}

func TestAnalyzeQuality(t *testing.T) {
	require.Equal(t, Quality{}, AnalyzeQuality(nil))

	q := AnalyzeQuality([]Recommendation{
		{Score: 0.9, Confidence: 0.95},
		{Score: 0.7, Confidence: 0.84},
		{Score: 0.5, Confidence: 0.6},
	})
	require.Equal(t, 3, q.Total)
	require.InDelta(t, 0.7, q.AverageScore, 1e-9)
	require.Equal(t, 0.9, q.MaxScore)
	require.Equal(t, 0.5, q.MinScore)
	require.Equal(t, 2, q.HighConfidence)
}
