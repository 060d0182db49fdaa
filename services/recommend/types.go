package recommend

import "fmt"

// Article is the editorial side of a match: what the piece is about and
// who it targets.
type Article struct {
	ID      string `json:"article_id"`
	Title   string `json:"title"`
	Content string `json:"content"`

	Keywords []string `json:"target_keywords"`
	Persona  string   `json:"persona"`
	// Scene is a comma separated list of gift scenes (誕生日, クリスマス...)
	Scene    string   `json:"scene"`
	Audience []string `json:"target_audience"`

	BudgetMin int `json:"budget_min"`
	BudgetMax int `json:"budget_max"`

	SeasonalKeywords []string `json:"seasonal_keywords"`
	// SearchQueries are the page's top search console queries.
	SearchQueries []string `json:"search_queries"`
}

// Product is the catalog side of a match.
type Product struct {
	ID          string `json:"product_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Description string `json:"description"`
	Price       int    `json:"price"`

	Tags     []string `json:"tags"`
	Audience []string `json:"target_audience"`
	Seasons  []string `json:"seasonal_suitability"`
	Scenes   []string `json:"scene_suitability"`

	// Popularity and ConversionRate are percentages on a 0-100 scale.
	Popularity     float64 `json:"popularity_score"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Recommendation is one scored article-product match.
type Recommendation struct {
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	Score       float64  `json:"match_score"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"match_reasons"`
}

// Weights is the convex combination over the sub-scores.
type Weights struct {
	Keyword    float64 `json:"keyword_similarity"`
	Persona    float64 `json:"persona_match"`
	Scene      float64 `json:"scene_match"`
	Budget     float64 `json:"budget_match"`
	Seasonal   float64 `json:"seasonal_match"`
	Popularity float64 `json:"popularity"`
	Conversion float64 `json:"conversion_rate"`
}

func DefaultWeights() Weights {
	return Weights{
		Keyword:    0.3,
		Persona:    0.2,
		Scene:      0.2,
		Budget:     0.1,
		Seasonal:   0.1,
		Popularity: 0.05,
		Conversion: 0.05,
	}
}

const weightSumTolerance = 1e-6

// Validate checks that the weights are non-negative and sum to 1, which
// keeps the total score in [0,1].
func (w Weights) Validate() error {
	values := []float64{w.Keyword, w.Persona, w.Scene, w.Budget, w.Seasonal, w.Popularity, w.Conversion}
	sum := 0.0
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("weights must be non-negative, got %v", v)
		}
		sum += v
	}
	if sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	return nil
}
