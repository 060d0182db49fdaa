package seoaudit

import (
	"math/rand"
	"strings"
	"testing"

	"searchlight-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeHeadingsDeterministic(t *testing.T) {
	headings := map[string][]string{
		"h1": {"誕生日プレゼント おすすめ ランキング"},
		"h2": {
			strings.Repeat("あ", 40),
			strings.Repeat("い", 10),
			strings.Repeat("あ", 40),
		},
		"h3": {strings.Repeat("う", 30)},
	}

	first := AnalyzeHeadings(headings)
	second := AnalyzeHeadings(headings)
	require.Equal(t, first, second)
}

func TestAnalyzeHeadingsBounds(t *testing.T) {
	rndm := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		headings := map[string][]string{}
		for _, level := range []string{"h1", "h2", "h3"} {
			n := rndm.Intn(8)
			for j := 0; j < n; j++ {
				headings[level] = append(headings[level],
					testutil.RandomString(rndm, 1+rndm.Intn(80)))
			}
		}

		q := AnalyzeHeadings(headings)
		require.GreaterOrEqual(t, q.Score, 0)
		require.LessOrEqual(t, q.Score, 100)
	}
}

func TestAnalyzeHeadingsEmpty(t *testing.T) {
	q := AnalyzeHeadings(map[string][]string{})
	require.Equal(t, 0, q.Score)
	require.Zero(t, q.H2.Count)
	require.Empty(t, q.Keywords)
}

func TestAnalyzeLevelStats(t *testing.T) {
	q := analyzeLevel([]string{
		strings.Repeat("a", 10),
		strings.Repeat("b", 40),
		strings.Repeat("c", 70),
		strings.Repeat("b", 40),
	}, h2MinLength, h2MaxLength)

	require.Equal(t, 4, q.Count)
	require.Equal(t, 2, q.OptimalCount)
	require.Len(t, q.TooShort, 1)
	require.Len(t, q.TooLong, 1)
	require.Equal(t, []string{strings.Repeat("b", 40)}, q.Duplicates)
	require.Equal(t, 10, q.Stats.Min)
	require.Equal(t, 70, q.Stats.Max)
	require.Equal(t, 40.0, q.Stats.Avg)
	require.Equal(t, 40.0, q.Stats.Median)
}

func TestHeadingKeywords(t *testing.T) {
	keywords := headingKeywords([]string{"Top 10 Birthday Gift Ideas For Him 2025 Edition"})
	require.Len(t, keywords, 5)
	require.Equal(t, []string{"top", "10", "birthday", "gift", "ideas"}, keywords)

	require.Nil(t, headingKeywords(nil))
}

func TestKeywordCoverage(t *testing.T) {
	keywords := []string{"birthday", "gift"}
	headings := []string{
		"Best Birthday Ideas",
		"Gift Wrapping Guide",
		"Unrelated Section",
	}
	require.InDelta(t, 2.0/3.0, keywordCoverage(headings, keywords), 1e-9)
	require.Zero(t, keywordCoverage(nil, keywords))
	require.Zero(t, keywordCoverage(headings, nil))
}
