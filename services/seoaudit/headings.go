package seoaudit

import (
	"slices"
	"strings"

	"searchlight-backend/lib/textutil"
)

// heading length windows, measured in runes since most content is japanese
const (
	h2MinLength = 30
	h2MaxLength = 60
	h3MinLength = 20
	h3MaxLength = 50
)

type HeadingIssue struct {
	Text   string
	Length int
}

type LengthStats struct {
	Min    int
	Max    int
	Avg    float64
	Median float64
}

type LevelQuality struct {
	Count        int
	OptimalCount int
	OptimalRatio float64
	TooShort     []HeadingIssue
	TooLong      []HeadingIssue
	Duplicates   []string
	Stats        LengthStats
}

type HeadingQuality struct {
	H2 LevelQuality
	H3 LevelQuality

	// up to 5 keywords lifted from the first h1
	Keywords   []string
	H2Coverage float64
	H3Coverage float64

	Score int
}

func analyzeLevel(headings []string, minLen, maxLen int) LevelQuality {
	q := LevelQuality{Count: len(headings)}
	if len(headings) == 0 {
		return q
	}

	lengths := make([]int, 0, len(headings))
	seen := map[string]int{}
	for _, h := range headings {
		length := len([]rune(h))
		lengths = append(lengths, length)
		seen[h]++

		switch {
		case length < minLen:
			q.TooShort = append(q.TooShort, HeadingIssue{Text: h, Length: length})
		case length > maxLen:
			q.TooLong = append(q.TooLong, HeadingIssue{Text: h, Length: length})
		default:
			q.OptimalCount++
		}
	}
	q.OptimalRatio = float64(q.OptimalCount) / float64(len(headings))

	for _, h := range headings {
		if seen[h] > 1 {
			if !slices.Contains(q.Duplicates, h) {
				q.Duplicates = append(q.Duplicates, h)
			}
		}
	}

	slices.Sort(lengths)
	q.Stats.Min = lengths[0]
	q.Stats.Max = lengths[len(lengths)-1]
	var sum int
	for _, l := range lengths {
		sum += l
	}
	q.Stats.Avg = float64(sum) / float64(len(lengths))
	mid := len(lengths) / 2
	if len(lengths)%2 == 1 {
		q.Stats.Median = float64(lengths[mid])
	} else {
		q.Stats.Median = float64(lengths[mid-1]+lengths[mid]) / 2
	}
	return q
}

// headingKeywords pulls up to 5 tokens of at least 2 runes out of the
// first h1, the assumption being the h1 carries the page's targets.
func headingKeywords(h1s []string) []string {
	if len(h1s) == 0 {
		return nil
	}
	var keywords []string
	for _, token := range textutil.Tokenize(h1s[0]) {
		if len([]rune(token)) < 2 {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == 5 {
			break
		}
	}
	return keywords
}

func keywordCoverage(headings []string, keywords []string) float64 {
	if len(headings) == 0 || len(keywords) == 0 {
		return 0
	}
	var covered int
	for _, h := range headings {
		lower := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(headings))
}

// AnalyzeHeadings scores the h2/h3 structure of a page. the score is
// deterministic for a given heading set and always lands in [0,100]:
//
//	30 * h2 optimal-length ratio
//	20 * h3 optimal-length ratio
//	30 * keyword coverage (h2 weighted 0.6, h3 weighted 0.4)
//	minus up to 20 for duplicated headings
func AnalyzeHeadings(headings map[string][]string) HeadingQuality {
	q := HeadingQuality{
		H2: analyzeLevel(headings["h2"], h2MinLength, h2MaxLength),
		H3: analyzeLevel(headings["h3"], h3MinLength, h3MaxLength),
	}

	q.Keywords = headingKeywords(headings["h1"])
	q.H2Coverage = keywordCoverage(headings["h2"], q.Keywords)
	q.H3Coverage = keywordCoverage(headings["h3"], q.Keywords)

	score := q.H2.OptimalRatio*30 +
		q.H3.OptimalRatio*20 +
		(q.H2Coverage*0.6+q.H3Coverage*0.4)*30

	penalty := len(q.H2.Duplicates)*2 + len(q.H3.Duplicates)
	if penalty > 20 {
		penalty = 20
	}
	score -= float64(penalty)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	q.Score = int(score)
	return q
}
