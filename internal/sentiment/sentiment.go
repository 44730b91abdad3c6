// Package sentiment scores review text against the fixed positive and
// negative lexicons.
//
// A review's score is (positive - negative) / (positive + negative) over its
// lexicon hits, and its magnitude is the share of tokens that carried
// polarity. Classification is asymmetric: scores above 0.3 are positive,
// scores at or below -0.1 are negative, everything else is neutral.
//
// All functions are pure and safe for concurrent use.
package sentiment

import (
	"math"
	"runtime"

	"github.com/brandpulse/review-analytics/internal/lexicon"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/textnorm"
	"golang.org/x/sync/errgroup"
)

// Classification thresholds
const (
	PositiveThreshold = 0.3
	NegativeThreshold = -0.1

	// minWeight keeps reviews without lexicon hits from vanishing in BrandScore
	minWeight = 0.1

	// batches smaller than this are scored on the calling goroutine
	parallelBatchSize = 64
)

// Result holds the sentiment of one text
type Result struct {
	Score          float64 `json:"score"`     // -1..1
	Magnitude      float64 `json:"magnitude"` // 0..1
	Classification string  `json:"classification"`
	Positive       int     `json:"positive"` // positive lexicon hits
	Negative       int     `json:"negative"` // negative lexicon hits
	Tokens         int     `json:"tokens"`
}

// Analyze scores a single text. Empty text is neutral with zero score and magnitude.
func Analyze(text string) Result {
	tokens := textnorm.Tokens(text)

	var pos, neg int
	for _, tok := range tokens {
		if lexicon.IsPositive(tok) {
			pos++
		}
		if lexicon.IsNegative(tok) {
			neg++
		}
	}

	total := pos + neg
	score := 0.0
	if total > 0 {
		score = float64(pos-neg) / float64(total)
	}
	magnitude := float64(total) / float64(max(1, len(tokens)))

	return Result{
		Score:          clamp(score, -1, 1),
		Magnitude:      clamp(magnitude, 0, 1),
		Classification: Classify(score),
		Positive:       pos,
		Negative:       neg,
		Tokens:         len(tokens),
	}
}

// Classify maps a raw score in [-1, 1] onto positive, negative or neutral
func Classify(score float64) string {
	switch {
	case score > PositiveThreshold:
		return models.SentimentPositive
	case score <= NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// AnalyzeBatch scores every text; result i belongs to texts[i].
// Large batches are spread across GOMAXPROCS goroutines.
func AnalyzeBatch(texts []string) []Result {
	out := make([]Result, len(texts))
	if len(texts) < parallelBatchSize {
		for i, text := range texts {
			out[i] = Analyze(text)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			out[i] = Analyze(text)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return out
}

// BrandScore is the magnitude-weighted mean score of results rescaled from
// [-1, 1] to [0, 1] and rounded to two decimals. No results yields 0.
func BrandScore(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}

	var weighted, weights float64
	for _, r := range results {
		w := math.Max(minWeight, r.Magnitude)
		weighted += r.Score * w
		weights += w
	}

	avg := 0.0
	if weights > 0 {
		avg = weighted / weights
	}
	return Round2((avg + 1) / 2)
}

// Label classifies a BrandScore value with the per-review thresholds
// rescaled to [0, 1] (above 0.65 positive, at or below 0.45 negative).
func Label(brandScore float64) string {
	switch {
	case brandScore > (PositiveThreshold+1)/2:
		return models.SentimentPositive
	case brandScore <= (NegativeThreshold+1)/2:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// LegacyLabel is the two-way badge some dashboard views used (>0.6 positive,
// else neutral). It never reports negative and disagrees with Label; kept
// only so stored badges can be compared, not used by aggregation.
func LegacyLabel(brandScore float64) string {
	if brandScore > 0.6 {
		return models.SentimentPositive
	}
	return models.SentimentNeutral
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
