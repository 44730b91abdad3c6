// Package analytics turns a review set into the brand metrics shown on the dashboard.
//
// Aggregate is a pure function of its inputs: it never mutates the review
// slice and can be recomputed on every filter change.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brandpulse/review-analytics/internal/keywords"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/sentiment"
)

// Trend granularities
const (
	ByMonth = "month"
	ByYear  = "year"
)

const (
	DefaultTrendWindow     = 6
	DefaultTopKeywordLimit = 5
)

// Options configures category partitioning and the derived series
type Options struct {
	// Categories restricts the set to reviews matching any keyword of these
	// categories. Names missing from CategoryKeywords are ignored; when none
	// remain there is no restriction.
	Categories []string `json:"categories"`
	// CategoryKeywords is the full configuration; every keyword in it is ranked for TopKeywords.
	CategoryKeywords map[string][]string `json:"-"`
	Matcher          *keywords.Matcher   `json:"-"`
	TrendWindow      int                 `json:"trendWindow"`
	Granularity      string              `json:"granularity"`
	TopKeywordLimit  int                 `json:"topKeywordLimit"`
}

// Result is the aggregate plus the review list it was computed from, newest first
type Result struct {
	Metrics models.BrandMetrics `json:"metrics"`
	Reviews []models.Review     `json:"reviews"`
}

// Aggregate filters reviews, applies the category selection and computes BrandMetrics
func Aggregate(reviews []models.Review, opts Options, filters Filters) (Result, error) {
	filtered, err := Filter(reviews, filters)
	if err != nil {
		return Result{}, err
	}

	if kws, restrict := opts.selectedKeywords(); restrict {
		kept := filtered[:0]
		for _, r := range filtered {
			if opts.Matcher.Matches(r.ReviewText, kws) {
				kept = append(kept, r)
			}
		}
		filtered = kept
	}

	metrics, err := Compute(filtered, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Metrics: metrics, Reviews: SortNewestFirst(filtered)}, nil
}

// Compute derives BrandMetrics from an already filtered review set
func Compute(reviews []models.Review, opts Options) (models.BrandMetrics, error) {
	granularity := strings.ToLower(strings.TrimSpace(opts.Granularity))
	if granularity == "" {
		granularity = ByMonth
	}
	if granularity != ByMonth && granularity != ByYear {
		return models.BrandMetrics{}, fmt.Errorf("unknown trend granularity %q", opts.Granularity)
	}

	m := models.BrandMetrics{
		TotalReviews:   len(reviews),
		SentimentLabel: models.SentimentNeutral,
		MonthlyTrend:   []float64{},
		Trend:          []models.TrendPoint{},
		TopKeywords:    []models.KeywordCount{},
	}
	if len(reviews) == 0 {
		return m, nil
	}

	var ratingSum, rated int
	for _, r := range reviews {
		if !r.HasRating() {
			continue
		}
		rated++
		ratingSum += r.Rating
		switch r.RatingSentiment() {
		case models.SentimentPositive:
			m.PositiveCount++
		case models.SentimentNegative:
			m.NegativeCount++
		default:
			m.NeutralCount++
		}
	}
	if rated > 0 {
		m.AverageRating = float64(ratingSum) / float64(rated)
	}

	// text sentiment only covers reviews that have text
	var texted []models.Review
	for _, r := range reviews {
		if strings.TrimSpace(r.ReviewText) != "" {
			texted = append(texted, r)
		}
	}
	texts := make([]string, len(texted))
	for i, r := range texted {
		texts[i] = r.ReviewText
	}
	results := sentiment.AnalyzeBatch(texts)
	if len(results) > 0 {
		m.SentimentScore = sentiment.BrandScore(results)
		m.SentimentLabel = sentiment.Label(m.SentimentScore)
	}

	m.Trend, m.UndatedReviews = trend(reviews, granularity, window(opts.TrendWindow, DefaultTrendWindow))
	for _, p := range m.Trend {
		m.MonthlyTrend = append(m.MonthlyTrend, p.PositiveShare)
	}

	m.TopKeywords = topKeywords(texted, results, opts)
	return m, nil
}

func (o Options) selectedKeywords() ([]string, bool) {
	var kws []string
	valid := 0
	for _, name := range o.Categories {
		list, ok := o.CategoryKeywords[name]
		if !ok {
			continue
		}
		valid++
		kws = append(kws, list...)
	}
	return kws, valid > 0
}

func trend(reviews []models.Review, granularity string, limit int) ([]models.TrendPoint, int) {
	layout := "2006-01"
	if granularity == ByYear {
		layout = "2006"
	}

	buckets := make(map[string]*models.TrendPoint)
	undated := 0
	for _, r := range reviews {
		d, ok := ParseDate(r.Date)
		if !ok {
			undated++
			continue
		}
		key := d.Format(layout)
		p, ok := buckets[key]
		if !ok {
			p = &models.TrendPoint{Period: key}
			buckets[key] = p
		}
		p.Total++
		if !r.HasRating() {
			continue
		}
		switch r.RatingSentiment() {
		case models.SentimentPositive:
			p.Positive++
		case models.SentimentNegative:
			p.Negative++
		default:
			p.Neutral++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	// fixed-width keys sort chronologically
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	points := make([]models.TrendPoint, 0, len(keys))
	for _, k := range keys {
		p := *buckets[k]
		if p.Total > 0 {
			p.PositiveShare = sentiment.Round2(float64(p.Positive) / float64(p.Total))
		}
		points = append(points, p)
	}
	return points, undated
}

type keywordTally struct {
	count             int
	pos, neg, neutral int
}

func topKeywords(reviews []models.Review, results []sentiment.Result, opts Options) []models.KeywordCount {
	all := allKeywords(opts.CategoryKeywords)
	if len(all) == 0 || len(reviews) == 0 {
		return []models.KeywordCount{}
	}

	tallies := make(map[string]*keywordTally)
	for i, r := range reviews {
		doc := opts.Matcher.Document(r.ReviewText)
		for _, kw := range all {
			if !doc.Has(kw) {
				continue
			}
			t, ok := tallies[kw]
			if !ok {
				t = &keywordTally{}
				tallies[kw] = t
			}
			t.count++
			switch results[i].Classification {
			case models.SentimentPositive:
				t.pos++
			case models.SentimentNegative:
				t.neg++
			default:
				t.neutral++
			}
		}
	}

	out := make([]models.KeywordCount, 0, len(tallies))
	for kw, t := range tallies {
		out = append(out, models.KeywordCount{Keyword: kw, Count: t.count, Sentiment: t.dominant()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})

	limit := window(opts.TopKeywordLimit, DefaultTopKeywordLimit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dominant picks negative or neutral only on a strict majority; ties lean positive
func (t keywordTally) dominant() string {
	switch {
	case t.neg > t.pos && t.neg > t.neutral:
		return models.SentimentNegative
	case t.neutral > t.pos && t.neutral > t.neg:
		return models.SentimentNeutral
	default:
		return models.SentimentPositive
	}
}

func allKeywords(categories map[string][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, kws := range categories {
		for _, kw := range kws {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if _, dup := seen[kw]; dup || kw == "" {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

// SortNewestFirst returns a copy of reviews ordered by date, newest first.
// Undated reviews keep their relative order at the end.
func SortNewestFirst(reviews []models.Review) []models.Review {
	type dated struct {
		review models.Review
		at     time.Time
		ok     bool
	}
	items := make([]dated, len(reviews))
	for i, r := range reviews {
		t, ok := ParseDate(r.Date)
		items[i] = dated{review: r, at: t, ok: ok}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].at.After(items[j].at)
	})

	out := make([]models.Review, len(items))
	for i, it := range items {
		out[i] = it.review
	}
	return out
}

func window(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
