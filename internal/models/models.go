package models

import "time"

// Sentiment classifications shared by the scorer, the aggregator and reports
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Review represents a single scraped customer review after ingestion
type Review struct {
	CustomerName   string `json:"customerName"`
	Date           string `json:"date"`   // free-form, e.g. "17 June 2025" or "2024-01-15"
	Rating         int    `json:"rating"` // 1..5, 0 when the producer omitted it
	ReviewText     string `json:"review"`
	ReviewLink     string `json:"reviewLink,omitempty"`
	SentimentLabel string `json:"sentiment,omitempty"` // pre-classified upstream, if any
}

// HasRating reports whether the review carries a usable star rating
func (r Review) HasRating() bool {
	return r.Rating >= 1 && r.Rating <= 5
}

// RatingSentiment classifies the review by stars alone: >=4 positive, <=2 negative, 3 neutral
func (r Review) RatingSentiment() string {
	switch {
	case r.Rating >= 4:
		return SentimentPositive
	case r.Rating == 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// KeywordCategory is a named group of keywords describing one review topic
type KeywordCategory struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// KeywordCount is one entry of the "top keywords" ranking
type KeywordCount struct {
	Keyword   string `json:"keyword"`
	Count     int    `json:"count"`
	Sentiment string `json:"sentiment"` // dominant text sentiment among matching reviews
}

// TrendPoint is the rating breakdown of a single month (or year)
type TrendPoint struct {
	Period        string  `json:"period"` // "2006-01" or "2006"
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Neutral       int     `json:"neutral"`
	Total         int     `json:"total"`
	PositiveShare float64 `json:"positiveShare"`
}

// BrandMetrics summarises a filtered review set.
//
// PositiveCount, NegativeCount and NeutralCount are rating sentiment (stars).
// SentimentScore and SentimentLabel are text sentiment (lexicon). The two are
// computed independently and can disagree.
type BrandMetrics struct {
	TotalReviews   int            `json:"totalReviews"`
	AverageRating  float64        `json:"averageRating"`
	PositiveCount  int            `json:"positiveCount"`
	NegativeCount  int            `json:"negativeCount"`
	NeutralCount   int            `json:"neutralCount"`
	SentimentScore float64        `json:"sentimentScore"` // 0..1
	SentimentLabel string         `json:"sentimentLabel"`
	MonthlyTrend   []float64      `json:"monthlyTrend"`
	Trend          []TrendPoint   `json:"trend"`
	UndatedReviews int            `json:"undatedReviews"`
	TopKeywords    []KeywordCount `json:"topKeywords"`
}

// Report represents a periodic digest for one brand
type Report struct {
	ID          string       `json:"id"`
	Brand       string       `json:"brand"`
	GeneratedAt time.Time    `json:"generated_at"`
	Period      string       `json:"period"` // "daily" or "weekly"
	Metrics     BrandMetrics `json:"metrics"`
	Reviews     []Review     `json:"reviews"`
}

// Alert represents an urgent notification
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "critical", "urgent", "info"
	Brand     string    `json:"brand"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
