package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/brandpulse/review-analytics/internal/models"
)

// Producers disagree on key names; the first key present wins.
var (
	customerKeys  = []string{"customerName", "customer name", "customer_name", "customer"}
	textKeys      = []string{"review", "reviewText", "review_text", "text"}
	dateKeys      = []string{"date", "review_date", "reviewDate"}
	ratingKeys    = []string{"rating", "stars"}
	linkKeys      = []string{"reviewLink", "review_link", "link"}
	sentimentKeys = []string{"sentimentLabel", "sentiment", "sentiment_category"}
)

// DecodeReviews parses a JSON array of review records, or an object with a
// "reviews" array, into normalized reviews. Records that are not objects are skipped.
func DecodeReviews(data []byte) ([]models.Review, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var records []json.RawMessage
	if data[0] == '{' {
		var wrapper struct {
			Reviews []json.RawMessage `json:"reviews"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse reviews: %w", err)
		}
		records = wrapper.Reviews
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse reviews: %w", err)
	}

	reviews := make([]models.Review, 0, len(records))
	for _, raw := range records {
		var record map[string]json.RawMessage
		if err := json.Unmarshal(raw, &record); err != nil || record == nil {
			continue
		}
		reviews = append(reviews, NormalizeRecord(record))
	}
	return reviews, nil
}

// NormalizeRecord maps one producer-specific record onto models.Review
func NormalizeRecord(record map[string]json.RawMessage) models.Review {
	return models.Review{
		CustomerName:   stringField(record, customerKeys),
		Date:           stringField(record, dateKeys),
		Rating:         ratingField(record, ratingKeys),
		ReviewText:     stringField(record, textKeys),
		ReviewLink:     stringField(record, linkKeys),
		SentimentLabel: strings.ToLower(stringField(record, sentimentKeys)),
	}
}

func stringField(record map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		raw, ok := record[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// ratingField accepts 5, 4.0, "5" and "Rated 4 out of 5 stars". Anything outside 1..5 is 0.
func ratingField(record map[string]json.RawMessage, keys []string) int {
	for _, k := range keys {
		raw, ok := record[k]
		if !ok {
			continue
		}

		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return validRating(int(math.Round(n)))
		}

		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return validRating(int(math.Round(f)))
		}
		for _, c := range s {
			if c >= '1' && c <= '5' {
				return int(c - '0')
			}
		}
	}
	return 0
}

func validRating(r int) int {
	if r < 1 || r > 5 {
		return 0
	}
	return r
}

// Dedupe drops repeated reviews, keeping the first occurrence. Reviews are
// keyed by link, or by customer, date and the first 20 characters of text.
func Dedupe(reviews []models.Review) []models.Review {
	seen := make(map[string]struct{}, len(reviews))
	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		key := dedupeKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dedupeKey(r models.Review) string {
	if r.ReviewLink != "" {
		return "link:" + r.ReviewLink
	}
	prefix := []rune(r.ReviewText)
	if len(prefix) > 20 {
		prefix = prefix[:20]
	}
	return r.CustomerName + "|" + r.Date + "|" + string(prefix)
}

// CanonicalBrandID lower-cases a brand name and drops everything but letters and digits
func CanonicalBrandID(brand string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(brand) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}
