package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/brandpulse/review-analytics/internal/models"
)

// Date range presets
const (
	RangeAll     = "all"
	RangeWeek    = "7d"
	RangeMonth   = "30d"
	RangeQuarter = "3m"
	RangeHalf    = "6m"
	RangeCustom  = "custom"
)

// Filters narrows a review set before aggregation. The zero value keeps everything.
type Filters struct {
	Rating RatingFilter `json:"rating"`
	Search string       `json:"search"` // case-insensitive substring of the review text
	Range  DateRange    `json:"dateRange"`
	Now    time.Time    `json:"-"` // reference time for relative presets; zero means time.Now()
}

// RatingFilter selects star ratings. No ratings means all.
//
// In JSON it is "all", a single number, or an array of numbers.
type RatingFilter struct {
	Ratings []int
}

// OnlyRatings builds a filter accepting the given star ratings
func OnlyRatings(ratings ...int) RatingFilter {
	return RatingFilter{Ratings: ratings}
}

// Allows reports whether a review with this rating passes the filter
func (f RatingFilter) Allows(rating int) bool {
	if len(f.Ratings) == 0 {
		return true
	}
	for _, r := range f.Ratings {
		if r == rating {
			return true
		}
	}
	return false
}

func (f RatingFilter) MarshalJSON() ([]byte, error) {
	switch len(f.Ratings) {
	case 0:
		return []byte(`"all"`), nil
	case 1:
		return json.Marshal(f.Ratings[0])
	}
	return json.Marshal(f.Ratings)
}

func (f *RatingFilter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.Ratings = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ToLower(s))
		if s == "" || s == RangeAll {
			f.Ratings = nil
			return nil
		}
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return fmt.Errorf("invalid rating filter %q", s)
		}
		f.Ratings = []int{n}
	case '[':
		var ratings []int
		if err := json.Unmarshal(data, &ratings); err != nil {
			return fmt.Errorf("invalid rating filter: %w", err)
		}
		f.Ratings = ratings
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid rating filter: %w", err)
		}
		f.Ratings = []int{n}
	}
	return nil
}

// DateRange bounds review dates, either by a relative preset or by a custom
// From/To pair. From and To accept any format understood by ParseDate.
type DateRange struct {
	Preset string `json:"preset"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// Bounds resolves the range against now. A zero time means that side is open.
// A To date without a clock component includes that whole day.
func (d DateRange) Bounds(now time.Time) (from, to time.Time, err error) {
	switch strings.ToLower(strings.TrimSpace(d.Preset)) {
	case "", RangeAll:
		return time.Time{}, time.Time{}, nil
	case RangeWeek:
		return now.AddDate(0, 0, -7), time.Time{}, nil
	case RangeMonth:
		return now.AddDate(0, 0, -30), time.Time{}, nil
	case RangeQuarter:
		return now.AddDate(0, -3, 0), time.Time{}, nil
	case RangeHalf:
		return now.AddDate(0, -6, 0), time.Time{}, nil
	case RangeCustom:
		if d.From != "" {
			t, ok := ParseDate(d.From)
			if !ok {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", d.From)
			}
			from = t
		}
		if d.To != "" {
			t, ok := ParseDate(d.To)
			if !ok {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", d.To)
			}
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			to = t
		}
		return from, to, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown date range preset %q", d.Preset)
}

// IsBounded reports whether the range excludes anything
func (d DateRange) IsBounded() bool {
	switch strings.ToLower(strings.TrimSpace(d.Preset)) {
	case "", RangeAll:
		return false
	case RangeCustom:
		return d.From != "" || d.To != ""
	}
	return true
}

var dateLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses the date formats seen in scraped reviews ("17 June 2025",
// "2024-01-15", RFC 3339 timestamps, ...). It reports false when s is not a date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	// every supported format carries a day or a year
	if !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Filter returns the reviews passing every filter, in input order. The input
// slice is not modified. Undated reviews are dropped whenever a date bound is active.
func Filter(reviews []models.Review, f Filters) ([]models.Review, error) {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	from, to, err := f.Range.Bounds(now)
	if err != nil {
		return nil, err
	}
	bounded := !from.IsZero() || !to.IsZero()
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if !f.Rating.Allows(r.Rating) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.ReviewText), search) {
			continue
		}
		if bounded {
			d, ok := ParseDate(r.Date)
			if !ok {
				continue
			}
			if !from.IsZero() && d.Before(from) {
				continue
			}
			if !to.IsZero() && d.After(to) {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}
