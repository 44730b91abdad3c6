package monitoring

import (
	"github.com/brandpulse/review-analytics/internal/keywords"
	"github.com/brandpulse/review-analytics/internal/sentiment"
)

// Inspection is the per-review view used by the review table: text
// sentiment, matched categories and the spans to highlight
type Inspection struct {
	Sentiment  sentiment.Result `json:"sentiment"`
	Categories []string         `json:"categories"`
	Highlights []keywords.Span  `json:"highlights"`
}

// Inspect classifies one review text. Highlights are limited to the selected
// categories; with no selection every configured keyword is highlighted.
func (s *Service) Inspect(text string, selected []string) Inspection {
	all := s.categories.Map()

	var kws []string
	if len(selected) == 0 {
		for _, list := range all {
			kws = append(kws, list...)
		}
	} else {
		for _, name := range selected {
			kws = append(kws, all[name]...)
		}
	}

	return Inspection{
		Sentiment:  sentiment.Analyze(text),
		Categories: s.matcher.MatchCategories(text, all),
		Highlights: s.matcher.Highlight(text, kws),
	}
}
