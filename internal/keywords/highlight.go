package keywords

import (
	"sort"
	"strings"

	"github.com/brandpulse/review-analytics/internal/textnorm"
)

// Span marks a highlighted byte range [Start, End) of the original text
type Span struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Keyword string `json:"keyword"`
}

// Highlight returns non-overlapping spans of keyword hits in text, ordered by position.
//
// Longer keywords are placed first so "size up" is never split by "size".
// In ModeLemma, single words whose lemma equals a single-word keyword's lemma
// are also marked ("fits" for "fit").
func (m *Matcher) Highlight(text string, keywords []string) []Span {
	if text == "" || len(keywords) == 0 {
		return nil
	}

	kws := distinct(keywords)
	sort.SliceStable(kws, func(i, j int) bool {
		if len(kws[i]) != len(kws[j]) {
			return len(kws[i]) > len(kws[j])
		}
		return kws[i] < kws[j]
	})

	lower := textnorm.Lower(text)
	var spans []Span
	for _, kw := range kws {
		for _, start := range findAll(lower, kw) {
			s := Span{Start: start, End: start + len(kw), Keyword: kw}
			if !overlaps(spans, s) {
				spans = append(spans, s)
			}
		}
	}

	if m.mode() == ModeLemma {
		spans = m.highlightLemmas(lower, kws, spans)
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func (m *Matcher) highlightLemmas(lower string, kws []string, spans []Span) []Span {
	byLemma := make(map[string]string)
	for _, kw := range kws {
		if strings.ContainsAny(kw, " \t") {
			continue
		}
		if l := textnorm.Lemma(kw); l != "" {
			if _, ok := byLemma[l]; !ok {
				byLemma[l] = kw
			}
		}
	}
	if len(byLemma) == 0 {
		return spans
	}

	for i := 0; i < len(lower); {
		if !textnorm.IsWordByte(lower[i]) {
			i++
			continue
		}
		j := i
		for j < len(lower) && textnorm.IsWordByte(lower[j]) {
			j++
		}
		if kw, ok := byLemma[textnorm.Lemma(lower[i:j])]; ok {
			s := Span{Start: i, End: j, Keyword: kw}
			if !overlaps(spans, s) {
				spans = append(spans, s)
			}
		}
		i = j
	}
	return spans
}

func distinct(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = normalize(kw)
		if _, dup := seen[kw]; dup || kw == "" {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func overlaps(spans []Span, s Span) bool {
	for _, o := range spans {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}
