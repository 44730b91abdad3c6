// Package keywords decides which configured keywords and categories a review mentions.
package keywords

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brandpulse/review-analytics/internal/textnorm"
)

// Mode selects the matching strategy
type Mode int

const (
	// ModeWord matches keywords as whole words or phrases, case-insensitively
	ModeWord Mode = iota
	// ModeLemma matches when every lemma of the keyword occurs among the review's lemmas
	ModeLemma
)

func (m Mode) String() string {
	switch m {
	case ModeWord:
		return "word"
	case ModeLemma:
		return "lemma"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts "word" or "lemma" into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "word", "substring":
		return ModeWord, nil
	case "lemma", "nlp":
		return ModeLemma, nil
	}
	return ModeWord, fmt.Errorf("unknown match mode %q", s)
}

// Matcher matches review text against keyword lists. The zero value matches in ModeWord.
type Matcher struct {
	Mode Mode
}

// NewMatcher creates a matcher using the given strategy
func NewMatcher(mode Mode) *Matcher {
	return &Matcher{Mode: mode}
}

// Document is review text prepared for repeated keyword lookups
type Document struct {
	mode   Mode
	lower  string
	lemmas map[string]struct{}
}

// Document prepares text once so many keywords can be tested cheaply
func (m *Matcher) Document(text string) Document {
	doc := Document{mode: m.mode(), lower: textnorm.Lower(text)}
	if doc.mode == ModeLemma {
		lemmas := textnorm.Lemmas(text)
		doc.lemmas = make(map[string]struct{}, len(lemmas))
		for _, l := range lemmas {
			doc.lemmas[l] = struct{}{}
		}
	}
	return doc
}

func (m *Matcher) mode() Mode {
	if m == nil {
		return ModeWord
	}
	return m.Mode
}

// Has reports whether the keyword occurs in the document
func (d Document) Has(keyword string) bool {
	kw := normalize(keyword)
	if kw == "" {
		return false
	}
	if d.mode == ModeLemma {
		lemmas := textnorm.Lemmas(kw)
		if len(lemmas) == 0 {
			return false
		}
		for _, l := range lemmas {
			if _, ok := d.lemmas[l]; !ok {
				return false
			}
		}
		return true
	}
	return len(findAll(d.lower, kw)) > 0
}

// Matches reports whether text mentions at least one keyword. An empty list matches nothing.
func (m *Matcher) Matches(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}
	doc := m.Document(text)
	for _, kw := range keywords {
		if doc.Has(kw) {
			return true
		}
	}
	return false
}

// MatchedKeywords returns the distinct keywords found in text, normalized,
// in the order they appear in keywords.
func (m *Matcher) MatchedKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}
	doc := m.Document(text)
	seen := make(map[string]struct{}, len(keywords))
	var matched []string
	for _, kw := range keywords {
		kw = normalize(kw)
		if _, dup := seen[kw]; dup || kw == "" {
			continue
		}
		seen[kw] = struct{}{}
		if doc.Has(kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// MatchCategories returns the sorted names of every category with at least one matching keyword
func (m *Matcher) MatchCategories(text string, categories map[string][]string) []string {
	if text == "" {
		return nil
	}
	doc := m.Document(text)
	var names []string
	for name, kws := range categories {
		for _, kw := range kws {
			if doc.Has(kw) {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

func normalize(keyword string) string {
	return textnorm.Lower(strings.TrimSpace(keyword))
}

// findAll returns the start offsets of kw in lower where kw is bounded by
// non-word bytes or the ends of the text. Both arguments must be lower case.
func findAll(lower, kw string) []int {
	var hits []int
	for from := 0; from <= len(lower)-len(kw); {
		i := strings.Index(lower[from:], kw)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(kw)
		if bounded(lower, start, end) {
			hits = append(hits, start)
		}
		from = start + 1
	}
	return hits
}

func bounded(s string, start, end int) bool {
	if start > 0 && textnorm.IsWordByte(s[start-1]) && textnorm.IsWordByte(s[start]) {
		return false
	}
	if end < len(s) && textnorm.IsWordByte(s[end]) && textnorm.IsWordByte(s[end-1]) {
		return false
	}
	return true
}
