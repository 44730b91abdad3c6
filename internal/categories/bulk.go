package categories

import (
	"regexp"
	"sort"
	"strings"

	"github.com/brandpulse/review-analytics/internal/models"
)

var (
	headerPattern = regexp.MustCompile(`^[A-Z][^:]*:$`)
	bulletPattern = regexp.MustCompile(`^[-*]\s*`)
)

// ParseBulkEdit reads the textarea format used to edit every category at once:
//
//	Sizing & Fit Mentions:
//	- size
//	- true to size
//
//	Custom Category:
//	- my keyword
//
// A header is a line that starts with an upper-case letter and ends with a
// single colon. Lines before the first header are dropped.
func ParseBulkEdit(text string) []models.KeywordCategory {
	var out []models.KeywordCategory
	current := -1

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if headerPattern.MatchString(line) {
			out = append(out, models.KeywordCategory{
				Name:     strings.TrimSuffix(line, ":"),
				Keywords: []string{},
			})
			current = len(out) - 1
			continue
		}
		if current < 0 {
			continue
		}
		kw := NormalizeKeyword(bulletPattern.ReplaceAllString(line, ""))
		if kw != "" {
			out[current].Keywords = append(out[current].Keywords, kw)
		}
	}

	for i := range out {
		out[i].Keywords = NormalizeList(out[i].Keywords)
	}
	return out
}

// Serialize renders categories in the bulk-edit format read by ParseBulkEdit
func Serialize(categories []models.KeywordCategory) string {
	blocks := make([]string, 0, len(categories))
	for _, c := range categories {
		var b strings.Builder
		b.WriteString(c.Name)
		b.WriteString(":")
		for _, kw := range NormalizeList(c.Keywords) {
			b.WriteString("\n- ")
			b.WriteString(kw)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// ValidCategoryName reports whether name serializes to a line ParseBulkEdit
// reads back as the same header
func ValidCategoryName(name string) bool {
	return name == strings.TrimSpace(name) &&
		!strings.ContainsAny(name, "\r\n") &&
		headerPattern.MatchString(name+":")
}

// NormalizeKeyword lower-cases a keyword and collapses its whitespace to single spaces
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

// NormalizeList normalizes, de-duplicates and sorts keywords case-insensitively.
// The result is never nil.
func NormalizeList(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = NormalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
