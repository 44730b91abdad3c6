package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexiconMembership(t *testing.T) {
	assert.True(t, IsPositive("great"))
	assert.True(t, IsNegative("terrible"))
	assert.False(t, IsPositive("terrible"))
	assert.False(t, IsNegative("okay"))
	assert.False(t, IsPositive("Great"), "lookups expect lower-case tokens")
}

func TestLexiconsAreDisjointAndLowerCase(t *testing.T) {
	for _, w := range PositiveWords() {
		assert.False(t, IsNegative(w), "%q is in both lexicons", w)
		assert.Equal(t, strings.ToLower(w), w)
	}
	for _, w := range NegativeWords() {
		assert.Equal(t, strings.ToLower(w), w)
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
		assert.NotNil(t, c.Keywords, c.Name)
	}
	assert.Equal(t, []string{SizingFit, ModelReference, LengthBody, ReturnsExchange, ServiceShipping, Custom}, names)
	assert.Empty(t, cats[len(cats)-1].Keywords)

	// callers get their own copy
	cats[0].Keywords[0] = "changed"
	assert.NotEqual(t, "changed", DefaultCategories()[0].Keywords[0])
}
