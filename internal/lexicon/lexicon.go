// Package lexicon holds the fixed sentiment word lists and the built-in
// keyword category taxonomy used to classify product reviews.
package lexicon

import "github.com/brandpulse/review-analytics/internal/models"

// Built-in category names
const (
	SizingFit       = "Sizing & Fit Mentions"
	ModelReference  = "Model Reference"
	LengthBody      = "Length & Body Suitability"
	ReturnsExchange = "Returns & Exchanges"
	ServiceShipping = "Customer Service & Shipping"
	Custom          = "Custom Category"
)

var positiveWords = []string{
	"great", "excellent", "perfect", "amazing", "love", "good", "comfortable",
	"happy", "satisfied", "recommend", "quality", "fantastic", "wonderful",
	"beautiful", "stunning", "gorgeous", "brilliant", "outstanding", "superb",
	"incredible", "awesome", "lovely", "nice", "pleased", "delighted",
	"impressed", "helpful", "quick", "fast", "smooth", "easy", "professional",
	"friendly", "polite", "efficient", "responsive", "reliable",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "disappointed", "poor", "uncomfortable",
	"wrong", "small", "large", "tight", "loose", "return", "refund", "problem",
	"issue", "horrible", "disgusting", "appalling", "shocking", "ridiculous",
	"useless", "waste", "money", "time", "rude", "unprofessional", "slow",
	"delayed", "damaged", "broken", "faulty", "defective", "cheap", "overpriced",
	"expensive", "scam", "fraud", "illegal", "avoid",
}

var (
	positive = toSet(positiveWords)
	negative = toSet(negativeWords)
)

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsPositive reports whether token is in the positive lexicon. Tokens must be lower case.
func IsPositive(token string) bool {
	_, ok := positive[token]
	return ok
}

// IsNegative reports whether token is in the negative lexicon. Tokens must be lower case.
func IsNegative(token string) bool {
	_, ok := negative[token]
	return ok
}

// PositiveWords returns a copy of the positive lexicon
func PositiveWords() []string {
	return append([]string(nil), positiveWords...)
}

// NegativeWords returns a copy of the negative lexicon
func NegativeWords() []string {
	return append([]string(nil), negativeWords...)
}

var defaultCategories = []models.KeywordCategory{
	{
		Name: SizingFit,
		Keywords: []string{
			"size", "fit", "true to size", "not true to size", "run small", "run large", "size up", "size down",
			"too small", "too big", "too tight", "too loose", "too short", "too long", "too narrow", "too wide",
			"large", "small", "tight", "loose", "short", "long", "narrow", "wide", "comfortable", "comfort",
			"uncomfortable", "perfect fit", "poor fit", "didn't fit", "doesn't fit", "wouldn't fit",
			"wouldn't fit me", "didn't fit me", "wrong size", "ordered wrong size", "incorrect size",
			"right size", "correct size", "don't know my size", "didn't know which size", "idk which size",
			"what size", "which size", "what's the size", "unsure about size", "unsure about fit",
			"body shape", "body type", "body fit", "body fitting", "snug", "baggy", "oversized", "undersized",
			"perfect length", "tight on arm", "tight on chest", "tight on waist", "tight on hip",
			"loose on arm", "loose on chest", "loose on waist", "loose on hip",
		},
	},
	{
		Name: ModelReference,
		Keywords: []string{
			"model", "what size is the model wearing", "what size model wear", "model size", "model's size",
			"model is wearing size", "model wear size", "how tall is the model", "model height",
			"model's height", "model's measurement", "model measurement", "model's body type",
			"model's fit", "model reference", "as seen on model", "fit like model", "model's look",
		},
	},
	{
		Name: LengthBody,
		Keywords: []string{
			"length", "long", "short", "width", "wide", "narrow", "tall", "height", "fit my height",
			"fit my body", "fit my shape", "fit my frame", "fit my build", "fit my proportion",
			"suitable for", "suitability", "not suitable for", "not for my body", "not for my shape",
			"not for my height", "not for my build", "petite", "plus size", "curvy", "slim", "athletic",
			"athletic build", "athletic fit",
		},
	},
	{
		Name: ReturnsExchange,
		Keywords: []string{
			"return", "exchange", "refund", "money back", "store credit", "credit note", "send back",
			"wrong item", "incorrect item", "wrong order", "incorrect order", "wrong product",
			"incorrect product", "replacement", "process return", "process exchange", "process refund",
			"easy return", "easy exchange", "easy refund", "hassle-free return", "hassle-free exchange",
			"hassle-free refund", "difficult return", "difficult exchange", "difficult refund",
		},
	},
	{
		Name: ServiceShipping,
		Keywords: []string{
			"customer service", "support", "help", "assistant", "representative", "agent", "staff", "team",
			"service", "assistance", "helpful", "unhelpful", "rude", "polite", "friendly", "professional",
			"knowledgeable", "ignored", "responsive", "slow", "quick", "efficient", "inefficient", "resolved",
			"unresolved", "satisfied", "unsatisfied", "complaint", "inquiry", "question", "response", "reply",
			"contact", "call", "email", "chat", "live chat", "phone", "hotline", "helpline", "shipping",
			"delivery", "delivered", "arrived", "arrival", "shipped", "dispatch", "dispatched", "tracking",
			"track", "package", "parcel", "postage", "post", "courier", "carrier", "fast", "delayed", "late",
			"on time", "express", "standard", "free shipping", "shipping cost", "postage cost",
			"delivery fee", "tracking number", "order status", "in transit", "out for delivery", "received",
			"signature", "left at door", "neighbor", "mailbox", "post office", "collection", "pickup",
		},
	},
	{
		Name:     Custom,
		Keywords: []string{},
	},
}

// DefaultCategories returns a fresh copy of the built-in taxonomy in display order.
// Keyword lists are returned as seeded; callers normalize them.
func DefaultCategories() []models.KeywordCategory {
	out := make([]models.KeywordCategory, len(defaultCategories))
	for i, c := range defaultCategories {
		out[i] = models.KeywordCategory{
			Name:     c.Name,
			Keywords: append([]string{}, c.Keywords...),
		}
	}
	return out
}
