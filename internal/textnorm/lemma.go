package textnorm

import "strings"

var irregularNouns = map[string]string{
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"feet":     "foot",
	"teeth":    "tooth",
	"mice":     "mouse",
	"people":   "person",
	"geese":    "goose",
	"knives":   "knife",
	"wives":    "wife",
	"lives":    "life",
	"halves":   "half",
	"shelves":  "shelf",
}

var irregularVerbs = map[string]string{
	"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be",
	"has": "have", "had": "have", "having": "have",
	"does": "do", "did": "do", "done": "do",
	"went": "go", "gone": "go",
	"ran": "run", "bought": "buy", "brought": "bring", "sent": "send", "spent": "spend",
	"made": "make", "got": "get", "gotten": "get", "wore": "wear", "worn": "wear",
	"took": "take", "taken": "take", "came": "come", "gave": "give", "given": "give",
	"told": "tell", "said": "say", "felt": "feel", "kept": "keep", "left": "leave",
	"lost": "lose", "paid": "pay", "sold": "sell", "thought": "think", "found": "find",
	"knew": "know", "known": "know", "saw": "see", "seen": "see", "fitted": "fit",
	"using": "use", "used": "use", "chose": "choose", "chosen": "choose", "ate": "eat",
	"tore": "tear", "torn": "tear", "shrank": "shrink", "shrunk": "shrink",
}

var irregularAdjectives = map[string]string{
	"better": "good", "best": "good",
	"worse": "bad", "worst": "bad",
	"less": "little", "least": "little",
	"more": "much", "most": "much",
}

// adjectiveBases limits comparative stripping to known adjectives so that
// nouns like "order" or "customer" are left alone.
var adjectiveBases = toSet(
	"small", "large", "big", "tight", "loose", "long", "short", "wide", "narrow", "tall", "slim",
	"cheap", "fast", "quick", "slow", "nice", "easy", "happy", "soft", "thin", "thick", "light",
	"dark", "late", "early", "close", "fine", "low", "high", "deep", "great", "new", "old", "warm",
	"cold", "comfy", "pretty", "heavy", "lucky", "busy", "safe", "simple", "strong", "weak", "young",
)

// Words that look inflected but are base forms.
var invariant = toSet(
	"always", "perhaps", "yes", "this", "his", "hers", "its", "as", "us", "plus", "across", "unless",
	"towards", "sometimes", "thus", "nothing", "something", "anything", "everything", "thing",
	"morning", "evening", "clothing", "ceiling", "wedding", "pudding", "string", "spring", "king",
	"ring", "sing", "bring", "during", "hundred", "bed", "red", "need", "feed", "speed", "seed",
	"shed", "sled", "news", "series", "species", "lens", "bus", "gas", "less", "ness",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Lemma returns the base form of a single lower-case word: the noun lemma,
// else the verb lemma, else the adjective lemma, else the word itself.
func Lemma(word string) string {
	word = Lower(strings.TrimSpace(word))
	if word == "" {
		return ""
	}
	if _, ok := invariant[word]; ok {
		return word
	}
	if l := NounLemma(word); l != "" {
		return l
	}
	if l := VerbLemma(word); l != "" {
		return l
	}
	if l := AdjectiveLemma(word); l != "" {
		return l
	}
	return word
}

// NounLemma singularizes a plural noun. Returns "" when no rule applies.
func NounLemma(w string) string {
	if l, ok := irregularNouns[w]; ok {
		return l
	}
	if _, ok := irregularVerbs[w]; ok {
		return ""
	}
	n := len(w)
	switch {
	case n <= 3:
		return ""
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return ""
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "ches"),
		strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "xes"):
		return w[:n-2]
	case strings.HasSuffix(w, "s"):
		return w[:n-1]
	}
	return ""
}

// VerbLemma strips -ing, -ed and -ied inflections. Returns "" when no rule applies.
func VerbLemma(w string) string {
	if l, ok := irregularVerbs[w]; ok {
		return l
	}
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ied"):
		return w[:n-3] + "y"
	case n > 4 && strings.HasSuffix(w, "ing"):
		return restoreStem(w[:n-3])
	case n > 3 && strings.HasSuffix(w, "ed") && !strings.HasSuffix(w, "eed"):
		return restoreStem(w[:n-2])
	}
	return ""
}

// AdjectiveLemma reduces comparatives and superlatives of known adjectives.
// Returns "" when no rule applies.
func AdjectiveLemma(w string) string {
	if l, ok := irregularAdjectives[w]; ok {
		return l
	}
	n := len(w)
	var candidates []string
	switch {
	case n > 5 && strings.HasSuffix(w, "iest"):
		candidates = append(candidates, w[:n-4]+"y")
	case n > 4 && strings.HasSuffix(w, "ier"):
		candidates = append(candidates, w[:n-3]+"y")
	case n > 4 && strings.HasSuffix(w, "est"):
		stem := w[:n-3]
		candidates = append(candidates, stem, stem+"e", undouble(stem))
	case n > 3 && strings.HasSuffix(w, "er"):
		stem := w[:n-2]
		candidates = append(candidates, stem, stem+"e", undouble(stem))
	}
	for _, c := range candidates {
		if _, ok := adjectiveBases[c]; ok {
			return c
		}
	}
	return ""
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func hasVowel(s string) bool {
	for i := 0; i < len(s); i++ {
		if isVowel(s[i]) || (i > 0 && s[i] == 'y') {
			return true
		}
	}
	return false
}

// undouble turns "runn" into "run"; other stems are returned unchanged
func undouble(stem string) string {
	n := len(stem)
	if n >= 3 && stem[n-1] == stem[n-2] && !isVowel(stem[n-1]) {
		switch stem[n-1] {
		case 'l', 's', 'z':
			return stem
		}
		return stem[:n-1]
	}
	return stem
}

// restoreStem repairs the stem left after removing -ing or -ed.
func restoreStem(stem string) string {
	n := len(stem)
	if n < 2 || !hasVowel(stem) {
		return ""
	}
	if u := undouble(stem); u != stem {
		return u
	}
	last := stem[n-1]
	switch {
	case last == 'v' || last == 'u':
		// English words do not end in v; "arriv" -> "arrive", "continu" -> "continue"
		return stem + "e"
	case n == 3 && !isVowel(stem[0]) && isVowel(stem[1]) && !isVowel(last) &&
		last != 'w' && last != 'x' && last != 'y':
		// short consonant-vowel-consonant stems: "siz" -> "size", "mak" -> "make"
		return stem + "e"
	}
	return stem
}
