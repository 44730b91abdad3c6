// Package textnorm turns review text into match-ready tokens.
//
// Tokens lower-cases ASCII letters, drops every byte that is not an ASCII
// letter, digit or whitespace, and splits on whitespace runs. Lemmas does the
// same and then reduces each token to a dictionary base form.
package textnorm

import "strings"

// Lower lower-cases ASCII letters only. Byte offsets in the result match the
// input, which lets callers map matches back onto the original text.
func Lower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// IsWordByte reports whether c is an ASCII letter or digit
func IsWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Clean lower-cases text and strips everything except ASCII letters, digits and whitespace
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case IsWordByte(c) || isSpace(c):
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Tokens returns the normalized word tokens of text. Empty input yields no tokens.
func Tokens(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(Clean(text))
}

// Lemmas returns Tokens(text) with every token reduced by Lemma
func Lemmas(text string) []string {
	tokens := Tokens(text)
	for i, t := range tokens {
		tokens[i] = Lemma(t)
	}
	return tokens
}
