// Package textutil provides character-level helpers for token features and tokenization.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenizeRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+|[^\s\p{L}\p{M}\p{N}_]`)

// Tokenize splits text into runs of word characters and single non-space symbols.
// Whitespace is dropped, so "Don't stop." becomes [Don ' t stop .].
func Tokenize(text string) []string {
	return tokenizeRe.FindAllString(text, -1)
}

// Character classes of a token.
const (
	ClassAlpha   = "alpha"
	ClassNumeric = "numeric"
	ClassPunct   = "punct"
	ClassMixed   = "mixed"
	ClassEmpty   = "empty"
)

// CharClass returns the class of every rune in token combined:
// alpha, numeric or punct when all runes agree, mixed otherwise.
func CharClass(token string) string {
	if token == "" {
		return ClassEmpty
	}
	class := ""
	for _, r := range token {
		var c string
		switch {
		case unicode.IsLetter(r) || unicode.IsMark(r):
			c = ClassAlpha
		case unicode.IsDigit(r):
			c = ClassNumeric
		default:
			c = ClassPunct
		}
		if class == "" {
			class = c
		} else if class != c {
			return ClassMixed
		}
	}
	return class
}

// Shape describes the letter case of a token: lower, upper, title, mixed or none.
func Shape(token string) string {
	upper, lower := 0, 0
	firstUpper := false
	for i, r := range token {
		switch {
		case unicode.IsUpper(r):
			upper++
			if i == 0 {
				firstUpper = true
			}
		case unicode.IsLower(r):
			lower++
		}
	}
	switch {
	case upper == 0 && lower == 0:
		return "none"
	case upper == 0:
		return "lower"
	case lower == 0:
		return "upper"
	case upper == 1 && firstUpper:
		return "title"
	default:
		return "mixed"
	}
}

// IsPunct reports whether token is non-empty and contains no letters, digits or spaces.
func IsPunct(token string) bool {
	return CharClass(token) == ClassPunct
}

var digitRe = regexp.MustCompile(`\d`)

// NumberPattern replaces digits with X and letters with C if the digit ratio >= threshold.
// Returns empty string otherwise.
func NumberPattern(text string, ratio float64) string {
	if text == "" {
		return ""
	}

	total := utf8.RuneCountInString(text)
	digitCount := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digitCount++
		}
	}

	if float64(digitCount)/float64(total) < ratio {
		return ""
	}
	result := digitRe.ReplaceAllString(text, "X")
	var buf strings.Builder
	for _, r := range result {
		if r == 'X' || !unicode.IsLetter(r) {
			buf.WriteRune(r)
		} else {
			buf.WriteRune('C')
		}
	}
	return buf.String()
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
