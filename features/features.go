// Package features turns each token of a sequence into a sparse feature dict
// built from the token and its immediate neighbours only.
package features

import (
	"strconv"
	"strings"

	"github.com/happyhackingspace/detok/internal/textutil"
)

const (
	boundaryStart = "<s>"
	boundaryEnd   = "</s>"
	maxLenBucket  = 6
)

// TokenFeatures extracts the features of one token, identified by its own
// text and class plus those of the previous and next token.
func TokenFeatures(tokens []string, i int) map[string]any {
	tok := tokens[i]
	feat := map[string]any{
		"bias": 1,
	}
	addTokenFeatures(feat, "", tok)

	if i == 0 {
		feat["is-first"] = true
		feat["p:w"] = boundaryStart
	} else {
		addTokenFeatures(feat, "p:", tokens[i-1])
	}
	if i == len(tokens)-1 {
		feat["is-last"] = true
		feat["n:w"] = boundaryEnd
	} else {
		addTokenFeatures(feat, "n:", tokens[i+1])
	}

	var prev, next string
	if i > 0 {
		prev = tokens[i-1]
	}
	if i < len(tokens)-1 {
		next = tokens[i+1]
	}
	if p, ok := pairKey(prev, tok); ok {
		feat["pair"] = p
	}
	if p, ok := pairKey(tok, next); ok {
		feat["n:pair"] = p
	}
	if pattern := textutil.NumberPattern(tok, 0.5); pattern != "" {
		feat["num-pattern"] = pattern
	}
	return feat
}

// SequenceFeatures extracts features for every token of a sequence.
func SequenceFeatures(tokens []string) []map[string]any {
	res := make([]map[string]any, len(tokens))
	for i := range tokens {
		res[i] = TokenFeatures(tokens, i)
	}
	return res
}

func addTokenFeatures(feat map[string]any, prefix, tok string) {
	feat[prefix+"w"] = tok
	feat[prefix+"lw"] = strings.ToLower(tok)
	feat[prefix+"class"] = textutil.CharClass(tok)
	feat[prefix+"shape"] = textutil.Shape(tok)
	feat[prefix+"len"] = lenBucket(tok)
}

func lenBucket(tok string) string {
	n := len([]rune(tok))
	if n >= maxLenBucket {
		return strconv.Itoa(maxLenBucket) + "+"
	}
	return strconv.Itoa(n)
}

// pairKey builds the identity feature for two adjacent tokens when at least
// one of them is punctuation (quotes and hyphens included). Non-punctuation
// tokens collapse to their class so the feature space stays closed.
func pairKey(left, right string) (string, bool) {
	if !textutil.IsPunct(left) && !textutil.IsPunct(right) {
		return "", false
	}
	return pairSide(left, boundaryStart) + "|" + pairSide(right, boundaryEnd), true
}

func pairSide(tok, boundary string) string {
	switch {
	case tok == "":
		return boundary
	case textutil.IsPunct(tok):
		return textutil.Truncate(tok, 3)
	default:
		return "<" + textutil.CharClass(tok) + ">"
	}
}
