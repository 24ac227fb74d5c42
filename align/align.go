// Package align induces, for a (raw text, tokens) pair, the label sequence
// that renders the tokens back to exactly the raw text.
package align

import (
	"strings"

	"github.com/happyhackingspace/detok/label"
)

// Align scans raw left to right, matching each token at the cursor.
// It returns ok=false when no label sequence reproduces raw. There is no
// partial result: either every token is accounted for and the cursor ends at
// len(raw), or the whole pair is rejected.
//
// Per token the variants are tried in this order: exact case before any case
// transform; within one case op, a single separating space before no separator.
// SPACE is only chosen when raw really holds a space at the cursor.
func Align(raw string, tokens []string) ([]label.Label, bool) {
	if raw == "" || len(tokens) == 0 {
		return nil, false
	}

	labels := make([]label.Label, len(tokens))
	cursor := 0
	for i, tok := range tokens {
		l, next, ok := match(raw, cursor, tok, i == 0)
		if !ok {
			return nil, false
		}
		labels[i] = l
		cursor = next
	}
	if cursor != len(raw) {
		return nil, false
	}
	return labels, true
}

// match finds the first variant of tok that occurs at raw[cursor:] and
// returns its label and the cursor position after it.
func match(raw string, cursor int, tok string, first bool) (label.Label, int, bool) {
	rest := raw[cursor:]
	for _, op := range label.CaseOps {
		cand := op.Apply(tok)
		// A transform that leaves the token unchanged was already tried as exact.
		if op != label.Unchanged && cand == tok {
			continue
		}
		if !first && strings.HasPrefix(rest, " ") && strings.HasPrefix(rest[1:], cand) {
			return label.Label{Sep: label.Space, Case: op}, cursor + 1 + len(cand), true
		}
		if strings.HasPrefix(rest, cand) {
			return label.Label{Sep: label.None, Case: op}, cursor + len(cand), true
		}
	}
	return label.Label{}, cursor, false
}
