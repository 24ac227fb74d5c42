// Package label defines the per-token transformations used to turn a token
// sequence back into text, and the renderer that applies them.
package label

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrLengthMismatch is returned by Render when tokens and labels differ in length.
var ErrLengthMismatch = errors.New("label: tokens and labels differ in length")

// Separator is what goes between the previous rendered output and a token.
type Separator uint8

const (
	None Separator = iota
	Space
)

var separatorNames = [...]string{"NONE", "SPACE"}

func (s Separator) String() string {
	if int(s) < len(separatorNames) {
		return separatorNames[s]
	}
	return fmt.Sprintf("Separator(%d)", s)
}

// CaseOp is the case transform applied to a token before it is emitted.
type CaseOp uint8

const (
	Unchanged CaseOp = iota
	Lower
	CapitalizeFirst
	UpperAll
)

var caseOpNames = [...]string{"UNCHANGED", "LOWER", "CAPITALIZE_FIRST", "UPPER_ALL"}

func (c CaseOp) String() string {
	if int(c) < len(caseOpNames) {
		return caseOpNames[c]
	}
	return fmt.Sprintf("CaseOp(%d)", c)
}

// CaseOps lists every case transform in alignment priority order.
var CaseOps = []CaseOp{Unchanged, Lower, CapitalizeFirst, UpperAll}

// Apply returns token with the case transform applied.
// Casers are stateful, so a fresh one is built per call.
func (c CaseOp) Apply(token string) string {
	switch c {
	case Lower:
		return cases.Lower(language.Und).String(token)
	case UpperAll:
		return cases.Upper(language.Und).String(token)
	case CapitalizeFirst:
		if token == "" {
			return token
		}
		r, size := utf8.DecodeRuneInString(token)
		if r == utf8.RuneError && size <= 1 {
			return token
		}
		return string(unicode.ToTitle(r)) + token[size:]
	default:
		return token
	}
}

// Label describes how one token attaches to the text rendered before it.
type Label struct {
	Sep  Separator
	Case CaseOp
}

// String returns the canonical "SEP/CASE" form, e.g. "SPACE/UNCHANGED".
func (l Label) String() string {
	return l.Sep.String() + "/" + l.Case.String()
}

// Parse is the inverse of Label.String.
func Parse(s string) (Label, error) {
	sep, op, ok := strings.Cut(s, "/")
	if !ok {
		return Label{}, fmt.Errorf("label: malformed %q", s)
	}
	var l Label
	found := false
	for i, name := range separatorNames {
		if name == sep {
			l.Sep = Separator(i)
			found = true
			break
		}
	}
	if !found {
		return Label{}, fmt.Errorf("label: unknown separator %q", sep)
	}
	found = false
	for i, name := range caseOpNames {
		if name == op {
			l.Case = CaseOp(i)
			found = true
			break
		}
	}
	if !found {
		return Label{}, fmt.Errorf("label: unknown case op %q", op)
	}
	return l, nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Render builds text from tokens and their labels, left to right.
// The separator of the first label is ignored.
func Render(tokens []string, labels []Label) (string, error) {
	if len(tokens) != len(labels) {
		return "", ErrLengthMismatch
	}
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && labels[i].Sep == Space {
			b.WriteByte(' ')
		}
		b.WriteString(labels[i].Case.Apply(tok))
	}
	return b.String(), nil
}
