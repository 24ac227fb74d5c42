package corpus

import (
	"strings"

	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/pkg/errors"

	"github.com/happyhackingspace/detok/internal/textutil"
)

// Tokenizer turns text into an ordered token sequence.
type Tokenizer interface {
	Tokenize(text string) []string
}

// RegexTokenizer splits text into letter/digit runs and single punctuation marks.
type RegexTokenizer struct{}

var _ Tokenizer = RegexTokenizer{}

// Tokenize implements Tokenizer.
func (RegexTokenizer) Tokenize(text string) []string {
	return textutil.Tokenize(text)
}

// wordMarker is the U+2581 piece prefix SentencePiece uses for a preceding space.
const wordMarker = "▁"

// SentencePieceTokenizer tokenizes with a SentencePiece model. Word markers are
// stripped from the pieces and pieces left empty are dropped.
type SentencePieceTokenizer struct {
	proc *esentencepiece.Processor
}

var _ Tokenizer = (*SentencePieceTokenizer)(nil)

// NewSentencePieceTokenizer loads a SentencePiece model proto from path.
func NewSentencePieceTokenizer(path string) (*SentencePieceTokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", path)
	}
	return &SentencePieceTokenizer{proc: proc}, nil
}

// Tokenize implements Tokenizer.
func (t *SentencePieceTokenizer) Tokenize(text string) []string {
	return piecesToTokens(t.proc.Encode(text))
}

func piecesToTokens(pieces []esentencepiece.Token) []string {
	tokens := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if s := strings.ReplaceAll(p.Text, wordMarker, ""); s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// NewTokenizer returns the tokenizer registered under name: "regex" (the
// default when name is empty) or "sentencepiece", which needs modelPath.
func NewTokenizer(name, modelPath string) (Tokenizer, error) {
	switch strings.ToLower(name) {
	case "", "regex":
		return RegexTokenizer{}, nil
	case "sentencepiece", "spm":
		if modelPath == "" {
			return nil, errors.New("corpus: sentencepiece tokenizer needs a model path")
		}
		return NewSentencePieceTokenizer(modelPath)
	default:
		return nil, errors.Errorf("corpus: unknown tokenizer %q", name)
	}
}
