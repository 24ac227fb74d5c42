package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/detok"
	"github.com/happyhackingspace/detok/internal/corpus"
	"github.com/happyhackingspace/detok/label"
)

func (c *CLI) newRunCommand() *cobra.Command {
	var modelPath string
	var tokenize bool
	var proba bool

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Detokenize space-separated token lines from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Detokenize a tokenized file (.gz accepted)
  detok run news.tok --model model.json

  # Pipe token lines
  echo "Hello , world !" | detok run

  # Tokenize raw lines first, then detokenize them back
  detok run news.raw --tokenize

  # Show per-token label probabilities as JSON lines
  echo "Hello , world !" | detok run --proba`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			d, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "duration", time.Since(start))

			var lines []string
			if len(args) == 0 {
				if isStdinTerminal() {
					return cmd.Help()
				}
				lines, err = readLines(os.Stdin)
			} else {
				lines, err = corpus.ReadLines(args[0])
			}
			if err != nil {
				return err
			}

			var tok corpus.Tokenizer = whitespaceTokenizer{}
			if tokenize {
				tok = corpus.RegexTokenizer{}
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			for _, line := range lines {
				tokens := tok.Tokenize(line)
				if !proba {
					_, _ = fmt.Fprintln(out, d.Detokenize(tokens))
					continue
				}
				data, err := json.Marshal(newLineResult(d, tokens))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(data))
			}
			slog.Debug("Detokenized", "lines", len(lines), "duration", time.Since(start))
			return out.Flush()
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: model.json in the working directory or a parent)")
	cmd.Flags().BoolVar(&tokenize, "tokenize", false, "Treat input lines as raw text and tokenize them first")
	cmd.Flags().BoolVar(&proba, "proba", false, "Print JSON with per-token label probabilities")
	return cmd
}

type tokenResult struct {
	Token string                  `json:"token"`
	Label label.Label             `json:"label"`
	Proba map[label.Label]float64 `json:"proba"`
}

type lineResult struct {
	Text   string        `json:"text"`
	Tokens []tokenResult `json:"tokens"`
}

func newLineResult(d *detok.Detokenizer, tokens []string) lineResult {
	labels := d.PredictLabels(tokens)
	proba := d.Proba(tokens)
	res := lineResult{Tokens: make([]tokenResult, len(tokens))}
	res.Text, _ = detok.Render(tokens, labels)
	for i, tok := range tokens {
		res.Tokens[i] = tokenResult{Token: tok, Label: labels[i], Proba: proba[i]}
	}
	return res
}

type whitespaceTokenizer struct{}

func (whitespaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}

func loadModel(modelPath string) (*detok.Detokenizer, error) {
	if modelPath != "" {
		slog.Debug("Loading model", "path", modelPath)
		return detok.Load(modelPath)
	}
	return detok.New()
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return lines, nil
}
