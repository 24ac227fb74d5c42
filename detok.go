// Package detok restores fluent, correctly spaced and cased text from token
// sequences. The restoration rule is learned from parallel (raw text, tokens)
// examples: each token gets a label saying how it attaches to the text before
// it, a maximum entropy classifier learns to predict that label from local
// context, and the predicted labels are rendered back to text.
//
//	d, counts, _ := detok.Train(10, entries, nil)
//	text := d.Detokenize([]string{"Hello", ",", "world", "!"})
//	fmt.Println(text) // "Hello, world!"
package detok

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/happyhackingspace/detok/features"
	"github.com/happyhackingspace/detok/label"
	"github.com/happyhackingspace/detok/maxent"
)

// ErrDegenerateModel is returned by Train when no entry could be aligned.
var ErrDegenerateModel = errors.New("detok: no accepted training examples")

// Entry is one training or evaluation unit: raw text and its tokens.
type Entry struct {
	Raw    string   `json:"raw"`
	Tokens []string `json:"tokens"`
}

// Detokenizer wraps a trained model. It is immutable and safe for concurrent use.
type Detokenizer struct {
	model  *maxent.Model
	labels []label.Label // class ID -> label
}

// New loads the detokenizer from "model.json", searching the current directory
// and parent directories up to the module root (where go.mod lives).
func New() (*Detokenizer, error) {
	path, err := findModel("model.json")
	if err != nil {
		return nil, fmt.Errorf("detok: %w", err)
	}
	return Load(path)
}

func findModel(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		// Stop at module root
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s not found", name)
}

func fromModel(m *maxent.Model) (*Detokenizer, error) {
	labels := make([]label.Label, m.NumClasses())
	for i, name := range m.Classes.ToStr {
		l, err := label.Parse(name)
		if err != nil {
			return nil, err
		}
		labels[i] = l
	}
	return &Detokenizer{model: m, labels: labels}, nil
}

// Load loads a trained detokenizer from a model file.
func Load(path string) (*Detokenizer, error) {
	m, err := maxent.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("detok: %w", err)
	}
	d, err := fromModel(m)
	if err != nil {
		return nil, fmt.Errorf("detok: %w", err)
	}
	return d, nil
}

// Save writes the detokenizer to a model file.
func (d *Detokenizer) Save(path string) error {
	if d.model == nil {
		return fmt.Errorf("detok: detokenizer not initialized")
	}
	if err := maxent.SaveModel(d.model, path); err != nil {
		return fmt.Errorf("detok: %w", err)
	}
	return nil
}

// Labels returns the label vocabulary of the model, indexed by class ID.
func (d *Detokenizer) Labels() []label.Label {
	return append([]label.Label(nil), d.labels...)
}

// Model returns the underlying classifier.
func (d *Detokenizer) Model() *maxent.Model {
	return d.model
}

// PredictLabels predicts a label for every token independently, using only
// the token sequence itself as context.
func (d *Detokenizer) PredictLabels(tokens []string) []label.Label {
	out := make([]label.Label, len(tokens))
	for i := range tokens {
		out[i] = d.labels[d.model.PredictIndex(features.TokenFeatures(tokens, i))]
	}
	return out
}

// Proba returns, for every token, the predicted distribution over the
// model's labels.
func (d *Detokenizer) Proba(tokens []string) []map[label.Label]float64 {
	out := make([]map[label.Label]float64, len(tokens))
	for i := range tokens {
		probs := d.model.Proba(features.TokenFeatures(tokens, i))
		dist := make(map[label.Label]float64, len(d.labels))
		for id, name := range d.model.Classes.ToStr {
			dist[d.labels[id]] = probs[name]
		}
		out[i] = dist
	}
	return out
}

// Detokenize predicts labels for tokens and renders them to text.
func (d *Detokenizer) Detokenize(tokens []string) string {
	text, _ := label.Render(tokens, d.PredictLabels(tokens))
	return text
}

// Render builds text from tokens and their labels.
func Render(tokens []string, labels []label.Label) (string, error) {
	return label.Render(tokens, labels)
}
