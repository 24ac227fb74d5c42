// Package maxent implements a multinomial log-linear (maximum entropy)
// classifier over sparse feature dicts, trained with L2-regularized L-BFGS.
package maxent

import (
	"encoding/json"
	"math"

	"github.com/happyhackingspace/detok/internal/vectorizer"
)

// Alphabet maps between string labels and integer IDs.
type Alphabet struct {
	ToID  map[string]int `json:"-"`
	ToStr []string       `json:"to_str"`
}

// NewAlphabet creates an empty alphabet.
func NewAlphabet() *Alphabet {
	return &Alphabet{
		ToID: make(map[string]int),
	}
}

// Add adds a string to the alphabet if not already present, returns its ID.
func (a *Alphabet) Add(s string) int {
	if id, ok := a.ToID[s]; ok {
		return id
	}
	id := len(a.ToStr)
	a.ToID[s] = id
	a.ToStr = append(a.ToStr, s)
	return id
}

// Get returns the ID for a string, or -1 if not found.
func (a *Alphabet) Get(s string) int {
	if id, ok := a.ToID[s]; ok {
		return id
	}
	return -1
}

// Size returns the number of entries.
func (a *Alphabet) Size() int {
	return len(a.ToStr)
}

// UnmarshalJSON implements json.Unmarshaler and rebuilds the reverse index.
func (a *Alphabet) UnmarshalJSON(data []byte) error {
	type Alias Alphabet
	if err := json.Unmarshal(data, (*Alias)(a)); err != nil {
		return err
	}
	a.rebuild()
	return nil
}

func (a *Alphabet) rebuild() {
	a.ToID = make(map[string]int, len(a.ToStr))
	for i, s := range a.ToStr {
		a.ToID[s] = i
	}
}

// Model holds the classifier parameters. It is never modified after Train
// returns, so it can be shared between goroutines.
type Model struct {
	Classes  *Alphabet                  `json:"classes"`
	Features *vectorizer.DictVectorizer `json:"features"`
	// Weight layout: featureID * numClasses + classID
	Weights []float64 `json:"weights"`
}

// NewModel creates a new empty model.
func NewModel() *Model {
	return &Model{
		Classes:  NewAlphabet(),
		Features: vectorizer.NewDictVectorizer(1),
	}
}

// NumClasses returns the size of the label vocabulary.
func (m *Model) NumClasses() int {
	return m.Classes.Size()
}

// Scores returns the linear score of every class for a feature dict.
// Features outside the vocabulary contribute nothing.
func (m *Model) Scores(feat map[string]any) []float64 {
	scores := make([]float64, m.NumClasses())
	classScores(m.Weights, m.Features.Transform(feat), scores)
	return scores
}

// PredictIndex returns the arg-max class ID; ties go to the lower ID.
func (m *Model) PredictIndex(feat map[string]any) int {
	return argmax(m.Scores(feat))
}

// Predict returns the arg-max class name.
func (m *Model) Predict(feat map[string]any) string {
	return m.Classes.ToStr[m.PredictIndex(feat)]
}

// Proba returns the class distribution for a feature dict.
func (m *Model) Proba(feat map[string]any) map[string]float64 {
	probs := softmax(m.Scores(feat))
	result := make(map[string]float64, len(probs))
	for c, cls := range m.Classes.ToStr {
		result[cls] = probs[c]
	}
	return result
}

// WeightNorm returns the L2 norm of the weight table.
func (m *Model) WeightNorm() float64 {
	return math.Sqrt(dot(m.Weights, m.Weights))
}

// classScores writes into scores the per-class dot product of x with w.
func classScores(w []float64, x vectorizer.SparseVector, scores []float64) {
	L := len(scores)
	for k := range scores {
		scores[k] = 0
	}
	for i, idx := range x.Indices {
		v := x.Values[i]
		row := w[idx*L : idx*L+L]
		for k := range L {
			scores[k] += v * row[k]
		}
	}
}

func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

func logSumExp(xs []float64) float64 {
	maxX := xs[0]
	for _, x := range xs[1:] {
		if x > maxX {
			maxX = x
		}
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - maxX)
	}
	return maxX + math.Log(sum)
}

func softmax(logits []float64) []float64 {
	lse := logSumExp(logits)
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(l - lse)
	}
	return probs
}
