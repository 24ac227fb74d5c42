package vectorizer

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DictVectorizer converts feature dicts to sparse vectors.
// Features never seen during Fit are dropped by Transform.
type DictVectorizer struct {
	FeatureNames []string `json:"feature_names"`
	MinCount     int      `json:"min_count,omitempty"`

	featureIndex map[string]int
}

// NewDictVectorizer creates an empty DictVectorizer that keeps features seen
// in at least minCount dicts.
func NewDictVectorizer(minCount int) *DictVectorizer {
	if minCount < 1 {
		minCount = 1
	}
	return &DictVectorizer{MinCount: minCount}
}

// Fit builds the feature mapping from a list of feature dicts.
func (dv *DictVectorizer) Fit(data []map[string]any) {
	minCount := max(dv.MinCount, 1)
	counts := make(map[string]int)
	for _, d := range data {
		for k, v := range d {
			counts[featureKey(k, v)]++
		}
	}

	dv.FeatureNames = make([]string, 0, len(counts))
	for f, n := range counts {
		if n >= minCount {
			dv.FeatureNames = append(dv.FeatureNames, f)
		}
	}
	sort.Strings(dv.FeatureNames)
	dv.buildIndex()
}

// FitTransform fits and transforms the data.
func (dv *DictVectorizer) FitTransform(data []map[string]any) []SparseVector {
	dv.Fit(data)
	result := make([]SparseVector, len(data))
	for i, d := range data {
		result[i] = dv.Transform(d)
	}
	return result
}

// Transform converts a feature dict to a sparse vector sorted by index.
func (dv *DictVectorizer) Transform(d map[string]any) SparseVector {
	sv := NewSparseVector(len(dv.FeatureNames))
	for k, v := range d {
		if idx, ok := dv.featureIndex[featureKey(k, v)]; ok {
			if val := featureValue(v); val != 0 {
				sv.Set(idx, val)
			}
		}
	}
	sv.Sort()
	return sv
}

// Index returns the position of a feature key, or -1 if unknown.
func (dv *DictVectorizer) Index(key string) int {
	if idx, ok := dv.featureIndex[key]; ok {
		return idx
	}
	return -1
}

// VocabSize returns the number of features.
func (dv *DictVectorizer) VocabSize() int {
	return len(dv.FeatureNames)
}

// UnmarshalJSON implements json.Unmarshaler and rebuilds the feature index.
func (dv *DictVectorizer) UnmarshalJSON(data []byte) error {
	type Alias DictVectorizer
	if err := json.Unmarshal(data, (*Alias)(dv)); err != nil {
		return err
	}
	dv.buildIndex()
	return nil
}

func (dv *DictVectorizer) buildIndex() {
	dv.featureIndex = make(map[string]int, len(dv.FeatureNames))
	for i, f := range dv.FeatureNames {
		dv.featureIndex[f] = i
	}
}

// featureKey returns the feature key for a given name-value pair.
// For string values, it creates compound keys like "name=value".
// For numeric and bool values, it uses the key directly.
func featureKey(name string, value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s=%s", name, v)
	default:
		return name
	}
}

// featureValue returns the numeric value for a feature.
func featureValue(value any) float64 {
	switch v := value.(type) {
	case bool:
		if v {
			return 1.0
		}
		return 0.0
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 1.0
	}
}
