package vectorizer

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSparseVectorSet(t *testing.T) {
	sv := NewSparseVector(5)
	sv.Set(1, 2.0)
	sv.Set(3, 4.0)
	sv.Set(1, 5.0)

	if !reflect.DeepEqual(sv.Indices, []int{1, 3}) {
		t.Errorf("Indices = %v, want [1 3]", sv.Indices)
	}
	if !reflect.DeepEqual(sv.Values, []float64{5.0, 4.0}) {
		t.Errorf("Values = %v, want [5 4]", sv.Values)
	}
	if sv.Dim != 5 {
		t.Errorf("Dim = %d, want 5", sv.Dim)
	}
}

func TestSparseVectorSort(t *testing.T) {
	sv := NewSparseVector(10)
	sv.Set(7, 1.0)
	sv.Set(2, 3.0)
	sv.Set(5, 2.0)
	sv.Sort()

	if !reflect.DeepEqual(sv.Indices, []int{2, 5, 7}) {
		t.Errorf("Indices = %v, want [2 5 7]", sv.Indices)
	}
	if !reflect.DeepEqual(sv.Values, []float64{3.0, 2.0, 1.0}) {
		t.Errorf("Values = %v, want [3 2 1]", sv.Values)
	}
}

func TestDictVectorizer(t *testing.T) {
	dv := NewDictVectorizer(1)
	data := []map[string]any{
		{"is-first": true, "w": "Hello", "bias": 1},
		{"is-first": false, "w": ",", "bias": 1},
	}
	vectors := dv.FitTransform(data)

	if len(vectors) != 2 {
		t.Errorf("expected 2 vectors, got %d", len(vectors))
	}

	// String features create compound keys
	if dv.Index("w=Hello") < 0 {
		t.Error("expected 'w=Hello' in feature index")
	}
	if dv.Index("w=,") < 0 {
		t.Error("expected 'w=,' in feature index")
	}
	// Bool/numeric features use plain key
	if dv.Index("is-first") < 0 {
		t.Error("expected 'is-first' in feature index")
	}
	// false bools carry no weight
	if len(vectors[1].Indices) != 2 {
		t.Errorf("second vector nnz = %d, want 2", len(vectors[1].Indices))
	}
}

func TestDictVectorizerMinCount(t *testing.T) {
	dv := NewDictVectorizer(2)
	dv.Fit([]map[string]any{
		{"w": "a", "bias": 1},
		{"w": "b", "bias": 1},
	})
	if dv.VocabSize() != 1 || dv.Index("bias") != 0 {
		t.Errorf("FeatureNames = %v, want [bias]", dv.FeatureNames)
	}
}

func TestDictVectorizerTransformUnknown(t *testing.T) {
	dv := NewDictVectorizer(1)
	dv.Fit([]map[string]any{
		{"w": "red", "bias": 1},
		{"w": "blue", "bias": 1},
	})

	sv := dv.Transform(map[string]any{"w": "red"})
	if sv.Dim != dv.VocabSize() {
		t.Errorf("Dim mismatch: %d vs %d", sv.Dim, dv.VocabSize())
	}
	if len(sv.Indices) != 1 {
		t.Errorf("nnz = %d, want 1", len(sv.Indices))
	}

	sv2 := dv.Transform(map[string]any{"w": "green"})
	if len(sv2.Indices) != 0 {
		t.Errorf("unknown feature value should produce no entries, got %d", len(sv2.Indices))
	}
}

func TestDictVectorizerJSON(t *testing.T) {
	dv := NewDictVectorizer(1)
	dv.Fit([]map[string]any{{"w": "x", "is-last": true}})

	data, err := json.Marshal(dv)
	if err != nil {
		t.Fatal(err)
	}
	var back DictVectorizer
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.FeatureNames, dv.FeatureNames) {
		t.Errorf("FeatureNames = %v, want %v", back.FeatureNames, dv.FeatureNames)
	}
	if back.Index("w=x") != dv.Index("w=x") {
		t.Error("index not rebuilt after unmarshal")
	}
}
