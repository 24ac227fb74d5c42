// Package vectorizer maps feature dicts to sparse vectors over a fixed feature vocabulary.
package vectorizer

import "sort"

// SparseVector represents a sparse float64 vector.
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NewSparseVector creates a sparse vector with given dimension.
func NewSparseVector(dim int) SparseVector {
	return SparseVector{Dim: dim}
}

// Set adds or updates a value at the given index.
func (sv *SparseVector) Set(idx int, val float64) {
	for i, existingIdx := range sv.Indices {
		if existingIdx == idx {
			sv.Values[i] = val
			return
		}
	}
	sv.Indices = append(sv.Indices, idx)
	sv.Values = append(sv.Values, val)
}

// Sort orders entries by index, so sums over the vector are reproducible.
func (sv *SparseVector) Sort() {
	sort.Sort(byIndex{sv})
}

type byIndex struct{ sv *SparseVector }

func (b byIndex) Len() int           { return len(b.sv.Indices) }
func (b byIndex) Less(i, j int) bool { return b.sv.Indices[i] < b.sv.Indices[j] }
func (b byIndex) Swap(i, j int) {
	b.sv.Indices[i], b.sv.Indices[j] = b.sv.Indices[j], b.sv.Indices[i]
	b.sv.Values[i], b.sv.Values[j] = b.sv.Values[j], b.sv.Values[i]
}
