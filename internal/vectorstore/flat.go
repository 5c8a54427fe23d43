// Package vectorstore provides vector index implementations.
package vectorstore

import (
	"errors"
	"sort"
	"sync"

	"docqa/internal/domain"
)

var _ domain.VectorIndex = (*Flat)(nil)

// Flat is an exact nearest-neighbor index using brute-force L2 distance
// over parallel unit/vector slices. Units and vectors are appended
// together and never reordered independently; result indices into one
// slice are valid for the other.
type Flat struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	units     []domain.Unit
}

// NewFlat creates an empty flat index.
func NewFlat() *Flat { return &Flat{} }

// Init sets the vector dimension and clears any previous content.
func (f *Flat) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dimension = dimension
	f.vectors = nil
	f.units = nil
	return nil
}

// Upsert appends units with their vectors, order-preserving.
func (f *Flat) Upsert(units []domain.Unit, vectors [][]float32) error {
	if len(units) != len(vectors) {
		return errors.New("units and vectors length mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range vectors {
		if len(v) != f.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	f.units = append(f.units, units...)
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search returns up to topK units by ascending L2 distance. Asking for
// more results than the index holds returns everything, never an error.
func (f *Flat) Search(vector []float32, topK int) ([]domain.SearchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if topK <= 0 {
		topK = 6
	}
	dists := make([]float32, len(f.vectors))
	for i := range f.vectors {
		dists[i] = l2sq(f.vectors[i], vector)
	}
	idxs := make([]int, len(dists))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return dists[idxs[a]] < dists[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchResult{Unit: f.units[j], Distance: dists[j]})
	}
	return results, nil
}

// Snapshot returns copies of the parallel collections for persistence.
func (f *Flat) Snapshot() (units []domain.Unit, vectors [][]float32, dimension int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	units = append([]domain.Unit(nil), f.units...)
	vectors = append([][]float32(nil), f.vectors...)
	return units, vectors, f.dimension
}

// Restore replaces the index content with a previously persisted
// snapshot. An empty snapshot (dimension zero) is allowed; searches then
// return no results.
func (f *Flat) Restore(units []domain.Unit, vectors [][]float32, dimension int) error {
	if len(units) != len(vectors) {
		return errors.New("units and vectors length mismatch")
	}
	if dimension <= 0 && len(vectors) > 0 {
		return errors.New("invalid dimension")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dimension = dimension
	f.units = units
	f.vectors = vectors
	return nil
}

func l2sq(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
