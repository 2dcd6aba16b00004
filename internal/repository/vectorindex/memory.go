package vectorindex

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

type memDoc struct {
	doc  domain.VectorDoc
	norm float64
}

type memIndex struct {
	dim  int
	docs []memDoc
}

// Memory is a process-local vector index with exact cosine search.
type Memory struct {
	mu      sync.RWMutex
	indexes map[string]*memIndex
}

// NewMemory creates an empty in-memory index set.
func NewMemory() *Memory {
	return &Memory{indexes: make(map[string]*memIndex)}
}

// Create creates the index for vectors of dim dimensions. An existing index is not an error.
func (m *Memory) Create(_ context.Context, name string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("index %s: dimension must be positive, got %d", name, dim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexes[name]; !ok {
		m.indexes[name] = &memIndex{dim: dim}
	}
	return nil
}

// Put appends docs to the index.
func (m *Memory) Put(_ context.Context, name string, docs []domain.VectorDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ix, ok := m.indexes[name]
	if !ok {
		return fmt.Errorf("put into %s: %w", name, domain.ErrNotFound)
	}
	for i := range docs {
		if len(docs[i].Vector) != ix.dim {
			return fmt.Errorf("put into %s: doc %s has %d dimensions, index has %d",
				name, docs[i].ID, len(docs[i].Vector), ix.dim)
		}
	}
	for i := range docs {
		d := docs[i]
		d.Fields = maps.Clone(d.Fields)
		ix.docs = append(ix.docs, memDoc{doc: d, norm: norm(d.Vector)})
	}
	return nil
}

// Search returns up to k docs by cosine similarity, best first; ties keep insertion order.
// fields names the payload returned with each hit.
func (m *Memory) Search(
	_ context.Context, name string, vector []float32, k int, fields ...string,
) ([]domain.VectorHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ix, ok := m.indexes[name]
	if !ok {
		return nil, fmt.Errorf("search %s: %w", name, domain.ErrNotFound)
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("search %s: query has %d dimensions, index has %d", name, len(vector), ix.dim)
	}

	qn := norm(vector)
	hits := make([]domain.VectorHit, 0, len(ix.docs))
	for i := range ix.docs {
		d := &ix.docs[i]
		hits = append(hits, domain.VectorHit{
			ID:     d.doc.ID,
			Score:  cosine(vector, qn, d.doc.Vector, d.norm),
			Fields: selectFields(d.doc.Fields, fields),
		})
	}
	slices.SortStableFunc(hits, func(a, b domain.VectorHit) int { return cmp.Compare(b.Score, a.Score) })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Drop removes the index. Dropping an unknown index is not an error.
func (m *Memory) Drop(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, name)
	return nil
}

func selectFields(all map[string]string, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := all[n]; ok {
			out[n] = v
		}
	}
	return out
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}
