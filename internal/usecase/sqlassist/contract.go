package sqlassist

import (
	"context"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

// VectorIndex stores the embedded examples for nearest-neighbour selection.
type VectorIndex interface {
	Create(ctx context.Context, name string, dim int) error
	Put(ctx context.Context, name string, docs []domain.VectorDoc) error
	Search(ctx context.Context, name string, vector []float32, k int, fields ...string) ([]domain.VectorHit, error)
	Drop(ctx context.Context, name string) error
}

// Database describes its tables and runs generated queries.
type Database interface {
	TableInfo(ctx context.Context) (string, error)
	Query(ctx context.Context, query string) (string, error)
}
