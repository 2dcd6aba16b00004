package research

import (
	"context"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

// Fetcher downloads a page and returns its readable text.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// VectorIndex stores chunk embeddings; every ingest writes a fresh named index.
type VectorIndex interface {
	Create(ctx context.Context, name string, dim int) error
	Put(ctx context.Context, name string, docs []domain.VectorDoc) error
	Search(ctx context.Context, name string, vector []float32, k int, fields ...string) ([]domain.VectorHit, error)
	Drop(ctx context.Context, name string) error
}

// StateStore persists the active index description across restarts.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}
