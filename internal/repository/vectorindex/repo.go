// Package vectorindex stores embedded documents in named indexes and answers
// nearest-neighbour queries. Repo runs on Redis/Valkey FT indexes; Memory is
// the fallback when no cache store is configured.
package vectorindex

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/fewshot/internal/db"
	dbRedis "github.com/kailas-cloud/fewshot/internal/db/redis"
	"github.com/kailas-cloud/fewshot/internal/domain"
)

const (
	fieldVector = "vector"
	fieldSeq    = "seq"
	fieldID     = "doc_id"
)

// store is the consumer interface for vector index operations (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, key string) error
}

// Repo implements a vector index on FT.CREATE / FT.SEARCH.
type Repo struct {
	store store
}

// New creates a Redis/Valkey-backed vector index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create creates the index for vectors of dim dimensions. An existing index is not an error.
func (r *Repo) Create(ctx context.Context, name string, dim int) error {
	def, err := db.NewIndex(indexName(name)).
		Prefix(docPrefix(name)).
		Numeric(fieldSeq).
		VectorFlat(fieldVector, dim, db.DistanceCosine).
		Build()
	if err != nil {
		return fmt.Errorf("index definition %s: %w", name, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Put stores docs; their order is the tie-break order for equal scores.
func (r *Repo) Put(ctx context.Context, name string, docs []domain.VectorDoc) error {
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		d := &docs[i]
		fields := make(map[string]string, len(d.Fields)+3)
		for k, v := range d.Fields {
			fields[k] = v
		}
		fields[fieldID] = d.ID
		fields[fieldSeq] = strconv.Itoa(i)
		fields[fieldVector] = dbRedis.VectorToBytes(d.Vector)
		items[i] = db.HashSetItem{Key: docPrefix(name) + d.ID, Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put %d docs into %s: %w", len(docs), name, err)
	}
	return nil
}

// Search returns up to k docs closest to vector, best first.
func (r *Repo) Search(
	ctx context.Context, name string, vector []float32, k int, fields ...string,
) ([]domain.VectorHit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(name),
		VectorField:  fieldVector,
		Vector:       vector,
		K:            k,
		ReturnFields: append([]string{fieldID, fieldSeq}, fields...),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if errors.Is(err, db.ErrIndexNotFound) {
		return nil, fmt.Errorf("search %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}
	return toHits(sr, name), nil
}

// Drop removes the index and every document under its prefix.
func (r *Repo) Drop(ctx context.Context, name string) error {
	if err := r.store.DropIndex(ctx, indexName(name)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}

	keys, err := r.store.Scan(ctx, docPrefix(name)+"*")
	if err != nil {
		return fmt.Errorf("scan %s: %w", name, err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func toHits(sr *db.SearchResult, name string) []domain.VectorHit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	type ranked struct {
		hit domain.VectorHit
		seq int
	}
	prefix := docPrefix(name)
	out := make([]ranked, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[fieldID]
		if id == "" {
			id = strings.TrimPrefix(e.Key, prefix)
		}
		seq, _ := strconv.Atoi(e.Fields[fieldSeq])

		fields := make(map[string]string, len(e.Fields))
		for k, v := range e.Fields {
			if k != fieldID && k != fieldSeq {
				fields[k] = v
			}
		}
		out = append(out, ranked{hit: domain.VectorHit{ID: id, Score: e.Score, Fields: fields}, seq: seq})
	}

	// FT.SEARCH does not order equal distances deterministically.
	slices.SortStableFunc(out, func(a, b ranked) int {
		if c := cmp.Compare(b.hit.Score, a.hit.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	hits := make([]domain.VectorHit, len(out))
	for i := range out {
		hits[i] = out[i].hit
	}
	return hits
}

func indexName(name string) string { return domain.KeyPrefix + name + ":idx" }
func docPrefix(name string) string { return domain.KeyPrefix + name + ":doc:" }
