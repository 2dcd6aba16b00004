// Package statestore keeps small service state documents in the key-value store.
package statestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/fewshot/internal/db"
	"github.com/kailas-cloud/fewshot/internal/domain"
)

// store is the consumer interface for state documents (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store namespaces state keys under the service key prefix.
type Store struct {
	store store
}

// New creates a state store.
func New(s store) *Store {
	return &Store{store: s}
}

// Load returns the document at key; ok is false when none was saved.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.store.Get(ctx, stateKey(key))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load state %s: %w", key, err)
	}
	return data, true, nil
}

// Save overwrites the document at key.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := s.store.Set(ctx, stateKey(key), value); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

func stateKey(key string) string { return domain.KeyPrefix + "state:" + key }
