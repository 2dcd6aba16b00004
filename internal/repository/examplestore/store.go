// Package examplestore holds the load-once few-shot example dataset.
package examplestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain/example"
)

// snapshot is one immutable load of the dataset with its derived indexes.
type snapshot struct {
	records    []example.Record
	tags       []string
	categories []string
}

// Store is an in-memory example dataset. Reads never lock: a reload builds a new
// snapshot and swaps it in, so readers see either the old or the new set.
type Store struct {
	current atomic.Pointer[snapshot]
	logger  *zap.Logger
}

// New creates an empty store.
func New(logger *zap.Logger) *Store {
	s := &Store{logger: logger}
	s.current.Store(&snapshot{})
	return s
}

// LoadFile reads the dataset from a JSON file.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := s.Load(f); err != nil {
		return fmt.Errorf("load dataset %s: %w", path, err)
	}
	return nil
}

// Load parses a JSON array of records from r and replaces the current set.
// On error the previous set stays in place.
func (s *Store) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}

	records, err := parseDataset(data)
	if err != nil {
		return err
	}

	snap := buildSnapshot(records)
	s.current.Store(snap)

	s.logger.Info("Example dataset loaded",
		zap.Int("records", len(snap.records)),
		zap.Int("tags", len(snap.tags)),
		zap.Int("categories", len(snap.categories)),
	)
	return nil
}

// Filter returns every record of the given length class carrying tag, in load order.
// Returns an empty slice when nothing matches.
func (s *Store) Filter(length example.LengthClass, tag string) []example.Record {
	snap := s.current.Load()
	out := make([]example.Record, 0)
	for i := range snap.records {
		r := &snap.records[i]
		if r.Length() == length && r.HasTag(tag) {
			out = append(out, *r)
		}
	}
	return out
}

// DistinctTags returns every tag once, in order of first appearance.
func (s *Store) DistinctTags() []string {
	return slices.Clone(s.current.Load().tags)
}

// DistinctCategories returns every primary category once, in order of first appearance.
func (s *Store) DistinctCategories() []string {
	return slices.Clone(s.current.Load().categories)
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.current.Load().records)
}

func buildSnapshot(records []example.Record) *snapshot {
	snap := &snapshot{
		records:    records,
		tags:       make([]string, 0),
		categories: make([]string, 0),
	}
	seenTags := make(map[string]struct{})
	seenCats := make(map[string]struct{})

	for i := range records {
		for _, t := range records[i].Tags() {
			if _, ok := seenTags[t]; ok {
				continue
			}
			seenTags[t] = struct{}{}
			snap.tags = append(snap.tags, t)
		}
		c := records[i].Category()
		if c == "" {
			continue
		}
		if _, ok := seenCats[c]; !ok {
			seenCats[c] = struct{}{}
			snap.categories = append(snap.categories, c)
		}
	}
	return snap
}
