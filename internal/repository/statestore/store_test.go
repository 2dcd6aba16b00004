package statestore

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/fewshot/internal/db"
)

type mapStore struct {
	data map[string][]byte
	err  error
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func TestSaveAndLoad(t *testing.T) {
	ms := &mapStore{data: map[string][]byte{}}
	s := New(ms)
	ctx := context.Background()

	if _, ok, err := s.Load(ctx, "research"); ok || err != nil {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, "research", []byte(`{"id":"x"}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok := ms.data["fewshot:state:research"]; !ok {
		t.Errorf("unexpected keys: %v", ms.data)
	}
	data, ok, err := s.Load(ctx, "research")
	if err != nil || !ok || string(data) != `{"id":"x"}` {
		t.Errorf("Load = %q %v %v", data, ok, err)
	}
}

func TestLoad_StoreError(t *testing.T) {
	s := New(&mapStore{err: &db.Error{Op: db.OpGet, Err: context.DeadlineExceeded}})
	_, ok, err := s.Load(context.Background(), "research")
	if ok || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped store error, got ok=%v err=%v", ok, err)
	}
}
