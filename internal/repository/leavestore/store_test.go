package leavestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/domain/leave"
)

func TestDefaultSeed(t *testing.T) {
	s, err := New(DefaultSeed())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, id := range []string{"E001", "E010"} {
		if _, err := s.Get(context.Background(), id); err != nil {
			t.Errorf("Get(%s): %v", id, err)
		}
	}
	acc, err := s.Get(context.Background(), "E003")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if acc.Balance() != 5 || len(acc.History()) != 3 {
		t.Errorf("unexpected E003: balance=%d history=%v", acc.Balance(), acc.History())
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _ := New(DefaultSeed())
	if _, err := s.Get(context.Background(), "E999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_KeepsAccountOnError(t *testing.T) {
	s, _ := New(DefaultSeed())
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := s.Update(ctx, "E002", func(a leave.Account) (leave.Account, error) {
		return a.WithLeave([]string{"2025-06-01"}), boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	acc, _ := s.Get(ctx, "E002")
	if acc.Balance() != 20 {
		t.Errorf("failed update must not change the account, balance=%d", acc.Balance())
	}
}

func TestUpdate_Concurrent(t *testing.T) {
	s, _ := New(map[string]SeedEntry{"E100": {Balance: 50}})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, "E100", func(a leave.Account) (leave.Account, error) {
				return a.WithLeave([]string{"2025-01-01"}), nil
			})
		}()
	}
	wg.Wait()

	acc, _ := s.Get(ctx, "E100")
	if acc.Balance() != 0 || len(acc.History()) != 50 {
		t.Errorf("lost updates: balance=%d history=%d", acc.Balance(), len(acc.History()))
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`{"E123": {"balance": 3, "history": ["2025-05-05"]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	acc, err := s.Get(context.Background(), "E123")
	if err != nil || acc.Balance() != 3 {
		t.Errorf("unexpected account: %+v, %v", acc, err)
	}
}

func TestNew_InvalidSeed(t *testing.T) {
	if _, err := New(map[string]SeedEntry{"bad": {Balance: 1}}); err == nil {
		t.Error("expected error for malformed employee ID")
	}
	if _, err := New(map[string]SeedEntry{"E001": {History: []string{"25/12/2024"}}}); err == nil {
		t.Error("expected error for malformed history date")
	}
}
