// Package leavestore keeps employee leave accounts in memory behind a mutex.
package leavestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/domain/leave"
)

// SeedEntry is one account in a seed file keyed by employee ID.
type SeedEntry struct {
	Balance int      `json:"balance"`
	History []string `json:"history"`
}

// DefaultSeed is the demo ledger used when no seed file is configured.
func DefaultSeed() map[string]SeedEntry {
	return map[string]SeedEntry{
		"E001": {Balance: 18, History: []string{"2024-12-25", "2025-01-01"}},
		"E002": {Balance: 20},
		"E003": {Balance: 5, History: []string{"2025-02-10", "2025-02-11", "2025-02-12"}},
		"E004": {Balance: 12, History: []string{"2024-11-20"}},
		"E005": {Balance: 25},
		"E006": {Balance: 15, History: []string{"2025-03-01", "2025-03-02"}},
		"E007": {Balance: 8, History: []string{"2025-01-15"}},
		"E008": {Balance: 22},
		"E009": {Balance: 10, History: []string{"2024-12-30"}},
		"E010": {Balance: 30},
	}
}

// Store is an in-memory leave ledger.
type Store struct {
	mu       sync.Mutex
	accounts map[string]leave.Account
}

// New builds a store from seed entries.
func New(seed map[string]SeedEntry) (*Store, error) {
	accounts := make(map[string]leave.Account, len(seed))
	for id, e := range seed {
		acc, err := leave.NewAccount(id, e.Balance, e.History)
		if err != nil {
			return nil, fmt.Errorf("seed account %s: %w", id, err)
		}
		accounts[id] = acc
	}
	return &Store{accounts: accounts}, nil
}

// NewFromFile builds a store from a JSON seed file.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read leave seed: %w", err)
	}
	var seed map[string]SeedEntry
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse leave seed %s: %w", path, err)
	}
	return New(seed)
}

// Get returns the account for an employee.
func (s *Store) Get(_ context.Context, employeeID string) (leave.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[employeeID]
	if !ok {
		return leave.Account{}, fmt.Errorf("employee %s: %w", employeeID, domain.ErrNotFound)
	}
	return acc, nil
}

// Update applies fn to the account under the store lock. The account is
// replaced only when fn succeeds.
func (s *Store) Update(
	_ context.Context, employeeID string, fn func(leave.Account) (leave.Account, error),
) (leave.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[employeeID]
	if !ok {
		return leave.Account{}, fmt.Errorf("employee %s: %w", employeeID, domain.ErrNotFound)
	}
	next, err := fn(acc)
	if err != nil {
		return leave.Account{}, err
	}
	s.accounts[employeeID] = next
	return next, nil
}
