// Package leave answers balance and history questions and books leave days.
package leave

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
	domleave "github.com/kailas-cloud/fewshot/internal/domain/leave"
)

// Service handles leave operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a leave service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Account returns the employee's balance and history.
func (s *Service) Account(ctx context.Context, employeeID string) (domleave.Account, error) {
	acc, err := s.repo.Get(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return domleave.Account{}, fmt.Errorf("get leave account: %w", err)
	}
	return acc, nil
}

// Apply books the given dates. The whole request is rejected when the balance
// does not cover it, a date is malformed, or a date is already booked.
func (s *Service) Apply(ctx context.Context, employeeID string, dates []string) (domleave.Account, error) {
	id := strings.TrimSpace(employeeID)
	if len(dates) == 0 {
		return domleave.Account{}, fmt.Errorf("%w: at least one date is required", domain.ErrInvalidInput)
	}
	if err := domleave.ValidateDates(dates); err != nil {
		return domleave.Account{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if dup := firstDuplicate(dates); dup != "" {
		return domleave.Account{}, fmt.Errorf("%w: date %s requested twice", domain.ErrInvalidInput, dup)
	}

	acc, err := s.repo.Update(ctx, id, func(a domleave.Account) (domleave.Account, error) {
		history := a.History()
		for _, d := range dates {
			if slices.Contains(history, d) {
				return domleave.Account{}, fmt.Errorf("%w: %s is already booked", domain.ErrInvalidInput, d)
			}
		}
		if !a.CanTake(len(dates)) {
			return domleave.Account{}, &InsufficientBalanceError{Requested: len(dates), Available: a.Balance()}
		}
		return a.WithLeave(dates), nil
	})
	if err != nil {
		return domleave.Account{}, fmt.Errorf("apply leave: %w", err)
	}

	s.logger.Info("Leave applied",
		zap.String("employee_id", id),
		zap.Int("days", len(dates)),
		zap.Int("balance", acc.Balance()),
	)
	return acc, nil
}

// InsufficientBalanceError reports how many days were asked for and how many remain.
type InsufficientBalanceError struct {
	Requested int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return domain.ErrInsufficientBalance }

func firstDuplicate(dates []string) string {
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			return d
		}
		seen[d] = struct{}{}
	}
	return ""
}
