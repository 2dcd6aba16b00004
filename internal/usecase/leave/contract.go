package leave

import (
	"context"

	domleave "github.com/kailas-cloud/fewshot/internal/domain/leave"
)

// Repository defines the storage contract for leave accounts.
type Repository interface {
	Get(ctx context.Context, employeeID string) (domleave.Account, error)
	Update(ctx context.Context, employeeID string,
		fn func(domleave.Account) (domleave.Account, error)) (domleave.Account, error)
}
