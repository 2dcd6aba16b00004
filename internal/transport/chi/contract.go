package chi

import (
	"context"

	"github.com/kailas-cloud/fewshot/internal/domain/example"
	domleave "github.com/kailas-cloud/fewshot/internal/domain/leave"
	healthuc "github.com/kailas-cloud/fewshot/internal/usecase/health"
	postuc "github.com/kailas-cloud/fewshot/internal/usecase/post"
	"github.com/kailas-cloud/fewshot/internal/usecase/prompt"
	researchuc "github.com/kailas-cloud/fewshot/internal/usecase/research"
	restaurantuc "github.com/kailas-cloud/fewshot/internal/usecase/restaurant"
	sqlassistuc "github.com/kailas-cloud/fewshot/internal/usecase/sqlassist"
)

// PostService generates posts and exposes the dataset facets.
type PostService interface {
	Preview(req postuc.Request) (prompt.Prompt, error)
	Generate(ctx context.Context, req postuc.Request) (postuc.Result, error)
	Tags() []string
	Categories() []string
	Lengths() []postuc.LengthOption
}

// ExampleFilter selects example records by facet.
type ExampleFilter interface {
	Filter(length example.LengthClass, tag string) []example.Record
}

// RestaurantService generates restaurant concepts.
type RestaurantService interface {
	Generate(ctx context.Context, country string) (restaurantuc.Result, error)
}

// ResearchService ingests articles and answers questions about them.
type ResearchService interface {
	Ingest(ctx context.Context, urls []string) (researchuc.IngestResult, error)
	Ask(ctx context.Context, question string) (researchuc.Answer, error)
	Info() (researchuc.IndexInfo, bool)
}

// SQLService answers questions about the store's inventory database.
type SQLService interface {
	Ask(ctx context.Context, question string) (sqlassistuc.Result, error)
}

// LeaveService reads and books employee leave.
type LeaveService interface {
	Account(ctx context.Context, employeeID string) (domleave.Account, error)
	Apply(ctx context.Context, employeeID string, dates []string) (domleave.Account, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
