package health

import "context"

// DatasetCounter reports how many examples are loaded.
type DatasetCounter interface {
	Len() int
}

// CachePinger checks cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks model provider availability.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
