// Package health aggregates readiness of the example dataset, the model
// provider and the optional cache store.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot answer requests.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDataset = "dataset"
	ComponentLLM     = "llm"
	ComponentCache   = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	dataset DatasetCounter
	llm     ModelChecker
	cache   CachePinger
}

// New creates a Service. llm and cache can be nil.
func New(dataset DatasetCounter, llm ModelChecker, cache CachePinger) *Service {
	return &Service{dataset: dataset, llm: llm, cache: cache}
}

// Check runs health checks against all components. An empty dataset makes
// the service unhealthy; a failing model or cache only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.dataset.Len() > 0 {
		checks[ComponentDataset] = CheckOK
	} else {
		checks[ComponentDataset] = CheckError
	}

	if s.llm != nil {
		checks[ComponentLLM] = result(s.llm.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks[ComponentCache] = result(s.cache.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentDataset] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
