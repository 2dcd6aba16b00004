package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/fewshot/internal/metrics"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// RouterConfig holds router-level options.
type RouterConfig struct {
	APIKeys []string
	// MCP, when set, is mounted at /mcp behind the same authentication.
	MCP http.Handler
}

// NewRouter wires middleware and routes for s.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware("/metrics"))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/examples", func(r chi.Router) {
			r.Get("/tags", s.ListTags)
			r.Get("/categories", s.ListCategories)
			r.Get("/lengths", s.ListLengths)
			r.Post("/filter", s.FilterExamples)
		})
		r.Post("/posts", s.GeneratePost)
		r.Post("/posts/prompt", s.PreviewPrompt)
		r.Post("/restaurants", s.GenerateRestaurant)
		r.Route("/research", func(r chi.Router) {
			r.Post("/ingest", s.IngestArticles)
			r.Post("/ask", s.AskQuestion)
			r.Get("/index", s.GetResearchIndex)
		})
		r.Post("/sql/ask", s.AskSQL)
		r.Get("/leave/{employee}", s.GetLeave)
		r.Post("/leave/{employee}", s.ApplyLeave)
	})

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	return r
}
