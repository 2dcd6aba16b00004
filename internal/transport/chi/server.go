// Package chi serves the HTTP/JSON API on a chi router.
package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/domain/example"
	domleave "github.com/kailas-cloud/fewshot/internal/domain/leave"
	logpkg "github.com/kailas-cloud/fewshot/internal/logger"
	healthuc "github.com/kailas-cloud/fewshot/internal/usecase/health"
	postuc "github.com/kailas-cloud/fewshot/internal/usecase/post"
)

// maxBodyBytes caps request bodies; the largest legitimate one is a URL list.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers.
type Server struct {
	posts         PostService
	examples      ExampleFilter
	restaurants   RestaurantService
	research      ResearchService
	sql           SQLService
	leave         LeaveService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	posts PostService,
	examples ExampleFilter,
	restaurants RestaurantService,
	research ResearchService,
	sql SQLService,
	leave LeaveService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	return &Server{
		posts:         posts,
		examples:      examples,
		restaurants:   restaurants,
		research:      research,
		sql:           sql,
		leave:         leave,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// ListTags handles GET /examples/tags.
func (s *Server) ListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Items: nonNil(s.posts.Tags())})
}

// ListCategories handles GET /examples/categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Items: nonNil(s.posts.Categories())})
}

// ListLengths handles GET /examples/lengths.
func (s *Server) ListLengths(w http.ResponseWriter, _ *http.Request) {
	opts := s.posts.Lengths()
	items := make([]LengthItem, len(opts))
	for i, o := range opts {
		items[i] = LengthItem{Class: o.Class, Range: o.Range}
	}
	writeJSON(w, http.StatusOK, LengthListResponse{Items: items})
}

// FilterExamples handles POST /examples/filter.
func (s *Server) FilterExamples(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !s.decode(w, r, &req) {
		return
	}

	length, ok := example.ParseLengthClass(req.Length)
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "length must be one of Short, Medium, Long")
		return
	}
	if req.Tag == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "tag is required")
		return
	}

	records := s.examples.Filter(length, req.Tag)
	items := make([]ExampleItem, len(records))
	for i := range records {
		items[i] = exampleToDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, ExampleListResponse{Items: items, Total: len(items)})
}

// PreviewPrompt handles POST /posts/prompt.
func (s *Server) PreviewPrompt(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.posts.Preview(postRequestFromDTO(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{Prompt: p.Text, ExamplesUsed: len(p.Examples)})
}

// GeneratePost handles POST /posts.
func (s *Server) GeneratePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.posts.Generate(ctx, postRequestFromDTO(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, PostResponse{
		Post:         res.Post,
		Prompt:       res.Prompt,
		ExamplesUsed: res.ExamplesUsed,
		Model:        res.Model,
	})
}

// GenerateRestaurant handles POST /restaurants.
func (s *Server) GenerateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req RestaurantRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.restaurants.Generate(ctx, req.Country)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, RestaurantResponse{
		Country:   res.Country,
		Name:      res.Name,
		MenuItems: nonNil(res.MenuItems),
	})
}

// IngestArticles handles POST /research/ingest.
func (s *Server) IngestArticles(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.research.Ingest(ctx, req.URLs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, IngestResponse{
		IndexID:   res.IndexID,
		Documents: res.Documents,
		Chunks:    res.Chunks,
		Failed:    res.Failed,
	})
}

// AskQuestion handles POST /research/ask.
func (s *Server) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.research.Ask(ctx, req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, AskResponse{Answer: ans.Text, Sources: nonNil(ans.Sources)})
}

// GetResearchIndex handles GET /research/index.
func (s *Server) GetResearchIndex(w http.ResponseWriter, _ *http.Request) {
	info, ok := s.research.Info()
	if !ok {
		writeError(w, http.StatusNotFound, CodeIndexEmpty, domain.ErrIndexEmpty.Error())
		return
	}
	writeJSON(w, http.StatusOK, IndexInfoResponse{
		IndexID:   info.ID,
		CreatedAt: info.CreatedAt.UTC(),
		Sources:   nonNil(info.Sources),
		Chunks:    info.Chunks,
	})
}

// AskSQL handles POST /sql/ask.
func (s *Server) AskSQL(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.sql.Ask(ctx, req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, SQLAnswerResponse{
		Question: res.Question,
		SQL:      res.SQL,
		Executed: res.Executed,
		Result:   res.Rows,
		Answer:   res.Answer,
		Examples: nonNil(res.Examples),
	})
}

// GetLeave handles GET /leave/{employee}.
func (s *Server) GetLeave(w http.ResponseWriter, r *http.Request) {
	acc, err := s.leave.Account(r.Context(), chi.URLParam(r, "employee"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveToDTO(&acc))
}

// ApplyLeave handles POST /leave/{employee}.
func (s *Server) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequest
	if !s.decode(w, r, &req) {
		return
	}

	acc, err := s.leave.Apply(r.Context(), chi.URLParam(r, "employee"), req.Dates)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveToDTO(&acc))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-LLM-Tokens", strconv.Itoa(usage.Total()))
	}
}

func postRequestFromDTO(req PostRequest) postuc.Request {
	out := postuc.Request{Topic: req.Topic, Length: req.Length, Tag: req.Tag}
	if req.MaxExamples != nil {
		out.MaxExamples = *req.MaxExamples
	}
	return out
}

func exampleToDTO(r *example.Record) ExampleItem {
	return ExampleItem{
		Text:            r.Text(),
		Tags:            r.Tags(),
		LineCount:       r.LineCount(),
		Length:          string(r.Length()),
		PrimaryCategory: r.Category(),
		Language:        r.Language(),
	}
}

func leaveToDTO(a *domleave.Account) LeaveResponse {
	return LeaveResponse{
		EmployeeID: a.EmployeeID(),
		Balance:    a.Balance(),
		History:    nonNil(a.History()),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
