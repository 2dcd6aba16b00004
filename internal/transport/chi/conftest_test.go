package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/domain/example"
	domleave "github.com/kailas-cloud/fewshot/internal/domain/leave"
	healthuc "github.com/kailas-cloud/fewshot/internal/usecase/health"
	postuc "github.com/kailas-cloud/fewshot/internal/usecase/post"
	"github.com/kailas-cloud/fewshot/internal/usecase/prompt"
	researchuc "github.com/kailas-cloud/fewshot/internal/usecase/research"
	sqlassistuc "github.com/kailas-cloud/fewshot/internal/usecase/sqlassist"
	restaurantuc "github.com/kailas-cloud/fewshot/internal/usecase/restaurant"
)

type mockPosts struct {
	previewFn  func(req postuc.Request) (prompt.Prompt, error)
	generateFn func(ctx context.Context, req postuc.Request) (postuc.Result, error)
	tags       []string
	categories []string
}

func (m *mockPosts) Preview(req postuc.Request) (prompt.Prompt, error) {
	return m.previewFn(req)
}

func (m *mockPosts) Generate(ctx context.Context, req postuc.Request) (postuc.Result, error) {
	return m.generateFn(ctx, req)
}

func (m *mockPosts) Tags() []string       { return m.tags }
func (m *mockPosts) Categories() []string { return m.categories }

func (m *mockPosts) Lengths() []postuc.LengthOption {
	return []postuc.LengthOption{
		{Class: "Short", Range: "1 to 5 lines"},
		{Class: "Medium", Range: "6 to 10 lines"},
		{Class: "Long", Range: "11 to 15 lines"},
	}
}

type mockExamples struct {
	records []example.Record
	gotLen  example.LengthClass
	gotTag  string
}

func (m *mockExamples) Filter(length example.LengthClass, tag string) []example.Record {
	m.gotLen, m.gotTag = length, tag
	return m.records
}

type mockRestaurants struct {
	fn func(ctx context.Context, country string) (restaurantuc.Result, error)
}

func (m *mockRestaurants) Generate(ctx context.Context, country string) (restaurantuc.Result, error) {
	return m.fn(ctx, country)
}

type mockResearch struct {
	ingestFn func(ctx context.Context, urls []string) (researchuc.IngestResult, error)
	askFn    func(ctx context.Context, q string) (researchuc.Answer, error)
	info     *researchuc.IndexInfo
}

func (m *mockResearch) Ingest(ctx context.Context, urls []string) (researchuc.IngestResult, error) {
	return m.ingestFn(ctx, urls)
}

func (m *mockResearch) Ask(ctx context.Context, q string) (researchuc.Answer, error) {
	return m.askFn(ctx, q)
}

func (m *mockResearch) Info() (researchuc.IndexInfo, bool) {
	if m.info == nil {
		return researchuc.IndexInfo{}, false
	}
	return *m.info, true
}

type mockLeave struct {
	accountFn func(ctx context.Context, id string) (domleave.Account, error)
	applyFn   func(ctx context.Context, id string, dates []string) (domleave.Account, error)
}

func (m *mockLeave) Account(ctx context.Context, id string) (domleave.Account, error) {
	return m.accountFn(ctx, id)
}

func (m *mockLeave) Apply(ctx context.Context, id string, dates []string) (domleave.Account, error) {
	return m.applyFn(ctx, id, dates)
}

type mockSQL struct {
	askFn func(ctx context.Context, q string) (sqlassistuc.Result, error)
}

func (m *mockSQL) Ask(ctx context.Context, q string) (sqlassistuc.Result, error) {
	return m.askFn(ctx, q)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type fixture struct {
	posts       *mockPosts
	examples    *mockExamples
	restaurants *mockRestaurants
	research    *mockResearch
	sql         *mockSQL
	leave       *mockLeave
	health      *mockHealth
}

func newFixture() *fixture {
	return &fixture{
		posts:       &mockPosts{},
		examples:    &mockExamples{},
		restaurants: &mockRestaurants{},
		research:    &mockResearch{},
		sql:         &mockSQL{},
		leave:       &mockLeave{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentDataset: healthuc.CheckOK},
		}},
	}
}

func (f *fixture) router(cfg RouterConfig) http.Handler {
	s := NewServer(f.posts, f.examples, f.restaurants, f.research, f.sql, f.leave, f.health, zap.NewNop())
	return NewRouter(s, cfg)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return v
}

func mustRecord(t *testing.T, text string, tags []string, lines int) example.Record {
	t.Helper()
	r, err := example.New(text, tags, lines, "")
	if err != nil {
		t.Fatalf("example.New: %v", err)
	}
	return r
}

func mustAccount(t *testing.T, id string, balance int, history []string) domleave.Account {
	t.Helper()
	a, err := domleave.NewAccount(id, balance, history)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	return a
}

// spendTokens simulates the instrumented completer adding usage.
func spendTokens(ctx context.Context, n int) {
	domain.UsageFromContext(ctx).AddCompletion(n)
}
