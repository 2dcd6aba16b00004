package restaurant

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterLLMMetrics()
	os.Exit(m.Run())
}

type queueCompleter struct {
	replies []domain.CompletionResult
	errs    []error
	prompts []string
}

func (q *queueCompleter) Complete(_ context.Context, p string) (domain.CompletionResult, error) {
	i := len(q.prompts)
	q.prompts = append(q.prompts, p)
	var err error
	if i < len(q.errs) {
		err = q.errs[i]
	}
	if i < len(q.replies) {
		return q.replies[i], err
	}
	return domain.CompletionResult{}, err
}

func TestGenerate_ChainsNameIntoMenu(t *testing.T) {
	q := &queueCompleter{replies: []domain.CompletionResult{
		{Text: `"Ata Sakura"`},
		{Text: "Suya Ramen, Jollof Onigiri,  , Egusi Tempura."},
	}}
	res, err := New(q).Generate(context.Background(), "japan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Country != "Japan" || res.Name != "Ata Sakura" {
		t.Errorf("unexpected result: %+v", res)
	}
	want := []string{"Suya Ramen", "Jollof Onigiri", "Egusi Tempura"}
	if strings.Join(res.MenuItems, "|") != strings.Join(want, "|") {
		t.Errorf("menu = %v, want %v", res.MenuItems, want)
	}
	if len(q.prompts) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(q.prompts))
	}
	if !strings.Contains(q.prompts[0], "Nigerian restaurant in Japan") || !strings.Contains(q.prompts[0], "Return ONLY the name.") {
		t.Errorf("unexpected name prompt:\n%s", q.prompts[0])
	}
	if !strings.Contains(q.prompts[1], "'Ata Sakura' located in Japan") {
		t.Errorf("menu prompt must use the generated name:\n%s", q.prompts[1])
	}
}

func TestGenerate_UnsupportedCountry(t *testing.T) {
	q := &queueCompleter{}
	_, err := New(q).Generate(context.Background(), "Atlantis")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(q.prompts) != 0 {
		t.Error("model must not be called for an unsupported country")
	}
}

func TestGenerate_MenuFailure(t *testing.T) {
	q := &queueCompleter{
		replies: []domain.CompletionResult{{Text: "Name"}},
		errs:    []error{nil, domain.ErrService},
	}
	_, err := New(q).Generate(context.Background(), "USA")
	if !errors.Is(err, domain.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"**Ofe Roma**":           "Ofe Roma",
		"\n\nSaffron Ewa\nextra": "Saffron Ewa",
		"Plain":                  "Plain",
	}
	for in, want := range tests {
		if got := cleanName(in); got != want {
			t.Errorf("cleanName(%q) = %q, want %q", in, got, want)
		}
	}
}
