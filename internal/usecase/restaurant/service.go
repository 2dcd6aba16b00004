// Package restaurant names a Nigerian fusion restaurant for a country and
// drafts its menu with two chained completions.
package restaurant

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/metrics"
)

// Countries lists the supported target countries in display order.
var Countries = []string{
	"India", "Italy", "Mexico", "Saudi Arabia", "USA",
	"China", "Japan", "Brazil", "South Africa", "Australia",
}

const nameTemplate = `I want to open a modern Nigerian restaurant in %[1]s.

Generate a sophisticated restaurant name that blends a specific Nigerian word
(from Yoruba, Igbo, or Hausa) with a word or concept from %[1]s's local language.

Focus on themes like:
- Specific Ingredients (e.g., Pepper, Basil, Yam)
- Geography (Rivers, Islands, Cities)
- Abstract Concepts (Joy, Soul, Taste)

Return ONLY the name.`

const menuTemplate = "Suggest 5 avant-garde fusion dishes for a restaurant named '%s' located in %s. " +
	"Return it as a comma-separated string."

// Result is a generated restaurant concept.
type Result struct {
	Country   string
	Name      string
	MenuItems []string
}

// Service generates restaurant concepts.
type Service struct {
	completer domain.Completer
}

// New creates a restaurant service.
func New(completer domain.Completer) *Service {
	return &Service{completer: completer}
}

// Generate produces a name, then a menu for that name.
func (s *Service) Generate(ctx context.Context, country string) (Result, error) {
	c, ok := canonicalCountry(country)
	if !ok {
		return Result{}, fmt.Errorf("%w: unsupported country %q", domain.ErrInvalidInput, country)
	}

	name, err := s.completer.Complete(ctx, fmt.Sprintf(nameTemplate, c))
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("restaurant", "error").Inc()
		return Result{}, fmt.Errorf("generate name: %w", err)
	}
	restaurantName := cleanName(name.Text)

	menu, err := s.completer.Complete(ctx, fmt.Sprintf(menuTemplate, restaurantName, c))
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("restaurant", "error").Inc()
		return Result{}, fmt.Errorf("generate menu: %w", err)
	}
	metrics.GenerationsTotal.WithLabelValues("restaurant", "ok").Inc()

	return Result{
		Country:   c,
		Name:      restaurantName,
		MenuItems: splitMenu(menu.Text),
	}, nil
}

func canonicalCountry(s string) (string, bool) {
	s = strings.TrimSpace(s)
	i := slices.IndexFunc(Countries, func(c string) bool { return strings.EqualFold(c, s) })
	if i < 0 {
		return "", false
	}
	return Countries[i], true
}

// cleanName keeps the first non-empty line and drops wrapping quotes or emphasis.
func cleanName(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'*`)
		if line != "" {
			return line
		}
	}
	return strings.TrimSpace(s)
}

func splitMenu(s string) []string {
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "."))
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}
