// Package post generates LinkedIn-style posts from a topic, a length class and
// a tag, steering the model's style with few-shot examples.
package post

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/domain/example"
	"github.com/kailas-cloud/fewshot/internal/metrics"
	"github.com/kailas-cloud/fewshot/internal/usecase/prompt"
)

// Request is one generation request. A blank Length means Medium.
type Request struct {
	Topic       string
	Length      string
	Tag         string
	MaxExamples int
}

// Result is a generated post together with the prompt that produced it.
type Result struct {
	Post         string
	Prompt       string
	ExamplesUsed int
	Model        string
	Tokens       int
}

// Service generates posts.
type Service struct {
	catalog   Catalog
	builder   PromptBuilder
	completer domain.Completer
}

// New creates a post service.
func New(catalog Catalog, builder PromptBuilder, completer domain.Completer) *Service {
	return &Service{catalog: catalog, builder: builder, completer: completer}
}

// Preview assembles the prompt without calling the model.
func (s *Service) Preview(req Request) (prompt.Prompt, error) {
	pr, err := toPromptRequest(req)
	if err != nil {
		return prompt.Prompt{}, err
	}
	return s.builder.Build(pr), nil
}

// Generate assembles the prompt and asks the model for the post.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	p, err := s.Preview(req)
	if err != nil {
		return Result{}, err
	}
	metrics.PromptExamplesUsed.Observe(float64(len(p.Examples)))

	res, err := s.completer.Complete(ctx, p.Text)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("post", "error").Inc()
		return Result{}, fmt.Errorf("generate post: %w", err)
	}
	metrics.GenerationsTotal.WithLabelValues("post", "ok").Inc()

	return Result{
		Post:         res.Text,
		Prompt:       p.Text,
		ExamplesUsed: len(p.Examples),
		Model:        res.Model,
		Tokens:       res.TotalTokens,
	}, nil
}

// Tags lists the tags available for selection.
func (s *Service) Tags() []string { return s.catalog.DistinctTags() }

// Categories lists the primary categories present in the dataset.
func (s *Service) Categories() []string { return s.catalog.DistinctCategories() }

// Lengths lists the selectable length classes with their line ranges.
func (s *Service) Lengths() []LengthOption {
	classes := example.LengthClasses()
	out := make([]LengthOption, 0, len(classes))
	for _, c := range classes {
		out = append(out, LengthOption{Class: string(c), Range: example.LengthRange(c)})
	}
	return out
}

// LengthOption pairs a length class with the line range shown to the model.
type LengthOption struct {
	Class string
	Range string
}

func toPromptRequest(req Request) (prompt.Request, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return prompt.Request{}, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	tag := strings.TrimSpace(req.Tag)
	if tag == "" {
		return prompt.Request{}, fmt.Errorf("%w: tag is required", domain.ErrInvalidInput)
	}

	length := example.Medium
	if strings.TrimSpace(req.Length) != "" {
		l, ok := example.ParseLengthClass(req.Length)
		if !ok {
			return prompt.Request{}, fmt.Errorf("%w: unknown length %q", domain.ErrInvalidInput, req.Length)
		}
		length = l
	}

	return prompt.Request{
		Task:        topic,
		Length:      length,
		Tag:         tag,
		MaxExamples: req.MaxExamples,
	}, nil
}
