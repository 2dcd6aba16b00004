// Package enrich turns raw posts into the example dataset: the model extracts
// per-post metadata, then a single call unifies the tag vocabulary.
package enrich

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

const metadataTemplate = `You are an expert in Data Science, Supply Chain Management (SCM), and Cloud Systems.
Analyze the following LinkedIn post and extract metadata.

- Return valid JSON without any preamble or conversational text.
- Include these keys: "line_count" (int), "tags" (array), and "primary_pillar".
- For "tags": Extract 2-3 technical keywords like "RAG", "Kubernetes", or "Logistics".
- For "primary_pillar": Select the best fit from: [Data, Supply Chain, ML Systems, Cloud].

Post content to analyze:
%s`

const unifyTemplate = `Unify and map these technical tags into broad professional categories.
- Use Title Case only.
- Follow these categorization examples:
   - "Logistics" or "Warehousing" maps to "Supply Chain"
   - "AWS", "Docker", or "K8s" maps to "Cloud Infrastructure"
   - "LLMs" or "RAG" maps to "Machine Learning"
   - "Snowflake" or "SQL" maps to "Data Engineering"
- Output ONLY a JSON object mapping the original tag to the unified tag.

List of tags to process:
%s`

type metadata struct {
	LineCount     *int     `json:"line_count"`
	Tags          []string `json:"tags"`
	PrimaryPillar string   `json:"primary_pillar"`
}

// Service enriches raw posts.
type Service struct {
	completer domain.Completer
	logger    *zap.Logger
}

// New creates an enrichment service.
func New(completer domain.Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Process enriches every post and unifies tags across the batch.
// A post whose metadata cannot be parsed aborts the batch with a DataFormatError.
// A failed unification leaves the extracted tags as they are.
func (s *Service) Process(ctx context.Context, raw []RawPost) ([]EnrichedPost, error) {
	posts := make([]EnrichedPost, 0, len(raw))
	for i, rp := range raw {
		p, err := s.extract(ctx, i, rp)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	mapping := s.unify(ctx, posts)
	for i := range posts {
		posts[i].Tags = applyMapping(posts[i].Tags, mapping)
	}

	s.logger.Info("Posts enriched",
		zap.Int("posts", len(posts)),
		zap.Int("tag_mappings", len(mapping)),
	)
	return posts, nil
}

func (s *Service) extract(ctx context.Context, i int, rp RawPost) (EnrichedPost, error) {
	if strings.TrimSpace(rp.Text) == "" {
		return EnrichedPost{}, domain.NewDataFormatError(i, "text", "is required")
	}

	res, err := s.completer.Complete(ctx, fmt.Sprintf(metadataTemplate, rp.Text))
	if err != nil {
		return EnrichedPost{}, fmt.Errorf("extract metadata for post %d: %w", i, err)
	}

	var md metadata
	if err := decodeReply(res.Text, &md); err != nil {
		s.logger.Error("Unparsable metadata reply", zap.Int("index", i), zap.Error(err))
		return EnrichedPost{}, domain.NewDataFormatError(i, "", "model output could not be parsed as JSON")
	}
	if md.LineCount == nil || *md.LineCount < 0 {
		return EnrichedPost{}, domain.NewDataFormatError(i, "line_count", "missing or negative in model output")
	}

	return EnrichedPost{
		Text:          rp.Text,
		LineCount:     *md.LineCount,
		Tags:          dedup(md.Tags),
		PrimaryPillar: strings.TrimSpace(md.PrimaryPillar),
		Extra:         rp.Extra,
	}, nil
}

// unify asks for an original-to-unified tag map. Any failure yields an empty map.
func (s *Service) unify(ctx context.Context, posts []EnrichedPost) map[string]string {
	var unique []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if !slices.Contains(unique, t) {
				unique = append(unique, t)
			}
		}
	}
	if len(unique) == 0 {
		return map[string]string{}
	}
	slices.Sort(unique)

	res, err := s.completer.Complete(ctx, fmt.Sprintf(unifyTemplate, strings.Join(unique, ", ")))
	if err != nil {
		s.logger.Warn("Tag unification failed, keeping original tags", zap.Error(err))
		return map[string]string{}
	}

	var mapping map[string]string
	if err := decodeReply(res.Text, &mapping); err != nil {
		s.logger.Warn("Unparsable tag unification reply, keeping original tags", zap.Error(err))
		return map[string]string{}
	}
	return mapping
}

func applyMapping(tags []string, mapping map[string]string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if u := strings.TrimSpace(mapping[t]); u != "" {
			t = u
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func dedup(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
