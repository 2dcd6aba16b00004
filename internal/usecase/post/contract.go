package post

import "github.com/kailas-cloud/fewshot/internal/usecase/prompt"

// Catalog exposes the facet values of the loaded example set.
type Catalog interface {
	DistinctTags() []string
	DistinctCategories() []string
}

// PromptBuilder assembles a few-shot prompt for a request.
type PromptBuilder interface {
	Build(req prompt.Request) prompt.Prompt
}
