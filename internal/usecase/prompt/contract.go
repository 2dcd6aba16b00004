package prompt

import "github.com/kailas-cloud/fewshot/internal/domain/example"

// ExampleSource selects few-shot examples by facet.
type ExampleSource interface {
	Filter(length example.LengthClass, tag string) []example.Record
}
