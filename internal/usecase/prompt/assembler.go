// Package prompt turns a task and a facet selection into a single few-shot prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/fewshot/internal/domain/example"
)

// DefaultMaxExamples keeps the prompt focused on a couple of demonstrations.
const DefaultMaxExamples = 2

// DefaultHeader is the instruction line that opens every post prompt.
const DefaultHeader = "Generate a LinkedIn post using the below information. No preamble."

const examplesIntro = "Use the writing style as per the following examples."

// Request describes one prompt to assemble.
type Request struct {
	Task        string
	Length      example.LengthClass
	Tag         string
	MaxExamples int
}

// Prompt is the assembled text plus the examples that went into it.
type Prompt struct {
	Text     string
	Examples []example.Record
}

// Assembler builds prompts from an example source. It performs no I/O.
type Assembler struct {
	source      ExampleSource
	header      string
	maxExamples int
}

// New creates an assembler with the default header and example cap.
func New(source ExampleSource) *Assembler {
	return &Assembler{source: source, header: DefaultHeader, maxExamples: DefaultMaxExamples}
}

// WithHeader overrides the opening instruction line.
func (a *Assembler) WithHeader(header string) *Assembler {
	if strings.TrimSpace(header) != "" {
		a.header = header
	}
	return a
}

// WithMaxExamples sets the cap used when a request does not carry its own.
func (a *Assembler) WithMaxExamples(n int) *Assembler {
	if n > 0 {
		a.maxExamples = n
	}
	return a
}

// Build assembles the prompt: header and numbered instructions, the length range,
// then up to MaxExamples matching examples in store order. With no matches the
// examples section is left out entirely.
func (a *Assembler) Build(req Request) Prompt {
	limit := req.MaxExamples
	if limit <= 0 {
		limit = a.maxExamples
	}

	var b strings.Builder
	b.WriteString(a.header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "1) Topic: %s\n", strings.TrimSpace(req.Task))
	fmt.Fprintf(&b, "2) Length: %s\n", example.LengthRange(req.Length))
	fmt.Fprintf(&b, "3) Style Context: The post should be relevant to %s professionals.\n", req.Tag)

	examples := a.source.Filter(req.Length, req.Tag)
	if len(examples) > limit {
		examples = examples[:limit]
	}

	if len(examples) > 0 {
		b.WriteString("4) ")
		b.WriteString(examplesIntro)
		for i := range examples {
			fmt.Fprintf(&b, "\n\nExample %d:\n\n%s", i+1, examples[i].Text())
		}
		b.WriteString("\n")
	}

	return Prompt{Text: b.String(), Examples: examples}
}
