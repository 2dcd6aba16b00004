package example

import (
	"fmt"
	"slices"
	"strings"
)

// Record is a stored past post used as an in-context demonstration (immutable value object).
type Record struct {
	text      string
	tags      []string
	lineCount int
	length    LengthClass
	category  string
	language  string
}

// New validates and creates a Record. The length class is derived from lineCount.
// Tags are trimmed, empty tags dropped and duplicates collapsed keeping first appearance.
func New(text string, tags []string, lineCount int, category string) (Record, error) {
	if strings.TrimSpace(text) == "" {
		return Record{}, fmt.Errorf("text is required")
	}
	if lineCount < 0 {
		return Record{}, fmt.Errorf("line count must be non-negative, got %d", lineCount)
	}

	return Record{
		text:      text,
		tags:      normalizeTags(tags),
		lineCount: lineCount,
		length:    ClassifyLength(lineCount),
		category:  strings.TrimSpace(category),
	}, nil
}

// Text returns the post body.
func (r *Record) Text() string { return r.text }

// Tags returns a copy of the tag set in first-appearance order.
func (r *Record) Tags() []string { return slices.Clone(r.tags) }

// HasTag reports whether tag is in the record's tag set.
func (r *Record) HasTag(tag string) bool { return slices.Contains(r.tags, tag) }

// LineCount returns the line count the length class was derived from.
func (r *Record) LineCount() int { return r.lineCount }

// Length returns the length class.
func (r *Record) Length() LengthClass { return r.length }

// Category returns the primary category, empty if the dataset had none.
func (r *Record) Category() string { return r.category }

// Language returns the post language, empty if unknown.
func (r *Record) Language() string { return r.language }

// WithLanguage returns a copy with the language set.
func (r *Record) WithLanguage(lang string) Record {
	c := *r
	c.tags = slices.Clone(r.tags)
	c.language = strings.TrimSpace(lang)
	return c
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
