package enrich

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

// RawPost is an unprocessed post. Fields other than text are carried through untouched.
type RawPost struct {
	Text  string
	Extra map[string]json.RawMessage
}

// EnrichedPost is a post with model-extracted metadata, in the dataset format
// read by the example store.
type EnrichedPost struct {
	Text          string
	LineCount     int
	Tags          []string
	PrimaryPillar string
	Extra         map[string]json.RawMessage
}

// MarshalJSON flattens Extra next to the known fields; known fields win.
func (p EnrichedPost) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["text"] = p.Text
	out["line_count"] = p.LineCount
	out["tags"] = p.Tags
	if p.PrimaryPillar != "" {
		out["primary_pillar"] = p.PrimaryPillar
	}
	return json.Marshal(out)
}

// ReadRawPosts decodes a JSON array of objects that each carry a "text" field.
func ReadRawPosts(r io.Reader) ([]RawPost, error) {
	var items []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, &domain.DataFormatError{Index: -1, Reason: "expected a JSON array of objects: " + err.Error()}
	}

	posts := make([]RawPost, 0, len(items))
	for i, item := range items {
		rawText, ok := item["text"]
		if !ok {
			return nil, domain.NewDataFormatError(i, "text", "is required")
		}
		var text string
		if err := json.Unmarshal(rawText, &text); err != nil {
			return nil, domain.NewDataFormatError(i, "text", "malformed: "+err.Error())
		}
		extra := maps.Clone(item)
		delete(extra, "text")
		posts = append(posts, RawPost{Text: text, Extra: extra})
	}
	return posts, nil
}

// WriteEnrichedPosts encodes posts as an indented JSON array.
func WriteEnrichedPosts(w io.Writer, posts []EnrichedPost) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("encode enriched posts: %w", err)
	}
	return nil
}
