package examplestore

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/domain/example"
)

// Dataset field names. primary_pillar is the historical name of the category field.
const (
	fieldText            = "text"
	fieldTags            = "tags"
	fieldLineCount       = "line_count"
	fieldPrimaryPillar   = "primary_pillar"
	fieldPrimaryCategory = "primary_category"
	fieldLanguage        = "language"
)

// parseDataset decodes a JSON array of post objects into domain records.
// The first bad record aborts the whole parse.
func parseDataset(data []byte) ([]example.Record, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.DataFormatError{Index: -1, Reason: "expected a JSON array of objects: " + err.Error()}
	}

	records := make([]example.Record, 0, len(raw))
	for i, obj := range raw {
		rec, err := parseRecord(i, obj)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(i int, obj map[string]json.RawMessage) (example.Record, error) {
	if obj == nil {
		return example.Record{}, domain.NewDataFormatError(i, "", "record must be an object")
	}

	var text string
	if err := requiredField(obj, fieldText, &text); err != nil {
		return example.Record{}, domain.NewDataFormatError(i, fieldText, err.Error())
	}

	var tags []string
	if err := requiredField(obj, fieldTags, &tags); err != nil {
		return example.Record{}, domain.NewDataFormatError(i, fieldTags, err.Error())
	}

	var lineCount int
	if err := requiredField(obj, fieldLineCount, &lineCount); err != nil {
		return example.Record{}, domain.NewDataFormatError(i, fieldLineCount, err.Error())
	}

	var category string
	for _, name := range []string{fieldPrimaryPillar, fieldPrimaryCategory} {
		if err := optionalField(obj, name, &category); err != nil {
			return example.Record{}, domain.NewDataFormatError(i, name, err.Error())
		}
		if category != "" {
			break
		}
	}

	var language string
	if err := optionalField(obj, fieldLanguage, &language); err != nil {
		return example.Record{}, domain.NewDataFormatError(i, fieldLanguage, err.Error())
	}

	rec, err := example.New(text, tags, lineCount, category)
	if err != nil {
		return example.Record{}, domain.NewDataFormatError(i, "", err.Error())
	}
	if language != "" {
		rec = rec.WithLanguage(language)
	}
	return rec, nil
}

func requiredField(obj map[string]json.RawMessage, name string, dst any) error {
	raw, ok := obj[name]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed: %w", err)
	}
	return nil
}

func optionalField(obj map[string]json.RawMessage, name string, dst any) error {
	raw, ok := obj[name]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed: %w", err)
	}
	return nil
}
