// Package ingest turns external input modalities into canonical
// incident records. JSON and document adapters are fail-fast: one bad
// element aborts the whole batch. The URL adapter is fail-soft and
// reports per-URL warnings instead.
package ingest

import (
	"encoding/json"
	"strings"

	"github.com/intelfuse-ai/intelfuse/internal/report"
)

// jsonFallbackSource labels structured records without a source field.
const jsonFallbackSource = "User JSON"

// ParseReports parses a textual JSON array of partial records,
// validates every element, then normalizes. Empty or whitespace-only
// input yields an empty set, not an error. If any element fails
// validation, no record from the batch is admitted.
func ParseReports(input string) ([]report.Record, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elements); err != nil {
		return nil, &report.MalformedInputError{Reason: "JSON input must be an array."}
	}

	raws := make([]report.Raw, len(elements))
	for i, element := range elements {
		if err := json.Unmarshal(element, &raws[i]); err != nil {
			if fieldErr := classifyFieldError(err, i); fieldErr != nil {
				return nil, fieldErr
			}
			return nil, &report.MalformedInputError{Reason: "JSON input must be an array of report objects."}
		}
	}

	// Validation is all-or-nothing across the batch.
	for i, raw := range raws {
		if err := report.Validate(raw, i); err != nil {
			return nil, err
		}
	}

	records := make([]report.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, report.Normalize(raw, jsonFallbackSource))
	}
	return records, nil
}

// classifyFieldError maps a JSON type error on severity or confidence
// (e.g. a string where a number belongs) onto the matching schema
// error so the user sees which record and field to fix.
func classifyFieldError(err error, index int) error {
	typeErr, ok := err.(*json.UnmarshalTypeError)
	if !ok {
		return nil
	}
	switch typeErr.Field {
	case "severity":
		return &report.InvalidSeverityError{Index: index + 1}
	case "confidence":
		return &report.InvalidConfidenceError{Index: index + 1}
	}
	return nil
}
