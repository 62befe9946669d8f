package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes a surrounding markdown code fence, with or without
// a language tag. Models at low temperature still wrap JSON in fences often
// enough that this runs on every response.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeBatch parses a model response expected to be a JSON array of T. A
// single bare object is promoted to a one-element array, which models produce
// for single-record batches.
func DecodeBatch[T any](raw string) ([]T, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response body")
	}

	var items []T
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return items, nil
	}

	var single T
	if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
		return nil, fmt.Errorf("response is neither a JSON array nor an object: %w", err)
	}
	return []T{single}, nil
}
