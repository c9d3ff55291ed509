package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
)

// boundarySchema is the canonical shape a parsed oracle response must
// satisfy before it is decoded into typed boundaries. Validation here
// keeps the oracle's loose output from ever reaching the validator or
// splitter as malformed data.
var boundarySchema = jsonschema.MustCompileString("boundaries.json", `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["start_page", "end_page", "document_type", "title"],
		"properties": {
			"start_page":    {"type": "integer", "minimum": 1},
			"end_page":      {"type": "integer", "minimum": 1},
			"document_type": {"type": "string"},
			"title":         {"type": "string", "minLength": 1},
			"description":   {"type": "string"},
			"confidence":    {"type": "number", "minimum": 0, "maximum": 1},
			"case_number":   {"type": "string"},
			"incident_date": {"type": "string"},
			"subjects":      {"type": "array", "items": {"type": "string"}}
		}
	}
}`)

// parseBoundaries extracts a boundary array from raw oracle output,
// tolerating prose wrapping and markdown code fences, and validates it
// against the canonical schema.
func parseBoundaries(content string) ([]boundary.Boundary, error) {
	raw, err := extractArrayJSON(content)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode boundary JSON: %w", err)
	}
	if err := boundarySchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("boundary JSON does not match schema: %w", err)
	}

	var bounds []boundary.Boundary
	if err := json.Unmarshal(raw, &bounds); err != nil {
		return nil, fmt.Errorf("decode boundaries: %w", err)
	}
	return bounds, nil
}

// extractArrayJSON finds the first well-formed JSON array in model
// output. A top-level object holding a "boundaries" array is also
// accepted.
func extractArrayJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty oracle response")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	for _, c := range candidates {
		if extracted := extractJSONCandidate(c); extracted != "" && extracted != c {
			candidates = append(candidates, extracted)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}

		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		switch v := parsed.(type) {
		case []any:
			return json.RawMessage(candidate), nil
		case map[string]any:
			if inner, ok := v["boundaries"]; ok {
				if _, isArr := inner.([]any); isArr {
					b, err := json.Marshal(inner)
					if err != nil {
						return nil, fmt.Errorf("normalize boundaries array: %w", err)
					}
					return b, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("no boundary array found in oracle response")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "[")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "]")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}
