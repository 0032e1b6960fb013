package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map describing the well-formed collaborator response. It is a
// lenient shape check only: scalar invoice fields stay untyped because the
// collaborator is allowed to return them malformed.
func BuildExtractionJSONSchema() map[string]any {
	bboxProps := map[string]any{
		"x":    map[string]any{"type": "number"},
		"y":    map[string]any{"type": "number"},
		"w":    map[string]any{"type": "number"},
		"h":    map[string]any{"type": "number"},
		"page": map[string]any{"type": "integer", "minimum": 1},
	}
	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"bbox":        map[string]any{"type": "object", "properties": bboxProps},
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"line_items": map[string]any{"type": "array", "items": lineItem},
				},
			},
			"warnings": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"note":     map[string]any{"type": "string"},
		},
		"required": []string{"invoice"},
	}
}

// ValidateAgainstSchema validates a raw collaborator response body against
// the extraction schema. Callers treat a failure as advisory.
func ValidateAgainstSchema(data []byte) error {
	b, err := json.Marshal(BuildExtractionJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
