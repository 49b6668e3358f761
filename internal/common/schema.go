package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigFileSchema returns the JSON-Schema accepted for --config files as a generic map.
func ConfigFileSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"company_dir":   str,
			"state_dir":     str,
			"combined_dir":  str,
			"ignore_file":   str,
			"order_file":    str,
			"batch_size":    map[string]any{"type": "integer", "minimum": 1, "maximum": 10000},
			"identity_page": map[string]any{"type": "integer", "minimum": 0},
			"manifest":      map[string]any{"type": "boolean"},
			"pdftotext":     map[string]any{"type": "string", "minLength": 1},
			"ocr_timeout":   map[string]any{"type": "string", "pattern": `^\d+(ns|us|µs|ms|s|m|h)$`},
			"log_level":     map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error"}},
			"log_format":    map[string]any{"type": "string", "enum": []string{"json", "text"}},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
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
