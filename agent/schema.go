package agent

// Schema fields the model's function-calling interface accepts. Anything else
// is stripped during normalization, not rejected.
var allowedSchemaFields = map[string]bool{
	"type":        true,
	"description": true,
	"properties":  true,
	"items":       true,
	"enum":        true,
	"required":    true,
	"minimum":     true,
	"maximum":     true,
	"minLength":   true,
	"maxLength":   true,
	"minItems":    true,
	"maxItems":    true,
}

// NormalizeSchema reduces a JSON Schema to the portable subset, recursively
// for nested object and array schemas. A missing type defaults to "object",
// and arrays without an items schema get string items (some providers reject
// them otherwise). The input map is not modified.
func NormalizeSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}

	out := make(map[string]any, len(schema))
	for key, value := range schema {
		if allowedSchemaFields[key] {
			out[key] = value
		}
	}

	typ, _ := out["type"].(string)
	if typ == "" {
		typ = "object"
		out["type"] = typ
	}

	if props, ok := out["properties"].(map[string]any); ok {
		normalized := make(map[string]any, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				normalized[name] = NormalizeSchema(propMap)
			}
		}
		out["properties"] = normalized
	}

	if typ == "array" {
		if items, ok := out["items"].(map[string]any); ok {
			out["items"] = NormalizeSchema(items)
		} else {
			out["items"] = map[string]any{"type": "string"}
		}
	} else if items, ok := out["items"].(map[string]any); ok {
		out["items"] = NormalizeSchema(items)
	}

	return out
}
