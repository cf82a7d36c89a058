package mcpclient

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tjmaxx/jevehome-agent/agent"
)

// DescriptorsFromTools converts MCP tool definitions into registry
// descriptors. Schema restriction happens in the registry; this only carries
// the input schema over as a plain map.
func DescriptorsFromTools(tools []mcp.Tool) []agent.ToolDescriptor {
	out := make([]agent.ToolDescriptor, 0, len(tools))
	for _, tool := range tools {
		out = append(out, agent.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Schema:      schemaToMap(tool.InputSchema),
		})
	}
	return out
}

// schemaToMap round-trips the typed input schema through JSON into the
// map form the registry normalizes. A schema that fails the round trip
// degrades to an empty object schema.
func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out
}
