package mcpclient

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestDescriptorsFromTools(t *testing.T) {
	tools := []mcp.Tool{
		{
			Name:        "search_nearby",
			Description: "Find places near a point",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{"type": "string"},
				},
				Required: []string{"query"},
			},
		},
		{Name: "ping"},
	}

	descriptors := DescriptorsFromTools(tools)
	if len(descriptors) != 2 {
		t.Fatalf("%d descriptors", len(descriptors))
	}

	first := descriptors[0]
	if first.Name != "search_nearby" || first.Description != "Find places near a point" {
		t.Errorf("descriptor = %+v", first)
	}
	if first.Schema["type"] != "object" {
		t.Errorf("schema type = %v", first.Schema["type"])
	}
	props, ok := first.Schema["properties"].(map[string]any)
	if !ok || props["query"] == nil {
		t.Errorf("properties = %v", first.Schema["properties"])
	}

	// A tool without a declared schema still yields an object schema.
	if descriptors[1].Schema["type"] != "object" {
		t.Errorf("empty schema type = %v", descriptors[1].Schema["type"])
	}
}

func TestContentTextFlattensParts(t *testing.T) {
	result := &mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: "first line"},
		mcp.TextContent{Text: "second line"},
	}}

	got := ContentText(result)
	if got != "first line\nsecond line" {
		t.Errorf("ContentText = %q", got)
	}
}

func TestContentTextUnwrapsNestedTextJSON(t *testing.T) {
	result := &mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: `{"type":"text","text":"inner value"}`},
	}}
	if got := ContentText(result); got != "inner value" {
		t.Errorf("ContentText = %q", got)
	}

	// Non-wrapper JSON passes through untouched.
	result = &mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: `{"temperature": 12}`},
	}}
	if got := ContentText(result); got != `{"temperature": 12}` {
		t.Errorf("ContentText = %q", got)
	}
}

func TestContentTextNilResult(t *testing.T) {
	if got := ContentText(nil); got != "" {
		t.Errorf("ContentText(nil) = %q", got)
	}
}
