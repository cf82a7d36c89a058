package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tjmaxx/jevehome-agent/logger"
)

// GeminiConfig configures the Gemini-backed model.
type GeminiConfig struct {
	APIKey string
	// ModelID selects the Gemini model, e.g. "gemini-2.0-flash".
	ModelID string
	Logger  logger.Logger
}

// GeminiModel implements Model on top of the Gemini API.
type GeminiModel struct {
	client  *genai.Client
	modelID string
	log     logger.Logger
}

// NewGeminiModel creates a Gemini-backed model.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("gemini: model id is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault()
	}
	return &GeminiModel{client: client, modelID: cfg.ModelID, log: log}, nil
}

// GenerateContent implements Model.
func (m *GeminiModel) GenerateContent(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schemaFromMap(t.Schema),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.modelID, contentsFromMessages(req.Messages), config)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	out := &ChatResponse{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		out.Calls = append(out.Calls, FunctionCall{Name: fc.Name, Args: fc.Args})
	}
	m.log.Debug("gemini response",
		logger.Int("calls", len(out.Calls)),
		logger.Int("text_len", len(out.Text)))
	return out, nil
}

// GenerateGrounded implements Model. It answers with the Google Search tool
// enabled instead of function declarations; the two modes cannot be combined
// in a single call.
func (m *GeminiModel) GenerateGrounded(ctx context.Context, req GroundedRequest) (*GroundedResponse, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.modelID, contentsFromMessages(req.Messages), config)
	if err != nil {
		return nil, fmt.Errorf("gemini: grounded generate: %w", err)
	}

	out := &GroundedResponse{Text: resp.Text()}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out.Citations = append(out.Citations, Citation{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
		}
	}
	return out, nil
}

// contentsFromMessages converts conversation messages into Gemini contents.
// Tool results become FunctionResponse parts batched into one content, which
// is how the API expects a multi-call round to be answered.
func contentsFromMessages(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleTool:
			parts := make([]*genai.Part, 0, len(msg.Results))
			for _, res := range msg.Results {
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						Name:     res.Name,
						Response: res.Response,
					},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
		case RoleModel:
			parts := make([]*genai.Part, 0, 1+len(msg.Calls))
			if msg.Text != "" {
				parts = append(parts, genai.NewPartFromText(msg.Text))
			}
			for _, call := range msg.Calls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{Name: call.Name, Args: call.Args},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		default:
			contents = append(contents, genai.NewContentFromText(msg.Text, genai.RoleUser))
		}
	}
	return contents
}

// schemaFromMap converts a restricted JSON Schema map into the typed Gemini
// schema. Unknown fields have already been stripped by registry
// normalization; anything still unrecognized here is ignored.
func schemaFromMap(schema map[string]any) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	out := &genai.Schema{}
	if typ, ok := schema["type"].(string); ok {
		out.Type = genaiType(typ)
	} else {
		out.Type = genai.TypeObject
	}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				out.Properties[name] = schemaFromMap(propMap)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = schemaFromMap(items)
	}
	if enum, ok := schema["enum"].([]any); ok {
		for _, v := range enum {
			if s, ok := v.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}
	if required, ok := schema["required"].([]any); ok {
		for _, v := range required {
			if s, ok := v.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	if min, ok := toFloat(schema["minimum"]); ok {
		out.Minimum = genai.Ptr(min)
	}
	if max, ok := toFloat(schema["maximum"]); ok {
		out.Maximum = genai.Ptr(max)
	}
	if minLen, ok := toInt64(schema["minLength"]); ok {
		out.MinLength = genai.Ptr(minLen)
	}
	if maxLen, ok := toInt64(schema["maxLength"]); ok {
		out.MaxLength = genai.Ptr(maxLen)
	}
	if minItems, ok := toInt64(schema["minItems"]); ok {
		out.MinItems = genai.Ptr(minItems)
	}
	if maxItems, ok := toInt64(schema["maxItems"]); ok {
		out.MaxItems = genai.Ptr(maxItems)
	}
	return out
}

func genaiType(typ string) genai.Type {
	switch typ {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeObject
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
