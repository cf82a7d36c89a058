// Package llm abstracts the function-calling language model behind a small
// interface so the orchestration core can be driven by any provider (or a
// scripted fake in tests). The production implementation wraps the Gemini API.
package llm

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// FunctionCall is a single tool invocation requested by the model.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// CallResult is one tool response returned to the model. Response carries the
// function-result shape as plain JSON-compatible data.
type CallResult struct {
	Name     string
	Response map[string]any
}

// Message is one turn in the conversation sent to the model. Exactly one of
// the payload groups is populated per role: Text for user/model turns, Calls
// for a model turn that requested tools, Results for the combined tool turn
// answering those calls.
type Message struct {
	Role    Role
	Text    string
	Calls   []FunctionCall
	Results []CallResult
}

// ToolDecl is a tool made available to the model for function calling.
// Schema is a restricted JSON Schema (see agent.NormalizeSchema).
type ToolDecl struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ChatRequest is one function-calling model invocation.
type ChatRequest struct {
	System      string
	Messages    []Message
	Tools       []ToolDecl
	Temperature float32
}

// ChatResponse is the model's reply: free text plus zero or more requested
// function calls.
type ChatResponse struct {
	Text  string
	Calls []FunctionCall
}

// Citation is a single web source backing a grounded answer.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GroundedRequest asks for a direct answer backed by live web search instead
// of tool calling.
type GroundedRequest struct {
	System   string
	Messages []Message
}

// GroundedResponse is a grounded answer with whatever citations the model
// surfaced.
type GroundedResponse struct {
	Text      string
	Citations []Citation
}
