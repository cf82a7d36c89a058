// Package agent implements the tool-orchestration loop: it mediates between a
// function-calling language model and a mixed set of tools (built-in handlers
// plus externally discovered providers) across multiple steps, with bounded
// reflexion retries and a web-grounded fallback when no tool was used.
package agent

import (
	"context"
	"fmt"

	"github.com/tjmaxx/jevehome-agent/llm"
)

// ToolDescriptor describes one callable tool as presented to the model.
// Schema is restricted to the portable JSON Schema subset (see NormalizeSchema).
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"parameters"`
}

// Tool is a built-in handler: a named, schema-described callable the model
// may request. Invoke returns the result or an error; errors never cross the
// dispatch boundary, the dispatcher converts them to failed results.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Invoke(ctx context.Context, args map[string]any) (*Result, error)
}

// Result is the uniform outcome of one tool dispatch. A non-empty Err marks
// a failure; all other fields describe a success.
type Result struct {
	Message    string          `json:"message,omitempty"`
	Visual     *VisualPayload  `json:"visualPayload,omitempty"`
	Structured any             `json:"structuredData,omitempty"`
	Citations  []llm.Citation  `json:"citations,omitempty"`
	Artifact   *Artifact       `json:"artifact,omitempty"`
	Err        string          `json:"error,omitempty"`
}

// OK reports whether the dispatch succeeded.
func (r *Result) OK() bool { return r != nil && r.Err == "" }

// Failure builds a failed result.
func Failure(format string, args ...any) *Result {
	return &Result{Err: fmt.Sprintf(format, args...)}
}

// VisualPayload is a map-style payload produced by a tool (markers, routes,
// area highlights). Kind "multi" wraps several payloads in call order, each
// labeled.
type VisualPayload struct {
	Kind  string          `json:"kind"`
	Label string          `json:"label,omitempty"`
	Data  map[string]any  `json:"data,omitempty"`
	Items []VisualPayload `json:"items,omitempty"`
}

// PayloadKindMulti is the Kind of an ordered multi-payload container.
const PayloadKindMulti = "multi"

// Artifact is a self-contained renderable result derived from tool output.
type Artifact struct {
	Kind  string         `json:"kind"`
	Title string         `json:"title"`
	HTML  string         `json:"html,omitempty"`
	Spec  map[string]any `json:"spec,omitempty"`
}

// Artifact kinds, in classification priority order.
const (
	ArtifactGrid     = "grid"
	ArtifactChart    = "chart"
	ArtifactTable    = "table"
	ArtifactDocument = "document"
	ArtifactHTML     = "html"
)

// StepRecord captures one dispatched call for progress emission and payload
// aggregation. It lives only for the duration of one request.
type StepRecord struct {
	StepIndex int
	Call      llm.FunctionCall
	Result    *Result
	Label     string
}

// Location is an optional user position included in the system instruction.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// Request is one user message to process.
type Request struct {
	ConversationID string
	Message        string
	Location       *Location
	// EnabledTools restricts which capabilities the request may use.
	// nil means everything is enabled. The name "web_search" controls the
	// grounding fallback.
	EnabledTools []string
	// WantStructured asks the dispatcher to attempt structured-data
	// extraction from external tool text output.
	WantStructured bool
}

// RunResult is the sole output of one orchestration run.
type RunResult struct {
	Reply     string         `json:"reply"`
	Visual    *VisualPayload `json:"visualPayload,omitempty"`
	Citations []llm.Citation `json:"citations,omitempty"`
	Artifact  *Artifact      `json:"artifact,omitempty"`
}
