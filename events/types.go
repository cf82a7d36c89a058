// Package events carries step-level progress events from an agent run to
// interested listeners. Events are emitted in real time, before the final
// result of the run is available.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates progress events.
type Type string

const (
	// RunStart is emitted once when a request begins processing.
	RunStart Type = "run_start"
	// ToolCall is emitted before a tool is dispatched.
	ToolCall Type = "tool_call"
	// ToolResult is emitted after a tool dispatch completes.
	ToolResult Type = "tool_result"
	// Retry is emitted when the reflexion controller starts another attempt.
	Retry Type = "retry"
	// WebSearch is emitted when the grounding fallback is invoked.
	WebSearch Type = "web_search"
	// ArtifactReady is emitted when an artifact was selected for the result.
	ArtifactReady Type = "artifact"
	// RunEnd is emitted once when the final result is ready.
	RunEnd Type = "run_end"
	// RunError is emitted when the run aborts with a model-level error.
	RunError Type = "run_error"
)

// Event is a single progress record. Data holds one of the *Data structs
// below depending on Type.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Step      int       `json:"step,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// ToolCallData describes a tool about to be dispatched.
type ToolCallData struct {
	Name      string         `json:"name"`
	Label     string         `json:"label"`
	Arguments map[string]any `json:"arguments,omitempty"`
	External  bool           `json:"external"`
}

// ToolResultData describes a completed tool dispatch.
type ToolResultData struct {
	Name     string        `json:"name"`
	Label    string        `json:"label"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RetryData describes a reflexion retry attempt.
type RetryData struct {
	Attempt int    `json:"attempt"`
	Max     int    `json:"max"`
	Reason  string `json:"reason"`
}

// WebSearchData describes the grounding fallback invocation.
type WebSearchData struct {
	CitationCount int `json:"citation_count"`
}

// ArtifactData describes the artifact chosen for the final result.
type ArtifactData struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// RunEndData summarizes a completed run.
type RunEndData struct {
	Steps           int           `json:"steps"`
	SuccessfulCalls int           `json:"successful_calls"`
	Retries         int           `json:"retries"`
	Grounded        bool          `json:"grounded"`
	Duration        time.Duration `json:"duration"`
}

// RunErrorData carries a fatal run error.
type RunErrorData struct {
	Error string `json:"error"`
}

// New builds an event with a fresh ID and the current timestamp.
func New(runID string, typ Type, step int, data any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		RunID:     runID,
		Type:      typ,
		Timestamp: time.Now(),
		Step:      step,
		Data:      data,
	}
}
