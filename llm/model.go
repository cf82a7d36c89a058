package llm

import "context"

// Model is the language-model boundary the orchestration loop depends on.
//
// GenerateContent runs one function-calling turn. GenerateGrounded runs one
// web-grounded turn (no tools). Both return an error only for model-transport
// failures; those abort the request.
type Model interface {
	GenerateContent(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	GenerateGrounded(ctx context.Context, req GroundedRequest) (*GroundedResponse, error)
}
