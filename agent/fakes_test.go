package agent

import (
	"context"
	"sync"
	"time"

	"github.com/tjmaxx/jevehome-agent/events"
	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// fakeModel replays a scripted sequence of chat responses. Once the script is
// exhausted it keeps returning the final response.
type fakeModel struct {
	mu            sync.Mutex
	script        []*llm.ChatResponse
	chatErr       error
	grounded      *llm.GroundedResponse
	groundedErr   error
	chatCalls     int
	groundedCalls int
	requests      []llm.ChatRequest
}

func (m *fakeModel) GenerateContent(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatCalls++
	m.requests = append(m.requests, req)
	if m.chatErr != nil {
		return nil, m.chatErr
	}
	if len(m.script) == 0 {
		return &llm.ChatResponse{Text: "nothing scripted"}, nil
	}
	resp := m.script[0]
	if len(m.script) > 1 {
		m.script = m.script[1:]
	}
	return resp, nil
}

func (m *fakeModel) GenerateGrounded(_ context.Context, _ llm.GroundedRequest) (*llm.GroundedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groundedCalls++
	if m.groundedErr != nil {
		return nil, m.groundedErr
	}
	if m.grounded != nil {
		return m.grounded, nil
	}
	return &llm.GroundedResponse{Text: "grounded answer"}, nil
}

// fakeTool is a configurable built-in tool.
type fakeTool struct {
	name   string
	schema map[string]any
	result *Result
	err    error
	delay  time.Duration
	calls  int
}

func (t *fakeTool) Name() string        { return t.name }
func (t *fakeTool) Description() string { return "test tool " + t.name }

func (t *fakeTool) Schema() map[string]any {
	if t.schema != nil {
		return t.schema
	}
	return map[string]any{"type": "object"}
}

func (t *fakeTool) Invoke(ctx context.Context, _ map[string]any) (*Result, error) {
	t.calls++
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if t.err != nil {
		return nil, t.err
	}
	if t.result != nil {
		return t.result, nil
	}
	return &Result{Message: "ok from " + t.name}, nil
}

// fakeCaller is a scripted external provider.
type fakeCaller struct {
	result *ExternalResult
	err    error
	delay  time.Duration
	calls  []string
}

func (c *fakeCaller) CallTool(ctx context.Context, name string, _ map[string]any) (*ExternalResult, error) {
	c.calls = append(c.calls, name)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.result != nil {
		return c.result, nil
	}
	return &ExternalResult{Text: "external ok"}, nil
}

// collectListener records every emitted event.
type collectListener struct {
	mu     sync.Mutex
	events []*events.Event
}

func (l *collectListener) OnEvent(event *events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *collectListener) ofType(typ events.Type) []*events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*events.Event
	for _, e := range l.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// newTestAgent builds an agent over a fake model with quiet logging.
func newTestAgent(model llm.Model, opts ...Option) *Agent {
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	return New(model, opts...)
}

func call(name string, args map[string]any) llm.FunctionCall {
	return llm.FunctionCall{Name: name, Args: args}
}
