package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tjmaxx/jevehome-agent/logger"
)

func newTestDispatcher(r *Registry, timeout time.Duration) *Dispatcher {
	return NewDispatcher(r, timeout, logger.NewNop())
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("nope", nil), false)
	if res.OK() {
		t.Fatal("unknown tool dispatched successfully")
	}
	if !strings.Contains(res.Err, "unknown function") {
		t.Errorf("error = %q", res.Err)
	}
}

func TestDispatchBuiltinSuccess(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	tool := &fakeTool{name: "geocode", result: &Result{
		Message: "found it",
		Visual:  &VisualPayload{Kind: "map"},
	}}
	r.RegisterBuiltin(tool)
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("geocode", map[string]any{"address": "home"}), false)
	if !res.OK() {
		t.Fatalf("dispatch failed: %s", res.Err)
	}
	if res.Message != "found it" || res.Visual == nil {
		t.Errorf("result = %+v", res)
	}
}

func TestDispatchBuiltinErrorBecomesFailure(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterBuiltin(&fakeTool{name: "broken", err: errors.New("boom")})
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("broken", nil), false)
	if res.OK() {
		t.Fatal("error did not become failure")
	}
	if !strings.Contains(res.Err, "boom") {
		t.Errorf("error = %q", res.Err)
	}
}

func TestDispatchBuiltinPanicBecomesFailure(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterBuiltin(&panicTool{})
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("panics", nil), false)
	if res.OK() {
		t.Fatal("panic did not become failure")
	}
}

type panicTool struct{}

func (p *panicTool) Name() string            { return "panics" }
func (p *panicTool) Description() string     { return "" }
func (p *panicTool) Schema() map[string]any  { return map[string]any{"type": "object"} }
func (p *panicTool) Invoke(context.Context, map[string]any) (*Result, error) {
	panic("handler bug")
}

func TestDispatchMissingRequiredArgs(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterBuiltin(&fakeTool{name: "strict", schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
		"required": []any{"query"},
	}})
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("strict", nil), false)
	if res.OK() {
		t.Fatal("missing required argument accepted")
	}
	if !strings.Contains(res.Err, "query") {
		t.Errorf("error = %q", res.Err)
	}
}

func TestDispatchExternalStripsNamespace(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	caller := &fakeCaller{result: &ExternalResult{Text: "external answer"}}
	r.RegisterProvider("docs", caller, []ToolDescriptor{{Name: "search"}})
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("docs__search", nil), false)
	if !res.OK() {
		t.Fatalf("dispatch failed: %s", res.Err)
	}
	if len(caller.calls) != 1 || caller.calls[0] != "search" {
		t.Errorf("provider called with %v, want raw name", caller.calls)
	}
}

func TestDispatchExternalProviderErrorFlag(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterProvider("docs", &fakeCaller{result: &ExternalResult{IsError: true, Text: "not found"}},
		[]ToolDescriptor{{Name: "search"}})
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("docs__search", nil), false)
	if res.OK() {
		t.Fatal("provider error flag ignored")
	}
	if !strings.Contains(res.Err, "not found") {
		t.Errorf("error = %q", res.Err)
	}
}

func TestDispatchExternalTimeout(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterProvider("slow", &fakeCaller{delay: 200 * time.Millisecond},
		[]ToolDescriptor{{Name: "sleep"}})
	d := newTestDispatcher(r, 20*time.Millisecond)

	res := d.Dispatch(context.Background(), call("slow__sleep", nil), false)
	if res.OK() {
		t.Fatal("timeout not converted to failure")
	}
	if !strings.Contains(res.Err, "timed out") {
		t.Errorf("error = %q", res.Err)
	}
}

func TestDispatchStructuredExtractionOnRequest(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	payload := `{"answer":[{"text":"two rooms","structuredData":{"rooms":2}}]}`
	r.RegisterProvider("docs", &fakeCaller{result: &ExternalResult{Text: payload}},
		[]ToolDescriptor{{Name: "query"}})
	d := newTestDispatcher(r, 0)

	// Not requested: text passes through untouched.
	res := d.Dispatch(context.Background(), call("docs__query", nil), false)
	if res.Structured != nil {
		t.Error("structured data extracted without request")
	}

	// Requested: envelope is unwrapped.
	res = d.Dispatch(context.Background(), call("docs__query", nil), true)
	if res.Structured == nil {
		t.Fatal("structured data not extracted")
	}
	if res.Message != "two rooms" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestDispatchStructuredAbsentIsNotAnError(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterProvider("docs", &fakeCaller{result: &ExternalResult{Text: "plain prose, nothing embedded"}},
		[]ToolDescriptor{{Name: "query"}})
	d := newTestDispatcher(r, 0)

	res := d.Dispatch(context.Background(), call("docs__query", nil), true)
	if !res.OK() {
		t.Fatalf("dispatch failed: %s", res.Err)
	}
	if res.Structured != nil {
		t.Error("structured data invented from plain text")
	}
	if res.Message != "plain prose, nothing embedded" {
		t.Errorf("message = %q", res.Message)
	}
}
