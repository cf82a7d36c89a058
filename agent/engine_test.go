package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/tjmaxx/jevehome-agent/events"
	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

func newTestEngine(model llm.Model, r *Registry, maxSteps int) (*stepEngine, *collectListener) {
	emitter := events.NewEmitter()
	listener := &collectListener{}
	emitter.AddListener(listener)
	return &stepEngine{
		model:      model,
		dispatcher: newTestDispatcher(r, 0),
		emitter:    emitter,
		registry:   r,
		log:        logger.NewNop(),
		maxSteps:   maxSteps,
		runID:      "test-run",
	}, listener
}

func userMessages(text string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Text: text}}
}

func TestEngineNoCallsTerminatesImmediately(t *testing.T) {
	model := &fakeModel{script: []*llm.ChatResponse{{Text: "direct answer"}}}
	engine, listener := newTestEngine(model, NewRegistry(logger.NewNop()), 5)

	res, err := engine.run(context.Background(), "", userMessages("hi"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.reply != "direct answer" || res.steps != 0 || res.successfulCalls != 0 {
		t.Errorf("result = %+v", res)
	}
	if n := len(listener.ofType(events.ToolCall)); n != 0 {
		t.Errorf("emitted %d tool_call events, want 0", n)
	}
}

func TestEngineDispatchesAndLoops(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	tool := &fakeTool{name: "geocode"}
	r.RegisterBuiltin(tool)

	model := &fakeModel{script: []*llm.ChatResponse{
		{Calls: []llm.FunctionCall{call("geocode", map[string]any{"address": "oslo"})}},
		{Text: "it is in Norway"},
	}}
	engine, listener := newTestEngine(model, r, 5)

	res, err := engine.run(context.Background(), "", userMessages("where is oslo"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.reply != "it is in Norway" {
		t.Errorf("reply = %q", res.reply)
	}
	if res.steps != 1 || res.successfulCalls != 1 {
		t.Errorf("steps = %d, successful = %d", res.steps, res.successfulCalls)
	}
	if tool.calls != 1 {
		t.Errorf("tool invoked %d times", tool.calls)
	}
	if len(listener.ofType(events.ToolCall)) != 1 || len(listener.ofType(events.ToolResult)) != 1 {
		t.Error("missing progress events")
	}

	// The second model request must carry the model turn and the combined
	// tool turn.
	second := model.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != llm.RoleTool || len(last.Results) != 1 {
		t.Errorf("tool turn not fed back: %+v", last)
	}
}

func TestEngineStepBudgetBoundsDispatchRounds(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	tool := &fakeTool{name: "probe"}
	r.RegisterBuiltin(tool)

	// The model keeps asking for the same tool forever.
	model := &fakeModel{script: []*llm.ChatResponse{
		{Text: "thinking", Calls: []llm.FunctionCall{call("probe", nil)}},
	}}
	const maxSteps = 3
	engine, _ := newTestEngine(model, r, maxSteps)

	res, err := engine.run(context.Background(), "", userMessages("loop"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.steps != maxSteps {
		t.Errorf("steps = %d, want %d", res.steps, maxSteps)
	}
	if tool.calls != maxSteps {
		t.Errorf("tool invoked %d times, want %d", tool.calls, maxSteps)
	}
	// Budget exhaustion keeps the last response as the answer.
	if res.reply != "thinking" {
		t.Errorf("reply = %q", res.reply)
	}
}

func TestEngineSequentialCallOrderPreserved(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	caller := &fakeCaller{}
	r.RegisterProvider("p", caller, []ToolDescriptor{{Name: "first"}, {Name: "second"}})

	model := &fakeModel{script: []*llm.ChatResponse{
		{Calls: []llm.FunctionCall{call("p__first", nil), call("p__second", nil)}},
		{Text: "done"},
	}}
	engine, _ := newTestEngine(model, r, 5)

	res, err := engine.run(context.Background(), "", userMessages("go"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(caller.calls) != 2 || caller.calls[0] != "first" || caller.calls[1] != "second" {
		t.Errorf("dispatch order = %v", caller.calls)
	}
	if len(res.records) != 2 || res.records[0].Call.Name != "p__first" {
		t.Errorf("records = %+v", res.records)
	}
}

func TestEngineFailedCallFedBackNotFatal(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.RegisterBuiltin(&fakeTool{name: "broken", err: errors.New("boom")})

	model := &fakeModel{script: []*llm.ChatResponse{
		{Calls: []llm.FunctionCall{call("broken", nil)}},
		{Text: "recovered"},
	}}
	engine, _ := newTestEngine(model, r, 5)

	res, err := engine.run(context.Background(), "", userMessages("try"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.reply != "recovered" {
		t.Errorf("reply = %q", res.reply)
	}
	if res.successfulCalls != 0 {
		t.Errorf("successfulCalls = %d", res.successfulCalls)
	}
	// The failure is delivered to the model as data.
	second := model.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if _, ok := last.Results[0].Response["error"]; !ok {
		t.Errorf("failure not shaped as error response: %+v", last.Results[0].Response)
	}
}

func TestEngineModelErrorAborts(t *testing.T) {
	model := &fakeModel{chatErr: errors.New("transport down")}
	engine, _ := newTestEngine(model, NewRegistry(logger.NewNop()), 5)

	_, err := engine.run(context.Background(), "", userMessages("hi"), nil)
	if err == nil {
		t.Fatal("model error not surfaced")
	}
	if !IsModelError(err) {
		t.Errorf("error type = %T", err)
	}
}
