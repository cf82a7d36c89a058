package agent

import (
	"context"
	"time"

	"github.com/tjmaxx/jevehome-agent/events"
	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// engineState makes the step loop's control flow explicit.
type engineState int

const (
	// stateAwaitingModel: send the conversation, wait for a response.
	stateAwaitingModel engineState = iota
	// stateDispatching: execute the requested calls and feed results back.
	stateDispatching
	// stateDone: terminal; the last model response is the answer.
	stateDone
)

// attemptResult is what one step-engine run produces.
type attemptResult struct {
	reply           string
	steps           int
	successfulCalls int
	records         []StepRecord
}

// stepEngine drives the model/tool loop for one attempt. One round of "model
// requests calls → calls dispatched → results returned" is a step; the
// engine performs at most maxSteps dispatch rounds per attempt.
type stepEngine struct {
	model          llm.Model
	dispatcher     *Dispatcher
	emitter        *events.Emitter
	registry       *Registry
	log            logger.Logger
	maxSteps       int
	temperature    float32
	runID          string
	wantStructured bool
}

// run executes one attempt over the given conversation. Reaching the step
// budget with calls still pending is not an error: the engine answers with
// the last model response it has.
func (e *stepEngine) run(ctx context.Context, system string, messages []llm.Message, tools []llm.ToolDecl) (*attemptResult, error) {
	res := &attemptResult{}
	state := stateAwaitingModel
	var resp *llm.ChatResponse

	for state != stateDone {
		switch state {
		case stateAwaitingModel:
			r, err := e.model.GenerateContent(ctx, llm.ChatRequest{
				System:      system,
				Messages:    messages,
				Tools:       tools,
				Temperature: e.temperature,
			})
			if err != nil {
				return nil, &ModelError{Err: err}
			}
			resp = r
			state = e.next(resp, res.steps)
			if state == stateDone && len(resp.Calls) > 0 {
				e.log.Info("step budget exhausted, answering with last response",
					logger.Int("steps", res.steps),
					logger.Int("pending_calls", len(resp.Calls)))
			}

		case stateDispatching:
			messages = append(messages, llm.Message{
				Role:  llm.RoleModel,
				Text:  resp.Text,
				Calls: resp.Calls,
			})
			messages = append(messages, e.dispatchRound(ctx, resp.Calls, res))
			res.steps++
			state = stateAwaitingModel
		}
	}

	res.reply = resp.Text
	return res, nil
}

// next is the transition function out of stateAwaitingModel.
func (e *stepEngine) next(resp *llm.ChatResponse, steps int) engineState {
	if len(resp.Calls) == 0 {
		return stateDone
	}
	if steps >= e.maxSteps {
		return stateDone
	}
	return stateDispatching
}

// dispatchRound executes the calls of one step sequentially in call order and
// returns the combined tool turn. Sequential dispatch is a deliberate
// ordering guarantee for labeling and payload merging.
func (e *stepEngine) dispatchRound(ctx context.Context, calls []llm.FunctionCall, res *attemptResult) llm.Message {
	results := make([]llm.CallResult, 0, len(calls))

	for _, call := range calls {
		label := CallLabel(call)
		e.emitter.Emit(events.New(e.runID, events.ToolCall, res.steps, &events.ToolCallData{
			Name:      call.Name,
			Label:     label,
			Arguments: call.Args,
			External:  e.registry.IsExternal(call.Name),
		}))

		start := time.Now()
		result := e.dispatcher.Dispatch(ctx, call, e.wantStructured)
		duration := time.Since(start)

		e.emitter.Emit(events.New(e.runID, events.ToolResult, res.steps, &events.ToolResultData{
			Name:     call.Name,
			Label:    label,
			OK:       result.OK(),
			Error:    result.Err,
			Duration: duration,
		}))

		if result.OK() {
			res.successfulCalls++
		} else {
			e.log.Warn("tool call failed",
				logger.String("tool", call.Name),
				logger.String("error", result.Err),
				logger.Duration("duration", duration))
		}

		res.records = append(res.records, StepRecord{
			StepIndex: res.steps,
			Call:      call,
			Result:    result,
			Label:     label,
		})
		results = append(results, llm.CallResult{
			Name:     call.Name,
			Response: resultResponse(result),
		})
	}

	return llm.Message{Role: llm.RoleTool, Results: results}
}

// resultResponse shapes a dispatch result as the function-result JSON the
// model receives.
func resultResponse(r *Result) map[string]any {
	if !r.OK() {
		return map[string]any{"error": r.Err}
	}
	out := map[string]any{}
	if r.Message != "" {
		out["message"] = r.Message
	} else {
		out["message"] = "ok"
	}
	if r.Structured != nil {
		out["structuredData"] = r.Structured
	}
	if len(r.Citations) > 0 {
		out["citations"] = r.Citations
	}
	if r.Visual != nil {
		out["visualPayload"] = map[string]any{"kind": r.Visual.Kind}
	}
	return out
}
