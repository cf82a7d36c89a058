package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// DefaultToolTimeout bounds a single external tool invocation. A timeout is a
// recoverable tool failure, not a request-level abort.
const DefaultToolTimeout = 2 * time.Minute

// Dispatcher routes one call to a built-in handler or an external provider
// and returns a uniform result. It is stateless per call and never lets a
// tool error escape as a Go error.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
	log      logger.Logger
}

// NewDispatcher creates a dispatcher over the given registry. A zero timeout
// means DefaultToolTimeout.
func NewDispatcher(registry *Registry, timeout time.Duration, log logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Dispatcher{registry: registry, timeout: timeout, log: log}
}

// Dispatch executes a single call. wantStructured enables best-effort
// structured-data extraction from external text output.
func (d *Dispatcher) Dispatch(ctx context.Context, call llm.FunctionCall, wantStructured bool) *Result {
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}

	if entry, ok := d.registry.lookupExternal(call.Name); ok {
		return d.dispatchExternal(ctx, entry, args, wantStructured)
	}
	if tool, ok := d.registry.lookupBuiltin(call.Name); ok {
		return d.dispatchBuiltin(ctx, tool, args)
	}
	return Failure("%s: %q", ErrUnknownTool, call.Name)
}

func (d *Dispatcher) dispatchExternal(ctx context.Context, entry *externalTool, args map[string]any, wantStructured bool) *Result {
	if entry.caller == nil {
		return Failure("%s: %s", ErrProviderUnavailable, entry.providerID)
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	res, err := entry.caller.CallTool(callCtx, entry.rawName, args)
	if err != nil {
		if isTimeout(err) {
			d.log.Warn("external tool timed out",
				logger.String("tool", entry.descriptor.Name),
				logger.Duration("after", time.Since(start)))
			return Failure("tool %s timed out after %s", entry.descriptor.Name, d.timeout)
		}
		return Failure("tool %s failed: %v", entry.descriptor.Name, err)
	}
	if res == nil {
		return Failure("tool %s returned no result", entry.descriptor.Name)
	}
	if res.IsError {
		msg := res.Text
		if msg == "" {
			msg = "provider reported an error with no details"
		}
		return Failure("tool %s failed: %s", entry.descriptor.Name, msg)
	}

	out := &Result{Message: res.Text}
	if wantStructured {
		if message, structured := ExtractStructured(res.Text); structured != nil {
			out.Structured = structured
			if message != "" {
				out.Message = message
			}
		}
	}
	return out
}

func (d *Dispatcher) dispatchBuiltin(ctx context.Context, tool Tool, args map[string]any) (res *Result) {
	// A panicking handler becomes a failed result; nothing crosses the
	// dispatch boundary as a throw.
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("builtin tool panicked", fmt.Errorf("%v", r),
				logger.String("tool", tool.Name()))
			res = Failure("tool %s failed: %v", tool.Name(), r)
		}
	}()

	if missing := missingRequiredArgs(tool.Schema(), args); len(missing) > 0 {
		return Failure("tool %s: missing required arguments: %v", tool.Name(), missing)
	}

	result, err := tool.Invoke(ctx, args)
	if err != nil {
		return Failure("tool %s failed: %v", tool.Name(), err)
	}
	if result == nil {
		return &Result{Message: "ok"}
	}
	return result
}

// missingRequiredArgs validates the call arguments against the schema's
// required list. Malformed schemas are treated permissively.
func missingRequiredArgs(schema map[string]any, args map[string]any) []string {
	if schema == nil {
		return nil
	}
	var missing []string
	switch required := schema["required"].(type) {
	case []string:
		for _, name := range required {
			if _, ok := args[name]; !ok {
				missing = append(missing, name)
			}
		}
	case []any:
		for _, v := range required {
			if name, ok := v.(string); ok {
				if _, ok := args[name]; !ok {
					missing = append(missing, name)
				}
			}
		}
	}
	return missing
}
