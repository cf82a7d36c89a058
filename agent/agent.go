package agent

import (
	"time"

	"github.com/tjmaxx/jevehome-agent/events"
	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// Defaults applied when the settings store has no value.
const (
	DefaultMaxSteps   = 5
	DefaultMaxRetries = 1
)

// Agent owns the orchestration loop: the tool registry, the dispatcher, and
// the budgets. One Agent serves many requests; all per-request state lives in
// Run.
type Agent struct {
	model      llm.Model
	registry   *Registry
	dispatcher *Dispatcher
	history    HistoryProvider
	knowledge  KnowledgeSource
	emitter    *events.Emitter
	log        logger.Logger

	maxSteps      int
	maxRetries    int
	historyWindow int
	toolTimeout   time.Duration
	temperature   float32
	rules         string
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(a *Agent) { a.log = log }
}

// WithHistory sets the conversation history provider.
func WithHistory(history HistoryProvider) Option {
	return func(a *Agent) { a.history = history }
}

// WithKnowledgeSource sets an optional knowledge-base context source.
func WithKnowledgeSource(source KnowledgeSource) Option {
	return func(a *Agent) { a.knowledge = source }
}

// WithMaxSteps sets the per-attempt step budget.
func WithMaxSteps(maxSteps int) Option {
	return func(a *Agent) {
		if maxSteps > 0 {
			a.maxSteps = maxSteps
		}
	}
}

// WithMaxRetries sets the reflexion retry budget.
func WithMaxRetries(maxRetries int) Option {
	return func(a *Agent) {
		if maxRetries >= 0 {
			a.maxRetries = maxRetries
		}
	}
}

// WithHistoryWindow sets how many stored turns are replayed to the model.
func WithHistoryWindow(window int) Option {
	return func(a *Agent) {
		if window > 0 {
			a.historyWindow = window
		}
	}
}

// WithToolTimeout sets the external tool invocation timeout.
func WithToolTimeout(timeout time.Duration) Option {
	return func(a *Agent) {
		if timeout > 0 {
			a.toolTimeout = timeout
		}
	}
}

// WithTemperature sets the model temperature.
func WithTemperature(temperature float32) Option {
	return func(a *Agent) { a.temperature = temperature }
}

// WithRules appends extra behavioral rules to the system instruction.
func WithRules(rules string) Option {
	return func(a *Agent) { a.rules = rules }
}

// New creates an Agent around the given model.
func New(model llm.Model, opts ...Option) *Agent {
	a := &Agent{
		model:         model,
		emitter:       events.NewEmitter(),
		maxSteps:      DefaultMaxSteps,
		maxRetries:    DefaultMaxRetries,
		historyWindow: DefaultHistoryWindow,
		toolTimeout:   DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.NewDefault()
	}
	a.registry = NewRegistry(a.log)
	a.dispatcher = NewDispatcher(a.registry, a.toolTimeout, a.log)
	return a
}

// Registry exposes the tool registry for provider connect/disconnect and
// built-in registration.
func (a *Agent) Registry() *Registry { return a.registry }

// Events exposes the progress emitter for listener registration.
func (a *Agent) Events() *events.Emitter { return a.emitter }

// RegisterTool registers a built-in tool.
func (a *Agent) RegisterTool(tool Tool) { a.registry.RegisterBuiltin(tool) }
