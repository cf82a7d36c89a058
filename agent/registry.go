package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/tjmaxx/jevehome-agent/logger"
)

// NameSeparator joins a provider ID and a raw tool name into the namespaced
// name exposed to the model.
const NameSeparator = "__"

// maxToolNameLen bounds tool names; model function names are restricted.
const maxToolNameLen = 64

// ExternalResult is what an external provider returns for one invocation.
type ExternalResult struct {
	IsError bool
	Text    string
}

// ProviderCaller invokes a tool on a connected external provider by its raw
// (un-namespaced) name.
type ProviderCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*ExternalResult, error)
}

type externalTool struct {
	descriptor ToolDescriptor
	providerID string
	rawName    string
	caller     ProviderCaller
}

// Registry merges built-in tools and externally discovered tools into one
// namespace. It is process-wide: mutated only when a provider connects or
// disconnects, read on every request. Readers never observe a half-applied
// mutation.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]Tool
	external map[string]*externalTool
	// names in registration order, for deterministic List output
	order []string
	log   logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Registry{
		builtins: make(map[string]Tool),
		external: make(map[string]*externalTool),
		log:      log,
	}
}

// RegisterBuiltin adds a built-in tool. A name collision overwrites the
// previous entry.
func (r *Registry) RegisterBuiltin(tool Tool) {
	if tool == nil {
		return
	}
	name := SanitizeToolName(tool.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builtins[name]; exists {
		r.log.Warn("builtin tool overwritten", logger.String("tool", name))
	} else {
		r.order = append(r.order, name)
	}
	r.builtins[name] = tool
}

// RegisterProvider adds all tools of an external provider under the
// provider's namespace. Names that collide after sanitization overwrite the
// previous entry (overwrite-last).
func (r *Registry) RegisterProvider(providerID string, caller ProviderCaller, tools []ToolDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, desc := range tools {
		name := NamespacedName(providerID, desc.Name)
		entry := &externalTool{
			descriptor: ToolDescriptor{
				Name:        name,
				Description: desc.Description,
				Schema:      NormalizeSchema(desc.Schema),
			},
			providerID: providerID,
			rawName:    desc.Name,
			caller:     caller,
		}
		if _, exists := r.external[name]; exists {
			r.log.Warn("external tool name collision, overwriting",
				logger.String("tool", name),
				logger.String("provider", providerID))
		} else if _, exists := r.builtins[name]; exists {
			r.log.Warn("external tool shadows builtin", logger.String("tool", name))
		} else {
			r.order = append(r.order, name)
		}
		r.external[name] = entry
	}

	r.log.Info("provider registered",
		logger.String("provider", providerID),
		logger.Int("tools", len(tools)))
}

// UnregisterProvider removes every tool belonging to the provider.
func (r *Registry) UnregisterProvider(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, name := range r.order {
		if entry, ok := r.external[name]; ok && entry.providerID == providerID {
			delete(r.external, name)
			continue
		}
		kept = append(kept, name)
	}
	r.order = kept
}

// List returns descriptors for every registered tool in registration order.
func (r *Registry) List() []ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		if tool, ok := r.builtins[name]; ok {
			out = append(out, ToolDescriptor{
				Name:        name,
				Description: tool.Description(),
				Schema:      NormalizeSchema(tool.Schema()),
			})
			continue
		}
		if entry, ok := r.external[name]; ok {
			out = append(out, entry.descriptor)
		}
	}
	return out
}

// IsExternal reports whether name belongs to an external provider.
func (r *Registry) IsExternal(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.external[name]
	return ok
}

func (r *Registry) lookupBuiltin(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.builtins[name]
	return tool, ok
}

func (r *Registry) lookupExternal(name string) (*externalTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.external[name]
	return entry, ok
}

// NamespacedName composes and sanitizes the model-facing name of an external
// tool.
func NamespacedName(providerID, rawName string) string {
	return SanitizeToolName(providerID + NameSeparator + rawName)
}

// SanitizeToolName restricts a name to [A-Za-z0-9_-] and at most 64
// characters. Sanitizing an already-sanitized name is a no-op.
func SanitizeToolName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > maxToolNameLen {
		s = s[:maxToolNameLen]
	}
	return s
}
