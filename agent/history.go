package agent

import (
	"context"
	"sync"
)

// Turn roles in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one stored conversation turn. The store owning these is a
// collaborator; the loop only reads a bounded window and appends the turns
// it produces.
type Turn struct {
	Role   string         `json:"role"`
	Text   string         `json:"text"`
	Visual *VisualPayload `json:"visualPayload,omitempty"`
}

// HistoryProvider is the conversation-persistence boundary.
type HistoryProvider interface {
	// Recent returns up to limit most recent turns, oldest first.
	Recent(ctx context.Context, conversationID string, limit int) ([]Turn, error)
	// Append stores a new turn at the end of the conversation.
	Append(ctx context.Context, conversationID string, turn Turn) error
}

// MemoryHistory is an in-memory HistoryProvider for the CLI and tests.
type MemoryHistory struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

// NewMemoryHistory creates an empty in-memory history store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{turns: make(map[string][]Turn)}
}

// Recent implements HistoryProvider.
func (h *MemoryHistory) Recent(_ context.Context, conversationID string, limit int) ([]Turn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := h.turns[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append implements HistoryProvider.
func (h *MemoryHistory) Append(_ context.Context, conversationID string, turn Turn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns[conversationID] = append(h.turns[conversationID], turn)
	return nil
}
