package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// KnowledgeSource supplies optional knowledge-base context for the system
// instruction. A failing source is skipped, not fatal.
type KnowledgeSource interface {
	Context(ctx context.Context, query string) (string, error)
}

// DefaultHistoryWindow bounds how many stored turns are replayed to the
// model.
const DefaultHistoryWindow = 20

const behavioralRules = `You are a helpful location and home assistant.
Rules:
- Use the available tools whenever they can improve the answer; prefer tool results over guessing.
- When a tool fails, consider retrying it with corrected arguments or using a different tool.
- Answer in the language of the user's question.
- Keep answers concise and concrete. Do not mention tool names or internal mechanics.`

// buildSystem assembles the system instruction: behavioral rules, the
// capability list, and optional user-location and knowledge-base context.
func (a *Agent) buildSystem(ctx context.Context, req Request) string {
	var b strings.Builder
	b.WriteString(behavioralRules)
	if a.rules != "" {
		b.WriteString("\n")
		b.WriteString(a.rules)
	}

	descriptors := a.registry.List()
	if len(descriptors) > 0 {
		b.WriteString("\n\nAvailable capabilities:\n")
		for _, desc := range descriptors {
			if !toolEnabled(req.EnabledTools, desc.Name) {
				continue
			}
			b.WriteString("- ")
			b.WriteString(desc.Name)
			if desc.Description != "" {
				b.WriteString(": ")
				b.WriteString(desc.Description)
			}
			b.WriteString("\n")
		}
	}

	if req.Location != nil {
		label := req.Location.Label
		if label == "" {
			label = "unnamed location"
		}
		fmt.Fprintf(&b, "\nThe user is at %s (lat %.5f, lng %.5f). Prefer nearby results.\n",
			label, req.Location.Latitude, req.Location.Longitude)
	}

	if a.knowledge != nil {
		kb, err := a.knowledge.Context(ctx, req.Message)
		if err != nil {
			a.log.Warn("knowledge source failed, continuing without it", logger.Err(err))
		} else if kb != "" {
			b.WriteString("\nBackground knowledge:\n")
			b.WriteString(kb)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// buildMessages assembles the bounded history window plus the new user
// message. History failures are tolerated: the request proceeds without
// history.
func (a *Agent) buildMessages(ctx context.Context, req Request) []llm.Message {
	var messages []llm.Message

	if a.history != nil && req.ConversationID != "" {
		turns, err := a.history.Recent(ctx, req.ConversationID, a.historyWindow)
		if err != nil {
			a.log.Warn("history provider failed, continuing without history",
				logger.String("conversation", req.ConversationID),
				logger.Err(err))
		}
		for _, turn := range turns {
			role := llm.RoleUser
			if turn.Role == RoleAssistant {
				role = llm.RoleModel
			}
			if strings.TrimSpace(turn.Text) == "" {
				continue
			}
			messages = append(messages, llm.Message{Role: role, Text: turn.Text})
		}
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Text: req.Message})
}

// toolEnabled applies the caller's tool-enable list; nil enables everything.
func toolEnabled(enabled []string, name string) bool {
	if enabled == nil {
		return true
	}
	for _, n := range enabled {
		if n == name {
			return true
		}
	}
	return false
}

// toolDecls converts the enabled subset of the registry into model tool
// declarations.
func (a *Agent) toolDecls(enabled []string) []llm.ToolDecl {
	descriptors := a.registry.List()
	decls := make([]llm.ToolDecl, 0, len(descriptors))
	for _, desc := range descriptors {
		if !toolEnabled(enabled, desc.Name) {
			continue
		}
		decls = append(decls, llm.ToolDecl{
			Name:        desc.Name,
			Description: desc.Description,
			Schema:      desc.Schema,
		})
	}
	return decls
}
