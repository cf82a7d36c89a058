package agent

import (
	"fmt"
	"strings"

	"github.com/tjmaxx/jevehome-agent/llm"
)

// CallLabel derives a short human-readable description of a call from its
// name and arguments, used for payload labeling and progress events.
func CallLabel(call llm.FunctionCall) string {
	name := strings.ToLower(call.Name)

	if origin, ok := stringArg(call.Args, "origin", "from"); ok {
		if dest, ok := stringArg(call.Args, "destination", "to"); ok {
			return fmt.Sprintf("Directions: %s → %s", origin, dest)
		}
	}
	if query, ok := stringArg(call.Args, "query", "q", "search_query"); ok {
		return "Search: " + query
	}
	if address, ok := stringArg(call.Args, "address", "place", "location"); ok {
		return "Location: " + address
	}
	if subject, ok := stringArg(call.Args, "subject"); ok && strings.Contains(name, "mail") {
		return "Email: " + subject
	}

	label := displayToolName(call.Name)
	if arg, ok := firstStringArg(call.Args); ok && len(arg) <= 60 {
		return label + ": " + arg
	}
	return label
}

// displayToolName turns a namespaced tool name into something readable:
// "places__search_nearby" becomes "Search nearby".
func displayToolName(name string) string {
	if idx := strings.LastIndex(name, NameSeparator); idx >= 0 {
		name = name[idx+len(NameSeparator):]
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Tool"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func stringArg(args map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := args[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func firstStringArg(args map[string]any) (string, bool) {
	// Prefer a few conventional keys before falling back to any string value.
	if v, ok := stringArg(args, "name", "title", "text", "id"); ok {
		return v, true
	}
	for _, v := range args {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
