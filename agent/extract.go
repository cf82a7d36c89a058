package agent

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// answerEnvelope is the conventional shape some providers wrap their output
// in: {"answer": [{"text": ..., "structuredData": ...}]}.
type answerEnvelope struct {
	Answer []struct {
		Text           string `json:"text"`
		StructuredData any    `json:"structuredData"`
	} `json:"answer"`
}

// ExtractStructured attempts best-effort structured-data extraction from
// external tool text output. It tries, in order: the whole text as JSON in
// the answer-envelope shape, a fenced ```json block, and an embedded HTML
// table. When nothing matches it returns ("", nil); that is not an error.
func ExtractStructured(text string) (message string, structured any) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}

	if msg, data, ok := parseAnswerEnvelope(trimmed); ok {
		return msg, data
	}
	if data, ok := parseFencedJSON(trimmed); ok {
		return "", data
	}
	if table, ok := parseHTMLTable(trimmed); ok {
		return "", table
	}
	return "", nil
}

func parseAnswerEnvelope(text string) (string, any, bool) {
	if !strings.HasPrefix(text, "{") {
		return "", nil, false
	}
	var env answerEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil || len(env.Answer) == 0 {
		// Any valid JSON object still counts as structured data even when
		// it is not the envelope shape.
		var generic map[string]any
		if err := json.Unmarshal([]byte(text), &generic); err == nil && len(generic) > 0 {
			return "", generic, true
		}
		return "", nil, false
	}

	var texts []string
	var data any
	for _, entry := range env.Answer {
		if entry.Text != "" {
			texts = append(texts, entry.Text)
		}
		if data == nil && entry.StructuredData != nil {
			data = entry.StructuredData
		}
	}
	if data == nil && len(texts) == 0 {
		return "", nil, false
	}
	return strings.Join(texts, "\n"), data, true
}

// parseFencedJSON scans for the first ```json fenced block and parses it.
func parseFencedJSON(text string) (any, bool) {
	const fence = "```json"
	start := strings.Index(text, fence)
	if start < 0 {
		return nil, false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return nil, false
	}
	var data any
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &data); err != nil {
		return nil, false
	}
	return data, true
}

// parseHTMLTable extracts the first <table> in the text as
// {"headers": [...], "rows": [[...], ...]}.
func parseHTMLTable(text string) (map[string]any, bool) {
	if !strings.Contains(strings.ToLower(text), "<table") {
		return nil, false
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, false
	}

	table := findNode(doc, "table")
	if table == nil {
		return nil, false
	}

	var headers []string
	var rows [][]string
	for _, tr := range findAll(table, "tr") {
		var headerCells, dataCells []string
		for _, cell := range findAll(tr, "th") {
			headerCells = append(headerCells, nodeText(cell))
		}
		for _, cell := range findAll(tr, "td") {
			dataCells = append(dataCells, nodeText(cell))
		}
		if len(headerCells) > 0 && headers == nil {
			headers = headerCells
		} else if len(dataCells) > 0 {
			rows = append(rows, dataCells)
		}
	}
	if headers == nil && len(rows) == 0 {
		return nil, false
	}

	out := map[string]any{"rows": rows}
	if headers != nil {
		out["headers"] = headers
	}
	return out, true
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
