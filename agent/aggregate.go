package agent

import (
	"encoding/json"

	"github.com/tjmaxx/jevehome-agent/llm"
)

// mergePayloads merges the visual payloads of successful calls: none → nil,
// one → the bare payload, several → an ordered "multi" container whose
// entries carry the call labels.
func mergePayloads(records []StepRecord) *VisualPayload {
	var labeled []VisualPayload
	for _, rec := range records {
		if !rec.Result.OK() || rec.Result.Visual == nil {
			continue
		}
		entry := *rec.Result.Visual
		if entry.Label == "" {
			entry.Label = rec.Label
		}
		labeled = append(labeled, entry)
	}

	switch len(labeled) {
	case 0:
		return nil
	case 1:
		return &labeled[0]
	default:
		return &VisualPayload{Kind: PayloadKindMulti, Items: labeled}
	}
}

// selectArtifact picks the single artifact for the run, or none. A ready-made
// artifact returned by a successful tool wins outright (first one; later ones
// are ignored). Otherwise the first structured datum is classified through
// the matcher chain.
func selectArtifact(records []StepRecord) *Artifact {
	for _, rec := range records {
		if rec.Result.OK() && rec.Result.Artifact != nil {
			return rec.Result.Artifact
		}
	}
	for _, rec := range records {
		if rec.Result.OK() && rec.Result.Structured != nil {
			return classifyStructured(rec.Result.Structured, rec.Label)
		}
	}
	return nil
}

// artifactMatcher inspects a structured datum and either claims it or
// returns nil.
type artifactMatcher func(data map[string]any, title string) *Artifact

// artifactMatchers is the prioritized chain; first match wins.
var artifactMatchers = []artifactMatcher{matchGrid, matchChart, matchTable}

// classifyStructured always produces an artifact for non-nil data; malformed
// shapes fall through to the pretty-printed document.
func classifyStructured(data any, title string) *Artifact {
	if m, ok := data.(map[string]any); ok {
		for _, match := range artifactMatchers {
			if artifact := match(m, title); artifact != nil {
				return artifact
			}
		}
	}
	return documentArtifact(data, title)
}

// matchGrid claims a multi-chart container: {"charts": [...]}.
func matchGrid(data map[string]any, title string) *Artifact {
	charts, ok := data["charts"].([]any)
	if !ok || len(charts) == 0 {
		return nil
	}
	return &Artifact{
		Kind:  ArtifactGrid,
		Title: artifactTitle(data, title, "Charts"),
		Spec:  data,
	}
}

// matchChart claims a single chart configuration: a type plus datasets.
func matchChart(data map[string]any, title string) *Artifact {
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil
	}
	if _, ok := data["datasets"]; !ok {
		if _, ok := data["data"]; !ok {
			return nil
		}
	}
	return &Artifact{
		Kind:  ArtifactChart,
		Title: artifactTitle(data, title, "Chart"),
		Spec:  data,
	}
}

// matchTable claims generic tabular data: headers/rows or columns/data.
func matchTable(data map[string]any, title string) *Artifact {
	_, hasHeaders := data["headers"]
	_, hasRows := data["rows"]
	_, hasColumns := data["columns"]
	_, hasData := data["data"]
	if !(hasHeaders && hasRows) && !(hasColumns && hasData) {
		return nil
	}
	return &Artifact{
		Kind:  ArtifactTable,
		Title: artifactTitle(data, title, "Table"),
		Spec:  data,
	}
}

// documentArtifact pretty-prints arbitrary structured data as an inspectable
// document.
func documentArtifact(data any, title string) *Artifact {
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		pretty = []byte("{}")
	}
	if title == "" {
		title = "Data"
	}
	return &Artifact{
		Kind:  ArtifactDocument,
		Title: title,
		Spec:  map[string]any{"content": string(pretty)},
	}
}

func artifactTitle(data map[string]any, fallback, generic string) string {
	if t, ok := data["title"].(string); ok && t != "" {
		return t
	}
	if fallback != "" {
		return fallback
	}
	return generic
}

// mergeCitations collects citations from successful calls in call order.
func mergeCitations(records []StepRecord) []llm.Citation {
	var out []llm.Citation
	for _, rec := range records {
		if rec.Result.OK() && len(rec.Result.Citations) > 0 {
			out = append(out, rec.Result.Citations...)
		}
	}
	return out
}
