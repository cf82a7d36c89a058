package agent

import (
	"reflect"
	"testing"
)

func TestExtractAnswerEnvelope(t *testing.T) {
	msg, data := ExtractStructured(`{"answer":[{"text":"hello","structuredData":{"x":1}},{"text":"world"}]}`)
	if msg != "hello\nworld" {
		t.Errorf("message = %q", msg)
	}
	m, ok := data.(map[string]any)
	if !ok || m["x"] != float64(1) {
		t.Errorf("structured = %#v", data)
	}
}

func TestExtractGenericJSONObject(t *testing.T) {
	_, data := ExtractStructured(`{"headers":["a"],"rows":[["1"]]}`)
	if data == nil {
		t.Fatal("generic JSON object not extracted")
	}
}

func TestExtractFencedJSON(t *testing.T) {
	text := "Here are the results:\n```json\n{\"count\": 3}\n```\nthanks"
	_, data := ExtractStructured(text)
	m, ok := data.(map[string]any)
	if !ok || m["count"] != float64(3) {
		t.Errorf("structured = %#v", data)
	}
}

func TestExtractHTMLTable(t *testing.T) {
	text := `Results: <table><tr><th>City</th><th>Temp</th></tr>` +
		`<tr><td>Oslo</td><td>3</td></tr><tr><td>Bergen</td><td>7</td></tr></table>`
	_, data := ExtractStructured(text)
	m, ok := data.(map[string]any)
	if !ok {
		t.Fatalf("structured = %#v", data)
	}
	if !reflect.DeepEqual(m["headers"], []string{"City", "Temp"}) {
		t.Errorf("headers = %#v", m["headers"])
	}
	rows := m["rows"].([][]string)
	if len(rows) != 2 || rows[0][0] != "Oslo" || rows[1][1] != "7" {
		t.Errorf("rows = %#v", rows)
	}
}

func TestExtractNothing(t *testing.T) {
	for _, text := range []string{
		"",
		"just some prose",
		"broken ```json\n{oops\n``` fence",
		"<div>no table here</div>",
	} {
		if msg, data := ExtractStructured(text); data != nil || msg != "" {
			t.Errorf("ExtractStructured(%q) = %q, %#v; want empty", text, msg, data)
		}
	}
}
