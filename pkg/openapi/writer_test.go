package openapi

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteRoundTrip(t *testing.T) {
	doc, err := ReadFile(filepath.Join("testdata", "hr.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			out, err := ToString(doc, format)
			if err != nil {
				t.Fatalf("ToString failed: %v", err)
			}

			again, err := ParseFormat([]byte(out), format)
			if err != nil {
				t.Fatalf("normalized output does not parse: %v\n%s", err, out)
			}

			before, after := doc.Operations(), again.Operations()
			if len(before) != len(after) {
				t.Fatalf("got %d operations, want %d", len(after), len(before))
			}
			for i := range before {
				if before[i].Method != after[i].Method || before[i].Path != after[i].Path {
					t.Errorf("operation %d = %s %s, want %s %s", i,
						after[i].Method, after[i].Path, before[i].Method, before[i].Path)
				}
				if len(before[i].Parameters) != len(after[i].Parameters) {
					t.Errorf("%s %s: got %d parameters, want %d", after[i].Method, after[i].Path,
						len(after[i].Parameters), len(before[i].Parameters))
				}
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	doc, err := FromYAML([]byte(`
openapi: 3.1.0
info:
  title: Test API
  version: 1.0.0
paths:
  /z:
    get:
      summary: Last alphabetically
  /a:
    post:
      summary: First alphabetically
`))
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}

	jsonStr, err := ToString(doc, FormatJSON)
	if err != nil {
		t.Fatalf("ToString failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(jsonStr, `"openapi": "3.1.0"`) {
		t.Error("expected openapi version in JSON")
	}
	if strings.Index(jsonStr, `"/z"`) > strings.Index(jsonStr, `"/a"`) {
		t.Errorf("paths not in document order:\n%s", jsonStr)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	doc := &Document{}
	if _, err := ToString(doc, Format("toml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}
