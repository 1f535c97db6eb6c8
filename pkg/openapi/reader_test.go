package openapi

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileKeepsDocumentOrder(t *testing.T) {
	doc, err := ReadFile(filepath.Join("testdata", "hr.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if doc.Version() != "3.1.0" {
		t.Errorf("Version() = %q, want 3.1.0", doc.Version())
	}
	if doc.Description() != "Human resources service" {
		t.Errorf("Description() = %q", doc.Description())
	}
	if doc.BaseURL() != "http://hr.example.com/api" {
		t.Errorf("BaseURL() = %q", doc.BaseURL())
	}

	var got []string
	for _, op := range doc.Operations() {
		got = append(got, op.Method+" "+op.Path)
	}
	want := []string{
		"GET /hr/employees/",
		"POST /hr/employees/",
		"GET /hr/employees/{id}",
		"PUT /hr/employees/{id}",
		"DELETE /hr/employees/{id}",
		"GET /hr/employees/search",
		"GET /reports/export",
		"HEAD /{tenant}",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("operations out of order:\ngot:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestPathParametersAreMerged(t *testing.T) {
	doc, err := ReadFile(filepath.Join("testdata", "hr.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	for _, op := range doc.Operations() {
		if op.Path != "/hr/employees/{id}" {
			continue
		}
		if len(op.Parameters) != 1 {
			t.Fatalf("%s %s: expected 1 parameter, got %d", op.Method, op.Path, len(op.Parameters))
		}
		p := op.Parameters[0]
		if p.Name != "id" || !p.Required || p.Kind() != "integer" {
			t.Errorf("%s %s: unexpected parameter %+v", op.Method, op.Path, p)
		}
	}
}

func TestReferencesAreResolved(t *testing.T) {
	doc, err := ReadFile(filepath.Join("testdata", "hr.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	for _, op := range doc.Operations() {
		switch {
		case op.Method == "PUT" && op.Path == "/hr/employees/{id}":
			if !op.HasBody() || op.RequestBody.Ref != "" {
				t.Errorf("request body reference not resolved: %+v", op.RequestBody)
			}
		case op.Path == "/hr/employees/search":
			if len(op.Parameters) != 2 || op.Parameters[0].Name != "q" || !op.Parameters[0].Required {
				t.Errorf("parameter reference not resolved: %+v", op.Parameters)
			}
		}
	}
}

func TestNullableTypeList(t *testing.T) {
	doc, err := ReadFile(filepath.Join("testdata", "hr.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, op := range doc.Operations() {
		if op.Path == "/reports/export" {
			if kind := op.Parameters[0].Kind(); kind != "number" {
				t.Errorf("Kind() = %q, want number", kind)
			}
		}
	}
}

const referencesDescription = `
openapi: 3.1.0
info:
  title: Catalog
  version: 1.0.0
paths:
  /items/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          $ref: '#/components/schemas/Id'
    get:
      parameters:
        - $ref: '#/components/parameters/Limit'
        - name: sort
          in: query
          schema:
            allOf:
              - $ref: '#/components/schemas/Order'
    put:
      requestBody:
        $ref: '#/components/requestBodies/Item'
  /archive:
    $ref: '#/components/pathItems/Archive'
components:
  schemas:
    Id:
      type: integer
    Count:
      type: integer
      format: int32
    Order:
      type: string
  parameters:
    Limit:
      name: limit
      in: query
      required: true
      schema:
        $ref: '#/components/schemas/Count'
  requestBodies:
    Item:
      description: An item
      required: true
      content:
        application/json:
          schema:
            type: object
  pathItems:
    Archive:
      get:
        summary: List archived items
        operationId: listArchive
`

func TestComponentReferences(t *testing.T) {
	doc, err := FromYAML([]byte(referencesDescription))
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}

	ops := doc.Operations()
	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(ops))
	}
	get, put, archive := ops[0], ops[1], ops[2]

	kinds := map[string]string{}
	for _, p := range get.Parameters {
		kinds[p.In+":"+p.Name] = p.Kind()
	}
	want := map[string]string{"query:limit": "integer", "query:sort": "string", "path:id": "integer"}
	for key, kind := range want {
		if kinds[key] != kind {
			t.Errorf("parameter %s: Kind() = %q, want %q", key, kinds[key], kind)
		}
	}
	if len(get.Parameters) != 3 || get.Parameters[0].Name != "limit" || !get.Parameters[0].Required {
		t.Errorf("unexpected parameters: %+v", get.Parameters)
	}
	if get.Parameters[0].Schema.Format != "int32" {
		t.Errorf("schema format = %q, want int32", get.Parameters[0].Schema.Format)
	}

	if len(put.Parameters) != 1 || put.Parameters[0].Kind() != "integer" {
		t.Errorf("path parameter not merged into PUT: %+v", put.Parameters)
	}
	if !put.HasBody() || put.RequestBody.Description != "An item" || !put.RequestBody.Required {
		t.Errorf("request body reference not resolved: %+v", put.RequestBody)
	}
	if _, ok := put.RequestBody.Content["application/json"]; !ok {
		t.Errorf("request body content missing: %+v", put.RequestBody.Content)
	}

	if archive.Method != "GET" || archive.Path != "/archive" {
		t.Errorf("path item reference gave %s %s", archive.Method, archive.Path)
	}
	if archive.Summary != "List archived items" || archive.OperationID != "listArchive" {
		t.Errorf("path item reference not resolved: %+v", archive)
	}
}

func TestReferencesWithoutVersion(t *testing.T) {
	_, err := FromYAML([]byte(`
paths:
  /archive:
    $ref: '#/components/pathItems/Archive'
`))
	if err == nil || !strings.Contains(err.Error(), "unresolved path item reference") {
		t.Errorf("expected unresolved path item reference, got %v", err)
	}
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
openapi: 3.0.0
info:
  title: Test API
  version: 1.0.0
paths:
  /zeta:
    get:
      summary: Zeta
  /alpha:
    get:
      summary: Alpha
    x-internal: true
    parameters:
      - name: verbose
        in: query
        schema:
          type: boolean
`)
	doc, err := FromYAML(data)
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}
	if len(doc.Paths) != 2 || doc.Paths[0].Path != "/zeta" || doc.Paths[1].Path != "/alpha" {
		t.Fatalf("unexpected paths: %+v", doc.Paths)
	}
	if got := len(doc.Paths[1].Operations); got != 1 {
		t.Errorf("expected x- and parameters keys to be skipped, got %d operations", got)
	}
	if doc.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", doc.BaseURL(), DefaultBaseURL)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr string
	}{
		{"invalid JSON", `{"invalid": json`, FormatJSON, "parsing JSON"},
		{"missing paths", `{"openapi": "3.0.0"}`, FormatJSON, ErrNoPaths.Error()},
		{"paths not a mapping", "openapi: 3.0.0\npaths: [1, 2]\n", FormatYAML, ErrNoPaths.Error()},
		{"scalar document", "just text", FormatAuto, "expected top-level mapping"},
		{"unnamed parameter", `{"paths": {"/a": {"get": {"parameters": [{"in": "query"}]}}}}`, FormatAuto, "parameter without a name"},
		{"dangling reference", `{"paths": {"/a": {"get": {"parameters": [{"$ref": "#/components/parameters/Nope"}]}}}}`, FormatAuto, "unresolved parameter reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormat([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestMissingPathsIsSentinel(t *testing.T) {
	_, err := Parse([]byte(`{"info": {"title": "x"}}`))
	if !errors.Is(err, ErrNoPaths) {
		t.Errorf("expected ErrNoPaths, got %v", err)
	}
}

func TestFormatFromName(t *testing.T) {
	tests := map[string]Format{
		"api.json":        FormatJSON,
		"API.YAML":        FormatYAML,
		"dir/openapi.yml": FormatYAML,
		"openapi":         FormatAuto,
	}
	for name, want := range tests {
		if got := FormatFromName(name); got != want {
			t.Errorf("FormatFromName(%q) = %q, want %q", name, got, want)
		}
	}
}
