package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalYAML = `openapi: 3.0.0
info:
  title: Test API
  version: 1.0.0
paths:
  /ping:
    get:
      summary: Ping
`

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte(minimalYAML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	doc, err := Load(context.Background(), server.URL+"/openapi")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Info.Title != "Test API" {
		t.Errorf("Info.Title = %q", doc.Info.Title)
	}

	_, err = Load(context.Background(), server.URL+"/missing.json")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Operations()) != 1 {
		t.Errorf("expected 1 operation, got %d", len(doc.Operations()))
	}

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(context.Background(), ""); err == nil {
		t.Error("expected error for empty location")
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"http://example.com/api.json": true,
		"https://example.com":         true,
		"/tmp/spec.json":              false,
		"spec.yaml":                   false,
		"ftp://example.com/spec":      false,
		"not-a-url":                   false,
	}
	for location, want := range tests {
		if got := IsURL(location); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", location, got, want)
		}
	}
}

func TestSniffVersion(t *testing.T) {
	version, err := SniffVersion([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("SniffVersion failed: %v", err)
	}
	if version != "3.0.0" {
		t.Errorf("version = %q, want 3.0.0", version)
	}

	if _, err := SniffVersion([]byte(`{"hello": "world"}`)); err == nil {
		t.Error("expected error for a non-OpenAPI document")
	}
}
