package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cfg")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Aliases) != 0 {
		t.Errorf("expected no aliases, got %v", cfg.Aliases)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if string(data) != "{\n  \"aliases\": {}\n}\n" {
		t.Errorf("unexpected default config %q", data)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(cfg.Path())
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("config mode = %o, want 600", perm)
		}
	}
}

func TestAliasLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := cfg.Add("hr", "https://example.com/openapi.json?a=1&b=2"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := cfg.Add("billing", "./billing.yaml"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := cfg.Add("hr", "other.json"); !errors.Is(err, ErrAliasExists) {
		t.Errorf("duplicate Add error = %v, want ErrAliasExists", err)
	}

	// A fresh load sees the saved state.
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	list := cfg.List()
	if len(list) != 2 || list[0].Name != "billing" || list[1].Name != "hr" {
		t.Fatalf("List() = %v, want billing then hr", list)
	}
	if list[1].Location != "https://example.com/openapi.json?a=1&b=2" {
		t.Errorf("location = %q", list[1].Location)
	}

	if err := cfg.Update("hr", "hr-v2.yaml"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got, _ := cfg.Get("hr"); got != "hr-v2.yaml" {
		t.Errorf("Get after Update = %q", got)
	}

	if err := cfg.Remove("hr"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := cfg.Get("hr"); !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("Get after Remove error = %v, want ErrAliasNotFound", err)
	}

	if err := cfg.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(cfg.List()) != 0 {
		t.Errorf("expected no aliases after Clear, got %v", cfg.List())
	}
}

func TestMissingAliasErrors(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := cfg.Get("nope"); !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("Get error = %v", err)
	}
	if err := cfg.Update("nope", "x.yaml"); !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("Update error = %v", err)
	}
	if err := cfg.Remove("nope"); !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("Remove error = %v", err)
	}
}

func TestInvalidAliasNames(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name     string
		location string
	}{
		{"", "spec.yaml"},
		{"has space", "spec.yaml"},
		{"has/slash", "spec.yaml"},
		{"tab\tname", "spec.yaml"},
		{"ok", ""},
	}
	for _, tt := range tests {
		if err := cfg.Add(tt.name, tt.location); !errors.Is(err, ErrInvalidAlias) {
			t.Errorf("Add(%q, %q) error = %v, want ErrInvalidAlias", tt.name, tt.location, err)
		}
	}
	if len(cfg.Aliases) != 0 {
		t.Errorf("invalid aliases were recorded: %v", cfg.Aliases)
	}
}

func TestCorruptConfig(t *testing.T) {
	for _, content := range []string{"not json", `{"aliases": []}`, `{"aliases": {"a": 1}}`} {
		dir := t.TempDir()
		path := filepath.Join(dir, FileName)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := Load(dir); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Load(%q) error = %v, want ErrCorrupt", content, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != content {
			t.Errorf("corrupt config was rewritten to %q", data)
		}
	}
}

func TestLoadAcceptsComments(t *testing.T) {
	dir := t.TempDir()
	content := `{
  // team APIs
  "aliases": {
    "hr": "hr.yaml", /* primary */
  },
}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, _ := cfg.Get("hr"); got != "hr.yaml" {
		t.Errorf("Get(hr) = %q", got)
	}
}

func TestNullAliases(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Add("a", "a.yaml"); err != nil {
		t.Errorf("Add on empty config failed: %v", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(LegacyEnvConfigDir, "")

	if dir, _ := Dir("/explicit"); dir != "/explicit" {
		t.Errorf("Dir(override) = %q", dir)
	}

	t.Setenv(LegacyEnvConfigDir, "/legacy")
	if dir, _ := Dir(""); dir != "/legacy" {
		t.Errorf("Dir with legacy env = %q", dir)
	}

	t.Setenv(EnvConfigDir, "/current")
	if dir, _ := Dir(""); dir != "/current" {
		t.Errorf("Dir with env = %q", dir)
	}

	t.Setenv(EnvConfigDir, "")
	t.Setenv(LegacyEnvConfigDir, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	if dir, _ := Dir(""); dir != filepath.Join(home, DefaultDirName) {
		t.Errorf("Dir default = %q", dir)
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Add("hr", "hr.yaml"); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Resolve("hr"); got != "hr.yaml" {
		t.Errorf("Resolve(hr) = %q", got)
	}
	if got := cfg.Resolve("other.yaml"); got != "other.yaml" {
		t.Errorf("Resolve(other.yaml) = %q", got)
	}
}
