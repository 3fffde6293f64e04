package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.MatchesExtension("family.pl") || !cfg.MatchesExtension("FAMILY.PRO") {
		t.Fatalf("expected default extensions to match, got %v", cfg.Extensions)
	}
	if cfg.MatchesExtension("notes.txt") {
		t.Fatalf("unexpected match for .txt")
	}
	if !cfg.Lint.Singletons || !cfg.Lint.Discontiguous || !cfg.Lint.Heads {
		t.Fatalf("expected all lint checks enabled, got %+v", cfg.Lint)
	}
	if cfg.Store.Path == "" || cfg.REPL.Prompt == "" {
		t.Fatalf("expected store path and prompt, got %+v", cfg)
	}
	if cfg.Path() != "" {
		t.Fatalf("defaults should not report a path, got %q", cfg.Path())
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "horn.toml", `
extensions = [".prolog"]
trace = true

[lint]
singletons = false
discontiguous = true

[store]
path = "/tmp/horn-test.db"

[repl]
prompt = "| "
history_limit = 10
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Trace {
		t.Fatalf("expected trace to be enabled")
	}
	if !cfg.MatchesExtension("x.prolog") || cfg.MatchesExtension("x.pl") {
		t.Fatalf("extensions not replaced: %v", cfg.Extensions)
	}
	if cfg.Lint.Singletons || !cfg.Lint.Discontiguous {
		t.Fatalf("unexpected lint settings %+v", cfg.Lint)
	}
	if !cfg.Lint.Heads {
		t.Fatalf("unset keys should keep their defaults")
	}
	if cfg.Store.Path != "/tmp/horn-test.db" || cfg.REPL.Prompt != "| " || cfg.REPL.HistoryLimit != 10 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Path() != path {
		t.Fatalf("expected path %q, got %q", path, cfg.Path())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "horn.yml", `
lint:
  heads: false
repl:
  history_limit: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Lint.Heads || !cfg.Lint.Singletons {
		t.Fatalf("unexpected lint settings %+v", cfg.Lint)
	}
	if cfg.REPL.HistoryLimit != 3 || cfg.REPL.Prompt != "?- " {
		t.Fatalf("unexpected repl settings %+v", cfg.REPL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"horn.toml": `extensions = ["pl"]`,
		"horn.yaml": "repl:\n  history_limit: -1\n",
	}
	for name, content := range cases {
		path := writeConfig(t, name, content)
		if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "invalid config") {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestLoadReportsSyntaxErrors(t *testing.T) {
	path := writeConfig(t, "horn.toml", "extensions = [")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse ") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !os.IsNotExist(errors.Cause(err)) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover in empty dir: %v", err)
	}
	if cfg.Path() != "" {
		t.Fatalf("expected defaults, got config from %q", cfg.Path())
	}

	yamlPath := filepath.Join(dir, "horn.yaml")
	if err := os.WriteFile(yamlPath, []byte("trace: true\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	tomlPath := filepath.Join(dir, "horn.toml")
	if err := os.WriteFile(tomlPath, []byte("trace = false\n"), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	cfg, err = Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Path() != tomlPath || cfg.Trace {
		t.Fatalf("expected horn.toml to win, got %q", cfg.Path())
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
