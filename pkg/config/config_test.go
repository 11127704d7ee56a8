package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SafeModeOn() {
		t.Error("safe mode not on by default")
	}
	if cfg.StepMode {
		t.Error("step mode on by default")
	}
	if cfg.Translator.Model == "" {
		t.Error("no default model")
	}
}

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(`
safe_mode: false
step_mode: true
project_root: /tmp
backends:
  desktop_ctl: python3 /opt/tact/desktop_automation.py
  headless: true
translator:
  model: gpt-4o
  base_url: http://localhost:8080/v1
  api_key_env: TACT_KEY
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SafeModeOn() {
		t.Error("safe_mode: false not honored")
	}
	if !cfg.StepMode || !cfg.Backends.Headless {
		t.Error("booleans not decoded")
	}
	if cfg.ProjectRoot != filepath.FromSlash("/tmp") {
		t.Errorf("project_root = %q", cfg.ProjectRoot)
	}
	if cfg.Translator.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Translator.Model)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("safemode: true\n"))
	if err == nil {
		t.Fatal("unknown key accepted")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SafeModeOn() {
		t.Error("defaults not returned for missing file")
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing explicit config accepted")
	}
}
