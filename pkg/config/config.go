// Package config loads the tool configuration file. Decoding is
// strict: an unknown key is a typo surfaced at startup, not a silent
// no-op discovered mid-run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the project root when no explicit
// config path is given.
const DefaultFileName = "tact.yaml"

// Config is the full tool configuration.
type Config struct {
	// SafeMode gates destructive commands behind confirmation.
	// Defaults to on; turning it off is an explicit act.
	SafeMode *bool `yaml:"safe_mode"`

	// StepMode pauses between steps until the user continues.
	StepMode bool `yaml:"step_mode"`

	// ProjectRoot is the working directory for shell commands and the
	// parent of the run artifact directory. Defaults to the current
	// directory.
	ProjectRoot string `yaml:"project_root"`

	Backends   Backends   `yaml:"backends"`
	Translator Translator `yaml:"translator"`
	Debug      bool       `yaml:"debug"`
}

// Backends locate the lane executables.
type Backends struct {
	// BrowserCLI is kept for display and normalization of plans that
	// are saved to disk; live browser steps run in-process.
	BrowserCLI string `yaml:"browser_cli"`
	// DesktopCTL is the desktop controller invocation, interpreter
	// included for script backends.
	DesktopCTL string `yaml:"desktop_ctl"`
	// Headless runs the browser without a visible window.
	Headless bool `yaml:"headless"`
}

// Translator selects and authenticates the model.
type Translator struct {
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
}

// APIKey resolves the key from the configured environment variable.
// The key itself never lives in the config file.
func (t Translator) APIKey() string {
	if t.APIKeyEnv == "" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv(t.APIKeyEnv)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	on := true
	return &Config{
		SafeMode:    &on,
		ProjectRoot: ".",
		Translator: Translator{
			Model: "gpt-4o-mini",
		},
	}
}

// Load reads the config at path. An empty path falls back to
// DefaultFileName in the current directory; a missing default file
// yields Default() rather than an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes config bytes with unknown keys rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	abs, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	cfg.ProjectRoot = abs
	return cfg, nil
}

// SafeModeOn reports the effective safe-mode setting.
func (c *Config) SafeModeOn() bool {
	return c.SafeMode == nil || *c.SafeMode
}
