// Package config loads horn settings from horn.toml or horn.yaml.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Names tried by Discover, in order.
var discoveryNames = []string{"horn.toml", "horn.yaml", "horn.yml"}

type Config struct {
	// Extensions selects the files fmt and check pick up when walking directories.
	Extensions []string `toml:"extensions" yaml:"extensions"`
	// Trace enables parser tracing without --verbose.
	Trace bool  `toml:"trace" yaml:"trace"`
	Lint  Lint  `toml:"lint" yaml:"lint"`
	Store Store `toml:"store" yaml:"store"`
	REPL  REPL  `toml:"repl" yaml:"repl"`

	path string
}

type Lint struct {
	Singletons    bool `toml:"singletons" yaml:"singletons"`
	Discontiguous bool `toml:"discontiguous" yaml:"discontiguous"`
	Heads         bool `toml:"heads" yaml:"heads"`
}

type Store struct {
	Path string `toml:"path" yaml:"path"`
}

type REPL struct {
	Prompt       string `toml:"prompt" yaml:"prompt"`
	HistoryLimit int    `toml:"history_limit" yaml:"history_limit"`
}

// Default returns the settings used when no config file is found.
func Default() Config {
	return Config{
		Extensions: []string{".pl", ".pro"},
		Lint: Lint{
			Singletons:    true,
			Discontiguous: true,
			Heads:         true,
		},
		Store: Store{Path: defaultStorePath()},
		REPL: REPL{
			Prompt:       "?- ",
			HistoryLimit: 200,
		},
	}
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return filepath.Join(".horn", "horn.db")
	}
	return filepath.Join(dir, "horn", "horn.db")
}

// Load reads path over the defaults. The format follows the extension;
// anything other than .yaml or .yml is read as TOML.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse %s", path)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse %s", path)
		}
	}
	if err := cfg.validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	cfg.path = path
	return cfg, nil
}

// Discover loads the first horn config file found in dir. When there is
// none it returns Default and no error.
func Discover(dir string) (Config, error) {
	for _, name := range discoveryNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return Load(candidate)
	}
	return Default(), nil
}

// Path reports the file the config was loaded from, or "" for defaults.
func (c Config) Path() string {
	return c.path
}

// MatchesExtension reports whether name has one of the configured extensions.
func (c Config) MatchesExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range c.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func (c Config) validate() error {
	if len(c.Extensions) == 0 {
		return errors.New("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.REPL.HistoryLimit < 0 {
		return errors.Errorf("repl.history_limit must not be negative, got %d", c.REPL.HistoryLimit)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path must not be empty")
	}
	return nil
}
