// Package config provides reading and writing of exambank configuration.
// Supports both global (~/.exambank/config.yaml) and local (.exambank/config.yaml).
// Reading: local values override global ones.
// Writing: defaults to local, use --global for the user-wide file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Dir is the directory holding exambank state, both in a project and in the
// user's home directory.
const Dir = ".exambank"

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.exambank/config.yaml
	ScopeGlobal Scope = iota
	// ScopeLocal is repository-specific config in .exambank/config.yaml
	ScopeLocal
)

// Author is recorded against every audit log entry.
type Author struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// Render holds terminal rendering options.
type Render struct {
	Style string `yaml:"style,omitempty"`
}

// Limits holds size limit configuration options.
type Limits struct {
	MaxTagLength *int   `yaml:"max_tag_length,omitempty"`
	MaxPayload   *int64 `yaml:"max_payload,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultStyle        = "dark"
	DefaultMaxTagLength = 100
	DefaultMaxPayload   = 1024 * 1024 // 1 MiB
)

// Validation bounds for configuration values.
const (
	MinMaxTagLength = 1
	MaxMaxTagLength = 4096
	MinMaxPayload   = 2 // "{}"
	MaxMaxPayload   = 1024 * 1024 * 1024
)

// Config contains configuration for exambank.
type Config struct {
	Author Author `yaml:"author,omitempty"`
	Render Render `yaml:"render,omitempty"`
	Limits Limits `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Limits.MaxTagLength != nil {
		v := *c.Limits.MaxTagLength
		if v < MinMaxTagLength || v > MaxMaxTagLength {
			return fmt.Errorf("%w: max_tag_length must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxTagLength, MaxMaxTagLength, v)
		}
	}
	if c.Limits.MaxPayload != nil {
		v := *c.Limits.MaxPayload
		if v < MinMaxPayload || v > MaxMaxPayload {
			return fmt.Errorf("%w: max_payload must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxPayload, MaxMaxPayload, v)
		}
	}
	return nil
}

// Style returns the glamour style used to render entities (defaults to dark).
func (c *Config) Style() string {
	if c.Render.Style == "" {
		return DefaultStyle
	}
	return c.Render.Style
}

// MaxTagLength returns the maximum tag length in runes (defaults to 100).
func (c *Config) MaxTagLength() int {
	if c.Limits.MaxTagLength == nil {
		return DefaultMaxTagLength
	}
	return *c.Limits.MaxTagLength
}

// MaxPayload returns the maximum encoded size of one JSON payload in bytes
// (defaults to 1 MiB).
func (c *Config) MaxPayload() int64 {
	if c.Limits.MaxPayload == nil {
		return DefaultMaxPayload
	}
	return *c.Limits.MaxPayload
}

// LocalPath returns the path to the local (repository) config file.
func LocalPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.exambank/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, Dir, "config.yaml")
}

// Load reads the effective configuration: global values overlaid with any
// value set in the local file. To change settings, load a single file with
// LoadScope and save that.
func Load() (*Config, error) {
	global, err := LoadScope(ScopeGlobal)
	if err != nil {
		return nil, err
	}
	local, err := LoadScope(ScopeLocal)
	if err != nil {
		return nil, err
	}
	for _, k := range ValidKeys() {
		if !local.IsSet(k) {
			continue
		}
		v, _ := local.Get(k) // k comes from ValidKeys
		if err := global.Set(k, v); err != nil {
			return nil, err
		}
	}
	return global, nil
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
