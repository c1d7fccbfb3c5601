// Package config loads chainguard's configuration: thresholds, timeouts,
// feature flags, and the schema-file pattern table (spec.md §2 "Config
// & constants"). Precedence is environment variables > config file >
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of the coordination service.
type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Debounce   DebounceConfig   `toml:"debounce"`
	Schema     SchemaConfig     `toml:"schema"`
	HTTP       HTTPConfig       `toml:"http"`
	Validation ValidationConfig `toml:"validation"`
	Checklist  ChecklistConfig  `toml:"checklist"`
	Dispatch   DispatchConfig   `toml:"dispatch"`
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
}

// StorageConfig controls where per-project state lives on disk.
type StorageConfig struct {
	Home       string `toml:"home"` // overridden by $CHAINGUARD_HOME
	ProjectCap int    `toml:"project_cap"`
}

// DebounceConfig controls the coalesced-write window.
type DebounceConfig struct {
	WindowMillis int `toml:"window_millis"`
}

// SchemaConfig controls schema-file detection and the DB-schema freshness TTL.
type SchemaConfig struct {
	CheckTTLSeconds int      `toml:"check_ttl_seconds"`
	Patterns        []string `toml:"patterns"`
}

// HTTPConfig controls the session cache and login detection.
type HTTPConfig struct {
	SessionCap      int      `toml:"session_cap"`
	SessionTTLHours int      `toml:"session_ttl_hours"`
	CSRFFieldNames  []string `toml:"csrf_field_names"`
}

// ValidationConfig controls the syntax validator multiplexer's timeout.
type ValidationConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// ChecklistConfig controls the whitelisted-command checklist runner.
type ChecklistConfig struct {
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Whitelist      []string `toml:"whitelist"`
}

// DispatchConfig controls the scope gate and context-marker preamble.
type DispatchConfig struct {
	ContextMarker string   `toml:"context_marker"`
	AlwaysAllowed []string `toml:"always_allowed"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// ServerConfig is reported back to the agent by the "config" tool.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// SchemaCheckTTL returns the configured TTL as a time.Duration.
func (c *Config) SchemaCheckTTL() time.Duration {
	return time.Duration(c.Schema.CheckTTLSeconds) * time.Second
}

// DebounceWindow returns the configured debounce window as a time.Duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Debounce.WindowMillis) * time.Millisecond
}

// ValidationTimeout returns the syntax-validator subprocess timeout.
func (c *Config) ValidationTimeout() time.Duration {
	return time.Duration(c.Validation.TimeoutSeconds) * time.Second
}

// ChecklistTimeout returns the per-item checklist subprocess timeout.
func (c *Config) ChecklistTimeout() time.Duration {
	return time.Duration(c.Checklist.TimeoutSeconds) * time.Second
}

// SessionTTL returns the HTTP session cache TTL.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.HTTP.SessionTTLHours) * time.Hour
}

// Load builds a Config from defaults, an optional TOML file, and
// environment variables (last wins). configPath, if non-empty, is used
// verbatim; otherwise the usual search order applies.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{
			Home:       filepath.Join(home, ".chainguard"),
			ProjectCap: 20,
		},
		Debounce: DebounceConfig{WindowMillis: 500},
		Schema: SchemaConfig{
			CheckTTLSeconds: 600,
			Patterns: []string{
				"*.sql", "*migration*", "*migrate*", "*schema*", "*database*",
			},
		},
		HTTP: HTTPConfig{
			SessionCap:      50,
			SessionTTLHours: 24,
			CSRFFieldNames:  []string{"_token", "csrf_token", "__RequestVerificationToken", "authenticity_token", "csrfmiddlewaretoken"},
		},
		Validation: ValidationConfig{TimeoutSeconds: 10},
		Checklist: ChecklistConfig{
			TimeoutSeconds: 10,
			Whitelist: []string{
				"test", "grep", "ls", "cat", "head", "wc", "find", "stat",
				"[", "php", "node", "python", "python3", "npm", "composer",
			},
		},
		Dispatch: DispatchConfig{
			ContextMarker: "🔗",
			AlwaysAllowed: []string{
				"set_scope", "projects", "config",
				"kanban_init", "kanban", "kanban_show", "kanban_add",
				"kanban_move", "kanban_detail", "kanban_update",
				"kanban_delete", "kanban_archive", "kanban_history",
			},
		},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Name: "chainguard", Version: "0.1.0"},
	}
}

func (c *Config) loadFile(explicit string) error {
	path := resolveConfigPath(explicit)
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("CHAINGUARD_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("chainguard.toml"); err == nil {
		return "chainguard.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "chainguard", "chainguard.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CHAINGUARD_HOME"); v != "" {
		c.Storage.Home = v
	}
	if v := os.Getenv("CHAINGUARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks structural invariants of the loaded config.
func (c *Config) Validate() error {
	if c.Storage.ProjectCap <= 0 {
		return fmt.Errorf("storage.project_cap must be positive, got %d", c.Storage.ProjectCap)
	}
	if c.Debounce.WindowMillis < 0 {
		return fmt.Errorf("debounce.window_millis must be non-negative")
	}
	if c.Schema.CheckTTLSeconds <= 0 {
		return fmt.Errorf("schema.check_ttl_seconds must be positive")
	}
	return nil
}
