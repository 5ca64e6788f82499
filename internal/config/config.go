// Package config loads pane-send configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (PANE_SEND_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .pane-send.yaml in current directory
//  2. ~/.config/pane-send/config.yaml
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/timvw/pane-send/internal/dispatch"
	"github.com/timvw/pane-send/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultFinalKey is pressed after the text when nothing is configured.
const DefaultFinalKey = "Enter"

// Config holds all pane-send configuration.
type Config struct {
	// Default target. Session empty means no default.
	Session string `yaml:"session"`
	Window  string `yaml:"window"`
	Pane    string `yaml:"pane"`

	// FinalKey is a comma-separated list of tmux key names pressed after
	// the text, e.g. "Enter" or "Enter,Space". Nil means unset.
	FinalKey *string `yaml:"final_key"`
	// AppendNewline is the legacy boolean form of FinalKey.
	AppendNewline *bool `yaml:"append_newline"`

	ConfirmBeforeSend bool   `yaml:"confirm_before_send"`
	RememberTarget    *bool  `yaml:"remember_target"`
	SendMode          string `yaml:"send_mode"` // line-by-line (default), paste

	Theme    string `yaml:"theme"`     // dark (default), light
	LogLevel string `yaml:"log_level"` // debug, info, warn (default), error

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Mode is the parsed SendMode (not from YAML, set after loading).
	Mode dispatch.SendMode `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		SendMode: string(dispatch.ModeLineByLine),
		Mode:     dispatch.ModeLineByLine,
		Theme:    "dark",
		LogLevel: "warn",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	mode, err := dispatch.ParseMode(cfg.SendMode)
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	if t, ok := cfg.DefaultTarget(); ok {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("default target: %w", err)
		}
	}
	return cfg, nil
}

// DefaultTarget returns the configured default target, if a session is set.
func (c *Config) DefaultTarget() (model.Target, bool) {
	if c.Session == "" {
		return model.Target{}, false
	}
	return model.Target{Session: c.Session, Window: c.Window, Pane: c.Pane}, true
}

// FinalKeys resolves the keys pressed after the text. An explicit,
// non-empty final_key wins; otherwise an explicit append_newline maps to
// "Enter" or nothing; otherwise DefaultFinalKey. "none" disables the key.
func (c *Config) FinalKeys() string {
	if c.FinalKey != nil {
		switch v := strings.TrimSpace(*c.FinalKey); strings.ToLower(v) {
		case "none":
			return ""
		case "":
		default:
			return v
		}
	}
	if c.AppendNewline != nil {
		if *c.AppendNewline {
			return DefaultFinalKey
		}
		return ""
	}
	return DefaultFinalKey
}

// Remember reports whether successful targets are added to history.
func (c *Config) Remember() bool {
	return c.RememberTarget == nil || *c.RememberTarget
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".pane-send.yaml"); err == nil {
		return ".pane-send.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "pane-send", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Session != "" {
		cfg.Session = file.Session
		cfg.Window = file.Window
		cfg.Pane = file.Pane
	}
	if file.FinalKey != nil {
		cfg.FinalKey = file.FinalKey
	}
	if file.AppendNewline != nil {
		cfg.AppendNewline = file.AppendNewline
	}
	if file.ConfirmBeforeSend {
		cfg.ConfirmBeforeSend = true
	}
	if file.RememberTarget != nil {
		cfg.RememberTarget = file.RememberTarget
	}
	if file.SendMode != "" {
		cfg.SendMode = file.SendMode
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("PANE_SEND_TARGET"); v != "" {
		if t, err := model.ParseTarget(v); err == nil {
			cfg.Session, cfg.Window, cfg.Pane = t.Session, t.Window, t.Pane
		}
	}
	if v, ok := os.LookupEnv("PANE_SEND_FINAL_KEY"); ok {
		cfg.FinalKey = &v
	}
	if v := os.Getenv("PANE_SEND_APPEND_NEWLINE"); v != "" {
		b := parseBool(v)
		cfg.AppendNewline = &b
	}
	if v := os.Getenv("PANE_SEND_CONFIRM"); v != "" {
		cfg.ConfirmBeforeSend = parseBool(v)
	}
	if v := os.Getenv("PANE_SEND_REMEMBER_TARGET"); v != "" {
		b := parseBool(v)
		cfg.RememberTarget = &b
	}
	if v := os.Getenv("PANE_SEND_MODE"); v != "" {
		cfg.SendMode = v
	}
	if v := os.Getenv("PANE_SEND_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("PANE_SEND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
