package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timvw/pane-send/internal/dispatch"
	"github.com/timvw/pane-send/internal/model"
)

var envKeys = []string{
	"PANE_SEND_TARGET", "PANE_SEND_FINAL_KEY", "PANE_SEND_APPEND_NEWLINE",
	"PANE_SEND_CONFIRM", "PANE_SEND_REMEMBER_TARGET", "PANE_SEND_MODE",
	"PANE_SEND_THEME", "PANE_SEND_LOG_LEVEL",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
}

// isolate runs the test in an empty directory with an empty HOME and no
// PANE_SEND_* variables, so no real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return dir
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, dispatch.ModeLineByLine, cfg.Mode)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "Enter", cfg.FinalKeys())
	assert.True(t, cfg.Remember())
	assert.False(t, cfg.ConfirmBeforeSend)
	_, ok := cfg.DefaultTarget()
	assert.False(t, ok)
}

func TestLoad_NoConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, "Enter", cfg.FinalKeys())
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	content := `session: dev
window: "1"
pane: "0"
final_key: "Enter, Space"
confirm_before_send: true
remember_target: false
send_mode: paste
theme: light
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pane-send.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".pane-send.yaml", cfg.ConfigFile)
	target, ok := cfg.DefaultTarget()
	require.True(t, ok)
	assert.Equal(t, model.Target{Session: "dev", Window: "1", Pane: "0"}, target)
	assert.Equal(t, "Enter, Space", cfg.FinalKeys())
	assert.True(t, cfg.ConfirmBeforeSend)
	assert.False(t, cfg.Remember())
	assert.Equal(t, dispatch.ModePaste, cfg.Mode)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadFromHomeConfig(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, ".config", "pane-send")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("session: home\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfgDir, "config.yaml"), cfg.ConfigFile)
	assert.Equal(t, "home", cfg.Session)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	content := "session: dev\nwindow: \"1\"\nfinal_key: Space\nsend_mode: paste\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pane-send.yaml"), []byte(content), 0o644))

	t.Setenv("PANE_SEND_TARGET", "prod:3.2")
	t.Setenv("PANE_SEND_FINAL_KEY", "none")
	t.Setenv("PANE_SEND_MODE", "line-by-line")
	t.Setenv("PANE_SEND_CONFIRM", "true")

	cfg, err := Load()
	require.NoError(t, err)

	target, _ := cfg.DefaultTarget()
	assert.Equal(t, model.Target{Session: "prod", Window: "3", Pane: "2"}, target)
	assert.Equal(t, "", cfg.FinalKeys())
	assert.Equal(t, dispatch.ModeLineByLine, cfg.Mode)
	assert.True(t, cfg.ConfirmBeforeSend)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pane-send.yaml"), []byte("session: [oops"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidSendMode(t *testing.T) {
	isolate(t)
	t.Setenv("PANE_SEND_MODE", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDefaultTarget(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pane-send.yaml"), []byte("session: \"a:b\"\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestFinalKeysPrecedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"nothing set", Config{}, "Enter"},
		{"explicit key", Config{FinalKey: strPtr("Space")}, "Space"},
		{"explicit key beats legacy", Config{FinalKey: strPtr("C-m"), AppendNewline: boolPtr(false)}, "C-m"},
		{"empty key falls back to legacy false", Config{FinalKey: strPtr(""), AppendNewline: boolPtr(false)}, ""},
		{"legacy true", Config{AppendNewline: boolPtr(true)}, "Enter"},
		{"legacy false", Config{AppendNewline: boolPtr(false)}, ""},
		{"none disables", Config{FinalKey: strPtr("None"), AppendNewline: boolPtr(true)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.FinalKeys())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&Config{}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "INFO"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
}
