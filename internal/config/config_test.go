package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/derailed/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "0123456789abcdef0123"

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 44, cfg.Editor.PreviewWidth)
	assert.Equal(t, 1200*time.Millisecond, cfg.Editor.GetSavedHold())
	assert.NoError(t, Validate(cfg))
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, DefaultConfig().Editor.Colors, cfg.Editor.Colors)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
server:
  addr: ":9090"
  tokens:
    - token: `+validToken+`
      email: Ana@Example.com
database: /tmp/forms.db
editor:
  saved_hold: 2s
  colors:
    status:
      failed: "#f00"
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, map[string]string{validToken: "ana@example.com"}, cfg.Server.TokenMap())
	assert.Equal(t, "/tmp/forms.db", cfg.Database)
	assert.Equal(t, 2*time.Second, cfg.Editor.GetSavedHold())
	assert.Equal(t, Color("#f00"), cfg.Editor.Colors.Status.FailedColor)
	// unset siblings keep their defaults
	assert.Equal(t, DefaultColors().Status.SavedColor, cfg.Editor.Colors.Status.SavedColor)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server:\n  addr: \":9090\"\n")
	t.Setenv("FORMSMITH_SERVER_ADDR", "localhost:7000")
	t.Setenv("FORMSMITH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server: [unclosed")
	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad addr", func(c *Config) { c.Server.Addr = "nope" }, "Server.Addr"},
		{"short token", func(c *Config) {
			c.Server.Tokens = []TokenEntry{{Token: "short", Email: "a@b.co"}}
		}, "Server.Tokens[0].Token"},
		{"bad email", func(c *Config) {
			c.Server.Tokens = []TokenEntry{{Token: validToken, Email: "not-mail"}}
		}, "Server.Tokens[0].Email"},
		{"bad duration", func(c *Config) { c.Editor.SavedHold = "soon" }, "Editor.SavedHold"},
		{"narrow preview", func(c *Config) { c.Editor.PreviewWidth = 3 }, "Editor.PreviewWidth"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "Log.Level"},
		{"bad base url", func(c *Config) { c.Client.BaseURL = "::" }, "Client.BaseURL"},
		{"no database", func(c *Config) { c.Database = "" }, "Database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Error(t, Validate(nil))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Tokens = []TokenEntry{{Token: validToken, Email: "ana@example.com"}}
	cfg.Editor.PreviewWidth = 60

	require.NoError(t, cfg.SaveConfig(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, loaded.Editor.PreviewWidth)
	assert.Equal(t, cfg.Server.Tokens, loaded.Server.Tokens)
}

func TestDurationFallbacks(t *testing.T) {
	e := EditorConfig{SavedHold: "bogus"}
	assert.Equal(t, 1200*time.Millisecond, e.GetSavedHold())
	assert.Equal(t, 5*time.Second, e.GetCloseTimeout())
	s := ServerConfig{ShutdownTimeout: "3s"}
	assert.Equal(t, 3*time.Second, s.GetShutdownTimeout())
}

func TestColor(t *testing.T) {
	assert.Equal(t, tcell.ColorDefault, DefaultColor.Color())
	assert.Equal(t, tcell.ColorDefault, Color("").Color())
	assert.Equal(t, NewColor("#ffffff").Color(), NewColor("#fff").Color())
	assert.Equal(t, "#76abae", NewColor("#76abae").String())
	assert.Equal(t, "-", DefaultColor.String())
}

func TestDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "formsmith", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(home, ".config", "formsmith", "token.json"), DefaultTokenPath())
	assert.Equal(t, filepath.Join(home, "x"), expandPath("~/x"))
	assert.Equal(t, "/abs", expandPath("/abs"))
}

func TestManager_LoadAndCopy(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server:\n  tokens:\n    - token: "+validToken+"\n      email: a@b.co\n")
	m := NewManager(zerolog.Nop())

	var seen []*Config
	m.AddWatcher(func(c *Config) { seen = append(seen, c) })
	require.NoError(t, m.LoadFromFile(path))
	require.Len(t, seen, 1)

	cfg := m.GetConfig()
	cfg.Server.Tokens[0].Email = "changed@b.co"
	assert.Equal(t, "a@b.co", m.GetConfig().Server.Tokens[0].Email)
	assert.Equal(t, path, m.ConfigPath())
}

func TestManager_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.LoadFromFile(writeConfig(t, dir, "log:\n  level: debug\n")))

	err := m.LoadFromFile(writeConfig(t, dir, "log:\n  level: shouting\n"))
	require.Error(t, err)
	assert.Equal(t, "debug", m.GetConfig().Log.Level)
}

func TestManager_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.LoadFromFile(path))

	reloaded := make(chan string, 8)
	m.AddWatcher(func(c *Config) { reloaded <- c.Log.Level })

	require.NoError(t, m.Watch(context.Background()))
	defer m.StopWatching()
	assert.Error(t, m.Watch(context.Background()), "second watch is refused")

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-reloaded:
			if level == "error" {
				assert.Equal(t, "error", m.GetConfig().Log.Level)
				return
			}
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
}

func TestManager_WatchWithoutFile(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Watch(context.Background()))
	m.StopWatching()
}
