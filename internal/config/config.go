package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables that override file settings,
// e.g. FORMSMITH_SERVER_ADDR
const EnvPrefix = "FORMSMITH"

// Config holds all configuration for Formsmith
type Config struct {
	// Server settings for `formsmith serve`
	Server ServerConfig `mapstructure:"server" json:"server" yaml:"server"`

	// Client settings for `formsmith edit`
	Client ClientConfig `mapstructure:"client" json:"client" yaml:"client"`

	// Database is the SQLite file the server stores themes and submissions in
	Database string `mapstructure:"database" json:"database" yaml:"database" validate:"required"`

	Presets PresetsConfig `mapstructure:"presets" json:"presets" yaml:"presets"`
	Editor  EditorConfig  `mapstructure:"editor" json:"editor" yaml:"editor"`
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required,hostname_port"`

	// Tokens lists the access tokens the server accepts and who they belong to
	Tokens []TokenEntry `mapstructure:"tokens" json:"tokens" yaml:"tokens" validate:"dive"`

	// ScriptURL is where the widget script is hosted, used in embed snippets
	ScriptURL string `mapstructure:"script_url" json:"script_url" yaml:"script_url" validate:"omitempty,url"`

	ShutdownTimeout string `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"omitempty,duration"`
}

// TokenEntry grants an access token to one owner
type TokenEntry struct {
	Token string `mapstructure:"token" json:"token" yaml:"token" validate:"required,min=16"`
	Email string `mapstructure:"email" json:"email" yaml:"email" validate:"required,email"`
}

// TokenMap returns the owner email of every configured token
func (c *ServerConfig) TokenMap() map[string]string {
	out := make(map[string]string, len(c.Tokens))
	for _, t := range c.Tokens {
		out[t.Token] = strings.ToLower(strings.TrimSpace(t.Email))
	}
	return out
}

// ClientConfig points the editor at a server
type ClientConfig struct {
	BaseURL   string `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"required,url"`
	Token     string `mapstructure:"token" json:"token,omitempty" yaml:"token,omitempty"`
	TokenFile string `mapstructure:"token_file" json:"token_file" yaml:"token_file"`
}

// PresetsConfig locates the YAML theme library
type PresetsConfig struct {
	BuiltinDir string `mapstructure:"builtin_dir" json:"builtin_dir" yaml:"builtin_dir"`
	CustomDir  string `mapstructure:"custom_dir" json:"custom_dir" yaml:"custom_dir"`
}

// EditorConfig tunes the terminal editor
type EditorConfig struct {
	// SavedHold is how long "saved" stays in the status bar
	SavedHold    string       `mapstructure:"saved_hold" json:"saved_hold" yaml:"saved_hold" validate:"omitempty,duration"`
	CloseTimeout string       `mapstructure:"close_timeout" json:"close_timeout" yaml:"close_timeout" validate:"omitempty,duration"`
	PreviewWidth int          `mapstructure:"preview_width" json:"preview_width" yaml:"preview_width" validate:"min=24,max=200"`
	Colors       ColorsConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=console json"`
	// File receives the log; empty means stderr
	File string `mapstructure:"file" json:"file" yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: "10s",
		},
		Client: ClientConfig{
			BaseURL:   "http://127.0.0.1:8080",
			TokenFile: DefaultTokenPath(),
		},
		Database: filepath.Join(DefaultDataDir(), "formsmith.db"),
		Presets: PresetsConfig{
			BuiltinDir: "themes",
		},
		Editor: EditorConfig{
			SavedHold:    "1200ms",
			CloseTimeout: "5s",
			PreviewWidth: 44,
			Colors:       DefaultColors(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from configPath, falling back to defaults for
// anything unset. FORMSMITH_* environment variables override the file. A
// missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		configPath = expandPath(configPath)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Database = expandPath(cfg.Database)
	cfg.Client.TokenFile = expandPath(cfg.Client.TokenFile)
	cfg.Log.File = expandPath(cfg.Log.File)
	return cfg, nil
}

// setDefaults registers every key so environment variables can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.script_url", cfg.Server.ScriptURL)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("client.base_url", cfg.Client.BaseURL)
	v.SetDefault("client.token", cfg.Client.Token)
	v.SetDefault("client.token_file", cfg.Client.TokenFile)
	v.SetDefault("database", cfg.Database)
	v.SetDefault("presets.builtin_dir", cfg.Presets.BuiltinDir)
	v.SetDefault("presets.custom_dir", cfg.Presets.CustomDir)
	v.SetDefault("editor.saved_hold", cfg.Editor.SavedHold)
	v.SetDefault("editor.close_timeout", cfg.Editor.CloseTimeout)
	v.SetDefault("editor.preview_width", cfg.Editor.PreviewWidth)
	v.SetDefault("editor.colors.frame.border", string(cfg.Editor.Colors.Frame.BorderColor))
	v.SetDefault("editor.colors.frame.focus", string(cfg.Editor.Colors.Frame.FocusColor))
	v.SetDefault("editor.colors.frame.title", string(cfg.Editor.Colors.Frame.TitleColor))
	v.SetDefault("editor.colors.status.saving", string(cfg.Editor.Colors.Status.SavingColor))
	v.SetDefault("editor.colors.status.saved", string(cfg.Editor.Colors.Status.SavedColor))
	v.SetDefault("editor.colors.status.failed", string(cfg.Editor.Colors.Status.FailedColor))
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	// tokens are secrets
	return os.WriteFile(path, data, 0o600)
}

// GetSavedHold returns the parsed saved-state hold
func (c *EditorConfig) GetSavedHold() time.Duration {
	return parseDuration(c.SavedHold, 1200*time.Millisecond)
}

// GetCloseTimeout bounds the final save when the editor exits
func (c *EditorConfig) GetCloseTimeout() time.Duration {
	return parseDuration(c.CloseTimeout, 5*time.Second)
}

// GetShutdownTimeout bounds graceful server shutdown
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// DefaultConfigDir returns the configuration directory
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "formsmith")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultTokenPath returns where the editor caches its access token
func DefaultTokenPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "token.json")
}

// DefaultDataDir returns the server data directory
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "formsmith")
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
