package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Manager provides centralized configuration management with validation and watching
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	watchers []func(*Config)
	logger   zerolog.Logger

	// File watching
	configPath   string
	watchCancel  context.CancelFunc
	watchDone    chan struct{}
	watchRunning bool
}

// NewManager creates a new configuration manager
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		config: DefaultConfig(),
		logger: logger,
	}
}

// LoadFromFile loads and validates configuration. The current configuration
// is kept when the new one is invalid.
func (m *Manager) LoadFromFile(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	m.configPath = expandPath(configPath)
	watchers := append(([]func(*Config))(nil), m.watchers...)
	m.mu.Unlock()

	notify(watchers, cfg)
	return nil
}

// GetConfig returns a copy of the current configuration
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyConfig(m.config)
}

// ConfigPath returns the file the configuration was loaded from
func (m *Manager) ConfigPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

// AddWatcher adds a configuration change watcher
func (m *Manager) AddWatcher(watcher func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, watcher)
}

// Watch reloads the configuration file whenever it changes on disk, until
// ctx is done or StopWatching is called.
func (m *Manager) Watch(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.configPath == "" {
		return fmt.Errorf("no config file path set")
	}
	if m.watchRunning {
		return fmt.Errorf("already watching configuration file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchDone = make(chan struct{})
	m.watchRunning = true

	go m.watchConfigFile(watchCtx, watcher, m.configPath, m.watchDone)
	return nil
}

// StopWatching stops watching the configuration file and waits for the
// watcher to exit
func (m *Manager) StopWatching() {
	m.mu.Lock()
	cancel, done := m.watchCancel, m.watchDone
	m.watchCancel = nil
	m.watchDone = nil
	m.watchRunning = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Manager) watchConfigFile(ctx context.Context, watcher *fsnotify.Watcher, path string, done chan struct{}) {
	defer close(done)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := m.LoadFromFile(path); err != nil {
				m.logger.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous")
				continue
			}
			m.logger.Info().Str("path", path).Msg("config reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func notify(watchers []func(*Config), cfg *Config) {
	for _, watcher := range watchers {
		watcher(copyConfig(cfg))
	}
}

// copyConfig creates a deep copy of the configuration
func copyConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	c := *cfg
	c.Server.Tokens = append([]TokenEntry(nil), cfg.Server.Tokens...)
	return &c
}
