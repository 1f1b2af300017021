package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ajramos/formsmith/internal/schema"
)

// PresetServiceImpl implements PresetService over up to three directories:
// the custom directory, the user config directory and the built-in one.
// Earlier directories win when names collide.
type PresetServiceImpl struct {
	presetsDir string
	customDir  string
	userDir    func() (string, error)
}

// NewPresetService creates a new preset service
func NewPresetService(presetsDir, customDir string) *PresetServiceImpl {
	return &PresetServiceImpl{
		presetsDir: presetsDir,
		customDir:  customDir,
		userDir:    userConfigPresetsDir,
	}
}

// ListPresets returns every preset name, sorted
func (s *PresetServiceImpl) ListPresets(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range s.dirs() {
		found, err := presetsInDirectory(dir)
		if err != nil {
			return nil, err
		}
		for _, name := range found {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadPreset loads the named preset from the first directory that has it
func (s *PresetServiceImpl) LoadPreset(ctx context.Context, name string) (schema.ThemeConfig, error) {
	if err := checkPresetName(name); err != nil {
		return schema.ThemeConfig{}, err
	}
	for _, dir := range s.dirs() {
		for _, fileName := range []string{name + ".yaml", name + ".yml"} {
			if _, err := os.Stat(filepath.Join(dir, fileName)); err != nil {
				continue
			}
			theme, err := schema.NewThemeLoader(dir).LoadThemeFromFile(fileName)
			if err != nil {
				return schema.ThemeConfig{}, fmt.Errorf("%w: preset '%s': %v", ErrInvalidFormat, name, err)
			}
			return theme, nil
		}
	}
	return schema.ThemeConfig{}, fmt.Errorf("%w: preset '%s'", ErrNotFound, name)
}

// SavePreset writes theme as a preset. Presets go to the custom directory,
// or the user config directory when no custom one is configured.
func (s *PresetServiceImpl) SavePreset(ctx context.Context, name string, theme schema.ThemeConfig) error {
	if err := checkPresetName(name); err != nil {
		return err
	}
	dir := s.customDir
	if dir == "" {
		var err error
		if dir, err = s.userDir(); err != nil {
			return fmt.Errorf("resolve preset directory: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preset directory: %w", err)
	}
	return schema.NewThemeLoader(dir).SaveThemeToFile(theme, name+".yaml")
}

// dirs returns the preset directories in priority order
func (s *PresetServiceImpl) dirs() []string {
	var dirs []string
	if s.customDir != "" {
		dirs = append(dirs, s.customDir)
	}
	if s.userDir != nil {
		if dir, err := s.userDir(); err == nil {
			dirs = append(dirs, dir)
		}
	}
	if s.presetsDir != "" {
		dirs = append(dirs, s.presetsDir)
	}
	return dirs
}

func checkPresetName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: preset name %q", ErrInvalidInput, name)
	}
	return nil
}

// presetsInDirectory lists the preset names in dir. A missing directory has none.
func presetsInDirectory(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return schema.NewThemeLoader(dir).ListAvailableThemes()
}

// userConfigPresetsDir returns the user configuration presets directory
func userConfigPresetsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "formsmith", "themes"), nil
}
