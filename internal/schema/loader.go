package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// themeDocument is the on-disk layout of an exported theme
type themeDocument struct {
	Formsmith *ThemeConfig `yaml:"formsmith"`
}

// ThemeLoader imports and exports themes as YAML files
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a loader rooted at themesDir
func NewThemeLoader(themesDir string) *ThemeLoader {
	return &ThemeLoader{
		themesDir: themesDir,
	}
}

// LoadThemeFromFile loads a theme from a YAML file. Relative names are looked
// up in the themes directory first, then used as given.
func (tl *ThemeLoader) LoadThemeFromFile(filename string) (ThemeConfig, error) {
	path := filepath.Join(tl.themesDir, filename)
	if !fileExists(path) {
		path = filename
		if !fileExists(path) {
			return ThemeConfig{}, fmt.Errorf("theme file not found: %s", filename)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ThemeConfig{}, fmt.Errorf("failed to read theme file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a theme document on top of the canonical default
func ParseYAML(data []byte) (ThemeConfig, error) {
	var raw struct {
		Formsmith *yaml.Node `yaml:"formsmith"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ThemeConfig{}, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if raw.Formsmith == nil {
		return ThemeConfig{}, fmt.Errorf("invalid theme file: missing formsmith section")
	}

	theme := Default()
	theme.Fields = nil
	if err := raw.Formsmith.Decode(&theme); err != nil {
		return ThemeConfig{}, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if theme.Fields == nil {
		theme.Fields = DefaultFields()
	}
	return theme, nil
}

// SaveThemeToFile writes theme as YAML into the themes directory
func (tl *ThemeLoader) SaveThemeToFile(theme ThemeConfig, filename string) error {
	if err := os.MkdirAll(tl.themesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}

	data, err := MarshalYAML(theme)
	if err != nil {
		return err
	}

	path := filepath.Join(tl.themesDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	return nil
}

// MarshalYAML encodes theme as a theme document
func MarshalYAML(theme ThemeConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(themeDocument{Formsmith: &theme}); err != nil {
		return nil, fmt.Errorf("failed to marshal theme: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal theme: %w", err)
	}
	return buf.Bytes(), nil
}

// ListAvailableThemes returns the names of the YAML themes in the themes directory
func (tl *ThemeLoader) ListAvailableThemes() ([]string, error) {
	entries, err := os.ReadDir(tl.themesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var themes []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			themes = append(themes, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	return themes, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
