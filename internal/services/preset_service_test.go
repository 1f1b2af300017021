package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajramos/formsmith/internal/schema"
)

func newTestPresetService(t *testing.T) (*PresetServiceImpl, string, string) {
	t.Helper()
	tmp := t.TempDir()
	builtin := filepath.Join(tmp, "builtin")
	custom := filepath.Join(tmp, "custom")
	require.NoError(t, os.MkdirAll(builtin, 0o755))

	svc := NewPresetService(builtin, custom)
	userDir := filepath.Join(tmp, "user")
	svc.userDir = func() (string, error) { return userDir, nil }
	return svc, builtin, custom
}

func TestPresetService_ListAndPriority(t *testing.T) {
	ctx := context.Background()
	svc, builtin, _ := newTestPresetService(t)

	dark := schema.Default()
	dark.Color = schema.SchemeDark
	require.NoError(t, schema.NewThemeLoader(builtin).SaveThemeToFile(dark, "midnight.yaml"))
	require.NoError(t, schema.NewThemeLoader(builtin).SaveThemeToFile(schema.Default(), "plain.yaml"))

	// a custom preset with the same name shadows the built-in one
	custom := schema.Default()
	custom.Color = schema.SchemeAccent
	require.NoError(t, svc.SavePreset(ctx, "midnight", custom))

	names, err := svc.ListPresets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"midnight", "plain"}, names)

	loaded, err := svc.LoadPreset(ctx, "midnight")
	require.NoError(t, err)
	assert.Equal(t, schema.SchemeAccent, loaded.Color)
}

func TestPresetService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, builtin, _ := newTestPresetService(t)

	_, err := svc.LoadPreset(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.LoadPreset(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, svc.SavePreset(ctx, "", schema.Default()), ErrInvalidInput)

	require.NoError(t, os.WriteFile(filepath.Join(builtin, "broken.yaml"), []byte("other: 1\n"), 0o644))
	_, err = svc.LoadPreset(ctx, "broken")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPresetService_SaveWithoutCustomDirUsesUserDir(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestPresetService(t)
	svc.customDir = ""

	require.NoError(t, svc.SavePreset(ctx, "mine", schema.Default()))

	dir, err := svc.userDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "mine.yaml"))
}
