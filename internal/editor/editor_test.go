package editor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ajramos/formsmith/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestAddField_NamesStayUnique(t *testing.T) {
	theme := schema.Default()

	once := AddField(theme)
	twice := AddField(once)

	require.Len(t, twice.Fields, 5)
	assert.Equal(t, "field4", twice.Fields[3].Name)
	assert.Equal(t, "field5", twice.Fields[4].Name)
	assert.Len(t, theme.Fields, 3, "input must not change")

	added := twice.Fields[4]
	assert.Equal(t, NewFieldLabel, added.Label)
	assert.Equal(t, schema.FieldText, added.Type)
	assert.False(t, added.Required)
	assert.True(t, added.Visible)
}

func TestAddField_SkipsTakenNames(t *testing.T) {
	theme := schema.Default()
	theme.Fields = []schema.FieldDefinition{{Name: "a"}, {Name: "field3"}}

	out := AddField(theme)

	assert.Equal(t, "field4", out.Fields[2].Name)
}

func TestRemoveField(t *testing.T) {
	theme := schema.Default()

	out, err := RemoveField(theme, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "message"}, names(out))
	assert.Equal(t, []string{"name", "email", "message"}, names(theme))

	_, err = RemoveField(theme, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = RemoveField(theme, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.EqualError(t, err, "remove fields[-1]: field index out of range")
}

func TestRemoveField_UntilEmptyThenValidate(t *testing.T) {
	theme := schema.Default()
	var err error
	for len(theme.Fields) > 0 {
		theme, err = RemoveField(theme, 0)
		require.NoError(t, err)
	}

	assert.Empty(t, theme.Fields)
	assert.Equal(t, []string{"name", "email", "message"}, names(schema.Validate(theme)))
}

func TestMoveField(t *testing.T) {
	theme := schema.Default()

	t.Run("first field up is a no-op", func(t *testing.T) {
		out, err := MoveField(theme, 0, Up)
		require.NoError(t, err)
		assert.Equal(t, theme, out)
	})

	t.Run("last field down is a no-op", func(t *testing.T) {
		out, err := MoveField(theme, 2, Down)
		require.NoError(t, err)
		assert.Equal(t, theme, out)
	})

	t.Run("swaps with neighbor", func(t *testing.T) {
		out, err := MoveField(theme, 2, Up)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "message", "email"}, names(out))

		out, err = MoveField(theme, 0, Down)
		require.NoError(t, err)
		assert.Equal(t, []string{"email", "name", "message"}, names(out))
		assert.Equal(t, []string{"name", "email", "message"}, names(theme))
	})

	t.Run("bad index", func(t *testing.T) {
		_, err := MoveField(theme, 7, Up)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		_, err = MoveField(theme, -1, Down)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.EqualError(t, err, "move fields[-1]: field index out of range")
	})

	t.Run("unknown direction", func(t *testing.T) {
		out, err := MoveField(theme, 1, Direction(7))
		assert.ErrorIs(t, err, ErrInvalidFieldValue)
		assert.NotErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, theme, out)
		assert.Equal(t, "Direction(7)", Direction(7).String())
	})
}

func TestUpdateField(t *testing.T) {
	theme := schema.Default()

	tests := []struct {
		name      string
		attribute string
		value     any
		check     func(t *testing.T, f schema.FieldDefinition)
		wantErr   error
	}{
		{name: "label", attribute: AttrLabel, value: "Full name",
			check: func(t *testing.T, f schema.FieldDefinition) { assert.Equal(t, "Full name", f.Label) }},
		{name: "rename", attribute: AttrName, value: "fullName",
			check: func(t *testing.T, f schema.FieldDefinition) { assert.Equal(t, "fullName", f.Name) }},
		{name: "rename to itself", attribute: AttrName, value: "name",
			check: func(t *testing.T, f schema.FieldDefinition) { assert.Equal(t, "name", f.Name) }},
		{name: "type from string", attribute: AttrType, value: "checkbox",
			check: func(t *testing.T, f schema.FieldDefinition) { assert.Equal(t, schema.FieldCheckbox, f.Type) }},
		{name: "type from FieldType", attribute: AttrType, value: schema.FieldDropdown,
			check: func(t *testing.T, f schema.FieldDefinition) { assert.Equal(t, schema.FieldDropdown, f.Type) }},
		{name: "required", attribute: AttrRequired, value: false,
			check: func(t *testing.T, f schema.FieldDefinition) { assert.False(t, f.Required) }},
		{name: "visible", attribute: AttrVisible, value: false,
			check: func(t *testing.T, f schema.FieldDefinition) { assert.False(t, f.Visible) }},
		{name: "options from json", attribute: AttrOptions, value: []any{"A", "B"},
			check: func(t *testing.T, f schema.FieldDefinition) { assert.Equal(t, []string{"A", "B"}, f.Options) }},

		{name: "unknown type", attribute: AttrType, value: "radio", wantErr: ErrInvalidFieldValue},
		{name: "required not bool", attribute: AttrRequired, value: "yes", wantErr: ErrInvalidFieldValue},
		{name: "label not string", attribute: AttrLabel, value: 3, wantErr: ErrInvalidFieldValue},
		{name: "empty name", attribute: AttrName, value: "  ", wantErr: ErrInvalidFieldValue},
		{name: "duplicate name", attribute: AttrName, value: "email", wantErr: ErrDuplicateFieldName},
		{name: "unknown attribute", attribute: "placeholder", value: "x", wantErr: ErrInvalidFieldValue},
		{name: "options with numbers", attribute: AttrOptions, value: []any{"A", 2}, wantErr: ErrInvalidFieldValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := UpdateField(theme, 0, tt.attribute, tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, theme, out)
				return
			}
			require.NoError(t, err)
			tt.check(t, out.Fields[0])
		})
	}

	assert.Equal(t, schema.Default(), theme, "input must not change")
}

func TestUpdateField_DuplicateIsInvalidValue(t *testing.T) {
	_, err := UpdateField(schema.Default(), 0, AttrName, "email")

	assert.ErrorIs(t, err, ErrInvalidFieldValue)

	var editErr *Error
	require.True(t, errors.As(err, &editErr))
	assert.Equal(t, "update", editErr.Op)
	assert.Equal(t, 0, editErr.Index)
	assert.Equal(t, AttrName, editErr.Attribute)
}

func TestUpdateField_BadIndex(t *testing.T) {
	_, err := UpdateField(schema.Default(), 5, AttrLabel, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSetAttribute(t *testing.T) {
	theme := schema.Default()

	out, err := SetAttribute(theme, "shape", "pill")
	require.NoError(t, err)
	assert.Equal(t, schema.ShapePill, out.Shape)

	out, err = SetAttribute(out, "shadow", schema.ShadowNone)
	require.NoError(t, err)
	assert.Equal(t, schema.ShadowNone, out.Shadow)

	out, err = SetAttribute(out, "buttonFontSize", 24.0)
	require.NoError(t, err)
	assert.Equal(t, 24, *out.ButtonFontSize)

	out, err = SetAttribute(out, "cardPadding", json.Number("0"))
	require.NoError(t, err)
	assert.Equal(t, 0, *out.CardPadding)

	out, err = SetAttribute(out, "headerFontSize", "")
	require.NoError(t, err)
	assert.Nil(t, out.HeaderFontSize)

	out, err = SetAttribute(out, "showFooter", false)
	require.NoError(t, err)
	assert.False(t, out.ShowFooter)

	out, err = SetAttribute(out, "customCss", ".x{}")
	require.NoError(t, err)
	assert.Equal(t, ".x{}", out.CustomCSS)

	assert.Equal(t, schema.Default(), theme)
}

func TestSetAttribute_Rejects(t *testing.T) {
	tests := []struct {
		attribute string
		value     any
	}{
		{"shape", "hexagon"},
		{"color", "neon"},
		{"font", "Comic Sans"},
		{"buttonFontSize", "big"},
		{"buttonFontSize", 12.5},
		{"showFooter", "yes"},
		{"cardBg", 12},
		{"logo", "http://example.com/logo.png"},
		{"unknown", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.attribute, func(t *testing.T) {
			_, err := SetAttribute(schema.Default(), tt.attribute, tt.value)
			assert.ErrorIs(t, err, ErrInvalidFieldValue)
		})
	}
}

func TestSetAttribute_ColorChangeClearsSchemeEchoes(t *testing.T) {
	theme := schema.Default()
	theme.CardBg = "#123456"
	theme.InputBg = "#FFF"         // what light derives
	theme.InputBorder = "#abcdef"  // operator's own pick
	theme.HeaderColor = "#76abae"  // what light derives for headers
	theme.ButtonTextColor = "#000" // not scheme dependent

	out, err := SetAttribute(theme, "color", "dark")
	require.NoError(t, err)

	assert.Equal(t, schema.SchemeDark, out.Color)
	assert.Empty(t, out.CardBg)
	assert.Empty(t, out.InputBg)
	assert.Empty(t, out.HeaderColor)
	assert.Equal(t, "#abcdef", out.InputBorder)
	assert.Equal(t, "#000", out.ButtonTextColor)
}

func TestSetAttribute_SameColorKeepsOverrides(t *testing.T) {
	theme := schema.Default()
	theme.CardBg = "#123456"

	out, err := SetAttribute(theme, "color", "light")
	require.NoError(t, err)
	assert.Equal(t, "#123456", out.CardBg)
}

func TestReset(t *testing.T) {
	assert.Equal(t, schema.Default(), Reset())
}

func TestAttributes(t *testing.T) {
	attrs := Attributes()
	assert.Contains(t, attrs, "accentColor")
	assert.Contains(t, attrs, "showFooter")
	assert.NotContains(t, attrs, "fields")
}

func TestParseAttribute(t *testing.T) {
	theme := schema.Default()

	v, err := ParseAttribute("headerFontSize", " 30 ")
	require.NoError(t, err)
	out, err := SetAttribute(theme, "headerFontSize", v)
	require.NoError(t, err)
	assert.Equal(t, 30, *out.HeaderFontSize)

	v, err = ParseAttribute("headerFontSize", "")
	require.NoError(t, err)
	out, err = SetAttribute(out, "headerFontSize", v)
	require.NoError(t, err)
	assert.Nil(t, out.HeaderFontSize)

	v, err = ParseAttribute("showFooter", "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = ParseAttribute("headerText", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	_, err = ParseAttribute("showFooter", "maybe")
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
	_, err = ParseAttribute("sparkle", "x")
	assert.ErrorIs(t, err, ErrInvalidFieldValue)

	v, err = ParseAttribute("cardPadding", "lots")
	require.NoError(t, err)
	_, err = SetAttribute(theme, "cardPadding", v)
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
}

func TestSetLogo(t *testing.T) {
	out, err := SetLogo(schema.Default(), pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Logo, "data:image/png;base64,"))

	cleared, err := SetLogo(out, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Logo)

	_, err = SetLogo(schema.Default(), []byte("just some text"))
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
}

func TestLoadLogo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	url, err := LoadLogo(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	_, err = LoadLogo(context.Background(), filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadLogo(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func names(theme schema.ThemeConfig) []string {
	out := make([]string, 0, len(theme.Fields))
	for _, f := range theme.Fields {
		out = append(out, f.Name)
	}
	return out
}
