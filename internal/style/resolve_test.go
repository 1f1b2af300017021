package style

import (
	"strings"
	"testing"

	"github.com/ajramos/formsmith/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Deterministic(t *testing.T) {
	themes := []schema.ThemeConfig{
		schema.Default(),
		{},
		func() schema.ThemeConfig {
			th := schema.Default()
			th.Color = schema.SchemeAccent
			th.Shape = "blob"
			th.ButtonFontSize = schema.Int(100)
			th.CustomCSS = ".x{}"
			return th
		}(),
	}

	for _, theme := range themes {
		assert.Equal(t, Resolve(theme), Resolve(theme))
	}
}

func TestResolve_OverridePrecedence(t *testing.T) {
	for _, scheme := range schema.Schemes {
		t.Run(string(scheme), func(t *testing.T) {
			theme := schema.Default()
			theme.Color = scheme
			theme.CardBg = "#123456"

			assert.Equal(t, "#123456", Resolve(theme).Card.Background)
		})
	}
}

func TestResolve_SchemeDefaults(t *testing.T) {
	tests := []struct {
		scheme     schema.ColorScheme
		background string
		text       string
		inputBg    string
		inputText  string
		border     string
	}{
		{schema.SchemeLight, "#fff", "#222", "#fff", "#222", "#31363F"},
		{schema.SchemeDark, "#23272f", "#fff", "#2c313a", "#fff", "#444"},
		{schema.SchemeAccent, "#76ABAE", "#fff", "#fff", "#222", "#76ABAE"},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			theme := schema.Default()
			theme.Color = tt.scheme

			s := Resolve(theme)
			assert.Equal(t, tt.background, s.Card.Background)
			assert.Equal(t, tt.text, s.Card.Text)
			assert.Equal(t, tt.inputBg, s.Input.Background)
			assert.Equal(t, tt.inputText, s.Input.Text)
			assert.Equal(t, tt.border, s.Input.BorderColor)
			assert.Equal(t, tt.border, s.Card.BorderColor)
		})
	}
}

func TestResolve_DarkSchemeCardBackground(t *testing.T) {
	theme := schema.Default()
	theme.Color = schema.SchemeDark
	theme.CardBg = ""

	assert.Equal(t, "#23272f", Resolve(theme).Card.Background)
}

func TestResolve_AccentScenario(t *testing.T) {
	theme := schema.Default()
	theme.Color = schema.SchemeAccent
	theme.AccentColor = "#FF0000"

	s := Resolve(theme)

	assert.Equal(t, "#FF0000", s.Card.Background)
	assert.Equal(t, "#FF0000", s.Label.Color)
	assert.Equal(t, "#fff", s.Input.Background)
	assert.Equal(t, "#FF0000", s.Header.Color)
	assert.Equal(t, "#FF0000", s.Button.Background)
	assert.Equal(t, "#FF0000", s.Card.BorderColor)
}

func TestResolve_LabelColorOutsideAccentScheme(t *testing.T) {
	theme := schema.Default()
	theme.Color = schema.SchemeDark
	theme.AccentColor = "#FF0000"

	s := Resolve(theme)

	assert.Equal(t, FixedLabelColor, s.Label.Color)
	assert.Equal(t, FixedLabelColor, s.Header.Color)
	assert.Equal(t, "#FF0000", s.Button.Background)
}

func TestResolve_ExplicitDependentOverridesWin(t *testing.T) {
	theme := schema.Default()
	theme.Color = schema.SchemeAccent
	theme.InputLabelColor = "#010101"
	theme.HeaderColor = "#020202"
	theme.ButtonTextColor = "#030303"
	theme.ButtonBorder = "2px solid #6a82fb"

	s := Resolve(theme)

	assert.Equal(t, "#010101", s.Label.Color)
	assert.Equal(t, "#020202", s.Header.Color)
	assert.Equal(t, "#030303", s.Button.TextColor)
	assert.Equal(t, "2px solid #6a82fb", s.Button.Border)
}

func TestResolve_Geometry(t *testing.T) {
	tests := []struct {
		shape  schema.Shape
		radius int
	}{
		{schema.ShapeSquare, 0},
		{schema.ShapeRounded, 16},
		{schema.ShapePill, 999},
		{"triangle", 16},
		{"", 16},
	}
	for _, tt := range tests {
		theme := schema.Default()
		theme.Shape = tt.shape
		assert.Equal(t, tt.radius, Resolve(theme).Radius, tt.shape)
	}

	theme := schema.Default()
	theme.Shadow = schema.ShadowNone
	assert.Equal(t, "none", Resolve(theme).Shadow)
	theme.Shadow = "glow"
	assert.Equal(t, ShadowFor(schema.ShadowOuter), Resolve(theme).Shadow)
}

func TestResolve_InvalidEnumsFallBackSilently(t *testing.T) {
	theme := schema.Default()
	theme.Color = "neon"
	theme.Font = "Comic Sans"
	theme.Shape = "blob"
	theme.Shadow = "glow"

	s := Resolve(theme)

	assert.Equal(t, schema.SchemeLight, s.Scheme)
	assert.Equal(t, DefaultFont, s.Font)
	assert.Equal(t, "#fff", s.Card.Background)
	assert.ElementsMatch(t, []string{"color", "font", "shape", "shadow"}, s.Fallbacks)
}

func TestResolve_Typography(t *testing.T) {
	t.Run("absent values use constants", func(t *testing.T) {
		s := Resolve(schema.ThemeConfig{})
		assert.Equal(t, DefaultHeaderFontSize, s.Header.FontSize)
		assert.Equal(t, DefaultInputFontSize, s.Input.FontSize)
		assert.Equal(t, DefaultButtonFontSize, s.Button.FontSize)
		assert.Equal(t, DefaultCardPadding, s.Card.Padding)
		assert.Equal(t, DefaultHeaderText, s.Header.Text)
		assert.Equal(t, DefaultButtonText, s.Button.Text)
		assert.Empty(t, s.Fallbacks)
	})

	t.Run("explicit values pass through", func(t *testing.T) {
		theme := schema.Default()
		theme.Font = schema.FontRoboto
		theme.CardPadding = schema.Int(0)

		s := Resolve(theme)
		assert.Equal(t, schema.FontRoboto, s.Font)
		assert.Equal(t, 18, s.Button.FontSize)
		assert.Equal(t, 0, s.Card.Padding)
	})

	t.Run("out of range values clamp", func(t *testing.T) {
		theme := schema.Default()
		theme.ButtonFontSize = schema.Int(100)

		s := Resolve(theme)
		assert.Equal(t, 32, s.Button.FontSize)
		assert.Equal(t, []string{"buttonFontSize"}, s.Fallbacks)
	})
}

func TestResolve_DoesNotMutateTheme(t *testing.T) {
	theme := schema.Default()
	theme.ButtonFontSize = schema.Int(100)
	before := theme.Clone()

	_ = Resolve(theme)

	assert.Equal(t, before, theme)
}

func TestResolve_ButtonHoverShadowFollowsScheme(t *testing.T) {
	theme := schema.Default()
	light := Resolve(theme)
	theme.Color = schema.SchemeDark
	dark := Resolve(theme)

	assert.NotEqual(t, light.Button.HoverShadow, dark.Button.HoverShadow)
	assert.Equal(t, light.Button.Shadow, dark.Button.Shadow)
}

func TestDerived(t *testing.T) {
	theme := schema.Default()
	theme.Color = schema.SchemeDark
	theme.CardBg = "#abcdef"

	d := Derived(theme)

	assert.Equal(t, "#23272f", d["cardBg"])
	assert.Equal(t, "#2c313a", d["inputBg"])
	assert.Equal(t, FixedLabelColor, d["inputLabelColor"])
	// explicit value untouched on the input
	assert.Equal(t, "#abcdef", theme.CardBg)
}

func TestCSS_CustomStylesheetComesLast(t *testing.T) {
	theme := schema.Default()
	theme.CustomCSS = ".formsmith-button{background:hotpink}"

	css := Resolve(theme).CSS()

	require.True(t, strings.HasSuffix(strings.TrimSpace(css), theme.CustomCSS))
	assert.Less(t, strings.Index(css, "."+ClassButton+"{"), strings.Index(css, theme.CustomCSS))
	assert.Contains(t, css, "border-radius:16px")
	assert.Contains(t, css, `font-family:"Segoe UI"`)
}

func TestCSS_NoCustomStylesheet(t *testing.T) {
	css := Resolve(schema.Default()).CSS()
	assert.True(t, strings.HasSuffix(css, "."+ClassFooter+`{font-family:"Segoe UI"}`+"\n"))
}
