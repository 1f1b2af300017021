package style

import (
	"github.com/ajramos/formsmith/internal/schema"
)

// Fallback values used when a theme leaves an attribute unset or invalid
const (
	DefaultFont           = schema.FontSegoeUI
	DefaultHeaderFontSize = 22
	DefaultInputFontSize  = 15
	DefaultButtonFontSize = 16
	DefaultCardPadding    = 24
	DefaultHeaderText     = "Contact Us"
	DefaultButtonText     = "Send Message"
	DefaultFooterText     = "Made with love by Formsmith"

	// FixedLabelColor colors labels and header outside the accent scheme
	FixedLabelColor        = schema.DefaultAccentColor
	DefaultButtonTextColor = "#fff"
	DefaultButtonBorder    = "none"

	LabelFontSize    = 14
	LabelFontWeight  = 600
	ButtonFontWeight = 700
	HeaderFontWeight = 700
	InputPadding     = "10px 12px"
	ButtonPadding    = "12px 0"

	buttonRestShadow      = "0 2px 8px rgba(34,40,49,0.08)"
	buttonHoverShadowDark = "0 4px 24px rgba(90, 90, 90, 0.32)"
	buttonHoverShadow     = "0 4px 24px rgba(61, 61, 61, 0.8)"
)

// CardStyle is the form container
type CardStyle struct {
	Background  string
	Text        string
	BorderColor string
	Padding     int
}

// HeaderStyle is the form title
type HeaderStyle struct {
	Text       string
	Color      string
	FontSize   int
	FontWeight int
}

// LabelStyle applies to every field label
type LabelStyle struct {
	Color         string
	RequiredColor string
	FontSize      int
	FontWeight    int
}

// InputStyle applies to every input control
type InputStyle struct {
	Background  string
	Text        string
	BorderColor string
	FontSize    int
	Padding     string
}

// ButtonStyle is the submit button
type ButtonStyle struct {
	Text        string
	Background  string
	TextColor   string
	Border      string
	FontSize    int
	FontWeight  int
	Padding     string
	Shadow      string
	HoverShadow string
}

// FooterStyle is the optional credit line under the form
type FooterStyle struct {
	Show bool
	Text string
}

// ResolvedStyle is the render-ready style of a theme. Every attribute holds a
// concrete value.
type ResolvedStyle struct {
	Scheme schema.ColorScheme
	Font   string
	Radius int
	Shadow string
	Accent string

	Card   CardStyle
	Header HeaderStyle
	Label  LabelStyle
	Input  InputStyle
	Button ButtonStyle
	Footer FooterStyle

	Logo      string
	CustomCSS string

	// Fallbacks names the attributes whose configured value was invalid or
	// out of range and was replaced
	Fallbacks []string
}

// resolution carries the state shared by the pipeline stages
type resolution struct {
	theme   schema.ThemeConfig
	palette Palette
	out     ResolvedStyle
}

type stage func(*resolution)

// pipeline runs in dependency order: every stage only reads what earlier stages produced
var pipeline = []stage{
	normalizeEnums,
	resolveTypography,
	resolveAccent,
	resolvePalette,
	resolveIndependentOverrides,
	resolveAccentDependents,
	resolveGeometry,
	resolveContent,
}

// Resolve derives the fully resolved style of theme. It is pure and never fails.
func Resolve(theme schema.ThemeConfig) ResolvedStyle {
	r := &resolution{theme: theme}
	for _, run := range pipeline {
		run(r)
	}
	return r.out
}

func (r *resolution) fallback(attr string) {
	r.out.Fallbacks = append(r.out.Fallbacks, attr)
}

func normalizeEnums(r *resolution) {
	r.out.Scheme = r.theme.Color
	if !r.out.Scheme.Valid() {
		r.out.Scheme = schema.SchemeLight
		if r.theme.Color != "" {
			r.fallback("color")
		}
	}

	r.out.Font = r.theme.Font
	if !schema.ValidFont(r.out.Font) {
		r.out.Font = DefaultFont
		if r.theme.Font != "" {
			r.fallback("font")
		}
	}

	if r.theme.Shape != "" && !r.theme.Shape.Valid() {
		r.fallback("shape")
	}
	if r.theme.Shadow != "" && !r.theme.Shadow.Valid() {
		r.fallback("shadow")
	}
}

func resolveTypography(r *resolution) {
	r.out.Header.FontSize = r.size("headerFontSize", r.theme.HeaderFontSize, DefaultHeaderFontSize, schema.HeaderFontSizeRange)
	r.out.Input.FontSize = r.size("inputFontSize", r.theme.InputFontSize, DefaultInputFontSize, schema.InputFontSizeRange)
	r.out.Button.FontSize = r.size("buttonFontSize", r.theme.ButtonFontSize, DefaultButtonFontSize, schema.ButtonFontSizeRange)
	r.out.Card.Padding = r.size("cardPadding", r.theme.CardPadding, DefaultCardPadding, schema.CardPaddingRange)

	r.out.Header.FontWeight = HeaderFontWeight
	r.out.Label.FontSize = LabelFontSize
	r.out.Label.FontWeight = LabelFontWeight
	r.out.Button.FontWeight = ButtonFontWeight
	r.out.Input.Padding = InputPadding
	r.out.Button.Padding = ButtonPadding
}

func (r *resolution) size(attr string, v *int, def int, rng schema.Range) int {
	if v == nil {
		return def
	}
	clamped := rng.Clamp(*v)
	if clamped != *v {
		r.fallback(attr)
	}
	return clamped
}

func resolveAccent(r *resolution) {
	r.out.Accent = pick(r.theme.AccentColor, schema.DefaultAccentColor)
}

func resolvePalette(r *resolution) {
	r.palette = PaletteFor(r.out.Scheme, r.out.Accent)
}

func resolveIndependentOverrides(r *resolution) {
	p := r.palette
	r.out.Card.Background = pick(r.theme.CardBg, p.Background)
	r.out.Card.Text = pick(r.theme.TextColor, p.Text)
	r.out.Card.BorderColor = pick(r.theme.CardBorder, p.Border)
	r.out.Input.Background = pick(r.theme.InputBg, p.InputBg)
	r.out.Input.Text = pick(r.theme.InputTextColor, p.InputText)
	r.out.Input.BorderColor = pick(r.theme.InputBorder, p.Border)
}

func resolveAccentDependents(r *resolution) {
	labelDefault := FixedLabelColor
	if r.out.Scheme == schema.SchemeAccent {
		labelDefault = r.out.Accent
	}
	r.out.Label.Color = pick(r.theme.InputLabelColor, labelDefault)
	r.out.Label.RequiredColor = r.out.Accent
	r.out.Header.Color = pick(r.theme.HeaderColor, labelDefault)

	r.out.Button.Background = r.out.Accent
	r.out.Button.TextColor = pick(r.theme.ButtonTextColor, DefaultButtonTextColor)
	r.out.Button.Border = pick(r.theme.ButtonBorder, DefaultButtonBorder)
}

func resolveGeometry(r *resolution) {
	r.out.Radius = RadiusFor(r.theme.Shape)
	r.out.Shadow = ShadowFor(r.theme.Shadow)

	r.out.Button.Shadow = buttonRestShadow
	r.out.Button.HoverShadow = buttonHoverShadow
	if r.out.Scheme == schema.SchemeDark {
		r.out.Button.HoverShadow = buttonHoverShadowDark
	}
}

func resolveContent(r *resolution) {
	r.out.Header.Text = pick(r.theme.HeaderText, DefaultHeaderText)
	r.out.Button.Text = pick(r.theme.ButtonText, DefaultButtonText)
	r.out.Footer.Show = r.theme.ShowFooter
	r.out.Footer.Text = pick(r.theme.FooterText, DefaultFooterText)
	r.out.Logo = r.theme.Logo
	r.out.CustomCSS = r.theme.CustomCSS
}

func pick(explicit, derived string) string {
	if explicit != "" {
		return explicit
	}
	return derived
}

// Derived returns the value every scheme-dependent override would take if it
// were unset, keyed by its JSON attribute name.
func Derived(theme schema.ThemeConfig) map[string]string {
	unset := theme
	unset.CardBg = ""
	unset.CardBorder = ""
	unset.InputBg = ""
	unset.InputBorder = ""
	unset.InputLabelColor = ""
	unset.HeaderColor = ""
	unset.TextColor = ""
	unset.InputTextColor = ""

	s := Resolve(unset)
	return map[string]string{
		"cardBg":          s.Card.Background,
		"cardBorder":      s.Card.BorderColor,
		"inputBg":         s.Input.Background,
		"inputBorder":     s.Input.BorderColor,
		"inputLabelColor": s.Label.Color,
		"headerColor":     s.Header.Color,
		"text":            s.Card.Text,
		"inputText":       s.Input.Text,
	}
}
