package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Shape controls the corner radius of the card, inputs and button
type Shape string

const (
	ShapeRounded Shape = "rounded"
	ShapeSquare  Shape = "square"
	ShapePill    Shape = "pill"
)

// Shadow selects one of the card shadow presets
type Shadow string

const (
	ShadowOuter  Shadow = "outer"
	ShadowInner  Shadow = "inner"
	ShadowStrong Shadow = "strong"
	ShadowSubtle Shadow = "subtle"
	ShadowNone   Shadow = "none"
)

// ColorScheme selects the base palette
type ColorScheme string

const (
	SchemeLight  ColorScheme = "light"
	SchemeDark   ColorScheme = "dark"
	SchemeAccent ColorScheme = "accent"
)

// Fonts the form can be rendered with
const (
	FontSegoeUI = "Segoe UI"
	FontRoboto  = "Roboto"
	FontArial   = "Arial"
)

var (
	Shapes  = []Shape{ShapeRounded, ShapeSquare, ShapePill}
	Shadows = []Shadow{ShadowOuter, ShadowInner, ShadowStrong, ShadowSubtle, ShadowNone}
	Schemes = []ColorScheme{SchemeLight, SchemeDark, SchemeAccent}
	Fonts   = []string{FontSegoeUI, FontRoboto, FontArial}
)

// Valid reports whether s is a known shape
func (s Shape) Valid() bool {
	for _, v := range Shapes {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known shadow preset
func (s Shadow) Valid() bool {
	for _, v := range Shadows {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether c is a known color scheme
func (c ColorScheme) Valid() bool {
	for _, v := range Schemes {
		if c == v {
			return true
		}
	}
	return false
}

// ValidFont reports whether font is in the allowed font set
func ValidFont(font string) bool {
	for _, v := range Fonts {
		if font == v {
			return true
		}
	}
	return false
}

// DefaultAccentColor is the accent used when accentColor is unset
const DefaultAccentColor = "#76ABAE"

// ThemeConfig is the full persisted configuration of a form's structure and appearance.
//
// String overrides are unset when empty and then derive from the color scheme.
// Numeric attributes are unset when nil.
type ThemeConfig struct {
	Fields []FieldDefinition `json:"fields" yaml:"fields" validate:"min=1,unique=Name,dive"`

	Shape  Shape       `json:"shape" yaml:"shape" validate:"oneof=rounded square pill"`
	Shadow Shadow      `json:"shadow" yaml:"shadow" validate:"oneof=outer inner strong subtle none"`
	Color  ColorScheme `json:"color" yaml:"color" validate:"oneof=light dark accent"`
	Font   string      `json:"font" yaml:"font" validate:"oneof='Segoe UI' Roboto Arial"`

	// Overrides
	AccentColor     string `json:"accentColor,omitempty" yaml:"accentColor,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	CardBg          string `json:"cardBg,omitempty" yaml:"cardBg,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	CardBorder      string `json:"cardBorder,omitempty" yaml:"cardBorder,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	InputBg         string `json:"inputBg,omitempty" yaml:"inputBg,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	InputBorder     string `json:"inputBorder,omitempty" yaml:"inputBorder,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	InputLabelColor string `json:"inputLabelColor,omitempty" yaml:"inputLabelColor,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	HeaderColor     string `json:"headerColor,omitempty" yaml:"headerColor,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	ButtonTextColor string `json:"buttonTextColor,omitempty" yaml:"buttonTextColor,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	ButtonBorder    string `json:"buttonBorder,omitempty" yaml:"buttonBorder,omitempty"`
	TextColor       string `json:"text,omitempty" yaml:"text,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`
	InputTextColor  string `json:"inputText,omitempty" yaml:"inputText,omitempty" validate:"omitempty,hexcolor|rgb|rgba"`

	// Sizes in pixels
	ButtonFontSize *int `json:"buttonFontSize,omitempty" yaml:"buttonFontSize,omitempty" validate:"omitempty,min=10,max=32"`
	InputFontSize  *int `json:"inputFontSize,omitempty" yaml:"inputFontSize,omitempty" validate:"omitempty,min=10,max=32"`
	CardPadding    *int `json:"cardPadding,omitempty" yaml:"cardPadding,omitempty" validate:"omitempty,min=0,max=64"`
	HeaderFontSize *int `json:"headerFontSize,omitempty" yaml:"headerFontSize,omitempty" validate:"omitempty,min=12,max=48"`

	HeaderText string `json:"headerText,omitempty" yaml:"headerText,omitempty"`
	FooterText string `json:"footerText,omitempty" yaml:"footerText,omitempty"`
	ButtonText string `json:"buttonText,omitempty" yaml:"buttonText,omitempty"`
	CustomCSS  string `json:"customCss,omitempty" yaml:"customCss,omitempty"`
	// Logo is a data URL
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty" validate:"omitempty,datauri"`

	ShowFooter bool `json:"showFooter" yaml:"showFooter"`
}

// Int returns a pointer to v, for the numeric attributes of ThemeConfig
func Int(v int) *int {
	return &v
}

// Default returns a fresh copy of the canonical default theme
func Default() ThemeConfig {
	return ThemeConfig{
		Fields:         DefaultFields(),
		Shape:          ShapeRounded,
		Shadow:         ShadowOuter,
		Color:          SchemeLight,
		Font:           FontSegoeUI,
		AccentColor:    DefaultAccentColor,
		ButtonText:     "Send Message",
		ButtonFontSize: Int(18),
		InputFontSize:  Int(15),
		CardPadding:    Int(28),
		HeaderText:     "Contact Us",
		HeaderFontSize: Int(22),
		ShowFooter:     true,
		FooterText:     "Made with love by Formsmith",
	}
}

// Clone returns a deep copy of t
func (t ThemeConfig) Clone() ThemeConfig {
	out := t
	if t.Fields != nil {
		out.Fields = make([]FieldDefinition, len(t.Fields))
		for i, f := range t.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	out.ButtonFontSize = cloneInt(t.ButtonFontSize)
	out.InputFontSize = cloneInt(t.InputFontSize)
	out.CardPadding = cloneInt(t.CardPadding)
	out.HeaderFontSize = cloneInt(t.HeaderFontSize)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Decode parses a JSON theme on top of the canonical default, so attributes
// missing from data keep their default values. An empty object yields the default.
func Decode(data []byte) (ThemeConfig, error) {
	theme := Default()
	if len(data) == 0 {
		return theme, nil
	}
	// decoding into the default slice would merge stale attributes into the new entries
	theme.Fields = nil
	if err := json.Unmarshal(data, &theme); err != nil {
		return ThemeConfig{}, fmt.Errorf("decode theme: %w", err)
	}
	if theme.Fields == nil {
		theme.Fields = DefaultFields()
	}
	return theme, nil
}

// numericKeys are the wire names of the pixel attributes
var numericKeys = []string{"buttonFontSize", "inputFontSize", "cardPadding", "headerFontSize"}

func (t *ThemeConfig) numeric(key string) **int {
	switch key {
	case "buttonFontSize":
		return &t.ButtonFontSize
	case "inputFontSize":
		return &t.InputFontSize
	case "cardPadding":
		return &t.CardPadding
	case "headerFontSize":
		return &t.HeaderFontSize
	}
	return nil
}

// UnmarshalJSON decodes a theme leniently on its pixel attributes: an empty
// string or null leaves the attribute unset, numeric strings and fractions are
// accepted and anything else is dropped. Absent keys keep their current value.
func (t *ThemeConfig) UnmarshalJSON(data []byte) error {
	type plain ThemeConfig
	aux := struct {
		*plain
		ButtonFontSize json.RawMessage `json:"buttonFontSize"`
		InputFontSize  json.RawMessage `json:"inputFontSize"`
		CardPadding    json.RawMessage `json:"cardPadding"`
		HeaderFontSize json.RawMessage `json:"headerFontSize"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raws := []json.RawMessage{aux.ButtonFontSize, aux.InputFontSize, aux.CardPadding, aux.HeaderFontSize}
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		switch x := v.(type) {
		case float64:
			*t.numeric(numericKeys[i]) = roundInt(x)
		case string:
			*t.numeric(numericKeys[i]) = parseLooseInt(x)
		default:
			*t.numeric(numericKeys[i]) = nil
		}
	}
	return nil
}

// UnmarshalYAML applies the same lenient pixel attribute rules as UnmarshalJSON
func (t *ThemeConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ThemeConfig
	if value.Kind != yaml.MappingNode {
		return value.Decode((*plain)(t))
	}

	rest := *value
	rest.Content = make([]*yaml.Node, 0, len(value.Content))
	numerics := map[string]*yaml.Node{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if t.numeric(k.Value) != nil {
			numerics[k.Value] = v
			continue
		}
		rest.Content = append(rest.Content, k, v)
	}
	if err := rest.Decode((*plain)(t)); err != nil {
		return err
	}

	for key, v := range numerics {
		dst := t.numeric(key)
		if v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
			*dst = nil
			continue
		}
		*dst = parseLooseInt(v.Value)
	}
	return nil
}

func parseLooseInt(s string) *int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return roundInt(f)
}

func roundInt(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Max(math.Min(math.Round(f), math.MaxInt32), math.MinInt32)
	return Int(int(f))
}
