package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/style"
)

type attrKind int

const (
	kindString attrKind = iota
	kindInt
	kindBool
)

type attribute struct {
	kind attrKind
	str  func(*schema.ThemeConfig) *string
	num  func(*schema.ThemeConfig) **int
	flag func(*schema.ThemeConfig) *bool
	// check validates a string value before it is stored
	check func(string) error
}

// attributes maps the JSON name of every directly editable theme attribute
var attributes = map[string]attribute{
	"shape": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return (*string)(&t.Shape) },
		check: enumCheck(func(s string) bool { return schema.Shape(s).Valid() })},
	"shadow": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return (*string)(&t.Shadow) },
		check: enumCheck(func(s string) bool { return schema.Shadow(s).Valid() })},
	"color": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return (*string)(&t.Color) },
		check: enumCheck(func(s string) bool { return schema.ColorScheme(s).Valid() })},
	"font": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.Font },
		check: enumCheck(schema.ValidFont)},

	"accentColor":     {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.AccentColor }},
	"cardBg":          {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.CardBg }},
	"cardBorder":      {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.CardBorder }},
	"inputBg":         {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.InputBg }},
	"inputBorder":     {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.InputBorder }},
	"inputLabelColor": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.InputLabelColor }},
	"headerColor":     {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.HeaderColor }},
	"buttonTextColor": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.ButtonTextColor }},
	"buttonBorder":    {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.ButtonBorder }},
	"text":            {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.TextColor }},
	"inputText":       {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.InputTextColor }},

	"headerText": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.HeaderText }},
	"footerText": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.FooterText }},
	"buttonText": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.ButtonText }},
	"customCss":  {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.CustomCSS }},
	"logo": {kind: kindString, str: func(t *schema.ThemeConfig) *string { return &t.Logo },
		check: func(s string) error {
			if s != "" && !strings.HasPrefix(s, "data:") {
				return errors.New("logo must be a data URL")
			}
			return nil
		}},

	"buttonFontSize": {kind: kindInt, num: func(t *schema.ThemeConfig) **int { return &t.ButtonFontSize }},
	"inputFontSize":  {kind: kindInt, num: func(t *schema.ThemeConfig) **int { return &t.InputFontSize }},
	"cardPadding":    {kind: kindInt, num: func(t *schema.ThemeConfig) **int { return &t.CardPadding }},
	"headerFontSize": {kind: kindInt, num: func(t *schema.ThemeConfig) **int { return &t.HeaderFontSize }},

	"showFooter": {kind: kindBool, flag: func(t *schema.ThemeConfig) *bool { return &t.ShowFooter }},
}

// schemeDependent lists the overrides whose unset value comes from the color scheme
var schemeDependent = []string{
	"cardBorder", "inputBg", "inputBorder", "inputLabelColor", "headerColor", "text", "inputText",
}

func enumCheck(valid func(string) bool) func(string) error {
	return func(s string) error {
		if !valid(s) {
			return fmt.Errorf("unknown value %q", s)
		}
		return nil
	}
}

// Attributes returns the names accepted by SetAttribute
func Attributes() []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	return names
}

// ParseAttribute converts text typed by an operator into the value
// SetAttribute expects for name. An empty numeric value unsets it.
func ParseAttribute(name, raw string) (any, error) {
	attr, ok := attributes[name]
	if !ok {
		return nil, newError("set", -1, name, fmt.Errorf("%w: unknown attribute", ErrInvalidFieldValue))
	}
	raw = strings.TrimSpace(raw)
	switch attr.kind {
	case kindInt:
		if raw == "" {
			return nil, nil
		}
		return json.Number(raw), nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, newError("set", -1, name, fmt.Errorf("%w: expected true or false, got %q", ErrInvalidFieldValue, raw))
		}
		return b, nil
	default:
		return raw, nil
	}
}

// SetAttribute sets a theme-level attribute by its JSON name. Numeric
// attributes accept int, float64 or json.Number, and nil or "" to unset them.
//
// Changing color always clears cardBg, and clears any other scheme-dependent
// override still holding the value the previous scheme derived for it.
// Overrides the operator picked explicitly survive the change.
func SetAttribute(theme schema.ThemeConfig, name string, value any) (schema.ThemeConfig, error) {
	attr, ok := attributes[name]
	if !ok {
		return theme, newError("set", -1, name, fmt.Errorf("%w: unknown attribute", ErrInvalidFieldValue))
	}
	invalid := func(err error) (schema.ThemeConfig, error) {
		return theme, newError("set", -1, name, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err))
	}

	out := theme.Clone()
	switch attr.kind {
	case kindString:
		s, ok := asString(value)
		if !ok {
			return invalid(fmt.Errorf("expected a string, got %T", value))
		}
		if attr.check != nil {
			if err := attr.check(s); err != nil {
				return invalid(err)
			}
		}
		*attr.str(&out) = s
	case kindInt:
		n, err := toInt(value)
		if err != nil {
			return invalid(err)
		}
		*attr.num(&out) = n
	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return invalid(fmt.Errorf("expected a bool, got %T", value))
		}
		*attr.flag(&out) = b
	}

	if name == "color" && out.Color != theme.Color {
		clearSchemeEchoes(theme, &out)
	}
	return out, nil
}

func clearSchemeEchoes(prev schema.ThemeConfig, out *schema.ThemeConfig) {
	out.CardBg = ""
	derived := style.Derived(prev)
	for _, name := range schemeDependent {
		p := attributes[name].str(out)
		if *p != "" && strings.EqualFold(*p, derived[name]) {
			*p = ""
		}
	}
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case schema.Shape:
		return string(v), true
	case schema.Shadow:
		return string(v), true
	case schema.ColorScheme:
		return string(v), true
	default:
		return "", false
	}
}

func toInt(value any) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return schema.Int(v), nil
	case int64:
		return schema.Int(int(v)), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("expected a whole number, got %v", v)
		}
		return schema.Int(int(v)), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("expected a whole number, got %q", v)
		}
		return schema.Int(int(i)), nil
	case string:
		if v == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("expected a number, got %q", v)
	default:
		return nil, fmt.Errorf("expected a number, got %T", value)
	}
}
