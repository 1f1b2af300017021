package schema

import "strings"

// Range is an inclusive bound for a numeric theme attribute
type Range struct {
	Min int
	Max int
}

// Clamp limits v to the range
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Documented bounds of the numeric attributes
var (
	ButtonFontSizeRange = Range{Min: 10, Max: 32}
	InputFontSizeRange  = Range{Min: 10, Max: 32}
	CardPaddingRange    = Range{Min: 0, Max: 64}
	HeaderFontSizeRange = Range{Min: 12, Max: 48}
)

// Validate returns a normalized copy of t: numerics are clamped to their
// ranges, fields with an empty name are dropped and an empty field list is
// replaced by the default fields. It never fails and never mutates t.
func Validate(t ThemeConfig) ThemeConfig {
	out := t.Clone()

	out.ButtonFontSize = clampPtr(out.ButtonFontSize, ButtonFontSizeRange)
	out.InputFontSize = clampPtr(out.InputFontSize, InputFontSizeRange)
	out.CardPadding = clampPtr(out.CardPadding, CardPaddingRange)
	out.HeaderFontSize = clampPtr(out.HeaderFontSize, HeaderFontSizeRange)

	fields := out.Fields[:0:0]
	for _, f := range out.Fields {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	out.Fields = fields

	return out
}

func clampPtr(p *int, r Range) *int {
	if p == nil {
		return nil
	}
	v := r.Clamp(*p)
	return &v
}
