package style

import "github.com/ajramos/formsmith/internal/schema"

// Palette is the base set of colors selected by a color scheme
type Palette struct {
	Background string
	Text       string
	InputBg    string
	InputText  string
	Border     string
	Accent     string
}

// PaletteFor returns the base palette of scheme. The accent scheme paints
// the background and border with the accent hue. Unknown schemes use light.
func PaletteFor(scheme schema.ColorScheme, accent string) Palette {
	switch scheme {
	case schema.SchemeDark:
		return Palette{
			Background: "#23272f",
			Text:       "#fff",
			InputBg:    "#2c313a",
			InputText:  "#fff",
			Border:     "#444",
			Accent:     accent,
		}
	case schema.SchemeAccent:
		return Palette{
			Background: accent,
			Text:       "#fff",
			InputBg:    "#fff",
			InputText:  "#222",
			Border:     accent,
			Accent:     accent,
		}
	default:
		return Palette{
			Background: "#fff",
			Text:       "#222",
			InputBg:    "#fff",
			InputText:  "#222",
			Border:     "#31363F",
			Accent:     accent,
		}
	}
}

// radii in pixels per shape
var radii = map[schema.Shape]int{
	schema.ShapeSquare:  0,
	schema.ShapeRounded: 16,
	schema.ShapePill:    999,
}

var shadows = map[schema.Shadow]string{
	schema.ShadowNone:   "none",
	schema.ShadowInner:  "inset 0 2px 8px rgba(80,80,180,0.10)",
	schema.ShadowStrong: "0 8px 32px rgba(80,80,180,0.18)",
	schema.ShadowSubtle: "0 2px 8px rgba(80,80,180,0.07)",
	schema.ShadowOuter:  "0 4px 24px rgba(80,80,180,0.10)",
}

// RadiusFor returns the corner radius of shape, falling back to rounded
func RadiusFor(shape schema.Shape) int {
	if r, ok := radii[shape]; ok {
		return r
	}
	return radii[schema.ShapeRounded]
}

// ShadowFor returns the box-shadow preset of shadow, falling back to outer
func ShadowFor(shadow schema.Shadow) string {
	if s, ok := shadows[shadow]; ok {
		return s
	}
	return shadows[schema.ShadowOuter]
}
