package config

import (
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
)

// Color represents a color of the terminal editor
type Color string

const (
	// DefaultColor represents a default color
	DefaultColor Color = "default"

	// TransparentColor represents the terminal bg color
	TransparentColor Color = "-"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns color as string
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color. Short hex forms such as #fff are expanded.
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == TransparentColor || c == "" {
		return tcell.ColorDefault
	}
	s := strings.TrimSpace(string(c))
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return tcell.GetColor(s).TrueColor()
}

// FrameColors defines colors for the editor chrome
type FrameColors struct {
	BorderColor Color `mapstructure:"border" json:"border" yaml:"border"`
	FocusColor  Color `mapstructure:"focus" json:"focus" yaml:"focus"`
	TitleColor  Color `mapstructure:"title" json:"title" yaml:"title"`
}

// StatusColors colors the save indicator
type StatusColors struct {
	SavingColor Color `mapstructure:"saving" json:"saving" yaml:"saving"`
	SavedColor  Color `mapstructure:"saved" json:"saved" yaml:"saved"`
	FailedColor Color `mapstructure:"failed" json:"failed" yaml:"failed"`
}

// ColorsConfig defines the colors of the terminal editor. The preview pane is
// colored by the edited theme, not by these.
type ColorsConfig struct {
	Frame  FrameColors  `mapstructure:"frame" json:"frame" yaml:"frame"`
	Status StatusColors `mapstructure:"status" json:"status" yaml:"status"`
}

// DefaultColors returns the default color configuration
func DefaultColors() ColorsConfig {
	return ColorsConfig{
		Frame: FrameColors{
			BorderColor: NewColor("#44475a"),
			FocusColor:  NewColor("#76abae"),
			TitleColor:  NewColor("#f8f8f2"),
		},
		Status: StatusColors{
			SavingColor: NewColor("#f1fa8c"),
			SavedColor:  NewColor("#50fa7b"),
			FailedColor: NewColor("#ff5555"),
		},
	}
}
