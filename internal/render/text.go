package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ajramos/formsmith/internal/schema"
)

// MinTextWidth is the narrowest preview Text draws
const MinTextWidth = 24

// Text draws a plain-text mock of the widget, width columns wide. It is used by
// the terminal editor and the preview command.
func Text(theme schema.ThemeConfig, width int) string {
	if width < MinTextWidth {
		width = MinTextWidth
	}
	form := BuildForm(theme)
	inner := width - 4

	var b strings.Builder
	border := "+" + strings.Repeat("-", width-2) + "+\n"
	line := func(s string) {
		b.WriteString("| ")
		b.WriteString(fitWidth(s, inner))
		b.WriteString(" |\n")
	}

	b.WriteString(border)
	if form.Style.Logo != "" {
		line("[logo]")
	}
	line(centre(form.Style.Header.Text, inner))
	line("")
	for _, c := range form.Controls {
		label := c.Label
		if c.Required {
			label += " *"
		}
		switch {
		case c.Kind == KindInput && c.InputType == "checkbox":
			line("[ ] " + label)
		case c.Kind == KindSelect:
			line(label)
			line(fmt.Sprintf("[%s v]", fitWidth(firstOption(c.Options), inner-4)))
		case c.Kind == KindTextarea:
			line(label)
			box := "[" + strings.Repeat("_", inner-2) + "]"
			line(box)
			line(box)
		default:
			line(label)
			line("[" + strings.Repeat("_", inner-2) + "]")
		}
	}
	line("")
	line(centre("< "+form.Style.Button.Text+" >", inner))
	if form.Style.Footer.Show {
		line(centre(form.Style.Footer.Text, inner))
	}
	b.WriteString(border)
	return b.String()
}

func firstOption(opts []string) string {
	if len(opts) == 0 {
		return ""
	}
	return opts[0]
}

// fitWidth truncates and pads on the right to fit a fixed width
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "...")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func centre(s string, width int) string {
	s = runewidth.Truncate(s, width, "...")
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
