package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/mattn/go-runewidth"

	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/render"
	"github.com/ajramos/formsmith/internal/schema"
)

// refreshPreview redraws the widget preview. It never waits on persistence.
func (a *App) refreshPreview(theme schema.ThemeConfig) error {
	form := render.BuildForm(theme)
	s := form.Style

	a.preview.SetBackgroundColor(cssColor(s.Card.Background))
	a.preview.SetTextColor(cssColor(s.Card.Text))
	a.preview.SetBorderColor(cssColor(s.Card.BorderColor))
	a.preview.SetTitle(fmt.Sprintf(" Preview · %s · %s ", s.Scheme, s.Font))
	a.preview.SetText(PreviewText(form, a.previewWidth))
	a.preview.ScrollToBeginning()
	return nil
}

// PreviewText lays out form for a pane width cells wide, using tview color
// tags taken from the resolved style
func PreviewText(form render.Form, width int) string {
	s := form.Style
	inner := width - 2
	if inner < render.MinTextWidth-2 {
		inner = render.MinTextWidth - 2
	}

	var b strings.Builder
	line := func(tagged string) {
		b.WriteString(" " + tagged + "\n")
	}

	if strings.HasPrefix(s.Logo, "data:image/") {
		line(tview.Escape(centreText("[logo]", inner)))
	}
	line(fmt.Sprintf("[%s::b]%s[-::-]", tag(s.Header.Color), tview.Escape(centreText(s.Header.Text, inner))))
	line("")

	label := func(c render.Control) string {
		text := tview.Escape(fit(c.Label, inner-2))
		if c.Required {
			return fmt.Sprintf("[%s]%s[%s]*[-]", tag(s.Label.Color), text, tag(s.Label.RequiredColor))
		}
		return fmt.Sprintf("[%s]%s[-]", tag(s.Label.Color), text)
	}
	box := func(content string) string {
		return fmt.Sprintf("[%s:%s]%s[-:-]", tag(s.Input.Text), tag(s.Input.Background), tview.Escape(pad(content, inner)))
	}

	for _, c := range form.Controls {
		switch {
		case c.Kind == render.KindInput && c.InputType == "checkbox":
			line(fmt.Sprintf("[%s:%s]☐[-:-] %s", tag(s.Input.Text), tag(s.Input.Background), label(c)))
		case c.Kind == render.KindSelect:
			line(label(c))
			first := ""
			if len(c.Options) > 0 {
				first = c.Options[0]
			}
			line(box(fit(first, inner-3) + " ▾"))
		case c.Kind == render.KindTextarea:
			line(label(c))
			line(box(""))
			line(box(""))
		default:
			line(label(c))
			line(box(""))
		}
		line("")
	}

	button := " " + fit(s.Button.Text, inner-2) + " "
	line(fmt.Sprintf("[%s:%s:b]%s[-:-:-]", tag(s.Button.TextColor), tag(s.Button.Background), tview.Escape(button)))

	if s.Footer.Show {
		line("")
		line(fmt.Sprintf("[::d]%s[::-]", tview.Escape(centreText(s.Footer.Text, inner))))
	}
	if len(s.Fallbacks) > 0 {
		line("")
		line("[::d]defaults used for: " + tview.Escape(strings.Join(s.Fallbacks, ", ")) + "[::-]")
	}
	return strings.TrimRight(b.String(), "\n")
}

// cssColor maps a CSS hex or rgb()/rgba() color to a terminal color.
// Anything else falls back to the terminal default.
func cssColor(css string) tcell.Color {
	css = strings.TrimSpace(strings.ToLower(css))
	switch {
	case strings.HasPrefix(css, "#") && (len(css) == 4 || len(css) == 7):
		if _, err := strconv.ParseUint(css[1:], 16, 32); err != nil {
			return tcell.ColorDefault
		}
		return config.NewColor(css).Color()
	case strings.HasPrefix(css, "rgb"):
		lp, rp := strings.IndexByte(css, '('), strings.IndexByte(css, ')')
		if lp < 0 || rp < lp {
			return tcell.ColorDefault
		}
		parts := strings.Split(css[lp+1:rp], ",")
		if len(parts) < 3 {
			return tcell.ColorDefault
		}
		var rgb [3]int32
		for i := range rgb {
			n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil || n < 0 || n > 255 {
				return tcell.ColorDefault
			}
			rgb[i] = int32(n)
		}
		return tcell.NewRGBColor(rgb[0], rgb[1], rgb[2])
	default:
		return tcell.ColorDefault
	}
}

// tag renders a CSS color as a tview color tag value
func tag(css string) string {
	c := cssColor(css)
	if c == tcell.ColorDefault {
		return "-"
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

func fit(s string, width int) string {
	if width < 1 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func pad(s string, width int) string {
	return runewidth.FillRight(fit(s, width), width)
}

func centreText(s string, width int) string {
	s = fit(s, width)
	left := (width - runewidth.StringWidth(s)) / 2
	return strings.Repeat(" ", left) + s
}
