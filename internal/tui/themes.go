package tui

import (
	"strconv"

	"github.com/derailed/tview"

	"github.com/ajramos/formsmith/internal/editor"
	"github.com/ajramos/formsmith/internal/schema"
)

// themeForm edits the theme-level attributes used most often. The rest are
// reachable through the :set command.
type themeForm struct {
	*tview.Form
	inputs    map[string]*tview.InputField
	drops     map[string]*tview.DropDown
	dropNames map[string][]string
	footer    *tview.Checkbox
}

// themeChoices lists the dropdown attributes in form order
var themeChoices = []struct {
	attr    string
	label   string
	options []string
}{
	{"color", "Color", names(schema.Schemes)},
	{"shape", "Shape", names(schema.Shapes)},
	{"shadow", "Shadow", names(schema.Shadows)},
	{"font", "Font", schema.Fonts},
}

// themeTexts lists the text attributes in form order
var themeTexts = []struct {
	attr  string
	label string
}{
	{"headerText", "Header"},
	{"buttonText", "Button"},
	{"footerText", "Footer"},
	{"accentColor", "Accent"},
	{"headerFontSize", "Header px"},
	{"buttonFontSize", "Button px"},
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func (a *App) newThemeForm() *themeForm {
	f := &themeForm{
		Form:      tview.NewForm(),
		inputs:    make(map[string]*tview.InputField),
		drops:     make(map[string]*tview.DropDown),
		dropNames: make(map[string][]string),
	}

	for _, c := range themeChoices {
		attr := c.attr
		dd := tview.NewDropDown().SetLabel(c.label)
		dd.SetOptions(c.options, func(text string, _ int) {
			if !a.syncing {
				_ = a.setAttribute(attr, text)
			}
		})
		f.drops[attr] = dd
		f.dropNames[attr] = c.options
		f.AddFormItem(dd)
	}
	for _, t := range themeTexts {
		attr := t.attr
		in := a.textInput(t.label, 20, func(text string) {
			value, err := editor.ParseAttribute(attr, text)
			if err != nil {
				_ = a.apply("set "+attr, func() error { return err })
				return
			}
			_ = a.setAttribute(attr, value)
		})
		f.inputs[attr] = in
		f.AddFormItem(in)
	}
	f.footer = tview.NewCheckbox().SetLabel("Show footer")
	f.footer.SetChangedFunc(func(_ string, checked bool) {
		if !a.syncing {
			_ = a.setAttribute("showFooter", checked)
		}
	})
	f.AddFormItem(f.footer)
	return f
}

// refreshThemeForm shows the attributes of theme
func (a *App) refreshThemeForm(theme schema.ThemeConfig) error {
	prev := a.syncing
	a.syncing = true
	defer func() { a.syncing = prev }()

	tf := a.themeForm
	for attr, dd := range tf.drops {
		current := themeValue(theme, attr)
		for i, name := range tf.dropNames[attr] {
			if name == current {
				dd.SetCurrentOption(i)
			}
		}
	}
	for attr, in := range tf.inputs {
		in.SetText(themeValue(theme, attr))
	}
	tf.footer.SetChecked(theme.ShowFooter)
	return nil
}

func (a *App) setAttribute(attr string, value any) error {
	return a.apply("set "+attr, func() error { return a.sess.Set(attr, value) })
}

// themeValue returns the stored value of a form attribute as text. Unset
// overrides are empty.
func themeValue(theme schema.ThemeConfig, attr string) string {
	num := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}
	switch attr {
	case "color":
		return string(theme.Color)
	case "shape":
		return string(theme.Shape)
	case "shadow":
		return string(theme.Shadow)
	case "font":
		return theme.Font
	case "headerText":
		return theme.HeaderText
	case "buttonText":
		return theme.ButtonText
	case "footerText":
		return theme.FooterText
	case "accentColor":
		return theme.AccentColor
	case "headerFontSize":
		return num(theme.HeaderFontSize)
	case "buttonFontSize":
		return num(theme.ButtonFontSize)
	default:
		return ""
	}
}
