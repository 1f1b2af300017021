// Package render turns a theme into something an operator can look at:
// widget HTML, the embed snippet and a plain-text preview.
package render

import (
	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/style"
)

// ControlKind is the HTML element a field renders as
type ControlKind string

const (
	KindInput    ControlKind = "input"
	KindTextarea ControlKind = "textarea"
	KindSelect   ControlKind = "select"
)

// Control is one rendered field
type Control struct {
	Name     string
	Label    string
	Kind     ControlKind
	// InputType is the type attribute of an input control
	InputType string
	Required  bool
	Options   []string
}

// Form is everything needed to draw a widget
type Form struct {
	Style    style.ResolvedStyle
	Controls []Control
}

// BuildForm resolves the style of theme and lists a control for every visible
// field, in field order.
func BuildForm(theme schema.ThemeConfig) Form {
	theme = schema.Validate(theme)
	form := Form{Style: style.Resolve(theme)}
	for _, f := range theme.Fields {
		if !f.Visible {
			continue
		}
		form.Controls = append(form.Controls, controlFor(f))
	}
	return form
}

func controlFor(f schema.FieldDefinition) Control {
	c := Control{
		Name:     f.Name,
		Label:    f.Label,
		Required: f.Required,
	}
	if c.Label == "" {
		c.Label = f.Name
	}
	switch f.Type {
	case schema.FieldTextarea:
		c.Kind = KindTextarea
	case schema.FieldDropdown:
		c.Kind = KindSelect
		c.Options = append([]string(nil), f.Options...)
	case schema.FieldCheckbox:
		c.Kind = KindInput
		c.InputType = "checkbox"
	case schema.FieldEmail:
		c.Kind = KindInput
		c.InputType = "email"
	default:
		c.Kind = KindInput
		c.InputType = "text"
	}
	return c
}
