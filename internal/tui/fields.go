package tui

import (
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/ajramos/formsmith/internal/editor"
	"github.com/ajramos/formsmith/internal/schema"
)

// fieldForm edits the attributes of the selected field
type fieldForm struct {
	*tview.Form
	name     *tview.InputField
	label    *tview.InputField
	kind     *tview.DropDown
	required *tview.Checkbox
	visible  *tview.Checkbox
	options  *tview.InputField
}

var fieldTypeNames = names(schema.FieldTypes)

func (a *App) newFieldForm() *fieldForm {
	f := &fieldForm{Form: tview.NewForm()}

	f.name = a.textInput("Name", 24, func(text string) {
		_ = a.updateField(editor.AttrName, text)
	})
	f.label = a.textInput("Label", 24, func(text string) {
		_ = a.updateField(editor.AttrLabel, text)
	})
	f.kind = tview.NewDropDown().SetLabel("Type")
	f.kind.SetOptions(fieldTypeNames, func(text string, _ int) {
		if !a.syncing {
			_ = a.updateField(editor.AttrType, text)
		}
	})
	f.required = tview.NewCheckbox().SetLabel("Required")
	f.required.SetChangedFunc(func(_ string, checked bool) {
		if !a.syncing {
			_ = a.updateField(editor.AttrRequired, checked)
		}
	})
	f.visible = tview.NewCheckbox().SetLabel("Visible")
	f.visible.SetChangedFunc(func(_ string, checked bool) {
		if !a.syncing {
			_ = a.updateField(editor.AttrVisible, checked)
		}
	})
	f.options = a.textInput("Options", 24, func(text string) {
		_ = a.updateField(editor.AttrOptions, splitOptions(text))
	})

	f.AddFormItem(f.name)
	f.AddFormItem(f.label)
	f.AddFormItem(f.kind)
	f.AddFormItem(f.required)
	f.AddFormItem(f.visible)
	f.AddFormItem(f.options)
	return f
}

// textInput creates an input that commits on Enter or Tab and reverts on Esc
func (a *App) textInput(label string, width int, commit func(string)) *tview.InputField {
	in := tview.NewInputField().SetLabel(label).SetFieldWidth(width)
	in.SetDoneFunc(func(key tcell.Key) {
		if a.syncing {
			return
		}
		switch key {
		case tcell.KeyEnter, tcell.KeyTab, tcell.KeyBacktab:
			commit(in.GetText())
		case tcell.KeyEscape:
			theme := a.sess.Theme()
			_ = a.refreshFields(theme)
			_ = a.refreshThemeForm(theme)
		}
	})
	return in
}

// refreshFields rebuilds the field list and the field form from theme
func (a *App) refreshFields(theme schema.ThemeConfig) error {
	prev := a.syncing
	a.syncing = true
	defer func() { a.syncing = prev }()

	if a.selected >= len(theme.Fields) {
		a.selected = len(theme.Fields) - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}

	a.fieldList.Clear()
	for _, f := range theme.Fields {
		a.fieldList.AddItem(fieldItemText(f), "", 0, nil)
	}
	a.fieldList.SetTitle(fmt.Sprintf(" Fields (%d) ", len(theme.Fields)))
	a.fieldList.SetCurrentItem(a.selected)

	a.fillFieldForm(theme)
	return nil
}

func (a *App) fillFieldForm(theme schema.ThemeConfig) {
	prev := a.syncing
	a.syncing = true
	defer func() { a.syncing = prev }()

	if a.selected < 0 || a.selected >= len(theme.Fields) {
		return
	}
	f := theme.Fields[a.selected]
	ff := a.fieldForm
	ff.name.SetText(f.Name)
	ff.label.SetText(f.Label)
	for i, name := range fieldTypeNames {
		if name == string(f.Type) {
			ff.kind.SetCurrentOption(i)
		}
	}
	ff.required.SetChecked(f.Required)
	ff.visible.SetChecked(f.Visible)
	ff.options.SetText(strings.Join(f.Options, ", "))
	ff.SetTitle(fmt.Sprintf(" Field %d · %s ", a.selected+1, f.Name))
}

// selectField is called when the list cursor moves
func (a *App) selectField(index int) {
	if a.syncing {
		return
	}
	a.selected = index
	a.fillFieldForm(a.sess.Theme())
}

func (a *App) updateField(attribute string, value any) error {
	index := a.selected
	return a.apply("update "+attribute, func() error {
		return a.sess.UpdateField(index, attribute, value)
	})
}

func (a *App) addField() error {
	// the new field is appended, so select it once it exists
	a.selected = len(a.sess.Theme().Fields)
	return a.apply("add", a.sess.AddField)
}

func (a *App) removeField(index int) error {
	return a.apply("remove", func() error { return a.sess.RemoveField(index) })
}

func (a *App) moveField(dir editor.Direction) error {
	index := a.selected
	target := index - 1
	if dir == editor.Down {
		target = index + 1
	}
	if target >= 0 && target < len(a.sess.Theme().Fields) {
		// keep the cursor on the moved field
		a.selected = target
	}
	err := a.apply("move", func() error { return a.sess.MoveField(index, dir) })
	if err != nil {
		a.selected = index
		_ = a.refreshFields(a.sess.Theme())
	}
	return err
}

func fieldItemText(f schema.FieldDefinition) string {
	marker := " "
	if f.Required {
		marker = "*"
	}
	if !f.Visible {
		return fmt.Sprintf("[::d]%s %s (%s) hidden[::-]", marker, tview.Escape(f.Name), f.Type)
	}
	return fmt.Sprintf("%s %s [::d](%s)[::-]", marker, tview.Escape(f.Name), f.Type)
}

// splitOptions turns "a, b, ,c" into [a b c]. No options gives nil.
func splitOptions(text string) []string {
	var opts []string
	for _, o := range strings.Split(text, ",") {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	return opts
}
