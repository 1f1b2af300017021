package tui

import (
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/ajramos/formsmith/internal/editor"
)

const helpText = `Field list
  j/k, arrows   move the cursor
  enter, tab    edit the selected field
  t, backtab    edit the theme
  a             add a field
  d             delete the selected field
  K / J         move the field up / down
  :             command line
  q, ctrl-q     quit

Forms
  enter, tab    apply and go to the next item
  esc           discard and go back to the list

Commands
  add | rm [n] | up | down | select <n>
  set <attribute> [value]     empty value unsets a number
  field <attribute> <value>   name label type required visible options
  logo <path> | logo clear
  presets | preset <name> | save-preset <name>
  reset | help | quit`

// bindKeys installs the global key handler
func (a *App) bindKeys() {
	a.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlQ {
			a.Stop()
			return nil
		}
		// Forms, the command line and the help page take keys natively
		if a.cmdMode || !a.fieldList.HasFocus() {
			return event
		}
		return a.handleListKey(event)
	})
}

// handleListKey runs the shortcuts of the field list
func (a *App) handleListKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyTab:
		a.focusPane(paneFieldForm)
		return nil
	case tcell.KeyBacktab:
		a.focusPane(paneTheme)
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'j':
		return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	case 'k':
		return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	case 'a':
		_ = a.addField()
	case 'd':
		_ = a.removeField(a.selected)
	case 'K':
		_ = a.moveField(editor.Up)
	case 'J':
		_ = a.moveField(editor.Down)
	case 't':
		a.focusPane(paneTheme)
	case ':':
		a.showCommandBar()
	case '?':
		a.showHelp()
	case 'q':
		a.Stop()
	default:
		return event
	}
	return nil
}

// showHelp opens the key reference over the editor
func (a *App) showHelp() {
	pages, ok := a.views["pages"].(*tview.Pages)
	if !ok {
		return
	}
	modal := tview.NewModal().
		SetText(helpText).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) {
			pages.RemovePage("help")
			a.focusPane(paneFields)
		})
	pages.AddPage("help", modal, true, true)
	a.SetFocus(modal)
}
