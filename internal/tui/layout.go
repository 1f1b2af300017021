package tui

import (
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const fieldListWidth = 30

// initComponents builds the panes and the main layout
func (a *App) initComponents() {
	frame := a.colors.Frame

	a.fieldList = tview.NewList().ShowSecondaryText(false)
	a.fieldList.SetHighlightFullLine(true)
	a.fieldList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		a.selectField(index)
	})
	a.fieldList.SetSelectedFunc(func(int, string, string, rune) {
		a.focusPane(paneFieldForm)
	})

	a.fieldForm = a.newFieldForm()
	a.fieldForm.SetCancelFunc(func() { a.focusPane(paneFields) })

	a.themeForm = a.newThemeForm()
	a.themeForm.SetTitle(" Theme ")
	a.themeForm.SetCancelFunc(func() { a.focusPane(paneFields) })

	for _, box := range []*tview.Box{a.fieldList.Box, a.fieldForm.Box, a.themeForm.Box} {
		box.SetBorder(true).
			SetBorderColor(frame.BorderColor.Color()).
			SetBorderAttributes(tcell.AttrBold).
			SetTitleColor(frame.TitleColor.Color()).
			SetTitleAlign(tview.AlignLeft)
	}

	a.preview = tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetScrollable(true)
	a.preview.SetBorder(true).SetTitleColor(frame.TitleColor.Color())

	a.status = NewStatusBar(a.colors.Status)

	// Command panel starts hidden with height 0
	cmdPanel := tview.NewFlex().SetDirection(tview.FlexColumn)

	forms := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.fieldForm, 15, 0, false).
		AddItem(a.themeForm, 0, 1, false)

	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.fieldList, fieldListWidth, 0, true).
		AddItem(forms, 0, 1, false).
		AddItem(a.preview, a.previewWidth+2, 0, false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(cmdPanel, 0, 0, false).
		AddItem(a.status.View(), 1, 0, false)

	pages := tview.NewPages().AddPage("main", mainFlex, true, true)

	a.views["fields"] = a.fieldList
	a.views["preview"] = a.preview
	a.views["cmdPanel"] = cmdPanel
	a.views["mainFlex"] = mainFlex
	a.views["pages"] = pages

	a.SetRoot(pages, true)
	a.highlightPane(paneFields)
}

// pane indexes, in focus order
const (
	paneFields = iota
	paneFieldForm
	paneTheme
)

func (a *App) focusPane(pane int) {
	panes := a.panes()
	if pane < 0 || pane >= len(panes) {
		return
	}
	a.SetFocus(panes[pane])
	a.highlightPane(pane)
}
