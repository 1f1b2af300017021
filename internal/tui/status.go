package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/derailed/tview"

	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/persist"
)

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

const statusHints = "enter field  t theme  a add  d delete  K/J move  : command  ? help  ctrl-q quit"

// StatusBar shows the save state of the session next to the latest message
type StatusBar struct {
	mu     sync.Mutex
	view   *tview.TextView
	colors config.StatusColors

	save    persist.Status
	message string
	level   LogLevel
}

// NewStatusBar creates the status line
func NewStatusBar(colors config.StatusColors) *StatusBar {
	view := tview.NewTextView().SetDynamicColors(true)
	view.SetBorder(false)
	sb := &StatusBar{view: view, colors: colors}
	sb.refresh()
	return sb
}

// View returns the primitive to place in the layout
func (sb *StatusBar) View() *tview.TextView {
	return sb.view
}

// Update shows a new save status
func (sb *StatusBar) Update(st persist.Status) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.save = st
	sb.refresh()
}

// ShowMessage replaces the message part of the bar
func (sb *StatusBar) ShowMessage(msg string, level LogLevel) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.message = strings.TrimSpace(msg)
	sb.level = level
	sb.refresh()
}

// ClearMessage drops the message part of the bar
func (sb *StatusBar) ClearMessage() {
	sb.ShowMessage("", LogLevelInfo)
}

// Text returns the bar without color tags
func (sb *StatusBar) Text() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.view.GetText(true)
}

// refresh must be called with mu held
func (sb *StatusBar) refresh() {
	parts := []string{sb.saveIndicator()}
	if sb.message != "" {
		parts = append(parts, sb.formatMessage())
	}
	parts = append(parts, "[::d]"+statusHints+"[::-]")
	sb.view.SetText(" " + strings.Join(parts, " │ "))
}

func (sb *StatusBar) saveIndicator() string {
	st := sb.save
	switch st.State {
	case persist.Saving:
		return fmt.Sprintf("[%s]● saving r%d[-]", sb.colors.SavingColor, st.Revision)
	case persist.Saved:
		return fmt.Sprintf("[%s]✓ saved r%d[-]", sb.colors.SavedColor, st.Revision)
	case persist.Failed:
		msg := "save failed"
		if st.Err != nil {
			msg = "save failed: " + tview.Escape(st.Err.Error())
		}
		return fmt.Sprintf("[%s]✗ %s[-]", sb.colors.FailedColor, msg)
	default:
		return fmt.Sprintf("r%d", st.Revision)
	}
}

// formatMessage formats a message with appropriate icon and color
func (sb *StatusBar) formatMessage() string {
	msg := tview.Escape(sb.message)
	switch sb.level {
	case LogLevelError:
		return fmt.Sprintf("[%s]✗ %s[-]", sb.colors.FailedColor, msg)
	case LogLevelWarning:
		return fmt.Sprintf("[%s]! %s[-]", sb.colors.SavingColor, msg)
	case LogLevelSuccess:
		return fmt.Sprintf("[%s]✓ %s[-]", sb.colors.SavedColor, msg)
	default:
		return msg
	}
}
