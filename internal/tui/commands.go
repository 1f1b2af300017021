package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/ajramos/formsmith/internal/editor"
	"github.com/ajramos/formsmith/internal/schema"
)

// commandNames are completed in this order
var commandNames = []string{
	"add", "down", "field", "help", "logo", "preset", "presets", "quit",
	"remove", "reset", "save-preset", "select", "set", "up",
}

var errNoPresets = errors.New("no preset library configured")

// showCommandBar displays the command bar and enters command mode
func (a *App) showCommandBar() {
	cmdPanel, ok := a.views["cmdPanel"].(*tview.Flex)
	if !ok {
		return
	}
	mainFlex, _ := a.views["mainFlex"].(*tview.Flex)

	a.cmdMode = true
	a.cmdHistoryIndex = len(a.cmdHistory)

	prompt := tview.NewTextView().SetText(":")
	hint := tview.NewTextView().SetTextColor(tcell.ColorGray)

	input := tview.NewInputField().SetFieldWidth(0)
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.executeCommand(input.GetText())
		}
		a.hideCommandBar()
	})
	input.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyTab:
			if s := a.generateCommandSuggestion(input.GetText()); s != "" {
				input.SetText(s)
			}
			return nil
		case tcell.KeyUp:
			if a.cmdHistoryIndex > 0 {
				a.cmdHistoryIndex--
				input.SetText(a.cmdHistory[a.cmdHistoryIndex])
			}
			return nil
		case tcell.KeyDown:
			if a.cmdHistoryIndex < len(a.cmdHistory)-1 {
				a.cmdHistoryIndex++
				input.SetText(a.cmdHistory[a.cmdHistoryIndex])
			} else {
				a.cmdHistoryIndex = len(a.cmdHistory)
				input.SetText("")
			}
			return nil
		}
		return ev
	})
	input.SetChangedFunc(func(text string) {
		if s := a.generateCommandSuggestion(text); s != "" && s != strings.TrimSpace(text) {
			hint.SetText(s)
		} else {
			hint.SetText("")
		}
	})

	cmdPanel.Clear()
	cmdPanel.AddItem(prompt, 1, 0, false)
	cmdPanel.AddItem(input, 0, 2, true)
	cmdPanel.AddItem(hint, 0, 1, false)
	if mainFlex != nil {
		mainFlex.ResizeItem(cmdPanel, 1, 0)
	}
	a.views["cmdInput"] = input
	a.SetFocus(input)
}

// hideCommandBar collapses the command bar and returns to the field list
func (a *App) hideCommandBar() {
	a.cmdMode = false
	if cmdPanel, ok := a.views["cmdPanel"].(*tview.Flex); ok {
		cmdPanel.Clear()
		if mainFlex, ok := a.views["mainFlex"].(*tview.Flex); ok {
			mainFlex.ResizeItem(cmdPanel, 0, 0)
		}
	}
	delete(a.views, "cmdInput")
	a.focusPane(paneFields)
}

// generateCommandSuggestion completes the command word of buffer
func (a *App) generateCommandSuggestion(buffer string) string {
	buffer = strings.TrimLeft(buffer, " ")
	if buffer == "" || strings.Contains(buffer, " ") {
		return ""
	}
	for _, name := range commandNames {
		if strings.HasPrefix(name, strings.ToLower(buffer)) {
			return name
		}
	}
	return ""
}

// executeCommand runs cmd and reports the outcome in the status bar
func (a *App) executeCommand(cmd string) {
	a.addToHistory(cmd)
	msg, err := a.runCommand(cmd)
	switch {
	case err != nil:
		a.logger.Debug().Err(err).Str("command", cmd).Msg("command failed")
		a.status.ShowMessage(err.Error(), LogLevelError)
	case msg != "":
		a.status.ShowMessage(msg, LogLevelSuccess)
	}
}

func (a *App) addToHistory(cmd string) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return
	}
	if n := len(a.cmdHistory); n > 0 && a.cmdHistory[n-1] == cmd {
		return
	}
	a.cmdHistory = append(a.cmdHistory, cmd)
	if len(a.cmdHistory) > 100 {
		a.cmdHistory = a.cmdHistory[1:]
	}
}

// runCommand executes one command line and returns a message for the operator
func (a *App) runCommand(cmd string) (string, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "", nil
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]
	// rest keeps inner spacing, e.g. for header text
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cmd), parts[0]))

	switch command {
	case "add", "a":
		return "", a.addField()
	case "remove", "rm", "delete":
		index, err := a.fieldIndexArg(args)
		if err != nil {
			return "", err
		}
		return "", a.removeField(index)
	case "up":
		return "", a.moveField(editor.Up)
	case "down":
		return "", a.moveField(editor.Down)
	case "select", "g":
		if len(args) == 0 {
			return "", errors.New("usage: select <n>")
		}
		index, err := a.fieldIndexArg(args)
		if err != nil {
			return "", err
		}
		if index >= len(a.sess.Theme().Fields) {
			return "", fmt.Errorf("no field %d", index+1)
		}
		a.selected = index
		return "", a.refreshFields(a.sess.Theme())
	case "set":
		return a.executeSetCommand(args, rest)
	case "field", "f":
		return a.executeFieldCommand(args, rest)
	case "logo":
		return a.executeLogoCommand(rest)
	case "presets":
		return a.executePresetsCommand()
	case "preset":
		return a.executePresetCommand(rest)
	case "save-preset":
		return a.executeSavePresetCommand(rest)
	case "reset":
		a.selected = 0
		return "theme reset to defaults", a.apply("reset", a.sess.Reset)
	case "help", "h", "?":
		a.showHelp()
		return "", nil
	case "quit", "q":
		a.Stop()
		return "", nil
	default:
		return "", fmt.Errorf("unknown command: %s", command)
	}
}

// fieldIndexArg reads an optional 1-based field number, defaulting to the
// selected field
func (a *App) fieldIndexArg(args []string) (int, error) {
	if len(args) == 0 {
		return a.selected, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("not a field number: %s", args[0])
	}
	return n - 1, nil
}

// executeSetCommand handles :set <attribute> [value]
func (a *App) executeSetCommand(args []string, rest string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("usage: set <attribute> [value]")
	}
	attr := args[0]
	value, err := editor.ParseAttribute(attr, strings.TrimSpace(strings.TrimPrefix(rest, attr)))
	if err != nil {
		return "", a.apply("set "+attr, func() error { return err })
	}
	return "", a.setAttribute(attr, value)
}

// executeFieldCommand handles :field <attribute> <value> on the selected field
func (a *App) executeFieldCommand(args []string, rest string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("usage: field <attribute> <value>")
	}
	attr := strings.ToLower(args[0])
	raw := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))

	var value any = raw
	switch attr {
	case editor.AttrRequired, editor.AttrVisible:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", fmt.Errorf("%s must be true or false", attr)
		}
		value = b
	case editor.AttrOptions:
		value = splitOptions(raw)
	}
	return "", a.updateField(attr, value)
}

// executeLogoCommand handles :logo <path> and :logo clear
func (a *App) executeLogoCommand(path string) (string, error) {
	switch path {
	case "":
		return "", errors.New("usage: logo <path> | logo clear")
	case "clear", "none":
		return "logo removed", a.apply("logo", func() error { return a.sess.SetLogo(nil) })
	}
	url, err := editor.LoadLogo(a.ctx, expandHome(path))
	if err != nil {
		return "", err
	}
	return "logo updated", a.setAttribute("logo", url)
}

func (a *App) executePresetsCommand() (string, error) {
	if a.presets == nil {
		return "", errNoPresets
	}
	names, err := a.presets.ListPresets(a.ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "no presets found", nil
	}
	return "presets: " + strings.Join(names, ", "), nil
}

// executePresetCommand replaces the theme with a named preset
func (a *App) executePresetCommand(name string) (string, error) {
	if a.presets == nil {
		return "", errNoPresets
	}
	if name == "" {
		return "", errors.New("usage: preset <name>")
	}
	preset, err := a.presets.LoadPreset(a.ctx, name)
	if err != nil {
		return "", err
	}
	a.selected = 0
	err = a.apply("preset", func() error {
		return a.sess.Apply(func(schema.ThemeConfig) (schema.ThemeConfig, error) {
			return preset, nil
		})
	})
	if err != nil {
		return "", err
	}
	return "applied preset " + name, nil
}

func (a *App) executeSavePresetCommand(name string) (string, error) {
	if a.presets == nil {
		return "", errNoPresets
	}
	if name == "" {
		return "", errors.New("usage: save-preset <name>")
	}
	if err := a.presets.SavePreset(a.ctx, name, a.sess.Theme()); err != nil {
		return "", err
	}
	return "saved preset " + name, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
