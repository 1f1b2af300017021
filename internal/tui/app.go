// Package tui is the terminal theme editor: a field list, attribute forms and a
// live preview of the widget, all driven by one editing session.
package tui

import (
	"context"
	"sync/atomic"

	"github.com/derailed/tview"
	"github.com/rs/zerolog"

	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/editor"
	"github.com/ajramos/formsmith/internal/persist"
	"github.com/ajramos/formsmith/internal/render"
	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/services"
	"github.com/ajramos/formsmith/internal/session"
)

// Editor is the part of a session the terminal editor drives
type Editor interface {
	Theme() schema.ThemeConfig
	Apply(fn func(schema.ThemeConfig) (schema.ThemeConfig, error)) error
	AddField() error
	RemoveField(index int) error
	UpdateField(index int, attribute string, value any) error
	MoveField(index int, dir editor.Direction) error
	Set(attribute string, value any) error
	SetLogo(data []byte) error
	Reset() error
	Subscribe(name string, callback session.ThemeUpdateCallback) error
	Unsubscribe(name string)
	OnStatus(fn func(persist.Status))
	Status() persist.Status
}

// Options configures the editor UI
type Options struct {
	Colors       config.ColorsConfig
	PreviewWidth int
	// Presets is optional; preset commands are refused without it
	Presets services.PresetService
	Logger  zerolog.Logger
}

// App encapsulates the terminal UI and the editing session
type App struct {
	*tview.Application
	ctx     context.Context
	sess    Editor
	presets services.PresetService
	colors  config.ColorsConfig
	logger  zerolog.Logger

	previewWidth int

	views  map[string]tview.Primitive
	status *StatusBar

	fieldList *tview.List
	fieldForm *fieldForm
	themeForm *themeForm
	preview   *tview.TextView

	// selected is the index of the field shown in the field form
	selected int
	// syncing is set while views are filled from the session so that their
	// change handlers do not feed the values back
	syncing bool

	// Command system (k9s style)
	cmdMode         bool
	cmdHistory      []string
	cmdHistoryIndex int

	running  atomic.Bool
	detached atomic.Bool
}

// subscriber names used with the session
const (
	componentFields  = "tui.fields"
	componentTheme   = "tui.theme"
	componentPreview = "tui.preview"
)

// NewApp builds the editor around sess. The session must stay open while the
// app runs.
func NewApp(ctx context.Context, sess Editor, opts Options) (*App, error) {
	if opts.PreviewWidth < render.MinTextWidth {
		opts.PreviewWidth = render.MinTextWidth
	}
	app := &App{
		Application:     tview.NewApplication(),
		ctx:             ctx,
		sess:            sess,
		presets:         opts.Presets,
		colors:          opts.Colors,
		logger:          opts.Logger,
		previewWidth:    opts.PreviewWidth,
		views:           make(map[string]tview.Primitive),
		cmdHistory:      make([]string, 0),
		cmdHistoryIndex: -1,
	}

	app.initComponents()
	app.bindKeys()

	// Components get the current theme right away
	if err := sess.Subscribe(componentFields, app.refreshFields); err != nil {
		return nil, err
	}
	if err := sess.Subscribe(componentTheme, app.refreshThemeForm); err != nil {
		return nil, err
	}
	if err := sess.Subscribe(componentPreview, app.refreshPreview); err != nil {
		return nil, err
	}
	app.status.Update(sess.Status())
	sess.OnStatus(app.onStatus)

	return app, nil
}

// Run starts the event loop and blocks until the app stops
func (a *App) Run() error {
	a.running.Store(true)
	defer a.running.Store(false)
	a.focusPane(paneFields)
	return a.Application.Run()
}

// Detach unregisters the app from the session. The session stays open.
func (a *App) Detach() {
	a.sess.Unsubscribe(componentFields)
	a.sess.Unsubscribe(componentTheme)
	a.sess.Unsubscribe(componentPreview)
	a.detached.Store(true)
}

// onStatus runs on the persistence worker, so views are updated through the
// event loop
func (a *App) onStatus(st persist.Status) {
	if st.Err != nil {
		a.logger.Warn().Err(st.Err).Uint64("revision", st.Revision).Msg("theme save failed")
	}
	if !a.running.Load() || a.detached.Load() {
		return
	}
	a.QueueUpdateDraw(func() {
		a.status.Update(st)
	})
}

// apply runs one edit and reports a rejected edit in the status bar.
// Views refresh through the session subscription.
func (a *App) apply(op string, edit func() error) error {
	if err := edit(); err != nil {
		a.logger.Debug().Err(err).Str("op", op).Msg("edit rejected")
		a.status.ShowMessage(err.Error(), LogLevelError)
		// put back what the operator typed over
		theme := a.sess.Theme()
		_ = a.refreshFields(theme)
		_ = a.refreshThemeForm(theme)
		return err
	}
	a.status.ClearMessage()
	return nil
}

func (a *App) panes() []tview.Primitive {
	return []tview.Primitive{a.fieldList, a.fieldForm, a.themeForm}
}

func (a *App) highlightPane(focused int) {
	for i, box := range []*tview.Box{a.fieldList.Box, a.fieldForm.Box, a.themeForm.Box} {
		color := a.colors.Frame.BorderColor.Color()
		if i == focused {
			color = a.colors.Frame.FocusColor.Color()
		}
		box.SetBorderColor(color)
	}
}
