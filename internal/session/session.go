// Package session holds the theme an operator is editing. It applies editor
// operations, notifies registered components and hands every new state to a
// persistence sequencer.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ajramos/formsmith/internal/editor"
	"github.com/ajramos/formsmith/internal/persist"
	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/style"
)

// ErrClosed is returned by mutations after Close
var ErrClosed = errors.New("session closed")

// Loader fetches the stored theme and its revision. An owner that never saved
// gets the default theme and revision zero.
type Loader interface {
	LoadTheme(ctx context.Context) (schema.ThemeConfig, uint64, error)
}

// ThemeUpdateCallback is called with the new theme after every change
type ThemeUpdateCallback func(schema.ThemeConfig) error

type registration struct {
	name     string
	callback ThemeUpdateCallback
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithSavedHold sets how long the saved state is shown before idle
func WithSavedHold(d time.Duration) Option {
	return func(s *Session) { s.hold = &d }
}

// Session is one operator's editing context
type Session struct {
	logger zerolog.Logger
	hold   *time.Duration
	seq    *persist.Sequencer
	cancel context.CancelFunc

	// notifyMu keeps notifications in mutation order
	notifyMu sync.Mutex

	mu         sync.Mutex
	theme      schema.ThemeConfig
	style      style.ResolvedStyle
	components []registration
	closed     bool
}

// Open loads the owner's theme and starts persisting changes through saver.
// The session outlives ctx; call Close to stop it.
func Open(ctx context.Context, loader Loader, saver persist.Saver, opts ...Option) (*Session, error) {
	s := &Session{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	theme, revision, err := loader.LoadTheme(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}
	s.theme = schema.Validate(theme)
	s.style = style.Resolve(s.theme)

	seqOpts := []persist.Option{
		persist.WithBaseRevision(revision),
		persist.WithLogger(s.logger),
	}
	if s.hold != nil {
		seqOpts = append(seqOpts, persist.WithSavedHold(*s.hold))
	}
	s.seq = persist.NewSequencer(saver, seqOpts...)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.seq.Start(runCtx)

	s.logger.Info().Uint64("revision", revision).Int("fields", len(s.theme.Fields)).Msg("session opened")
	return s, nil
}

// Theme returns a copy of the current theme
func (s *Session) Theme() schema.ThemeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme.Clone()
}

// Style returns the resolved style of the current theme
func (s *Session) Style() style.ResolvedStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// Apply replaces the theme with the result of fn. On error the theme is left
// as it was. Registered components are notified before Apply returns; they must
// not call Apply themselves.
func (s *Session) Apply(fn func(schema.ThemeConfig) (schema.ThemeConfig, error)) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	next, err := fn(s.theme.Clone())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next = schema.Validate(next)
	s.theme = next
	s.style = style.Resolve(next)
	components := append([]registration(nil), s.components...)
	s.mu.Unlock()

	rev := s.seq.Submit(next)
	s.logger.Debug().Uint64("revision", rev).Msg("theme changed")

	if err := notify(components, next); err != nil {
		s.logger.Warn().Err(err).Msg("component update failed")
	}
	return nil
}

// AddField appends a new text field
func (s *Session) AddField() error {
	return s.Apply(func(t schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.AddField(t), nil
	})
}

// RemoveField deletes the field at index
func (s *Session) RemoveField(index int) error {
	return s.Apply(func(t schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.RemoveField(t, index)
	})
}

// UpdateField sets one attribute of the field at index
func (s *Session) UpdateField(index int, attribute string, value any) error {
	return s.Apply(func(t schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.UpdateField(t, index, attribute, value)
	})
}

// MoveField swaps the field at index with its neighbour
func (s *Session) MoveField(index int, dir editor.Direction) error {
	return s.Apply(func(t schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.MoveField(t, index, dir)
	})
}

// Set changes a theme-level attribute
func (s *Session) Set(attribute string, value any) error {
	return s.Apply(func(t schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.SetAttribute(t, attribute, value)
	})
}

// SetLogo embeds image data as the logo; empty data removes it
func (s *Session) SetLogo(data []byte) error {
	return s.Apply(func(t schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.SetLogo(t, data)
	})
}

// Reset restores the default theme
func (s *Session) Reset() error {
	return s.Apply(func(schema.ThemeConfig) (schema.ThemeConfig, error) {
		return editor.Reset(), nil
	})
}

// Subscribe registers a component for theme updates. It is called right away
// with the current theme. Registering a name again replaces its callback.
func (s *Session) Subscribe(name string, callback ThemeUpdateCallback) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.removeLocked(name)
	s.components = append(s.components, registration{name: name, callback: callback})
	current := s.theme.Clone()
	s.mu.Unlock()

	if err := callback(current); err != nil {
		return fmt.Errorf("failed to apply current theme to component '%s': %w", name, err)
	}
	return nil
}

// Unsubscribe removes a component
func (s *Session) Unsubscribe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

func (s *Session) removeLocked(name string) {
	for i, c := range s.components {
		if c.name == name {
			s.components = append(s.components[:i], s.components[i+1:]...)
			return
		}
	}
}

// OnStatus registers a callback for save status transitions
func (s *Session) OnStatus(fn func(persist.Status)) {
	s.seq.OnStatus(fn)
}

// Status returns the current save status
func (s *Session) Status() persist.Status {
	return s.seq.Status()
}

// Revision returns the latest revision the store acknowledged
func (s *Session) Revision() uint64 {
	return s.seq.Acknowledged()
}

// Close stops accepting changes and waits, bounded by ctx, for the last one to
// be saved. It reports the error of a final save that failed.
func (s *Session) Close(ctx context.Context) error {
	// an Apply in progress submits before the flush below
	s.notifyMu.Lock()
	s.mu.Lock()
	wasClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	s.notifyMu.Unlock()
	if wasClosed {
		return nil
	}

	err := s.seq.Flush(ctx)
	if err != nil {
		// give up on the in-flight save so the worker exits
		s.cancel()
	}
	s.seq.Close()
	s.cancel()

	if err == nil {
		if st := s.seq.Status(); st.State == persist.Failed {
			err = st.Err
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("session closed with unsaved changes")
		return err
	}
	s.logger.Info().Uint64("revision", s.seq.Acknowledged()).Msg("session closed")
	return nil
}

func notify(components []registration, theme schema.ThemeConfig) error {
	var errs []string
	for _, c := range components {
		if err := c.callback(theme.Clone()); err != nil {
			errs = append(errs, fmt.Sprintf("component '%s': %v", c.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("theme update errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
