// Package persist keeps a remote theme store in step with rapid local edits.
//
// A Sequencer owns one worker goroutine and a single pending slot. Submit
// replaces whatever snapshot is waiting, so a burst of edits collapses into
// one save of the newest state. Every snapshot carries a revision that only
// grows, which lets the store refuse a write older than the one it holds.
package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ajramos/formsmith/internal/schema"
)

// DefaultSavedHold is how long the Saved state is shown before returning to Idle
const DefaultSavedHold = 1200 * time.Millisecond

// Saver durably stores a theme snapshot. Implementations should ignore a
// revision lower than the one they already hold.
type Saver interface {
	SaveTheme(ctx context.Context, revision uint64, theme schema.ThemeConfig) error
}

// SaverFunc adapts a function to Saver
type SaverFunc func(ctx context.Context, revision uint64, theme schema.ThemeConfig) error

func (f SaverFunc) SaveTheme(ctx context.Context, revision uint64, theme schema.ThemeConfig) error {
	return f(ctx, revision, theme)
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithBaseRevision makes the first submitted revision base+1
func WithBaseRevision(base uint64) Option {
	return func(s *Sequencer) {
		s.submitted = base
		s.attempted = base
		s.acked = base
	}
}

// WithSavedHold sets how long Saved is held before Idle. Zero disables the auto-clear.
func WithSavedHold(d time.Duration) Option {
	return func(s *Sequencer) { s.hold = d }
}

// WithLogger sets the logger used for save outcomes
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

type job struct {
	revision uint64
	theme    schema.ThemeConfig
}

// Sequencer serializes theme saves in submission order
type Sequencer struct {
	saver  Saver
	logger zerolog.Logger
	hold   time.Duration

	mu        sync.Mutex
	pending   *job
	submitted uint64
	attempted uint64
	acked     uint64
	status    Status
	listeners []func(Status)
	progress  chan struct{}
	holdTimer *time.Timer
	started   bool
	closed    bool

	notifyMu sync.Mutex
	wake     chan struct{}
	done     chan struct{}
}

// NewSequencer creates a sequencer. Call Start to begin saving.
func NewSequencer(saver Saver, opts ...Option) *Sequencer {
	s := &Sequencer{
		saver:    saver,
		logger:   zerolog.Nop(),
		hold:     DefaultSavedHold,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the worker. Saves run with ctx; cancelling it stops the
// worker without draining.
func (s *Sequencer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.run(ctx)
}

// Submit records theme as the desired stored state and returns its revision.
// It never blocks on the store.
func (s *Sequencer) Submit(theme schema.ThemeConfig) uint64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn().Msg("theme submitted after sequencer close, dropped")
		return 0
	}
	s.submitted++
	rev := s.submitted
	if s.pending != nil {
		s.logger.Debug().Uint64("dropped", s.pending.revision).Uint64("revision", rev).Msg("coalescing pending save")
	}
	s.pending = &job{revision: rev, theme: theme.Clone()}
	s.mu.Unlock()

	s.signal()
	return rev
}

// Flush waits until the latest submitted revision has been attempted.
func (s *Sequencer) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		target := s.submitted
		if s.attempted >= target {
			s.mu.Unlock()
			return nil
		}
		progress := s.progress
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			s.mu.Lock()
			attempted := s.attempted
			s.mu.Unlock()
			if attempted >= target {
				return nil
			}
			return ErrClosed
		case <-progress:
		}
	}
}

// Close stops accepting snapshots, waits for the pending one to be saved and
// stops the worker. A sequencer that was never started closes immediately.
func (s *Sequencer) Close() {
	s.mu.Lock()
	started := s.started
	if s.closed {
		s.mu.Unlock()
		if started {
			<-s.done
		}
		return
	}
	s.closed = true
	if s.holdTimer != nil {
		s.holdTimer.Stop()
	}
	s.mu.Unlock()

	if !started {
		close(s.done)
		return
	}
	s.signal()
	<-s.done
}

// OnStatus registers a callback for status transitions. Callbacks run one at
// a time and in transition order, off the caller's goroutine.
func (s *Sequencer) OnStatus(fn func(Status)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Status returns the current status
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Acknowledged returns the highest revision the saver accepted
func (s *Sequencer) Acknowledged() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acked
}

// Submitted returns the revision of the latest snapshot
func (s *Sequencer) Submitted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

func (s *Sequencer) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sequencer) run(ctx context.Context) {
	defer close(s.done)
	for {
		for {
			j, closing := s.take()
			if j == nil {
				if closing {
					return
				}
				break
			}
			if ctx.Err() != nil {
				return
			}
			s.save(ctx, j)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
	}
}

func (s *Sequencer) take() (*job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.pending
	s.pending = nil
	return j, s.closed
}

func (s *Sequencer) save(ctx context.Context, j *job) {
	s.setStatus(Status{State: Saving, Revision: j.revision})

	err := s.saver.SaveTheme(ctx, j.revision, j.theme)

	s.mu.Lock()
	if err == nil && j.revision > s.acked {
		s.acked = j.revision
	}
	more := s.pending != nil
	s.mu.Unlock()

	switch {
	case err != nil:
		err = fmt.Errorf("%w: revision %d: %w", ErrPersistence, j.revision, err)
		s.logger.Error().Err(err).Uint64("revision", j.revision).Msg("theme save failed")
		s.setStatus(Status{State: Failed, Revision: j.revision, Err: err})
	case more:
		// the next save reports Saving right away
		s.logger.Debug().Uint64("revision", j.revision).Msg("theme saved")
	default:
		s.logger.Debug().Uint64("revision", j.revision).Msg("theme saved")
		s.setStatus(Status{State: Saved, Revision: j.revision})
		s.scheduleIdle(j.revision)
	}

	// Flush returns only once the outcome has been reported
	s.mu.Lock()
	if j.revision > s.attempted {
		s.attempted = j.revision
	}
	close(s.progress)
	s.progress = make(chan struct{})
	s.mu.Unlock()
}

func (s *Sequencer) scheduleIdle(revision uint64) {
	if s.hold <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.holdTimer != nil {
		s.holdTimer.Stop()
	}
	s.holdTimer = time.AfterFunc(s.hold, func() {
		s.transition(Status{State: Idle, Revision: revision}, func(cur Status) bool {
			return cur.State == Saved && cur.Revision == revision
		})
	})
}

func (s *Sequencer) setStatus(st Status) {
	s.transition(st, nil)
}

// transition sets the status when allow accepts the current one
func (s *Sequencer) transition(st Status, allow func(Status) bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if allow != nil && !allow(s.status) {
		s.mu.Unlock()
		return
	}
	s.status = st
	listeners := append([]func(Status){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
