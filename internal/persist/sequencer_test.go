package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ajramos/formsmith/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeStore keeps only the highest revision it has seen and can hold saves
// until released.
type fakeStore struct {
	mu       sync.Mutex
	revision uint64
	theme    schema.ThemeConfig
	calls    []uint64
	inFlight int
	maxInFl  int

	gate    chan struct{}
	entered chan uint64
	fail    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entered: make(chan uint64, 64)}
}

func (f *fakeStore) SaveTheme(ctx context.Context, revision uint64, theme schema.ThemeConfig) error {
	f.mu.Lock()
	f.calls = append(f.calls, revision)
	f.inFlight++
	if f.inFlight > f.maxInFl {
		f.maxInFl = f.inFlight
	}
	gate, fail := f.gate, f.fail
	f.mu.Unlock()

	f.entered <- revision
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if fail != nil {
		return fail
	}
	if revision > f.revision {
		f.revision = revision
		f.theme = theme
	}
	return nil
}

func (f *fakeStore) snapshot() (uint64, schema.ThemeConfig, []uint64, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revision, f.theme, append([]uint64(nil), f.calls...), f.maxInFl
}

func themeWithHeader(text string) schema.ThemeConfig {
	th := schema.Default()
	th.HeaderText = text
	return th
}

func TestSequencer_ConvergesToLatestSubmission(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.gate = make(chan struct{})
	seq := NewSequencer(store, WithSavedHold(0))
	seq.Start(context.Background())
	defer seq.Close()

	assert.Equal(t, uint64(1), seq.Submit(themeWithHeader("A")))
	require.Equal(t, uint64(1), <-store.entered)

	// edits made while the first save is in flight collapse into one save
	seq.Submit(themeWithHeader("B"))
	seq.Submit(themeWithHeader("C"))
	assert.Equal(t, uint64(4), seq.Submit(themeWithHeader("D")))

	close(store.gate)
	require.NoError(t, seq.Flush(context.Background()))

	rev, theme, calls, maxInFlight := store.snapshot()
	assert.Equal(t, uint64(4), rev)
	assert.Equal(t, "D", theme.HeaderText)
	assert.Equal(t, []uint64{1, 4}, calls)
	assert.Equal(t, 1, maxInFlight)
	assert.Equal(t, uint64(4), seq.Acknowledged())
}

func TestSequencer_ResumesAboveBaseRevision(t *testing.T) {
	defer goleak.VerifyNone(t)

	// the store already holds revision 5 from an earlier session
	store := newFakeStore()
	store.revision = 5
	store.theme = themeWithHeader("stored")

	seq := NewSequencer(store, WithBaseRevision(5), WithSavedHold(0))
	seq.Start(context.Background())
	defer seq.Close()

	assert.Equal(t, uint64(6), seq.Submit(themeWithHeader("first")))
	require.NoError(t, seq.Flush(context.Background()))
	assert.Equal(t, uint64(7), seq.Submit(themeWithHeader("second")))
	require.NoError(t, seq.Flush(context.Background()))

	rev, theme, calls, _ := store.snapshot()
	assert.Equal(t, []uint64{6, 7}, calls)
	assert.Equal(t, uint64(7), rev)
	assert.Equal(t, "second", theme.HeaderText)
	assert.Equal(t, uint64(7), seq.Acknowledged())
}

func TestSequencer_SubmitDoesNotAliasTheme(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	seq := NewSequencer(store, WithSavedHold(0))

	theme := themeWithHeader("before")
	seq.Submit(theme)
	theme.Fields[0].Label = "mutated"

	seq.Start(context.Background())
	require.NoError(t, seq.Flush(context.Background()))
	seq.Close()

	_, saved, _, _ := store.snapshot()
	assert.Equal(t, "Name", saved.Fields[0].Label)
}

func TestSequencer_StatusTransitions(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	seq := NewSequencer(store, WithSavedHold(20*time.Millisecond))

	var mu sync.Mutex
	var states []State
	seq.OnStatus(func(s Status) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})

	seq.Start(context.Background())
	seq.Submit(schema.Default())
	require.NoError(t, seq.Flush(context.Background()))

	require.Eventually(t, func() bool {
		return seq.Status().State == Idle
	}, time.Second, 5*time.Millisecond)
	seq.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Saving, Saved, Idle}, states)
}

func TestSequencer_FailureIsReportedAndNextSubmitResends(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("store offline")
	store := newFakeStore()
	store.fail = boom
	seq := NewSequencer(store, WithSavedHold(0))

	var mu sync.Mutex
	var failed Status
	seq.OnStatus(func(s Status) {
		if s.State == Failed {
			mu.Lock()
			failed = s
			mu.Unlock()
		}
	})

	seq.Start(context.Background())
	defer seq.Close()

	seq.Submit(themeWithHeader("lost"))
	require.NoError(t, seq.Flush(context.Background()))

	mu.Lock()
	assert.Equal(t, Failed, failed.State)
	assert.ErrorIs(t, failed.Err, ErrPersistence)
	assert.ErrorIs(t, failed.Err, boom)
	mu.Unlock()
	assert.Equal(t, uint64(0), seq.Acknowledged())

	store.mu.Lock()
	store.fail = nil
	store.mu.Unlock()

	seq.Submit(themeWithHeader("recovered"))
	require.NoError(t, seq.Flush(context.Background()))

	rev, theme, _, _ := store.snapshot()
	assert.Equal(t, uint64(2), rev)
	assert.Equal(t, "recovered", theme.HeaderText)
	assert.Equal(t, Saved, seq.Status().State)
}

func TestSequencer_BaseRevision(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	seq := NewSequencer(store, WithBaseRevision(41), WithSavedHold(0))
	seq.Start(context.Background())

	assert.Equal(t, uint64(42), seq.Submit(schema.Default()))
	require.NoError(t, seq.Flush(context.Background()))
	seq.Close()

	assert.Equal(t, uint64(42), seq.Acknowledged())
}

func TestSequencer_CloseDrainsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.gate = make(chan struct{})
	seq := NewSequencer(store, WithSavedHold(0))
	seq.Start(context.Background())

	seq.Submit(themeWithHeader("first"))
	<-store.entered
	seq.Submit(themeWithHeader("last"))

	closed := make(chan struct{})
	go func() {
		seq.Close()
		close(closed)
	}()
	close(store.gate)
	<-closed

	rev, theme, _, _ := store.snapshot()
	assert.Equal(t, uint64(2), rev)
	assert.Equal(t, "last", theme.HeaderText)
	assert.Equal(t, uint64(0), seq.Submit(schema.Default()))
}

func TestSequencer_FlushHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	seq := NewSequencer(store, WithSavedHold(0))
	seq.Start(ctx)

	seq.Submit(schema.Default())
	<-store.entered

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer flushCancel()
	assert.ErrorIs(t, seq.Flush(flushCtx), context.DeadlineExceeded)

	// cancelling the run context unblocks the in-flight save and stops the worker
	cancel()
	seq.Close()
}

func TestSequencer_CloseWithoutStart(t *testing.T) {
	seq := NewSequencer(newFakeStore())
	seq.Close()
	seq.Close()
	seq.Start(context.Background())

	assert.NoError(t, seq.Flush(context.Background()))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "saving", Saving.String())
	assert.Equal(t, "saved", Saved.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
