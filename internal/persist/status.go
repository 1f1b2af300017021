package persist

import (
	"errors"
	"fmt"
)

// ErrPersistence marks a failed save
var ErrPersistence = errors.New("persistence failed")

// ErrClosed is returned when waiting on a sequencer that has stopped
var ErrClosed = errors.New("sequencer closed")

// State of the save pipeline as shown to the operator
type State int

const (
	Idle State = iota
	Saving
	Saved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is delivered to OnStatus callbacks on every transition.
// Err is set only in the Failed state and wraps ErrPersistence.
type Status struct {
	State    State
	Revision uint64
	Err      error
}

func (s Status) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s rev=%d: %v", s.State, s.Revision, s.Err)
	}
	return fmt.Sprintf("%s rev=%d", s.State, s.Revision)
}
