package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a field index does not address an existing field
	ErrIndexOutOfRange = errors.New("field index out of range")
	// ErrInvalidFieldValue is returned when a value has the wrong type or shape for its attribute
	ErrInvalidFieldValue = errors.New("invalid field value")
	// ErrDuplicateFieldName is returned when a rename would collide with another field
	ErrDuplicateFieldName = fmt.Errorf("%w: duplicate field name", ErrInvalidFieldValue)
)

// Error describes a rejected edit. Index is -1 for theme-level attributes,
// unless Err is ErrIndexOutOfRange and Index is the rejected index.
type Error struct {
	Op        string
	Index     int
	Attribute string
	Err       error
}

func newError(op string, index int, attribute string, err error) error {
	return &Error{Op: op, Index: index, Attribute: attribute, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Index < 0 && errors.Is(e.Err, ErrIndexOutOfRange):
		return fmt.Sprintf("%s fields[%d]: %v", e.Op, e.Index, e.Err)
	case e.Index >= 0 && e.Attribute != "":
		return fmt.Sprintf("%s fields[%d].%s: %v", e.Op, e.Index, e.Attribute, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("%s fields[%d]: %v", e.Op, e.Index, e.Err)
	case e.Attribute != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Attribute, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap exposes the underlying sentinel.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
