package element

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed element trees.
var (
	// ErrInvalidElement is returned when a value used as an element has no
	// recognizable type or property bag.
	ErrInvalidElement = errors.New("element: invalid element")

	// ErrUnsupportedChild is returned when a child is neither an element,
	// a scalar, nor a sequence of those.
	ErrUnsupportedChild = errors.New("element: unsupported child")

	// ErrDuplicateKey is returned when two siblings resolve to the same key.
	ErrDuplicateKey = errors.New("element: duplicate key")
)

// Error wraps an element error with the offending value.
type Error struct {
	Op    string // Operation that failed
	Key   string // Sibling key, when known
	Value any    // Offending value
	Err   error  // Underlying error
}

// Error returns the error message with context.
func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%v (%s: %T)", e.Err, e.Op, e.Value)
	}
	return fmt.Sprintf("%v (%s: key %q: %T)", e.Err, e.Op, e.Key, e.Value)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
