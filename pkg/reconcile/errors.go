package reconcile

import (
	"errors"
	"fmt"
)

// Sentinel errors for reconciliation failures.
var (
	// ErrRenderFailed is returned when a behavior's render function fails
	// or returns something that is not a usable element.
	ErrRenderFailed = errors.New("reconcile: render failed")

	// ErrSetStateDuringRender is returned when an instance's state is set
	// while a pass is reconciling the root it belongs to, including while
	// the instance renders itself.
	ErrSetStateDuringRender = errors.New("reconcile: state set during render")

	// ErrUnmounted is returned when state is set on an instance that is not mounted.
	ErrUnmounted = errors.New("reconcile: instance not mounted")

	// ErrNotComposite is returned when state is set on a host instance.
	ErrNotComposite = errors.New("reconcile: instance is not a composite")

	// ErrUnknownRoot is returned when a target has no root mounted by this engine.
	ErrUnknownRoot = errors.New("reconcile: unknown root")

	// ErrNilTarget is returned when a nil rendering target is passed.
	ErrNilTarget = errors.New("reconcile: nil target")
)

// RenderError reports a failed behavior render.
// It matches both ErrRenderFailed and the underlying cause.
type RenderError struct {
	Behavior string // Behavior name
	Err      error  // Underlying error
}

// Error returns the error message with context.
func (e *RenderError) Error() string {
	return fmt.Sprintf("reconcile: render %s: %v", e.Behavior, e.Err)
}

// Unwrap returns the sentinel and the underlying error.
func (e *RenderError) Unwrap() []error {
	return []error{ErrRenderFailed, e.Err}
}
