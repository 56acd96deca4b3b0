package sysquery

import (
	"errors"
	"fmt"
)

// Action and collection failures are classified so callers can tell a benign
// race from a real denial. Only these surface to the presentation layer.
var (
	// ErrPermissionDenied is returned for mutating actions without
	// sufficient privilege.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a mutation target vanished between
	// selection and execution. The end state matches intent, so this is
	// reported distinctly from a true failure.
	ErrNotFound = errors.New("target no longer exists")

	// ErrTransitionTimeout is returned when a service control request was
	// issued but the reported status did not settle within the bound.
	ErrTransitionTimeout = errors.New("state transition timed out")

	// ErrAlreadyTransitioning is returned when a toggle finds the service
	// mid-transition and issues no control request at all. Benign: the
	// service is on its way to a settled state already.
	ErrAlreadyTransitioning = errors.New("service is already transitioning")
)

// CollectorError wraps a whole-collection failure for one resource kind.
// It is absorbed at the cache boundary: the previous snapshot stays published,
// marked stale, and the collection is retried on the next tick.
type CollectorError struct {
	Kind Kind
	Err  error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("%s collection failed: %v", e.Kind, e.Err)
}

func (e *CollectorError) Unwrap() error { return e.Err }
