// Package domain defines domain-specific errors.
// These errors represent engine failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that the engine can return.
var (
	// ErrPlatformUnsupported is returned when the audio analysis primitive is
	// unavailable. Fatal to the analyzer that reported it.
	ErrPlatformUnsupported = errors.New("audio analysis primitive unavailable")

	// ErrUnknownVisualizer is returned when a switch targets an id that is
	// not registered (or has been permanently disabled).
	ErrUnknownVisualizer = errors.New("unknown visualizer")

	// ErrTransitionInProgress is returned when a switch is requested while
	// another switch has not yet settled. The request is dropped, not queued.
	ErrTransitionInProgress = errors.New("visualizer transition in progress")

	// ErrNotInitialized is returned when an operation is attempted on an
	// uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrAlreadyInitialized is returned when attempting to initialize an
	// already initialized component.
	ErrAlreadyInitialized = errors.New("component already initialized")

	// ErrVisualizerDisposed is returned when a lifecycle call reaches a
	// visualizer that has already been disposed.
	ErrVisualizerDisposed = errors.New("visualizer disposed")

	// ErrUnsupportedFormat is returned when an audio source file format is
	// not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrSourceClosed is returned when reading from a closed audio source.
	ErrSourceClosed = errors.New("audio source closed")
)

// InitializationError wraps a failure of a visualizer's Initialize call.
// The manager counts these per id and permanently deregisters a visualizer
// after three failed attempts.
type InitializationError struct {
	ID      string // Visualizer id that failed
	Attempt int    // 1-based failure count for this id
	Err     error  // Underlying error (or recovered panic)
}

// Error implements the error interface.
func (e *InitializationError) Error() string {
	return fmt.Sprintf("visualizer %q failed to initialize (attempt %d): %v", e.ID, e.Attempt, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitializationError) Unwrap() error {
	return e.Err
}

// NewInitializationError creates a new InitializationError.
func NewInitializationError(id string, attempt int, err error) *InitializationError {
	return &InitializationError{
		ID:      id,
		Attempt: attempt,
		Err:     err,
	}
}

// SourceError represents an error from an audio source adapter.
type SourceError struct {
	Op   string // Operation that failed (e.g., "open", "decode", "read")
	Path string // File path (if applicable)
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("audio source %s failed for '%s': %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("audio source %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, path string, err error) *SourceError {
	return &SourceError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
