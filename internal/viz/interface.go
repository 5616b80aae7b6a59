// Package viz provides the audio-reactive visual effects and the manager
// that owns them. Effects consume one AudioSnapshot per frame and draw one
// frame into an offscreen surface; presentation glue (window chrome, theme,
// blitting) lives entirely outside this package.
package viz

import (
	"context"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// State is the lifecycle state of a visualizer.
type State int

// Lifecycle states. Disposed is terminal.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDisposed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Visualizer is the capability interface every effect implements.
// Shared helpers (FPS tracking, beat detection, decay models) are composed
// utilities, not inherited state.
//
// Initialize is the only blocking call and must leave the effect Ready or
// return an error. Update must be cheap and non-blocking; Render draws
// exactly one frame synchronously into the surface handed to Initialize.
// Resize may be called any number of times while Ready. Dispose is
// idempotent; after it, Update and Render are no-ops.
type Visualizer interface {
	Initialize(ctx context.Context, surface Surface) error
	Update(snapshot domain.AudioSnapshot)
	Render()
	Resize(width, height int)
	SetDemoMode(enabled bool)
	Dispose()
}

// Factory constructs a fresh effect instance.
// The manager calls it on every switch; instances are never reused after
// Dispose.
type Factory func() Visualizer
