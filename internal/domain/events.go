// Package domain defines events for the event-driven architecture.
// Events decouple the engine from presentation glue: the manager publishes,
// the UI shell subscribes.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Visualizer lifecycle events
	EventVisualizerSwitched     EventType = "visualizer.switched"
	EventVisualizerSwitchFailed EventType = "visualizer.switch_failed"
	EventVisualizerDisabled     EventType = "visualizer.disabled"

	// Engine events
	EventDemoModeChanged EventType = "engine.demo_mode_changed"
	EventSurfaceResized  EventType = "engine.surface_resized"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// VisualizerSwitchedEvent is published when a switch completes successfully.
type VisualizerSwitchedEvent struct {
	baseEvent
	Info       VisualizerInfo
	PreviousID string // Empty when no visualizer was active before
}

// Type returns the event type.
func (e VisualizerSwitchedEvent) Type() EventType {
	return EventVisualizerSwitched
}

// NewVisualizerSwitchedEvent creates a new VisualizerSwitchedEvent.
func NewVisualizerSwitchedEvent(info VisualizerInfo, previousID string) VisualizerSwitchedEvent {
	return VisualizerSwitchedEvent{
		baseEvent:  newBaseEvent(),
		Info:       info,
		PreviousID: previousID,
	}
}

// VisualizerSwitchFailedEvent is published when a visualizer fails to
// initialize during a switch.
type VisualizerSwitchFailedEvent struct {
	baseEvent
	ID      string
	Attempt int
	Error   error
}

// Type returns the event type.
func (e VisualizerSwitchFailedEvent) Type() EventType {
	return EventVisualizerSwitchFailed
}

// NewVisualizerSwitchFailedEvent creates a new VisualizerSwitchFailedEvent.
func NewVisualizerSwitchFailedEvent(id string, attempt int, err error) VisualizerSwitchFailedEvent {
	return VisualizerSwitchFailedEvent{
		baseEvent: newBaseEvent(),
		ID:        id,
		Attempt:   attempt,
		Error:     err,
	}
}

// VisualizerDisabledEvent is published when a visualizer is permanently
// deregistered after repeated initialization failures.
type VisualizerDisabledEvent struct {
	baseEvent
	ID       string
	Failures int
}

// Type returns the event type.
func (e VisualizerDisabledEvent) Type() EventType {
	return EventVisualizerDisabled
}

// NewVisualizerDisabledEvent creates a new VisualizerDisabledEvent.
func NewVisualizerDisabledEvent(id string, failures int) VisualizerDisabledEvent {
	return VisualizerDisabledEvent{
		baseEvent: newBaseEvent(),
		ID:        id,
		Failures:  failures,
	}
}

// DemoModeChangedEvent is published when demo mode is toggled.
type DemoModeChangedEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e DemoModeChangedEvent) Type() EventType {
	return EventDemoModeChanged
}

// NewDemoModeChangedEvent creates a new DemoModeChangedEvent.
func NewDemoModeChangedEvent(enabled bool) DemoModeChangedEvent {
	return DemoModeChangedEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// SurfaceResizedEvent is published when the rendering surface changes size.
type SurfaceResizedEvent struct {
	baseEvent
	Width  int
	Height int
}

// Type returns the event type.
func (e SurfaceResizedEvent) Type() EventType {
	return EventSurfaceResized
}

// NewSurfaceResizedEvent creates a new SurfaceResizedEvent.
func NewSurfaceResizedEvent(width, height int) SurfaceResizedEvent {
	return SurfaceResizedEvent{
		baseEvent: newBaseEvent(),
		Width:     width,
		Height:    height,
	}
}
