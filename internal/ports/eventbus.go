// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
// It decouples event producers (the manager, the application root) from
// consumers (UI shell, logging).
//
// Thread-safety: implementations must be thread-safe as events may be
// published and subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	// In the manager: publish an event
//	bus.Publish(domain.NewVisualizerSwitchedEvent(info, previousID))
//
//	// In the UI shell: subscribe to events
//	subID := bus.Subscribe(domain.EventVisualizerSwitched, func(event domain.Event) {
//	    e := event.(domain.VisualizerSwitchedEvent)
//	    ui.SetTitle(e.Info.Name)
//	})
//
//	// Later: unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// This method must not block for long periods; handlers should process
	// events quickly or dispatch to a background goroutine.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// The same handler can be registered multiple times, resulting in
	// multiple calls. Each subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// SubscribeAll registers a handler that receives every event regardless
	// of type. Useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// Unknown ids are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// Close shuts down the event bus and clears all subscriptions.
	Close() error
}
