package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. A nil bus drops the event.
// Usage: bus.Publish(LEDAddedEvent{...})
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	switch e := ev.(type) {
	case LEDAddedEvent:
		event.Publish(b.dispatcher, e)
	case LEDRemovedEvent:
		event.Publish(b.dispatcher, e)
	case LEDMissingEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler's parameter type selects the events it receives.
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e LEDAddedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LEDAddedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDRemovedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDMissingEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Unknown handler types subscribe to nothing
		return func() {}
	}
}
