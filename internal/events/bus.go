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

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(ButtonEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the static type, so each concrete type
	// needs its own generic instantiation.
	switch e := ev.(type) {
	case ButtonEvent:
		event.Publish(b.dispatcher, e)
	case LEDChangedEvent:
		event.Publish(b.dispatcher, e)
	case DisplayChangedEvent:
		event.Publish(b.dispatcher, e)
	case BoardResolvedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type selects which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e DisplayChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ButtonEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BoardResolvedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
