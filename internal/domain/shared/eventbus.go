package shared

import "context"

// EventHandler reacts to published events. Handler errors are logged by the
// bus and never reach the publisher.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; empty means all
	EventTypes() []string
}

// EventPublisher is what application services publish through once a
// transaction has committed
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}
