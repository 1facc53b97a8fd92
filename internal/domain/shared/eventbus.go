package shared

import "context"

// EventHandler consumes domain events delivered by the bus
type EventHandler interface {
	// Handle processes one event. A returned error is reported back to the
	// publisher so the outbox can schedule a retry.
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler subscribes to
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventRecorder stores events in the outbox inside the current transaction
type EventRecorder interface {
	Record(ctx context.Context, events ...DomainEvent) error
}
