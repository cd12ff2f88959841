package outbox

import "context"

// Event is any domain event with a stable routing name.
type Event interface {
	EventName() string
}

type Handler func(ctx context.Context, e Event) error

// Publisher dispatches domain events after a successful write. Implementations
// include the in-memory fanout bus and the AMQP topic publisher.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
