package pubsub

import (
	"context"
)

// Message is the structure passed between components on the event bus.
// The bus carries relay lifecycle events, not chat traffic; chat payloads go
// through the broadcast hub.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "relay.peer.connected").
	Topic string
	// PeerID identifies the connection the event is about.
	PeerID string
	// Payload contains the JSON encoded event.
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the event bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the event bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with
	// the handler in the background until the context is canceled or the bus
	// is closed.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
