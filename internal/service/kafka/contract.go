package kafka

import "context"

// MessageBroker carries reminder requests from the sweep to the dispatcher.
// Keys are user ids, so one user's requests stay on one partition.
type MessageBroker interface {
	SendMessage(ctx context.Context, key, value []byte) error
	ReadMessage(ctx context.Context) (key, value []byte, err error)
	Close() error
}
