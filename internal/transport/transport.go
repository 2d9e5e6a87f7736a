// Package transport carries meter readings out of the engine.
package transport

// Transport defines a generic interface for sending processed data or events.
// Implementations must be safe for concurrent use and must not block the
// caller: Send is invoked from the engine loop.
type Transport interface {
	Send(data any) error
	Close() error
}
