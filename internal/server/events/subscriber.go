package events

// Subscriber is one open push channel.
// Implementations adapt events to a wire format (SSE, WebSocket).
type Subscriber interface {
	// Send writes an event. Any error marks the channel dead.
	// Send may be called from several goroutines at once.
	Send(Event) error

	// Close releases the channel. It is called exactly once, when the
	// subscriber leaves the registry.
	Close() error

	// Transport names the wire format for logs and metrics.
	Transport() string
}
