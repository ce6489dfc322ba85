package sse

// Broadcaster publishes named events to clients matching a pattern.
type Broadcaster interface {
	// Publish JSON-encodes payload and sends it as event to every client
	// whose ID matches the glob pattern.
	Publish(pattern, event string, payload any) error
}
