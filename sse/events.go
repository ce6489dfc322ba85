package sse

// Event names emitted by the stream itself. Application events are named by
// the publisher.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"

	// EventTypeMessage is the name used for frames published without one.
	EventTypeMessage = "message"
)
