package capture

import (
	"context"
	"sync"

	"github.com/kbukum/smartsearch/errors"
)

// Device is a source of audio, typically a microphone.
type Device interface {
	// Open starts capture. An error means access was refused or the
	// hardware is unavailable.
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open capture.
//
// Fragments delivers encoded audio chunks and is closed once the stream has
// ended and every remaining fragment has been delivered. Close stops capture
// and releases the hardware; it is safe to call more than once.
type Stream interface {
	Fragments() <-chan []byte
	ContentType() string
	Close() error
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func(ctx context.Context) (Stream, error)

// Open calls f.
func (f DeviceFunc) Open(ctx context.Context) (Stream, error) { return f(ctx) }

const pushBuffer = 64

// PushDevice is a Device fed by Push. Each Open starts a new stream; chunks
// pushed while no stream is open are rejected.
type PushDevice struct {
	mu          sync.Mutex
	contentType string
	stream      *pushStream
	deny        error
}

// NewPushDevice creates a device whose streams report contentType. An empty
// content type lets the session sniff it from the recorded bytes.
func NewPushDevice(contentType string) *PushDevice {
	return &PushDevice{contentType: contentType}
}

// SetContentType changes the content type reported by subsequent streams.
func (d *PushDevice) SetContentType(ct string) {
	d.mu.Lock()
	d.contentType = ct
	d.mu.Unlock()
}

// Deny makes subsequent Open calls fail with err until Deny(nil).
func (d *PushDevice) Deny(err error) {
	d.mu.Lock()
	d.deny = err
	d.mu.Unlock()
}

// Open implements Device.
func (d *PushDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deny != nil {
		return nil, d.deny
	}
	if d.stream != nil && !d.stream.isClosed() {
		return nil, errors.InvalidState("capture device is already open")
	}
	d.stream = &pushStream{
		contentType: d.contentType,
		ch:          make(chan []byte, pushBuffer),
	}
	return d.stream, nil
}

// Push delivers a chunk to the open stream. Empty chunks are ignored.
func (d *PushDevice) Push(chunk []byte) error {
	d.mu.Lock()
	s := d.stream
	d.mu.Unlock()
	if s == nil {
		return errors.InvalidState("no recording in progress")
	}
	return s.push(chunk)
}

type pushStream struct {
	mu          sync.Mutex
	contentType string
	ch          chan []byte
	closed      bool
}

func (s *pushStream) Fragments() <-chan []byte { return s.ch }
func (s *pushStream) ContentType() string      { return s.contentType }

func (s *pushStream) push(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.InvalidState("no recording in progress")
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	s.ch <- buf
	return nil
}

func (s *pushStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *pushStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}
