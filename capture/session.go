package capture

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/logger"
)

// Artifact is an assembled recording.
type Artifact struct {
	Data        []byte
	ContentType string
	Fragments   int
	Duration    time.Duration
}

// Session manages one recording at a time on a Device.
type Session struct {
	device Device
	log    *logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	active *recording
}

type recording struct {
	id        string
	stream    Stream
	startedAt time.Time
	fragments [][]byte
	done      chan struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now for duration measurement.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session on device.
func NewSession(device Device, log *logger.Logger, opts ...SessionOption) *Session {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	s := &Session{
		device: device,
		log:    log.WithComponent("capture"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the device and begins accumulating fragments. It returns the
// recording ID. A refused device yields PermissionDenied and leaves the
// session inactive.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return "", errors.InvalidState("a recording is already active")
	}

	stream, err := s.device.Open(ctx)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidState) {
			return "", err
		}
		s.log.Warn("capture device refused", logger.ErrorFields("open", err))
		return "", errors.PermissionDenied(err)
	}

	rec := &recording{
		id:        uuid.NewString(),
		stream:    stream,
		startedAt: s.now(),
		done:      make(chan struct{}),
	}
	go rec.collect()
	s.active = rec

	s.log.Debug("recording started", logger.Fields(logger.FieldSessionID, rec.id))
	return rec.id, nil
}

func (r *recording) collect() {
	defer close(r.done)
	for frag := range r.stream.Fragments() {
		if len(frag) > 0 {
			r.fragments = append(r.fragments, frag)
		}
	}
}

// Active reports whether a recording is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Stop ends the active recording and returns the assembled artifact. The
// stream is closed even if assembling fails. Stop on an inactive session
// returns (nil, nil).
func (s *Session) Stop() (*Artifact, error) {
	s.mu.Lock()
	rec := s.active
	s.active = nil
	s.mu.Unlock()
	if rec == nil {
		return nil, nil
	}

	if err := rec.stream.Close(); err != nil {
		s.log.Warn("closing capture stream", logger.ErrorFields("close", err))
	}
	<-rec.done

	data := bytes.Join(rec.fragments, nil)
	art := &Artifact{
		Data:        data,
		ContentType: rec.stream.ContentType(),
		Fragments:   len(rec.fragments),
		Duration:    s.now().Sub(rec.startedAt),
	}
	if art.ContentType == "" {
		art.ContentType = mimetype.Detect(data).String()
	}

	s.log.Debug("recording stopped", logger.Fields(
		logger.FieldSessionID, rec.id,
		"fragments", art.Fragments,
		"bytes", len(data),
		"content_type", art.ContentType,
	))
	return art, nil
}
