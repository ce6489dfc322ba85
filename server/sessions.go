package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/kbukum/smartsearch/capture"
	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/observability"
	"github.com/kbukum/smartsearch/searchinput"
	"github.com/kbukum/smartsearch/sse"
	"github.com/kbukum/smartsearch/transcription"
)

// SessionDeps are shared by every session's controller.
type SessionDeps struct {
	Providers *transcription.Registry
	Images    searchinput.ImageExtractor
	Search    searchinput.Searcher
	Events    sse.Broadcaster
	Pool      *ants.Pool
	Metrics   *observability.Metrics
}

// Session is one search box driven over HTTP. Audio reaches its controller
// through Device as uploaded chunks.
type Session struct {
	ID         string
	Controller *searchinput.Controller
	Device     *capture.PushDevice
	Created    time.Time
}

// Sessions owns the live sessions, keyed by ID.
type Sessions struct {
	cfg  searchinput.Config
	deps SessionDeps
	max  int
	opts []searchinput.Option
	log  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates a session manager. maxSessions bounds concurrent sessions;
// zero means unbounded. opts are applied to every controller.
func NewSessions(cfg searchinput.Config, deps SessionDeps, maxSessions int, log *logger.Logger, opts ...searchinput.Option) *Sessions {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Sessions{
		cfg:      cfg,
		deps:     deps,
		max:      maxSessions,
		opts:     opts,
		log:      log.WithComponent("sessions"),
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with an idle controller. The limit check
// and the insert happen under one lock.
func (s *Sessions) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, errors.InvalidState("session limit reached").WithDetail("max_sessions", s.max)
	}

	id := uuid.NewString()
	device := capture.NewPushDevice("")
	opts := append([]searchinput.Option{
		searchinput.WithNotifier(s.notifier(id)),
		searchinput.WithMetrics(s.deps.Metrics),
	}, s.opts...)
	if s.deps.Pool != nil {
		opts = append(opts, searchinput.WithPool(s.deps.Pool))
	}

	ctrl, err := searchinput.New(s.cfg, searchinput.Dependencies{
		Providers: s.deps.Providers,
		Device:    device,
		Images:    s.deps.Images,
		Search:    s.deps.Search,
	}, s.log.WithFields(logger.Fields(logger.FieldSessionID, id)), opts...)
	if err != nil {
		return nil, err
	}

	sess := &Session{ID: id, Controller: ctrl, Device: device, Created: time.Now()}
	s.sessions[id] = sess
	s.log.Info("session created", logger.Fields(logger.FieldSessionID, id, "total_sessions", len(s.sessions)))
	return sess, nil
}

// Get returns the session with id.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("session", id)
	}
	return sess, nil
}

// Delete closes and removes the session with id. An active recording is
// discarded without being transcribed.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return errors.NotFound("session", id)
	}

	sess.Controller.Close()
	s.log.Info("session closed", logger.Fields(logger.FieldSessionID, id))
	return nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll closes every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Controller.Close()
	}
	if len(all) > 0 {
		s.log.Info("all sessions closed", logger.Fields("count", len(all)))
	}
}

// notifier forwards a session's controller events to its event stream
// subscribers.
func (s *Sessions) notifier(id string) searchinput.Notifier {
	if s.deps.Events == nil {
		return nil
	}
	pattern := sse.SessionPattern(id)
	return searchinput.NotifierFunc(func(e searchinput.Event) {
		if err := s.deps.Events.Publish(pattern, string(e.Type), e.Data); err != nil {
			s.log.Warn("event publish failed", logger.Fields(
				logger.FieldSessionID, id,
				"event", string(e.Type),
				logger.FieldError, err.Error(),
			))
		}
	})
}
