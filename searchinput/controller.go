package searchinput

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/smartsearch/capture"
	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/imagequery"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/observability"
	"github.com/kbukum/smartsearch/transcription"
)

// Mode is the controller's reported input mode.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeRecording Mode = "recording"
	ModeUploading Mode = "uploading"
)

// ImageExtractor turns an uploaded photo into query text.
type ImageExtractor interface {
	Preview(file imagequery.File) (*imagequery.Selection, error)
	Extract(ctx context.Context, file imagequery.File) (string, error)
}

// Searcher submits a query to the search backend.
type Searcher interface {
	Submit(ctx context.Context, query string) (json.RawMessage, error)
}

// Dependencies are the collaborators a Controller drives.
type Dependencies struct {
	Providers *transcription.Registry
	Device    capture.Device
	Images    ImageExtractor
	Search    Searcher
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the event receiver.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithPool runs background pipelines on a shared pool. The controller does
// not release a pool it did not create.
func WithPool(p *ants.Pool) Option {
	return func(c *Controller) { c.pool = p }
}

// WithTicker replaces the recording countdown's ticker source.
func WithTicker(f capture.TickerFactory) Option {
	return func(c *Controller) { c.ticker = f }
}

// Snapshot is a consistent view of controller state.
type Snapshot struct {
	Query        string         `json:"query"`
	Mode         Mode           `json:"mode"`
	Provider     string         `json:"provider"`
	Recording    bool           `json:"recording"`
	Transcribing bool           `json:"transcribing"`
	Uploading    bool           `json:"uploading"`
	RecordingID  string         `json:"recording_id,omitempty"`
	Remaining    int            `json:"remaining"`
	Selection    *SelectionView `json:"selection,omitempty"`
}

type recording struct {
	id         string
	providerID string
	provider   transcription.Provider
	countdown  *capture.Countdown
}

// Controller owns one search box's query and its input pipelines.
type Controller struct {
	cfg      Config
	deps     Dependencies
	session  *capture.Session
	notifier Notifier
	metrics  *observability.Metrics
	ticker   capture.TickerFactory
	pool     *ants.Pool
	ownsPool bool
	log      *logger.Logger

	mu           sync.Mutex
	query        string
	provider     string
	rec          *recording
	transcribing bool
	extracting   int
	selection    *imagequery.Selection
	closed       bool

	wg sync.WaitGroup
}

// New creates a Controller. Providers, Device, Images and Search are
// required.
func New(cfg Config, deps Dependencies, log *logger.Logger, opts ...Option) (*Controller, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	switch {
	case deps.Providers == nil:
		return nil, errors.InvalidInput("providers", "transcription registry is required")
	case deps.Device == nil:
		return nil, errors.InvalidInput("device", "capture device is required")
	case deps.Images == nil:
		return nil, errors.InvalidInput("images", "image extractor is required")
	case deps.Search == nil:
		return nil, errors.InvalidInput("search", "search client is required")
	}

	c := &Controller{
		cfg:      cfg,
		deps:     deps,
		notifier: nopNotifier{},
		ticker:   capture.NewTimeTicker,
		provider: cfg.Providers.Default,
		log:      log.WithComponent("searchinput"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := transcription.Resolve(deps.Providers, transcription.ProviderID(c.provider)); err != nil {
		return nil, err
	}
	if c.pool == nil {
		pool, err := ants.NewPool(cfg.Workers.PoolSize)
		if err != nil {
			return nil, errors.Internal(err)
		}
		c.pool, c.ownsPool = pool, true
	}
	c.session = capture.NewSession(deps.Device, log)
	return c, nil
}

// Query returns the current query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetQuery replaces the query with typed text. It is always allowed.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	c.query = text
	c.mu.Unlock()
	c.notify(EventQuery, QueryChanged{Query: text, Source: SourceTyped})
}

// Provider returns the selected transcription provider.
func (c *Controller) Provider() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider
}

// SelectProvider chooses the provider for the next recording. A recording
// already in progress keeps the provider it started with.
func (c *Controller) SelectProvider(id transcription.ProviderID) error {
	if _, err := transcription.Resolve(c.deps.Providers, id); err != nil {
		return err
	}
	c.mu.Lock()
	c.provider = string(id)
	c.mu.Unlock()
	c.notify(EventProvider, map[string]string{"provider": string(id)})
	return nil
}

// ToggleProvider switches to the next registered provider and returns it.
func (c *Controller) ToggleProvider() string {
	c.mu.Lock()
	next, ok := c.deps.Providers.Next(c.provider)
	if ok {
		c.provider = next
	}
	current := c.provider
	c.mu.Unlock()
	c.notify(EventProvider, map[string]string{"provider": current})
	return current
}

// BeginRecording starts voice capture with the selected provider. It
// refuses while a recording or its transcription is in flight, and refuses
// before touching the device when the provider has no credential.
func (c *Controller) BeginRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", errors.InvalidState("controller is closed")
	}
	if c.rec != nil || c.transcribing {
		c.mu.Unlock()
		return "", errors.InvalidState("a recording is already in progress")
	}

	providerID := c.provider
	p, err := transcription.Resolve(c.deps.Providers, transcription.ProviderID(providerID))
	if err == nil && !p.HasCredential() {
		err = errors.CredentialMissing(providerID)
	}
	if err != nil {
		c.mu.Unlock()
		c.fail(ctx, observability.PipelineTranscription, err)
		return "", err
	}

	id, err := c.session.Start(ctx)
	if err != nil {
		c.mu.Unlock()
		c.fail(ctx, observability.PipelineTranscription, err)
		return "", err
	}

	rec := &recording{id: id, providerID: providerID, provider: p}
	rec.countdown = capture.StartCountdown(c.cfg.Recording.Duration,
		capture.WithTickInterval(c.cfg.Recording.TickInterval),
		capture.WithTicker(c.ticker),
		capture.OnTick(func(remaining int) {
			c.notify(EventCountdown, CountdownTick{RecordingID: id, Remaining: remaining})
		}),
		capture.OnExpire(func() { c.expire(rec) }),
	)
	c.rec = rec
	c.wg.Add(1)
	remaining := rec.countdown.Remaining()
	mode := c.modeLocked()
	c.mu.Unlock()

	c.metrics.RecordingStarted(ctx)
	c.log.Info("recording started", logger.Fields(logger.FieldSessionID, id, logger.FieldProvider, providerID))
	c.notify(EventMode, mode)
	c.notify(EventCountdown, CountdownTick{RecordingID: id, Remaining: remaining})
	return id, nil
}

// expire runs on the countdown goroutine when the recording time is up.
// Capture stops here, before any worker is needed, so a busy pool can
// delay the transcription but never the stop.
func (c *Controller) expire(rec *recording) {
	art, ok := c.stop(context.Background(), rec, "timer")
	if !ok {
		return
	}
	err := c.pool.Submit(func() {
		_, _ = c.complete(context.Background(), rec, art)
	})
	if err != nil {
		c.log.Warn("worker pool rejected timed transcription; running it on its own goroutine", logger.ErrorFields("expire", err))
		go func() { _, _ = c.complete(context.Background(), rec, art) }()
	}
}

// EndRecording stops the active recording and transcribes it. It returns
// the new query on success. Without an active recording it does nothing.
func (c *Controller) EndRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	rec := c.rec
	c.mu.Unlock()
	if rec == nil {
		return c.Query(), nil
	}
	return c.finish(ctx, rec, "manual")
}

// finish is the single completion path for manual and timed stops. Only
// the first caller for a recording does any work.
func (c *Controller) finish(ctx context.Context, rec *recording, trigger string) (string, error) {
	art, ok := c.stop(ctx, rec, trigger)
	if !ok {
		return c.Query(), nil
	}
	return c.complete(ctx, rec, art)
}

// stop claims rec, cancels its countdown and releases the device. It
// reports false when another caller already claimed the recording.
func (c *Controller) stop(ctx context.Context, rec *recording, trigger string) (*capture.Artifact, bool) {
	c.mu.Lock()
	if c.rec != rec {
		c.mu.Unlock()
		return nil, false
	}
	c.rec = nil
	c.transcribing = true
	c.mu.Unlock()

	rec.countdown.Cancel()
	art, _ := c.session.Stop()
	c.metrics.RecordingEnded(ctx)

	c.log.Info("recording stopped", logger.Fields(
		logger.FieldSessionID, rec.id,
		logger.FieldProvider, rec.providerID,
		"trigger", trigger,
	))
	return art, true
}

// complete transcribes a stopped recording and publishes the outcome.
func (c *Controller) complete(ctx context.Context, rec *recording, art *capture.Artifact) (string, error) {
	defer c.wg.Done()

	text, err := c.transcribe(context.WithoutCancel(ctx), rec, art)

	c.mu.Lock()
	c.transcribing = false
	if err == nil {
		c.query = text
	}
	query := c.query
	mode := c.modeLocked()
	c.mu.Unlock()

	if err != nil {
		c.fail(ctx, observability.PipelineTranscription, err)
	} else {
		c.notify(EventQuery, QueryChanged{Query: text, Source: SourceTranscription})
	}
	c.notify(EventMode, mode)
	return query, err
}

func (c *Controller) transcribe(ctx context.Context, rec *recording, art *capture.Artifact) (string, error) {
	ctx, op := observability.StartOperation(ctx, c.metrics, observability.PipelineTranscription,
		attribute.String(observability.AttrProvider, rec.providerID),
		attribute.String(observability.AttrSessionID, rec.id),
	)

	if art == nil || len(art.Data) == 0 {
		err := errors.InvalidInput("audio", "nothing was recorded")
		op.End(err)
		return "", err
	}

	resp, err := rec.provider.Transcribe(ctx, transcription.Request{
		Audio:       art.Data,
		ContentType: art.ContentType,
		Language:    c.cfg.Recording.Language,
	})
	op.End(err)
	if err != nil {
		return "", err
	}
	c.log.Info("transcription completed", logger.Fields(
		logger.FieldProvider, rec.providerID,
		logger.FieldJobID, resp.JobID,
		logger.FieldDuration, op.Duration().Milliseconds(),
	))
	return resp.Text, nil
}

// SelectImage replaces the current image selection and extracts query text
// from it in the background. A successful extraction overwrites the query;
// a failed one leaves it untouched.
func (c *Controller) SelectImage(ctx context.Context, file imagequery.File) (*SelectionView, error) {
	sel, err := c.deps.Images.Preview(file)
	if err != nil {
		c.fail(ctx, observability.PipelineImage, err)
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.InvalidState("controller is closed")
	}
	c.selection = sel
	c.extracting++
	c.wg.Add(1)
	mode := c.modeLocked()
	c.mu.Unlock()

	view := selectionView(sel)
	c.notify(EventSelection, view)
	c.notify(EventMode, mode)

	detached := context.WithoutCancel(ctx)
	if err := c.pool.Submit(func() { c.extract(detached, sel.File) }); err != nil {
		c.extractDone("", errors.Internal(err))
		return nil, errors.Internal(err)
	}
	return view, nil
}

func (c *Controller) extract(ctx context.Context, file imagequery.File) {
	ctx, op := observability.StartOperation(ctx, c.metrics, observability.PipelineImage)
	text, err := c.deps.Images.Extract(ctx, file)
	op.End(err)
	c.extractDone(text, err)
}

func (c *Controller) extractDone(text string, err error) {
	defer c.wg.Done()

	c.mu.Lock()
	c.extracting--
	if err == nil {
		c.query = text
	}
	mode := c.modeLocked()
	c.mu.Unlock()

	if err != nil {
		c.fail(context.Background(), observability.PipelineImage, err)
	} else {
		c.log.Debug("image query extracted", logger.Fields("query_len", len(text)))
		c.notify(EventQuery, QueryChanged{Query: text, Source: SourceImage})
	}
	c.notify(EventMode, mode)
}

// ClearImage discards the selection and its preview. The query is kept.
func (c *Controller) ClearImage() {
	c.mu.Lock()
	c.selection = nil
	c.mu.Unlock()
	c.notify(EventSelection, (*SelectionView)(nil))
}

// Submit sends the current query to the search endpoint and returns the
// response unchanged. Controller state is not modified.
func (c *Controller) Submit(ctx context.Context) (json.RawMessage, error) {
	query := c.Query()

	ctx, op := observability.StartOperation(ctx, c.metrics, observability.PipelineSearch)
	resp, err := c.deps.Search.Submit(ctx, query)
	op.End(err)
	if err != nil {
		c.fail(ctx, observability.PipelineSearch, err)
		return nil, err
	}
	return resp, nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Query:        c.query,
		Mode:         c.modeLocked().Mode,
		Provider:     c.provider,
		Recording:    c.rec != nil,
		Transcribing: c.transcribing,
		Uploading:    c.extracting > 0,
		Selection:    selectionView(c.selection),
	}
	if c.rec != nil {
		s.RecordingID = c.rec.id
		s.Remaining = c.rec.countdown.Remaining()
	}
	return s
}

// Wait blocks until no recording, transcription or extraction is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close discards any active recording without transcribing it, waits for
// background pipelines and releases the worker pool if the controller
// created it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	rec := c.rec
	c.rec = nil
	c.mu.Unlock()

	if rec != nil {
		rec.countdown.Cancel()
		if _, err := c.session.Stop(); err != nil {
			c.log.Warn("stopping recording on close", logger.ErrorFields("close", err))
		}
		c.metrics.RecordingEnded(context.Background())
		c.wg.Done()
	}
	c.wg.Wait()
	if c.ownsPool {
		c.pool.Release()
	}
}

// modeLocked must be called with c.mu held.
func (c *Controller) modeLocked() ModeChanged {
	m := ModeChanged{
		Recording:    c.rec != nil,
		Transcribing: c.transcribing,
		Uploading:    c.extracting > 0,
	}
	switch {
	case m.Recording || m.Transcribing:
		m.Mode = ModeRecording
	case m.Uploading:
		m.Mode = ModeUploading
	default:
		m.Mode = ModeIdle
	}
	return m
}

func (c *Controller) fail(ctx context.Context, pipeline string, err error) {
	n := noticeFor(pipeline, err)
	c.log.Warn("pipeline failed", logger.Fields(
		logger.FieldOperation, pipeline,
		logger.FieldCode, n.Code,
		logger.FieldError, err.Error(),
	))
	if !errors.HasCode(err, errors.ErrCodeInvalidState) {
		c.metrics.RecordError(ctx, n.Code, pipeline)
	}
	c.notify(EventNotice, n)
}

func (c *Controller) notify(t EventType, data any) {
	c.notifier.Notify(Event{Type: t, Data: data})
}
