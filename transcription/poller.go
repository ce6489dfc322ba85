package transcription

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/resilience"
)

// PollConfig bounds how long a job-based provider waits for a result.
type PollConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,gte=1"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults sets 30 attempts one second apart.
func (c *PollConfig) ApplyDefaults() {
	d := resilience.DefaultPollConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
}

// StatusUpdate is one observation of a remote job.
type StatusUpdate struct {
	Status JobStatus
	Text   string
	Error  string
}

// StatusFunc fetches the current state of a job.
type StatusFunc func(ctx context.Context, jobID string) (StatusUpdate, error)

// Poller drives a submitted job to a terminal status with a bounded number
// of strictly sequential status requests.
type Poller struct {
	service   string
	cfg       PollConfig
	log       *logger.Logger
	onAttempt func(attempt int)
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithAttemptHook is called before every status request.
func WithAttemptHook(fn func(attempt int)) PollerOption {
	return func(p *Poller) { p.onAttempt = fn }
}

// NewPoller creates a poller for jobs hosted by service.
func NewPoller(service string, cfg PollConfig, log *logger.Logger, opts ...PollerOption) *Poller {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	p := &Poller{
		service: service,
		cfg:     cfg,
		log:     log.WithComponent("transcription.poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective poll bounds.
func (p *Poller) Config() PollConfig { return p.cfg }

// Poll requests the job status until it completes, fails, or the attempt
// budget is spent. A completed job returns its transcript; an upstream
// error status returns UpstreamReported; exhaustion returns
// TranscriptionTimeout. A failed status request ends polling with that error.
func (p *Poller) Poll(ctx context.Context, job *Job, fetch StatusFunc) (string, error) {
	cfg := resilience.PollConfig{
		MaxAttempts: p.cfg.MaxAttempts,
		Interval:    p.cfg.Interval,
		OnAttempt:   p.onAttempt,
	}

	text, err := resilience.Poll(ctx, cfg, func(ctx context.Context, attempt int) (string, bool, error) {
		if err := job.RecordAttempt(p.cfg.MaxAttempts); err != nil {
			return "", false, err
		}
		update, err := fetch(ctx, job.ID)
		if err != nil {
			return "", false, err
		}

		p.log.Debug("transcription job status", logger.Fields(
			logger.FieldJobID, job.ID,
			logger.FieldAttempt, attempt,
			logger.FieldStatus, string(update.Status),
		))

		switch update.Status {
		case JobCompleted:
			if err := job.Complete(update.Text); err != nil {
				return "", false, err
			}
			return update.Text, true, nil
		case JobFailed:
			_ = job.Fail(update.Error)
			return "", false, errors.UpstreamReported(p.service, update.Error).WithDetail("job_id", job.ID)
		default:
			return "", false, nil
		}
	})

	if stderrors.Is(err, resilience.ErrPollExhausted) {
		_ = job.Fail("poll budget exhausted")
		p.log.Warn("transcription job timed out", logger.Fields(
			logger.FieldJobID, job.ID,
			logger.FieldAttempt, job.Attempts,
		))
		return "", errors.TranscriptionTimeout(job.ID, job.Attempts)
	}
	if err != nil {
		if !job.Status.Terminal() {
			_ = job.Fail(err.Error())
		}
		return "", err
	}
	return text, nil
}
