// Package assemblyai implements the job-based transcription backend: the
// recording is uploaded, a transcript job is created with language
// detection, and the job is polled until it completes.
package assemblyai

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/httpclient"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/provider"
	"github.com/kbukum/smartsearch/transcription"
)

const (
	// ProviderName is the registered name for this provider.
	ProviderName = string(transcription.ProviderAssemblyAI)

	defaultBaseURL = "https://api.assemblyai.com"
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the AssemblyAI provider.
type Config struct {
	APIKey  string                   `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string                   `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration            `yaml:"timeout" mapstructure:"timeout"`
	Poll    transcription.PollConfig `yaml:"poll" mapstructure:"poll"`
}

// ApplyDefaults fills in the public endpoint, request timeout and poll bounds.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	c.Poll.ApplyDefaults()
}

// Provider implements transcription.Provider against the AssemblyAI v2 API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	poller *transcription.Poller
	log    *logger.Logger
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	pollerOpts []transcription.PollerOption
	clientOpts []httpclient.Option
}

// WithPollerOptions passes options to the job poller.
func WithPollerOptions(opts ...transcription.PollerOption) Option {
	return func(o *options) { o.pollerOpts = append(o.pollerOpts, opts...) }
}

// WithClientOptions passes options to the HTTP client.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New creates a provider. A missing API key is allowed: the provider then
// reports no credential and refuses to transcribe.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyAuthHeader(cfg.APIKey, "authorization"),
	}, o.clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		poller: transcription.NewPoller(ProviderName, cfg.Poll, log, o.pollerOpts...),
		log:    log.WithComponent("transcription.assemblyai"),
	}, nil
}

// Factory returns a provider.Factory building on base. Keys "api_key" and
// "base_url" in the factory config override base.
func Factory(base Config, log *logger.Logger, opts ...Option) provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		c := base
		if v, ok := cfg["api_key"].(string); ok {
			c.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			c.BaseURL = v
		}
		return New(c, log, opts...)
	}
}

// Register adds the provider factory to reg and creates the instance.
func Register(reg *transcription.Registry, cfg Config, log *logger.Logger, opts ...Option) error {
	reg.RegisterFactory(ProviderName, Factory(cfg, log, opts...))
	_, err := reg.Create(ProviderName, nil)
	return err
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// HasCredential reports whether an API key is configured.
func (p *Provider) HasCredential() bool { return p.cfg.APIKey != "" }

// IsAvailable reports credential presence.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.HasCredential() }

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type createRequest struct {
	AudioURL          string `json:"audio_url"`
	LanguageDetection bool   `json:"language_detection"`
	LanguageCode      string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Text         string `json:"text"`
	Error        string `json:"error"`
	LanguageCode string `json:"language_code"`
}

// Transcribe uploads the audio, creates a job and polls it to completion.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if !p.HasCredential() {
		return nil, errors.CredentialMissing(ProviderName)
	}
	if len(req.Audio) == 0 {
		return nil, errors.InvalidInput("audio", "recording is empty")
	}

	uploadURL, err := p.upload(ctx, req.Audio)
	if err != nil {
		return nil, err
	}
	job, err := p.createJob(ctx, uploadURL, req.Language)
	if err != nil {
		return nil, err
	}
	p.log.Info("transcription job created", logger.Fields(logger.FieldJobID, job.ID))

	text, err := p.poller.Poll(ctx, job, p.status)
	if err != nil {
		return nil, err
	}
	return &transcription.Response{
		Text:     text,
		Language: req.Language,
		JobID:    job.ID,
		Provider: transcription.ProviderAssemblyAI,
	}, nil
}

func (p *Provider) upload(ctx context.Context, audio []byte) (string, error) {
	resp, err := httpclient.Post[uploadResponse](p.client, ctx, "/v2/upload", audio,
		httpclient.WithHeader("Content-Type", "application/octet-stream"))
	if err != nil {
		return "", transcription.UpstreamError(ProviderName, err)
	}
	if resp.Data.UploadURL == "" {
		return "", errors.MalformedResponse(ProviderName, "upload response has no upload_url")
	}
	return resp.Data.UploadURL, nil
}

func (p *Provider) createJob(ctx context.Context, audioURL, language string) (*transcription.Job, error) {
	body := createRequest{AudioURL: audioURL, LanguageDetection: language == "", LanguageCode: language}
	resp, err := httpclient.Post[transcriptResponse](p.client, ctx, "/v2/transcript", body)
	if err != nil {
		return nil, transcription.UpstreamError(ProviderName, err)
	}
	if resp.Data.ID == "" {
		return nil, errors.MalformedResponse(ProviderName, "transcript response has no id")
	}
	if resp.Data.Status == "error" {
		return nil, errors.UpstreamReported(ProviderName, resp.Data.Error)
	}
	return transcription.NewJob(resp.Data.ID), nil
}

func (p *Provider) status(ctx context.Context, jobID string) (transcription.StatusUpdate, error) {
	resp, err := httpclient.Do[transcriptResponse](p.client, ctx, http.MethodGet, "/v2/transcript/"+jobID, nil)
	if err != nil {
		return transcription.StatusUpdate{}, transcription.UpstreamError(ProviderName, err)
	}
	switch resp.Data.Status {
	case "completed":
		return transcription.StatusUpdate{Status: transcription.JobCompleted, Text: resp.Data.Text}, nil
	case "error":
		return transcription.StatusUpdate{Status: transcription.JobFailed, Error: resp.Data.Error}, nil
	default:
		return transcription.StatusUpdate{Status: transcription.JobSubmitted}, nil
	}
}

var _ transcription.Provider = (*Provider)(nil)
