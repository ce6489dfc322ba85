// Package deepgram implements the synchronous transcription backend: the
// raw recording is posted in one request and the transcript is read from
// the first alternative of the first channel.
package deepgram

import (
	"context"
	"time"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/httpclient"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/provider"
	"github.com/kbukum/smartsearch/transcription"
)

const (
	// ProviderName is the registered name for this provider.
	ProviderName = string(transcription.ProviderDeepgram)

	defaultBaseURL     = "https://api.deepgram.com"
	defaultModel       = "nova-2"
	defaultTimeout     = 60 * time.Second
	defaultContentType = "audio/webm"
)

// Config holds configuration for the Deepgram provider.
type Config struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	SmartFormat *bool         `yaml:"smart_format" mapstructure:"smart_format"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in the public endpoint, model and formatting.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.SmartFormat == nil {
		on := true
		c.SmartFormat = &on
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements transcription.Provider against the Deepgram listen API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// New creates a provider. A missing API key is allowed: the provider then
// reports no credential and refuses to transcribe.
func New(cfg Config, log *logger.Logger, opts ...httpclient.Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.TokenAuth(cfg.APIKey),
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client, log: log.WithComponent("transcription.deepgram")}, nil
}

// Factory returns a provider.Factory building on base. Keys "api_key",
// "base_url" and "model" in the factory config override base.
func Factory(base Config, log *logger.Logger, opts ...httpclient.Option) provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		c := base
		if v, ok := cfg["api_key"].(string); ok {
			c.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			c.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			c.Model = v
		}
		return New(c, log, opts...)
	}
}

// Register adds the provider factory to reg and creates the instance.
func Register(reg *transcription.Registry, cfg Config, log *logger.Logger, opts ...httpclient.Option) error {
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

type listenResponse struct {
	Results *struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript *string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe posts the audio and returns the first channel's first alternative.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if !p.HasCredential() {
		return nil, errors.CredentialMissing(ProviderName)
	}
	if len(req.Audio) == 0 {
		return nil, errors.InvalidInput("audio", "recording is empty")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	opts := []httpclient.RequestOption{
		httpclient.WithHeader("Content-Type", contentType),
		httpclient.WithQueryParam("model", p.cfg.Model),
	}
	if *p.cfg.SmartFormat {
		opts = append(opts, httpclient.WithQueryParam("smart_format", "true"))
	}
	if req.Language != "" {
		opts = append(opts, httpclient.WithQueryParam("language", req.Language))
	} else {
		opts = append(opts, httpclient.WithQueryParam("detect_language", "true"))
	}

	resp, err := httpclient.Post[listenResponse](p.client, ctx, "/v1/listen", req.Audio, opts...)
	if err != nil {
		return nil, transcription.UpstreamError(ProviderName, err)
	}

	text, language, err := firstTranscript(resp.Data)
	if err != nil {
		return nil, err
	}
	p.log.Debug("transcript received", logger.Fields("chars", len(text), "language", language))

	if language == "" {
		language = req.Language
	}
	return &transcription.Response{
		Text:     text,
		Language: language,
		Provider: transcription.ProviderDeepgram,
	}, nil
}

func firstTranscript(r listenResponse) (string, string, error) {
	if r.Results == nil || len(r.Results.Channels) == 0 {
		return "", "", errors.MalformedResponse(ProviderName, "response has no channels")
	}
	ch := r.Results.Channels[0]
	if len(ch.Alternatives) == 0 || ch.Alternatives[0].Transcript == nil {
		return "", "", errors.MalformedResponse(ProviderName, "first channel has no transcript alternative")
	}
	return *ch.Alternatives[0].Transcript, ch.DetectedLanguage, nil
}

var _ transcription.Provider = (*Provider)(nil)
