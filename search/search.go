// Package search submits a finished query to the backend search endpoint.
// The response is opaque to this module and handed back as raw JSON.
package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/httpclient"
	"github.com/kbukum/smartsearch/logger"
)

const serviceName = "search"

// Config configures the search endpoint.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxAttempts bounds submissions retried after transport failures, 429
	// and 5xx. 1 disables retry.
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,gte=1"`
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// ApplyDefaults sets the request timeout and retry budget.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 200 * time.Millisecond
	}
}

// Request is the search request body.
type Request struct {
	Query string `json:"query"`
}

// Client submits queries.
type Client struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// New creates a Client.
func New(cfg Config, log *logger.Logger, opts ...httpclient.Option) (*Client, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("search")

	hcfg := httpclient.Config{Timeout: cfg.Timeout}
	if cfg.MaxAttempts > 1 {
		retry := httpclient.DefaultRetryConfig()
		retry.MaxAttempts = cfg.MaxAttempts
		retry.InitialBackoff = cfg.RetryBackoff
		retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Warn("retrying search", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
				"backoff_ms", backoff.Milliseconds(),
			))
		}
		hcfg.Retry = retry
	}
	hc, err := httpclient.New(hcfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, client: hc, log: log}, nil
}

// Submit posts query and returns the response body unchanged. An empty
// response body yields JSON null.
func (c *Client) Submit(ctx context.Context, query string) (json.RawMessage, error) {
	resp, err := c.client.Do(ctx, httpclient.Request{
		Method:  "POST",
		Path:    c.cfg.URL,
		Body:    Request{Query: query},
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, httpclient.AsAppError(serviceName, err)
	}

	body := resp.Body
	if len(body) == 0 {
		body = []byte("null")
	}
	if !json.Valid(body) {
		return nil, errors.MalformedResponse(serviceName, "response body is not valid JSON")
	}
	c.log.Debug("search submitted", logger.Fields("query_len", len(query), logger.FieldStatus, resp.StatusCode))
	return json.RawMessage(body), nil
}
