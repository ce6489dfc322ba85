// Package imagequery turns an uploaded photo into search query text by
// asking an image search endpoint for descriptive tags.
package imagequery

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/httpclient"
	"github.com/kbukum/smartsearch/logger"
)

const (
	serviceName    = "image_search"
	formField      = "image"
	defaultTimeout = 30 * time.Second
)

// Config configures the image search endpoint.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url" validate:"required,url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// ApplyDefaults sets the request timeout and size limit.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
}

// File is an uploaded image.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Selection is the image currently chosen for a query, with a preview the
// page can render directly.
type Selection struct {
	File           File
	PreviewDataURL string
}

// Extractor calls the image search endpoint.
type Extractor struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// New creates an Extractor.
func New(cfg Config, log *logger.Logger, opts ...httpclient.Option) (*Extractor, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout}, opts...)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg, client: client, log: log.WithComponent("imagequery")}, nil
}

// Preview validates file and builds its selection. The content type is
// sniffed from the bytes when the upload did not declare one.
func (e *Extractor) Preview(file File) (*Selection, error) {
	if len(file.Data) == 0 {
		return nil, errors.InvalidInput(formField, "image is empty")
	}
	if int64(len(file.Data)) > e.cfg.MaxBytes {
		return nil, errors.InvalidInput(formField, "image is too large")
	}
	mt := mimetype.Detect(file.Data)
	if file.ContentType == "" || file.ContentType == "application/octet-stream" {
		file.ContentType = mt.String()
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errors.InvalidInput(formField, "file is not an image")
	}
	if file.Name == "" {
		file.Name = "upload" + mt.Extension()
	}
	return &Selection{File: file, PreviewDataURL: DataURL(file.ContentType, file.Data)}, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// Extract uploads file and returns its tags joined by single spaces, exactly
// as returned. Absent or empty tags yield an empty query.
func (e *Extractor) Extract(ctx context.Context, file File) (string, error) {
	body := &httpclient.FileUpload{
		Field:       formField,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
	}

	resp, err := httpclient.Post[tagsResponse](e.client, ctx, e.cfg.URL, body)
	if err != nil {
		if httpclient.IsDecode(err) {
			return "", errors.MalformedResponse(serviceName, "response body is not valid JSON").WithCause(err)
		}
		return "", httpclient.AsAppError(serviceName, err)
	}

	query := strings.Join(resp.Data.Tags, " ")
	e.log.Debug("image tags extracted", logger.Fields("tags", len(resp.Data.Tags)))
	return query, nil
}
