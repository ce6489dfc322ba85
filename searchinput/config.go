package searchinput

import (
	"runtime"
	"time"

	"github.com/kbukum/smartsearch/capture"
	"github.com/kbukum/smartsearch/imagequery"
	"github.com/kbukum/smartsearch/search"
	"github.com/kbukum/smartsearch/transcription"
	"github.com/kbukum/smartsearch/transcription/assemblyai"
	"github.com/kbukum/smartsearch/transcription/deepgram"
	"github.com/kbukum/smartsearch/validation"
)

// Config configures the search input pipelines.
type Config struct {
	Search      search.Config            `yaml:"search" mapstructure:"search"`
	ImageSearch imagequery.Config        `yaml:"image_search" mapstructure:"image_search"`
	Providers   ProvidersConfig          `yaml:"providers" mapstructure:"providers"`
	Recording   RecordingConfig          `yaml:"recording" mapstructure:"recording"`
	Polling     transcription.PollConfig `yaml:"polling" mapstructure:"polling"`
	Workers     WorkersConfig            `yaml:"workers" mapstructure:"workers"`
}

// ProvidersConfig holds credentials and endpoints for each transcription
// provider. Credentials have no built-in fallback.
type ProvidersConfig struct {
	Default    string            `yaml:"default" mapstructure:"default" validate:"omitempty,oneof=assemblyai deepgram"`
	AssemblyAI assemblyai.Config `yaml:"assemblyai" mapstructure:"assemblyai"`
	Deepgram   deepgram.Config   `yaml:"deepgram" mapstructure:"deepgram"`
}

// RecordingConfig bounds voice capture.
type RecordingConfig struct {
	Duration     time.Duration `yaml:"duration" mapstructure:"duration"`
	TickInterval time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
	// Language is passed to providers as a hint; empty enables detection.
	Language string `yaml:"language" mapstructure:"language"`
}

// WorkersConfig sizes the pool running background pipelines.
type WorkersConfig struct {
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size" validate:"omitempty,gte=1"`
}

// ApplyDefaults fills in durations, provider choice and pool size.
func (c *Config) ApplyDefaults() {
	c.Search.ApplyDefaults()
	c.ImageSearch.ApplyDefaults()
	c.Polling.ApplyDefaults()
	if c.Providers.Default == "" {
		c.Providers.Default = string(transcription.ProviderAssemblyAI)
	}
	if c.Recording.Duration <= 0 {
		c.Recording.Duration = capture.DefaultRecordingDuration
	}
	if c.Recording.TickInterval <= 0 {
		c.Recording.TickInterval = capture.DefaultTickInterval
	}
	if c.Workers.PoolSize <= 0 {
		c.Workers.PoolSize = max(runtime.NumCPU(), 4)
	}
}

// Validate checks endpoints and bounds. Missing provider credentials are not
// an error: the affected provider refuses to record instead.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
