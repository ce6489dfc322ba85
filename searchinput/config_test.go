package searchinput

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/smartsearch/errors"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Providers.Default != "assemblyai" {
		t.Errorf("expected assemblyai default, got %q", cfg.Providers.Default)
	}
	if cfg.Recording.Duration != 5*time.Second || cfg.Recording.TickInterval != time.Second {
		t.Errorf("unexpected recording defaults %+v", cfg.Recording)
	}
	if cfg.Polling.MaxAttempts != 30 || cfg.Polling.Interval != time.Second {
		t.Errorf("unexpected polling defaults %+v", cfg.Polling)
	}
	if cfg.Workers.PoolSize < 1 {
		t.Errorf("expected a positive pool size, got %d", cfg.Workers.PoolSize)
	}
	if cfg.Providers.AssemblyAI.APIKey != "" || cfg.Providers.Deepgram.APIKey != "" {
		t.Error("credentials must not have defaults")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{}
		cfg.Search.URL = "https://shop.example/api/search"
		cfg.ImageSearch.URL = "https://shop.example/api/image-search"
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing search url", func(c *Config) { c.Search.URL = "" }, "search.url"},
		{"bad image url", func(c *Config) { c.ImageSearch.URL = "not a url" }, "image_search.url"},
		{"unknown provider", func(c *Config) { c.Providers.Default = "whisper" }, "providers.default"},
		{"bad provider base url", func(c *Config) { c.Providers.Deepgram.BaseURL = "::" }, "providers.deepgram.base_url"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected %q in %q", tc.field, err.Error())
			}
		})
	}
}
