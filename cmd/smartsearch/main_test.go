package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/smartsearch/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
name: smartsearch
environment: staging
search:
  url: https://search.example/api/search
image_search:
  url: https://vision.example/tags
providers:
  default: deepgram
  deepgram:
    api_key: from-file
recording:
  duration: 3s
polling:
  max_attempts: 10
  interval: 500ms
server:
  port: 9090
`

func TestServeCommandFlags(t *testing.T) {
	app := newApp()
	require.Len(t, app.Commands, 2)

	serve := app.Commands[0]
	assert.Equal(t, "serve", serve.Name)

	names := map[string]bool{}
	for _, f := range serve.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, want := range []string{"config", "c", "env-file", "e", "log-level"} {
		assert.True(t, names[want], "serve is missing flag %q", want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", validConfig)
	envPath := writeFile(t, dir, ".env", "PROVIDERS_ASSEMBLYAI_API_KEY=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("PROVIDERS_ASSEMBLYAI_API_KEY") })

	cfg, err := loadConfig(cfgPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "deepgram", cfg.Providers.Default)
	assert.Equal(t, "from-file", cfg.Providers.Deepgram.APIKey)
	assert.Equal(t, "from-dotenv", cfg.Providers.AssemblyAI.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Recording.Duration)
	assert.Equal(t, 10, cfg.Polling.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Polling.Interval)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Recording.TickInterval, "unset values take defaults")
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing search url", "name: smartsearch\nimage_search:\n  url: https://vision.example/tags\n"},
		{"unknown provider", "name: smartsearch\nsearch:\n  url: https://s.example\nimage_search:\n  url: https://v.example\nproviders:\n  default: whisper\n"},
		{"bad environment", "name: smartsearch\nenvironment: moon\nsearch:\n  url: https://s.example\nimage_search:\n  url: https://v.example\n"},
		{"bad port", "name: smartsearch\nsearch:\n  url: https://s.example\nimage_search:\n  url: https://v.example\nserver:\n  port: 70000\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yml", tc.content)
			_, err := loadConfig(path, filepath.Join(dir, "none.env"))
			assert.Error(t, err)
		})
	}
}

func TestCheckConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", validConfig)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run([]string{serviceName, "check-config", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env")})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "config ok: smartsearch (staging)")
	assert.Contains(t, out.String(), "* deepgram: credential configured")
	assert.Contains(t, out.String(), "  assemblyai: missing credential")
}

func TestBuildWiresRoutes(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(writeFile(t, dir, "config.yml", validConfig), filepath.Join(dir, "none.env"))
	require.NoError(t, err)

	log := logger.NewDefault("test")
	app, err := build(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.shutdown(log) })

	rr := httptest.NewRecorder()
	app.srv.Handler().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/sessions", http.NoBody))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, app.sessions.Len())

	rr = httptest.NewRecorder()
	app.srv.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "transcription.deepgram")
}

