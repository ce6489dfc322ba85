package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/logger"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON body, got %q", ct)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Query != "red shoes" {
			t.Errorf("expected query 'red shoes', got %q", req.Query)
		}
		w.Write([]byte(`{"results":[{"id":1}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL + "/api/search"}, logger.NewDefault("test"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Submit(context.Background(), "red shoes")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if string(got) != `{"results":[{"id":1}]}` {
		t.Errorf("expected response passed through, got %s", got)
	}
}

func TestSubmit_EmptyQueryAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if v, ok := req["query"]; !ok || v != "" {
			t.Errorf("expected empty query field, got %v", req)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := New(Config{URL: srv.URL}, nil)
	got, err := c.Submit(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "null" {
		t.Errorf("expected null for empty body, got %s", got)
	}
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.ErrorCode
	}{
		{"server error", http.StatusBadGateway, ``, errors.ErrCodeUpstreamRequest},
		{"not json", http.StatusOK, `<html>`, errors.ErrCodeMalformedResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, _ := New(Config{URL: srv.URL, RetryBackoff: time.Millisecond}, nil)
			if _, err := c.Submit(context.Background(), "q"); errors.CodeOf(err) != tc.want {
				t.Errorf("got %v, want %s", err, tc.want)
			}
		})
	}
}

func TestSubmit_Retry(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		attempts  int
		wantCalls int32
		want      errors.ErrorCode
	}{
		{"recovers after unavailable", []int{503, 503, 200}, 3, 3, ""},
		{"rate limited then ok", []int{429, 200}, 3, 2, ""},
		{"client error not retried", []int{400, 200}, 3, 1, errors.ErrCodeUpstreamRequest},
		{"budget exhausted", []int{502, 502, 502, 200}, 3, 3, errors.ErrCodeUpstreamRequest},
		{"single attempt", []int{503, 200}, 1, 1, errors.ErrCodeUpstreamRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tc.statuses[n-1])
				if tc.statuses[n-1] == http.StatusOK {
					w.Write([]byte(`{"results":[]}`))
				}
			}))
			defer srv.Close()

			c, err := New(Config{URL: srv.URL, MaxAttempts: tc.attempts, RetryBackoff: time.Millisecond}, nil)
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.Submit(context.Background(), "q")
			if tc.want == "" {
				if err != nil {
					t.Fatalf("Submit: %v", err)
				}
				if string(got) != `{"results":[]}` {
					t.Errorf("unexpected body %s", got)
				}
			} else if errors.CodeOf(err) != tc.want {
				t.Errorf("got %v, want %s", err, tc.want)
			}
			if n := calls.Load(); n != tc.wantCalls {
				t.Errorf("expected %d calls, got %d", tc.wantCalls, n)
			}
		})
	}
}
