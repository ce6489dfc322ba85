package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type tagsResponse struct {
	Tags []string `json:"tags"`
}

func TestDo_GetDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(tagsResponse{Tags: []string{"blue", "jacket"}})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := Do[tagsResponse](c, context.Background(), http.MethodGet, "/tags", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data.Tags) != 2 || resp.Data.Tags[1] != "jacket" {
		t.Errorf("unexpected tags: %v", resp.Data.Tags)
	}
}

func TestPost_WithOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Trace") != "1" {
			t.Errorf("expected X-Trace header")
		}
		if r.URL.Query().Get("model") != "nova-2" {
			t.Errorf("expected model=nova-2, got %q", r.URL.Query().Get("model"))
		}
		w.Write([]byte(`{"tags":[]}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := Post[tagsResponse](c, context.Background(), "/", map[string]string{"a": "b"},
		WithHeader("X-Trace", "1"),
		WithQueryParam("model", "nova-2"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := Do[tagsResponse](c, context.Background(), http.MethodDelete, "/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.Tags != nil {
		t.Errorf("expected zero value, got %v", resp.Data.Tags)
	}
}

func TestDo_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := Do[tagsResponse](c, context.Background(), http.MethodGet, "/", nil)
	if !IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestGet_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := Do[tagsResponse](c, context.Background(), http.MethodGet, "/", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if resp != nil {
		t.Errorf("expected nil typed response on error, got %+v", resp)
	}
	if !IsRetryable(err) {
		t.Errorf("expected retryable server error, got %v", err)
	}
}
