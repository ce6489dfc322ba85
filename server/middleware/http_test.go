package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/server/middleware"
)

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	handler := middleware.Recovery(logger.NewDefault("test"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	handler := middleware.Recovery(logger.NewDefault("test"))(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/sessions", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var body errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Error.Code != errors.ErrCodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %s", body.Error.Code)
	}
	if strings.Contains(rr.Body.String(), "test panic") {
		t.Fatal("panic value must not leak to the client")
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(middleware.HeaderRequestID)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if seen == "" {
		t.Fatal("expected X-Request-Id in request headers")
	}
	if got := rr.Header().Get(middleware.HeaderRequestID); got != seen {
		t.Fatalf("expected response id %q, got %q", seen, got)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "custom-id-123")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(middleware.HeaderRequestID); got != "custom-id-123" {
		t.Fatalf("expected custom-id-123, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         middleware.CORSConfig
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantMethods string
		wantCreds   string
	}{
		{
			name:        "allowed origin",
			cfg:         middleware.CORSConfig{AllowedOrigins: []string{"https://shop.example"}, AllowedMethods: []string{"GET", "POST"}},
			method:      "GET",
			origin:      "https://shop.example",
			wantStatus:  http.StatusOK,
			wantOrigin:  "https://shop.example",
			wantMethods: "GET, POST",
		},
		{
			name:       "disallowed origin",
			cfg:        middleware.CORSConfig{AllowedOrigins: []string{"https://shop.example"}},
			method:     "GET",
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight short-circuits",
			cfg:        middleware.CORSConfig{AllowedOrigins: []string{"*"}},
			method:     "OPTIONS",
			origin:     "https://shop.example",
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://shop.example",
		},
		{
			name:       "credentials",
			cfg:        middleware.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			method:     "GET",
			origin:     "https://shop.example",
			wantStatus: http.StatusOK,
			wantOrigin: "https://shop.example",
			wantCreds:  "true",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := middleware.CORS(&tc.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodOptions {
					t.Error("handler should not be called for OPTIONS preflight")
				}
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/api/v1/sessions", http.NoBody)
			req.Header.Set("Origin", tc.origin)
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Errorf("expected origin %q, got %q", tc.wantOrigin, got)
			}
			if got := rr.Header().Get("Access-Control-Allow-Methods"); got != tc.wantMethods {
				t.Errorf("expected methods %q, got %q", tc.wantMethods, got)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != tc.wantCreds {
				t.Errorf("expected credentials %q, got %q", tc.wantCreds, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger_PassesThrough(t *testing.T) {
	for _, path := range []string{"/api/v1/sessions", "/health"} {
		t.Run(path, func(t *testing.T) {
			called := false
			handler := middleware.RequestLogger(logger.NewDefault("test"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusCreated)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("POST", path, http.NoBody))

			if !called {
				t.Fatal("handler was not called")
			}
			if rr.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d", rr.Code)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		body    string
		wantErr bool
	}{
		{"under limit", 16, "small", false},
		{"over limit", 4, "too large", true},
		{"disabled", 0, strings.Repeat("x", 1024), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var readErr error
			handler := middleware.BodySizeLimit(tc.limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader(tc.body)))

			if (readErr != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, readErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := middleware.Chain(mark("outer"), mark("inner"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Fatalf("unexpected order: %s", got)
	}
}

// ---------------------------------------------------------------------------
// trackingWriter
// ---------------------------------------------------------------------------

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestRequestLogger_KeepsFlusher(t *testing.T) {
	handler := middleware.RequestLogger(logger.NewDefault("test"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("wrapped writer must implement http.Flusher for event streams")
		}
		f.Flush()
	}))

	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/sessions/x/events", http.NoBody))

	if !rec.flushed {
		t.Fatal("expected Flush to reach the underlying writer")
	}
}
