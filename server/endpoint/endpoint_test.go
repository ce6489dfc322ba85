package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/smartsearch/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET("/", h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return rr.Code, body
}

func TestLiveness(t *testing.T) {
	code, body := serve(t, Liveness("smartsearch"))
	if code != http.StatusOK || body["status"] != "alive" || body["service"] != "smartsearch" {
		t.Errorf("unexpected liveness response %d %v", code, body)
	}
	if n, ok := body["goroutines"].(float64); !ok || n < 1 {
		t.Errorf("expected a goroutine count, got %v", body["goroutines"])
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []observability.Health
		wantCode   int
	}{
		{"no components", nil, http.StatusOK},
		{"provider without credential", []observability.Health{
			observability.ProviderHealth("assemblyai", true),
			observability.ProviderHealth("deepgram", false),
		}, http.StatusOK},
		{"component down", []observability.Health{
			{Name: "transcription.assemblyai", Status: observability.HealthStatusDown},
		}, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body := serve(t, Health("smartsearch", "test", func(context.Context) []observability.Health {
				return tc.components
			}))
			if code != tc.wantCode {
				t.Errorf("expected %d, got %d (%v)", tc.wantCode, code, body)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	code, body := serve(t, Info("smartsearch"))
	if code != http.StatusOK || body["service"] != "smartsearch" || body["version"] == "" {
		t.Errorf("unexpected info response %d %v", code, body)
	}
}
