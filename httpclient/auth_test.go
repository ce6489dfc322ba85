package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthApply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
	}{
		{"token scheme", TokenAuth("dg-key"), "Authorization", "Token dg-key"},
		{"custom scheme", SchemeAuth("Key", "k"), "Authorization", "Key k"},
		{"raw key in authorization header", APIKeyAuthHeader("aai-key", "authorization"), "Authorization", "aai-key"},
		{"api key default header", &AuthConfig{Type: AuthAPIKey, Key: "k"}, "X-API-Key", "k"},
		{"none", &AuthConfig{Type: AuthNone}, "Authorization", ""},
		{"nil", nil, "Authorization", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com", nil)
			tc.auth.apply(req)
			if got := req.Header.Get(tc.header); got != tc.want {
				t.Errorf("%s = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
