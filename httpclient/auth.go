package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthScheme sends "Authorization: <scheme> <token>".
	AuthScheme
	// AuthAPIKey sends the raw key in a named header.
	AuthAPIKey
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the credential for AuthScheme.
	Token string
	// Scheme is the authorization scheme name (AuthScheme).
	Scheme string
	// Key is the API key value (AuthAPIKey).
	Key string
	// Name is the header carrying the key (AuthAPIKey). Defaults to "X-API-Key".
	Name string
}

// TokenAuth creates an "Authorization: Token <key>" auth config.
func TokenAuth(key string) *AuthConfig {
	return SchemeAuth("Token", key)
}

// SchemeAuth creates an auth config with a custom authorization scheme.
func SchemeAuth(scheme, token string) *AuthConfig {
	return &AuthConfig{Type: AuthScheme, Scheme: scheme, Token: token}
}

// APIKeyAuthHeader sends the key, unprefixed, in the given header.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Name: headerName}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthScheme:
		req.Header.Set("Authorization", a.Scheme+" "+a.Token)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, a.Key)
	}
}
