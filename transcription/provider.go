package transcription

import (
	"context"

	"github.com/kbukum/smartsearch/provider"
)

// Provider is the interface that transcription backends must implement.
// IsAvailable reports credential presence and makes no network call.
type Provider interface {
	provider.Provider

	// HasCredential reports whether an API credential is configured.
	HasCredential() bool

	// Transcribe sends audio for transcription and returns the transcript.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
