package transcription

import (
	"context"
	"testing"

	"github.com/kbukum/smartsearch/errors"
)

type stubProvider struct {
	id  ProviderID
	key string
}

func (s *stubProvider) Name() string                    { return string(s.id) }
func (s *stubProvider) IsAvailable(context.Context) bool { return s.HasCredential() }
func (s *stubProvider) HasCredential() bool             { return s.key != "" }
func (s *stubProvider) Transcribe(context.Context, Request) (*Response, error) {
	return &Response{Text: "ok", Provider: s.id}, nil
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Set(ProviderDeepgram.String(), &stubProvider{id: ProviderDeepgram, key: "k"})

	p, err := Resolve(reg, ProviderDeepgram)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "deepgram" {
		t.Errorf("expected deepgram, got %s", p.Name())
	}

	if _, err := Resolve(reg, ProviderAssemblyAI); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRegistry_AvailabilityFollowsCredentials(t *testing.T) {
	reg := NewRegistry()
	reg.Set(ProviderAssemblyAI.String(), &stubProvider{id: ProviderAssemblyAI})
	reg.Set(ProviderDeepgram.String(), &stubProvider{id: ProviderDeepgram, key: "k"})

	for _, id := range []ProviderID{ProviderAssemblyAI, ProviderDeepgram} {
		p, err := Resolve(reg, id)
		if err != nil {
			t.Fatal(err)
		}
		if want := id == ProviderDeepgram; p.IsAvailable(context.Background()) != want {
			t.Errorf("%s: IsAvailable = %v, want %v", id, !want, want)
		}
	}
}
