package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type testProvider struct {
	name      string
	available bool
}

func (p *testProvider) Name() string                        { return p.name }
func (p *testProvider) IsAvailable(ctx context.Context) bool { return p.available }

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry[*testProvider]()
	reg.RegisterFactory("test", func(cfg map[string]any) (*testProvider, error) {
		return &testProvider{name: "test", available: true}, nil
	})

	p, err := reg.Create("test", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "test" {
		t.Errorf("expected name 'test', got %q", p.Name())
	}
	if got, ok := reg.Get("test"); !ok || got != p {
		t.Error("Create should cache the instance")
	}
}

func TestRegistryCreateErrors(t *testing.T) {
	reg := NewRegistry[*testProvider]()
	if _, err := reg.Create("missing", nil); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' error, got %v", err)
	}

	boom := errors.New("bad config")
	reg.RegisterFactory("broken", func(map[string]any) (*testProvider, error) { return nil, boom })
	if _, err := reg.Create("broken", nil); !errors.Is(err, boom) {
		t.Errorf("expected factory error to be wrapped, got %v", err)
	}
	if _, ok := reg.Get("broken"); ok {
		t.Error("failed creation must not cache an instance")
	}
}

func TestRegistryListAndNext(t *testing.T) {
	reg := NewRegistry[*testProvider]()
	reg.Set("deepgram", &testProvider{name: "deepgram"})
	reg.Set("assemblyai", &testProvider{name: "assemblyai"})

	names := reg.List()
	if len(names) != 2 || names[0] != "assemblyai" || names[1] != "deepgram" {
		t.Fatalf("expected sorted [assemblyai deepgram], got %v", names)
	}

	tests := []struct {
		current string
		want    string
	}{
		{"assemblyai", "deepgram"},
		{"deepgram", "assemblyai"},
		{"unknown", "assemblyai"},
	}
	for _, tc := range tests {
		got, ok := reg.Next(tc.current)
		if !ok || got != tc.want {
			t.Errorf("Next(%q) = %q, want %q", tc.current, got, tc.want)
		}
	}
}

func TestRegistryNextEmpty(t *testing.T) {
	if _, ok := NewRegistry[*testProvider]().Next("x"); ok {
		t.Error("expected no next provider in an empty registry")
	}
}
