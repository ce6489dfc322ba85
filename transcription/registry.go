package transcription

import (
	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/provider"
)

// Registry holds the configured transcription providers by ProviderID.
type Registry = provider.Registry[Provider]

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider]()
}

// Resolve returns the provider registered under id.
func Resolve(reg *Registry, id ProviderID) (Provider, error) {
	p, ok := reg.Get(string(id))
	if !ok {
		return nil, errors.NotFound("transcription provider", string(id))
	}
	return p, nil
}
