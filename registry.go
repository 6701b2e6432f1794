package llmchain

import (
	"strings"

	"github.com/casualjim/llmchain/internal/registry"
	"github.com/casualjim/llmchain/provider"
)

// RegistryBuilder accumulates provider registrations. Call Build to freeze
// them into a Registry; the builder must not be used after that.
type RegistryBuilder struct {
	builder *registry.Builder[provider.Provider]
}

// NewRegistry returns an empty RegistryBuilder.
func NewRegistry() *RegistryBuilder {
	return &RegistryBuilder{builder: registry.NewBuilder[provider.Provider]()}
}

// Register adds a provider under id. Duplicate ids are rejected by Build, not
// here, so registrations can be composed from multiple sources first.
func (b *RegistryBuilder) Register(id string, p provider.Provider) *RegistryBuilder {
	b.builder.Add(id, p)
	return b
}

// Build freezes the accumulated registrations into an immutable Registry.
// Registering the same id twice is a configuration error; silently shadowing
// an earlier provider would make chains behave differently depending on
// registration order.
func (b *RegistryBuilder) Build() (*Registry, error) {
	frozen, duplicates := b.builder.Freeze()
	if len(duplicates) > 0 {
		return nil, provider.NewConfigError("duplicate provider id(s): %s", strings.Join(duplicates, ", "))
	}
	return &Registry{providers: frozen}, nil
}

// Registry is an immutable provider id lookup table. It is safe for any
// number of concurrently running chains to read.
type Registry struct {
	providers *registry.Frozen[provider.Provider]
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (provider.Provider, error) {
	p, ok := r.providers.Get(id)
	if !ok {
		return nil, provider.NewConfigError("unknown provider id %q", id)
	}
	return p, nil
}

// IDs returns the registered provider ids in registration order.
func (r *Registry) IDs() []string {
	return r.providers.IDs()
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return r.providers.Len()
}
