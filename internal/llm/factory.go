package llm

import (
	"fmt"

	"frigo/internal/config"
	"frigo/internal/port"
)

// Provider bundles the two LLM capabilities the pipeline needs. Every
// registered provider must support both.
type Provider interface {
	port.RecipeStructurer
	port.PhotoTranscriber
}

// ProviderFactory is a function that creates a Provider from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (Provider, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an LLM provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates a Provider from a provider config using the registered factory.
func NewProvider(cfg *config.LLMProviderConfig) (Provider, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
