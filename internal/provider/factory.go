package provider

import (
	"fmt"

	"invoicevision/internal/config"
	"invoicevision/internal/port"
)

// Factory is a function that creates a ModelExtractor from a provider config.
type Factory func(cfg *config.ProviderConfig) (port.ModelExtractor, error)

// registry of provider factories, populated explicitly via Register at
// startup.
var providers = map[string]Factory{}

// Register registers a provider factory by name.
func Register(name string, factory Factory) {
	providers[name] = factory
}

// New creates a ModelExtractor from a provider config using the registered
// factory.
func New(cfg *config.ProviderConfig) (port.ModelExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
