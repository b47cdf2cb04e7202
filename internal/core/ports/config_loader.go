package ports

import "go.trai.ch/hob/internal/core/domain"

// ConfigLoader resolves the runtime configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load merges flags, environment, the config file and defaults.
	Load(overrides domain.ConfigOverrides) (*domain.Config, error)
}
