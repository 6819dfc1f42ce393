package config

import "github.com/caarlos0/env/v11"

// Config captures process-level settings so main stays lean.
type Config struct {
	// Addr is the listen address for the health/metrics endpoint.
	Addr string `env:"CANOPY_ADDR" envDefault:":8080"`
	// RequireDataPointOwner makes the owner mandatory when data points are
	// created, instead of being assignable later in the workflow.
	RequireDataPointOwner bool `env:"CANOPY_REQUIRE_OWNER" envDefault:"false"`
	// SeedCatalog installs the default section catalog on startup.
	SeedCatalog bool `env:"CANOPY_SEED_CATALOG" envDefault:"true"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"CANOPY_LOG_LEVEL" envDefault:"info"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
