package config

// MetricsConfig holds metrics collection configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Dump writes the gathered metrics to stderr when a command finishes
	Dump bool `mapstructure:"dump"`
}
