package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "ase.db")

	// Engine defaults
	v.SetDefault("engine.history_capacity", DefaultHistoryCapacity)

	// Transport defaults
	v.SetDefault("transport.query_timeout_seconds", DefaultQueryTimeoutSeconds)
	v.SetDefault("transport.max_retries", DefaultMaxRetries)
	v.SetDefault("transport.requests_per_minute", DefaultRequestsPerMinute)
}
