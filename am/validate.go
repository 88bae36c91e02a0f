package am

import (
	"github.com/teranos/ASE/errors"
)

// Validate checks a loaded configuration for values the engine cannot
// operate with. Zero values are allowed where defaults apply; negatives
// are not.
func Validate(config *Config) error {
	if config == nil {
		return errors.NewConfigurationError("config is nil")
	}
	if config.Database.Path == "" {
		return errors.NewConfigurationError("database.path is empty")
	}
	if config.Engine.HistoryCapacity < 0 {
		return errors.NewConfigurationError("engine.history_capacity must not be negative, got %d", config.Engine.HistoryCapacity)
	}
	if config.Transport.QueryTimeoutSeconds < 0 {
		return errors.NewConfigurationError("transport.query_timeout_seconds must not be negative, got %d", config.Transport.QueryTimeoutSeconds)
	}
	if config.Transport.MaxRetries < 0 {
		return errors.NewConfigurationError("transport.max_retries must not be negative, got %d", config.Transport.MaxRetries)
	}
	if config.Transport.RequestsPerMinute < 0 {
		return errors.NewConfigurationError("transport.requests_per_minute must not be negative, got %d", config.Transport.RequestsPerMinute)
	}
	return nil
}
