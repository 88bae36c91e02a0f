package am

// Config represents the core ASE configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database" toml:"database"`
	Engine    EngineConfig    `mapstructure:"engine" toml:"engine"`
	Transport TransportConfig `mapstructure:"transport" toml:"transport"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// EngineConfig configures the statement engine
type EngineConfig struct {
	// HistoryCapacity bounds the in-memory history ledger (default: 50).
	// Zero falls back to the default; the cap is strict FIFO.
	HistoryCapacity int `mapstructure:"history_capacity" toml:"history_capacity"`
}

// TransportConfig configures the statement execution transport
type TransportConfig struct {
	QueryTimeoutSeconds int `mapstructure:"query_timeout_seconds" toml:"query_timeout_seconds"` // per-statement timeout (default: 30)
	MaxRetries          int `mapstructure:"max_retries" toml:"max_retries"`                     // retry budget per statement (default: 2)
	RequestsPerMinute   int `mapstructure:"requests_per_minute" toml:"requests_per_minute"`     // rate limit toward the backend (default: 120)
}

// Default values for engine and transport tuning.
const (
	DefaultHistoryCapacity     = 50
	DefaultQueryTimeoutSeconds = 30
	DefaultMaxRetries          = 2
	DefaultRequestsPerMinute   = 120
)

// DefaultDirPermissions is used when creating the ~/.ase directory.
const DefaultDirPermissions = 0750
