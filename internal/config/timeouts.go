package config

import "time"

// TimeoutConfig holds timeout settings tunable via CLI flags.
type TimeoutConfig struct {
	// HTTPClient is the timeout for requests to subtitle providers.
	// Default: 15s
	HTTPClient time.Duration

	// WebSocketPing is the interval between session keepalive pings.
	// Default: 30s
	WebSocketPing time.Duration

	// Selection bounds a single selection request, including any provider
	// lookup it triggers. Default: 20s
	Selection time.Duration
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPClient:    15 * time.Second,
		WebSocketPing: 30 * time.Second,
		Selection:     20 * time.Second,
	}
}

// global instance that can be set at startup
var globalTimeouts = DefaultTimeoutConfig()

// SetGlobalTimeouts sets the global timeout configuration
func SetGlobalTimeouts(cfg *TimeoutConfig) {
	globalTimeouts = cfg
}

// GetTimeouts returns the global timeout configuration
func GetTimeouts() *TimeoutConfig {
	return globalTimeouts
}
