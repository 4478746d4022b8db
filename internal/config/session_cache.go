package config

import "time"

// SessionCacheConfig defines settings for the Redis session cache.  When
// Enabled is false or no Redis client is configured, every lookup goes
// to the database.  TTL bounds how long a cached session may outlive a
// failed invalidation.
type SessionCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadSessionCacheConfig reads SESSION_CACHE_* variables.  Defaults are
// used when variables are not set.
func LoadSessionCacheConfig() SessionCacheConfig {
	return SessionCacheConfig{
		Enabled: envBool("SESSION_CACHE_ENABLED", true),
		TTL:     envDur("SESSION_CACHE_TTL", time.Minute),
		Prefix:  envStr("SESSION_CACHE_PREFIX", "session"),
	}
}
