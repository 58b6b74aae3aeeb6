package config

import "time"

// CacheConfig configures the analysis cache's two storage tiers.
type CacheConfig struct {
	MaxEntries      int
	Expiry          time.Duration
	DiskDir         string
	CleanupInterval time.Duration
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries:      getEnvInt("CAG_CACHE_MAX_ENTRIES", 1000),
		Expiry:          getEnvDuration("CAG_CACHE_EXPIRY", time.Hour),
		DiskDir:         getEnv("CAG_CACHE_DISK_DIR", "contexts/cache"),
		CleanupInterval: getEnvDuration("CAG_CACHE_CLEANUP_INTERVAL", 30*time.Minute),
	}
}
