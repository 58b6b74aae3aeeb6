package config

import "time"

// GlobalMemoryConfig configures the shared, cross-conversation memory document.
type GlobalMemoryConfig struct {
	MaxEntities        int
	MaxTopics          int
	MinEntityOccurrences int
	DecayFactor        float64
	CacheSize          int
	BaseCacheTTL       time.Duration
	HighActivityUpdates int // updatesLast24h threshold that halves the cache TTL
	LowActivityUpdates  int // updatesLast24h threshold that doubles the cache TTL
	MaintenanceEvery   time.Duration
	Backend            string // "fs" or "redis"
	DocKey             string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
}

func LoadGlobalMemoryConfig() GlobalMemoryConfig {
	return GlobalMemoryConfig{
		MaxEntities:          getEnvInt("CAG_GLOBAL_MAX_ENTITIES", 200),
		MaxTopics:            getEnvInt("CAG_GLOBAL_MAX_TOPICS", 50),
		MinEntityOccurrences: getEnvInt("CAG_GLOBAL_MIN_ENTITY_OCCURRENCES", 2),
		DecayFactor:          getEnvFloat("CAG_GLOBAL_DECAY", 0.98),
		CacheSize:            getEnvInt("CAG_GLOBAL_CACHE_SIZE", 10),
		BaseCacheTTL:         getEnvDuration("CAG_GLOBAL_CACHE_BASE_TTL", 5*time.Minute),
		HighActivityUpdates:  getEnvInt("CAG_GLOBAL_HIGH_ACTIVITY_UPDATES", 100),
		LowActivityUpdates:   getEnvInt("CAG_GLOBAL_LOW_ACTIVITY_UPDATES", 10),
		MaintenanceEvery:     getEnvDuration("CAG_GLOBAL_MAINTENANCE_INTERVAL", 12*time.Hour),
		Backend:              getEnv("CAG_GLOBAL_BACKEND", "fs"),
		DocKey:               getEnv("CAG_GLOBAL_DOC_KEY", "global_memory"),
		RedisAddr:            getEnv("CAG_GLOBAL_REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("CAG_GLOBAL_REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("CAG_GLOBAL_REDIS_DB", 0),
	}
}
