package config

import "time"

// ContextManagerConfig configures the ContextManager's cache, locking and
// fragmentation behaviour.
type ContextManagerConfig struct {
	CacheTTL             time.Duration
	MaxCacheSize         int
	MaxFragmentSize      int // bytes
	FragmentChunkSize    int // items per fragment
	LockTimeout          time.Duration
	LockPollInterval     time.Duration
	LockSweepInterval    time.Duration
	ContextDir           string
	HistoryDir           string
}

func LoadContextManagerConfig() ContextManagerConfig {
	return ContextManagerConfig{
		CacheTTL:          getEnvDuration("CAG_CTXMGR_CACHE_TTL", 10*time.Minute),
		MaxCacheSize:      getEnvInt("CAG_CTXMGR_MAX_CACHE_SIZE", 100),
		MaxFragmentSize:   getEnvInt("CAG_CTXMGR_MAX_FRAGMENT_SIZE", 100*1024),
		FragmentChunkSize: getEnvInt("CAG_CTXMGR_FRAGMENT_CHUNK_SIZE", 10),
		LockTimeout:       getEnvDuration("CAG_CTXMGR_LOCK_TIMEOUT", 3*time.Second),
		LockPollInterval:  getEnvDuration("CAG_CTXMGR_LOCK_POLL_INTERVAL", 100*time.Millisecond),
		LockSweepInterval: getEnvDuration("CAG_CTXMGR_LOCK_SWEEP_INTERVAL", 5*time.Minute),
		ContextDir:        getEnv("CAG_CTXMGR_CONTEXT_DIR", "contexts/maps"),
		HistoryDir:        getEnv("CAG_CTXMGR_HISTORY_DIR", "contexts/history"),
	}
}
