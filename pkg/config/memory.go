package config

import "time"

// MemoryConfig configures the per-conversation short/long-term memory store.
type MemoryConfig struct {
	MaxShortTermItems int
	MaxLongTermItems  int
	DecayFactor       float64
	RelevanceThreshold float64
	ShortTermDir      string
	LongTermDir       string
	BackupDir         string
	MaintenanceEvery  time.Duration
	ShortTermMaxAge   time.Duration
}

func LoadMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MaxShortTermItems:  getEnvInt("CAG_MEMORY_MAX_SHORT_TERM", 25),
		MaxLongTermItems:   getEnvInt("CAG_MEMORY_MAX_LONG_TERM", 100),
		DecayFactor:        getEnvFloat("CAG_MEMORY_DECAY_FACTOR", 0.95),
		RelevanceThreshold: getEnvFloat("CAG_MEMORY_RELEVANCE_THRESHOLD", 0.2),
		ShortTermDir:       getEnv("CAG_MEMORY_SHORT_TERM_DIR", "memory/short_term"),
		LongTermDir:        getEnv("CAG_MEMORY_LONG_TERM_DIR", "memory/long_term"),
		BackupDir:          getEnv("CAG_MEMORY_BACKUP_DIR", "memory/backups"),
		MaintenanceEvery:   getEnvDuration("CAG_MEMORY_MAINTENANCE_INTERVAL", 24*time.Hour),
		ShortTermMaxAge:    getEnvDuration("CAG_MEMORY_SHORT_TERM_MAX_AGE", 30*24*time.Hour),
	}
}
