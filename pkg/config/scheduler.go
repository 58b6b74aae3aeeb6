package config

import "time"

// SchedulerConfig configures the MaintenanceScheduler's cron jobs.
type SchedulerConfig struct {
	CacheCleanupCron   string
	MemoryCron         string
	GlobalMemoryCron   string
	MetricsRetentionCron string
	MetricsRetention   time.Duration
}

func LoadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CacheCleanupCron:     getEnv("CAG_SCHED_CACHE_CLEANUP_CRON", "@every 30m"),
		MemoryCron:           getEnv("CAG_SCHED_MEMORY_CRON", "@every 24h"),
		GlobalMemoryCron:     getEnv("CAG_SCHED_GLOBAL_MEMORY_CRON", "@every 12h"),
		MetricsRetentionCron: getEnv("CAG_SCHED_METRICS_RETENTION_CRON", "@every 24h"),
		MetricsRetention:     getEnvDuration("CAG_SCHED_METRICS_RETENTION", 30*24*time.Hour),
	}
}
