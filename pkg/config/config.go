package config

import (
	"strconv"
	"time"
)

// DatabaseConfig configures the optional Postgres-backed metrics store.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("CAG_DB_HOST", "localhost"),
		Port:            getEnvInt("CAG_DB_PORT", 5432),
		User:            getEnv("CAG_DB_USER", "postgres"),
		Password:        getEnv("CAG_DB_PASSWORD", ""),
		Name:            getEnv("CAG_DB_NAME", "cagcore"),
		SSLMode:         getEnv("CAG_DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("CAG_DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("CAG_DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("CAG_DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

// StorageConfig selects and configures the fsx.FileSystem backend.
type StorageConfig struct {
	Mode      string // "local" or "s3"
	LocalDir  string
	S3Bucket  string
	S3Region  string
	S3Prefix  string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:     getEnv("CAG_STORAGE_MODE", "local"),
		LocalDir: getEnv("CAG_STORAGE_DIR", "./data"),
		S3Bucket: getEnv("CAG_STORAGE_S3_BUCKET", "cagcore-data"),
		S3Region: getEnv("CAG_STORAGE_S3_REGION", "us-east-1"),
		S3Prefix: getEnv("CAG_STORAGE_S3_PREFIX", ""),
	}
}

// Config is the root configuration tree for the cagcore module, composed of
// one sub-config per component. Each sub-config can also be loaded
// independently by a caller embedding only part of the pipeline.
type Config struct {
	Storage       StorageConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Memory        MemoryConfig
	GlobalMemory  GlobalMemoryConfig
	ContextManager ContextManagerConfig
	Scheduler     SchedulerConfig
	Metrics       MetricsConfig
	Semantic      SemanticConfig
}

// Load reads the full configuration tree from the environment.
func Load() *Config {
	return &Config{
		Storage:        loadStorageConfig(),
		Database:       loadDatabaseConfig(),
		Cache:          LoadCacheConfig(),
		Memory:         LoadMemoryConfig(),
		GlobalMemory:   LoadGlobalMemoryConfig(),
		ContextManager: LoadContextManagerConfig(),
		Scheduler:      LoadSchedulerConfig(),
		Metrics:        LoadMetricsConfig(),
		Semantic:       LoadSemanticConfig(),
	}
}
