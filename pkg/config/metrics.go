package config

// MetricsConfig configures the usage/feedback metrics store.
type MetricsConfig struct {
	Backend        string // "memory" or "postgres"
	PostgresDSN    string
	PrometheusNamespace string
}

func LoadMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Backend:             getEnv("CAG_METRICS_BACKEND", "memory"),
		PostgresDSN:         getEnv("CAG_METRICS_POSTGRES_DSN", ""),
		PrometheusNamespace: getEnv("CAG_METRICS_PROMETHEUS_NAMESPACE", "cag"),
	}
}
