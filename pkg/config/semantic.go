package config

// SemanticConfig configures the SemanticService backend.
type SemanticConfig struct {
	Provider           string // "tfidf" or "openai"
	OpenAIAPIKey       string
	OpenAIModel        string
	SimilarityThreshold float64
	BreakerMaxRequests uint32
	BreakerInterval    string
}

func LoadSemanticConfig() SemanticConfig {
	return SemanticConfig{
		Provider:            getEnv("CAG_SEMANTIC_PROVIDER", "tfidf"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("CAG_SEMANTIC_OPENAI_MODEL", "text-embedding-3-small"),
		SimilarityThreshold: getEnvFloat("CAG_SIMILARITY_THRESHOLD", 0.75),
		BreakerMaxRequests:  uint32(getEnvInt("CAG_SEMANTIC_BREAKER_MAX_REQUESTS", 5)),
		BreakerInterval:     getEnv("CAG_SEMANTIC_BREAKER_INTERVAL", "1m"),
	}
}
