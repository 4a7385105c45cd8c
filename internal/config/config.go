package config

import (
	"os"
	"strings"
)

// Config holds all externally supplied settings. Everything comes from the
// environment; there is no config file.
type Config struct {
	Addr         string
	DBPath       string
	GeminiAPIKey string
	GeminiModel  string
	UseMockAI    bool
}

// Load reads configuration from environment variables. A blank
// GEMINI_API_KEY is valid and selects mock generation.
func Load() Config {
	return Config{
		Addr:         envOrDefault("QNA_ADDR", ":8080"),
		DBPath:       envOrDefault("QNA_DB_PATH", "qna.db"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		UseMockAI:    envBoolOrDefault("USE_MOCK_AI", false),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}
