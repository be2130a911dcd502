package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// Frontend
	AllowedOrigin string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  getEnvOrDefault("ENV", "development"),
		// A missing key is reported as a 500 on each chat request, not a
		// boot failure, so the health page stays reachable either way.
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_API_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeout: time.Duration(getEnvAsIntOrDefault("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		AllowedOrigin: getEnvOrDefault("ALLOWED_ORIGIN", "*"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
