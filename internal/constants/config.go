package constants

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration, loaded from the environment
// (optionally seeded from a .env file)
type Config struct {
	DBPath         string
	HTTPPort       string
	GistAPIURL     string
	GistToken      string
	SearchDebounce time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	godotenv.Load()

	return &Config{
		DBPath:         getEnv("BUGMEMO_DB_PATH", "bugmemo.db"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GistAPIURL:     getEnv("GIST_API_URL", "https://api.github.com"),
		GistToken:      getEnv("GITHUB_TOKEN", ""),
		SearchDebounce: time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 150)) * time.Millisecond,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
