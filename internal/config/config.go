package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process configuration sourced from the environment.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseURL string

	// HistoryStartYear and HistoryStartMonth bound how far back rent history
	// reconstruction reaches when a request does not say otherwise.
	HistoryStartYear  int
	HistoryStartMonth int

	SeedDemoData bool
}

// Load reads configuration from the environment, honouring a local .env file
// when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:       envString("ENVIRONMENT", "development"),
		HTTPAddr:          envString("HTTP_ADDR", ":8080"),
		DatabaseURL:       envString("DATABASE_URL", ""),
		HistoryStartYear:  envInt("HISTORY_START_YEAR", 2015),
		HistoryStartMonth: envInt("HISTORY_START_MONTH", 1),
		SeedDemoData:      envBool("SEED_DEMO_DATA", false),
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func envString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
