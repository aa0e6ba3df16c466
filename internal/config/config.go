package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all environment-derived settings. Components receive what
// they need through constructors; nothing reads ambient process state.
type AppConfig struct {
	OpenWeatherAPIKey string
	GeminiAPIKey      string
	GeminiModel       string

	// AuthToken, when set, is required as a bearer token on JSON-RPC calls.
	AuthToken string

	// DisplayUnits is "metric" or "imperial".
	DisplayUnits string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// StatusCheckInterval controls the provider reachability probe.
	StatusCheckInterval time.Duration

	// Task store retention.
	TaskMaxHistory int
	TaskMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}

	// Gemini is optional; without it recommendations use the rule-based
	// fallback path.
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", "gemini-2.0-flash")

	cfg.AuthToken = os.Getenv("AUTH_TOKEN")

	cfg.DisplayUnits = getenvDefault("DISPLAY_UNITS", "metric")
	if cfg.DisplayUnits != "metric" && cfg.DisplayUnits != "imperial" {
		return nil, fmt.Errorf("invalid DISPLAY_UNITS: %q (must be metric or imperial)", cfg.DisplayUnits)
	}

	timeout, err := getenvDuration("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	statusInterval, err := getenvDuration("STATUS_CHECK_INTERVAL", "5m")
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS_CHECK_INTERVAL: %w", err)
	}
	cfg.StatusCheckInterval = statusInterval

	cfg.TaskMaxHistory = getenvInt("TASK_MAX_HISTORY", 256)

	taskMaxAge, err := getenvDuration("TASK_MAX_AGE", "1h")
	if err != nil {
		return nil, fmt.Errorf("invalid TASK_MAX_AGE: %w", err)
	}
	cfg.TaskMaxAge = taskMaxAge

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
