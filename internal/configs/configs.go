/*
Package configs is responsible for loading and parsing the application's configuration settings.

Values come from environment variables, optionally seeded from a .env file. They cover the
server itself, session handling, the user and session stores, the search backend and the
completion endpoint.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	LogLevel    string

	// Security Settings
	AllowedOrigins []string
	SessionSecret  string
	SessionTTL     time.Duration

	// Session Store Settings
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Database Settings. Empty in development means the in-memory user store.
	DatabaseDSN string

	// Search Settings
	SearchProvider      string
	SearchAPIKey        string
	SearchTimeout       time.Duration
	SearchRatePerSecond float64
	SearchRateBurst     int

	// Completion Settings
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	LLMTimeout time.Duration

	// PromptAsOf is the recency marker quoted in the system prompt.
	PromptAsOf string
}

// IsDevelopment reports whether the insecure development defaults are in effect.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadDotEnv loads variables from the given files (default ".env") without overriding
// ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type conversions and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("SESSION_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.SessionSecret = "your_default_insecure_secret_key_change_me"
	}

	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", "24h"); err != nil {
		return nil, err
	}

	// --- Session Store Settings ---
	cfg.SessionStore = strings.ToLower(getenv("SESSION_STORE", "memory"))
	switch cfg.SessionStore {
	case "memory":
	case "redis":
		cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
		if cfg.RedisDB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB environment variable: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE %q: expected memory or redis", cfg.SessionStore)
	}

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
	if cfg.DatabaseDSN == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required in %s environment", cfg.Environment)
	}

	// --- Search Settings ---
	cfg.SearchProvider = strings.ToLower(getenv("SEARCH_PROVIDER", "duckduckgo"))
	cfg.SearchAPIKey = os.Getenv("SEARCH_API_KEY")
	switch cfg.SearchProvider {
	case "duckduckgo":
	case "brave", "serper":
		if cfg.SearchAPIKey == "" {
			return nil, fmt.Errorf("SEARCH_API_KEY environment variable is required for the %s search provider", cfg.SearchProvider)
		}
	default:
		return nil, fmt.Errorf("invalid SEARCH_PROVIDER %q: expected duckduckgo, brave or serper", cfg.SearchProvider)
	}

	if cfg.SearchTimeout, err = parseDuration("SEARCH_TIMEOUT", "8s"); err != nil {
		return nil, err
	}

	// Outbound search pacing is shared by every chat turn in the process, and waiting for a
	// token eats into SEARCH_TIMEOUT. It is off by default; when a provider needs it, keep
	// the burst near the expected number of concurrent chats.
	if cfg.SearchRatePerSecond, err = strconv.ParseFloat(getenv("SEARCH_RATE_PER_SECOND", "0"), 64); err != nil {
		return nil, fmt.Errorf("invalid SEARCH_RATE_PER_SECOND environment variable: %w", err)
	}
	if cfg.SearchRateBurst, err = strconv.Atoi(getenv("SEARCH_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid SEARCH_RATE_BURST environment variable: %w", err)
	}

	// --- Completion Settings ---
	cfg.LLMBaseURL = getenv("LLM_BASE_URL", "https://api.deepseek.com")
	cfg.LLMModel = getenv("LLM_MODEL", "deepseek-chat")

	cfg.LLMAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	if cfg.LLMAPIKey == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY environment variable is required in %s environment", cfg.Environment)
	}

	if cfg.LLMTimeout, err = parseDuration("LLM_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	cfg.PromptAsOf = getenv("PROMPT_AS_OF", strconv.Itoa(time.Now().Year()))

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
