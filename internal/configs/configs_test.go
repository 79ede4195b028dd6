package configs

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "LOG_LEVEL", "ALLOWED_ORIGINS", "SESSION_SECRET", "SESSION_TTL",
	"SESSION_STORE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DATABASE_URL",
	"SEARCH_PROVIDER", "SEARCH_API_KEY", "SEARCH_TIMEOUT", "SEARCH_RATE_PER_SECOND", "SEARCH_RATE_BURST",
	"LLM_BASE_URL", "LLM_MODEL", "DEEPSEEK_API_KEY", "LLM_TIMEOUT", "PROMPT_AS_OF",
}

// clearEnv blanks every key LoadConfig reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, "duckduckgo", cfg.SearchProvider)
	assert.Equal(t, 8*time.Second, cfg.SearchTimeout)
	assert.Zero(t, cfg.SearchRatePerSecond, "outbound pacing is off unless configured")
	assert.Equal(t, 10, cfg.SearchRateBurst)
	assert.Equal(t, "https://api.deepseek.com", cfg.LLMBaseURL)
	assert.Equal(t, "deepseek-chat", cfg.LLMModel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, strconv.Itoa(time.Now().Year()), cfg.PromptAsOf)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SEARCH_PROVIDER", "brave")
	t.Setenv("SEARCH_API_KEY", "bk")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("PROMPT_AS_OF", "2025")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "brave", cfg.SearchProvider)
	assert.Equal(t, 3*time.Second, cfg.SearchTimeout)
	assert.Equal(t, "2025", cfg.PromptAsOf)
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "s")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/groundchat")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "DEEPSEEK_API_KEY")

	t.Setenv("DEEPSEEK_API_KEY", "k")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"port not a number": {"PORT", "http"},
		"privileged port":   {"PORT", "80"},
		"bad ttl":           {"SESSION_TTL", "forever"},
		"negative timeout":  {"SEARCH_TIMEOUT", "-1s"},
		"unknown store":     {"SESSION_STORE", "memcached"},
		"unknown provider":  {"SEARCH_PROVIDER", "bing"},
		"keyless serper":    {"SEARCH_PROVIDER", "serper"},
		"bad rate":          {"SEARCH_RATE_PER_SECOND", "fast"},
		"bad burst":         {"SEARCH_RATE_BURST", "lots"},
		"bad llm timeout":   {"LLM_TIMEOUT", "1 minute"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "preset")
	require.NoError(t, os.Unsetenv("PROMPT_AS_OF"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PROMPT_AS_OF=2024\nLLM_MODEL=from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "2024", os.Getenv("PROMPT_AS_OF"))
	assert.Equal(t, "preset", os.Getenv("LLM_MODEL"), "existing variables win")
}
