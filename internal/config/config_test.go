package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "marketpulse_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "marketpulse_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "8000", cfg.Server.Port)
	require.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "gem-key", cfg.LLM.APIKey)
	require.Equal(t, 500, cfg.LLM.MaxTokens)
	require.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	require.Equal(t, 20, cfg.Ingest.ArticleLimit)
	require.Equal(t, 24*time.Hour, cfg.Ingest.Interval)
	require.Equal(t, "financial_markets", cfg.AlphaVantage.Topics)
}

func TestLoadConfig_ProviderKey(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.LLM.Provider)
	require.Equal(t, "ant-key", cfg.LLM.APIKey)
}

func TestLoadConfig_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestRedisAddr_Unconfigured(t *testing.T) {
	require.Equal(t, "", RedisConfig{Port: "6379"}.Addr())
}

func TestLoadConfig_CronSecretFallback(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("INTERNAL_API_TOKEN", "")
	t.Setenv("CRON_SECRET", "cron-123")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "cron-123", cfg.Internal.Token)
}

func TestLoadConfig_IngestTimeoutNeedsUnit(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("INGEST_TIMEOUT", "300")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "INGEST_TIMEOUT")

	t.Setenv("INGEST_TIMEOUT", "300s")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.Ingest.Timeout)
}
