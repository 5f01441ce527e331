package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/db.json")
	t.Setenv("REVIEW_MOCK", "true")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/tmp/db.json", cfg.Store.Path)
	assert.Equal(t, "telcwrite", cfg.Store.MongoDB)
	assert.Equal(t, 10*time.Second, cfg.Store.MongoTimeout)
	assert.True(t, cfg.Review.Mock)
	assert.Equal(t, "prompt-review.txt", cfg.Review.PromptPath)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 1, cfg.RateLimit.WindowSeconds)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_PATH", "/data/telcwrite.json")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("OPENAI_TOKEN", "test-token")
	t.Setenv("MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Review.Mock)
	assert.Equal(t, "test-token", cfg.Review.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Review.Model)
	assert.Equal(t, "http://localhost:9999/v1", cfg.Review.BaseURL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
}

func TestLoadMongoBackend(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "telcwrite_test")
	t.Setenv("REVIEW_MOCK", "true")

	cfg := Load()

	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, "telcwrite_test", cfg.Store.MongoDB)
}
