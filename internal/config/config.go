package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/telcwrite/telcwrite/pkg/logger"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Review    ReviewConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	StaticDir    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	// Path is the JSON database file (file backend, the default).
	Path string
	// MongoURI switches to the Mongo backend when set.
	MongoURI     string
	MongoDB      string
	MongoTimeout time.Duration
}

type ReviewConfig struct {
	// Mock replaces the model call with the in-process reviewer.
	Mock       bool
	APIKey     string
	Model      string
	BaseURL    string
	PromptPath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// Load reads configuration from the environment and an optional .env file.
// Missing required settings abort startup: running without a database path or
// without review credentials would only fail later, in a worse way.
func Load() *Config {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("MONGODB_DATABASE", "telcwrite")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REVIEW_PROMPT_PATH", "prompt-review.txt")
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			StaticDir:    viper.GetString("STATIC_DIR"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Store: StoreConfig{
			Path:         viper.GetString("DB_PATH"),
			MongoURI:     viper.GetString("MONGODB_URI"),
			MongoDB:      viper.GetString("MONGODB_DATABASE"),
			MongoTimeout: time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Review: ReviewConfig{
			Mock:       viper.GetBool("REVIEW_MOCK"),
			APIKey:     os.Getenv("OPENAI_TOKEN"),
			Model:      viper.GetString("MODEL"),
			BaseURL:    viper.GetString("OPENAI_BASE_URL"),
			PromptPath: viper.GetString("REVIEW_PROMPT_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	if cfg.Store.MongoURI == "" && cfg.Store.Path == "" {
		logger.Fatalf("DB_PATH environment variable is required (or set MONGODB_URI)")
	}
	if !cfg.Review.Mock {
		if cfg.Review.APIKey == "" {
			logger.Fatalf("OPENAI_TOKEN environment variable is required")
		}
		if cfg.Review.Model == "" {
			logger.Fatalf("MODEL environment variable is required")
		}
	}
	return cfg
}
