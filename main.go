package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/telcwrite/telcwrite/internal/config"
	"github.com/telcwrite/telcwrite/internal/database"
	"github.com/telcwrite/telcwrite/internal/document/handler"
	"github.com/telcwrite/telcwrite/internal/document/repository"
	"github.com/telcwrite/telcwrite/internal/document/service"
	"github.com/telcwrite/telcwrite/internal/review"
	"github.com/telcwrite/telcwrite/internal/storage"
	"github.com/telcwrite/telcwrite/pkg/logger"
	"github.com/telcwrite/telcwrite/pkg/metrics"
	"github.com/telcwrite/telcwrite/pkg/middleware"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg := config.Load()

	store := openStore(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logger.Errorf("store close: %v", err)
		}
	}()

	client := reviewClient(cfg)
	svc := service.New(store)
	lifecycle := review.NewLifecycle(store, client)

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && cfg.Redis.Host != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
				Password: cfg.Redis.Password,
			})
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				logger.Warnf("redis unavailable (%v), using in-memory rate limiter", err)
				r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			} else {
				win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
				r.Use(middleware.RedisRateLimit(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			}
		} else {
			r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(r, svc, lifecycle)

	if cfg.Server.StaticDir != "" {
		r.Static("/static", cfg.Server.StaticDir)
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("telcwrite server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}

	uploadSnapshot(shutdownCtx, store)
}

// openStore picks the backend: Mongo when MONGODB_URI is set, otherwise the
// JSON file store at DB_PATH.
func openStore(cfg *config.Config) repository.Store {
	if cfg.Store.MongoURI != "" {
		db, err := database.Connect(context.Background(), cfg.Store.MongoURI, cfg.Store.MongoDB, cfg.Store.MongoTimeout)
		if err != nil {
			logger.Fatalf("cannot connect to MongoDB: %v", err)
		}
		logger.Infof("using MongoDB store (database %s)", cfg.Store.MongoDB)
		return repository.NewMongoStore(db)
	}
	s, err := repository.OpenFileStore(cfg.Store.Path)
	if err != nil {
		logger.Fatalf("database initialization failed: %v", err)
	}
	logger.Infof("using file store at %s", cfg.Store.Path)
	return s
}

// reviewClient builds the model client, or the in-process mock when
// REVIEW_MOCK is set.
func reviewClient(cfg *config.Config) review.Client {
	if cfg.Review.Mock {
		logger.Warnf("REVIEW_MOCK set: reviews are generated in-process")
		return review.MockClient{}
	}
	client, err := review.NewOpenAIClient(review.OpenAISettings{
		APIKey:     cfg.Review.APIKey,
		Model:      cfg.Review.Model,
		BaseURL:    cfg.Review.BaseURL,
		PromptPath: cfg.Review.PromptPath,
	})
	if err != nil {
		logger.Fatalf("review client: %v", err)
	}
	return client
}

// uploadSnapshot pushes a final copy of the file store to object storage on
// shutdown, when MinIO is configured.
func uploadSnapshot(ctx context.Context, store repository.Store) {
	fs, ok := store.(*repository.FileStore)
	if !ok {
		return
	}
	mcfg := storage.SnapshotConfigFromEnv()
	if !mcfg.Enabled() {
		return
	}
	snaps, err := storage.NewSnapshotStore(mcfg)
	if err != nil {
		logger.Errorf("snapshot store: %v", err)
		return
	}
	key, err := snaps.UploadSnapshot(ctx, fs.Path())
	if err != nil {
		logger.Errorf("snapshot upload: %v", err)
		return
	}
	logger.Infof("database snapshot uploaded as %s", key)
}
