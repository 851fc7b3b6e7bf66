package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/coach"
	"dsacoach-gateway/internal/config"
	"dsacoach-gateway/internal/dataset"
	"dsacoach-gateway/internal/handlers"
	"dsacoach-gateway/internal/httpserver"
	"dsacoach-gateway/internal/leetcode"
	"dsacoach-gateway/internal/llm"
	"dsacoach-gateway/internal/metrics"
	"dsacoach-gateway/pkg/logging/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	flagOrEnv(cmd, "config", "CONFIG_FILE")
	flagOrEnv(cmd, "log-level", "LOG_LEVEL")

	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ----- Logger -----
	logger := logging.Init(logging.Options{Env: cfg.Env, Level: cfg.LogLevel})
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.Error(err))
		return err
	}

	// ----- Metrics -----
	metrics.Register()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("dataset_path", cfg.DatasetPath),
		zap.Duration("request_timeout", cfg.RequestTimeout.Std()),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.Cache.Backend == cache.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
		})
		defer redisClient.Close()

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.Cache.RedisAddr),
		)
	}

	// ----- Caches -----
	domains := cache.NewDomains(
		cfg.Cache.AI.CacheConfig(),
		cfg.Cache.Profile.CacheConfig(),
		cfg.Cache.Dataset.CacheConfig(),
	)
	responses := cache.NewResponseCache(cache.Config{
		Backend: cfg.Cache.Backend,
		Prefix:  cfg.Cache.Prefix,
	}, domains.AI, redisClient)
	responses = cache.NewLoggingResponseCache(responses, cfg.Cache.Backend)

	// ----- Dataset -----
	engine := dataset.NewEngine(dataset.SourceFor(cfg.DatasetPath), domains.Dataset, logger)
	engine.Load()

	// ----- Model backend -----
	gen, err := llm.NewGenerator(llm.Settings{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey(),
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
		Timeout:  cfg.RequestTimeout.Std(),
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := gen.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	cached := llm.NewCachedGenerator(gen, responses, cfg.Cache.AI.TTL.Std())

	// ----- LeetCode + coach -----
	lc := leetcode.NewClient(leetcode.Config{Endpoint: cfg.LeetCodeURL}, domains.Profile, logger)
	svc := coach.NewService(cached, lc)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, httpserver.Handlers{
		Coach:   handlers.NewCoachHandler(svc),
		Dataset: handlers.NewDatasetHandler(engine),
		System:  handlers.NewSystemHandler(config.Version, svc.Provider(), domains),
	}, httpserver.Options{
		RequestTimeout: cfg.RequestTimeout.Std(),
	})

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout.Std() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting gateway",
		zap.String("addr", srv.Addr),
		zap.String("version", config.Version),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			errCh <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
