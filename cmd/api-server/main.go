package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medimind/medimind-server/internal/api"
	"github.com/medimind/medimind-server/internal/appointment"
	"github.com/medimind/medimind-server/internal/chat"
	"github.com/medimind/medimind-server/internal/config"
	"github.com/medimind/medimind-server/internal/db"
	"github.com/medimind/medimind-server/internal/doctor"
	"github.com/medimind/medimind-server/internal/news"
	"github.com/medimind/medimind-server/internal/observability/metrics"
	redisclient "github.com/medimind/medimind-server/internal/redis"
	"github.com/medimind/medimind-server/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting", "env", cfg.Env, "http_port", cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema first. A server that cannot migrate must not serve.
	if err := db.RunMigrations(cfg.PostgresDSN); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to redis")

	appointments := appointment.NewService(appointment.NewPgRepository(pool))
	doctors := doctor.NewService(doctor.NewPgRepository(pool), cfg.JWTSecret, cfg.JWTTokenTTL)

	var llm chat.LLMClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiClient(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("gemini client init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := gemini.Close(); err != nil {
				logger.Warn("error closing gemini client", "error", err)
			}
		}()
		llm = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat endpoint will report unconfigured")
	}
	chatSvc := chat.NewService(llm, chat.NewPgHistory(pool), logger)

	var newsClient *news.Client
	if cfg.NewsAPIKey != "" {
		newsClient = news.NewClient(cfg.NewsAPIKey)
	} else {
		logger.Warn("NEWS_API_KEY not set, news endpoint will report unconfigured")
	}
	newsSvc := news.NewService(newsClient, rdb, cfg.NewsCacheTTL, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Appointments:   appointments,
		Doctors:        doctors,
		Chat:           chatSvc,
		News:           newsSvc,
		BookingMetrics: metrics.NewBookingMetrics(prometheus.DefaultRegisterer),
		Pool:           pool,
		Redis:          rdb,
		Env:            cfg.Env,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("api-server stopped")
}
