package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/novaacademy/aula-virtual/internal/api"
	"github.com/novaacademy/aula-virtual/internal/cache"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/logger"
	"github.com/novaacademy/aula-virtual/internal/repository/postgres"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/novaacademy/aula-virtual/internal/storage"
	"github.com/novaacademy/aula-virtual/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	dbLogLevel := gormlogger.Warn
	if cfg.IsProduction() {
		dbLogLevel = gormlogger.Error
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, dbLogLevel)
	if err != nil {
		zlog.Fatal("[main] failed to connect to database", zap.Error(err))
	}

	repos := postgres.NewRepositories(db)

	deps := service.Dependencies{Logger: zlog}

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zlog.Fatal("[main] failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		deps.Sessions = cache.NewRedisSessionCache(rdb)
		zlog.Info("[main] session cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.StorageBucket != "" {
		s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:  cfg.StorageEndpoint,
			Region:    cfg.StorageRegion,
			Bucket:    cfg.StorageBucket,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			PublicURL: cfg.StoragePublicURL,
		}, zlog)
		if err != nil {
			zlog.Fatal("[main] failed to configure object storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			zlog.Fatal("[main] object storage bucket unavailable", zap.Error(err))
		}
		deps.Storage = s3Store
	} else {
		zlog.Warn("[main] STORAGE_BUCKET not set, avatars are kept in memory")
		deps.Storage = storage.NewMemoryStorage("/files")
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(zlog)
	go hub.Run()
	defer hub.Stop()
	deps.Notifier = hub

	services := service.NewServices(repos, cfg, deps)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := api.NewRouter(services, hub, cfg, zlog, registry)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("[main] server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("[main] failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("[main] shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("[main] server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	zlog.Info("[main] server stopped")
}
