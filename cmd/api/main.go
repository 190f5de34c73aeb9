package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todos-app/backend/internal/assets"
	"todos-app/backend/internal/cache"
	"todos-app/backend/internal/config"
	"todos-app/backend/internal/database"
	"todos-app/backend/internal/handlers"
	"todos-app/backend/internal/logger"
	"todos-app/backend/internal/monitoring"
	"todos-app/backend/internal/repositories"
	"todos-app/backend/internal/router"
	"todos-app/backend/internal/services"
	"todos-app/backend/internal/worker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Server.Environment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	logLevel := gormlogger.Warn
	if !cfg.IsProduction() {
		logLevel = gormlogger.Info
	}

	db, err := database.NewDatabasePool(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logLevel,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient := cache.NewRedisClient(cfg.Redis, cfg.GetRedisAddr())
	taskCache := cache.NewRedisCache(redisClient)

	assetStore, err := assets.NewS3Store(context.Background(), cfg.Assets)
	if err != nil {
		log.Fatal("failed to init asset store", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(userRepo, tokenService, cfg.Auth.BCryptCost)
	taskService := services.NewCachedTaskService(services.NewTaskService(taskRepo), taskCache, log)

	cleanupQueue := worker.NewQueue(redisClient)
	profileService := services.NewProfileService(userRepo, taskRepo, authService, assetStore, cleanupQueue, log)

	cleanupWorker := worker.New(worker.Config{
		RedisClient: redisClient,
		Logger:      log,
		Queues:      cfg.Worker.Queues,
	})
	cleanupWorker.RegisterHandler(worker.JobTypeAssetCleanup, worker.AssetCleanupHandler(assetStore))
	cleanupWorker.RegisterHandler(worker.JobTypeTaskPurge, worker.TaskPurgeHandler(taskRepo))
	cleanupWorker.Start(cfg.Worker.Concurrency)
	defer cleanupWorker.Stop()

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	engine := router.New(router.Deps{
		Config:  cfg,
		Logger:  log,
		Tokens:  tokenService,
		Users:   userRepo,
		Auth:    handlers.NewAuthHandler(authService, cfg.Auth.TokenTTL, cfg.Auth.CookieSecure, log),
		Tasks:   handlers.NewTaskHandler(taskService, log),
		Profile: handlers.NewProfileHandler(profileService, cfg.Auth.CookieSecure, log),
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
