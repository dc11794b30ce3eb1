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

	"civicfix-be/config"
	"civicfix-be/repository"
	"civicfix-be/routes"
	"civicfix-be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store := repository.NewMemoryStore()
	mongoClient, db, err := config.ConnectDB(ctx, cfg.Mongo, logger)
	if err != nil {
		if cfg.App.Production() {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		logger.Warn("MongoDB unavailable, using in-memory store", zap.Error(err))
	} else {
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			logger.Fatal("failed to create indexes", zap.Error(err))
		}
		store = repository.NewMongoStore(db)
	}

	redisClient := config.ConnectRedis(ctx, cfg.Redis, logger)

	svc := services.New(cfg, store, redisClient, logger)
	router := routes.NewRouter(cfg, svc, redisClient, logger)

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			logger.Error("mongo disconnect", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
