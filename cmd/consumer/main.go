package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/serroba/link-shortener/internal/container"
	"github.com/serroba/link-shortener/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	opts := container.DefaultOptions()
	opts.RedisAddr = getEnv("REDIS_ADDR", opts.RedisAddr)
	opts.LogFormat = getEnv("LOG_FORMAT", opts.LogFormat)
	opts.Storage = getEnv("STORAGE", opts.Storage)
	opts.DatabaseURL = getEnv("DATABASE_URL", opts.DatabaseURL)

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.RepositoryPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	if opts.Storage == container.StorageMemory {
		logger.Warn("memory storage is private to this process; visit counts will not reach the server")
	}

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
