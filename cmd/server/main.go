package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skilltrack/internal/app"
	"skilltrack/internal/config"
	"skilltrack/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	bootstrap, cleanup, err := app.Bootstrap(bootCtx, cfg, zl)
	bootCancel()
	if err != nil {
		zl.Fatal("failed to bootstrap app", "error", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			zl.Error("cleanup error", "error", err)
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		zl.Fatal("invalid HTTP port", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server listening", "addr", addr, "env", cfg.App.Environment)
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zl.Error("server error", "error", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			zl.Error("shutdown error", "error", err)
		}
	}
}
