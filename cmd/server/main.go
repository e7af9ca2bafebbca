package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dice-settle/internal/app"
	"dice-settle/internal/config"
	"dice-settle/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Init(cfg.LogDevelopment); err != nil {
		log.Fatal(err)
	}
	defer logger.Log.Sync()

	server, err := app.NewServer(cfg)
	if err != nil {
		logger.Log.Fatal("init server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			logger.Log.Error("shutdown", zap.Error(err))
		}
	}()

	if err := server.Start(ctx); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}
