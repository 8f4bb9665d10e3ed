// @title Chathub
// @version 0.1
// @description Chat backend with direct and group chats and real-time delivery.

// @host localhost:8080
// @BasePath /
// @query.collection.format multi
// @schemes http

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tush00nka/chathub/internal/app"
	"tush00nka/chathub/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
