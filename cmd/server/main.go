package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/app"
	"github.com/SNU-Hackathon/Doany-sub000/internal/config"
	"github.com/SNU-Hackathon/Doany-sub000/internal/logger"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
	"github.com/SNU-Hackathon/Doany-sub000/internal/routes"
)

func main() {
	cfg := config.Load()

	flush := logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.AppEnv,
	})
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		flush()
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	handler, limiter := routes.SetupRoutes(app)
	go limiter.Run(ctx, time.Minute)

	// The probe feeds store reachability to the coordinator, which replays
	// queued attempts whenever the store comes back.
	reachability := make(chan offline.Reachability, 1)
	go app.Probe.Run(ctx, reachability)
	go func() {
		runErr := app.Coordinator.Run(ctx, offline.SourceStore, reachability)
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			slog.Error("flush coordinator stopped", "error", runErr)
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
