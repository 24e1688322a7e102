package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/ledger-dashboard/internal/adapters/http"
	"github.com/kirillkom/ledger-dashboard/internal/bootstrap"
	"github.com/kirillkom/ledger-dashboard/internal/config"
	"github.com/kirillkom/ledger-dashboard/internal/observability/logging"
)

const service = "dashboard"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, service)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go app.Dashboard.Initialize(ctx)
	go app.Dashboard.PollHealth(ctx, time.Duration(cfg.HealthPollSeconds)*time.Second)

	router := httpadapter.NewRouter(app.Dashboard, app.Notices, app.Files, httpadapter.Options{
		Render:         app.Render,
		Metrics:        app.Metrics,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
		MaxUploadBytes: cfg.UploadMaxBytes,
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.DashboardPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("dashboard_listening", "addr", server.Addr, "backend_url", cfg.BackendURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("dashboard server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("dashboard_shutdown_failed", "error", err)
	}
}
