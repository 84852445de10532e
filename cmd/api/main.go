package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rafaleads/rafaleads/internal/api/router"
	"github.com/rafaleads/rafaleads/internal/clinics"
	"github.com/rafaleads/rafaleads/internal/clinicsync"
	appconfig "github.com/rafaleads/rafaleads/internal/config"
	"github.com/rafaleads/rafaleads/internal/leads"
	"github.com/rafaleads/rafaleads/internal/observability/metrics"
	"github.com/rafaleads/rafaleads/internal/tokens"
	"github.com/rafaleads/rafaleads/internal/webhooklog"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting rafaleads API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Repositories and stores
	clinicRepo := clinics.NewPostgresRepository(pool)
	leadRepo := leads.NewPostgresRepository(pool)
	tokenRepo := tokens.NewPostgresRepository(pool)
	audit := webhooklog.NewPostgresStore(pool)

	// Services
	tokenSvc := tokens.NewService(tokenRepo, appMetrics, cfg.TokenDefaultDays)

	var syncHandler *clinicsync.Handler
	if cfg.ClinicSyncEnabled && cfg.ClinicFeedURL != "" {
		syncSvc, err := clinicsync.NewService(clinicsync.ServiceConfig{
			Source:   clinicsync.NewClient(cfg.ClinicFeedURL, cfg.ClinicFeedTimeout),
			Repo:     clinicRepo,
			Audit:    audit,
			Metrics:  appMetrics,
			Logger:   logger.Component("clinicsync"),
			Interval: cfg.ClinicSyncInterval,
			FeedURL:  cfg.ClinicFeedURL,
		})
		if err != nil {
			logger.Error("failed to create clinic sync service", "error", err)
			os.Exit(1)
		}
		go syncSvc.Start(ctx)
		syncHandler = clinicsync.NewHandler(syncSvc, logger.Component("clinicsync"))
	} else {
		logger.Info("clinic sync disabled",
			"enabled", cfg.ClinicSyncEnabled,
			"feed_url_set", cfg.ClinicFeedURL != "",
		)
	}

	// Handlers
	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadRepo, audit, appMetrics, cfg.WebhookSecret, logger.Component("leads")),
		ClinicsHandler:     clinics.NewHandler(clinicRepo, logger.Component("clinics")),
		TokensHandler:      tokens.NewHandler(tokenSvc, clinicRepo, cfg.PublicBaseURL, logger.Component("tokens")),
		SyncHandler:        syncHandler,
		TokenValidator:     tokenSvc,
		AdminSecret:        cfg.AdminSecret,
		WebhookRateLimit:   cfg.WebhookRateLimit,
		WebhookRateBurst:   cfg.WebhookRateBurst,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
