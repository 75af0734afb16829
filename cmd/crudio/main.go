package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crudio/crudio/internal/api"
	"github.com/crudio/crudio/internal/app"
	"github.com/crudio/crudio/internal/observability"
	"github.com/crudio/crudio/internal/platform/cache"
	"github.com/crudio/crudio/internal/sales"
	"github.com/crudio/crudio/internal/sales/catalog"
	"github.com/crudio/crudio/internal/sales/list"
	"github.com/crudio/crudio/internal/sales/validation"
	"github.com/crudio/crudio/internal/shared"
	"github.com/crudio/crudio/internal/state"
	"github.com/crudio/crudio/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "crudio_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(cfg.Locale)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	client := api.NewClient(api.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Burst:     int(cfg.APIRateLimit),
		Metrics:   metrics,
	})
	products := catalog.New(client, cache.NewJSON(redisClient, "crudio:catalog", cfg.CatalogCacheTTL))

	workspaces := sales.NewRegistry(sales.RegistryConfig{
		NewList: func(store *state.Store) *list.Controller {
			return list.NewController(list.Config{
				Store:     store,
				API:       client,
				Products:  products,
				Logger:    logger,
				BannerTTL: cfg.BannerTTL,
				Metrics:   metrics,
			})
		},
		IdleTTL: cfg.WorkspaceIdleTTL,
		Logger:  logger,
		Metrics: metrics,
	})
	go workspaces.Run(ctx, time.Minute)

	salesHandler := sales.NewHandler(logger, templates, csrfManager, sessionManager, workspaces, client, validation.New())

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		SalesHandler:   salesHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	workspaces.Close()
}
