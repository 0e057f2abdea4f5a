package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-reports/internal/app"
	"github.com/odyssey-erp/odyssey-reports/internal/observability"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/db"
	reportshttp "github.com/odyssey-erp/odyssey-reports/internal/reports/http"
	"github.com/odyssey-erp/odyssey-reports/jobs"
	"github.com/odyssey-erp/odyssey-reports/report"
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

	dbpool, err := db.New(ctx, cfg.DBOptions())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Print deduplication is skipped while redis is down.
	var dedup redis.Cmdable
	redisClient, err := cache.New(ctx, cfg.CacheOptions())
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	} else {
		dedup = redisClient
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	stack, err := app.NewReportStack(ctx, app.StackParams{
		Config:  cfg,
		Pool:    dbpool,
		Redis:   dedup,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		logger.Error("init reports", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := cfg.QueueOptions()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	reportsHandler := reportshttp.NewHandler(reportshttp.Config{
		Logger:    logger,
		Registry:  stack.Registry,
		Financial: stack.Financial,
		Text:      stack.Dispatcher,
		Enqueuer:  jobClient,
		Page:      stack.Page,
		CompanyID: cfg.ReportCompanyID,
		RateLimit: cfg.ReportRateLimit,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reportsHandler,
		ReportHandler:  report.NewHandler(stack.PDFClient, logger),
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
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
}
