package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-reports/internal/app"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/db"
	"github.com/odyssey-erp/odyssey-reports/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.DBOptions())
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	stack, err := app.NewReportStack(ctx, app.StackParams{
		Config: cfg,
		Pool:   pool,
		Redis:  dedup,
		Logger: logger,
	})
	if err != nil {
		logger.Error("init reports", slog.Any("error", err))
		os.Exit(1)
	}

	batchPrint := jobs.NewBatchPrintJob(stack.Registry, logger)

	var cron []jobs.CronRegistration
	if cfg.ReportScheduleSpec != "" {
		task, err := jobs.NewBatchPrintTask(jobs.BatchPrintPayload{
			Kind:        cfg.ReportScheduleKind,
			ProfileID:   cfg.ReportScheduleProfile,
			Copies:      1,
			RequestedBy: "scheduler",
		})
		if err != nil {
			logger.Error("build scheduled print task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.ReportScheduleSpec, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.QueueOptions(),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsBatchPrint, Handler: batchPrint.Handle},
		},
		Cron:            cron,
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: cfg.WorkerShutdown,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
