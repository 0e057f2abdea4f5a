package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

// ReporterLookup resolves a report kind to its service.
type ReporterLookup interface {
	Get(kind string) (reports.Reporter, error)
}

// BatchPrintJob runs queued batch prints.
type BatchPrintJob struct {
	reporters ReporterLookup
	logger    *slog.Logger
}

// NewBatchPrintJob constructs the job handler.
func NewBatchPrintJob(reporters ReporterLookup, logger *slog.Logger) *BatchPrintJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchPrintJob{reporters: reporters, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract. Item failures are logged and
// do not fail the task; retrying would reprint the items that succeeded.
func (j *BatchPrintJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.reporters == nil {
		return errors.New("batch print job not configured")
	}
	var payload BatchPrintPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: %v: %w", ErrInvalidPayload, err, asynq.SkipRetry)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	rep, err := j.reporters.Get(payload.Kind)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With(
		slog.String("kind", payload.Kind),
		slog.String("criteria", payload.Criteria.Summary()),
		slog.Int64("profile_id", payload.ProfileID),
	)
	if payload.RequestedBy != "" {
		log = log.With(slog.String("requested_by", payload.RequestedBy))
	}

	res := rep.DirectPrintBatch(ctx, payload.Criteria, payload.ProfileID, payload.Copies)
	if !res.OK() {
		if errors.Is(res.Err, reports.ErrNoMatchingRecords) {
			log.Info("batch print skipped", slog.String("failure", res.Failure))
			return nil
		}
		log.Error("batch print failed", slog.String("failure", res.Failure))
		return res.Err
	}
	for _, item := range res.Items {
		attrs := []any{slog.Int64("id", item.ID), slog.String("job_id", item.JobID), slog.Bool("duplicate", item.Duplicate)}
		if item.OK() {
			log.Info("batch print item", attrs...)
			continue
		}
		log.Warn("batch print item failed", append(attrs, slog.String("failure", item.Failure))...)
	}
	log.Info("batch print done", slog.Int("printed", res.Printed), slog.Int("failed", res.Failed))
	return nil
}
