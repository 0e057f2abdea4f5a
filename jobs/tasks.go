package jobs

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueuePrint carries print work so long batches do not starve other tasks.
	QueuePrint = "print"
	// TaskReportsBatchPrint prints every entity matching a criteria.
	TaskReportsBatchPrint = "reports:batch_print"
)

// ErrInvalidPayload marks payloads that can never succeed.
var ErrInvalidPayload = errors.New("jobs: invalid payload")

// BatchPrintPayload describes a queued batch print.
type BatchPrintPayload struct {
	Kind        string           `json:"kind"`
	Criteria    reports.Criteria `json:"criteria"`
	ProfileID   int64            `json:"profile_id"`
	Copies      int              `json:"copies"`
	RequestedBy string           `json:"requested_by,omitempty"`
}

// Validate checks the payload before it is queued or run.
func (p BatchPrintPayload) Validate() error {
	if strings.TrimSpace(p.Kind) == "" || p.ProfileID <= 0 || p.Copies <= 0 {
		return ErrInvalidPayload
	}
	return p.Criteria.Validate()
}

// NewBatchPrintTask constructs an Asynq task.
func NewBatchPrintTask(payload BatchPrintPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsBatchPrint, data, asynq.Queue(QueuePrint), asynq.MaxRetry(2)), nil
}
