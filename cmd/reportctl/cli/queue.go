package cli

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-reports/jobs"
)

// TaskEnqueuer is the subset of asynq.Client used by the CLI.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// QueueInspector is the subset of asynq.Inspector used by the CLI.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	Close() error
}

// QueueCLI wraps manual management helpers for the print queue.
type QueueCLI struct {
	client    TaskEnqueuer
	inspector QueueInspector
}

// NewQueueCLI initialises the helpers against the given Redis instance.
func NewQueueCLI(opts asynq.RedisClientOpt) *QueueCLI {
	return &QueueCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// NewQueueCLIWith builds the helpers on existing connections.
func NewQueueCLIWith(client TaskEnqueuer, inspector QueueInspector) *QueueCLI {
	return &QueueCLI{client: client, inspector: inspector}
}

// Close releases underlying resources.
func (c *QueueCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// TriggerBatchPrint enqueues a batch print.
func (c *QueueCLI) TriggerBatchPrint(ctx context.Context, payload jobs.BatchPrintPayload) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("queue cli: client not configured")
	}
	task, err := jobs.NewBatchPrintTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
}

// InspectQueue reports the print queue counters.
func (c *QueueCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("queue cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueuePrint)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueuePrint}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
	}
	return stats, nil
}

// ListScheduled returns scheduled print tasks.
func (c *QueueCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("queue cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueuePrint, asynq.PageSize(size), asynq.Page(1))
}
