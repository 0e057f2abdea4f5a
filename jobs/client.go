package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	if redisOpts.Addr == "" {
		return nil, fmt.Errorf("jobs: redis address required")
	}
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueBatchPrint enqueues a batch print task and returns its id.
func (c *Client) EnqueueBatchPrint(ctx context.Context, payload BatchPrintPayload) (string, error) {
	task, err := NewBatchPrintTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("jobs: enqueue %s: %w", task.Type(), err)
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
