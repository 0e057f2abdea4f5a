package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/jobs"
)

type fakeClient struct {
	tasks  []*asynq.Task
	closed bool
}

func (f *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueuePrint, Type: task.Type()}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

type fakeInspector struct {
	info      *asynq.QueueInfo
	scheduled []*asynq.TaskInfo
	err       error
	queues    []string
}

func (f *fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	f.queues = append(f.queues, queue)
	return f.info, f.err
}

func (f *fakeInspector) ListScheduledTasks(queue string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	f.queues = append(f.queues, queue)
	return f.scheduled, f.err
}

func (f *fakeInspector) Close() error { return nil }

func run(t *testing.T, client *fakeClient, inspector *fakeInspector, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(func() (*QueueCLI, error) {
		return NewQueueCLIWith(client, inspector), nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPrintEnqueuesBatchPrint(t *testing.T) {
	client := &fakeClient{}
	out, err := run(t, client, &fakeInspector{},
		"print", "--kind", "customers", "--profile", "4", "--copies", "2", "--q", "acme", "--ids", "3,5", "--from", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "enqueued task-1 on queue print")
	assert.True(t, client.closed)

	require.Len(t, client.tasks, 1)
	assert.Equal(t, jobs.TaskReportsBatchPrint, client.tasks[0].Type())
	var payload jobs.BatchPrintPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, "customers", payload.Kind)
	assert.EqualValues(t, 4, payload.ProfileID)
	assert.Equal(t, 2, payload.Copies)
	assert.Equal(t, "acme", payload.Criteria.Keyword)
	assert.Equal(t, []int64{3, 5}, payload.Criteria.IDs)
	require.NotNil(t, payload.Criteria.From)
	assert.Equal(t, "2024-01-01", payload.Criteria.From.Format("2006-01-02"))
	assert.Equal(t, "reportctl", payload.RequestedBy)
}

func TestPrintRejectsBadInput(t *testing.T) {
	client := &fakeClient{}
	_, err := run(t, client, &fakeInspector{}, "print", "--kind", "customers")
	assert.Error(t, err, "profile is required")

	_, err = run(t, client, &fakeInspector{}, "print", "--kind", "customers", "--profile", "1", "--from", "01/02/2024")
	assert.ErrorContains(t, err, "--from must be YYYY-MM-DD")

	_, err = run(t, client, &fakeInspector{}, "print", "--kind", "customers", "--profile", "1", "--copies", "0")
	assert.ErrorIs(t, err, jobs.ErrInvalidPayload)
	assert.Empty(t, client.tasks)
}

func TestQueueShowsPrintCounters(t *testing.T) {
	inspector := &fakeInspector{info: &asynq.QueueInfo{Queue: jobs.QueuePrint, Pending: 3, Active: 1, Retry: 2}}
	out, err := run(t, &fakeClient{}, inspector, "queue")
	require.NoError(t, err)
	assert.Equal(t, []string{jobs.QueuePrint}, inspector.queues)
	assert.Contains(t, out, "PENDING")
	assert.Regexp(t, `print\s+3\s+1\s+0\s+2\s+0`, out)

	_, err = run(t, &fakeClient{}, &fakeInspector{err: errors.New("redis down")}, "queue")
	assert.ErrorContains(t, err, "redis down")
}

func TestScheduledListsTasks(t *testing.T) {
	next := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	inspector := &fakeInspector{scheduled: []*asynq.TaskInfo{{ID: "abc", Type: jobs.TaskReportsBatchPrint, NextProcessAt: next}}}
	out, err := run(t, &fakeClient{}, inspector, "scheduled", "--size", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "abc\treports:batch_print\t2024-03-01T06:00:00Z")

	out, err = run(t, &fakeClient{}, &fakeInspector{}, "scheduled")
	require.NoError(t, err)
	assert.Contains(t, out, "no scheduled print tasks")
}
