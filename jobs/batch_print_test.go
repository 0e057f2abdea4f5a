package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

type vehicleSource []reports.Vehicle

func (s vehicleSource) Get(_ context.Context, id int64) (reports.Vehicle, error) {
	for _, v := range s {
		if v.ID == id {
			return v, nil
		}
	}
	return reports.Vehicle{}, reports.ErrNotFound
}

func (s vehicleSource) List(context.Context, reports.Criteria) ([]reports.Vehicle, error) {
	return s, nil
}

type recordingPrinter struct {
	mu     sync.Mutex
	names  []string
	failOn string
}

func (p *recordingPrinter) Print(_ context.Context, doc *document.Document, _ int64, copies int) printing.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append(p.names, doc.Name)
	if p.failOn != "" && strings.Contains(doc.Name, p.failOn) {
		return printing.Failed(errors.New("printer offline"))
	}
	return printing.Outcome{JobID: "job-" + doc.Name, Copies: copies, Pages: 1}
}

func newTestJob(t *testing.T, printer *recordingPrinter) (*BatchPrintJob, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	deps := reports.Deps{
		Company:   reports.StaticCompany{CompanyName: "Acme"},
		Renderers: reports.NewRenderers(72, nil),
		Printer:   printer,
		Logger:    logger,
	}
	registry := reports.NewStandardRegistry(reports.Sources{
		Vehicles: vehicleSource{
			{ID: 1, PlateNumber: "B 1234 XY", Brand: "Isuzu", Active: true},
			{ID: 2, PlateNumber: "B 5678 ZZ", Brand: "Hino", Active: true},
		},
	}, deps)
	return NewBatchPrintJob(registry, logger), &buf
}

func batchTask(t *testing.T, payload BatchPrintPayload) *asynq.Task {
	t.Helper()
	task, err := NewBatchPrintTask(payload)
	require.NoError(t, err)
	return task
}

func TestNewBatchPrintTaskValidates(t *testing.T) {
	_, err := NewBatchPrintTask(BatchPrintPayload{Kind: "vehicles", ProfileID: 1})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = NewBatchPrintTask(BatchPrintPayload{Kind: "vehicles", ProfileID: 1, Copies: 1, Criteria: reports.Criteria{IDs: []int64{-1}}})
	assert.ErrorIs(t, err, reports.ErrInvalidCriteria)

	task := batchTask(t, BatchPrintPayload{Kind: "vehicles", ProfileID: 1, Copies: 2, Criteria: reports.Criteria{Keyword: "isuzu"}})
	assert.Equal(t, TaskReportsBatchPrint, task.Type())
	var decoded BatchPrintPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "isuzu", decoded.Criteria.Keyword)
}

func TestBatchPrintJobPrintsEveryItem(t *testing.T) {
	printer := &recordingPrinter{failOn: "B 5678"}
	job, logs := newTestJob(t, printer)

	err := job.Handle(context.Background(), batchTask(t, BatchPrintPayload{Kind: reports.KindVehicles, ProfileID: 3, Copies: 1}))
	require.NoError(t, err, "item failures do not fail the task")
	assert.Len(t, printer.names, 2)
	assert.Contains(t, logs.String(), "batch print item failed")
	assert.Contains(t, logs.String(), "printer offline")
	assert.Contains(t, logs.String(), "printed=1 failed=1")
}

func TestBatchPrintJobSkipsRetryForBadPayloads(t *testing.T) {
	job, _ := newTestJob(t, &recordingPrinter{})

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportsBatchPrint, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	data, _ := json.Marshal(BatchPrintPayload{Kind: "invoices", ProfileID: 1, Copies: 1})
	err = job.Handle(context.Background(), asynq.NewTask(TaskReportsBatchPrint, data))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, reports.ErrUnknownKind)
}

func TestBatchPrintJobNoMatchesIsNotAnError(t *testing.T) {
	printer := &recordingPrinter{}
	job, logs := newTestJob(t, printer)
	err := job.Handle(context.Background(), batchTask(t, BatchPrintPayload{
		Kind: reports.KindVehicles, ProfileID: 1, Copies: 1, Criteria: reports.Criteria{Keyword: "volvo"},
	}))
	require.NoError(t, err)
	assert.Empty(t, printer.names)
	assert.Contains(t, logs.String(), "batch print skipped")
}

func TestBatchPrintJobRequiresRegistry(t *testing.T) {
	var job *BatchPrintJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskReportsBatchPrint, nil)))
}
