package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-reports/internal/platform/httpx"
)

// Inspector is the subset of asynq.Inspector the HTTP handler reads.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector Inspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints. A nil inspector
// reports the queue as disabled.
func NewHandler(inspector Inspector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/tasks/{id}", h.task)
}

type queueStatus struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Paused    bool   `json:"paused"`
}

type healthResponse struct {
	Status string        `json:"status"`
	Queues []queueStatus `json:"queues"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	if h.inspector == nil {
		httpx.JSON(w, http.StatusOK, healthResponse{Status: "disabled", Queues: []queueStatus{}})
		return
	}
	resp := healthResponse{Status: "ok"}
	for _, name := range []string{QueuePrint, QueueDefault} {
		info, err := h.inspector.GetQueueInfo(name)
		if errors.Is(err, asynq.ErrQueueNotFound) {
			resp.Queues = append(resp.Queues, queueStatus{Queue: name})
			continue
		}
		if err != nil {
			h.logger.Warn("jobs health", slog.String("queue", name), slog.Any("error", err))
			httpx.RespondError(w, fmt.Errorf("%w: queue %s: %v", httpx.ErrUnavailable, name, err))
			return
		}
		resp.Queues = append(resp.Queues, queueStatus{
			Queue:     name,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
			Paused:    info.Paused,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type taskStatus struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	State         string     `json:"state"`
	Retried       int        `json:"retried"`
	MaxRetry      int        `json:"max_retry"`
	LastError     string     `json:"last_error,omitempty"`
	NextProcessAt *time.Time `json:"next_process_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// task reports the state of a queued print so callers can poll a 202.
func (h *Handler) task(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.inspector == nil {
		httpx.RespondError(w, fmt.Errorf("%w: job queue disabled", httpx.ErrUnavailable))
		return
	}
	info, err := h.inspector.GetTaskInfo(QueuePrint, id)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		httpx.RespondError(w, fmt.Errorf("%w: task %s", httpx.ErrNotFound, id))
		return
	}
	if err != nil {
		h.logger.Warn("jobs task lookup", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err))
		return
	}
	httpx.JSON(w, http.StatusOK, taskStatus{
		ID:            info.ID,
		Type:          info.Type,
		State:         info.State.String(),
		Retried:       info.Retried,
		MaxRetry:      info.MaxRetry,
		LastError:     info.LastErr,
		NextProcessAt: optionalTime(info.NextProcessAt),
		CompletedAt:   optionalTime(info.CompletedAt),
	})
}
