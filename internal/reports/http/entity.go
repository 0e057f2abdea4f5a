package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-reports/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
	"github.com/odyssey-erp/odyssey-reports/jobs"
)

// rendered pairs a render result with its document name.
type rendered struct {
	name   string
	result render.Result
}

func (h *Handler) reporter(r *http.Request) (reports.Reporter, error) {
	if h.registry == nil {
		return nil, fmt.Errorf("%w: %q", reports.ErrUnknownKind, chi.URLParam(r, "kind"))
	}
	return h.registry.Get(chi.URLParam(r, "kind"))
}

// handleEntity renders the detail document of one entity.
func (h *Handler) handleEntity(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reporter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	format, setting, err := parseOutput(r.URL.Query(), h.page, render.FormatPNG)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err, shared := singleflightRender(r.Context(), renderKey(r.URL.Path, r.URL.Query()), func(ctx context.Context) (rendered, error) {
		doc, err := rep.GenerateReport(ctx, id)
		if err != nil {
			return rendered{}, err
		}
		return rendered{name: doc.Name, result: rep.Render(ctx, doc, format, setting)}, nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if shared {
		h.logger.Debug("report render shared", slog.String("kind", rep.Kind()), slog.Int64("id", id))
	}
	h.writeResult(w, r, out.name, out.result)
}

// handleEntityPrint prints the detail document of one entity.
func (h *Handler) handleEntityPrint(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reporter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req printRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	outcome := rep.DirectPrint(r.Context(), id, req.ProfileID, req.copies())
	if !outcome.OK() {
		h.fail(w, r, outcome.Err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// handleBatch previews or exports the listing for the query criteria. The
// default is a JSON preview with base64 PNG pages.
func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reporter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	c, err := parseCriteria(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if q.Get("format") == "" || q.Get("format") == "json" {
		res := rep.RenderBatchToImages(r.Context(), c)
		if !res.OK() {
			h.fail(w, r, res.Err)
			return
		}
		writeJSON(w, http.StatusOK, newBatchPreview(rep.Kind(), c, res))
		return
	}
	format, setting, err := parseOutput(q, h.page, render.FormatPNG)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, _, err := rep.BuildBatch(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeResult(w, r, doc.Name, rep.Render(r.Context(), doc, format, setting))
}

type enqueueResponse struct {
	TaskID string `json:"task_id"`
	Kind   string `json:"kind"`
}

// handleBatchPrint queues a batch print, or runs it inline when no queue is
// configured.
func (h *Handler) handleBatchPrint(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reporter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req batchPrintRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Criteria.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}
	if h.enqueuer == nil {
		res := rep.DirectPrintBatch(r.Context(), req.Criteria, req.ProfileID, req.copies())
		if !res.OK() {
			h.fail(w, r, res.Err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
	taskID, err := h.enqueuer.EnqueueBatchPrint(r.Context(), jobs.BatchPrintPayload{
		Kind:        rep.Kind(),
		Criteria:    req.Criteria,
		ProfileID:   req.ProfileID,
		Copies:      req.copies(),
		RequestedBy: r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: enqueue batch print: %w", httpx.ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, enqueueResponse{TaskID: taskID, Kind: rep.Kind()})
}

// handlePrintText prints a plain text body on a device.
func (h *Handler) handlePrintText(w http.ResponseWriter, r *http.Request) {
	if h.text == nil {
		h.fail(w, r, fmt.Errorf("%w: text printing not configured", httpx.ErrUnavailable))
		return
	}
	var req textPrintRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	outcome := h.text.PrintText(r.Context(), req.Text, req.Device, req.FontSize)
	if !outcome.OK() {
		h.fail(w, r, outcome.Err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
