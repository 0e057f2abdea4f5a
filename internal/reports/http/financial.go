package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-reports/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
)

func (h *Handler) financialConfigured(w http.ResponseWriter, r *http.Request) bool {
	if h.financial == nil {
		h.fail(w, r, fmt.Errorf("%w: financial reports not configured", httpx.ErrUnavailable))
		return false
	}
	return true
}

// handleFinancial renders a trial balance, balance sheet or income statement.
func (h *Handler) handleFinancial(w http.ResponseWriter, r *http.Request) {
	if !h.financialConfigured(w, r) {
		return
	}
	kind := chi.URLParam(r, "kind")
	q := r.URL.Query()
	c, err := parseFinancialCriteria(q, h.companyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	format, setting, err := parseOutput(q, h.page, render.FormatPNG)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err, _ := singleflightRender(r.Context(), renderKey(r.URL.Path, q), func(ctx context.Context) (rendered, error) {
		doc, err := h.financial.Generate(ctx, kind, c)
		if err != nil {
			return rendered{}, err
		}
		return rendered{name: doc.Name, result: h.financial.Render(ctx, doc, format, setting)}, nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeResult(w, r, out.name, out.result)
}

// handleFinancialPrint prints a statement. Criteria come from the query
// string, the profile from the body.
func (h *Handler) handleFinancialPrint(w http.ResponseWriter, r *http.Request) {
	if !h.financialConfigured(w, r) {
		return
	}
	c, err := parseFinancialCriteria(r.URL.Query(), h.companyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req printRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	outcome := h.financial.DirectPrint(r.Context(), chi.URLParam(r, "kind"), c, req.ProfileID, req.copies())
	if !outcome.OK() {
		h.fail(w, r, outcome.Err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
