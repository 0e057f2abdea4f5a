package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	acctreports "github.com/odyssey-erp/odyssey-reports/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
	"github.com/odyssey-erp/odyssey-reports/report"
)

// classified keeps the domain message while matching an httpx sentinel.
type classified struct {
	kind error
	err  error
}

func (c classified) Error() string   { return c.err.Error() }
func (c classified) Unwrap() []error { return []error{c.kind, c.err} }

// classify maps domain failures onto the httpx problem sentinels.
func classify(err error) error {
	var kind error
	switch {
	case errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrNotFound):
		return err
	case errors.Is(err, reports.ErrNotFound),
		errors.Is(err, reports.ErrUnknownKind),
		errors.Is(err, printing.ErrProfileNotFound):
		kind = httpx.ErrNotFound
	case errors.Is(err, reports.ErrInvalidCriteria),
		errors.Is(err, acctreports.ErrInvalidRange),
		errors.Is(err, printing.ErrNoDevice):
		kind = httpx.ErrValidation
	case errors.Is(err, reports.ErrNoMatchingRecords):
		kind = httpx.ErrUnprocessable
	case errors.Is(err, report.ErrNoEndpoint),
		errors.Is(err, context.DeadlineExceeded):
		kind = httpx.ErrUnavailable
	case errors.Is(err, layout.ErrPageTooSmall):
		kind = httpx.ErrRender
	default:
		return err
	}
	return classified{kind: kind, err: err}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = classify(err)
	if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrNotFound) {
		h.logger.Warn("report request failed",
			slog.String("path", r.URL.Path),
			slog.String("query", r.URL.RawQuery),
			slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	httpx.JSON(w, status, v)
}

// fileName turns a document name into a download file name.
func fileName(name string, format render.Format) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if base == "" {
		base = "report"
	}
	return base + "." + string(format)
}

// writeResult streams a render result. PNG responses carry one page, picked
// by the page query parameter.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, name string, res render.Result) {
	if !res.OK() {
		err := res.Err
		if err == nil {
			err = errors.New(res.Failure)
		}
		if !errors.Is(err, report.ErrNoEndpoint) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", httpx.ErrRender, err)
		}
		h.fail(w, r, err)
		return
	}
	w.Header().Set("X-Page-Count", strconv.Itoa(res.PageCount))
	switch res.Format {
	case render.FormatPNG:
		page, err := parsePage(r.URL.Query())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if page > len(res.Pages) {
			h.fail(w, r, fmt.Errorf("%w: page %d of %d", httpx.ErrNotFound, page, len(res.Pages)))
			return
		}
		w.Header().Set("Content-Type", render.FormatPNG.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Pages[page-1])
	case render.FormatHTML:
		w.Header().Set("Content-Type", render.FormatHTML.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(res.HTML))
	case render.FormatXLSX:
		httpx.Attachment(w, res.Format.ContentType(), fileName(name, res.Format), res.Workbook)
	case render.FormatPDF:
		httpx.Attachment(w, res.Format.ContentType(), fileName(name, res.Format), res.PDF)
	default:
		h.fail(w, r, fmt.Errorf("%w: unsupported format %q", httpx.ErrValidation, res.Format))
	}
}

// batchPreview is the JSON body of a listing preview.
type batchPreview struct {
	Kind        string   `json:"kind"`
	Criteria    string   `json:"criteria"`
	RecordCount int      `json:"record_count"`
	PageCount   int      `json:"page_count"`
	Pages       []string `json:"pages"`
}

func newBatchPreview(kind string, c reports.Criteria, res reports.BatchResult) batchPreview {
	out := batchPreview{
		Kind:        kind,
		Criteria:    c.Summary(),
		RecordCount: res.RecordCount,
		PageCount:   len(res.Images),
		Pages:       make([]string, len(res.Images)),
	}
	for i, img := range res.Images {
		out.Pages[i] = base64.StdEncoding.EncodeToString(img)
	}
	return out
}
