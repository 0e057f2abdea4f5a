package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/layout"
	"github.com/odyssey-erp/odyssey-reports/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
	"github.com/odyssey-erp/odyssey-reports/jobs"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type customerSource []reports.Customer

func (s customerSource) Get(_ context.Context, id int64) (reports.Customer, error) {
	for _, c := range s {
		if c.ID == id {
			return c, nil
		}
	}
	return reports.Customer{}, reports.ErrNotFound
}

func (s customerSource) List(context.Context, reports.Criteria) ([]reports.Customer, error) {
	return s, nil
}

type stubPrinter struct {
	mu     sync.Mutex
	copies []int
}

func (p *stubPrinter) Print(_ context.Context, doc *document.Document, profileID int64, copies int) printing.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if profileID == 404 {
		return printing.Failed(printing.ErrProfileNotFound)
	}
	p.copies = append(p.copies, copies)
	return printing.Outcome{JobID: "job-1", Device: "front-desk", Pages: 1, Copies: copies}
}

type stubText struct{ text, device string }

func (s *stubText) PrintText(_ context.Context, text, device string, _ float64) printing.Outcome {
	s.text, s.device = text, device
	return printing.Outcome{JobID: "txt-1", Device: device, Pages: 1, Copies: 1}
}

type stubEnqueuer struct{ payloads []jobs.BatchPrintPayload }

func (e *stubEnqueuer) EnqueueBatchPrint(_ context.Context, p jobs.BatchPrintPayload) (string, error) {
	e.payloads = append(e.payloads, p)
	return "task-42", nil
}

type stubLedger struct{}

func (stubLedger) Snapshot(context.Context, int64, time.Time, time.Time) (ledger.Snapshot, error) {
	chart := accounting.NewChart([]accounting.Account{
		{ID: 1, Code: "1100", Name: "Cash", Type: accounting.AccountTypeAsset, Direction: accounting.Debit},
		{ID: 2, Code: "4100", Name: "Sales", Type: accounting.AccountTypeRevenue, Direction: accounting.Credit},
	})
	d := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	lines := []ledger.Line{
		{EntryID: 1, AccountID: 1, Date: d, Side: accounting.Debit, Amount: decimal.NewFromInt(300)},
		{EntryID: 1, AccountID: 2, Date: d, Side: accounting.Credit, Amount: decimal.NewFromInt(300)},
	}
	return ledger.Snapshot{Chart: chart, Period: lines, Cumulative: lines}, nil
}

type fixture struct {
	router   http.Handler
	printer  *stubPrinter
	text     *stubText
	enqueuer *stubEnqueuer
}

func newFixture(t *testing.T, withQueue bool) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	printer := &stubPrinter{}
	deps := reports.Deps{
		Company:   reports.StaticCompany{CompanyName: "Acme Trading"},
		Lookups:   reports.NewLookups(nil),
		Renderers: reports.NewRenderers(72, nil),
		Printer:   printer,
		Logger:    logger,
		Page:      reports.PageSetting{Size: layout.A5, DPI: 48},
	}
	registry := reports.NewStandardRegistry(reports.Sources{
		Customers: customerSource{
			{ID: 1, Code: "C001", Name: "Alpha Mart", Active: true, CreditLimit: decimal.NewFromInt(1000)},
			{ID: 2, Code: "C002", Name: "Beta Grocer", Active: true, CreditLimit: decimal.NewFromInt(500)},
		},
	}, deps)
	f := fixture{printer: printer, text: &stubText{}}
	cfg := Config{
		Logger:    logger,
		Registry:  registry,
		Financial: reports.NewFinancialService(stubLedger{}, deps),
		Text:      f.text,
		Page:      reports.PageSetting{Size: layout.A5, DPI: 48},
		RateLimit: 1000,
	}
	if withQueue {
		f.enqueuer = &stubEnqueuer{}
		cfg.Enqueuer = f.enqueuer
	}
	r := chi.NewRouter()
	r.Route("/reports", NewHandler(cfg).MountRoutes)
	f.router = r
	return f
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p), rr.Body.String())
	return p
}

func TestKinds(t *testing.T) {
	rr := newFixture(t, false).do(http.MethodGet, "/reports/kinds", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp kindsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{reports.KindCustomers}, resp.Entities)
	assert.Equal(t, reports.FinancialKinds, resp.Financial)
}

func TestEntityPreviewFormats(t *testing.T) {
	f := newFixture(t, false)

	rr := f.do(http.MethodGet, "/reports/customers/1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "1", rr.Header().Get("X-Page-Count"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngMagic))

	rr = f.do(http.MethodGet, "/reports/customers/1?format=xlsx", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))

	rr = f.do(http.MethodGet, "/reports/customers/1?format=html&size=letter&landscape=true", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "<section")
	assert.Contains(t, rr.Body.String(), "Alpha Mart")
}

func TestEntityPreviewFailures(t *testing.T) {
	f := newFixture(t, false)
	cases := []struct {
		target string
		status int
		detail string
	}{
		{"/reports/customers/99", http.StatusNotFound, "not found"},
		{"/reports/customers/abc", http.StatusBadRequest, "id must be a positive integer"},
		{"/reports/customers/1?page=9", http.StatusNotFound, "page 9 of 1"},
		{"/reports/customers/1?format=docx", http.StatusBadRequest, "format must be one of"},
		{"/reports/customers/1?dpi=5000", http.StatusBadRequest, "dpi"},
		{"/reports/customers/1?format=pdf", http.StatusServiceUnavailable, "gotenberg endpoint required"},
		{"/reports/invoices/1", http.StatusNotFound, "unknown report kind"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rr := f.do(http.MethodGet, tc.target, "")
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
			assert.Contains(t, decodeProblem(t, rr).Detail, tc.detail)
		})
	}
}

func TestBatchPreview(t *testing.T) {
	f := newFixture(t, false)

	rr := f.do(http.MethodGet, "/reports/customers/batch?q=alpha&active=true", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var preview batchPreview
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &preview))
	assert.Equal(t, 1, preview.RecordCount)
	assert.Equal(t, `keyword "alpha", active only`, preview.Criteria)
	require.NotEmpty(t, preview.Pages)
	page, err := base64.StdEncoding.DecodeString(preview.Pages[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(page, pngMagic))

	rr = f.do(http.MethodGet, "/reports/customers/batch?format=xlsx", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))

	rr = f.do(http.MethodGet, "/reports/customers/batch?q=zzz", "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, `no matching records: keyword "zzz"`, decodeProblem(t, rr).Detail)

	rr = f.do(http.MethodGet, "/reports/customers/batch?from=2024-02-01&to=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodGet, "/reports/customers/batch?ids=1,x", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEntityPrint(t *testing.T) {
	f := newFixture(t, false)

	rr := f.do(http.MethodPost, "/reports/customers/1/print", `{"profile_id":2,"copies":2}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var outcome printing.Outcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	assert.Equal(t, "job-1", outcome.JobID)
	assert.Equal(t, []int{2}, f.printer.copies)

	rr = f.do(http.MethodPost, "/reports/customers/1/print", `{"copies":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/reports/customers/1/print", `{"profile_id":1,"paper":"a4"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown fields are rejected")

	rr = f.do(http.MethodPost, "/reports/customers/1/print", `{"profile_id":404}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBatchPrintEnqueues(t *testing.T) {
	f := newFixture(t, true)
	rr := f.do(http.MethodPost, "/reports/customers/batch/print", `{"profile_id":3,"criteria":{"keyword":"mart"}}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var resp enqueueResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "task-42", resp.TaskID)
	require.Len(t, f.enqueuer.payloads, 1)
	p := f.enqueuer.payloads[0]
	assert.Equal(t, reports.KindCustomers, p.Kind)
	assert.Equal(t, "mart", p.Criteria.Keyword)
	assert.Equal(t, 1, p.Copies)
	assert.Empty(t, f.printer.copies)
}

func TestBatchPrintInlineWithoutQueue(t *testing.T) {
	f := newFixture(t, false)
	rr := f.do(http.MethodPost, "/reports/customers/batch/print", `{"profile_id":3,"copies":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res reports.BatchPrintResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Printed)
	assert.Len(t, res.Items, 2)
}

func TestPrintText(t *testing.T) {
	f := newFixture(t, false)
	rr := f.do(http.MethodPost, "/reports/print/text", `{"text":"hello\fworld","device":"lp0","font_size":10}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "hello\fworld", f.text.text)
	assert.Equal(t, "lp0", f.text.device)

	rr = f.do(http.MethodPost, "/reports/print/text", `{"text":"x","device":"lp0","font_size":200}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFinancialReports(t *testing.T) {
	f := newFixture(t, false)

	rr := f.do(http.MethodGet, "/reports/financial/trial-balance?from=2024-06-01&to=2024-06-30", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngMagic))

	rr = f.do(http.MethodGet, "/reports/financial/income-statement?from=2024-06-01&to=2024-06-30&format=html", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Income Statement")

	rr = f.do(http.MethodGet, "/reports/financial/balance-sheet?to=2024-06-30&format=excel", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "balance-sheet.xlsx")

	rr = f.do(http.MethodGet, "/reports/financial/cash-flow", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodGet, "/reports/financial/trial-balance?from=2024-07-01&to=2024-06-01", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodGet, "/reports/financial/trial-balance?types=ASSET,GOODWILL", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/reports/financial/balance-sheet/print?to=2024-06-30", `{"profile_id":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "trial-balance.xlsx", fileName("Trial Balance", "xlsx"))
	assert.Equal(t, "sales-order-so-001.pdf", fileName("Sales Order SO/001", "pdf"))
	assert.Equal(t, "report.png", fileName(" / ", "png"))
}

func TestRenderKeyIgnoresPage(t *testing.T) {
	a := renderKey("/reports/customers/1", map[string][]string{"page": {"2"}, "format": {"png"}})
	b := renderKey("/reports/customers/1", map[string][]string{"format": {"png"}, "page": {"1"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, renderKey("/reports/customers/1", map[string][]string{"format": {"xlsx"}}))
}
