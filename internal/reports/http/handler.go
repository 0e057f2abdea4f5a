package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
	"github.com/odyssey-erp/odyssey-reports/jobs"
)

var validate = validator.New()

// ReporterRegistry resolves entity report services.
type ReporterRegistry interface {
	Get(kind string) (reports.Reporter, error)
	Kinds() []string
}

// TextPrinter prints plain text on a device.
type TextPrinter interface {
	PrintText(ctx context.Context, text, device string, fontSize float64) printing.Outcome
}

// BatchEnqueuer queues batch prints for the worker.
type BatchEnqueuer interface {
	EnqueueBatchPrint(ctx context.Context, payload jobs.BatchPrintPayload) (string, error)
}

// Config wires the report handler.
type Config struct {
	Logger    *slog.Logger
	Registry  ReporterRegistry
	Financial *reports.FinancialService
	Text      TextPrinter
	// Enqueuer is optional. Without it batch prints run inside the request.
	Enqueuer  BatchEnqueuer
	Page      reports.PageSetting
	CompanyID int64
	// RateLimit caps export and print requests per client per minute.
	RateLimit int
}

// Handler serves report previews, exports and print requests.
type Handler struct {
	logger    *slog.Logger
	registry  ReporterRegistry
	financial *reports.FinancialService
	text      TextPrinter
	enqueuer  BatchEnqueuer
	page      reports.PageSetting
	companyID int64
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs the report handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 30
	}
	return &Handler{
		logger:    logger,
		registry:  cfg.Registry,
		financial: cfg.Financial,
		text:      cfg.Text,
		enqueuer:  cfg.Enqueuer,
		page:      cfg.Page,
		companyID: cfg.CompanyID,
		rateLimit: httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)),
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/kinds", h.handleKinds)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/financial/{kind}", h.handleFinancial)
		r.Post("/financial/{kind}/print", h.handleFinancialPrint)
		r.Post("/print/text", h.handlePrintText)
		r.Get("/{kind}/batch", h.handleBatch)
		r.Post("/{kind}/batch/print", h.handleBatchPrint)
		r.Get("/{kind}/{id}", h.handleEntity)
		r.Post("/{kind}/{id}/print", h.handleEntityPrint)
	})
}

type kindsResponse struct {
	Entities  []string `json:"entities"`
	Financial []string `json:"financial"`
}

func (h *Handler) handleKinds(w http.ResponseWriter, _ *http.Request) {
	resp := kindsResponse{Entities: []string{}, Financial: []string{}}
	if h.registry != nil {
		resp.Entities = h.registry.Kinds()
	}
	if h.financial != nil {
		resp.Financial = reports.FinancialKinds
	}
	writeJSON(w, http.StatusOK, resp)
}
