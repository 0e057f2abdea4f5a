package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	acctdb "github.com/odyssey-erp/odyssey-reports/internal/accounting/db"
	"github.com/odyssey-erp/odyssey-reports/internal/observability"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
	"github.com/odyssey-erp/odyssey-reports/internal/reports"
	reportsdb "github.com/odyssey-erp/odyssey-reports/internal/reports/db"
	"github.com/odyssey-erp/odyssey-reports/report"
)

// ReportStack holds the report services shared by the server and the worker.
type ReportStack struct {
	Registry   *reports.Registry
	Financial  *reports.FinancialService
	Dispatcher *printing.Dispatcher
	PDFClient  *report.Client
	Page       reports.PageSetting
}

// StackParams groups the infrastructure a ReportStack is built on.
type StackParams struct {
	Config  *Config
	Pool    *pgxpool.Pool
	Redis   redis.Cmdable
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewReportStack wires the data sources, renderers and print dispatcher.
func NewReportStack(ctx context.Context, p StackParams) (*ReportStack, error) {
	if p.Config == nil || p.Pool == nil {
		return nil, fmt.Errorf("app: report stack needs config and pool")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := p.Config

	store := reportsdb.NewStore(p.Pool)
	categories, err := store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load categories: %w", err)
	}

	pdfClient := report.NewClient(cfg.GotenbergURL)
	pdf := render.NewPDFRenderer(pdfClient, cfg.GotenbergTimeout)

	dispatcher := printing.NewDispatcher(printing.Config{
		Profiles:     printing.NewRepository(p.Pool),
		Printer:      printing.NewSpoolPrinter(cfg.ReportSpoolDir),
		Guard:        printing.NewGuard(p.Redis, cfg.ReportPrintDedup),
		Logger:       logger.With(slog.String("component", "printing")),
		TextPage:     cfg.PageSize(),
		TextDPI:      cfg.ReportDPI,
		TextFontSize: cfg.ReportTextFontSize,
	})

	page := reports.PageSetting{Size: cfg.PageSize(), DPI: cfg.ReportDPI}
	deps := reports.Deps{
		Company:   store.Company(cfg.ReportCompanyID),
		Lookups:   reports.NewLookups(categories),
		Renderers: reports.NewRenderers(cfg.ReportDPI, pdf),
		Printer:   dispatcher,
		Logger:    logger.With(slog.String("component", "reports")),
		Page:      page,
	}
	if p.Metrics != nil {
		deps.Observer = p.Metrics
	}

	return &ReportStack{
		Registry:   reports.NewStandardRegistry(store.Sources(), deps),
		Financial:  reports.NewFinancialService(acctdb.NewRepository(p.Pool), deps),
		Dispatcher: dispatcher,
		PDFClient:  pdfClient,
		Page:       page,
	}, nil
}
