package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
	acctreports "github.com/odyssey-erp/odyssey-reports/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-reports/internal/document"
	"github.com/odyssey-erp/odyssey-reports/internal/printing"
	"github.com/odyssey-erp/odyssey-reports/internal/render"
)

// Financial statement kinds.
const (
	KindTrialBalance    = "trial-balance"
	KindBalanceSheet    = "balance-sheet"
	KindIncomeStatement = "income-statement"
)

// FinancialKinds lists the statements in menu order.
var FinancialKinds = []string{KindTrialBalance, KindBalanceSheet, KindIncomeStatement}

// LedgerSource reads the chart and posted lines for a date range.
type LedgerSource interface {
	Snapshot(ctx context.Context, companyID int64, start, end time.Time) (ledger.Snapshot, error)
}

// FinancialService produces trial balance, balance sheet and income statement
// documents.
type FinancialService struct {
	base
	source LedgerSource
}

// NewFinancialService constructs a FinancialService.
func NewFinancialService(source LedgerSource, deps Deps) *FinancialService {
	return &FinancialService{base: newBase(deps), source: source}
}

// WithNow overrides the clock used for date defaults and timestamps.
func (s *FinancialService) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Generate builds the statement named by kind.
func (s *FinancialService) Generate(ctx context.Context, kind string, c acctreports.Criteria) (*document.Document, error) {
	if kind != KindTrialBalance && kind != KindBalanceSheet && kind != KindIncomeStatement {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	rng, err := c.Resolve(s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCriteria, err)
	}
	snap, err := s.source.Snapshot(ctx, rng.CompanyID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("reports: ledger snapshot: %w", err)
	}
	meta, err := s.meta(ctx, Criteria{})
	if err != nil {
		return nil, err
	}
	noRecords := fmt.Errorf("%w: %s %s", ErrNoMatchingRecords, kind, rng.Label())
	lookups := meta.Lookups.AccountTypes()

	var doc *document.Document
	switch kind {
	case KindTrialBalance:
		tb := acctreports.BuildTrialBalance(ledger.AggregateTrialBalance(snap.Chart, snap.Period, snap.Cumulative, rng.Options()))
		if tb.RowCount() == 0 {
			return nil, noRecords
		}
		doc, err = build(kind, func() *document.Document { return trialBalanceDocument(tb, rng, meta, lookups) })
	case KindBalanceSheet:
		// the accounting equation needs every type, so only IncludeZero applies
		summaries := ledger.Aggregate(snap.Chart, snap.Cumulative, ledger.Options{IncludeZero: rng.IncludeZero})
		if len(summaries) == 0 {
			return nil, noRecords
		}
		bs := acctreports.BuildBalanceSheet(summaries, lookups)
		doc, err = build(kind, func() *document.Document { return balanceSheetDocument(bs, rng, meta) })
	case KindIncomeStatement:
		is := acctreports.BuildIncomeStatement(ledger.Aggregate(snap.Chart, snap.Period, rng.Options()), lookups)
		if is.Empty() {
			return nil, noRecords
		}
		doc, err = build(kind, func() *document.Document { return incomeStatementDocument(is, rng, meta) })
	}
	return doc, err
}

// Render renders doc in format.
func (s *FinancialService) Render(ctx context.Context, doc *document.Document, format render.Format, setting PageSetting) render.Result {
	return s.render(ctx, doc, format, setting, slog.String("kind", "financial"))
}

// RenderToImages builds and rasterizes a statement.
func (s *FinancialService) RenderToImages(ctx context.Context, kind string, c acctreports.Criteria, setting PageSetting) render.Result {
	doc, err := s.Generate(ctx, kind, c)
	if err != nil {
		s.logger.Error("financial report failed", slog.String("kind", kind), slog.Any("error", err))
		return render.Failed(render.FormatPNG, err)
	}
	return s.render(ctx, doc, render.FormatPNG, setting, slog.String("kind", kind))
}

// DirectPrint builds a statement and prints it on a profile.
func (s *FinancialService) DirectPrint(ctx context.Context, kind string, c acctreports.Criteria, profileID int64, copies int) printing.Outcome {
	doc, err := s.Generate(ctx, kind, c)
	if err != nil {
		s.logger.Error("financial print failed", slog.String("kind", kind), slog.Any("error", err))
		return printing.Failed(err)
	}
	return s.print(ctx, doc, profileID, copies)
}

// ExportToExcel renders doc as a workbook.
func (s *FinancialService) ExportToExcel(doc *document.Document) ([]byte, error) {
	return s.exportExcel(doc)
}

// ExportToExcelAsync renders doc as a workbook on another goroutine.
func (s *FinancialService) ExportToExcelAsync(ctx context.Context, doc *document.Document) <-chan ExcelExport {
	return exportAsync(ctx, func() ([]byte, error) { return s.exportExcel(doc) })
}

func balanceStatus(ok bool, diff string) string {
	if ok {
		return "Balanced"
	}
	return "Out of balance " + diff
}

func trialBalanceDocument(tb acctreports.TrialBalance, rng acctreports.Range, m Meta, lookups accounting.Lookups) *document.Document {
	b := m.skeleton("Trial Balance", "Trial Balance", rng.Label())
	columns := []document.Column{
		col("Code", 1.1), col("Account", 3), num("Period Debit", 1.5), num("Period Credit", 1.5),
		num("Debit Balance", 1.5), num("Credit Balance", 1.5),
	}
	for _, g := range tb.Groups {
		t := document.Table{Columns: columns}
		for _, a := range g.Accounts {
			t.Rows = append(t.Rows, []string{
				a.Code, a.Name,
				document.FormatAmount(a.PeriodDebit), document.FormatAmount(a.PeriodCredit),
				document.FormatAmount(a.DebitBalance), document.FormatAmount(a.CreditBalance),
			})
		}
		t.Rows = append(t.Rows, []string{
			"", "Total " + lookups.TypeName(g.Type),
			document.FormatAmount(g.PeriodDebit), document.FormatAmount(g.PeriodCredit),
			document.FormatAmount(g.DebitBalance), document.FormatAmount(g.CreditBalance),
		})
		b.Body(sectionTitle(lookups.TypeName(g.Type)), t, document.Spacing{Height: 6})
	}
	status := "Balanced"
	if !tb.PeriodBalanced() {
		status = "Period out of balance " + document.FormatAmount(tb.PeriodDebit.Sub(tb.PeriodCredit))
	} else if !tb.BalancesBalanced() {
		status = "Balances out of balance " + document.FormatAmount(tb.DebitBalance.Sub(tb.CreditBalance))
	}
	return b.Footer(
		document.Line{},
		document.KeyValueRow{Bold: true, Pairs: []document.KeyValue{
			{Key: "Period Dr", Value: document.FormatAmount(tb.PeriodDebit)},
			{Key: "Period Cr", Value: document.FormatAmount(tb.PeriodCredit)},
			{Key: "Balance Dr", Value: document.FormatAmount(tb.DebitBalance)},
			{Key: "Balance Cr", Value: document.FormatAmount(tb.CreditBalance)},
		}},
		document.ThreeColumnHeader{Left: m.printedLine(), Right: status, FontSize: footerFontSize},
	).MustBuild()
}

func sectionTitle(label string) document.Text {
	return document.Text{Content: label, Style: document.TextStyle{Size: 11, Bold: true}}
}

func statementTable(sec acctreports.StatementSection) document.Table {
	t := document.Table{Columns: []document.Column{col("Code", 1.2), col("Account", 4), num("Amount", 1.8)}}
	for _, l := range sec.Accounts {
		t.Rows = append(t.Rows, []string{l.Code, l.Name, document.FormatAmount(l.Amount)})
	}
	t.Rows = append(t.Rows, []string{"", "Total " + sec.Label, document.FormatAmount(sec.Total)})
	return t
}

func balanceSheetDocument(bs acctreports.BalanceSheet, rng acctreports.Range, m Meta) *document.Document {
	b := m.skeleton("Balance Sheet", "Balance Sheet", "As of "+rng.End.Format("02 Jan 2006"))
	for _, sec := range []acctreports.StatementSection{bs.Assets, bs.Liabilities, bs.Equity} {
		b.Body(sectionTitle(sec.Label), statementTable(sec), document.Spacing{Height: 6})
	}
	return b.Footer(
		document.Line{},
		document.KeyValueRow{Bold: true, Pairs: []document.KeyValue{
			{Key: "Total Assets", Value: document.FormatAmount(bs.Assets.Total)},
			{Key: "Total Liabilities and Equity", Value: document.FormatAmount(bs.TotalLiabilitiesAndEquity)},
		}},
		document.ThreeColumnHeader{
			Left:     m.printedLine(),
			Right:    balanceStatus(bs.Balanced(), document.FormatAmount(bs.Difference())),
			FontSize: footerFontSize,
		},
	).MustBuild()
}

func incomeStatementDocument(is acctreports.IncomeStatement, rng acctreports.Range, m Meta) *document.Document {
	b := m.skeleton("Income Statement", "Income Statement", rng.Label())
	subtotal := func(label string, amount decimal.Decimal) document.KeyValueRow {
		return document.KeyValueRow{Bold: true, Pairs: []document.KeyValue{{Key: label, Value: document.FormatAmount(amount)}}}
	}
	b.Body(sectionTitle(is.Revenue.Label), statementTable(is.Revenue))
	b.Body(sectionTitle(is.Cost.Label), statementTable(is.Cost))
	b.Body(subtotal("Gross Profit", is.GrossProfit), document.Spacing{Height: 6})
	b.Body(sectionTitle(is.Expense.Label), statementTable(is.Expense))
	b.Body(subtotal("Operating Income", is.OperatingIncome), document.Spacing{Height: 6})
	if len(is.NonOperating.Accounts) > 0 {
		b.Body(sectionTitle(is.NonOperating.Label), statementTable(is.NonOperating))
		b.Body(subtotal("Net Non-Operating", is.NetNonOperating))
	}
	return b.Footer(
		document.Line{},
		document.KeyValueRow{Bold: true, Pairs: []document.KeyValue{{Key: "Income Before Tax", Value: document.FormatAmount(is.PreTaxIncome)}}},
		document.ThreeColumnHeader{Left: m.printedLine(), FontSize: footerFontSize},
	).MustBuild()
}
