package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

const journalSelect = `SELECT je.id, je.number, je.date, COALESCE(je.memo, ''), je.status FROM journal_entries je`

const journalLinesQuery = `SELECT jl.je_id, a.code, a.name, COALESCE(jl.memo, ''), jl.debit::text, jl.credit::text
FROM journal_lines jl
JOIN accounts a ON a.id = jl.account_id
WHERE jl.je_id = ANY($1)
ORDER BY jl.je_id, jl.id`

var journalCols = columns{
	id:       "je.id",
	date:     "je.date",
	keywords: []string{"je.number", "je.memo", "je.status"},
}

// JournalEntries reads journal entries with their lines.
type JournalEntries struct{ q querier }

func scanJournal(row pgx.Row) (reports.JournalEntry, error) {
	var e reports.JournalEntry
	err := row.Scan(&e.ID, &e.Number, &e.Date, &e.Memo, &e.Status)
	return e, err
}

// Get loads one entry and its lines.
func (s JournalEntries) Get(ctx context.Context, id int64) (reports.JournalEntry, error) {
	e, err := scanJournal(s.q.QueryRow(ctx, journalSelect+" WHERE je.id = $1", id))
	if err != nil {
		return reports.JournalEntry{}, notFound(err, "journal entry", id)
	}
	entries := []reports.JournalEntry{e}
	if err := s.attachLines(ctx, entries); err != nil {
		return reports.JournalEntry{}, err
	}
	return entries[0], nil
}

// List loads entries matching c. Cancelled maps onto VOID status.
func (s JournalEntries) List(ctx context.Context, c reports.Criteria) ([]reports.JournalEntry, error) {
	w := criteriaWhere(c, journalCols)
	if c.Cancelled != nil {
		if *c.Cancelled {
			w.add("je.status = ?", reports.JournalVoid)
		} else {
			w.add("je.status <> ?", reports.JournalVoid)
		}
	}
	entries, err := collect(ctx, s.q, journalSelect+w.String()+" ORDER BY je.date, je.number, je.id", w.args, scanJournal)
	if err != nil {
		return nil, err
	}
	if err := s.attachLines(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type journalLineRow struct {
	entryID int64
	line    reports.JournalLine
}

func (s JournalEntries) attachLines(ctx context.Context, entries []reports.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	rows, err := collect(ctx, s.q, journalLinesQuery, []any{ids}, func(row pgx.Row) (journalLineRow, error) {
		var (
			r             journalLineRow
			debit, credit string
		)
		if err := row.Scan(&r.entryID, &r.line.AccountCode, &r.line.AccountName, &r.line.Description, &debit, &credit); err != nil {
			return r, err
		}
		err := decs([]*decimal.Decimal{&r.line.Debit, &r.line.Credit}, debit, credit)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("reports/db: journal lines: %w", err)
	}
	grouped := groupLines(rows, func(r journalLineRow) (int64, reports.JournalLine) { return r.entryID, r.line })
	for i := range entries {
		entries[i].Lines = grouped[entries[i].ID]
	}
	return nil
}

// groupLines buckets child rows by parent id, keeping query order.
func groupLines[R, L any](rows []R, split func(R) (int64, L)) map[int64][]L {
	out := make(map[int64][]L)
	for _, r := range rows {
		id, l := split(r)
		out[id] = append(out[id], l)
	}
	return out
}

// salesTable maps one sales document kind onto its header and line tables.
type salesTable struct {
	kind      string
	header    string
	lines     string
	parentKey string
	date      string
	total     string
}

var salesTables = map[string]salesTable{
	reports.SalesQuotation: {kind: reports.SalesQuotation, header: "quotations", lines: "quotation_lines", parentKey: "quotation_id", date: "quote_date", total: "total_amount"},
	reports.SalesOrder:     {kind: reports.SalesOrder, header: "sales_orders", lines: "sales_order_lines", parentKey: "sales_order_id", date: "order_date", total: "total_amount"},
}

func (t salesTable) selectSQL() string {
	return fmt.Sprintf(`SELECT d.id, d.doc_number, d.%s, c.name, d.status, d.status = 'CANCELLED', COALESCE(d.notes, ''),
       COALESCE(d.subtotal, 0)::text, COALESCE(d.tax_amount, 0)::text, COALESCE(d.%s, 0)::text
FROM %s d
JOIN customers c ON c.id = d.customer_id`, t.date, t.total, t.header)
}

func (t salesTable) linesSQL() string {
	return fmt.Sprintf(`SELECT l.%s, p.sku, COALESCE(l.description, p.name), l.quantity::text, COALESCE(l.uom, ''),
       l.unit_price::text, COALESCE(l.line_total, l.quantity * l.unit_price)::text
FROM %s l
JOIN products p ON p.id = l.product_id
WHERE l.%s = ANY($1)
ORDER BY l.%s, l.line_order, l.id`, t.parentKey, t.lines, t.parentKey, t.parentKey)
}

func (t salesTable) cols() columns {
	return columns{
		id:       "d.id",
		date:     "d." + t.date,
		keywords: []string{"d.doc_number", "c.name", "d.status"},
	}
}

// SalesDocuments reads one kind of sales document with its lines.
type SalesDocuments struct {
	q     querier
	table salesTable
}

// NewSalesDocuments returns the source for kind. Only quotations and orders
// are stored with line tables.
func NewSalesDocuments(q querier, kind string) (SalesDocuments, error) {
	t, ok := salesTables[kind]
	if !ok {
		return SalesDocuments{}, fmt.Errorf("reports/db: no table for sales kind %q", kind)
	}
	return SalesDocuments{q: q, table: t}, nil
}

func (s SalesDocuments) scan(row pgx.Row) (reports.SalesDocument, error) {
	var d reports.SalesDocument
	var subtotal, tax, total string
	if err := row.Scan(&d.ID, &d.Number, &d.Date, &d.CustomerName, &d.Status, &d.Cancelled, &d.Notes,
		&subtotal, &tax, &total); err != nil {
		return reports.SalesDocument{}, err
	}
	d.Kind = s.table.kind
	err := decs([]*decimal.Decimal{&d.Subtotal, &d.Tax, &d.Total}, subtotal, tax, total)
	return d, err
}

// Get loads one document and its lines.
func (s SalesDocuments) Get(ctx context.Context, id int64) (reports.SalesDocument, error) {
	d, err := s.scan(s.q.QueryRow(ctx, s.table.selectSQL()+" WHERE d.id = $1", id))
	if err != nil {
		return reports.SalesDocument{}, notFound(err, "sales document", id)
	}
	docs := []reports.SalesDocument{d}
	if err := s.attachLines(ctx, docs); err != nil {
		return reports.SalesDocument{}, err
	}
	return docs[0], nil
}

// List loads documents matching c.
func (s SalesDocuments) List(ctx context.Context, c reports.Criteria) ([]reports.SalesDocument, error) {
	w := criteriaWhere(c, s.table.cols())
	if c.Cancelled != nil {
		if *c.Cancelled {
			w.add("d.status = ?", "CANCELLED")
		} else {
			w.add("d.status <> ?", "CANCELLED")
		}
	}
	order := fmt.Sprintf(" ORDER BY d.%s, d.doc_number, d.id", s.table.date)
	docs, err := collect(ctx, s.q, s.table.selectSQL()+w.String()+order, w.args, s.scan)
	if err != nil {
		return nil, err
	}
	if err := s.attachLines(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

type salesLineRow struct {
	docID int64
	line  reports.SalesLine
}

func (s SalesDocuments) attachLines(ctx context.Context, docs []reports.SalesDocument) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	rows, err := collect(ctx, s.q, s.table.linesSQL(), []any{ids}, func(row pgx.Row) (salesLineRow, error) {
		var r salesLineRow
		var qty, price, amount string
		if err := row.Scan(&r.docID, &r.line.ProductCode, &r.line.Description, &qty, &r.line.Unit, &price, &amount); err != nil {
			return r, err
		}
		err := decs([]*decimal.Decimal{&r.line.Quantity, &r.line.UnitPrice, &r.line.Amount}, qty, price, amount)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("reports/db: %s: %w", s.table.lines, err)
	}
	grouped := groupLines(rows, func(r salesLineRow) (int64, reports.SalesLine) { return r.docID, r.line })
	for i := range docs {
		docs[i].Lines = grouped[docs[i].ID]
	}
	return nil
}
