package reports

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Journal entry statuses.
const (
	JournalDraft  = "DRAFT"
	JournalPosted = "POSTED"
	JournalVoid   = "VOID"
)

// JournalLine is one debit or credit posting of an entry.
type JournalLine struct {
	AccountCode string
	AccountName string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// JournalEntry is a ledger transaction with its lines.
type JournalEntry struct {
	ID     int64
	Number string
	Date   time.Time
	Memo   string
	Status string
	Lines  []JournalLine
}

// Totals sums the debit and credit columns.
func (j JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Balanced reports whether debits equal credits.
func (j JournalEntry) Balanced() bool {
	d, c := j.Totals()
	return d.Equal(c)
}

// Voided reports whether the entry was cancelled.
func (j JournalEntry) Voided() bool {
	return strings.EqualFold(j.Status, JournalVoid)
}

// JournalEntryDefinition describes journal voucher reports.
func JournalEntryDefinition() Definition[JournalEntry] {
	return Definition[JournalEntry]{
		Kind:  KindJournals,
		Title: "Journal Entries",
		ID:    func(j JournalEntry) int64 { return j.ID },
		Keywords: func(j JournalEntry) []string {
			return []string{j.Number, j.Memo, j.Status}
		},
		Match: func(j JournalEntry, cr Criteria) bool {
			return cr.MatchesDate(j.Date) && cr.MatchesCancelled(j.Voided())
		},
		Less: func(a, b JournalEntry) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			if a.Number != b.Number {
				return a.Number < b.Number
			}
			return a.ID < b.ID
		},
		Detail:  journalDetail,
		Listing: journalListing,
	}
}

func journalDetail(j JournalEntry, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Account", 1.2), col("Account Name", 2.6), col("Description", 2.6), num("Debit", 1.5), num("Credit", 1.5),
	}}
	for _, l := range j.Lines {
		t.Rows = append(t.Rows, []string{
			l.AccountCode, l.AccountName, l.Description, document.FormatAmount(l.Debit), document.FormatAmount(l.Credit),
		})
	}
	debit, credit := j.Totals()
	balance := "Balanced"
	if !debit.Equal(credit) {
		balance = "Out of balance " + document.FormatAmount(debit.Sub(credit))
	}
	var banner string
	if j.Voided() {
		banner = "VOID"
	}
	var body []document.Element
	if len(t.Rows) > 0 {
		body = append(body, t)
	}
	return m.detail(detailSpec{
		name:     "Journal " + j.Number,
		title:    "Journal Voucher",
		subtitle: j.Number,
		banner:   banner,
		left: []document.KeyValue{
			{Key: "Number", Value: j.Number},
			{Key: "Date", Value: document.FormatDate(j.Date)},
		},
		right: []document.KeyValue{
			{Key: "Status", Value: j.Status},
			{Key: "Memo", Value: orDash(j.Memo)},
		},
		body: body,
		totals: []document.KeyValue{
			{Key: "Total Debit", Value: document.FormatAmount(debit)},
			{Key: "Total Credit", Value: document.FormatAmount(credit)},
			{Key: "Check", Value: balance},
		},
		signatures: []string{"Prepared by", "Checked by", "Approved by"},
	})
}

func journalListing(items []JournalEntry, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Number", 1.4), col("Date", 1.2), col("Memo", 3.4), col("Status", 1), num("Debit", 1.5), num("Credit", 1.5),
	}}
	debit, credit := decimal.Zero, decimal.Zero
	for _, j := range items {
		d, c := j.Totals()
		if !j.Voided() {
			debit, credit = debit.Add(d), credit.Add(c)
		}
		t.Rows = append(t.Rows, []string{
			j.Number, document.FormatDate(j.Date), orDash(j.Memo), j.Status, document.FormatAmount(d), document.FormatAmount(c),
		})
	}
	return m.listing("Journal Entries", t, len(items),
		document.KeyValue{Key: "Total Debit", Value: document.FormatAmount(debit)},
		document.KeyValue{Key: "Total Credit", Value: document.FormatAmount(credit)},
	)
}
