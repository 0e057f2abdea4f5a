package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Sales document kinds.
const (
	SalesQuotation = "QUOTATION"
	SalesOrder     = "ORDER"
	SalesDelivery  = "DELIVERY"
	SalesInvoice   = "INVOICE"
)

var salesTitles = map[string]string{
	SalesQuotation: "Sales Quotation",
	SalesOrder:     "Sales Order",
	SalesDelivery:  "Delivery Note",
	SalesInvoice:   "Sales Invoice",
}

// SalesLine is one item of a sales document.
type SalesLine struct {
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// SalesDocument is a quotation, order, delivery note or invoice.
type SalesDocument struct {
	ID           int64
	Number       string
	Kind         string
	Date         time.Time
	CustomerName string
	Status       string
	Cancelled    bool
	Notes        string
	Lines        []SalesLine
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// Title returns the printed name of the document kind.
func (s SalesDocument) Title() string {
	if t, ok := salesTitles[s.Kind]; ok {
		return t
	}
	return "Sales Document"
}

// SalesDocumentDefinition describes sales document reports.
func SalesDocumentDefinition() Definition[SalesDocument] {
	return Definition[SalesDocument]{
		Kind:  KindSales,
		Title: "Sales Documents",
		ID:    func(s SalesDocument) int64 { return s.ID },
		Keywords: func(s SalesDocument) []string {
			return []string{s.Number, s.CustomerName, s.Status, s.Kind}
		},
		Match: func(s SalesDocument, cr Criteria) bool {
			return cr.MatchesDate(s.Date) && cr.MatchesCancelled(s.Cancelled)
		},
		Less: func(a, b SalesDocument) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			if a.Number != b.Number {
				return a.Number < b.Number
			}
			return a.ID < b.ID
		},
		Detail:  salesDetail,
		Listing: salesListing,
	}
}

func salesDetail(s SalesDocument, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Code", 1.2), col("Description", 3.4), num("Qty", 1), col("Unit", 0.8), num("Unit Price", 1.5), num("Amount", 1.6),
	}}
	for _, l := range s.Lines {
		t.Rows = append(t.Rows, []string{
			l.ProductCode, l.Description, document.FormatQuantity(l.Quantity), orDash(l.Unit),
			document.FormatAmount(l.UnitPrice), document.FormatAmount(l.Amount),
		})
	}
	var body []document.Element
	if len(t.Rows) > 0 {
		body = append(body, t)
	}
	if s.Notes != "" {
		body = append(body, document.Spacing{Height: 6}, document.Text{Content: "Notes: " + s.Notes, Style: document.TextStyle{Italic: true}})
	}
	var banner string
	if s.Cancelled {
		banner = "CANCELLED"
	}
	return m.detail(detailSpec{
		name:     s.Title() + " " + s.Number,
		title:    s.Title(),
		subtitle: s.Number,
		banner:   banner,
		left: []document.KeyValue{
			{Key: "Customer", Value: s.CustomerName},
			{Key: "Number", Value: s.Number},
		},
		right: []document.KeyValue{
			{Key: "Date", Value: document.FormatDate(s.Date)},
			{Key: "Status", Value: s.Status},
		},
		body: body,
		totals: []document.KeyValue{
			{Key: "Subtotal", Value: document.FormatAmount(s.Subtotal)},
			{Key: "Tax", Value: document.FormatAmount(s.Tax)},
			{Key: "Total", Value: document.FormatAmount(s.Total)},
		},
		signatures: []string{"Prepared by", "Received by"},
	})
}

func salesListing(items []SalesDocument, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Number", 1.4), col("Date", 1.2), col("Customer", 2.8), col("Status", 1.2),
		num("Subtotal", 1.5), num("Tax", 1.2), num("Total", 1.5),
	}}
	subtotal, tax, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range items {
		st := s.Status
		if s.Cancelled {
			st = "Cancelled"
		} else {
			subtotal, tax, total = subtotal.Add(s.Subtotal), tax.Add(s.Tax), total.Add(s.Total)
		}
		t.Rows = append(t.Rows, []string{
			s.Number, document.FormatDate(s.Date), s.CustomerName, st,
			document.FormatAmount(s.Subtotal), document.FormatAmount(s.Tax), document.FormatAmount(s.Total),
		})
	}
	return m.listing("Sales Documents", t, len(items),
		document.KeyValue{Key: "Subtotal", Value: document.FormatAmount(subtotal)},
		document.KeyValue{Key: "Tax", Value: document.FormatAmount(tax)},
		document.KeyValue{Key: "Total", Value: document.FormatAmount(total)},
	)
}
