package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Customer is a customer master record.
type Customer struct {
	ID            int64
	Code          string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	TaxID         string
	CreditLimit   decimal.Decimal
	Active        bool
	CreatedAt     time.Time
}

// CustomerDefinition describes customer reports.
func CustomerDefinition() Definition[Customer] {
	return Definition[Customer]{
		Kind:  KindCustomers,
		Title: "Customer List",
		ID:    func(c Customer) int64 { return c.ID },
		Keywords: func(c Customer) []string {
			return []string{c.Code, c.Name, c.ContactPerson, c.Phone}
		},
		Match: func(c Customer, cr Criteria) bool {
			return cr.MatchesActive(c.Active) && cr.MatchesDate(c.CreatedAt)
		},
		Less:    byCode(func(c Customer) string { return c.Code }, func(c Customer) int64 { return c.ID }),
		Detail:  customerDetail,
		Listing: customerListing,
	}
}

func customerDetail(c Customer, m Meta) *document.Document {
	return m.detail(detailSpec{
		name:     "Customer " + c.Code,
		title:    "Customer Profile",
		subtitle: c.Code + " - " + c.Name,
		left: []document.KeyValue{
			{Key: "Code", Value: c.Code},
			{Key: "Name", Value: c.Name},
			{Key: "Contact", Value: orDash(c.ContactPerson)},
			{Key: "Phone", Value: orDash(c.Phone)},
			{Key: "Email", Value: orDash(c.Email)},
		},
		right: []document.KeyValue{
			{Key: "Address", Value: orDash(c.Address)},
			{Key: "Tax ID", Value: orDash(c.TaxID)},
			{Key: "Credit Limit", Value: document.FormatAmount(c.CreditLimit)},
			{Key: "Status", Value: status(c.Active)},
			{Key: "Customer Since", Value: orDash(document.FormatDate(c.CreatedAt))},
		},
	})
}

func customerListing(items []Customer, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Code", 1.2), col("Name", 3), col("Contact", 2), col("Phone", 1.6),
		num("Credit Limit", 1.6), col("Status", 1),
	}}
	total := decimal.Zero
	for _, c := range items {
		total = total.Add(c.CreditLimit)
		t.Rows = append(t.Rows, []string{
			c.Code, c.Name, orDash(c.ContactPerson), orDash(c.Phone),
			document.FormatAmount(c.CreditLimit), status(c.Active),
		})
	}
	return m.listing("Customer List", t, len(items), document.KeyValue{Key: "Total Credit Limit", Value: document.FormatAmount(total)})
}
