package reports

import (
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Supplier is a supplier master record.
type Supplier struct {
	ID            int64
	Code          string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	TaxID         string
	PaymentTerms  int
	Active        bool
	CreatedAt     time.Time
}

// SupplierDefinition describes supplier reports.
func SupplierDefinition() Definition[Supplier] {
	return Definition[Supplier]{
		Kind:  KindSuppliers,
		Title: "Supplier List",
		ID:    func(s Supplier) int64 { return s.ID },
		Keywords: func(s Supplier) []string {
			return []string{s.Code, s.Name, s.ContactPerson, s.Email}
		},
		Match: func(s Supplier, cr Criteria) bool {
			return cr.MatchesActive(s.Active) && cr.MatchesDate(s.CreatedAt)
		},
		Less:    byCode(func(s Supplier) string { return s.Code }, func(s Supplier) int64 { return s.ID }),
		Detail:  supplierDetail,
		Listing: supplierListing,
	}
}

func paymentTerms(days int) string {
	if days <= 0 {
		return "Cash"
	}
	return "Net " + strconv.Itoa(days)
}

func supplierDetail(s Supplier, m Meta) *document.Document {
	return m.detail(detailSpec{
		name:     "Supplier " + s.Code,
		title:    "Supplier Profile",
		subtitle: s.Code + " - " + s.Name,
		left: []document.KeyValue{
			{Key: "Code", Value: s.Code},
			{Key: "Name", Value: s.Name},
			{Key: "Contact", Value: orDash(s.ContactPerson)},
			{Key: "Phone", Value: orDash(s.Phone)},
			{Key: "Email", Value: orDash(s.Email)},
		},
		right: []document.KeyValue{
			{Key: "Address", Value: orDash(s.Address)},
			{Key: "Tax ID", Value: orDash(s.TaxID)},
			{Key: "Payment Terms", Value: paymentTerms(s.PaymentTerms)},
			{Key: "Status", Value: status(s.Active)},
		},
	})
}

func supplierListing(items []Supplier, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Code", 1.2), col("Name", 3), col("Contact", 2), col("Email", 2.4),
		col("Terms", 1), col("Status", 1),
	}}
	for _, s := range items {
		t.Rows = append(t.Rows, []string{
			s.Code, s.Name, orDash(s.ContactPerson), orDash(s.Email), paymentTerms(s.PaymentTerms), status(s.Active),
		})
	}
	return m.listing("Supplier List", t, len(items))
}
