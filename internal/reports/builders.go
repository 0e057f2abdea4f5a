package reports

import (
	"strconv"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Registered entity report kinds.
const (
	KindCustomers = "customers"
	KindSuppliers = "suppliers"
	KindProducts  = "products"
	KindEmployees = "employees"
	KindVehicles  = "vehicles"
	KindJournals  = "journal-entries"
	KindSales     = "sales-documents"
)

const footerFontSize = 8

func (m Meta) printedLine() string {
	return "Printed " + m.Printed.Format("2006-01-02 15:04")
}

// skeleton starts a document with the company block and the page counter.
func (m Meta) skeleton(name, title, subtitle string) *document.Builder {
	tax := ""
	if m.Header.TaxID != "" {
		tax = "Tax ID " + m.Header.TaxID
	}
	return document.NewBuilder(name).Header(
		document.ReportHeaderBlock{CompanyName: m.Header.CompanyName, Title: title, Subtitle: subtitle},
		document.ThreeColumnHeader{Left: m.Header.contact(), Center: tax, Right: document.PageNumberText},
		document.Line{},
	)
}

// listing lays out a criteria listing: one table in the body, record count and
// totals in the footer.
func (m Meta) listing(title string, table document.Table, count int, totals ...document.KeyValue) *document.Document {
	pairs := append([]document.KeyValue{{Key: "Records", Value: strconv.Itoa(count)}}, totals...)
	return m.skeleton(title, title, m.Criteria.Summary()).
		Body(table).
		Footer(
			document.Line{},
			document.KeyValueRow{Pairs: pairs, Bold: true},
			document.ThreeColumnHeader{Left: m.printedLine(), FontSize: footerFontSize},
		).
		MustBuild()
}

// detailSpec describes a single-entity document.
type detailSpec struct {
	name       string
	title      string
	subtitle   string
	banner     string
	left       []document.KeyValue
	right      []document.KeyValue
	body       []document.Element
	totals     []document.KeyValue
	signatures []string
}

func (m Meta) detail(d detailSpec) *document.Document {
	b := m.skeleton(d.name, d.title, d.subtitle)
	if d.banner != "" {
		b.Body(document.Text{Content: d.banner, Style: document.TextStyle{Size: 14, Bold: true}, Align: document.AlignCenter})
	}
	b.Body(document.TwoColumnSection{Left: d.left, Right: d.right}, document.Spacing{Height: 8})
	b.Body(d.body...)
	footer := []document.Element{document.Line{}}
	if len(d.totals) > 0 {
		footer = append(footer, document.KeyValueRow{Pairs: d.totals, Bold: true})
	}
	if len(d.signatures) > 0 {
		footer = append(footer, document.SignatureSection{Labels: d.signatures})
	}
	footer = append(footer, document.ThreeColumnHeader{Left: m.printedLine(), FontSize: footerFontSize})
	return b.Footer(footer...).MustBuild()
}

func col(header string, weight float64) document.Column {
	return document.Column{Header: header, Weight: weight}
}

func num(header string, weight float64) document.Column {
	return document.Column{Header: header, Weight: weight, Align: document.AlignRight}
}

func status(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// byCode orders by code with the id as tie-break.
func byCode[T any](code func(T) string, id func(T) int64) func(a, b T) bool {
	return func(a, b T) bool {
		if ca, cb := code(a), code(b); ca != cb {
			return ca < cb
		}
		return id(a) < id(b)
	}
}
