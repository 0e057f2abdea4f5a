package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Product is a product master record with its on-hand stock.
type Product struct {
	ID         int64
	Code       string
	Name       string
	CategoryID int64
	Unit       string
	Price      decimal.Decimal
	Cost       decimal.Decimal
	Stock      decimal.Decimal
	Active     bool
}

// StockValue is the on-hand quantity valued at cost.
func (p Product) StockValue() decimal.Decimal {
	return p.Stock.Mul(p.Cost)
}

// ProductDefinition describes product reports. Category names come from
// Lookups.
func ProductDefinition() Definition[Product] {
	return Definition[Product]{
		Kind:  KindProducts,
		Title: "Product List",
		ID:    func(p Product) int64 { return p.ID },
		Keywords: func(p Product) []string {
			return []string{p.Code, p.Name, p.Unit}
		},
		Match: func(p Product, cr Criteria) bool {
			return cr.MatchesActive(p.Active)
		},
		Less:    byCode(func(p Product) string { return p.Code }, func(p Product) int64 { return p.ID }),
		Detail:  productDetail,
		Listing: productListing,
	}
}

func productDetail(p Product, m Meta) *document.Document {
	margin := p.Price.Sub(p.Cost)
	return m.detail(detailSpec{
		name:     "Product " + p.Code,
		title:    "Product Card",
		subtitle: p.Code + " - " + p.Name,
		left: []document.KeyValue{
			{Key: "Code", Value: p.Code},
			{Key: "Name", Value: p.Name},
			{Key: "Category", Value: m.Lookups.Category(p.CategoryID)},
			{Key: "Unit", Value: orDash(p.Unit)},
			{Key: "Status", Value: status(p.Active)},
		},
		right: []document.KeyValue{
			{Key: "Price", Value: document.FormatAmount(p.Price)},
			{Key: "Cost", Value: document.FormatAmount(p.Cost)},
			{Key: "Margin", Value: document.FormatAmount(margin)},
			{Key: "On Hand", Value: document.FormatQuantity(p.Stock)},
		},
		totals: []document.KeyValue{{Key: "Stock Value", Value: document.FormatAmount(p.StockValue())}},
	})
}

func productListing(items []Product, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Code", 1.2), col("Name", 3), col("Category", 1.8), col("Unit", 0.8),
		num("On Hand", 1.2), num("Price", 1.4), num("Cost", 1.4),
	}}
	value := decimal.Zero
	for _, p := range items {
		value = value.Add(p.StockValue())
		t.Rows = append(t.Rows, []string{
			p.Code, p.Name, m.Lookups.Category(p.CategoryID), orDash(p.Unit),
			document.FormatQuantity(p.Stock), document.FormatAmount(p.Price), document.FormatAmount(p.Cost),
		})
	}
	return m.listing("Product List", t, len(items), document.KeyValue{Key: "Stock Value", Value: document.FormatAmount(value)})
}
