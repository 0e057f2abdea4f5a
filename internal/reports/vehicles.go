package reports

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Vehicle is a fleet vehicle used for deliveries.
type Vehicle struct {
	ID          int64
	PlateNumber string
	Brand       string
	Model       string
	Year        int
	Driver      string
	CapacityKg  decimal.Decimal
	Active      bool
}

// VehicleDefinition describes vehicle reports.
func VehicleDefinition() Definition[Vehicle] {
	return Definition[Vehicle]{
		Kind:  KindVehicles,
		Title: "Vehicle List",
		ID:    func(v Vehicle) int64 { return v.ID },
		Keywords: func(v Vehicle) []string {
			return []string{v.PlateNumber, v.Brand, v.Model, v.Driver}
		},
		Match: func(v Vehicle, cr Criteria) bool {
			return cr.MatchesActive(v.Active)
		},
		Less:    byCode(func(v Vehicle) string { return v.PlateNumber }, func(v Vehicle) int64 { return v.ID }),
		Detail:  vehicleDetail,
		Listing: vehicleListing,
	}
}

func year(y int) string {
	if y <= 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func vehicleDetail(v Vehicle, m Meta) *document.Document {
	return m.detail(detailSpec{
		name:     "Vehicle " + v.PlateNumber,
		title:    "Vehicle Card",
		subtitle: v.PlateNumber,
		left: []document.KeyValue{
			{Key: "Plate", Value: v.PlateNumber},
			{Key: "Brand", Value: orDash(v.Brand)},
			{Key: "Model", Value: orDash(v.Model)},
			{Key: "Year", Value: year(v.Year)},
		},
		right: []document.KeyValue{
			{Key: "Driver", Value: orDash(v.Driver)},
			{Key: "Capacity (kg)", Value: document.FormatQuantity(v.CapacityKg)},
			{Key: "Status", Value: status(v.Active)},
		},
	})
}

func vehicleListing(items []Vehicle, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Plate", 1.4), col("Brand", 1.6), col("Model", 1.6), num("Year", 0.8),
		col("Driver", 2), num("Capacity (kg)", 1.4), col("Status", 1),
	}}
	capacity := decimal.Zero
	for _, v := range items {
		if v.Active {
			capacity = capacity.Add(v.CapacityKg)
		}
		t.Rows = append(t.Rows, []string{
			v.PlateNumber, orDash(v.Brand), orDash(v.Model), year(v.Year),
			orDash(v.Driver), document.FormatQuantity(v.CapacityKg), status(v.Active),
		})
	}
	return m.listing("Vehicle List", t, len(items), document.KeyValue{Key: "Active Capacity (kg)", Value: document.FormatQuantity(capacity)})
}
