package reports

import (
	"time"

	"github.com/odyssey-erp/odyssey-reports/internal/document"
)

// Employee is an employee master record.
type Employee struct {
	ID         int64
	Code       string
	Name       string
	Department string
	Position   string
	Phone      string
	Email      string
	HireDate   time.Time
	Active     bool
}

// EmployeeDefinition describes employee reports. Date criteria apply to the
// hire date.
func EmployeeDefinition() Definition[Employee] {
	return Definition[Employee]{
		Kind:  KindEmployees,
		Title: "Employee List",
		ID:    func(e Employee) int64 { return e.ID },
		Keywords: func(e Employee) []string {
			return []string{e.Code, e.Name, e.Department, e.Position}
		},
		Match: func(e Employee, cr Criteria) bool {
			return cr.MatchesActive(e.Active) && cr.MatchesDate(e.HireDate)
		},
		Less:    byCode(func(e Employee) string { return e.Code }, func(e Employee) int64 { return e.ID }),
		Detail:  employeeDetail,
		Listing: employeeListing,
	}
}

func employeeDetail(e Employee, m Meta) *document.Document {
	return m.detail(detailSpec{
		name:     "Employee " + e.Code,
		title:    "Employee Record",
		subtitle: e.Code + " - " + e.Name,
		left: []document.KeyValue{
			{Key: "Code", Value: e.Code},
			{Key: "Name", Value: e.Name},
			{Key: "Department", Value: orDash(e.Department)},
			{Key: "Position", Value: orDash(e.Position)},
		},
		right: []document.KeyValue{
			{Key: "Phone", Value: orDash(e.Phone)},
			{Key: "Email", Value: orDash(e.Email)},
			{Key: "Hire Date", Value: orDash(document.FormatDate(e.HireDate))},
			{Key: "Status", Value: status(e.Active)},
		},
		signatures: []string{"Employee", "HR Manager"},
	})
}

func employeeListing(items []Employee, m Meta) *document.Document {
	t := document.Table{Columns: []document.Column{
		col("Code", 1.2), col("Name", 3), col("Department", 2), col("Position", 2),
		col("Hire Date", 1.4), col("Status", 1),
	}}
	for _, e := range items {
		t.Rows = append(t.Rows, []string{
			e.Code, e.Name, orDash(e.Department), orDash(e.Position), orDash(document.FormatDate(e.HireDate)), status(e.Active),
		})
	}
	return m.listing("Employee List", t, len(items))
}
