package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

const customerSelect = `SELECT id, code, name, COALESCE(contact_person, ''), COALESCE(phone, ''), COALESCE(email, ''),
       COALESCE(address_line1, ''), COALESCE(tax_id, ''), COALESCE(credit_limit, 0)::text, is_active, created_at
FROM customers`

var customerCols = columns{
	id:       "id",
	date:     "created_at",
	active:   "is_active",
	keywords: []string{"code", "name", "contact_person", "phone", "email"},
}

// Customers reads customer master data.
type Customers struct{ q querier }

func scanCustomer(row pgx.Row) (reports.Customer, error) {
	var (
		c      reports.Customer
		credit string
	)
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.ContactPerson, &c.Phone, &c.Email,
		&c.Address, &c.TaxID, &credit, &c.Active, &c.CreatedAt); err != nil {
		return reports.Customer{}, err
	}
	err := decs([]*decimal.Decimal{&c.CreditLimit}, credit)
	return c, err
}

// Get loads one customer.
func (s Customers) Get(ctx context.Context, id int64) (reports.Customer, error) {
	c, err := scanCustomer(s.q.QueryRow(ctx, customerSelect+" WHERE id = $1", id))
	if err != nil {
		return reports.Customer{}, notFound(err, "customer", id)
	}
	return c, nil
}

// List loads customers matching c.
func (s Customers) List(ctx context.Context, c reports.Criteria) ([]reports.Customer, error) {
	w := criteriaWhere(c, customerCols)
	return collect(ctx, s.q, customerSelect+w.String()+" ORDER BY code, id", w.args, scanCustomer)
}

const supplierSelect = `SELECT id, code, name, COALESCE(contact_person, ''), COALESCE(phone, ''), COALESCE(email, ''),
       COALESCE(address, ''), COALESCE(tax_id, ''), COALESCE(payment_terms_days, 0), is_active, created_at
FROM suppliers`

var supplierCols = columns{
	id:       "id",
	date:     "created_at",
	active:   "is_active",
	keywords: []string{"code", "name", "contact_person", "phone", "email"},
}

// Suppliers reads supplier master data.
type Suppliers struct{ q querier }

func scanSupplier(row pgx.Row) (reports.Supplier, error) {
	var s reports.Supplier
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.ContactPerson, &s.Phone, &s.Email,
		&s.Address, &s.TaxID, &s.PaymentTerms, &s.Active, &s.CreatedAt)
	return s, err
}

// Get loads one supplier.
func (s Suppliers) Get(ctx context.Context, id int64) (reports.Supplier, error) {
	sup, err := scanSupplier(s.q.QueryRow(ctx, supplierSelect+" WHERE id = $1", id))
	if err != nil {
		return reports.Supplier{}, notFound(err, "supplier", id)
	}
	return sup, nil
}

// List loads suppliers matching c.
func (s Suppliers) List(ctx context.Context, c reports.Criteria) ([]reports.Supplier, error) {
	w := criteriaWhere(c, supplierCols)
	return collect(ctx, s.q, supplierSelect+w.String()+" ORDER BY code, id", w.args, scanSupplier)
}

// Stock is the on-hand quantity summed over every warehouse.
const productSelect = `SELECT p.id, p.sku, p.name, COALESCE(p.category_id, 0), COALESCE(p.uom, ''),
       COALESCE(p.price, 0)::text, COALESCE(p.cost, 0)::text,
       COALESCE((SELECT SUM(ib.qty) FROM inventory_balances ib WHERE ib.product_id = p.id), 0)::text,
       p.is_active
FROM products p`

var productCols = columns{
	id:       "p.id",
	active:   "p.is_active",
	keywords: []string{"p.sku", "p.name"},
}

// Products reads the product catalogue with stock on hand.
type Products struct{ q querier }

func scanProduct(row pgx.Row) (reports.Product, error) {
	var (
		p                  reports.Product
		price, cost, stock string
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.Unit, &price, &cost, &stock, &p.Active); err != nil {
		return reports.Product{}, err
	}
	err := decs([]*decimal.Decimal{&p.Price, &p.Cost, &p.Stock}, price, cost, stock)
	return p, err
}

// Get loads one product.
func (s Products) Get(ctx context.Context, id int64) (reports.Product, error) {
	p, err := scanProduct(s.q.QueryRow(ctx, productSelect+" WHERE p.id = $1", id))
	if err != nil {
		return reports.Product{}, notFound(err, "product", id)
	}
	return p, nil
}

// List loads products matching c. Products carry no date, so date bounds
// are ignored.
func (s Products) List(ctx context.Context, c reports.Criteria) ([]reports.Product, error) {
	w := criteriaWhere(c, productCols)
	return collect(ctx, s.q, productSelect+w.String()+" ORDER BY p.sku, p.id", w.args, scanProduct)
}

const employeeSelect = `SELECT id, code, full_name, COALESCE(department, ''), COALESCE(position, ''),
       COALESCE(phone, ''), COALESCE(email, ''), hire_date, is_active
FROM employees`

var employeeCols = columns{
	id:       "id",
	date:     "hire_date",
	active:   "is_active",
	keywords: []string{"code", "full_name", "department", "position"},
}

// Employees reads the staff register.
type Employees struct{ q querier }

func scanEmployee(row pgx.Row) (reports.Employee, error) {
	var e reports.Employee
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Department, &e.Position, &e.Phone, &e.Email, &e.HireDate, &e.Active)
	return e, err
}

// Get loads one employee.
func (s Employees) Get(ctx context.Context, id int64) (reports.Employee, error) {
	e, err := scanEmployee(s.q.QueryRow(ctx, employeeSelect+" WHERE id = $1", id))
	if err != nil {
		return reports.Employee{}, notFound(err, "employee", id)
	}
	return e, nil
}

// List loads employees matching c.
func (s Employees) List(ctx context.Context, c reports.Criteria) ([]reports.Employee, error) {
	w := criteriaWhere(c, employeeCols)
	return collect(ctx, s.q, employeeSelect+w.String()+" ORDER BY code, id", w.args, scanEmployee)
}

const vehicleSelect = `SELECT id, plate_number, COALESCE(brand, ''), COALESCE(model, ''), COALESCE(year, 0),
       COALESCE(driver_name, ''), COALESCE(capacity_kg, 0)::text, is_active
FROM vehicles`

var vehicleCols = columns{
	id:       "id",
	active:   "is_active",
	keywords: []string{"plate_number", "brand", "model", "driver_name"},
}

// Vehicles reads the fleet register.
type Vehicles struct{ q querier }

func scanVehicle(row pgx.Row) (reports.Vehicle, error) {
	var (
		v        reports.Vehicle
		capacity string
	)
	if err := row.Scan(&v.ID, &v.PlateNumber, &v.Brand, &v.Model, &v.Year, &v.Driver, &capacity, &v.Active); err != nil {
		return reports.Vehicle{}, err
	}
	err := decs([]*decimal.Decimal{&v.CapacityKg}, capacity)
	return v, err
}

// Get loads one vehicle.
func (s Vehicles) Get(ctx context.Context, id int64) (reports.Vehicle, error) {
	v, err := scanVehicle(s.q.QueryRow(ctx, vehicleSelect+" WHERE id = $1", id))
	if err != nil {
		return reports.Vehicle{}, notFound(err, "vehicle", id)
	}
	return v, nil
}

// List loads vehicles matching c.
func (s Vehicles) List(ctx context.Context, c reports.Criteria) ([]reports.Vehicle, error) {
	w := criteriaWhere(c, vehicleCols)
	return collect(ctx, s.q, vehicleSelect+w.String()+" ORDER BY plate_number, id", w.args, scanVehicle)
}
