package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

// Store exposes every report source over one pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Sources returns the entity sources for the standard registry. Sales
// documents are read from sales orders.
func (s *Store) Sources() reports.Sources {
	sales, _ := NewSalesDocuments(s.pool, reports.SalesOrder)
	return reports.Sources{
		Customers: Customers{q: s.pool},
		Suppliers: Suppliers{q: s.pool},
		Products:  Products{q: s.pool},
		Employees: Employees{q: s.pool},
		Vehicles:  Vehicles{q: s.pool},
		Journals:  JournalEntries{q: s.pool},
		Sales:     sales,
	}
}

// Categories loads product category names keyed by id.
func (s *Store) Categories(ctx context.Context) (map[int64]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reports/db: categories: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("reports/db: scan category: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// Company returns a CompanyProvider for the company row with id.
func (s *Store) Company(id int64) reports.CompanyProvider {
	return companyHeader{q: s.pool, id: id}
}

type companyHeader struct {
	q  querier
	id int64
}

// Company implements reports.CompanyProvider.
func (c companyHeader) Company(ctx context.Context) (reports.Header, error) {
	var h reports.Header
	err := c.q.QueryRow(ctx, `SELECT name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(tax_id, '')
FROM companies WHERE id = $1`, c.id).Scan(&h.CompanyName, &h.Address, &h.Phone, &h.TaxID)
	if errors.Is(err, pgx.ErrNoRows) {
		return reports.Header{}, fmt.Errorf("company %d: %w", c.id, reports.ErrNotFound)
	}
	if err != nil {
		return reports.Header{}, fmt.Errorf("reports/db: company header: %w", err)
	}
	return h, nil
}
