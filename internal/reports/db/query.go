// Package db loads report entities from PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/reports"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// where accumulates AND-ed predicates. Every "?" in a clause binds the same
// argument.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// columns names the table columns criteria map onto. Empty names are not
// filtered in SQL.
type columns struct {
	id        string
	date      string
	active    string
	cancelled string
	keywords  []string
}

func criteriaWhere(c reports.Criteria, cols columns) *where {
	w := &where{}
	if len(c.IDs) > 0 {
		w.add(cols.id+" = ANY(?)", c.IDs)
	}
	if cols.date != "" && c.From != nil {
		w.add(cols.date+" >= ?::date", c.From.Format("2006-01-02"))
	}
	if cols.date != "" && c.To != nil {
		w.add(cols.date+" < (?::date + 1)", c.To.Format("2006-01-02"))
	}
	if cols.active != "" && c.Active != nil {
		w.add(cols.active+" = ?", *c.Active)
	}
	if cols.cancelled != "" && c.Cancelled != nil {
		w.add(cols.cancelled+" = ?", *c.Cancelled)
	}
	if kw := strings.TrimSpace(c.Keyword); kw != "" && len(cols.keywords) > 0 {
		parts := make([]string, len(cols.keywords))
		for i, k := range cols.keywords {
			parts[i] = k + " ILIKE ?"
		}
		w.add("("+strings.Join(parts, " OR ")+")", "%"+escapeLike(kw)+"%")
	}
	return w
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// notFound maps pgx.ErrNoRows onto reports.ErrNotFound.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, reports.ErrNotFound)
	}
	return fmt.Errorf("reports/db: load %s %d: %w", what, id, err)
}

// dec parses a numeric column selected as text. NULL arrives as "".
func dec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// decs parses several numeric columns in order.
func decs(dst []*decimal.Decimal, src ...string) error {
	for i, s := range src {
		v, err := dec(s)
		if err != nil {
			return fmt.Errorf("reports/db: numeric %q: %w", s, err)
		}
		*dst[i] = v
	}
	return nil
}

func collect[T any](ctx context.Context, q querier, sql string, args []any, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) { return scan(row) })
}
