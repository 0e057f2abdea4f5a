// Package db reads the chart of accounts and posted journal lines for statements.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-reports/internal/accounting"
	"github.com/odyssey-erp/odyssey-reports/internal/accounting/ledger"
	platformdb "github.com/odyssey-erp/odyssey-reports/internal/platform/db"
)

// Repository loads ledger snapshots from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// accountColumnsQuery lists the optional chart columns present in this schema.
// Only id, code, name and type are required.
const accountColumnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = 'accounts'
  AND column_name IN ('normal_side', 'sort_key', 'is_active')`

// accountsQuery reads the whole chart. Inactive accounts are included because
// their historical postings still belong in the statements. Missing optional
// columns fall back to the type's direction, sort key 0 and active.
func accountsQuery(columns map[string]bool) string {
	side, sortKey, active := "''", "0", "TRUE"
	if columns["normal_side"] {
		side = "COALESCE(normal_side, '')"
	}
	if columns["sort_key"] {
		sortKey = "COALESCE(sort_key, 0)"
	}
	if columns["is_active"] {
		active = "COALESCE(is_active, TRUE)"
	}
	return "SELECT id, code, name, type, " + side + ", " + sortKey + ", " + active + "\nFROM accounts ORDER BY code"
}

const linesQuery = `SELECT je.id, jl.account_id, je.date, jl.debit::text, jl.credit::text
FROM journal_lines jl
JOIN journal_entries je ON je.id = jl.je_id
WHERE je.status = 'POSTED'
  AND ($1::bigint = 0 OR jl.dim_company_id = $1)
  AND ($2::date IS NULL OR je.date >= $2)
  AND je.date <= $3
ORDER BY je.date, je.id, jl.id`

// Snapshot reads the chart, period lines and cumulative lines inside one
// read-only repeatable-read transaction.
func (r *Repository) Snapshot(ctx context.Context, companyID int64, start, end time.Time) (ledger.Snapshot, error) {
	if r == nil || r.pool == nil {
		return ledger.Snapshot{}, errors.New("accounting/db: repository not initialised")
	}
	var snap ledger.Snapshot
	err := platformdb.WithSnapshot(ctx, r.pool, func(tx pgx.Tx) error {
		accounts, err := listAccounts(ctx, tx)
		if err != nil {
			return err
		}
		snap.Chart = accounting.NewChart(accounts)
		if snap.Period, err = listLines(ctx, tx, companyID, &start, end); err != nil {
			return fmt.Errorf("period lines: %w", err)
		}
		if snap.Cumulative, err = listLines(ctx, tx, companyID, nil, end); err != nil {
			return fmt.Errorf("cumulative lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("accounting/db: snapshot: %w", err)
	}
	return snap, nil
}

func accountColumns(ctx context.Context, tx pgx.Tx) (map[string]bool, error) {
	rows, err := tx.Query(ctx, accountColumnsQuery)
	if err != nil {
		return nil, fmt.Errorf("account columns: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("account columns: %w", err)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}

func listAccounts(ctx context.Context, tx pgx.Tx) ([]accounting.Account, error) {
	columns, err := accountColumns(ctx, tx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, accountsQuery(columns))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (accounting.Account, error) {
		var (
			a         accounting.Account
			typ, side string
			active    bool
		)
		if err := row.Scan(&a.ID, &a.Code, &a.Name, &typ, &side, &a.SortKey, &active); err != nil {
			return accounting.Account{}, err
		}
		a.Inactive = !active
		return accountFromRow(a, typ, side)
	})
}

// accountFromRow fills type and direction; a blank side falls back to the
// conventional direction for the type.
func accountFromRow(a accounting.Account, typ, side string) (accounting.Account, error) {
	t, err := accounting.ParseAccountType(typ)
	if err != nil {
		return accounting.Account{}, fmt.Errorf("account %s: %w", a.Code, err)
	}
	a.Type = t
	if side == "" {
		a.Direction = accounting.DefaultDirection(t)
	} else {
		a.Direction = accounting.ParseDirection(side)
	}
	return a, nil
}

func listLines(ctx context.Context, tx pgx.Tx, companyID int64, start *time.Time, end time.Time) ([]ledger.Line, error) {
	rows, err := tx.Query(ctx, linesQuery, companyID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Line
	for rows.Next() {
		var (
			entryID, accountID int64
			date               time.Time
			debit, credit      string
		)
		if err := rows.Scan(&entryID, &accountID, &date, &debit, &credit); err != nil {
			return nil, err
		}
		lines, err := splitJournalLine(entryID, accountID, date, debit, credit)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, rows.Err()
}

// splitJournalLine turns a stored debit/credit column pair into side-tagged
// ledger lines. Zero columns produce nothing.
func splitJournalLine(entryID, accountID int64, date time.Time, debit, credit string) ([]ledger.Line, error) {
	dr, err := decimal.NewFromString(debit)
	if err != nil {
		return nil, fmt.Errorf("journal %d debit: %w", entryID, err)
	}
	cr, err := decimal.NewFromString(credit)
	if err != nil {
		return nil, fmt.Errorf("journal %d credit: %w", entryID, err)
	}
	var out []ledger.Line
	if !dr.IsZero() {
		out = append(out, ledger.Line{EntryID: entryID, AccountID: accountID, Date: date, Side: accounting.Debit, Amount: dr})
	}
	if !cr.IsZero() {
		out = append(out, ledger.Line{EntryID: entryID, AccountID: accountID, Date: date, Side: accounting.Credit, Amount: cr})
	}
	return out, nil
}
