package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

var (
	writeTx    = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	snapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

// WithTx runs fn in a read-write transaction.
func WithTx(ctx context.Context, db Beginner, fn func(pgx.Tx) error) error {
	return run(ctx, db, writeTx, fn)
}

// WithSnapshot runs fn in a read-only repeatable-read transaction, so every
// query inside it sees the same committed data.
func WithSnapshot(ctx context.Context, db Beginner, fn func(pgx.Tx) error) error {
	return run(ctx, db, snapshotTx, fn)
}

func run(ctx context.Context, db Beginner, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	return nil
}
