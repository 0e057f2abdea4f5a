package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx   *fakeTx
	opts pgx.TxOptions
	err  error
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithSnapshotIsReadOnlyRepeatableRead(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	require.NoError(t, WithSnapshot(context.Background(), b, func(pgx.Tx) error { return nil }))
	assert.Equal(t, pgx.RepeatableRead, b.opts.IsoLevel)
	assert.Equal(t, pgx.ReadOnly, b.opts.AccessMode)
	assert.True(t, b.tx.committed)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTx(context.Background(), b, func(pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, b.tx.committed)
	assert.True(t, b.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, b.opts.IsoLevel)
}

func TestWithTxWrapsBeginAndCommitFailures(t *testing.T) {
	err := WithTx(context.Background(), &fakeBeginner{err: errors.New("no conn")}, func(pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "platform/db: begin tx: no conn")

	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization")}}
	err = WithTx(context.Background(), b, func(pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "platform/db: commit tx: serialization")
}

func TestOptionsConfig(t *testing.T) {
	cfg, err := Options{
		DSN:              "postgres://u:p@localhost:5432/odyssey",
		MaxConns:         7,
		StatementTimeout: 2500 * time.Millisecond,
		ApplicationName:  "odyssey-reports",
	}.Config()
	require.NoError(t, err)
	assert.EqualValues(t, 7, cfg.MaxConns)
	assert.Equal(t, "odyssey-reports", cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "2500", cfg.ConnConfig.RuntimeParams["statement_timeout"])

	_, err = Options{DSN: "postgres://%zz"}.Config()
	assert.ErrorContains(t, err, "platform/db: parse config")
}
