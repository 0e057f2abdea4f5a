package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options tunes the report connection pool.
type Options struct {
	DSN string
	// MaxConns caps concurrent report queries. Zero keeps the pgx default.
	MaxConns int32
	// StatementTimeout bounds a single report query. Zero disables it.
	StatementTimeout time.Duration
	ApplicationName  string
}

// Config translates Options into a pgxpool configuration.
func (o Options) Config() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(o.DSN)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	if o.MaxConns > 0 {
		config.MaxConns = o.MaxConns
	}
	params := config.ConnConfig.RuntimeParams
	if o.ApplicationName != "" {
		params["application_name"] = o.ApplicationName
	}
	if o.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(o.StatementTimeout.Milliseconds(), 10)
	}
	return config, nil
}

// New creates a PostgreSQL connection pool and checks it answers.
func New(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	config, err := opts.Config()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}

	return pool, nil
}
