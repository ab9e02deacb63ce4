package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type Options struct {
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
	TxWatchdog       time.Duration
}

// DB wraps the pool with transaction scoping. Repositories obtain their
// executor through it so that calls made inside RunAtomic join the
// surrounding transaction.
type DB struct {
	Pool     *pgxpool.Pool
	Log      zerolog.Logger
	watchdog time.Duration
}

func Connect(ctx context.Context, dsn string, opts Options, log zerolog.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MinConns = 1
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	cfg.HealthCheckPeriod = 30 * time.Second
	if opts.StatementTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool, opts.TxWatchdog, log), nil
}

func New(pool *pgxpool.Pool, watchdog time.Duration, log zerolog.Logger) *DB {
	return &DB{Pool: pool, Log: log, watchdog: watchdog}
}

func (db *DB) Close() { db.Pool.Close() }
