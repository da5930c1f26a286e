package pgwrap

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsomniac/pgwrap/pkg/logger"
	"github.com/sethvargo/go-retry"
)

const (
	defaultPingTimeout   = 3 * time.Second
	connectRetryInterval = 500 * time.Millisecond
)

// Querier is the minimal driver surface the facade needs. Both
// *pgxpool.Pool and pgxmock.PgxPoolIface satisfy it, so tests can run
// against a mock.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is a handle to one database session. Statements run inside an implicit
// transaction begun on first use; Commit and Rollback finalize it and the
// next statement begins a fresh one.
//
// A DB does no locking of its own. Callers sharing a handle across
// goroutines must serialize access themselves.
type DB struct {
	q           Querier
	pool        *pgxpool.Pool
	tx          pgx.Tx
	pingTimeout time.Duration
	closed      bool
}

// New wraps an existing pool-compatible handle. Close becomes a no-op for
// the underlying handle; the caller keeps ownership.
func New(q Querier) *DB {
	return &DB{q: q, pingTimeout: defaultPingTimeout}
}

// Connect establishes a session described by cfg and verifies it with a
// ping. A nil cfg uses DefaultConfig. Failures wrap ErrConnect. When
// cfg.ConnectRetries is set, attempts are retried with exponential backoff.
func Connect(ctx context.Context, cfg *Config) (*DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	poolCfg, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	var pool *pgxpool.Pool
	if cfg.ConnectRetries > 0 {
		backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(connectRetryInterval))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			p, attemptErr := openPool(ctx, poolCfg, pingTimeout)
			if attemptErr != nil {
				return retry.RetryableError(attemptErr)
			}
			pool = p
			return nil
		})
	} else {
		pool, err = openPool(ctx, poolCfg, pingTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	logger.FromContext(ctx).With(
		"host", cfg.Host,
		"port", cfg.Port,
		"db_name", cfg.DBName,
		"max_conns", poolCfg.MaxConns,
	).Info("Database connected")
	return &DB{q: pool, pool: pool, pingTimeout: pingTimeout}, nil
}

// buildPoolConfig parses the DSN and applies pool bounds and timeouts.
func buildPoolConfig(cfg *Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: parse config: %w", ErrConnect, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = clampInt32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = clampInt32(cfg.MinConns)
	}
	if poolCfg.MinConns > poolCfg.MaxConns {
		poolCfg.MinConns = poolCfg.MaxConns
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	return poolCfg, nil
}

func clampInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}

// openPool creates the pool and pings it, cleaning up on failure.
func openPool(ctx context.Context, poolCfg *pgxpool.Config, pingTimeout time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Close rolls back any open transaction and releases the pool. Handles built
// with New leave the underlying pool to its owner.
func (db *DB) Close(ctx context.Context) error {
	if db.closed {
		return nil
	}
	db.closed = true
	if db.tx != nil {
		_ = db.tx.Rollback(ctx)
		db.tx = nil
	}
	if db.pool != nil {
		db.pool.Close()
		logger.FromContext(ctx).Info("Database closed")
	}
	return nil
}

// HealthCheck verifies the session is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.closed {
		return ErrClosed
	}
	pinger, ok := db.q.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	hctx, cancel := context.WithTimeout(ctx, db.pingTimeout)
	defer cancel()
	if err := pinger.Ping(hctx); err != nil {
		return fmt.Errorf("pgwrap: health check failed: %w", err)
	}
	return nil
}

// begin lazily opens the implicit transaction.
func (db *DB) begin(ctx context.Context) error {
	if db.closed {
		return ErrClosed
	}
	if db.tx != nil {
		return nil
	}
	tx, err := db.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgwrap: begin: %w", err)
	}
	db.tx = tx
	return nil
}

// Query executes a parameterized statement and returns its lazy result set.
// Args are always forwarded as driver parameters, never interpolated into
// the SQL text. Driver errors pass through untranslated.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (*Rows, error) {
	if err := db.begin(ctx); err != nil {
		return nil, err
	}
	pgxRows, err := db.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return newRows(pgxRows), nil
}

// QueryOne executes a parameterized statement expected to produce at most
// one row. Zero rows returns (nil, nil); more than one returns
// ErrTooManyRows.
func (db *DB) QueryOne(ctx context.Context, sql string, args ...any) (*Row, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	row, err := rows.At(0)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	if rows.Next() {
		return nil, ErrTooManyRows
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return row, nil
}

// Exec executes a parameterized statement and returns the number of rows
// affected.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := db.begin(ctx); err != nil {
		return 0, err
	}
	tag, err := db.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Commit finalizes the implicit transaction. With no transaction open it is
// a no-op. Driver failures wrap ErrTransaction and are not retried.
func (db *DB) Commit(ctx context.Context) error {
	if db.tx == nil {
		return nil
	}
	tx := db.tx
	db.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}
	return nil
}

// Rollback discards the implicit transaction. With no transaction open it is
// a no-op. Driver failures wrap ErrTransaction.
func (db *DB) Rollback(ctx context.Context) error {
	if db.tx == nil {
		return nil
	}
	tx := db.tx
	db.tx = nil
	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("%w: rollback: %w", ErrTransaction, err)
	}
	return nil
}
