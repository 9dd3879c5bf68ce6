package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DBTX is the part of *pgxpool.Pool the repositories use. pgx.Tx satisfies
// it too, so a Repo can be rebound to a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repo implements every storage interface of the console on one pool.
type Repo struct {
	db DBTX
}

func NewRepo(db DBTX) *Repo {
	return &Repo{db: db}
}

// inTx runs fn on a Repo bound to one transaction. It commits when fn
// returns nil and rolls back otherwise.
func (r *Repo) inTx(ctx context.Context, fn func(tx *Repo) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(NewRepo(tx))
	})
}

// Connect opens the pool and waits for Postgres to answer, retrying with backoff.
func Connect(ctx context.Context, cfg infra.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	pcfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not ready", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	err = r.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	logger.Info("database connected", zap.Int32("max_conns", pcfg.MaxConns))
	return pool, nil
}
