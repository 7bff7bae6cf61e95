package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgx"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ReliableExec acquires a connection from the pool and runs f, retrying with exponential
// backoff until f succeeds, returns a permanent error, or ctx is done. Each try gets its own
// tryTimeout.
func ReliableExec(ctx context.Context, pool *pgxpool.Pool, tryTimeout time.Duration, f func(ctx context.Context, conn *pgxpool.Conn) error) error {
	return backoff.Retry(func() error {
		tryCtx, cancel := context.WithTimeout(ctx, tryTimeout)
		defer cancel()

		conn, err := pool.Acquire(tryCtx)
		if err != nil {
			return fmt.Errorf("error in pool.Acquire: %w", err)
		}
		defer conn.Release()

		return asRetryable(f(tryCtx, conn))
	}, newBackoff(ctx))
}

// ReliableExecInTx is ReliableExec inside a transaction, with CockroachDB restart handling.
func ReliableExecInTx(ctx context.Context, pool *pgxpool.Pool, tryTimeout time.Duration, f func(ctx context.Context, tx pgx.Tx) error) error {
	return backoff.Retry(func() error {
		tryCtx, cancel := context.WithTimeout(ctx, tryTimeout)
		defer cancel()

		return asRetryable(crdbpgx.ExecuteTx(tryCtx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			return f(tryCtx, tx)
		}))
	}, newBackoff(ctx))
}

func newBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(b, ctx)
}

func asRetryable(err error) error {
	if err == nil {
		return nil
	}
	if IsPermanent(err) || isPermanentPGError(err) || errors.Is(err, pgx.ErrNoRows) {
		return backoff.Permanent(err)
	}
	return err
}

// isPermanentPGError reports statement errors that will fail the same way on every try:
// data exceptions (22), integrity violations (23) and syntax or access errors (42).
func isPermanentPGError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23") || strings.HasPrefix(pgErr.Code, "42")
}
