package crdb

import (
	"context"
	"fmt"
	"time"

	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/jackc/pgx/v4/pgxpool"
)

var (
	PGPool                 *pgxpool.Pool
	StandardContextTimeout = 10 * time.Second

	logger = gologger.NewLogger()
)

// ConnectToDB opens the shared pool. Fetch queries hold a connection for the whole cursor,
// so the pool is sized for concurrent fetches rather than short statements.
func ConnectToDB(ctx context.Context, dsn string) error {
	logger.Debug().Msg("connecting to CRDB...")
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("error in pgxpool.ParseConfig: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 1
	config.HealthCheckPeriod = time.Second * 5
	config.MaxConnLifetime = time.Minute * 30
	config.MaxConnIdleTime = time.Minute * 30

	connectCtx, cancel := context.WithTimeout(ctx, StandardContextTimeout)
	defer cancel()
	PGPool, err = pgxpool.ConnectConfig(connectCtx, config)
	if err != nil {
		return fmt.Errorf("error in pgxpool.ConnectConfig: %w", err)
	}
	logger.Debug().Msg("connected to CRDB")
	return nil
}

func Close() {
	if PGPool != nil {
		PGPool.Close()
	}
}
