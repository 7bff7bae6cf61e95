package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/relfetch/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type (
	// PGIndex keeps entries in the external_objects table created by the migrations package
	PGIndex struct {
		pool       *pgxpool.Pool
		tryTimeout time.Duration
	}
)

func NewPGIndex(pool *pgxpool.Pool) *PGIndex {
	return &PGIndex{pool: pool, tryTimeout: 10 * time.Second}
}

func (pi *PGIndex) Lookup(ctx context.Context, schema string, hash uuid.UUID) (Entry, error) {
	e := Entry{Schema: schema, Hash: hash}
	err := utils.ReliableExec(ctx, pi.pool, pi.tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
		SELECT store, size, object_key, created_at
		FROM external_objects
		WHERE schema_name = $1
		AND hash = $2
		`, schema, hash.String()).Scan(&e.Store, &e.Size, &e.Key, &e.CreatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return e, fmt.Errorf("%w: %s in schema %s", ErrNotFound, hash, schema)
	}
	if err != nil {
		return e, fmt.Errorf("error in ReliableExec: %w", err)
	}
	return e, nil
}

func (pi *PGIndex) Insert(ctx context.Context, e Entry) error {
	err := utils.ReliableExecInTx(ctx, pi.pool, pi.tryTimeout, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
		INSERT INTO external_objects (schema_name, hash, store, size, object_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (schema_name, hash) DO NOTHING
		`, e.Schema, e.Hash.String(), e.Store, e.Size, e.Key)
		return err
	})
	if err != nil {
		return fmt.Errorf("error in ReliableExecInTx: %w", err)
	}
	return nil
}
