package relation

import (
	"context"
	"fmt"
	"sync"

	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/jackc/pgx/v4/pgxpool"
)

var (
	logger = gologger.NewLogger()
)

type (
	// Connection is a pool plus the schemas reached through it
	Connection struct {
		Pool *pgxpool.Pool

		index  external.Index
		stores map[string]external.ObjectStore

		mu      sync.Mutex
		schemas map[string]*Schema
	}

	Schema struct {
		Name string
		// External resolves the hashes held by the schema's external attributes
		External *external.Table
	}
)

func NewConnection(pool *pgxpool.Pool, index external.Index, stores map[string]external.ObjectStore) *Connection {
	return &Connection{
		Pool:    pool,
		index:   index,
		stores:  stores,
		schemas: map[string]*Schema{},
	}
}

// Schema returns the named schema, creating its external table on first use
func (c *Connection) Schema(name string) *Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[name]
	if !ok {
		s = &Schema{
			Name:     name,
			External: external.NewTable(name, c.index, c.stores),
		}
		c.schemas[name] = s
	}
	return s
}

// Table loads the heading of schema.table and returns the whole table as a relation
func (c *Connection) Table(ctx context.Context, schema, table string) (*Relation, error) {
	h, err := LoadHeading(ctx, c.Pool, schema, table)
	if err != nil {
		return nil, fmt.Errorf("error in LoadHeading: %w", err)
	}
	logger.Debug().Str("schema", schema).Str("table", table).Strs("attributes", h.Names()).Msg("loaded heading")
	return NewRelation(c, schema, table, h), nil
}
