package http_server

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/relfetch/relation"
	"github.com/danthegoodman1/relfetch/table"
)

type (
	// RelationRef names a table and optional restrictions. Conditions are SQL fragments
	// with $n placeholders bound to Args, and are expected from trusted callers only.
	RelationRef struct {
		Schema string      `validate:"required"`
		Table  string      `validate:"required"`
		Where  []Condition `validate:"dive"`
	}

	Condition struct {
		Cond string `validate:"required"`
		Args []any
	}

	Relations interface {
		Resolve(ctx context.Context, ref RelationRef) (table.Expression, error)
	}

	connRelations struct {
		conn *relation.Connection
	}
)

func (cr *connRelations) Resolve(ctx context.Context, ref RelationRef) (table.Expression, error) {
	rel, err := cr.conn.Table(ctx, ref.Schema, ref.Table)
	if err != nil {
		return nil, fmt.Errorf("error in conn.Table: %w", err)
	}
	for _, w := range ref.Where {
		rel = rel.Restrict(w.Cond, w.Args...)
	}
	return rel, nil
}
