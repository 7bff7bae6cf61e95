package fetch

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/relfetch/table"
	"github.com/danthegoodman1/relfetch/utils"
)

type (
	// Fetch1 retrieves the single row of an expression that must hold exactly one row
	Fetch1 struct {
		expr table.Expression
	}
)

func NewOne(expr table.Expression) *Fetch1 {
	return &Fetch1{expr: expr}
}

// Fetch1 returns the row as a Record when no attrs are given. With attrs it returns the
// value of the single attribute, or a Tuple in request order; Key yields the key Record.
func (f *Fetch1) Fetch1(ctx context.Context, squeeze bool, attrs ...AttrRef) (any, error) {
	if len(attrs) == 0 {
		return f.Row(ctx, squeeze)
	}

	proj, err := f.expr.Proj(namedOnly(attrs)...)
	if err != nil {
		return nil, fmt.Errorf("error in Proj: %w", err)
	}
	res, err := New(proj).Fetch(ctx, Params{
		Format:  utils.Ptr(FormatArray),
		Squeeze: squeeze,
	})
	if err != nil {
		return nil, err
	}
	ra := res.(*RecordArray)
	if ra.Len() != 1 {
		return nil, fmt.Errorf("%w: expected exactly one row, %d rows were found", ErrCardinality, ra.Len())
	}

	row := ra.Row(0)
	tuple := make(Tuple, len(attrs))
	for i, a := range attrs {
		if a.IsKey() {
			tuple[i] = row.Project(ra.PrimaryKey()...)
			continue
		}
		v, ok := row.Get(a.Name())
		if !ok {
			return nil, fmt.Errorf("%w: no column %s", ErrUsage, a.Name())
		}
		tuple[i] = v
	}

	if len(tuple) == 1 {
		return tuple[0], nil
	}
	return tuple, nil
}

// Row fetches every attribute of the single row
func (f *Fetch1) Row(ctx context.Context, squeeze bool) (Record, error) {
	h := f.expr.Heading()

	cur, err := f.expr.Cursor(ctx, table.CursorParams{AsDict: true})
	if err != nil {
		return Record{}, fmt.Errorf("error in Cursor: %w", err)
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return Record{}, fmt.Errorf("error iterating cursor: %w", err)
		}
		return Record{}, fmt.Errorf("%w: expected exactly one row, none were found", ErrCardinality)
	}
	row := cur.Row()
	if cur.Next() {
		return Record{}, fmt.Errorf("%w: expected exactly one row, more were found", ErrCardinality)
	}
	if err := cur.Err(); err != nil {
		return Record{}, fmt.Errorf("error iterating cursor: %w", err)
	}

	return decodeRecord(ctx, h, decodersFor(f.expr, h), row, squeeze)
}
