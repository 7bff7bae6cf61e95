package table

import (
	"context"

	"github.com/danthegoodman1/relfetch/heading"
)

type (
	Row struct {
		// The list of column names, same order as ColVals
		ColNames []string
		// The list of column values, same order as ColNames
		ColVals []any
	}

	CursorParams struct {
		// AsDict asks for name-keyed rows. Rows always carry their names, so this is a hint to
		// the query layer.
		AsDict  bool
		Limit   *int64
		Offset  *int64
		OrderBy []string
	}

	// Cursor iterates raw, undecoded rows. Callers must Close it.
	Cursor interface {
		Next() bool
		Row() Row
		Err() error
		Close()
	}

	// ExternalGetter resolves a stored content hash to the externally stored value
	ExternalGetter interface {
		Get(ctx context.Context, hash any) (any, error)
	}

	// Expression is a query-producing relation
	Expression interface {
		Heading() *heading.Heading
		Cursor(ctx context.Context, params CursorParams) (Cursor, error)
		// Proj narrows to the named attributes plus the primary key
		Proj(names ...string) (Expression, error)
		// Count is the current number of rows
		Count(ctx context.Context) (int64, error)
		// ExternalTable returns the external table of the named database (schema)
		ExternalTable(database string) (ExternalGetter, error)
	}
)

// Get returns the value of the named column
func (r Row) Get(name string) (any, bool) {
	for i, n := range r.ColNames {
		if n == name {
			return r.ColVals[i], true
		}
	}
	return nil, false
}
