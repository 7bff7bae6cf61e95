package fetch

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/danthegoodman1/relfetch/settings"
	"github.com/danthegoodman1/relfetch/table"
	"github.com/danthegoodman1/relfetch/utils"
)

type (
	// Fetch retrieves zero or more rows of an expression. It keeps no state between calls,
	// every call runs the query again.
	Fetch struct {
		expr table.Expression
	}

	Params struct {
		// Attrs selects attributes to return as columns instead of whole rows
		Attrs []AttrRef
		// Offset skips rows. Without Limit, the limit becomes twice the current row count.
		Offset *int64
		Limit  *int64
		// OrderBy terms such as "name", "age DESC", "KEY" or "KEY DESC"
		OrderBy []string
		// Format is only allowed for whole-row, non-dict fetches. Defaults to the
		// fetch_format setting.
		Format *Format
		// AsDict returns one Record per row
		AsDict bool
		// Squeeze collapses singleton dimensions of decoded blobs
		Squeeze bool
	}
)

func New(expr table.Expression) *Fetch {
	return &Fetch{expr: expr}
}

// Fetch returns a *RecordArray or *Frame for whole rows, Dicts when AsDict is set, and a
// Column (one attribute) or Columns (several) when Attrs are given.
func (f *Fetch) Fetch(ctx context.Context, p Params) (Result, error) {
	shape, err := resolveShape(len(p.Attrs) > 0, p.AsDict, p.Format, settings.FetchFormat)
	if err != nil {
		return nil, err
	}

	orderBy := ExpandOrdering(f.expr.Heading().PrimaryKey(), p.OrderBy...)

	limit := p.Limit
	if limit == nil && p.Offset != nil {
		count, err := f.expr.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("error in Count: %w", err)
		}
		limit = utils.Ptr(2 * count)
		gologger.FromCtx(ctx).Warn().Int64("offset", *p.Offset).Int64("limit", *limit).Msg("offset set but no limit, setting limit to twice the row count, consider setting a limit explicitly")
	}

	cp := table.CursorParams{
		AsDict:  p.AsDict,
		Limit:   limit,
		Offset:  p.Offset,
		OrderBy: orderBy,
	}

	switch shape {
	case ShapeColumns:
		return f.fetchColumns(ctx, p.Attrs, cp, p.Squeeze)
	case ShapeDicts:
		return f.fetchDicts(ctx, cp, p.Squeeze)
	}

	ra, err := f.fetchArray(ctx, cp, p.Squeeze)
	if err != nil {
		return nil, err
	}
	if shape == ShapeFrame {
		return newFrame(ra), nil
	}
	return ra, nil
}

func (f *Fetch) fetchDicts(ctx context.Context, cp table.CursorParams, squeeze bool) (Dicts, error) {
	h := f.expr.Heading()
	decoders := decodersFor(f.expr, h)

	cur, err := f.expr.Cursor(ctx, cp)
	if err != nil {
		return nil, fmt.Errorf("error in Cursor: %w", err)
	}
	defer cur.Close()

	dicts := Dicts{}
	for cur.Next() {
		rec, err := decodeRecord(ctx, h, decoders, cur.Row(), squeeze)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cursor: %w", err)
	}
	return dicts, nil
}

// fetchArray reads every row first, then decodes blob and external columns column-wise
func (f *Fetch) fetchArray(ctx context.Context, cp table.CursorParams, squeeze bool) (*RecordArray, error) {
	h := f.expr.Heading()

	cur, err := f.expr.Cursor(ctx, cp)
	if err != nil {
		return nil, fmt.Errorf("error in Cursor: %w", err)
	}
	defer cur.Close()

	ra := newRecordArray(h)
	for cur.Next() {
		if err := ra.appendRow(cur.Row()); err != nil {
			return nil, err
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cursor: %w", err)
	}

	for i, d := range decodersFor(f.expr, h) {
		if isPassThrough(d) {
			continue
		}
		for _, row := range ra.rows {
			v, err := d.Decode(ctx, row[i], squeeze)
			if err != nil {
				return nil, fmt.Errorf("error decoding %s: %w", ra.layout.Names[i], err)
			}
			row[i] = v
		}
	}
	return ra, nil
}

// fetchColumns fetches the projection onto the named attributes as an array and slices one
// column per requested attribute out of it
func (f *Fetch) fetchColumns(ctx context.Context, attrs []AttrRef, cp table.CursorParams, squeeze bool) (Result, error) {
	proj, err := f.expr.Proj(namedOnly(attrs)...)
	if err != nil {
		return nil, fmt.Errorf("error in Proj: %w", err)
	}
	res, err := New(proj).Fetch(ctx, Params{
		Offset:  cp.Offset,
		Limit:   cp.Limit,
		OrderBy: cp.OrderBy,
		Format:  utils.Ptr(FormatArray),
		Squeeze: squeeze,
	})
	if err != nil {
		return nil, err
	}
	ra := res.(*RecordArray)

	cols := make(Columns, len(attrs))
	for i, a := range attrs {
		if a.IsKey() {
			keys := ra.Keys()
			vals := make([]any, len(keys))
			for j := range keys {
				vals[j] = keys[j]
			}
			cols[i] = Column{Attr: a, Values: vals}
			continue
		}
		vals, err := ra.Column(a.Name())
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Attr: a, Values: vals}
	}

	if len(cols) == 1 {
		return cols[0], nil
	}
	return cols, nil
}
