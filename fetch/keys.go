package fetch

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/danthegoodman1/relfetch/table"
)

type (
	// KeySeq is a restartable sequence of primary keys. Nothing runs until Iter.
	KeySeq struct {
		expr   table.Expression
		params Params
	}

	KeyIterator struct {
		keys Dicts
		pos  int
	}
)

// Keys returns the primary key of every row as a Record.
//
// Deprecated: fetch the Key attribute instead, e.g. Fetch(ctx, Params{Attrs: []AttrRef{Key}}).
func (f *Fetch) Keys(p Params) *KeySeq {
	return &KeySeq{expr: f.expr, params: p}
}

// Iter runs the key-only query and returns a fresh iterator over its rows
func (ks *KeySeq) Iter(ctx context.Context) (*KeyIterator, error) {
	gologger.FromCtx(ctx).Warn().Msg("Fetch.Keys is deprecated, fetch the Key attribute instead")

	proj, err := ks.expr.Proj()
	if err != nil {
		return nil, fmt.Errorf("error in Proj: %w", err)
	}
	p := ks.params
	p.AsDict = true
	res, err := New(proj).Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	return &KeyIterator{keys: res.(Dicts), pos: -1}, nil
}

func (it *KeyIterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *KeyIterator) Key() Record {
	return it.keys[it.pos]
}
