package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/danthegoodman1/relfetch/blob"
	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/heading"
	"github.com/danthegoodman1/relfetch/table"
)

type (
	// memExpr is an in-memory table.Expression
	memExpr struct {
		base *heading.Heading
		h    *heading.Heading
		// rows are aligned with base
		rows [][]any
		ext  map[string]table.ExternalGetter
		log  *queryLog
	}

	queryLog struct {
		cursors []table.CursorParams
		counts  int
	}
)

func newMemExpr(h *heading.Heading, rows [][]any, ext map[string]table.ExternalGetter) *memExpr {
	return &memExpr{base: h, h: h, rows: rows, ext: ext, log: &queryLog{}}
}

func (m *memExpr) Heading() *heading.Heading {
	return m.h
}

func (m *memExpr) where(keep func(row []any) bool) *memExpr {
	out := *m
	out.rows = nil
	for _, r := range m.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return &out
}

func (m *memExpr) Cursor(_ context.Context, p table.CursorParams) (table.Cursor, error) {
	m.log.cursors = append(m.log.cursors, p)

	rows := make([][]any, len(m.rows))
	copy(rows, m.rows)
	for i := len(p.OrderBy) - 1; i >= 0; i-- {
		term := strings.Fields(p.OrderBy[i])
		pos := m.base.Position(term[0])
		if pos < 0 {
			return nil, fmt.Errorf("unknown order attribute %s", term[0])
		}
		desc := len(term) > 1 && term[1] == "DESC"
		sort.SliceStable(rows, func(a, b int) bool {
			c := compare(rows[a][pos], rows[b][pos])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if p.Offset != nil {
		if int(*p.Offset) >= len(rows) {
			rows = nil
		} else {
			rows = rows[*p.Offset:]
		}
	}
	if p.Limit != nil && int(*p.Limit) < len(rows) {
		rows = rows[:*p.Limit]
	}

	names := m.h.Names()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		vals := make([]any, len(names))
		for j, n := range names {
			vals[j] = r[m.base.Position(n)]
		}
		out[i] = table.Row{ColNames: names, ColVals: vals}
	}
	return table.NewSliceCursor(out), nil
}

func (m *memExpr) Proj(names ...string) (table.Expression, error) {
	ph, err := m.h.Project(names...)
	if err != nil {
		return nil, err
	}
	out := *m
	out.h = ph
	return &out, nil
}

func (m *memExpr) Count(_ context.Context) (int64, error) {
	m.log.counts++
	return int64(len(m.rows)), nil
}

func (m *memExpr) ExternalTable(database string) (table.ExternalGetter, error) {
	ext, ok := m.ext[database]
	if !ok {
		return nil, fmt.Errorf("no external table for %s", database)
	}
	return ext, nil
}

func compare(a, b any) int {
	switch av := a.(type) {
	case int:
		bv := b.(int)
		return av - bv
	case string:
		return strings.Compare(av, b.(string))
	default:
		panic(fmt.Sprintf("cannot compare %T", a))
	}
}

var sessionHeading = heading.MustNew(
	heading.Attribute{Name: "subject_id", Type: "int", InKey: true, Database: "lab"},
	heading.Attribute{Name: "session", Type: "int", InKey: true, Database: "lab"},
	heading.Attribute{Name: "name", Type: "varchar(64)", Database: "lab"},
	heading.Attribute{Name: "trace", Type: "bytea", IsBlob: true, Database: "lab"},
	heading.Attribute{Name: "movie", Type: "uuid", IsExternal: true, Store: "local", Database: "lab"},
)

// newSessions builds n sessions: subject i%3, session i, a packed [[i, i+1]] trace and an
// external payload "movie-i"
func newSessions(t *testing.T, n int) *memExpr {
	ds, err := external.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ext := external.NewTable("lab", external.NewMemIndex(), map[string]external.ObjectStore{"local": ds})

	var rows [][]any
	for i := 0; i < n; i++ {
		trace, err := blob.Pack([][]float64{{float64(i), float64(i + 1)}}, 0)
		if err != nil {
			t.Fatal(err)
		}
		hash, err := ext.Put(context.Background(), "local", []byte(fmt.Sprintf("movie-%d", i)))
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, []any{i % 3, i, fmt.Sprintf("name-%02d", n-i), trace, hash.String()})
	}
	return newMemExpr(sessionHeading, rows, map[string]table.ExternalGetter{"lab": ext})
}
