package relation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/danthegoodman1/relfetch/heading"
	"github.com/danthegoodman1/relfetch/table"
	"github.com/danthegoodman1/relfetch/utils"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type (
	// Relation is a table of a schema, optionally restricted and projected
	Relation struct {
		conn    *Connection
		schema  string
		table   string
		heading *heading.Heading

		restrictions []string
		args         []any
	}

	pgCursor struct {
		rows  pgx.Rows
		names []string
		row   table.Row
		err   error
	}
)

func NewRelation(conn *Connection, schema, tableName string, h *heading.Heading) *Relation {
	return &Relation{
		conn:    conn,
		schema:  schema,
		table:   tableName,
		heading: h,
	}
}

func (r *Relation) Heading() *heading.Heading {
	return r.heading
}

// Restrict returns r narrowed by a SQL condition. Placeholders are numbered from $1 within
// cond and renumbered when conditions are combined.
func (r *Relation) Restrict(cond string, args ...any) *Relation {
	out := *r
	out.restrictions = append(append([]string{}, r.restrictions...), renumber(cond, len(r.args)))
	out.args = append(append([]any{}, r.args...), args...)
	return &out
}

// renumber shifts $n placeholders in cond by offset
func renumber(cond string, offset int) string {
	if offset == 0 {
		return cond
	}
	var b strings.Builder
	for i := 0; i < len(cond); i++ {
		if cond[i] != '$' {
			b.WriteByte(cond[i])
			continue
		}
		j := i + 1
		n := 0
		for j < len(cond) && cond[j] >= '0' && cond[j] <= '9' {
			n = n*10 + int(cond[j]-'0')
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		fmt.Fprintf(&b, "$%d", n+offset)
		i = j - 1
	}
	return b.String()
}

func (r *Relation) Proj(names ...string) (table.Expression, error) {
	h, err := r.heading.Project(names...)
	if err != nil {
		return nil, fmt.Errorf("error in heading.Project: %w", err)
	}
	out := *r
	out.heading = h
	return &out, nil
}

func (r *Relation) from() string {
	sql := " FROM " + pgx.Identifier{r.schema, r.table}.Sanitize()
	if len(r.restrictions) > 0 {
		sql += " WHERE (" + strings.Join(r.restrictions, ") AND (") + ")"
	}
	return sql
}

// orderTerm quotes the attribute of "name [ASC|DESC]" terms. Other terms are trusted SQL
// expressions and are left as is.
func (r *Relation) orderTerm(term string) string {
	fields := strings.Fields(term)
	if len(fields) == 0 || len(fields) > 2 {
		return term
	}
	if !identifier.MatchString(fields[0]) {
		return term
	}
	quoted := pgx.Identifier{fields[0]}.Sanitize()
	if len(fields) == 2 {
		dir := strings.ToUpper(fields[1])
		if dir != "ASC" && dir != "DESC" {
			return term
		}
		quoted += " " + dir
	}
	return quoted
}

func (r *Relation) selectSQL(p table.CursorParams) string {
	names := r.heading.Names()
	cols := make([]string, len(names))
	for i, n := range names {
		cols[i] = pgx.Identifier{n}.Sanitize()
	}
	sql := "SELECT " + strings.Join(cols, ", ") + r.from()
	if len(p.OrderBy) > 0 {
		terms := make([]string, len(p.OrderBy))
		for i, t := range p.OrderBy {
			terms[i] = r.orderTerm(t)
		}
		sql += " ORDER BY " + strings.Join(terms, ", ")
	}
	if p.Limit != nil {
		sql += fmt.Sprintf(" LIMIT %d", *p.Limit)
	}
	if p.Offset != nil {
		sql += fmt.Sprintf(" OFFSET %d", *p.Offset)
	}
	return sql
}

func (r *Relation) Cursor(ctx context.Context, p table.CursorParams) (table.Cursor, error) {
	sql := r.selectSQL(p)
	logger.Debug().Str("sql", sql).Msg("running fetch query")
	rows, err := r.conn.Pool.Query(ctx, sql, r.args...)
	if err != nil {
		return nil, fmt.Errorf("error in Pool.Query: %w", err)
	}
	return &pgCursor{rows: rows, names: r.heading.Names()}, nil
}

func (r *Relation) Count(ctx context.Context) (int64, error) {
	var count int64
	err := utils.ReliableExec(ctx, r.conn.Pool, 15*time.Second, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, "SELECT count(*)"+r.from(), r.args...).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return count, nil
}

func (r *Relation) ExternalTable(database string) (table.ExternalGetter, error) {
	return r.conn.Schema(database).External, nil
}

func (c *pgCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	vals, err := c.rows.Values()
	if err != nil {
		c.err = fmt.Errorf("error in rows.Values: %w", err)
		return false
	}
	c.row = table.Row{ColNames: c.names, ColVals: vals}
	return true
}

func (c *pgCursor) Row() table.Row {
	return c.row
}

func (c *pgCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *pgCursor) Close() {
	c.rows.Close()
}
