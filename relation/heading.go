package relation

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/danthegoodman1/relfetch/heading"
	"github.com/danthegoodman1/relfetch/utils"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4/pgxpool"
)

var (
	ErrNoSuchTable = utils.PermError("no such table")

	// column comments mark blob and external attributes, e.g. ":blob: raw trace" or
	// ":external-raw: movie file"
	blobComment     = regexp.MustCompile(`^\s*:blob:`)
	externalComment = regexp.MustCompile(`^\s*:external(-([A-Za-z0-9_]+))?:`)

	connInfo = pgtype.NewConnInfo()
)

const DefaultStore = "external"

// LoadHeading reads the columns of schema.table in declaration order
func LoadHeading(ctx context.Context, pool *pgxpool.Pool, schema, table string) (*heading.Heading, error) {
	var attrs []heading.Attribute
	err := utils.ReliableExec(ctx, pool, 10*time.Second, func(ctx context.Context, conn *pgxpool.Conn) error {
		attrs = nil
		rows, err := conn.Query(ctx, `
		SELECT c.column_name, c.udt_name,
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), ''),
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage k
				ON tc.constraint_name = k.constraint_name
				AND tc.table_schema = k.table_schema
				AND tc.table_name = k.table_name
				WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = c.table_schema
				AND tc.table_name = c.table_name
				AND k.column_name = c.column_name
			)
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		AND c.table_name = $2
		ORDER BY c.ordinal_position
		`, schema, table)
		if err != nil {
			return fmt.Errorf("error querying columns: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var name, udt, comment string
			var inKey bool
			if err := rows.Scan(&name, &udt, &comment, &inKey); err != nil {
				return fmt.Errorf("error scanning column: %w", err)
			}
			attrs = append(attrs, attributeFromColumn(schema, name, udt, comment, inKey))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchTable, schema, table)
	}
	return heading.New(attrs...)
}

// attributeFromColumn classifies a column. bytea columns and ":blob:" comments are blobs;
// ":external:" comments mark a hash column whose payload is in an external store.
func attributeFromColumn(schema, name, udt, comment string, inKey bool) heading.Attribute {
	a := heading.Attribute{
		Name:     name,
		Database: schema,
		Type:     udt,
		InKey:    inKey,
	}
	if m := externalComment.FindStringSubmatch(comment); m != nil {
		a.IsExternal = true
		a.Store = DefaultStore
		if m[2] != "" {
			a.Store = m[2]
		}
		return a
	}
	if dt, ok := connInfo.DataTypeForName(udt); ok && dt.OID == pgtype.ByteaOID {
		a.IsBlob = true
	}
	if blobComment.MatchString(comment) {
		a.IsBlob = true
	}
	return a
}
