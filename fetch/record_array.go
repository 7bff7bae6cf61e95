package fetch

import (
	"encoding/json"
	"fmt"

	"github.com/danthegoodman1/relfetch/heading"
	"github.com/danthegoodman1/relfetch/table"
)

type (
	// RecordArray is a fixed-layout array of rows. Columns follow the heading's declaration
	// order and declared types.
	RecordArray struct {
		layout     heading.Layout
		primaryKey []string
		rows       [][]any
	}
)

func newRecordArray(h *heading.Heading) *RecordArray {
	return &RecordArray{
		layout:     h.Layout(),
		primaryKey: h.PrimaryKey(),
	}
}

// appendRow aligns row to the layout, positionally when the names line up, else by name
func (ra *RecordArray) appendRow(row table.Row) error {
	vals := make([]any, len(ra.layout.Names))
	for i, name := range ra.layout.Names {
		if i < len(row.ColNames) && row.ColNames[i] == name {
			vals[i] = row.ColVals[i]
			continue
		}
		v, ok := row.Get(name)
		if !ok {
			return fmt.Errorf("%w: missing attribute %s", ErrRowShape, name)
		}
		vals[i] = v
	}
	ra.rows = append(ra.rows, vals)
	return nil
}

func (ra *RecordArray) Len() int {
	return len(ra.rows)
}

func (ra *RecordArray) Names() []string {
	return ra.layout.Names
}

func (ra *RecordArray) Types() []string {
	return ra.layout.Types
}

func (ra *RecordArray) PrimaryKey() []string {
	return ra.primaryKey
}

func (ra *RecordArray) position(name string) (int, error) {
	for i, n := range ra.layout.Names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no column %s", ErrUsage, name)
}

// Column returns a copy of the named column
func (ra *RecordArray) Column(name string) ([]any, error) {
	pos, err := ra.position(name)
	if err != nil {
		return nil, err
	}
	col := make([]any, len(ra.rows))
	for i, row := range ra.rows {
		col[i] = row[pos]
	}
	return col, nil
}

// SetColumn replaces the named column, vals must hold one value per row
func (ra *RecordArray) SetColumn(name string, vals []any) error {
	pos, err := ra.position(name)
	if err != nil {
		return err
	}
	if len(vals) != len(ra.rows) {
		return fmt.Errorf("%w: column %s has %d values for %d rows", ErrUsage, name, len(vals), len(ra.rows))
	}
	for i := range ra.rows {
		ra.rows[i][pos] = vals[i]
	}
	return nil
}

func (ra *RecordArray) Row(i int) Record {
	vals := make([]any, len(ra.rows[i]))
	copy(vals, ra.rows[i])
	return Record{Names: ra.layout.Names, Values: vals}
}

// Records converts every row to a Record
func (ra *RecordArray) Records() []Record {
	out := make([]Record, len(ra.rows))
	for i := range ra.rows {
		out[i] = ra.Row(i)
	}
	return out
}

// Keys returns the primary-key sub-record of every row
func (ra *RecordArray) Keys() []Record {
	out := make([]Record, len(ra.rows))
	for i := range ra.rows {
		out[i] = ra.Row(i).Project(ra.primaryKey...)
	}
	return out
}

func (ra *RecordArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(ra.Records())
}

// ToDicts converts a record array to ordered dicts
func ToDicts(ra *RecordArray) Dicts {
	return Dicts(ra.Records())
}
