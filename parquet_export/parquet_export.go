package parquet_export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/danthegoodman1/gojsonutils"
	"github.com/danthegoodman1/relfetch/fetch"
	"github.com/danthegoodman1/relfetch/utils"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	ErrNoColumns  = utils.PermError("no non-null columns to export")
	ErrMixedTypes = utils.PermError("mixed column types")
)

var ErrNotFlatMap = errors.New("not a flat map")

type Stats struct {
	NumRows int64
	Columns []string
	Types   []string
	Schema  string
}

// FlattenRecord turns a decoded record into a flat map of JSON values, and the flat keys
// in a stable order. Nested maps become dotted columns, leftover lists are JSON strings.
func FlattenRecord(r fetch.Record) (map[string]any, []string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error in json.Marshal: %w", err)
	}
	var raw map[string]any
	if err = json.Unmarshal(b, &raw); err != nil {
		return nil, nil, fmt.Errorf("error in json.Unmarshal: %w", err)
	}
	flatRow := map[string]any{}
	var keys []string
	for _, name := range r.Names {
		val := raw[name]
		nested, isMap := val.(map[string]any)
		if !isMap {
			flatRow[name] = val
			keys = append(keys, name)
			continue
		}
		flat, err := gojsonutils.Flatten(map[string]any{name: nested}, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("error in gojsonutils.Flatten for %s: %w", name, err)
		}
		flatMap, ok := flat.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %+v", ErrNotFlatMap, flat)
		}
		subKeys := make([]string, 0, len(flatMap))
		for k, v := range flatMap {
			flatRow[k] = v
			subKeys = append(subKeys, k)
		}
		sort.Strings(subKeys)
		keys = append(keys, subKeys...)
	}
	for k, v := range flatRow {
		switch v.(type) {
		case []any, map[string]any:
			lb, err := json.Marshal(v)
			if err != nil {
				return nil, nil, fmt.Errorf("error in json.Marshal of %s: %w", k, err)
			}
			flatRow[k] = string(lb)
		}
	}
	return flatRow, keys, nil
}

// WriteRecords writes the records as a single parquet file to w
func WriteRecords(w io.Writer, records []fetch.Record) (*Stats, error) {
	acc := NewSchemaAccumulator()
	rows := make([]map[string]any, 0, len(records))
	for _, r := range records {
		flatRow, keys, err := FlattenRecord(r)
		if err != nil {
			return nil, err
		}
		if err = acc.WriteRow(flatRow, keys); err != nil {
			return nil, err
		}
		rows = append(rows, flatRow)
	}
	if acc.Len() == 0 {
		return nil, ErrNoColumns
	}

	schema, err := acc.SchemaString()
	if err != nil {
		return nil, fmt.Errorf("error in SchemaString: %w", err)
	}
	pw, err := writer.NewJSONWriterFromWriter(schema, w, 4)
	if err != nil {
		return nil, fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}

	stats := &Stats{
		Columns: acc.ColumnNames(),
		Types:   acc.ColumnTypes(),
		Schema:  schema,
	}
	for _, row := range rows {
		for k, v := range row {
			if v == nil {
				delete(row, k)
			}
		}
		rowBytes, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of flat row: %w", err)
		}
		if err = pw.Write(string(rowBytes)); err != nil {
			return nil, fmt.Errorf("error in pw.Write for row %s: %w", string(rowBytes), err)
		}
		stats.NumRows++
	}
	if err = pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("error in pw.WriteStop: %w", err)
	}
	return stats, nil
}
