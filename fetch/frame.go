package fetch

import (
	"encoding/json"
	"fmt"

	"github.com/danthegoodman1/relfetch/utils"
)

type (
	// Frame is a RecordArray indexed by its primary key
	Frame struct {
		array *RecordArray
		index map[string]int
	}

	frameRow struct {
		Index Record `json:"index"`
		Data  Record `json:"data"`
	}
)

func newFrame(ra *RecordArray) *Frame {
	f := &Frame{
		array: ra,
		index: make(map[string]int, ra.Len()),
	}
	if len(ra.PrimaryKey()) == 0 {
		return f
	}
	for i, k := range ra.Keys() {
		f.index[indexKey(k.Values)] = i
	}
	return f
}

func indexKey(vals []any) string {
	return fmt.Sprintf("%#v", vals)
}

func (f *Frame) Len() int {
	return f.array.Len()
}

func (f *Frame) IndexNames() []string {
	return f.array.PrimaryKey()
}

// Index is the primary key of every row, in row order
func (f *Frame) Index() []Record {
	return f.array.Keys()
}

// Columns are the non-key attribute names
func (f *Frame) Columns() []string {
	var cols []string
	for _, n := range f.array.Names() {
		if !utils.ContainsString(f.array.PrimaryKey(), n) {
			cols = append(cols, n)
		}
	}
	return cols
}

// Array is the underlying record array, key columns included
func (f *Frame) Array() *RecordArray {
	return f.array
}

// Loc returns the non-key attributes of the row with the given primary key. A frame without
// a primary key has no index, so Loc always reports false.
func (f *Frame) Loc(key Record) (Record, bool) {
	if len(f.IndexNames()) == 0 {
		return Record{}, false
	}
	vals := make([]any, 0, len(f.IndexNames()))
	for _, k := range f.IndexNames() {
		v, ok := key.Get(k)
		if !ok {
			return Record{}, false
		}
		vals = append(vals, v)
	}
	i, ok := f.index[indexKey(vals)]
	if !ok {
		return Record{}, false
	}
	return f.array.Row(i).Project(f.Columns()...), true
}

func (f *Frame) MarshalJSON() ([]byte, error) {
	rows := make([]frameRow, f.Len())
	cols := f.Columns()
	for i := range rows {
		r := f.array.Row(i)
		rows[i] = frameRow{
			Index: r.Project(f.IndexNames()...),
			Data:  r.Project(cols...),
		}
	}
	return json.Marshal(rows)
}
