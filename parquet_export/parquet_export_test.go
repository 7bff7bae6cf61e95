package parquet_export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/fetch"
	"github.com/danthegoodman1/relfetch/partitioner"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"
)

func TestSchemaString(t *testing.T) {
	a := NewSchemaAccumulator()
	if err := a.WriteRow(map[string]any{"colA": "hey"}, []string{"colA"}); err != nil {
		t.Fatal(err)
	}
	if err := a.WriteRow(map[string]any{"colB": 1.2, "colC": nil}, []string{"colB", "colC"}); err != nil {
		t.Fatal(err)
	}
	if err := a.WriteRow(map[string]any{"colA": "yo", "colC": true}, []string{"colA", "colC"}); err != nil {
		t.Fatal(err)
	}

	schemaString, err := a.SchemaString()
	if err != nil {
		t.Fatal(err)
	}
	if schemaString != `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=ColA, repetitiontype=OPTIONAL"},{"Tag":"type=DOUBLE, name=ColB, repetitiontype=OPTIONAL"},{"Tag":"type=BOOLEAN, name=ColC, repetitiontype=OPTIONAL"}]}` {
		t.Log(schemaString)
		t.Fatal("got incorrect schema string")
	}
	types := a.ColumnTypes()
	if len(types) != 3 || types[0] != "string" || types[1] != "float" || types[2] != "bool" {
		t.Fatalf("unexpected types %+v", types)
	}
}

func TestMixedTypes(t *testing.T) {
	a := NewSchemaAccumulator()
	if err := a.WriteRow(map[string]any{"x": "a"}, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	err := a.WriteRow(map[string]any{"x": 1.0}, []string{"x"})
	if !errors.Is(err, ErrMixedTypes) {
		t.Fatalf("expected ErrMixedTypes, got %v", err)
	}
}

func TestFlattenRecord(t *testing.T) {
	r := fetch.Record{
		Names:  []string{"subject_id", "tags", "note"},
		Values: []any{int64(3), []any{"a", "b"}, nil},
	}
	flat, keys, err := FlattenRecord(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 3 || keys[0] != "subject_id" || keys[1] != "tags" || keys[2] != "note" {
		t.Fatalf("unexpected keys %+v", keys)
	}
	if flat["subject_id"] != float64(3) {
		t.Fatalf("expected a float, got %#v", flat["subject_id"])
	}
	if flat["tags"] != `["a","b"]` {
		t.Fatalf("expected lists as JSON strings, got %#v", flat["tags"])
	}
	if flat["note"] != nil {
		t.Fatal("expected nil note")
	}
}

func TestWriteRecords(t *testing.T) {
	records := []fetch.Record{
		{Names: []string{"subject_id", "name"}, Values: []any{int64(1), "alice"}},
		{Names: []string{"subject_id", "name"}, Values: []any{int64(2), nil}},
		{Names: []string{"subject_id", "name"}, Values: []any{int64(3), "carol"}},
	}
	var b bytes.Buffer
	stats, err := WriteRecords(&b, records)
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumRows != 3 {
		t.Fatalf("expected 3 rows, got %d", stats.NumRows)
	}
	if len(stats.Columns) != 2 || stats.Columns[0] != "subject_id" || stats.Columns[1] != "name" {
		t.Fatalf("unexpected columns %+v", stats.Columns)
	}

	pf, err := buffer.NewBufferFile(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	pr, err := reader.NewParquetReader(pf, stats.Schema, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer pr.ReadStop()
	num := int(pr.GetNumRows())
	if num != 3 {
		t.Fatalf("expected 3 rows in file, got %d", num)
	}
	res, err := pr.ReadByNumber(num)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 3 {
		t.Fatalf("read %d rows", len(res))
	}
}

func TestWriteRecordsNoColumns(t *testing.T) {
	var b bytes.Buffer
	_, err := WriteRecords(&b, []fetch.Record{{Names: []string{"a"}, Values: []any{nil}}})
	if !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}

func TestWritePartitions(t *testing.T) {
	ds, err := external.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	day := func(d int) time.Time { return time.Date(2022, 12, d, 10, 0, 0, 0, time.UTC) }
	records := []fetch.Record{
		{Names: []string{"subject_id", "session_date"}, Values: []any{int64(1), day(1)}},
		{Names: []string{"subject_id", "session_date"}, Values: []any{int64(2), day(2)}},
		{Names: []string{"subject_id", "session_date"}, Values: []any{int64(3), day(1)}},
	}
	files, err := WritePartitions(context.Background(), ds, "exports", records, []partitioner.PartitionPlan{
		{Func: "toDay", Args: []string{"session_date"}, As: "d"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Partition != "d=1" || files[0].NumRows != 2 || files[1].Partition != "d=2" || files[1].NumRows != 1 {
		t.Fatalf("unexpected files %+v", files)
	}
	if !strings.HasPrefix(files[0].Key, "exports/d=1/") {
		t.Fatalf("unexpected key %s", files[0].Key)
	}
	b, err := ds.Get(context.Background(), files[1].Key)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(b)) != files[1].Bytes {
		t.Fatal("stored size does not match")
	}
}
