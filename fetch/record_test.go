package fetch

import (
	"encoding/json"
	"testing"

	"github.com/danthegoodman1/relfetch/heading"
	"github.com/danthegoodman1/relfetch/table"
)

func TestRecordJSONOrder(t *testing.T) {
	r := Record{Names: []string{"z", "a", "m"}, Values: []any{1, "x", []any{1.0}}}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"z":1,"a":"x","m":[1]}` {
		t.Fatalf("bad json %s", b)
	}

	b, err = json.Marshal(Column{Attr: Key, Values: []any{Record{Names: []string{"id"}, Values: []any{1}}}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"attr":"KEY","values":[{"id":1}]}` {
		t.Fatalf("bad column json %s", b)
	}
}

func TestRecordProject(t *testing.T) {
	r := Record{Names: []string{"a", "b", "c"}, Values: []any{1, 2, 3}}
	p := r.Project("c", "a", "nope")
	if len(p.Names) != 2 || p.Names[0] != "c" || p.Values[1] != 1 {
		t.Fatalf("bad projection %+v", p)
	}
	if r.Map()["b"] != 2 {
		t.Fatal("bad map")
	}
}

func TestFrameWithoutPrimaryKey(t *testing.T) {
	h := heading.MustNew(
		heading.Attribute{Name: "name", Type: "varchar(32)"},
		heading.Attribute{Name: "weight", Type: "float"},
	)
	ra := newRecordArray(h)
	for _, row := range []table.Row{
		{ColNames: []string{"name", "weight"}, ColVals: []any{"alice", 1.5}},
		{ColNames: []string{"name", "weight"}, ColVals: []any{"bob", 2.5}},
	} {
		if err := ra.appendRow(row); err != nil {
			t.Fatal(err)
		}
	}
	frame := newFrame(ra)
	if len(frame.IndexNames()) != 0 || frame.Len() != 2 {
		t.Fatal("expected an unindexed frame with 2 rows")
	}
	if _, ok := frame.Loc(Record{}); ok {
		t.Fatal("Loc without a primary key should not find a row")
	}
	if _, ok := frame.Loc(Record{Names: []string{"name"}, Values: []any{"bob"}}); ok {
		t.Fatal("Loc without a primary key should not find a row")
	}
}
