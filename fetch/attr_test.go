package fetch

import (
	"reflect"
	"testing"
)

func TestParseAttr(t *testing.T) {
	if !ParseAttr("KEY").IsKey() {
		t.Fatal("KEY should be the key marker")
	}
	for _, s := range []string{"key", " KEY", "KEY DESC", "name"} {
		if ParseAttr(s).IsKey() {
			t.Fatalf("%q should not be the key marker", s)
		}
	}
	if Key.String() != "KEY" || Named("a").Name() != "a" {
		t.Fatal("bad names")
	}
	if !reflect.DeepEqual(namedOnly(Attrs("a", "KEY", "b")), []string{"a", "b"}) {
		t.Fatal("key not filtered")
	}
}

func TestExpandOrdering(t *testing.T) {
	pk := []string{"id"}
	if got := ExpandOrdering(pk, "KEY DESC", "name"); !reflect.DeepEqual(got, []string{"id DESC", "name"}) {
		t.Fatalf("bad expansion %v", got)
	}
	if got := ExpandOrdering(pk, "KEY"); !reflect.DeepEqual(got, []string{"id"}) {
		t.Fatalf("bad expansion %v", got)
	}
	if got := ExpandOrdering([]string{"a", "b"}, " KEY ASC ", "c DESC", "KEY  DESC"); !reflect.DeepEqual(got, []string{"a", "b", "c DESC", "a DESC", "b DESC"}) {
		t.Fatalf("bad expansion %v", got)
	}
	if ExpandOrdering(pk) != nil {
		t.Fatal("no ordering should stay nil")
	}
}

func TestResolveShape(t *testing.T) {
	array := func() string { return "array" }
	frame := Format("frame")

	cases := []struct {
		attrs, asDict bool
		format        *Format
		want          Shape
	}{
		{false, false, nil, ShapeArray},
		{false, false, &frame, ShapeFrame},
		{false, true, nil, ShapeDicts},
		{true, false, nil, ShapeColumns},
	}
	for _, c := range cases {
		got, err := resolveShape(c.attrs, c.asDict, c.format, array)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Fatalf("expected %s, got %s", c.want, got)
		}
	}

	if _, err := resolveShape(false, false, nil, func() string { return "bogus" }); err == nil {
		t.Fatal("expected error for bad configured format")
	}
}
