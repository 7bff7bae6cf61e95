package external

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/danthegoodman1/relfetch/blob"
	"github.com/danthegoodman1/relfetch/settings"
	"github.com/google/uuid"
)

func newTestTable(t *testing.T) (*Table, *DiskStore) {
	ds, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewTable("lab", NewMemIndex(), map[string]ObjectStore{"local": ds}), ds
}

func TestPutGetBlob(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newTestTable(t)

	packed, err := blob.Pack([]any{1.0, 2.0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := tbl.Put(ctx, "local", packed)
	if err != nil {
		t.Fatal(err)
	}

	for _, raw := range []any{hash, hash.String(), [16]byte(hash), hash[:]} {
		v, err := tbl.Get(ctx, raw)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(v, []any{1.0, 2.0}) {
			t.Fatalf("bad value %+v for %T", v, raw)
		}
	}
}

func TestPutGetRawBytes(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newTestTable(t)

	hash, err := tbl.Put(ctx, "local", []byte("plain bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if hash != Hash([]byte("plain bytes")) {
		t.Fatal("hash is not content addressed")
	}
	v, err := tbl.Get(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if string(v.([]byte)) != "plain bytes" {
		t.Fatalf("bad value %v", v)
	}

	// storing twice is harmless
	if _, err := tbl.Put(ctx, "local", []byte("plain bytes")); err != nil {
		t.Fatal(err)
	}
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	tbl, ds := newTestTable(t)

	v, err := tbl.Get(ctx, nil)
	if err != nil || v != nil {
		t.Fatal("null hash should resolve to nil")
	}

	if _, err := tbl.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := tbl.Get(ctx, 12); !errors.Is(err, ErrBadHash) {
		t.Fatalf("expected bad hash, got %v", err)
	}
	if _, err := tbl.Put(ctx, "nope", []byte("x")); !errors.Is(err, ErrUnknownStore) {
		t.Fatalf("expected unknown store, got %v", err)
	}

	hash, err := tbl.Put(ctx, "local", []byte("original"))
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Put(ctx, tbl.objectKey(hash), []byte("tampered")); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Get(ctx, hash); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected hash mismatch, got %v", err)
	}
}

func TestNewStores(t *testing.T) {
	stores, err := NewStores(map[string]settings.StoreConfig{
		"local": {Name: "local", Protocol: "file", Location: t.TempDir()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stores["local"].(*DiskStore); !ok {
		t.Fatal("expected disk store")
	}

	_, err = NewStores(map[string]settings.StoreConfig{
		"bad": {Name: "bad", Protocol: "ftp"},
	})
	if !errors.Is(err, ErrUnknownProtocol) {
		t.Fatalf("expected unknown protocol, got %v", err)
	}
}

func TestPutValueCompresses(t *testing.T) {
	ctx := context.Background()
	tbl, ds := newTestTable(t)
	settings.Set(settings.KeyBlobCompressThreshold, 16)
	defer settings.Reset()

	value := make([]any, 200)
	for i := range value {
		value[i] = 0.0
	}
	hash, err := tbl.PutValue(ctx, "local", value)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := ds.Get(ctx, tbl.objectKey(hash))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("ZL123\x00")) {
		t.Fatal("expected a compressed blob above the threshold")
	}
	v, err := tbl.Get(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, value) {
		t.Fatal("value did not round trip")
	}
}
