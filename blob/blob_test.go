package blob

import (
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestPackUnpack(t *testing.T) {
	b, err := Pack(map[string]any{"a": []any{1.0, 2.0}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !IsPacked(b) {
		t.Fatal("missing header")
	}
	v, err := Unpack(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, map[string]any{"a": []any{1.0, 2.0}}) {
		t.Fatalf("bad round trip %+v", v)
	}

	// same bytes, same value
	again, err := Unpack(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, again) {
		t.Fatal("unpack is not deterministic")
	}
}

func TestCompressed(t *testing.T) {
	long := strings.Repeat("abcdefgh", 1000)
	b, err := Pack(long, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "ZL123\x00") {
		t.Fatal("expected compressed blob")
	}
	if len(b) >= len(long) {
		t.Fatal("compression did not shrink payload")
	}
	v, err := Unpack(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if v != long {
		t.Fatal("bad compressed round trip")
	}
}

func TestSqueeze(t *testing.T) {
	b, err := Pack([][]float64{{1, 2, 3}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Unpack(b, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, []any{1.0, 2.0, 3.0}) {
		t.Fatalf("bad squeeze %+v", v)
	}

	v, err = Unpack(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v, []any{[]any{1.0, 2.0, 3.0}}) {
		t.Fatalf("squeeze applied when off %+v", v)
	}

	if Squeeze([]any{[]any{5.0}}) != 5.0 {
		t.Fatal("expected scalar")
	}
	if !reflect.DeepEqual(Squeeze([]any{[]any{1.0}, []any{2.0}}), []any{1.0, 2.0}) {
		t.Fatal("expected column squeeze")
	}
}

func TestUnpackErrors(t *testing.T) {
	v, err := Unpack(nil, false)
	if err != nil || v != nil {
		t.Fatal("null should unpack to nil")
	}
	if _, err := Unpack(42, false); !errors.Is(err, ErrBadBlob) {
		t.Fatal("expected bad blob for non bytes")
	}
	if _, err := Unpack([]byte("nope"), false); !errors.Is(err, ErrBadBlob) {
		t.Fatal("expected bad blob for missing header")
	}
	if _, err := Unpack([]byte("ZL123\x00\x01"), false); !errors.Is(err, ErrBadBlob) {
		t.Fatal("expected bad blob for truncated compressed blob")
	}

	huge := []byte("ZL123\x00")
	huge = binary.LittleEndian.AppendUint64(huge, 1<<62)
	huge = append(huge, 0x28, 0xb5, 0x2f, 0xfd)
	if _, err := Unpack(huge, false); !errors.Is(err, ErrBadBlob) {
		t.Fatalf("expected bad blob for an oversized declared length, got %v", err)
	}

	lying := []byte("ZL123\x00")
	lying = binary.LittleEndian.AppendUint64(lying, 1<<20)
	lying = encoder.EncodeAll([]byte("rfb\x00[1]"), lying)
	if _, err := Unpack(lying, false); !errors.Is(err, ErrBadBlob) {
		t.Fatalf("expected bad blob for a wrong declared length, got %v", err)
	}
}
