// Package blob packs structured values into the opaque byte payloads stored in blob columns
// and unpacks them again.
//
// A packed blob is the header "rfb\x00" followed by the JSON encoding of the value. Payloads
// larger than the compression threshold are wrapped as "ZL123\x00", the little-endian uint64
// length of the inner blob, then a zstd frame of the inner blob.
package blob

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/danthegoodman1/relfetch/utils"
	"github.com/klauspost/compress/zstd"
)

// MaxUnpackedSize bounds the declared and decoded size of a compressed blob
const MaxUnpackedSize = 1 << 30

var (
	ErrBadBlob = utils.PermError("bad blob")

	plainHeader      = []byte("rfb\x00")
	compressedHeader = []byte("ZL123\x00")

	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxUnpackedSize))
	if err != nil {
		panic(err)
	}
}

// IsPacked reports whether b starts with a blob header
func IsPacked(b []byte) bool {
	return bytes.HasPrefix(b, plainHeader) || bytes.HasPrefix(b, compressedHeader)
}

// Pack serializes value. A compressThreshold <= 0 disables compression.
func Pack(value any, compressThreshold int) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("error in json.Marshal: %w", err)
	}
	inner := make([]byte, 0, len(plainHeader)+len(payload))
	inner = append(inner, plainHeader...)
	inner = append(inner, payload...)
	if compressThreshold <= 0 || len(inner) <= compressThreshold {
		return inner, nil
	}

	out := make([]byte, len(compressedHeader)+8, len(compressedHeader)+8+len(inner)/2)
	copy(out, compressedHeader)
	binary.LittleEndian.PutUint64(out[len(compressedHeader):], uint64(len(inner)))
	out = encoder.EncodeAll(inner, out)
	// only keep the compressed form when it actually saves space
	if len(out) >= len(inner) {
		return inner, nil
	}
	return out, nil
}

// Unpack decodes a raw blob column value. A nil raw value (SQL NULL) decodes to nil. When
// squeeze is set, singleton dimensions of nested arrays are collapsed.
func Unpack(raw any, squeeze bool) (any, error) {
	var b []byte
	switch r := raw.(type) {
	case nil:
		return nil, nil
	case []byte:
		b = r
	default:
		return nil, fmt.Errorf("%w: expected bytes, got %T", ErrBadBlob, raw)
	}

	if bytes.HasPrefix(b, compressedHeader) {
		var err error
		b, err = decompress(b[len(compressedHeader):])
		if err != nil {
			return nil, err
		}
	}
	if !bytes.HasPrefix(b, plainHeader) {
		return nil, fmt.Errorf("%w: missing header", ErrBadBlob)
	}

	var v any
	if err := json.Unmarshal(b[len(plainHeader):], &v); err != nil {
		return nil, fmt.Errorf("%w: error in json.Unmarshal: %s", ErrBadBlob, err.Error())
	}
	if squeeze {
		v = Squeeze(v)
	}
	return v, nil
}

func decompress(b []byte) ([]byte, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("%w: truncated length", ErrBadBlob)
	}
	size := binary.LittleEndian.Uint64(b)
	if size > MaxUnpackedSize {
		return nil, fmt.Errorf("%w: declared length %d exceeds %d", ErrBadBlob, size, MaxUnpackedSize)
	}
	out, err := decoder.DecodeAll(b[8:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error in zstd DecodeAll: %s", ErrBadBlob, err.Error())
	}
	if uint64(len(out)) != size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrBadBlob, size, len(out))
	}
	return out, nil
}

// Squeeze removes every dimension of length one from nested arrays: [[1,2,3]] becomes
// [1,2,3] and [[5]] becomes 5. Non-array values are returned as is.
func Squeeze(v any) any {
	arr, ok := v.([]any)
	if !ok {
		return v
	}
	items := make([]any, len(arr))
	for i := range arr {
		items[i] = Squeeze(arr[i])
	}
	if len(items) == 1 {
		return items[0]
	}
	return items
}
