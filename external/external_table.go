package external

import (
	"context"
	"fmt"
	"time"

	"github.com/danthegoodman1/relfetch/blob"
	"github.com/danthegoodman1/relfetch/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type (
	// Table is the external table of one schema: it maps content hashes stored in external
	// columns to payloads held in object stores.
	Table struct {
		schema string
		index  Index
		stores map[string]ObjectStore
	}
)

func NewTable(schema string, index Index, stores map[string]ObjectStore) *Table {
	return &Table{
		schema: schema,
		index:  index,
		stores: stores,
	}
}

// Hash is the content hash of payload: a name-based MD5 UUID
func Hash(payload []byte) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceOID, payload)
}

// ParseHash accepts the forms a hash column comes back as from a driver
func ParseHash(raw any) (uuid.UUID, error) {
	switch h := raw.(type) {
	case uuid.UUID:
		return h, nil
	case [16]byte:
		return uuid.UUID(h), nil
	case string:
		u, err := uuid.Parse(h)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrBadHash, err.Error())
		}
		return u, nil
	case []byte:
		if len(h) == 16 {
			return uuid.FromBytes(h)
		}
		return ParseHash(string(h))
	default:
		return uuid.Nil, fmt.Errorf("%w: unsupported type %T", ErrBadHash, raw)
	}
}

func (t *Table) objectKey(hash uuid.UUID) string {
	s := hash.String()
	return t.schema + "/" + s[:2] + "/" + s
}

// Get resolves raw to its stored value. Packed blobs are unpacked, other payloads are returned
// as bytes. A nil hash (SQL NULL) resolves to nil.
func (t *Table) Get(ctx context.Context, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	hash, err := ParseHash(raw)
	if err != nil {
		return nil, err
	}

	e, err := t.index.Lookup(ctx, t.schema, hash)
	if err != nil {
		return nil, fmt.Errorf("error in index.Lookup: %w", err)
	}
	store, ok := t.stores[e.Store]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, e.Store)
	}

	payload, err := store.Get(ctx, e.Key)
	if err != nil {
		return nil, fmt.Errorf("error in store.Get: %w", err)
	}
	if Hash(payload) != hash {
		return nil, fmt.Errorf("%w: %s", ErrHashMismatch, hash)
	}

	if blob.IsPacked(payload) {
		return blob.Unpack(payload, false)
	}
	return payload, nil
}

// Put stores payload in the named store and returns the hash to keep in the external column
func (t *Table) Put(ctx context.Context, storeName string, payload []byte) (uuid.UUID, error) {
	logger := zerolog.Ctx(ctx)
	store, ok := t.stores[storeName]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownStore, storeName)
	}

	hash := Hash(payload)
	key := t.objectKey(hash)
	s := time.Now()
	if err := store.Put(ctx, key, payload); err != nil {
		return uuid.Nil, fmt.Errorf("error in store.Put: %w", err)
	}
	err := t.index.Insert(ctx, Entry{
		Schema: t.schema,
		Hash:   hash,
		Store:  storeName,
		Size:   int64(len(payload)),
		Key:    key,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("error in index.Insert: %w", err)
	}
	logger.Debug().Str("hash", hash.String()).Str("store", storeName).Str("duration", time.Since(s).String()).Msg("stored external payload")
	return hash, nil
}

// PutValue packs value as a blob, compressing above the blob.compress_threshold setting, and stores it
func (t *Table) PutValue(ctx context.Context, storeName string, value any) (uuid.UUID, error) {
	payload, err := blob.Pack(value, settings.BlobCompressThreshold())
	if err != nil {
		return uuid.Nil, fmt.Errorf("error in blob.Pack: %w", err)
	}
	return t.Put(ctx, storeName, payload)
}
