package external

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type (
	// Entry is one row of a schema's external table
	Entry struct {
		Schema    string
		Hash      uuid.UUID
		Store     string
		Size      int64
		Key       string
		CreatedAt time.Time
	}

	// Index records which store and key hold each hashed payload
	Index interface {
		Lookup(ctx context.Context, schema string, hash uuid.UUID) (Entry, error)
		// Insert is idempotent: re-inserting an existing hash keeps the first entry
		Insert(ctx context.Context, e Entry) error
	}

	// MemIndex is an in-process Index
	MemIndex struct {
		mu      sync.RWMutex
		entries map[string]Entry
	}
)

func NewMemIndex() *MemIndex {
	return &MemIndex{entries: map[string]Entry{}}
}

func memKey(schema string, hash uuid.UUID) string {
	return schema + "/" + hash.String()
}

func (mi *MemIndex) Lookup(_ context.Context, schema string, hash uuid.UUID) (Entry, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	e, ok := mi.entries[memKey(schema, hash)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s in schema %s", ErrNotFound, hash, schema)
	}
	return e, nil
}

func (mi *MemIndex) Insert(_ context.Context, e Entry) error {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	k := memKey(e.Schema, e.Hash)
	if _, exists := mi.entries[k]; exists {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	mi.entries[k] = e
	return nil
}
