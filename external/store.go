package external

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/danthegoodman1/relfetch/settings"
	"github.com/danthegoodman1/relfetch/utils"
)

var (
	logger = gologger.NewLogger()

	ErrNotFound        = utils.PermError("external object not found")
	ErrUnknownStore    = utils.PermError("unknown external store")
	ErrUnknownProtocol = utils.PermError("unknown external store protocol")
	ErrHashMismatch    = utils.PermError("external payload does not match its hash")
	ErrBadHash         = utils.PermError("bad external hash")
)

type (
	// ObjectStore holds external payloads by key
	ObjectStore interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Put(ctx context.Context, key string, data []byte) error
	}
)

// NewStore builds the object store described by sc
func NewStore(sc settings.StoreConfig) (ObjectStore, error) {
	switch sc.Protocol {
	case "file":
		return NewDiskStore(sc.Location)
	case "s3":
		return NewS3Store(sc)
	case "minio":
		return NewMinioStore(sc)
	default:
		return nil, fmt.Errorf("%w: %q for store %s", ErrUnknownProtocol, sc.Protocol, sc.Name)
	}
}

// NewStores builds every configured store, keyed by store name
func NewStores(configs map[string]settings.StoreConfig) (map[string]ObjectStore, error) {
	stores := make(map[string]ObjectStore, len(configs))
	for name, sc := range configs {
		s, err := NewStore(sc)
		if err != nil {
			return nil, fmt.Errorf("error in NewStore for %s: %w", name, err)
		}
		stores[name] = s
	}
	return stores, nil
}
