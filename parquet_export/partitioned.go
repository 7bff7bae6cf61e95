package parquet_export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/fetch"
	"github.com/danthegoodman1/relfetch/partitioner"
	"github.com/danthegoodman1/relfetch/utils"
	"github.com/rs/zerolog"
)

type FileStats struct {
	Key       string
	Partition string
	Bytes     int64
	Stats
}

// WritePartitions splits records by the partition plans and puts one parquet file per
// partition into store under prefix, like `prefix/y=2022/m=12/<id>.parquet`.
func WritePartitions(ctx context.Context, store external.ObjectStore, prefix string, records []fetch.Record, plans []partitioner.PartitionPlan) ([]FileStats, error) {
	logger := zerolog.Ctx(ctx)

	var order []string
	parts := map[string][]fetch.Record{}
	for _, r := range records {
		part, err := partitioner.GetRowPartition(r.Map(), plans)
		if err != nil {
			return nil, fmt.Errorf("error in GetRowPartition: %w", err)
		}
		if _, exists := parts[part]; !exists {
			order = append(order, part)
		}
		parts[part] = append(parts[part], r)
	}

	files := make([]FileStats, 0, len(order))
	for _, part := range order {
		s := time.Now()
		var b bytes.Buffer
		stats, err := WriteRecords(&b, parts[part])
		if err != nil {
			return nil, fmt.Errorf("error in WriteRecords for partition %q: %w", part, err)
		}
		key := path.Join(prefix, part, fmt.Sprintf("%s.parquet", utils.GenKSortedID("")))
		if err = store.Put(ctx, key, b.Bytes()); err != nil {
			return nil, fmt.Errorf("error in store.Put: %w", err)
		}
		logger.Debug().Str("key", key).Int64("rows", stats.NumRows).Str("duration", time.Since(s).String()).Msg("wrote parquet file")
		files = append(files, FileStats{
			Key:       key,
			Partition: part,
			Bytes:     int64(b.Len()),
			Stats:     *stats,
		})
	}
	return files, nil
}
