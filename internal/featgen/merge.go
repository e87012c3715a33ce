package featgen

import (
	"errors"
	"fmt"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ErrShardMismatch is returned when shard outputs cannot be merged because
// they were not produced from the identical event stream.
var ErrShardMismatch = errors.New("shard outputs do not align")

// MergeShards combines the outputs of accumulator shards into one feature
// table. Every shard replays the same event stream, so the outputs must
// agree row-for-row on (clickout id, item id); the merged row unions the
// shards' disjoint feature columns.
func MergeShards(shards ...[]*domain.FeatureRecord) ([]*domain.FeatureRecord, error) {
	if len(shards) == 0 {
		return nil, nil
	}

	base := shards[0]
	for _, shard := range shards[1:] {
		if len(shard) != len(base) {
			return nil, fmt.Errorf("%w: %d rows vs %d rows", ErrShardMismatch, len(shard), len(base))
		}
	}

	merged := make([]*domain.FeatureRecord, len(base))
	for i, row := range base {
		out := *row
		out.Features = make(map[string]any, len(row.Features))
		for k, v := range row.Features {
			out.Features[k] = v
		}

		for _, shard := range shards[1:] {
			other := shard[i]
			if other.ClickoutID != row.ClickoutID || other.ItemID != row.ItemID {
				return nil, fmt.Errorf("%w: row %d is (%s, %s) vs (%s, %s)",
					ErrShardMismatch, i, other.ClickoutID, other.ItemID, row.ClickoutID, row.ItemID)
			}
			for k, v := range other.Features {
				out.Features[k] = v
			}
		}
		merged[i] = &out
	}
	return merged, nil
}
