package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/storage"
)

// FeatureRecordStore is an in-memory implementation of
// storage.FeatureRecordStore.
type FeatureRecordStore struct {
	mu      sync.RWMutex
	records []*domain.FeatureRecord
}

// NewFeatureRecordStore creates a new in-memory feature record store.
func NewFeatureRecordStore() *FeatureRecordStore {
	return &FeatureRecordStore{}
}

// Compile-time interface check.
var _ storage.FeatureRecordStore = (*FeatureRecordStore)(nil)

// InsertBulk appends records in emission order.
func (s *FeatureRecordStore) InsertBulk(_ context.Context, records []*domain.FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r == nil || r.ClickoutID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records = append(s.records, copyRecord(r))
	}
	return nil
}

// GetByClickoutID retrieves all candidate rows of one clickout, ordered by
// rank ASC.
func (s *FeatureRecordStore) GetByClickoutID(_ context.Context, clickoutID string) ([]*domain.FeatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.FeatureRecord
	for _, r := range s.records {
		if r.ClickoutID == clickoutID {
			out = append(out, copyRecord(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

// Count returns the total number of stored records.
func (s *FeatureRecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func copyRecord(r *domain.FeatureRecord) *domain.FeatureRecord {
	recordCopy := *r
	recordCopy.Features = make(map[string]any, len(r.Features))
	for k, v := range r.Features {
		recordCopy.Features[k] = v
	}
	return &recordCopy
}
