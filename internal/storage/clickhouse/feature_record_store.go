package clickhouse

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/storage"
)

// FeatureRecordStore implements storage.FeatureRecordStore using
// ClickHouse. The per-accumulator feature map is serialized to a JSON
// String column; scalar typing is reconstructed by the vectorization stage,
// not by this store.
type FeatureRecordStore struct {
	conn *Conn
}

// NewFeatureRecordStore creates a new FeatureRecordStore.
func NewFeatureRecordStore(conn *Conn) *FeatureRecordStore {
	return &FeatureRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureRecordStore = (*FeatureRecordStore)(nil)

// InsertBulk appends records in emission order.
func (s *FeatureRecordStore) InsertBulk(ctx context.Context, records []*domain.FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r == nil || r.ClickoutID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_records (
			clickout_id, user_id, session_id, ts, platform, current_filters,
			step, step_from_end, max_step, is_test,
			item_id, rank, price, item_id_clicked, was_clicked, features
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		features, err := json.Marshal(r.Features)
		if err != nil {
			return fmt.Errorf("marshal features: %w", err)
		}
		err = batch.Append(
			r.ClickoutID, r.UserID, r.SessionID, uint64(r.Timestamp), r.Platform, r.CurrentFilters,
			int32(r.Step), int32(r.StepFromEnd), int32(r.MaxStep), boolToUint8(r.IsTest),
			r.ItemID, int32(r.Rank), int32(r.Price), r.ItemIDClicked, uint8(r.WasClicked), string(features),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByClickoutID retrieves all candidate rows of one clickout, ordered by
// rank ASC. Feature values decode through JSON, so numeric values read back
// as float64.
func (s *FeatureRecordStore) GetByClickoutID(ctx context.Context, clickoutID string) ([]*domain.FeatureRecord, error) {
	query := `
		SELECT clickout_id, user_id, session_id, ts, platform, current_filters,
		       step, step_from_end, max_step, is_test,
		       item_id, rank, price, item_id_clicked, was_clicked, features
		FROM feature_records
		WHERE clickout_id = ?
		ORDER BY rank ASC
	`

	rows, err := s.conn.Query(ctx, query, clickoutID)
	if err != nil {
		return nil, fmt.Errorf("query feature records: %w", err)
	}
	defer rows.Close()

	var records []*domain.FeatureRecord
	for rows.Next() {
		var r domain.FeatureRecord
		var ts uint64
		var step, stepFromEnd, maxStep, rank, price int32
		var isTest, wasClicked uint8
		var features string
		err := rows.Scan(
			&r.ClickoutID, &r.UserID, &r.SessionID, &ts, &r.Platform, &r.CurrentFilters,
			&step, &stepFromEnd, &maxStep, &isTest,
			&r.ItemID, &rank, &price, &r.ItemIDClicked, &wasClicked, &features,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature record: %w", err)
		}
		r.Timestamp = int64(ts)
		r.Step = int(step)
		r.StepFromEnd = int(stepFromEnd)
		r.MaxStep = int(maxStep)
		r.IsTest = isTest != 0
		r.Rank = int(rank)
		r.Price = int(price)
		r.WasClicked = int(wasClicked)
		if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
		records = append(records, &r)
	}
	return records, nil
}

// Count returns the total number of stored records.
func (s *FeatureRecordStore) Count(ctx context.Context) (int, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM feature_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count feature records: %w", err)
	}
	return int(count), nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
