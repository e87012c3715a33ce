package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// GlobalTimestampPerItem tracks, per item, the timestamp and user of its
// most recent clickout across all users. It emits the elapsed time since
// that clickout and the last user's id. The same-user variant suppresses
// the elapsed time (nil) when the querying user is the last user, so
// nil distinguishes self-repetition from a real cross-user signal.
type GlobalTimestampPerItem struct {
	timestamp map[string]int64
	lastUser  map[string]string
}

func NewGlobalTimestampPerItem() *GlobalTimestampPerItem {
	return &GlobalTimestampPerItem{
		timestamp: make(map[string]int64),
		lastUser:  make(map[string]string),
	}
}

func (a *GlobalTimestampPerItem) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *GlobalTimestampPerItem) Update(row *domain.Event) {
	a.timestamp[row.Reference] = row.Timestamp
	a.lastUser[row.Reference] = row.UserID
}

func (a *GlobalTimestampPerItem) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out["last_item_time_diff_same_user"] = nil
	out["last_item_last_user_id"] = nil
	out["last_item_time_diff"] = nil

	ts, ok := a.timestamp[item.ItemID]
	if !ok {
		return
	}
	diff := row.Timestamp - ts
	out["last_item_last_user_id"] = a.lastUser[item.ItemID]
	out["last_item_time_diff"] = diff
	if row.UserID != a.lastUser[item.ItemID] {
		out["last_item_time_diff_same_user"] = diff
	}
}
