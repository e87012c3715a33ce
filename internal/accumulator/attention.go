package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ItemAttentionSpan estimates how long users dwell on an item: when a
// session switches from one item to another, the elapsed time is credited
// to the previous item. The feature is the Laplace-smoothed average dwell
// time for the candidate.
type ItemAttentionSpan struct {
	interactionItem   map[userViewKey]string
	interactionItemTs map[userViewKey]int64
	timesSum          map[string]int64
	timesCount        map[string]int
}

func NewItemAttentionSpan() *ItemAttentionSpan {
	return &ItemAttentionSpan{
		interactionItem:   make(map[userViewKey]string),
		interactionItemTs: make(map[userViewKey]int64),
		timesSum:          make(map[string]int64),
		timesCount:        make(map[string]int),
	}
}

func (a *ItemAttentionSpan) ActionTypes() []domain.ActionType {
	return domain.ActionsWithItemReference
}

func (a *ItemAttentionSpan) Update(row *domain.Event) {
	key := UserSessionKey(row)
	if oldItem, ok := a.interactionItem[key]; ok && oldItem != row.Reference {
		a.timesSum[oldItem] += row.Timestamp - a.interactionItemTs[key]
		a.timesCount[oldItem]++
	}
	a.interactionItem[key] = row.Reference
	a.interactionItemTs[key] = row.Timestamp
}

func (a *ItemAttentionSpan) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out["average_item_attention"] = float64(a.timesSum[item.ItemID]) / float64(a.timesCount[item.ItemID]+1)
}

// MouseSpeed averages, per user, the time spent per list position moved
// between consecutive within-session interactions at different carried-
// forward indices.
type MouseSpeed struct {
	lastTimestamp map[userViewKey]int64
	lastIndex     map[userViewKey]int
	speeds        map[string][]float64
}

func NewMouseSpeed() *MouseSpeed {
	return &MouseSpeed{
		lastTimestamp: make(map[userViewKey]int64),
		lastIndex:     make(map[userViewKey]int),
		speeds:        make(map[string][]float64),
	}
}

func (a *MouseSpeed) ActionTypes() []domain.ActionType {
	return domain.ActionsWithItemReference
}

func (a *MouseSpeed) Update(row *domain.Event) {
	key := UserSessionKey(row)
	if lastIdx, ok := a.lastIndex[key]; ok {
		if row.Timestamp > a.lastTimestamp[key] && row.FakeIndexInteracted != lastIdx {
			passed := row.Timestamp - a.lastTimestamp[key]
			dist := row.FakeIndexInteracted - lastIdx
			if dist < 0 {
				dist = -dist
			}
			a.speeds[row.UserID] = append(a.speeds[row.UserID], float64(passed)/float64(dist))
		}
		return
	}
	if row.FakeIndexInteracted != domain.IndexMissing {
		a.lastTimestamp[key] = row.Timestamp
		a.lastIndex[key] = row.FakeIndexInteracted
	}
}

func (a *MouseSpeed) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	values := a.speeds[row.UserID]
	if len(values) == 0 {
		out["mouse_speed"] = 0.0
		return
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	out["mouse_speed"] = sum / float64(len(values))
}
