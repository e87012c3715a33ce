package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// LastSeenTimestamp tracks the last event timestamp per (user, item) and
// emits the elapsed time since then, capped at NoTimeSignal when the pair
// was never seen. Covers the image-interaction and clickout last-timestamp
// features.
type LastSeenTimestamp struct {
	Name    string
	Actions []domain.ActionType

	last map[string]int64
}

func NewLastSeenTimestamp(name string, actions ...domain.ActionType) *LastSeenTimestamp {
	return &LastSeenTimestamp{Name: name, Actions: actions, last: make(map[string]int64)}
}

func (a *LastSeenTimestamp) ActionTypes() []domain.ActionType { return a.Actions }

func (a *LastSeenTimestamp) Update(row *domain.Event) {
	a.last[pairKey(row.UserID, row.Reference)] = row.Timestamp
}

func (a *LastSeenTimestamp) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	diff := row.Timestamp - a.last[pairKey(row.UserID, item.ItemID)]
	if diff > domain.NoTimeSignal {
		diff = domain.NoTimeSignal
	}
	out[a.Name] = diff
}

// TimestampDelta tracks the last event timestamp per (user, item) and
// emits the stored timestamp minus the current one (zero or negative), with
// 0 standing in for an unseen pair.
type TimestampDelta struct {
	Name    string
	Actions []domain.ActionType

	last map[string]int64
}

func NewTimestampDelta(name string, actions ...domain.ActionType) *TimestampDelta {
	return &TimestampDelta{Name: name, Actions: actions, last: make(map[string]int64)}
}

func (a *TimestampDelta) ActionTypes() []domain.ActionType { return a.Actions }

func (a *TimestampDelta) Update(row *domain.Event) {
	a.last[pairKey(row.UserID, row.Reference)] = row.Timestamp
}

func (a *TimestampDelta) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	ts, ok := a.last[pairKey(row.UserID, item.ItemID)]
	if !ok {
		out[a.Name] = int64(0)
		return
	}
	out[a.Name] = ts - row.Timestamp
}

// LastClickoutTimestamp tracks the last clickout timestamp per (user,
// impression list) and emits the elapsed time since it.
type LastClickoutTimestamp struct {
	Name string

	last map[userViewKey]int64
}

func NewLastClickoutTimestamp(name string) *LastClickoutTimestamp {
	return &LastClickoutTimestamp{Name: name, last: make(map[userViewKey]int64)}
}

func (a *LastClickoutTimestamp) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *LastClickoutTimestamp) Update(row *domain.Event) {
	a.last[UserImpressionsKey(row)] = row.Timestamp
}

func (a *LastClickoutTimestamp) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out[a.Name] = row.Timestamp - a.last[UserImpressionsKey(row)]
}
