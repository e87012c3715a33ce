package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// LastValue tracks one value per user and emits it verbatim.
// Covers the last-sort-order, last-filter-selection, last-filter and
// last-item-clickout features.
type LastValue struct {
	Name    string
	Actions []domain.ActionType
	// Value extracts the tracked value from the event (reference or
	// current filters).
	Value func(row *domain.Event) string
	// Default is emitted before the first qualifying event for a user.
	Default any

	last map[string]string
}

func NewLastValue(name string, actions []domain.ActionType, value func(*domain.Event) string, def any) *LastValue {
	return &LastValue{Name: name, Actions: actions, Value: value, Default: def, last: make(map[string]string)}
}

func (a *LastValue) ActionTypes() []domain.ActionType { return a.Actions }

func (a *LastValue) Update(row *domain.Event) {
	a.last[row.UserID] = a.Value(row)
}

func (a *LastValue) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	if v, ok := a.last[row.UserID]; ok {
		out[a.Name] = v
		return
	}
	out[a.Name] = a.Default
}

// MatchLast tracks the last reference per user and emits 1 when it equals
// the candidate item. Covers was-interaction-image/deals/rating/info and
// was-item-searched.
type MatchLast struct {
	Name    string
	Actions []domain.ActionType

	last map[string]string
}

func NewMatchLast(name string, actions ...domain.ActionType) *MatchLast {
	return &MatchLast{Name: name, Actions: actions, last: make(map[string]string)}
}

func (a *MatchLast) ActionTypes() []domain.ActionType { return a.Actions }

func (a *MatchLast) Update(row *domain.Event) {
	a.last[row.UserID] = row.Reference
}

func (a *MatchLast) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	v := 0
	if last, ok := a.last[row.UserID]; ok && last == item.ItemID {
		v = 1
	}
	out[a.Name] = v
}

// LastPosition tracks the last clicked index per (user, impression list) and
// emits the candidate rank minus that index, with IndexMissing standing in
// before the first clickout on that list.
type LastPosition struct {
	Name string

	last map[userViewKey]int
}

func NewLastPosition(name string) *LastPosition {
	return &LastPosition{Name: name, last: make(map[userViewKey]int)}
}

func (a *LastPosition) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *LastPosition) Update(row *domain.Event) {
	a.last[userViewKey{row.UserID, row.ImpressionsRaw}] = row.IndexClicked
}

func (a *LastPosition) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	prev, ok := a.last[userViewKey{row.UserID, row.ImpressionsRaw}]
	if !ok {
		prev = domain.IndexMissing
	}
	out[a.Name] = item.Rank - prev
}

// LastIndexDiff appends every non-missing interacted index to a per-key list
// and emits the most recent index minus the candidate rank, IndexMissing
// when the list is empty. Covers the last-item-index family, including the
// same-view and fake-impression variants.
type LastIndexDiff struct {
	Name    string
	Actions []domain.ActionType
	// Key scopes the index history (user, or user plus impression list).
	Key func(row *domain.Event) userViewKey
	// Index extracts the interacted index from the event.
	Index func(row *domain.Event) int

	lists map[userViewKey][]int
}

func NewLastIndexDiff(name string, actions []domain.ActionType, key func(*domain.Event) userViewKey, index func(*domain.Event) int) *LastIndexDiff {
	return &LastIndexDiff{Name: name, Actions: actions, Key: key, Index: index, lists: make(map[userViewKey][]int)}
}

func (a *LastIndexDiff) ActionTypes() []domain.ActionType { return a.Actions }

func (a *LastIndexDiff) Update(row *domain.Event) {
	idx := a.Index(row)
	if idx == domain.IndexMissing {
		return
	}
	key := a.Key(row)
	a.lists[key] = append(a.lists[key], idx)
}

func (a *LastIndexDiff) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	list := a.lists[a.Key(row)]
	if len(list) == 0 {
		out[a.Name] = domain.IndexMissing
		return
	}
	out[a.Name] = list[len(list)-1] - item.Rank
}

// userViewKey scopes accumulator state to a user, optionally narrowed to a
// specific impression list or session.
type userViewKey struct {
	User string
	View string
}

// UserKey scopes state to the user alone.
func UserKey(row *domain.Event) userViewKey {
	return userViewKey{User: row.UserID}
}

// UserImpressionsKey scopes state to (user, raw impression list).
func UserImpressionsKey(row *domain.Event) userViewKey {
	return userViewKey{User: row.UserID, View: row.ImpressionsRaw}
}

// UserFakeImpressionsKey scopes state to (user, carried-forward impression
// list).
func UserFakeImpressionsKey(row *domain.Event) userViewKey {
	return userViewKey{User: row.UserID, View: row.FakeImpressionsRaw}
}

// UserSessionKey scopes state to (user, session).
func UserSessionKey(row *domain.Event) userViewKey {
	return userViewKey{User: row.UserID, View: row.SessionID}
}
