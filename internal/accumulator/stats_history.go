package accumulator

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ActionHistory appends the short code of every action a user performs and
// emits the whole history as one delimited string, framed by start/end
// markers for the downstream tokenizer.
type ActionHistory struct {
	Name string

	history map[string][]string
}

func NewActionHistory(name string) *ActionHistory {
	return &ActionHistory{Name: name, history: make(map[string][]string)}
}

func (a *ActionHistory) ActionTypes() []domain.ActionType { return domain.AllActions }

func (a *ActionHistory) Update(row *domain.Event) {
	a.history[row.UserID] = append(a.history[row.UserID], row.ActionType.ShortCode())
}

func (a *ActionHistory) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	var b strings.Builder
	b.WriteString("q")
	for _, c := range a.history[row.UserID] {
		b.WriteString(c)
	}
	b.WriteString("x")
	out[a.Name] = b.String()
}

// ActionTimeDiffs tracks, per user and per action type, the timestamp of the
// most recent occurrence, and emits a JSON object mapping each seen action's
// short code to the elapsed time at query.
type ActionTimeDiffs struct {
	Name string

	last map[string]map[string]int64
}

func NewActionTimeDiffs(name string) *ActionTimeDiffs {
	return &ActionTimeDiffs{Name: name, last: make(map[string]map[string]int64)}
}

func (a *ActionTimeDiffs) ActionTypes() []domain.ActionType { return domain.AllActions }

func (a *ActionTimeDiffs) Update(row *domain.Event) {
	inner, ok := a.last[row.UserID]
	if !ok {
		inner = make(map[string]int64)
		a.last[row.UserID] = inner
	}
	inner[row.ActionType.ShortCode()] = row.Timestamp
}

func (a *ActionTimeDiffs) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	diffs := make(map[string]int64, len(a.last[row.UserID]))
	for code, ts := range a.last[row.UserID] {
		diffs[code] = row.Timestamp - ts
	}
	// Map keys are marshaled in sorted order, so the encoding is
	// deterministic.
	buf, err := json.Marshal(diffs)
	if err != nil {
		out[a.Name] = "{}"
		return
	}
	out[a.Name] = string(buf)
}

// InteractionSet collects the distinct integer item ids a user (or a user
// session) has interacted with and emits them as a sorted slice.
type InteractionSet struct {
	Name string
	// Key scopes the set (user, or user plus session).
	Key func(row *domain.Event) userViewKey

	sets map[userViewKey]map[int]struct{}
}

func NewInteractionSet(name string, key func(*domain.Event) userViewKey) *InteractionSet {
	return &InteractionSet{Name: name, Key: key, sets: make(map[userViewKey]map[int]struct{})}
}

func (a *InteractionSet) ActionTypes() []domain.ActionType {
	return domain.ActionsWithItemReference
}

func (a *InteractionSet) Update(row *domain.Event) {
	key := a.Key(row)
	set, ok := a.sets[key]
	if !ok {
		set = make(map[int]struct{})
		a.sets[key] = set
	}
	set[row.ReferenceInt()] = struct{}{}
}

func (a *InteractionSet) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out[a.Name] = a.Items(a.Key(row))
}

// Items returns the set under key as a sorted slice, empty when absent.
func (a *InteractionSet) Items(key userViewKey) []int {
	set := a.sets[key]
	items := make([]int, 0, len(set))
	for id := range set {
		items = append(items, id)
	}
	sort.Ints(items)
	return items
}
