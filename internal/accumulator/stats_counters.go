package accumulator

import (
	"fmt"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// KeyedCounter increments one counter per update and reads it back with a
// candidate-aware key. Covers per-platform click counts, per-user item
// clicks, interaction frequencies, rank preferences and the plain
// action-count features.
type KeyedCounter struct {
	Name    string
	Actions []domain.ActionType
	// UpdateKey builds the counter key mutated on update.
	UpdateKey func(row *domain.Event) string
	// QueryKey builds the counter key read on collect.
	QueryKey func(row *domain.Event, item *domain.Candidate) string

	counts map[string]int
}

func NewKeyedCounter(name string, actions []domain.ActionType, updateKey func(*domain.Event) string, queryKey func(*domain.Event, *domain.Candidate) string) *KeyedCounter {
	return &KeyedCounter{Name: name, Actions: actions, UpdateKey: updateKey, QueryKey: queryKey, counts: make(map[string]int)}
}

func (a *KeyedCounter) ActionTypes() []domain.ActionType { return a.Actions }

func (a *KeyedCounter) Update(row *domain.Event) {
	a.counts[a.UpdateKey(row)]++
}

func (a *KeyedCounter) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out[a.Name] = a.counts[a.QueryKey(row, item)]
}

// ImpressionCounter counts, per (user, item), how many times the item was
// shown to the user in a clickout impression list.
type ImpressionCounter struct {
	Name string

	counts map[string]int
}

func NewImpressionCounter(name string) *ImpressionCounter {
	return &ImpressionCounter{Name: name, counts: make(map[string]int)}
}

func (a *ImpressionCounter) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *ImpressionCounter) Update(row *domain.Event) {
	for _, itemID := range row.Impressions {
		a.counts[pairKey(row.UserID, itemID)]++
	}
}

func (a *ImpressionCounter) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out[a.Name] = a.counts[pairKey(row.UserID, item.ItemID)]
}

// ViewItemClicks counts clicks per (impression list, item). Two instances
// exist: one keyed by the order-insensitive impressions hash, one by the raw
// pipe-delimited list.
type ViewItemClicks struct {
	Name string
	// View selects the impression-list key (hash or raw).
	View func(row *domain.Event) string

	counts map[string]map[string]int
}

func NewViewItemClicks(name string, view func(*domain.Event) string) *ViewItemClicks {
	return &ViewItemClicks{Name: name, View: view, counts: make(map[string]map[string]int)}
}

func (a *ViewItemClicks) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *ViewItemClicks) Update(row *domain.Event) {
	view := a.View(row)
	inner, ok := a.counts[view]
	if !ok {
		inner = make(map[string]int)
		a.counts[view] = inner
	}
	inner[row.Reference]++
}

func (a *ViewItemClicks) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out[a.Name] = a.counts[a.View(row)][item.ItemID]
}

// SameImpression tracks the last impressions hash per user and emits whether
// the current clickout shows the identical item set again.
type SameImpression struct {
	Name string

	last map[string]string
}

func NewSameImpression(name string) *SameImpression {
	return &SameImpression{Name: name, last: make(map[string]string)}
}

func (a *SameImpression) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *SameImpression) Update(row *domain.Event) {
	a.last[row.UserID] = row.ImpressionsHash
}

func (a *SameImpression) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	last, ok := a.last[row.UserID]
	out[a.Name] = ok && last == row.ImpressionsHash
}

// pairKey joins two key parts the way the storage layer composes compound
// keys.
func pairKey(a, b string) string {
	return fmt.Sprintf("%s|%s", a, b)
}

// rankKey composes a key part with a numeric rank or index.
func rankKey(a string, n int) string {
	return fmt.Sprintf("%s|%d", a, n)
}
