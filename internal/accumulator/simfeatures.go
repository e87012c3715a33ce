package accumulator

import (
	"sort"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/similarity"
)

// SimilarityMode selects which feature one SimilarityFeatures instance
// emits. Several narrow instances are registered instead of one wide
// accumulator so the instances can be sharded independently.
type SimilarityMode int

const (
	// SimToLastClicked compares the candidate to the user's last clicked
	// item.
	SimToLastClicked SimilarityMode = iota
	// SimToInteracted averages the similarity of the candidate to every
	// item the user interacted with.
	SimToInteracted
	// SimToSessionInteracted averages over the current session's
	// interacted items only.
	SimToSessionInteracted
	// SimSetSize emits the size of the candidate's own attribute set.
	SimSetSize
)

// SimilarityFeatures combines an external similarity provider with locally
// tracked last-clicked / interacted / session-interacted item sets.
type SimilarityFeatures struct {
	Name     string
	Mode     SimilarityMode
	provider similarity.Provider

	lastClickout     map[string]int
	userItems        map[userViewKey]map[int]struct{}
	userSessionItems map[userViewKey]map[int]struct{}
}

func NewSimilarityFeatures(name string, provider similarity.Provider, mode SimilarityMode) *SimilarityFeatures {
	return &SimilarityFeatures{
		Name:             name,
		Mode:             mode,
		provider:         provider,
		lastClickout:     make(map[string]int),
		userItems:        make(map[userViewKey]map[int]struct{}),
		userSessionItems: make(map[userViewKey]map[int]struct{}),
	}
}

func (a *SimilarityFeatures) ActionTypes() []domain.ActionType {
	return domain.ActionsWithItemReference
}

func (a *SimilarityFeatures) Update(row *domain.Event) {
	if row.ActionType == domain.ActionClickoutItem {
		a.lastClickout[row.UserID] = row.ReferenceInt()
	}
	addItem(a.userItems, UserKey(row), row.ReferenceInt())
	addItem(a.userSessionItems, UserSessionKey(row), row.ReferenceInt())
}

func (a *SimilarityFeatures) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	itemID := domain.SafeInt(item.ItemID)
	switch a.Mode {
	case SimToLastClicked:
		out[a.Name] = a.provider.Pairwise(a.lastClickout[row.UserID], itemID)
	case SimToInteracted:
		out[a.Name] = a.provider.Aggregate(setToList(a.userItems[UserKey(row)]), itemID)
	case SimToSessionInteracted:
		out[a.Name] = a.provider.Aggregate(setToList(a.userSessionItems[UserSessionKey(row)]), itemID)
	case SimSetSize:
		out[a.Name] = a.provider.SetSize(itemID)
	}
}

func addItem(m map[userViewKey]map[int]struct{}, key userViewKey, itemID int) {
	set, ok := m[key]
	if !ok {
		set = make(map[int]struct{})
		m[key] = set
	}
	set[itemID] = struct{}{}
}

// setToList returns the set in sorted order so float aggregation stays
// bit-for-bit deterministic across runs.
func setToList(set map[int]struct{}) []int {
	items := make([]int, 0, len(set))
	for id := range set {
		items = append(items, id)
	}
	sort.Ints(items)
	return items
}
