package accumulator

import (
	"fmt"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// indicesHistoryLen is how many most-recent ranks the history features
// cover.
const indicesHistoryLen = 5

// IndicesFeatures keeps the interacted-rank history per (user, impression
// list) and emits, for n=1..5, the n-th most recent rank and its difference
// from the candidate rank, the length of the consecutive most-recent run
// equal to the candidate rank, and the single most recent rank minus the
// candidate rank.
//
// Registered twice: over real clickout indices and over carried-forward
// (fake) indices with a "fake_" name prefix.
type IndicesFeatures struct {
	Prefix  string
	Actions []domain.ActionType
	Key     func(row *domain.Event) userViewKey
	Index   func(row *domain.Event) int

	lists map[userViewKey][]int
}

// NewIndicesFeatures builds the real-impressions variant.
func NewIndicesFeatures() *IndicesFeatures {
	return &IndicesFeatures{
		Prefix:  "",
		Actions: []domain.ActionType{domain.ActionClickoutItem},
		Key:     UserImpressionsKey,
		Index:   func(row *domain.Event) int { return row.IndexClicked },
		lists:   make(map[userViewKey][]int),
	}
}

// NewFakeIndicesFeatures builds the carried-forward-impressions variant.
func NewFakeIndicesFeatures() *IndicesFeatures {
	return &IndicesFeatures{
		Prefix:  "fake_",
		Actions: domain.ActionsWithItemReference,
		Key:     UserFakeImpressionsKey,
		Index:   func(row *domain.Event) int { return row.FakeIndexInteracted },
		lists:   make(map[userViewKey][]int),
	}
}

func (a *IndicesFeatures) ActionTypes() []domain.ActionType { return a.Actions }

func (a *IndicesFeatures) Update(row *domain.Event) {
	idx := a.Index(row)
	if idx < 0 {
		return
	}
	key := a.Key(row)
	a.lists[key] = append(a.lists[key], idx)
}

func (a *IndicesFeatures) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	raw := a.lists[a.Key(row)]

	// Pad on the left so positions before any interaction read as -100.
	padded := make([]int, 0, indicesHistoryLen+len(raw))
	for i := 0; i < indicesHistoryLen; i++ {
		padded = append(padded, -100)
	}
	padded = append(padded, raw...)
	last := padded[len(padded)-indicesHistoryLen:]

	// Pairwise differences over the history extended with the candidate
	// rank.
	extended := append(append([]int{}, last...), item.Rank)
	diffs := make([]int, len(extended)-1)
	for i := 1; i < len(extended); i++ {
		diffs[i-1] = extended[i] - extended[i-1]
	}

	for n := 1; n <= indicesHistoryLen; n++ {
		out[fmt.Sprintf("%slast_index_%d", a.Prefix, n)] = last[len(last)-n]
		out[fmt.Sprintf("%slast_index_diff_%d", a.Prefix, n)] = diffs[len(diffs)-n]
	}
	out[a.Prefix+"n_consecutive_clicks"] = consecutiveFromEnd(raw, item.Rank)
	out[a.Prefix+"last_index_diff"] = last[len(last)-1] - item.Rank
}

// consecutiveFromEnd counts how many most-recent entries equal rank,
// scanning backward until the first mismatch.
func consecutiveFromEnd(list []int, rank int) int {
	n := 0
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] != rank {
			break
		}
		n++
	}
	return n
}
