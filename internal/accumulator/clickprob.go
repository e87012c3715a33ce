package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/priors"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// defaultClickProbs is the static rank-indexed fallback used when no
// temporal prior applies.
var defaultClickProbs = map[int]float64{0: 0.3, 1: 0.2, 2: 0.1, 3: 0.07, 4: 0.05, 5: 0.03}

// defaultClickProbFloor is returned for ranks beyond the fallback table.
const defaultClickProbFloor = 0.03

// ClickProbability emits the prior probability of a click landing on the
// candidate, keyed by (rank offset from the last click, bucketed time since
// it). When the candidate's impression list differs from the user's
// currently tracked list there is no temporal signal and the static
// rank-indexed default applies directly.
//
// Two instances are registered: one over real clickout impressions and one
// over the carried-forward (fake) impressions of all reference-bearing
// actions.
type ClickProbability struct {
	Name    string
	Actions []domain.ActionType
	// View selects the impression list (real or carried-forward).
	View func(row *domain.Event) string
	// Index selects the interacted index matching View.
	Index func(row *domain.Event) int

	probs *priors.ClickProbs

	currentImpression map[string]string
	lastTimestamp     map[userViewKey]int64
	lastPosition      map[userViewKey]int
}

// NewClickProbability builds the real-impressions variant.
func NewClickProbability(probs *priors.ClickProbs) *ClickProbability {
	return newClickProbability(
		"clickout_prob_time_position_offset",
		[]domain.ActionType{domain.ActionClickoutItem},
		func(row *domain.Event) string { return row.ImpressionsRaw },
		func(row *domain.Event) int { return row.IndexClicked },
		probs,
	)
}

// NewFakeClickProbability builds the carried-forward-impressions variant.
func NewFakeClickProbability(probs *priors.ClickProbs) *ClickProbability {
	return newClickProbability(
		"fake_clickout_prob_time_position_offset",
		domain.ActionsWithItemReference,
		func(row *domain.Event) string { return row.FakeImpressionsRaw },
		func(row *domain.Event) int { return row.FakeIndexInteracted },
		probs,
	)
}

func newClickProbability(name string, actions []domain.ActionType, view func(*domain.Event) string, index func(*domain.Event) int, probs *priors.ClickProbs) *ClickProbability {
	return &ClickProbability{
		Name:              name,
		Actions:           actions,
		View:              view,
		Index:             index,
		probs:             probs,
		currentImpression: make(map[string]string),
		lastTimestamp:     make(map[userViewKey]int64),
		lastPosition:      make(map[userViewKey]int),
	}
}

func (a *ClickProbability) ActionTypes() []domain.ActionType { return a.Actions }

func (a *ClickProbability) Update(row *domain.Event) {
	view := a.View(row)
	a.currentImpression[row.UserID] = view
	key := userViewKey{row.UserID, view}
	a.lastTimestamp[key] = row.Timestamp
	a.lastPosition[key] = a.Index(row)
}

func (a *ClickProbability) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	view := a.View(row)
	if a.currentImpression[row.UserID] != view {
		out[a.Name] = a.defaultProb(item.Rank)
		return
	}

	key := userViewKey{row.UserID, view}
	clickOffset := item.Rank - a.lastPosition[key]
	timeBucket := priors.BucketTime(row.Timestamp - a.lastTimestamp[key])

	if p, ok := a.probs.Lookup(clickOffset, timeBucket); ok {
		out[a.Name] = p
		return
	}
	if p, ok := a.probs.Lookup(clickOffset, priors.FallbackTimeBucket); ok {
		out[a.Name] = p
		return
	}
	out[a.Name] = a.defaultProb(item.Rank)
}

func (a *ClickProbability) defaultProb(rank int) float64 {
	if p, ok := defaultClickProbs[rank]; ok {
		return p
	}
	return defaultClickProbFloor
}
