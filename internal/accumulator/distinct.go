package accumulator

import (
	"fmt"
	"strings"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// DistinctBy selects the secondary dimension counted by
// DistinctInteractions.
type DistinctBy string

const (
	DistinctByTimestamp DistinctBy = "timestamp"
	DistinctBySession   DistinctBy = "session_id"
)

// DistinctInteractions counts, per (user, item), the distinct timestamps or
// session ids in which the user performed one action type on the item.
// One instance is registered per reference-bearing action type and
// dimension.
type DistinctInteractions struct {
	Action domain.ActionType
	By     DistinctBy

	seen map[string]map[string]struct{}
}

func NewDistinctInteractions(action domain.ActionType, by DistinctBy) *DistinctInteractions {
	return &DistinctInteractions{Action: action, By: by, seen: make(map[string]map[string]struct{})}
}

func (a *DistinctInteractions) ActionTypes() []domain.ActionType {
	return []domain.ActionType{a.Action}
}

func (a *DistinctInteractions) Update(row *domain.Event) {
	key := pairKey(row.UserID, row.Reference)
	set, ok := a.seen[key]
	if !ok {
		set = make(map[string]struct{})
		a.seen[key] = set
	}
	switch a.By {
	case DistinctBySession:
		set[row.SessionID] = struct{}{}
	default:
		set[fmt.Sprintf("%d", row.Timestamp)] = struct{}{}
	}
}

func (a *DistinctInteractions) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	name := fmt.Sprintf("%s_unique_num_by_%s", strings.ReplaceAll(string(a.Action), " ", "_"), a.By)
	out[name] = len(a.seen[pairKey(row.UserID, item.ItemID)])
}
