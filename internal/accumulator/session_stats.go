package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ItemLastClickoutStatsInSession counts, per item, how many active sessions
// currently have the item as their most recent clickout. When a session's
// last clicked item changes, the old item's counter is decremented and the
// new one's incremented; the sum over all items stays equal to the number
// of sessions that clicked at least once.
type ItemLastClickoutStatsInSession struct {
	lastInteraction map[userViewKey]string
	counter         map[string]int
}

func NewItemLastClickoutStatsInSession() *ItemLastClickoutStatsInSession {
	return &ItemLastClickoutStatsInSession{
		lastInteraction: make(map[userViewKey]string),
		counter:         make(map[string]int),
	}
}

func (a *ItemLastClickoutStatsInSession) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *ItemLastClickoutStatsInSession) Update(row *domain.Event) {
	itemID := row.Reference
	key := UserSessionKey(row)
	if old, ok := a.lastInteraction[key]; ok {
		a.lastInteraction[key] = itemID
		if old != itemID {
			a.counter[old]--
			a.counter[itemID]++
		}
		return
	}
	a.counter[itemID]++
	a.lastInteraction[key] = itemID
}

func (a *ItemLastClickoutStatsInSession) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out["last_clickout_item_stats"] = a.counter[item.ItemID]
}

// TotalActiveSessions returns the conserved counter total, used to verify
// the toggling invariant.
func (a *ItemLastClickoutStatsInSession) TotalActiveSessions() int {
	total := 0
	for _, n := range a.counter {
		total += n
	}
	return total
}
