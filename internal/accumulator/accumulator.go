// Package accumulator implements the stateful feature aggregators driven by
// the event stream. Each accumulator owns a private, incrementally updated
// state and contributes named feature values for every candidate of every
// clickout event. Queries never fail: missing keys resolve to documented
// sentinel defaults.
package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// Accumulator is a stateful aggregate over the event stream.
//
// Update is called once per qualifying event, in arrival order, and only for
// events whose action type the accumulator declared interest in (and never
// for held-out events). Collect is a pure read of the current state plus the
// candidate's attributes; it merges the accumulator's feature values into
// out and must never fail.
type Accumulator interface {
	// ActionTypes declares the action types this accumulator wants to
	// observe in Update. Used for dispatch only.
	ActionTypes() []domain.ActionType

	Update(row *domain.Event)

	Collect(row *domain.Event, item *domain.Candidate, out map[string]any)
}

// Registry indexes accumulators by the action types they declare interest
// in, so only relevant accumulators are updated for a given event kind.
// Built once before stream processing starts.
type Registry struct {
	all      []Accumulator
	byAction map[domain.ActionType][]Accumulator
}

// NewRegistry groups accumulators by action type. The order of accs is
// preserved both in All and within each action-type bucket.
func NewRegistry(accs []Accumulator) *Registry {
	r := &Registry{
		all:      accs,
		byAction: make(map[domain.ActionType][]Accumulator),
	}
	for _, acc := range accs {
		for _, t := range acc.ActionTypes() {
			r.byAction[t] = append(r.byAction[t], acc)
		}
	}
	return r
}

// All returns every registered accumulator in registration order.
func (r *Registry) All() []Accumulator {
	return r.all
}

// Interested returns the accumulators that declared interest in t.
func (r *Registry) Interested(t domain.ActionType) []Accumulator {
	return r.byAction[t]
}

// Shard selects the accumulators assigned to one shard by index modulo
// shardCount. Every shard replays the identical event stream and emits a
// disjoint subset of feature columns; outputs are merged by clickout id.
//
// Assignment is workload-oblivious: expensive accumulators are not isolated.
// A capacity-aware partitioning could be substituted without changing the
// external contract.
func Shard(accs []Accumulator, shardCount, shardIndex int) []Accumulator {
	if shardCount <= 1 {
		return accs
	}
	var out []Accumulator
	for i, acc := range accs {
		if i%shardCount == shardIndex {
			out = append(out, acc)
		}
	}
	return out
}
