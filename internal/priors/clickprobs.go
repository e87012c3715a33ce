// Package priors loads the externally supplied click-probability table used
// by the position/time-offset accumulator. The table is built offline; a
// missing or unreadable file at construction time is a deployment error and
// is reported immediately.
package priors

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// FallbackTimeBucket is retried when the exact (offset, bucket) key misses.
const FallbackTimeBucket = 120

// ClickProbs maps (click offset, time bucket) to a prior click probability.
type ClickProbs struct {
	probs map[probKey]float64
}

type probKey struct {
	ClickOffset int
	TimeBucket  int
}

// probEntry is the on-disk JSON row format.
type probEntry struct {
	ClickOffset int     `json:"click_offset"`
	TimeBucket  int     `json:"time_bucket"`
	Prob        float64 `json:"prob"`
}

// Load reads a click-probability table from a JSON array of
// {click_offset, time_bucket, prob} rows.
func Load(path string) (*ClickProbs, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read click probs: %w", err)
	}

	var entries []probEntry
	if err := json.Unmarshal(buf, &entries); err != nil {
		return nil, fmt.Errorf("parse click probs %s: %w", path, err)
	}

	return FromEntries(entriesToMap(entries)), nil
}

// FromEntries builds a table from an in-memory map, used by tests and by
// callers that load the table elsewhere.
func FromEntries(entries map[[2]int]float64) *ClickProbs {
	probs := make(map[probKey]float64, len(entries))
	for k, p := range entries {
		probs[probKey{ClickOffset: k[0], TimeBucket: k[1]}] = p
	}
	return &ClickProbs{probs: probs}
}

// Lookup returns the prior for (clickOffset, timeBucket).
func (c *ClickProbs) Lookup(clickOffset, timeBucket int) (float64, bool) {
	p, ok := c.probs[probKey{ClickOffset: clickOffset, TimeBucket: timeBucket}]
	return p, ok
}

// Len returns the number of loaded entries.
func (c *ClickProbs) Len() int {
	return len(c.probs)
}

func entriesToMap(entries []probEntry) map[[2]int]float64 {
	m := make(map[[2]int]float64, len(entries))
	for _, e := range entries {
		m[[2]int{e.ClickOffset, e.TimeBucket}] = e.Prob
	}
	return m
}

// BucketTime coarsens a time offset (seconds) into the bucket scheme the
// prior table is keyed by: exact up to 10s, 5s steps up to 60s, 30s steps
// up to 360s, everything above capped at 360.
func BucketTime(d int64) int {
	switch {
	case d <= 10:
		return int(d)
	case d <= 60:
		return int(d/5) * 5
	case d <= 360:
		return int(d/30) * 30
	default:
		return 360
	}
}
