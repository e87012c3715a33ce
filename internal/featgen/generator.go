// Package featgen drives the event stream through the accumulator registry
// and materializes one feature record per (clickout, candidate) pair.
// Processing is single-threaded and deterministic: events are consumed
// strictly in arrival order and all accumulator mutation happens between
// one event and the next.
package featgen

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/csy1204/recsys-2019-conf-ver/internal/accumulator"
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/idhash"
	"github.com/csy1204/recsys-2019-conf-ver/internal/ingestion"
	"github.com/csy1204/recsys-2019-conf-ver/internal/observability"
)

// Generator assembles feature records from an ordered event stream.
type Generator struct {
	registry *accumulator.Registry
	metrics  *observability.Metrics
}

// Option configures a Generator.
type Option func(*Generator)

// WithMetrics attaches pipeline counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// New builds a Generator over the given accumulator set. Accumulators must
// be freshly constructed: state is rebuilt from scratch every run.
func New(accs []accumulator.Accumulator, opts ...Option) *Generator {
	g := &Generator{registry: accumulator.NewRegistry(accs)}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics != nil {
		for _, acc := range accs {
			if h, ok := acc.(interface{ SetRecomputeHook(func()) }); ok {
				h.SetRecomputeHook(g.metrics.CacheRecomputes.Inc)
			}
		}
	}
	return g
}

// Run consumes the source until exhaustion and returns the feature table in
// emission order.
func (g *Generator) Run(ctx context.Context, src ingestion.Source) ([]*domain.FeatureRecord, error) {
	var records []*domain.FeatureRecord
	err := g.run(ctx, src, func(r *domain.FeatureRecord) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RunEach consumes the source, invoking emit for every feature record in
// emission order. Used when records stream into a store instead of memory.
func (g *Generator) RunEach(ctx context.Context, src ingestion.Source, emit func(*domain.FeatureRecord) error) error {
	return g.run(ctx, src, emit)
}

func (g *Generator) run(ctx context.Context, src ingestion.Source, emit func(*domain.FeatureRecord) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		prepare(row)

		if row.ActionType == domain.ActionClickoutItem {
			if err := g.emitCandidates(row, emit); err != nil {
				return err
			}
		}

		if !row.IsTest {
			for _, acc := range g.registry.Interested(row.ActionType) {
				acc.Update(row)
			}
			if g.metrics != nil {
				g.metrics.AccumulatorUpdates.Add(float64(len(g.registry.Interested(row.ActionType))))
			}
		}
		if g.metrics != nil {
			g.metrics.EventsProcessed.Inc()
		}
	}
}

// emitCandidates queries every accumulator once per candidate of the
// clickout. A clickout with an empty impression list produces zero records.
func (g *Generator) emitCandidates(row *domain.Event, emit func(*domain.FeatureRecord) error) error {
	if len(row.Impressions) == 0 {
		return nil
	}

	clickoutID := idhash.ComputeClickoutID(row.UserID, row.SessionID, row.Timestamp, row.Step)
	for rank, itemID := range row.Impressions {
		price := 0
		if rank < len(row.Prices) {
			price = row.Prices[rank]
		}
		item := &domain.Candidate{ItemID: itemID, Rank: rank, Price: price}

		record := &domain.FeatureRecord{
			ClickoutID:     clickoutID,
			UserID:         row.UserID,
			SessionID:      row.SessionID,
			Timestamp:      row.Timestamp,
			Platform:       row.Platform,
			CurrentFilters: row.CurrentFilters,
			Step:           row.Step,
			StepFromEnd:    row.StepFromEnd,
			MaxStep:        row.MaxStep,
			IsTest:         row.IsTest,
			ItemID:         itemID,
			Rank:           rank,
			Price:          price,
			ItemIDClicked:  row.Reference,
			Features:       make(map[string]any),
		}
		if itemID == row.Reference {
			record.WasClicked = 1
		}

		for _, acc := range g.registry.All() {
			acc.Collect(row, item, record.Features)
		}

		if err := emit(record); err != nil {
			return err
		}
		if g.metrics != nil {
			g.metrics.RecordsEmitted.Inc()
		}
	}
	if g.metrics != nil {
		g.metrics.ClickoutsProcessed.Inc()
	}
	return nil
}

// prepare fills the assembler-derived event fields: the split impression
// and price lists, the order-insensitive impressions hash, the clicked
// index and price, and the carried-forward index.
func prepare(row *domain.Event) {
	row.FakeImpressions = splitList(row.FakeImpressionsRaw)
	row.FakeIndexInteracted = indexOf(row.FakeImpressions, row.Reference)

	if row.ActionType != domain.ActionClickoutItem {
		return
	}

	row.Impressions = splitList(row.ImpressionsRaw)
	row.Prices = parsePrices(row.PricesRaw)
	row.ImpressionsHash = impressionsHash(row.Impressions)
	row.IndexClicked = indexOf(row.Impressions, row.Reference)
	if row.IndexClicked >= 0 && row.IndexClicked < len(row.Prices) {
		row.PriceClicked = row.Prices[row.IndexClicked]
	} else {
		row.PriceClicked = 0
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "|")
}

// parsePrices splits the pipe-delimited price list; unparsable entries
// degrade to 0 rather than aborting the event.
func parsePrices(raw string) []int {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	prices := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		prices[i] = n
	}
	return prices
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return domain.IndexMissing
}

// impressionsHash is the order-insensitive identity of an impression list.
func impressionsHash(impressions []string) string {
	sorted := make([]string, len(impressions))
	copy(sorted, impressions)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
