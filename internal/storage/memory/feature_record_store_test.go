package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/storage"
)

func TestFeatureRecordStore_InsertAndGetByClickoutID(t *testing.T) {
	store := NewFeatureRecordStore()
	ctx := context.Background()

	records := []*domain.FeatureRecord{
		{ClickoutID: "c1", ItemID: "82020", Rank: 2, Features: map[string]any{"ctr": 0.5}},
		{ClickoutID: "c1", ItemID: "910923", Rank: 0, Features: map[string]any{"ctr": 0.1}},
		{ClickoutID: "c2", ItemID: "82020", Rank: 0, Features: map[string]any{"ctr": 0.2}},
		{ClickoutID: "c1", ItemID: "23910", Rank: 1, Features: map[string]any{"ctr": 0.3}},
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	out, err := store.GetByClickoutID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByClickoutID failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(out))
	}
	for i, r := range out {
		if r.Rank != i {
			t.Errorf("position %d holds rank %d, want rank order", i, r.Rank)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}

func TestFeatureRecordStore_UnknownClickout(t *testing.T) {
	store := NewFeatureRecordStore()
	out, err := store.GetByClickoutID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByClickoutID failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected no records, got %d", len(out))
	}
}

func TestFeatureRecordStore_InvalidInput(t *testing.T) {
	store := NewFeatureRecordStore()
	err := store.InsertBulk(context.Background(), []*domain.FeatureRecord{{ClickoutID: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestFeatureRecordStore_FeatureMapsAreCopies(t *testing.T) {
	store := NewFeatureRecordStore()
	ctx := context.Background()

	rec := &domain.FeatureRecord{ClickoutID: "c1", ItemID: "82020", Features: map[string]any{"ctr": 0.5}}
	if err := store.InsertBulk(ctx, []*domain.FeatureRecord{rec}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	rec.Features["ctr"] = 99.0

	out, _ := store.GetByClickoutID(ctx, "c1")
	if out[0].Features["ctr"] != 0.5 {
		t.Error("caller mutation of Features leaked into the store")
	}

	out[0].Features["ctr"] = -1.0
	again, _ := store.GetByClickoutID(ctx, "c1")
	if again[0].Features["ctr"] != 0.5 {
		t.Error("reader mutation of Features leaked into the store")
	}
}
