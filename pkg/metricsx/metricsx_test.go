package metricsx

import (
	"context"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func TestRecord_AppendsEventAndAggregates(t *testing.T) {
	m := New(NewMemoryStore(), "")
	ctx := context.Background()

	if err := m.Record(ctx, "feedback", "person", boolPtr(true), map[string]interface{}{"entity": "Ana"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	agg, err := m.GetAggregate(ctx, "person")
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if agg.TotalUses != 1 || agg.HelpfulUses != 1 {
		t.Fatalf("expected a helpful use recorded, got %+v", agg)
	}
}

func TestRecord_UnhelpfulDoesNotIncrementHelpfulCount(t *testing.T) {
	m := New(NewMemoryStore(), "")
	ctx := context.Background()

	if err := m.Record(ctx, "feedback", "person", boolPtr(false), nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	agg, err := m.GetAggregate(ctx, "person")
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if agg.TotalUses != 1 || agg.HelpfulUses != 0 {
		t.Fatalf("expected total without helpful, got %+v", agg)
	}
}

func TestRecord_EmptyEntityTypeSkipsAggregate(t *testing.T) {
	m := New(NewMemoryStore(), "")
	ctx := context.Background()

	if err := m.Record(ctx, "analysis", "", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	agg, err := m.GetAggregate(ctx, "")
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if agg.TotalUses != 0 {
		t.Fatalf("expected no aggregate recorded for an empty entity type, got %+v", agg)
	}
}

func TestPruneRetention_RemovesOldEvents(t *testing.T) {
	store := NewMemoryStore()
	m := New(store, "")
	ctx := context.Background()

	old := Event{Timestamp: time.Now().Add(-60 * 24 * time.Hour), OperationType: "analysis"}
	recent := Event{Timestamp: time.Now(), OperationType: "analysis"}
	if err := store.Append(ctx, old); err != nil {
		t.Fatalf("append old: %v", err)
	}
	if err := store.Append(ctx, recent); err != nil {
		t.Fatalf("append recent: %v", err)
	}

	removed, err := m.PruneRetention(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("prune retention: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected exactly one stale event removed, got %d", removed)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected one event remaining, got %d", len(store.events))
	}
}

func TestMemoryStore_AggregateAccumulatesAcrossCalls(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.IncrementAggregate(ctx, "org", true); err != nil {
		t.Fatalf("increment 1: %v", err)
	}
	if err := s.IncrementAggregate(ctx, "org", false); err != nil {
		t.Fatalf("increment 2: %v", err)
	}
	agg, err := s.Aggregate(ctx, "org")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalUses != 2 || agg.HelpfulUses != 1 {
		t.Fatalf("expected 2 total/1 helpful, got %+v", agg)
	}
}

func TestMetrics_DistinctInstancesDoNotPanicOnRegistration(t *testing.T) {
	New(NewMemoryStore(), "cag_one")
	New(NewMemoryStore(), "cag_two")
}
