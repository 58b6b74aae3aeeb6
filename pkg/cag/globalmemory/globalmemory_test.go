package globalmemory

import (
	"context"
	"testing"
	"time"

	"github.com/trigoo007/cagcore/pkg/cag/kvstore"
	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/fsx/fsxlocal"
	"github.com/trigoo007/cagcore/pkg/kernel"
)

func testConfig() config.GlobalMemoryConfig {
	return config.GlobalMemoryConfig{
		MaxEntities:          200,
		MaxTopics:            50,
		MinEntityOccurrences: 2,
		DecayFactor:          0.98,
		CacheSize:            10,
		BaseCacheTTL:         5 * time.Minute,
		HighActivityUpdates:  100,
		LowActivityUpdates:   10,
		MaintenanceEvery:     12 * time.Hour,
		Backend:              "fs",
		DocKey:               "global_memory",
	}
}

func newTestGlobalMemory(t *testing.T) *GlobalMemory {
	t.Helper()
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("local filesystem: %v", err)
	}
	store := kvstore.NewFSStore(fs, "")
	return New(store, nil, nil, testConfig())
}

func TestGetGlobalMemoryContext_StartsEmpty(t *testing.T) {
	g := newTestGlobalMemory(t)
	doc, err := g.GetGlobalMemoryContext(context.Background())
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if len(doc.Entities) != 0 || len(doc.Topics) != 0 {
		t.Fatalf("expected an empty document, got %+v", doc)
	}
}

func TestUpdateGlobalMemory_NewEntityRecorded(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{
		Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.8}},
		Topics:   []types.Topic{{Name: "finance", Confidence: 0.6}},
	}
	applied, err := g.UpdateGlobalMemory(ctx, cm, "hola", "hola de vuelta", kernel.NewConversationID("c1"), UpdateOptions{})
	if err != nil {
		t.Fatalf("update global memory: %v", err)
	}
	if !applied {
		t.Fatal("expected the update to be applied")
	}

	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if len(doc.Entities) != 1 || doc.Entities[0].Name != "Acme Corp" {
		t.Fatalf("expected the entity to be recorded, got %+v", doc.Entities)
	}
	if doc.Entities[0].Occurrences != 1 {
		t.Fatalf("expected occurrences=1 on first sighting, got %d", doc.Entities[0].Occurrences)
	}
	if doc.Stats.TotalUpdates != 1 || doc.Stats.TotalConversations != 1 {
		t.Fatalf("expected stats to reflect one update/conversation, got %+v", doc.Stats)
	}
}

func TestUpdateGlobalMemory_RepeatEntityBumpsOccurrencesAndConfidence(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()
	convID := kernel.NewConversationID("c1")

	cm1 := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.5}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm1, "a", "b", convID, UpdateOptions{}); err != nil {
		t.Fatalf("update 1: %v", err)
	}
	cm2 := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.9}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm2, "a", "b", convID, UpdateOptions{}); err != nil {
		t.Fatalf("update 2: %v", err)
	}

	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if len(doc.Entities) != 1 {
		t.Fatalf("expected the entity deduped across updates, got %+v", doc.Entities)
	}
	if doc.Entities[0].Occurrences != 2 {
		t.Fatalf("expected occurrences=2, got %d", doc.Entities[0].Occurrences)
	}
	if doc.Entities[0].Confidence != 0.9 {
		t.Fatalf("expected confidence to take the max observed (0.9), got %v", doc.Entities[0].Confidence)
	}
	if doc.Stats.TotalConversations != 1 {
		t.Fatalf("expected the same conversation counted once, got %d", doc.Stats.TotalConversations)
	}
}

func TestUpdateGlobalMemory_PersonEntityClassifiedSensitive(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{Entities: []types.Entity{{Name: "Juan Pérez", Type: types.EntityPerson, Confidence: 0.7}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm, "a", "b", kernel.NewConversationID("c1"), UpdateOptions{}); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if doc.Entities[0].SensitivityLevel != types.SensitivitySensitive {
		t.Fatalf("expected a person entity classified sensitive, got %v", doc.Entities[0].SensitivityLevel)
	}
}

func TestEnrichContextWithGlobalMemory_FiltersBySensitivity(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{Entities: []types.Entity{
		{Name: "Juan Pérez", Type: types.EntityPerson, Confidence: 0.9},
		{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.9},
	}}
	for i := 0; i < 3; i++ {
		if _, err := g.UpdateGlobalMemory(ctx, cm, "a", "b", kernel.NewConversationID("c1"), UpdateOptions{}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	target := &types.ContextMap{}
	enriched, err := g.EnrichContextWithGlobalMemory(ctx, target, EnrichOptions{AuthorizedAccessLevel: types.SensitivityPublic})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	for _, e := range enriched.GlobalMemory.Entities {
		if e.Name == "Juan Pérez" {
			t.Fatalf("expected the sensitive person entity excluded at public access level, got %+v", enriched.GlobalMemory.Entities)
		}
	}

	enrichedSensitive, err := g.EnrichContextWithGlobalMemory(ctx, &types.ContextMap{}, EnrichOptions{AuthorizedAccessLevel: types.SensitivitySensitive})
	if err != nil {
		t.Fatalf("enrich sensitive: %v", err)
	}
	found := false
	for _, e := range enrichedSensitive.GlobalMemory.Entities {
		if e.Name == "Juan Pérez" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the sensitive entity visible at sensitive access level")
	}
}

func TestEnrichContextWithGlobalMemory_ExcludesAlreadyPresentEntities(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.9}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm, "a", "b", kernel.NewConversationID("c1"), UpdateOptions{}); err != nil {
		t.Fatalf("update: %v", err)
	}

	target := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization}}}
	enriched, err := g.EnrichContextWithGlobalMemory(ctx, target, EnrichOptions{})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	for _, e := range enriched.GlobalMemory.Entities {
		if e.Name == "Acme Corp" {
			t.Fatal("expected an already-present entity not to be re-surfaced")
		}
	}
}

func TestResetGlobalMemory_BacksUpThenClears(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.9}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm, "a", "b", kernel.NewConversationID("c1"), UpdateOptions{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := g.ResetGlobalMemory(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if len(doc.Entities) != 0 {
		t.Fatalf("expected an empty document after reset, got %+v", doc.Entities)
	}
}

func TestPerformMaintenance_PrunesLowOccurrenceAndStaleEntities(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.9}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm, "a", "b", kernel.NewConversationID("c1"), UpdateOptions{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := g.PerformMaintenance(ctx); err != nil {
		t.Fatalf("maintenance: %v", err)
	}

	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if len(doc.Entities) != 0 {
		t.Fatalf("expected the single-occurrence entity pruned (min occurrences=2), got %+v", doc.Entities)
	}
	if doc.LastMaintenance == nil {
		t.Fatal("expected LastMaintenance to be stamped")
	}
}

func TestProvideFeedback_IncorrectLowersConfidence(t *testing.T) {
	g := newTestGlobalMemory(t)
	ctx := context.Background()

	cm := &types.ContextMap{Entities: []types.Entity{{Name: "Acme Corp", Type: types.EntityOrganization, Confidence: 0.8}}}
	if _, err := g.UpdateGlobalMemory(ctx, cm, "a", "b", kernel.NewConversationID("c1"), UpdateOptions{}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := g.ProvideFeedback(ctx, "Acme Corp", types.EntityOrganization, FeedbackInput{IsCorrect: false}); err != nil {
		t.Fatalf("provide feedback: %v", err)
	}

	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		t.Fatalf("get global memory context: %v", err)
	}
	if doc.Entities[0].Confidence >= 0.8 {
		t.Fatalf("expected confidence to drop after negative feedback, got %v", doc.Entities[0].Confidence)
	}
}

func TestProvideFeedback_UnknownEntityErrors(t *testing.T) {
	g := newTestGlobalMemory(t)
	err := g.ProvideFeedback(context.Background(), "Nobody", types.EntityPerson, FeedbackInput{IsCorrect: true})
	if err == nil {
		t.Fatal("expected an error for an entity not present in the document")
	}
}

func TestClassifySensitivity_KeywordScanRestricted(t *testing.T) {
	level := classifySensitivity("internal project", "", types.EntityConcept, nil)
	if level != types.SensitivityRestricted {
		t.Fatalf("expected a restricted classification for an internal-keyword match, got %v", level)
	}
}

func TestClassifySensitivity_OverrideWins(t *testing.T) {
	override := types.SensitivityPublic
	level := classifySensitivity("password vault", "", types.EntityPerson, &override)
	if level != types.SensitivityPublic {
		t.Fatalf("expected the explicit override to win over type/keyword rules, got %v", level)
	}
}

func TestIsAllowed_RanksCorrectly(t *testing.T) {
	if !isAllowed(types.SensitivityPublic, types.SensitivityRestricted) {
		t.Fatal("expected public content allowed at restricted access")
	}
	if isAllowed(types.SensitivitySensitive, types.SensitivityRestricted) {
		t.Fatal("expected sensitive content blocked at restricted access")
	}
}

func TestDynamicTTLCache_AdjustsWithActivity(t *testing.T) {
	c := newDynamicTTLCache(10, 5*time.Minute, 100, 10)
	if c.ttlFor(5) != 5*time.Minute {
		t.Fatalf("expected base TTL within normal activity band, got %v", c.ttlFor(5))
	}
	if c.ttlFor(150) != 2*time.Minute+30*time.Second {
		t.Fatalf("expected halved TTL above the high-activity threshold, got %v", c.ttlFor(150))
	}
	if c.ttlFor(1) != 10*time.Minute {
		t.Fatalf("expected doubled TTL below the low-activity threshold, got %v", c.ttlFor(1))
	}
}

func TestDynamicTTLCache_SetGetInvalidate(t *testing.T) {
	c := newDynamicTTLCache(10, 5*time.Minute, 100, 10)
	doc := &types.GlobalMemoryDoc{Stats: types.GlobalMemoryStats{TotalUpdates: 1}}
	c.set("k", doc)
	got, ok := c.get("k")
	if !ok || got.Stats.TotalUpdates != 1 {
		t.Fatalf("expected the cached document to round-trip, got %+v ok=%v", got, ok)
	}
	c.invalidate("k")
	if _, ok := c.get("k"); ok {
		t.Fatal("expected the entry gone after invalidate")
	}
}
