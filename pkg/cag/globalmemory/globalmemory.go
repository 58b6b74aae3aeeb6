// Package globalmemory implements GlobalMemory: the process-wide
// singleton document shared across all conversations, with entity/topic
// aggregation, sensitivity classification, semantic-similarity-based
// enrichment selection, scheduled maintenance and feedback-driven
// confidence updates.
package globalmemory

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trigoo007/cagcore/pkg/cag/kvstore"
	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"
	"github.com/trigoo007/cagcore/pkg/metricsx"
	"github.com/trigoo007/cagcore/pkg/semanticx"
)

const decayAgeThresholdDays = 7

// EnrichOptions configures enrichContextWithGlobalMemory per spec §4.6.
type EnrichOptions struct {
	CurrentTopics        []string
	AuthorizedAccessLevel types.SensitivityLevel
	EntitySensitivity     map[string]types.SensitivityLevel
}

// UpdateOptions configures updateGlobalMemory.
type UpdateOptions struct {
	EntitySensitivity map[string]types.SensitivityLevel
}

// FeedbackInput is the payload of provideFeedback.
type FeedbackInput struct {
	IsCorrect            bool
	CorrectedDescription string
	CorrectedConfidence  *float64
	UserComment          string
}

// GlobalMemory is the process-wide singleton document manager.
type GlobalMemory struct {
	store    kvstore.Store
	semantic semanticx.Service
	metrics  *metricsx.Metrics
	cfg      config.GlobalMemoryConfig
	cache    *dynamicTTLCache

	mu sync.Mutex // single-document critical section
}

func New(store kvstore.Store, semantic semanticx.Service, metrics *metricsx.Metrics, cfg config.GlobalMemoryConfig) *GlobalMemory {
	return &GlobalMemory{
		store:    store,
		semantic: semantic,
		metrics:  metrics,
		cfg:      cfg,
		cache:    newDynamicTTLCache(cfg.CacheSize, cfg.BaseCacheTTL, cfg.HighActivityUpdates, cfg.LowActivityUpdates),
	}
}

func emptyDoc() *types.GlobalMemoryDoc {
	return &types.GlobalMemoryDoc{
		Entities:        nil,
		Topics:          nil,
		DomainKnowledge: make(map[string]types.DomainEntry),
		LastUpdated:     time.Now(),
		Stats:           types.GlobalMemoryStats{},
	}
}

// load reads through the cache to the backing kvstore, initializing an
// empty document on first use.
func (g *GlobalMemory) load(ctx context.Context) (*types.GlobalMemoryDoc, error) {
	if doc, ok := g.cache.get(g.cfg.DocKey); ok {
		return doc, nil
	}

	raw, found, err := g.store.Get(ctx, g.cfg.DocKey)
	if err != nil {
		return nil, globalErrors.NewWithCause(ErrStoreReadFailed, err)
	}
	if !found {
		doc := emptyDoc()
		g.cache.set(g.cfg.DocKey, doc)
		return doc, nil
	}

	var doc types.GlobalMemoryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		logx.Errorf("globalmemory: corrupt document, starting empty: %v", err)
		doc = *emptyDoc()
	}
	if doc.DomainKnowledge == nil {
		doc.DomainKnowledge = make(map[string]types.DomainEntry)
	}
	g.cache.set(g.cfg.DocKey, &doc)
	return &doc, nil
}

// persist writes doc to the backing store and refreshes the cache,
// ensuring readers never observe a partially updated document (spec §5).
func (g *GlobalMemory) persist(ctx context.Context, doc *types.GlobalMemoryDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return globalErrors.NewWithCause(ErrStoreWriteFailed, err)
	}
	if err := g.store.Put(ctx, g.cfg.DocKey, data); err != nil {
		return globalErrors.NewWithCause(ErrStoreWriteFailed, err)
	}
	g.cache.set(g.cfg.DocKey, doc)
	g.cache.adjust(doc.Stats.UpdatesLast24h)
	return nil
}

// GetGlobalMemoryContext returns the current document as-is (no
// sensitivity filtering — callers doing enrichment should use
// EnrichContextWithGlobalMemory instead).
func (g *GlobalMemory) GetGlobalMemoryContext(ctx context.Context) (*types.GlobalMemoryDoc, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load(ctx)
}

// GetGlobalMemoryStats reports the document's stats block.
func (g *GlobalMemory) GetGlobalMemoryStats(ctx context.Context) (types.GlobalMemoryStats, error) {
	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		return types.GlobalMemoryStats{}, err
	}
	return doc.Stats, nil
}

func normalizeTopics(topics []string) map[string]bool {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return set
}

// EnrichContextWithGlobalMemory selects relevant entities and topics from
// the global document and attaches them to ctx under GlobalMemory, per the
// relevance formula and sensitivity gate of spec §4.6.
func (g *GlobalMemory) EnrichContextWithGlobalMemory(ctx context.Context, cm *types.ContextMap, opts EnrichOptions) (*types.ContextMap, error) {
	doc, err := g.GetGlobalMemoryContext(ctx)
	if err != nil {
		return cm, err
	}

	allowed := opts.AuthorizedAccessLevel
	if allowed == "" {
		allowed = types.SensitivityPublic
	}

	currentTopics := normalizeTopics(opts.CurrentTopics)
	for _, t := range cm.Topics {
		currentTopics[strings.ToLower(t.Name)] = true
	}

	existingEntities := make(map[string]bool, len(cm.Entities))
	for _, e := range cm.Entities {
		existingEntities[e.Key()] = true
	}

	contextEmbedding := g.contextEmbedding(ctx, cm, currentTopics)

	type scoredEntity struct {
		entity    types.Entity
		relevance float64
	}
	var candidates []scoredEntity
	for _, e := range doc.Entities {
		if existingEntities[e.Key()] {
			continue
		}
		if !isAllowed(e.SensitivityLevel, allowed) {
			continue
		}
		candidates = append(candidates, scoredEntity{e, g.entityRelevance(e, contextEmbedding, currentTopics)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].relevance > candidates[j].relevance })
	if len(candidates) > 10 {
		candidates = candidates[:10]
	}
	selectedEntities := make([]types.Entity, len(candidates))
	for i, c := range candidates {
		selectedEntities[i] = c.entity
	}

	type scoredTopic struct {
		topic     types.Topic
		relevance float64
	}
	var topicCandidates []scoredTopic
	for _, t := range doc.Topics {
		topicCandidates = append(topicCandidates, scoredTopic{t, g.topicRelevance(t, contextEmbedding)})
	}
	sort.Slice(topicCandidates, func(i, j int) bool { return topicCandidates[i].relevance > topicCandidates[j].relevance })
	if len(topicCandidates) > 5 {
		topicCandidates = topicCandidates[:5]
	}
	selectedTopics := make([]types.Topic, len(topicCandidates))
	for i, c := range topicCandidates {
		selectedTopics[i] = c.topic
	}

	domain := make(map[string]interface{})
	for name, entry := range doc.DomainKnowledge {
		if currentTopics[strings.ToLower(name)] {
			domain[name] = entry
		}
	}

	cm.GlobalMemory = &types.GlobalMemoryView{
		Entities:        selectedEntities,
		Topics:          selectedTopics,
		DomainKnowledge: domain,
	}
	return cm, nil
}

func (g *GlobalMemory) contextEmbedding(ctx context.Context, cm *types.ContextMap, currentTopics map[string]bool) semanticx.Vector {
	if g.semantic == nil {
		return nil
	}
	if vec, err := g.semantic.Embed(ctx, cm.CurrentMessage); err == nil && len(vec) > 0 {
		return vec
	}
	topicNames := make([]string, 0, len(currentTopics))
	for t := range currentTopics {
		topicNames = append(topicNames, t)
	}
	vec, err := g.semantic.Embed(ctx, strings.Join(topicNames, " "))
	if err != nil {
		return nil
	}
	return vec
}

func temporalFactor(lastSeen time.Time) float64 {
	days := time.Since(lastSeen).Hours() / 24
	if days <= decayAgeThresholdDays {
		return 1
	}
	return math.Pow(0.98, (days-decayAgeThresholdDays)/7)
}

func (g *GlobalMemory) entityRelevance(e types.Entity, contextEmbedding semanticx.Vector, currentTopics map[string]bool) float64 {
	temporal := temporalFactor(e.LastSeen)

	var semantic float64
	if g.semantic != nil && len(contextEmbedding) > 0 && len(e.Embedding) > 0 {
		semantic = g.semantic.Similarity(contextEmbedding, semanticx.Vector(e.Embedding))
	}
	if semantic == 0 {
		return float64(e.Occurrences) * e.Confidence
	}
	return 0.4*temporal + 0.6*semantic
}

func (g *GlobalMemory) topicRelevance(t types.Topic, contextEmbedding semanticx.Vector) float64 {
	temporal := temporalFactor(t.LastSeen)

	var semantic float64
	if g.semantic != nil && len(contextEmbedding) > 0 && len(t.Embedding) > 0 {
		semantic = g.semantic.Similarity(contextEmbedding, semanticx.Vector(t.Embedding))
	}
	if semantic == 0 {
		return float64(t.Occurrences) * t.Confidence
	}
	return 0.3*temporal + 0.7*semantic
}

// UpdateGlobalMemory folds newly observed entities/topics from a turn into
// the global document, per the merge rules of spec §4.6. Returns whether
// the update was applied.
func (g *GlobalMemory) UpdateGlobalMemory(ctx context.Context, cm *types.ContextMap, userMessage, botResponse string, conversationID kernel.ConversationID, opts UpdateOptions) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := g.load(ctx)
	if err != nil {
		return false, err
	}

	now := time.Now()

	entityIdx := make(map[string]int, len(doc.Entities))
	for i, e := range doc.Entities {
		entityIdx[e.Key()] = i
	}

	for _, incoming := range cm.Entities {
		override, hasOverride := opts.EntitySensitivity[strings.ToLower(incoming.Name)]
		var overridePtr *types.SensitivityLevel
		if hasOverride {
			overridePtr = &override
		}
		sensitivity := classifySensitivity(incoming.Name, incoming.Description, incoming.Type, overridePtr)

		key := incoming.Key()
		if idx, ok := entityIdx[key]; ok {
			existing := doc.Entities[idx]
			existing.Occurrences++
			if incoming.Confidence > existing.Confidence {
				existing.Confidence = incoming.Confidence
			}
			existing.LastSeen = now
			if existing.Description == "" {
				existing.Description = incoming.Description
			}
			if len(incoming.Embedding) > 0 {
				existing.Embedding = incoming.Embedding
			}
			existing.SensitivityLevel = existing.SensitivityLevel.MoreRestrictive(sensitivity)
			doc.Entities[idx] = existing
		} else {
			incoming.Occurrences = 1
			incoming.FirstSeen = now
			incoming.LastSeen = now
			incoming.SensitivityLevel = sensitivity
			doc.Entities = append(doc.Entities, incoming)
			entityIdx[key] = len(doc.Entities) - 1
		}
	}

	topicIdx := make(map[string]int, len(doc.Topics))
	for i, t := range doc.Topics {
		topicIdx[t.Key()] = i
	}
	for _, incoming := range cm.Topics {
		key := incoming.Key()
		if idx, ok := topicIdx[key]; ok {
			existing := doc.Topics[idx]
			weight := 1.0 / float64(existing.Occurrences+1)
			existing.Confidence = existing.Confidence*(1-weight) + incoming.Confidence*weight
			existing.Occurrences++
			existing.LastSeen = now
			if len(incoming.Embedding) > 0 {
				existing.Embedding = incoming.Embedding
			}
			doc.Topics[idx] = existing
		} else {
			incoming.Occurrences = 1
			incoming.FirstSeen = now
			incoming.LastSeen = now
			doc.Topics = append(doc.Topics, incoming)
			topicIdx[key] = len(doc.Topics) - 1
		}
	}

	sort.Slice(doc.Entities, func(i, j int) bool { return doc.Entities[i].Confidence > doc.Entities[j].Confidence })
	if len(doc.Entities) > g.cfg.MaxEntities {
		doc.Entities = doc.Entities[:g.cfg.MaxEntities]
	}
	sort.Slice(doc.Topics, func(i, j int) bool { return doc.Topics[i].Confidence > doc.Topics[j].Confidence })
	if len(doc.Topics) > g.cfg.MaxTopics {
		doc.Topics = doc.Topics[:g.cfg.MaxTopics]
	}

	doc.Stats.TotalUpdates++
	doc.Stats.UpdatesLast24h++
	if !containsConversation(doc.Stats.ConversationIDs, conversationID) {
		doc.Stats.ConversationIDs = append(doc.Stats.ConversationIDs, conversationID)
		doc.Stats.TotalConversations = len(doc.Stats.ConversationIDs)
	}
	doc.LastUpdated = now

	if err := g.persist(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

func containsConversation(ids []kernel.ConversationID, id kernel.ConversationID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// ResetGlobalMemory snapshots the current document to a backup file, then
// replaces it with an empty one.
func (g *GlobalMemory) ResetGlobalMemory(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := g.load(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return globalErrors.NewWithCause(ErrBackupFailed, err)
	}
	ts := time.Now().Format("20060102T150405")
	if err := g.store.Put(ctx, "backups/memory_backup_"+ts, data); err != nil {
		return globalErrors.NewWithCause(ErrBackupFailed, err)
	}

	return g.persist(ctx, emptyDoc())
}

// PerformMaintenance applies decay and pruning per spec §4.6, called every
// 12 hours by the MaintenanceScheduler.
func (g *GlobalMemory) PerformMaintenance(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := g.load(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	keptEntities := doc.Entities[:0]
	for _, e := range doc.Entities {
		days := now.Sub(e.LastSeen).Hours() / 24
		if days > decayAgeThresholdDays {
			e.Confidence *= math.Pow(g.cfg.DecayFactor, days/7)
		}
		if e.Confidence < 0.1 || e.Occurrences < g.cfg.MinEntityOccurrences {
			continue
		}
		keptEntities = append(keptEntities, e)
	}
	doc.Entities = keptEntities

	keptTopics := doc.Topics[:0]
	for _, t := range doc.Topics {
		days := now.Sub(t.LastSeen).Hours() / 24
		if days > decayAgeThresholdDays {
			t.Confidence *= math.Pow(g.cfg.DecayFactor, days/7)
		}
		if t.Confidence < 0.1 {
			continue
		}
		keptTopics = append(keptTopics, t)
	}
	doc.Topics = keptTopics

	if len(doc.Stats.ConversationIDs) > 1000 {
		doc.Stats.ConversationIDs = doc.Stats.ConversationIDs[len(doc.Stats.ConversationIDs)-1000:]
	}
	doc.Stats.UpdatesLast24h = 0
	doc.LastMaintenance = &now

	return g.persist(ctx, doc)
}

// ProvideFeedback adjusts an entity's confidence based on user-reported
// correctness and records a before/after snapshot plus a metrics event,
// per spec §4.6.
func (g *GlobalMemory) ProvideFeedback(ctx context.Context, entityName string, entityType types.EntityType, feedback FeedbackInput) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := g.load(ctx)
	if err != nil {
		return err
	}

	key := strings.ToLower(strings.TrimSpace(entityName)) + "\x00" + string(entityType)
	idx := -1
	for i, e := range doc.Entities {
		if e.Key() == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return globalErrors.New(ErrEntityNotFound)
	}

	before := doc.Entities[idx]
	after := before

	if !feedback.IsCorrect {
		if feedback.CorrectedDescription != "" {
			after.Description = feedback.CorrectedDescription
		}
		if feedback.CorrectedConfidence != nil {
			after.Confidence = *feedback.CorrectedConfidence
		} else {
			after.Confidence *= 0.7
		}
	} else {
		after.Confidence *= 1.2
		if after.Confidence > 1 {
			after.Confidence = 1
		}
	}
	doc.Entities[idx] = after

	if err := g.persist(ctx, doc); err != nil {
		return err
	}

	helpful := feedback.IsCorrect
	if g.metrics != nil {
		_ = g.metrics.Record(ctx, "feedback", string(entityType), &helpful, map[string]interface{}{
			"entity":          entityName,
			"beforeConfidence": before.Confidence,
			"afterConfidence":  after.Confidence,
			"userComment":      feedback.UserComment,
		})
	}
	return nil
}
