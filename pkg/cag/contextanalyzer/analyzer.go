// Package contextanalyzer builds the per-message ContextMap: semantic
// extraction (entities, topics, intent, sentiment, language, structure),
// follow-up/reference detection, memory attachment and document
// enrichment. It never persists a ContextMap to disk or takes locks —
// that lifecycle belongs to the context manager layer, which is the one
// import-safe place for it (see pkg/cag/collab's package doc).
package contextanalyzer

import (
	"context"
	"time"

	"github.com/trigoo007/cagcore/pkg/asyncx"
	"github.com/trigoo007/cagcore/pkg/cag/cache"
	"github.com/trigoo007/cagcore/pkg/cag/collab"
	"github.com/trigoo007/cagcore/pkg/cag/entities"
	"github.com/trigoo007/cagcore/pkg/cag/memory"
	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"
	"github.com/trigoo007/cagcore/pkg/semanticx"

	"github.com/google/uuid"
)

const historyRetryAttempts = 3
const historyRetryBaseDelay = 300 * time.Millisecond

// Stats summarizes analyzer-level operational counters.
type Stats struct {
	Cache     cache.Stats
	Contexts  int
}

// Analyzer wires the extraction pipeline's collaborators: an entity
// extractor, the semantic analysis cache, the two external
// collaborators (conversation history and documents), the conversation
// memory store, and a semantic embedding service.
type Analyzer struct {
	Entities     *entities.Extractor
	Cache        *cache.Cache
	Conversations collab.ConversationStore
	Documents    collab.DocumentProcessor
	Memory       *memory.Store
	Semantic     semanticx.Service

	SimilarityThreshold float64

	seenMu   chan struct{}
	seenSet  map[kernel.ConversationID]bool
}

// New builds an Analyzer. similarityThreshold should come from
// config.SemanticConfig.SimilarityThreshold.
func New(extractor *entities.Extractor, analysisCache *cache.Cache, conversations collab.ConversationStore, documents collab.DocumentProcessor, mem *memory.Store, semantic semanticx.Service, similarityThreshold float64) *Analyzer {
	return &Analyzer{
		Entities:            extractor,
		Cache:               analysisCache,
		Conversations:       conversations,
		Documents:           documents,
		Memory:              mem,
		Semantic:            semantic,
		SimilarityThreshold: similarityThreshold,
		seenMu:              make(chan struct{}, 1),
		seenSet:             make(map[kernel.ConversationID]bool),
	}
}

func (a *Analyzer) markSeen(id kernel.ConversationID) {
	a.seenMu <- struct{}{}
	defer func() { <-a.seenMu }()
	a.seenSet[id] = true
}

// AnalyzeMessage builds a ContextMap for a newly received user message:
// loads recent history (retried against transient collaborator
// failures), runs semantic extraction (cached by normalized message
// text), scores follow-up/reference signals, attaches short-term memory,
// and ranks available documents (spec §4.4). An empty message or a
// missing conversationId degrades gracefully to a minimal ContextMap
// rather than erroring.
func (a *Analyzer) AnalyzeMessage(ctx context.Context, conversationID kernel.ConversationID, userID kernel.UserID, message string) (*types.ContextMap, error) {
	if message == "" {
		return &types.ContextMap{CurrentMessage: ""}, nil
	}
	if conversationID.IsEmpty() {
		return &types.ContextMap{CurrentMessage: message}, nil
	}
	a.markSeen(conversationID)

	conv, err := asyncx.RetryWithBackoff(ctx, historyRetryAttempts, historyRetryBaseDelay, func(ctx context.Context) (collab.Conversation, error) {
		return a.Conversations.GetConversation(ctx, conversationID)
	})
	if err != nil {
		logx.Warnf("contextanalyzer: history load failed for %s: %v", conversationID, err)
		conv = collab.Conversation{ID: conversationID}
	}

	analysis, cacheHit := a.Cache.Get(ctx, message)
	if !cacheHit {
		analysis = a.runSemanticAnalysis(ctx, message)
		if err := a.Cache.Set(ctx, message, analysis); err != nil {
			logx.Warnf("contextanalyzer: cache write failed: %v", err)
		}
	}

	now := time.Now().UTC()
	cm := &types.ContextMap{
		CurrentMessage:   message,
		Timestamp:        now,
		ConversationID:   conversationID,
		LastUpdated:      now,
		RecentMessages:   conv.Messages,
		Entities:         analysis.Entities,
		Topics:           analysis.Topics,
		Intent:           analysis.Intent,
		Sentiment:        analysis.Sentiment,
		Language:         analysis.Language,
		MessageStructure: analysis.MessageStructure,
		QuestionType:     analysis.QuestionType,
	}

	cm.FollowUpScore = scoreFollowUp(message)
	cm.IsFollowUp = cm.FollowUpScore >= followUpThreshold
	cm.References = buildReferences(ctx, message, cm.IsFollowUp, conv.Messages, a.Semantic, a.SimilarityThreshold)

	if a.Memory != nil {
		if mem, err := a.Memory.GetMemory(ctx, conversationID); err != nil {
			logx.Warnf("contextanalyzer: memory load failed for %s: %v", conversationID, err)
		} else {
			cm.Memory = &types.MemoryView{ShortTerm: mem.ShortTerm, ItemCount: mem.ItemCount}
		}
	}

	if a.Documents != nil {
		docs, err := a.Documents.GetConversationDocuments(ctx, conversationID)
		if err != nil {
			logx.Warnf("contextanalyzer: document load failed for %s: %v", conversationID, err)
		} else {
			available, relevant := scoreDocuments(ctx, message, cm.Entities, cm.Topics, docs, a.Semantic)
			cm.AvailableDocuments = available
			cm.RelevantDocuments = relevant
		}
	}

	if !userID.IsEmpty() {
		cm.OwnerID = &userID
	}
	cm.VersionID = kernel.NewVersionID(uuid.NewString())
	cm.VersionTimestamp = now

	return cm, nil
}

// runSemanticAnalysis performs the full extraction pass: entities run
// through the (I/O-capable) extractor, everything else is pure text
// scoring and can run inline.
func (a *Analyzer) runSemanticAnalysis(ctx context.Context, message string) types.SemanticAnalysis {
	var ents []types.Entity
	if a.Entities != nil {
		var err error
		ents, err = a.Entities.ExtractEntities(ctx, message)
		if err != nil {
			logx.Warnf("contextanalyzer: entity extraction failed: %v", err)
		}
	}

	structure := classifyMessageStructure(message)
	intent := detectIntent(message)
	sentiment := analyzeSentiment(message)
	language := detectLanguage(message)
	questionType := classifyQuestionType(message, structure.IsQuestion)
	return types.SemanticAnalysis{
		Entities:         ents,
		Intent:           &intent,
		Topics:           extractTopics(message),
		Sentiment:        &sentiment,
		Language:         &language,
		MessageStructure: &structure,
		QuestionType:     &questionType,
	}
}

// UpdateAfterResponse folds a bot's response back into the conversation:
// extracts entities/topics from the response (in the detected language),
// merges them into the ContextMap, and records a MemoryItem for the turn.
func (a *Analyzer) UpdateAfterResponse(ctx context.Context, conversationID kernel.ConversationID, userID kernel.UserID, cm *types.ContextMap, userMessage, botResponse string) (*types.ContextMap, error) {
	if cm == nil {
		return nil, analyzerErrors.New(ErrMemoryUpdateFailed)
	}

	var responseEntities []types.Entity
	if a.Entities != nil {
		var err error
		responseEntities, err = a.Entities.ExtractEntities(ctx, botResponse)
		if err != nil {
			logx.Warnf("contextanalyzer: response entity extraction failed: %v", err)
		}
	}
	responseTopics := extractTopics(botResponse)

	cm.Entities = mergeEntities(cm.Entities, responseEntities)
	cm.Topics = mergeTopics(cm.Topics, responseTopics)
	cm.LastBotResponse = botResponse
	cm.LastUpdated = time.Now().UTC()

	if a.Memory != nil {
		item := types.MemoryItem{
			ID:          uuid.NewString(),
			UserMessage: userMessage,
			BotResponse: botResponse,
			Entities:    cm.Entities,
			Topics:      cm.Topics,
			Sentiment:   cm.Sentiment,
			Intent:      cm.Intent,
			Language:    cm.Language,
			IsFollowUp:  &cm.IsFollowUp,
			Timestamp:   time.Now().UTC(),
			Relevance:   1.0,
		}
		if cm.RelevantDocuments != nil {
			for _, d := range cm.RelevantDocuments {
				item.RelevantDocuments = append(item.RelevantDocuments, d.ID)
			}
		}
		_, err := asyncx.Retry(ctx, historyRetryAttempts, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, a.Memory.UpdateMemory(ctx, conversationID, item)
		})
		if err != nil {
			logx.Errorf("contextanalyzer: memory update failed for %s: %v", conversationID, err)
			return cm, analyzerErrors.NewWithCause(ErrMemoryUpdateFailed, err)
		}
	}

	return cm, nil
}

// GetStats reports the analyzer's cache hit rate and the number of
// distinct conversations seen since process start.
func (a *Analyzer) GetStats() Stats {
	a.seenMu <- struct{}{}
	n := len(a.seenSet)
	<-a.seenMu
	return Stats{Cache: a.Cache.Stats(), Contexts: n}
}

func mergeEntities(base, incoming []types.Entity) []types.Entity {
	byKey := make(map[string]types.Entity, len(base))
	order := make([]string, 0, len(base))
	for _, e := range base {
		byKey[e.Key()] = e
		order = append(order, e.Key())
	}
	for _, e := range incoming {
		if existing, ok := byKey[e.Key()]; ok {
			if e.Confidence > existing.Confidence {
				existing.Confidence = e.Confidence
			}
			byKey[e.Key()] = existing
			continue
		}
		byKey[e.Key()] = e
		order = append(order, e.Key())
	}
	out := make([]types.Entity, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func mergeTopics(base, incoming []types.Topic) []types.Topic {
	byKey := make(map[string]types.Topic, len(base))
	order := make([]string, 0, len(base))
	for _, t := range base {
		byKey[t.Key()] = t
		order = append(order, t.Key())
	}
	for _, t := range incoming {
		if existing, ok := byKey[t.Key()]; ok {
			existing.Occurrences += t.Occurrences
			if t.Confidence > existing.Confidence {
				existing.Confidence = t.Confidence
			}
			existing.LastSeen = t.LastSeen
			byKey[t.Key()] = existing
			continue
		}
		byKey[t.Key()] = t
		order = append(order, t.Key())
	}
	out := make([]types.Topic, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}
