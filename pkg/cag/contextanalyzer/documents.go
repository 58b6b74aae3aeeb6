package contextanalyzer

import (
	"context"
	"sort"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/semanticx"
)

const (
	documentRelevanceFloor   = 0.1
	maxRelevantDocuments     = 3
	documentContentSampleLen = 5000
)

// scoreDocuments ranks the conversation's available documents against the
// current message and its extracted entities/topics. Relevance blends
// semantic similarity over the document's first 5000 characters with
// small bonuses for entity-name and topic-keyword overlap (spec §4.4c).
// All available documents are returned alongside the top-3 ranked by
// relevance above the floor.
func scoreDocuments(ctx context.Context, message string, entities []types.Entity, topics []types.Topic, docs []types.DocumentRef, semantic semanticx.Service) ([]types.DocumentRef, []types.RelevantDocument) {
	available := make([]types.DocumentRef, len(docs))
	copy(available, docs)
	for i := range available {
		available[i].Content = ""
	}

	if len(docs) == 0 {
		return available, nil
	}

	var msgVec semanticx.Vector
	if semantic != nil {
		msgVec, _ = semantic.Embed(ctx, message)
	}

	lowerMsg := strings.ToLower(message)

	var ranked []types.RelevantDocument
	for _, doc := range docs {
		sample := doc.Content
		if len(sample) > documentContentSampleLen {
			sample = sample[:documentContentSampleLen]
		}

		var cosine float64
		if semantic != nil && len(msgVec) > 0 && sample != "" {
			docVec, err := semantic.Embed(ctx, sample)
			if err == nil && len(docVec) > 0 {
				cosine = semantic.Similarity(msgVec, docVec)
			}
		}

		entityBoost := entityOverlapBoost(sample, entities)
		topicBoost := topicOverlapBoost(lowerMsg, sample, topics)

		relevance := 0.6*cosine + 0.2*entityBoost + 0.15*topicBoost
		if relevance <= documentRelevanceFloor {
			continue
		}

		ref := doc
		ref.Content = ""
		ranked = append(ranked, types.RelevantDocument{DocumentRef: ref, Relevance: relevance})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Relevance > ranked[j].Relevance })
	if len(ranked) > maxRelevantDocuments {
		ranked = ranked[:maxRelevantDocuments]
	}
	return available, ranked
}

func entityOverlapBoost(sample string, entities []types.Entity) float64 {
	if sample == "" || len(entities) == 0 {
		return 0
	}
	lower := strings.ToLower(sample)
	hits := 0
	for _, e := range entities {
		if strings.Contains(lower, strings.ToLower(e.Name)) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	boost := float64(hits) / float64(len(entities))
	if boost > 1 {
		boost = 1
	}
	return boost
}

func topicOverlapBoost(lowerMsg, sample string, topics []types.Topic) float64 {
	if sample == "" || len(topics) == 0 {
		return 0
	}
	lowerSample := strings.ToLower(sample)
	hits := 0
	for _, t := range topics {
		kws, ok := topicTaxonomy[t.Name]
		if !ok {
			continue
		}
		for _, kw := range kws {
			if strings.Contains(lowerSample, kw) {
				hits++
				break
			}
		}
	}
	if hits == 0 {
		return 0
	}
	boost := float64(hits) / float64(len(topics))
	if boost > 1 {
		boost = 1
	}
	return boost
}
