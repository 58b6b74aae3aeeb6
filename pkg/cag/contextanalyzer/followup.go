package contextanalyzer

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/semanticx"
)

// semanticReferenceFactor is applied to the configured similarity
// threshold to derive the (lower) bar for a reference being worth
// surfacing, versus the (higher) bar for two messages being "the same
// topic" used elsewhere.
const semanticReferenceFactor = 0.7

var (
	pronounRe       = regexp.MustCompile(`(?i)\b(eso|esto|aquello|ello|él|ella|ellos|ellas|lo|la|los|las)\b`)
	sequentialRe    = regexp.MustCompile(`(?i)\b(entonces|después|luego|y ahora|también|además)\b`)
	imperativeAckRe = regexp.MustCompile(`(?i)^\s*(ok|vale|entendido|de acuerdo|perfecto|claro)\b`)
	conjunctionRe   = regexp.MustCompile(`(?i)^\s*(y|pero|o|aunque|sin embargo)\b`)
	directResponseRe = regexp.MustCompile(`(?i)^\s*(sí|si|no|tal vez|quizás|claro que sí|claro que no)\b`)
)

// followUpThreshold is the minimum weighted signal score for a message
// to be considered a follow-up rather than a fresh topic (spec §4.4b).
const followUpThreshold = 0.7

// scoreFollowUp computes the weighted follow-up signal score for a
// message, taken as the strongest single signal rather than a sum —
// a message rarely carries more than one of these shapes at once.
func scoreFollowUp(message string) float64 {
	trimmed := strings.TrimSpace(message)
	stripped := stripLeadIn(trimmed)
	words := strings.Fields(trimmed)

	var best float64
	consider := func(v float64) {
		if v > best {
			best = v
		}
	}

	if pronounRe.MatchString(trimmed) {
		consider(0.5)
	}
	if sequentialRe.MatchString(trimmed) {
		consider(0.4)
	}
	if len(words) <= 5 {
		consider(0.3)
	}
	if imperativeAckRe.MatchString(stripped) {
		consider(0.6)
	}
	if conjunctionRe.MatchString(stripped) {
		consider(0.7)
	}
	if directResponseRe.MatchString(stripped) {
		consider(0.8)
	}
	return best
}

// buildReferences generates the reference list for a follow-up message:
// direct shape-based references into recent turns, plus semantic
// references into earlier turns whose embedding similarity clears
// 0.7×threshold. Results are deduped by message index, sorted by
// confidence descending, and capped at 3 (spec §4.4b).
func buildReferences(ctx context.Context, message string, isFollowUp bool, recent []types.ConversationMessage, semantic semanticx.Service, threshold float64) []types.Reference {
	var refs []types.Reference
	seen := make(map[int]bool)

	add := func(r types.Reference) {
		if seen[r.MessageIndex] {
			return
		}
		seen[r.MessageIndex] = true
		refs = append(refs, r)
	}

	if isFollowUp && len(recent) > 0 {
		words := strings.Fields(strings.TrimSpace(message))
		lastIdx := len(recent) - 1
		if len(words) <= 5 {
			add(types.Reference{MessageIndex: lastIdx, Confidence: 0.85, Type: types.ReferenceResponse})
		}
		if pronounRe.MatchString(message) {
			add(types.Reference{MessageIndex: lastIdx, Confidence: 0.75, Type: types.ReferenceContextual})
			if lastIdx > 0 {
				add(types.Reference{MessageIndex: lastIdx - 1, Confidence: 0.65, Type: types.ReferenceContextual})
			}
		}
	}

	if semantic != nil && len(recent) > 0 {
		msgVec, err := semantic.Embed(ctx, message)
		if err == nil && len(msgVec) > 0 {
			bar := semanticReferenceFactor * threshold
			for i, turn := range recent {
				turnVec, err := semantic.Embed(ctx, turn.Content)
				if err != nil || len(turnVec) == 0 {
					continue
				}
				sim := semantic.Similarity(msgVec, turnVec)
				if sim <= bar {
					continue
				}
				conf := sim + 0.1
				if conf > 0.9 {
					conf = 0.9
				}
				simCopy := sim
				add(types.Reference{MessageIndex: i, Confidence: conf, Type: types.ReferenceSemantic, Similarity: &simCopy})
			}
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Confidence > refs[j].Confidence })
	if len(refs) > 3 {
		refs = refs[:3]
	}
	return refs
}
