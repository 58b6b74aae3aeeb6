package contextanalyzer

import (
	"context"
	"testing"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/semanticx"
)

func TestScoreFollowUp_DirectResponseHighestSignal(t *testing.T) {
	score := scoreFollowUp("sí, por favor")
	if score < followUpThreshold {
		t.Fatalf("expected score above threshold, got %v", score)
	}
}

func TestScoreFollowUp_TakesMaxNotSum(t *testing.T) {
	// "y eso" is short (<=5 words, 0.3), starts with a conjunction (0.7),
	// and contains a pronoun (0.5): the max must win, not the sum.
	score := scoreFollowUp("y eso")
	if score != 0.7 {
		t.Fatalf("expected max signal 0.7, got %v", score)
	}
}

func TestScoreFollowUp_FreshTopicScoresLow(t *testing.T) {
	score := scoreFollowUp("quiero aprender sobre historia del arte renacentista europeo")
	if score >= followUpThreshold {
		t.Fatalf("expected a fresh topic to score below threshold, got %v", score)
	}
}

func TestScoreFollowUp_ConjunctionAfterInvertedQuestionMark(t *testing.T) {
	// The conjunction anchor must still fire once the leading "¿" is
	// stripped, or a message like this never reaches the threshold.
	score := scoreFollowUp("¿Y cómo funciona?")
	if score < followUpThreshold {
		t.Fatalf("expected the conjunction signal to clear the threshold, got %v", score)
	}
}

// fakeSemantic is a deterministic stand-in for semanticx.Service: each
// distinct text maps to a fixed vector so similarity is controllable.
type fakeSemantic struct {
	vectors map[string]semanticx.Vector
}

func (f *fakeSemantic) Embed(ctx context.Context, text string) (semanticx.Vector, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return semanticx.Vector{0, 0, 1}, nil
}

func (f *fakeSemantic) BatchEmbed(ctx context.Context, texts []string) ([]semanticx.Vector, error) {
	out := make([]semanticx.Vector, len(texts))
	for i, t := range texts {
		v, _ := f.Embed(ctx, t)
		out[i] = v
	}
	return out, nil
}

func (f *fakeSemantic) Similarity(v1, v2 semanticx.Vector) float64 {
	return semanticx.Cosine(v1, v2)
}

func TestBuildReferences_DirectPronounReference(t *testing.T) {
	recent := []types.ConversationMessage{
		{Role: "user", Content: "cuéntame sobre Go"},
		{Role: "assistant", Content: "Go es un lenguaje de programación"},
	}
	refs := buildReferences(context.Background(), "eso me interesa", true, recent, nil, 0.75)
	if len(refs) == 0 {
		t.Fatal("expected at least one reference")
	}
	if refs[0].Type != types.ReferenceContextual {
		t.Fatalf("expected contextual reference first, got %+v", refs[0])
	}
}

func TestBuildReferences_SemanticReferenceAboveBar(t *testing.T) {
	sem := &fakeSemantic{vectors: map[string]semanticx.Vector{
		"más detalles":    {1, 0, 0},
		"hablemos de Go":  {1, 0, 0},
		"el clima de hoy": {0, 1, 0},
	}}
	recent := []types.ConversationMessage{
		{Content: "hablemos de Go"},
		{Content: "el clima de hoy"},
	}
	refs := buildReferences(context.Background(), "más detalles", false, recent, sem, 0.8)
	if len(refs) == 0 {
		t.Fatal("expected a semantic reference")
	}
	if refs[0].MessageIndex != 0 {
		t.Fatalf("expected the similar turn (index 0) to be referenced, got %+v", refs[0])
	}
}

func TestBuildReferences_DedupedByMessageIndex(t *testing.T) {
	recent := []types.ConversationMessage{
		{Content: "cuéntame sobre Go"},
	}
	refs := buildReferences(context.Background(), "eso", true, recent, nil, 0.75)
	seen := map[int]bool{}
	for _, r := range refs {
		if seen[r.MessageIndex] {
			t.Fatalf("duplicate message index %d in references", r.MessageIndex)
		}
		seen[r.MessageIndex] = true
	}
}

func TestBuildReferences_CappedAtThree(t *testing.T) {
	sem := &fakeSemantic{vectors: map[string]semanticx.Vector{}}
	recent := make([]types.ConversationMessage, 6)
	for i := range recent {
		recent[i] = types.ConversationMessage{Content: "turno"}
	}
	sem.vectors["turno"] = semanticx.Vector{1, 0}
	sem.vectors["pregunta"] = semanticx.Vector{1, 0}
	refs := buildReferences(context.Background(), "pregunta", false, recent, sem, 0.1)
	if len(refs) > 3 {
		t.Fatalf("expected at most 3 references, got %d", len(refs))
	}
}
