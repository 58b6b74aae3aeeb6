package contextanalyzer

import (
	"testing"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

func TestAnalyzeSentiment_Positive(t *testing.T) {
	s := analyzeSentiment("esto es excelente, me encanta, qué bueno")
	if s.Label != types.SentimentPositive {
		t.Fatalf("expected positive, got %s (score=%v)", s.Label, s.Score)
	}
	if s.Score <= 0 {
		t.Fatalf("expected positive score, got %v", s.Score)
	}
}

func TestAnalyzeSentiment_Negative(t *testing.T) {
	s := analyzeSentiment("esto es terrible y horrible, odio esto")
	if s.Label != types.SentimentNegative {
		t.Fatalf("expected negative, got %s", s.Label)
	}
}

func TestAnalyzeSentiment_UrgentTakesPriorityOverPositive(t *testing.T) {
	s := analyzeSentiment("esto es genial pero lo necesito ya, es urgente")
	if s.Label != types.SentimentUrgent {
		t.Fatalf("expected urgent to take priority, got %s", s.Label)
	}
}

func TestAnalyzeSentiment_ConfusedBeatsAnxious(t *testing.T) {
	s := analyzeSentiment("no entiendo esto, estoy preocupado")
	if s.Label != types.SentimentConfused {
		t.Fatalf("expected confused to take priority, got %s", s.Label)
	}
}

func TestAnalyzeSentiment_Neutral(t *testing.T) {
	s := analyzeSentiment("voy a la tienda a comprar pan")
	if s.Label != types.SentimentNeutral {
		t.Fatalf("expected neutral, got %s", s.Label)
	}
}

func TestAnalyzeSentiment_EmptyMessage(t *testing.T) {
	s := analyzeSentiment("")
	if s.Label != types.SentimentNeutral || s.Score != 0 {
		t.Fatalf("expected zero-value neutral sentiment, got %+v", s)
	}
}

func TestAnalyzeSentiment_ScoreClampedToUnitRange(t *testing.T) {
	s := analyzeSentiment("bien bueno excelente genial increíble perfecto feliz contento")
	if s.Score > 1 || s.Score < -1 {
		t.Fatalf("score out of range: %v", s.Score)
	}
	if s.Intensity < 0.5 || s.Intensity > 1 {
		t.Fatalf("intensity out of range: %v", s.Intensity)
	}
}

func TestAnalyzeSentiment_StatsPopulated(t *testing.T) {
	s := analyzeSentiment("esto es malo y terrible")
	if s.Stats.NegativeWords == 0 {
		t.Fatalf("expected negative word count in stats, got %+v", s.Stats)
	}
	if s.Stats.TotalTokens == 0 {
		t.Fatalf("expected total tokens counted, got %+v", s.Stats)
	}
}
