package contextanalyzer

import (
	"math"
	"regexp"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

var (
	positiveWords = []string{
		"bien", "bueno", "buena", "excelente", "genial", "increíble", "perfecto", "me gusta",
		"feliz", "contento", "contenta", "encantado", "maravilloso", "fantástico", "me encanta",
	}
	negativeWords = []string{
		"mal", "malo", "mala", "terrible", "horrible", "pésimo", "odio", "no funciona",
		"triste", "molesto", "molesta", "enojado", "enojada", "frustrado", "frustrada", "decepcionado",
	}
	confusionWords  = []string{"no entiendo", "confundido", "confundida", "no comprendo", "no está claro", "qué significa"}
	urgencyWords    = []string{"urgente", "ya", "ahora mismo", "inmediatamente", "rápido", "cuanto antes", "es urgente"}
	anxietyWords    = []string{"preocupado", "preocupada", "ansioso", "ansiosa", "nervioso", "nerviosa", "miedo", "me preocupa"}
	gratitudeWords  = []string{"gracias", "te agradezco", "muchas gracias", "mil gracias", "agradecido", "agradecida"}
)

var directEmotionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bme siento\s+\w+`),
	regexp.MustCompile(`(?i)\bestoy\s+\w+`),
	regexp.MustCompile(`(?i)\bme hace sentir\s+\w+`),
}

// emoji ranges covering the common positive/negative faces block.
func emojiPolarity(message string) float64 {
	var score float64
	for _, r := range message {
		switch {
		case r >= 0x1F600 && r <= 0x1F60F, r == 0x1F642, r == 0x2764, r == 0x1F44D:
			score += 1.5
		case r >= 0x1F61E && r <= 0x1F62D, r == 0x1F44E:
			score -= 1.5
		}
	}
	return score
}

func countOccurrences(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(lower, w)
	}
	return n
}

// analyzeSentiment scores the message by weighted word-bag lookups plus
// an emoji pass and direct-emotion phrase bonus, then assigns a label by
// priority order: urgent, confused, anxious, gratitude, positive,
// negative, neutral (spec §4.4a).
func analyzeSentiment(message string) types.Sentiment {
	lower := strings.ToLower(message)
	words := strings.Fields(lower)
	total := len(words)
	if total == 0 {
		return types.Sentiment{Label: types.SentimentNeutral, Score: 0, Intensity: 0.5}
	}

	pos := countOccurrences(lower, positiveWords)
	neg := countOccurrences(lower, negativeWords)
	confusedHits := countOccurrences(lower, confusionWords)
	confused := confusedHits * 2
	urgent := countOccurrences(lower, urgencyWords)
	anxious := countOccurrences(lower, anxietyWords)
	grateful := countOccurrences(lower, gratitudeWords)

	stats := types.SentimentStats{
		PositiveWords:  pos,
		NegativeWords:  neg,
		ConfusionWords: confusedHits,
		UrgencyWords:   urgent,
		TotalTokens:    total,
	}

	score := (float64(pos) - float64(neg)) / math.Sqrt(float64(total))
	for _, re := range directEmotionPatterns {
		if re.MatchString(message) {
			score += 0.3 * sign(float64(pos)-float64(neg))
		}
	}
	score += emojiPolarity(message) / math.Sqrt(float64(total))

	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	var label types.SentimentLabel
	switch {
	case urgent > 0:
		label = types.SentimentUrgent
	case confused > 0:
		label = types.SentimentConfused
	case anxious > 0:
		label = types.SentimentAnxious
	case grateful > 0:
		label = types.SentimentGratitude
	case score > 0.15:
		label = types.SentimentPositive
	case score < -0.15:
		label = types.SentimentNegative
	default:
		label = types.SentimentNeutral
	}

	intensity := 0.5 + math.Abs(score)*0.5
	if intensity > 1 {
		intensity = 1
	}

	return types.Sentiment{Label: label, Score: score, Intensity: intensity, Stats: stats}
}

func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
