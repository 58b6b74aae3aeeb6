package memory

import (
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

// score computes the relevance of an incoming MemoryItem per spec §4.5:
// base 0.5, plus bonuses for entity richness, sentiment intensity/polarity
// and message length, clamped to [0, 1].
func score(item types.MemoryItem) float64 {
	relevance := 0.5

	entityBonus := float64(len(item.Entities)) * 0.05
	if entityBonus > 0.3 {
		entityBonus = 0.3
	}
	relevance += entityBonus

	if item.Sentiment != nil {
		if item.Sentiment.Intensity > 0.5 {
			relevance += 0.1
		}
		switch item.Sentiment.Label {
		case types.SentimentPositive:
			relevance += 0.1
		case types.SentimentNegative:
			relevance += 0.15
		case types.SentimentUrgent, types.SentimentConfused:
			relevance += 0.2
		}
	}

	var topicBonus float64
	for _, t := range item.Topics {
		if t.Confidence > 0.7 {
			topicBonus += 0.05
		}
	}
	if topicBonus > 0.2 {
		topicBonus = 0.2
	}
	relevance += topicBonus

	if wordCount(item.UserMessage) > 50 {
		relevance += 0.15
	}

	if relevance > 1 {
		relevance = 1
	}
	if relevance < 0 {
		relevance = 0
	}
	return relevance
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
