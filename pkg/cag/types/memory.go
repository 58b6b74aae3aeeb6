package types

import (
	"time"

	"github.com/trigoo007/cagcore/pkg/kernel"
)

// MemoryItem is one (user turn, bot turn) pair plus the metadata extracted
// from it, the unit of storage in a MemoryStore.
type MemoryItem struct {
	ID                 string     `json:"id"`
	UserMessage        string     `json:"userMessage"`
	BotResponse        string     `json:"botResponse"`
	Entities           []Entity   `json:"entities,omitempty"`
	Topics             []Topic    `json:"topics,omitempty"`
	Sentiment          *Sentiment `json:"sentiment,omitempty"`
	Intent             *Intent    `json:"intent,omitempty"`
	Language           *Language  `json:"language,omitempty"`
	IsFollowUp         *bool      `json:"isFollowUp,omitempty"`
	RelevantDocuments  []string   `json:"relevantDocuments,omitempty"`
	Timestamp          time.Time  `json:"timestamp"`
	Relevance          float64    `json:"relevance"`
	AccessCount        int        `json:"accessCount"`
	LastAccessed       time.Time  `json:"lastAccessed"`
	PromotedAt         *time.Time `json:"promotedAt,omitempty"`
}

// Memory is the per-conversation short/long-term memory document.
type Memory struct {
	ConversationID kernel.ConversationID `json:"conversationId"`
	UserID         *kernel.UserID        `json:"userId,omitempty"`
	ShortTerm      []MemoryItem          `json:"shortTerm"`
	LongTerm       []MemoryItem          `json:"longTerm"`
	LastAccessed   time.Time             `json:"lastAccessed"`
	ItemCount      int                   `json:"itemCount"`
}

// GlobalMemoryStats tracks aggregate activity across all conversations.
type GlobalMemoryStats struct {
	TotalUpdates      int                     `json:"totalUpdates"`
	TotalConversations int                    `json:"totalConversations"`
	ConversationIDs   []kernel.ConversationID `json:"conversationIds"`
	UpdatesLast24h    int                     `json:"updatesLast24h"`
}

// GlobalMemoryDoc is the process-wide singleton document shared across all
// conversations: aggregated entities, topics and domain knowledge.
type GlobalMemoryDoc struct {
	Entities        []Entity                `json:"entities"`
	Topics          []Topic                 `json:"topics"`
	DomainKnowledge map[string]DomainEntry  `json:"domainKnowledge"`
	LastUpdated     time.Time               `json:"lastUpdated"`
	LastMaintenance *time.Time              `json:"lastMaintenance,omitempty"`
	Stats           GlobalMemoryStats       `json:"stats"`
}

// DomainEntry is a free-form bucket of accumulated domain knowledge keyed
// by a topic-matched domain name (e.g. "programming", "health").
type DomainEntry struct {
	Facts     []string  `json:"facts,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
