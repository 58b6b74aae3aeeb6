package types

import (
	"time"

	"github.com/trigoo007/cagcore/pkg/kernel"
)

// ConversationMessage is one turn of stored conversation history, as
// reported by the ConversationStore collaborator.
type ConversationMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DocumentRef is summary-level metadata about a document available to a
// conversation, as reported by the DocumentProcessor collaborator.
type DocumentRef struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Summary string  `json:"summary,omitempty"`
	Content string  `json:"-"` // not serialized into ContextMap; used only to compute relevance
}

// RelevantDocument is a DocumentRef scored against the current message.
type RelevantDocument struct {
	DocumentRef
	Relevance float64 `json:"relevance"`
}

// MemoryView is the slice of Memory exposed inside a ContextMap: recent
// short-term items plus a hint of long-term size, not the full store.
type MemoryView struct {
	ShortTerm []MemoryItem `json:"shortTerm"`
	ItemCount int          `json:"itemCount"`
}

// ContextMap is the per-conversation structured snapshot produced by the
// ContextAnalyzer and persisted/mutated by the ContextManager. Fields
// prefixed with an underscore are metadata never surfaced to the
// generation model.
type ContextMap struct {
	CurrentMessage string                 `json:"currentMessage"`
	Timestamp      time.Time              `json:"timestamp"`
	ConversationID kernel.ConversationID  `json:"conversationId,omitempty"`
	LastUpdated    time.Time              `json:"lastUpdated"`

	RecentMessages []ConversationMessage `json:"recentMessages,omitempty"`

	Entities         []Entity          `json:"entities,omitempty"`
	Topics           []Topic           `json:"topics,omitempty"`
	Intent           *Intent           `json:"intent,omitempty"`
	Sentiment        *Sentiment        `json:"sentiment,omitempty"`
	Language         *Language         `json:"language,omitempty"`
	MessageStructure *MessageStructure `json:"messageStructure,omitempty"`
	QuestionType     *QuestionType     `json:"questionType,omitempty"`

	IsFollowUp    bool        `json:"isFollowUp"`
	FollowUpScore float64     `json:"followUpScore"`
	References    []Reference `json:"references,omitempty"`

	Memory             *MemoryView        `json:"memory,omitempty"`
	AvailableDocuments []DocumentRef      `json:"availableDocuments,omitempty"`
	RelevantDocuments  []RelevantDocument `json:"relevantDocuments,omitempty"`

	LastBotResponse string           `json:"lastBotResponse,omitempty"`
	GlobalMemory    *GlobalMemoryView `json:"globalMemory,omitempty"`

	OwnerID          *kernel.UserID    `json:"_ownerId,omitempty"`
	AuthorizedUsers  []kernel.UserID   `json:"_authorizedUsers,omitempty"`
	IsFragmented     bool              `json:"_isFragmented,omitempty"`
	VersionID        kernel.VersionID  `json:"_versionId,omitempty"`
	VersionTimestamp time.Time         `json:"_versionTimestamp,omitempty"`
}

// GlobalMemoryView is the slice of GlobalMemoryDoc injected into a
// ContextMap at enrichment time — entities/topics selected as relevant,
// never the whole document.
type GlobalMemoryView struct {
	Entities        []Entity               `json:"entities,omitempty"`
	Topics          []Topic                `json:"topics,omitempty"`
	DomainKnowledge map[string]interface{} `json:"domainKnowledge,omitempty"`
}

// Clone returns a deep-enough copy of the context map for safe concurrent
// read access while a writer holds the lock and mutates the original.
func (c *ContextMap) Clone() *ContextMap {
	if c == nil {
		return nil
	}
	cp := *c
	cp.RecentMessages = append([]ConversationMessage(nil), c.RecentMessages...)
	cp.Entities = append([]Entity(nil), c.Entities...)
	cp.Topics = append([]Topic(nil), c.Topics...)
	cp.References = append([]Reference(nil), c.References...)
	cp.AvailableDocuments = append([]DocumentRef(nil), c.AvailableDocuments...)
	cp.RelevantDocuments = append([]RelevantDocument(nil), c.RelevantDocuments...)
	cp.AuthorizedUsers = append([]kernel.UserID(nil), c.AuthorizedUsers...)
	return &cp
}

// CanWrite reports whether userID may mutate or delete ctx, per the
// ownership/authorized-users policy: unset owner means unrestricted.
func (c *ContextMap) CanWrite(userID kernel.UserID) bool {
	if c.OwnerID == nil || userID.IsEmpty() {
		return true
	}
	if *c.OwnerID == userID {
		return true
	}
	for _, u := range c.AuthorizedUsers {
		if u == userID {
			return true
		}
	}
	return false
}
