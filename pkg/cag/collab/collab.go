// Package collab defines the collaborator interfaces the core depends on
// but does not implement in production: conversation storage and document
// processing live outside this module's scope. Defining them here, at the
// manager layer, rather than in the analyzer or memory packages, breaks the
// cyclic reference those packages would otherwise have on each other.
package collab

import (
	"context"
	"time"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/kernel"
)

// Conversation is what the ConversationStore reports back for a given id.
type Conversation struct {
	ID       kernel.ConversationID        `json:"id"`
	Messages []types.ConversationMessage  `json:"messages"`
}

// ConversationStore is the external owner of conversation transcripts. The
// core only ever reads from it to seed recentMessages.
type ConversationStore interface {
	GetConversation(ctx context.Context, id kernel.ConversationID) (Conversation, error)
}

// DocumentProcessor is the external black-box that owns file upload and
// parsing (PDF, DOCX, XLSX, ...). The core only consumes already-parsed
// document text and a keyword search capability.
type DocumentProcessor interface {
	GetConversationDocuments(ctx context.Context, id kernel.ConversationID) ([]types.DocumentRef, error)
	SearchDocuments(ctx context.Context, id kernel.ConversationID, query string) ([]types.DocumentRef, error)
}

// Clock is injected wherever "now" is needed, so tests can control time
// without touching the system clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production Clock backed by time.Now.
var SystemClock Clock = systemClock{}
