package collab

import "github.com/trigoo007/cagcore/pkg/errx"

var collabErrors = errx.NewRegistry("COLLAB")

var (
	ErrConversationNotFound = collabErrors.Register("CONVERSATION_NOT_FOUND", errx.TypeNotFound, 404, "conversation not found")
	ErrStorageFailure       = collabErrors.Register("STORAGE_FAILURE", errx.TypeExternal, 502, "collaborator storage failure")
)
