package contextmanager

import "github.com/trigoo007/cagcore/pkg/cag/types"

// validationIssue is one deviation from the expected ContextMap shape.
// Unknown extra fields are never an issue — only missing/malformed
// required shape, per spec §4.7.
type validationIssue string

// validateContextMap checks the minimal required shape: a non-zero
// timestamp, a non-empty conversation id and a non-empty current message.
// The entity and topic slices are not checked.
func validateContextMap(cm *types.ContextMap) []validationIssue {
	var issues []validationIssue
	if cm == nil {
		return []validationIssue{"context map is nil"}
	}
	if cm.Timestamp.IsZero() {
		issues = append(issues, "timestamp is zero")
	}
	if cm.ConversationID.IsEmpty() {
		issues = append(issues, "conversationId is empty")
	}
	if cm.CurrentMessage == "" {
		issues = append(issues, "currentMessage is empty")
	}
	return issues
}
