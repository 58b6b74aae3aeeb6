package types

// SemanticAnalysis is the cacheable slice of ContextMap produced by the
// ContextAnalyzer's semantic-extraction step (§4.4a): everything derived
// from the message text alone, independent of conversation history.
type SemanticAnalysis struct {
	Entities         []Entity          `json:"entities,omitempty"`
	Intent           *Intent           `json:"intent,omitempty"`
	Topics           []Topic           `json:"topics,omitempty"`
	Sentiment        *Sentiment        `json:"sentiment,omitempty"`
	Language         *Language         `json:"language,omitempty"`
	MessageStructure *MessageStructure `json:"messageStructure,omitempty"`
	QuestionType     *QuestionType     `json:"questionType,omitempty"`
}
