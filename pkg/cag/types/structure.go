package types

// MessageType classifies the grammatical/functional shape of a message.
type MessageType string

const (
	MessageQuestion  MessageType = "question"
	MessageCommand   MessageType = "command"
	MessageRequest   MessageType = "request"
	MessageCasual    MessageType = "casual"
	MessageStatement MessageType = "statement"
)

// Complexity buckets a message's structural complexity.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

type MessageStructure struct {
	Type          MessageType `json:"type"`
	IsQuestion    bool        `json:"isQuestion"`
	IsCommand     bool        `json:"isCommand"`
	IsRequest     bool        `json:"isRequest"`
	IsCasual      bool        `json:"isCasual"`
	Complexity    Complexity  `json:"complexity"`
	WordCount     int         `json:"wordCount"`
	SentenceCount int         `json:"sentenceCount"`
	ContainsCode  bool        `json:"containsCode"`
}

// QuestionTypeTag enumerates the recognized question categories.
type QuestionTypeTag string

const (
	QuestionFactual        QuestionTypeTag = "factual"
	QuestionExplanation    QuestionTypeTag = "explanation"
	QuestionProcedural     QuestionTypeTag = "procedural"
	QuestionOpinion        QuestionTypeTag = "opinion"
	QuestionComparison     QuestionTypeTag = "comparison"
	QuestionFuture         QuestionTypeTag = "future"
	QuestionRecommendation QuestionTypeTag = "recommendation"
	QuestionHypothetical   QuestionTypeTag = "hypothetical"
	QuestionClarification  QuestionTypeTag = "clarification"
	QuestionGeneral        QuestionTypeTag = "general_question"
	QuestionOther          QuestionTypeTag = "other"
)

type QuestionType struct {
	Type QuestionTypeTag `json:"type"`
}

// ReferenceType enumerates how a Reference ties back into earlier turns.
type ReferenceType string

const (
	ReferenceResponse    ReferenceType = "response"
	ReferenceContextual  ReferenceType = "contextual"
	ReferenceSemantic    ReferenceType = "semantic"
)

type Reference struct {
	MessageIndex int           `json:"messageIndex"`
	Confidence   float64       `json:"confidence"`
	Type         ReferenceType `json:"type"`
	Similarity   *float64      `json:"similarity,omitempty"`
}
