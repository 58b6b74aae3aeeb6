package contextanalyzer

import (
	"regexp"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

var (
	questionWordRe = regexp.MustCompile(`(?i)^\s*(qué|que|cómo|como|cuándo|cuando|dónde|donde|por qué|porque|quién|quien|cuál|cual)\b`)
	commandVerbRe  = regexp.MustCompile(`(?i)^\s*(ejecuta|abre|cierra|configura|instala|borra|elimina|crea|genera|muestra|lista|detén|detiene)\b`)
	requestRe      = regexp.MustCompile(`(?i)\b(podrías|puedes|me ayudas|necesito que|quisiera que|por favor)\b`)
	casualRe       = regexp.MustCompile(`(?i)^\s*(hola|buenas|qué tal|oye|ey|jaja|jeje)\b`)
	codeFenceRe    = regexp.MustCompile("```|`[^`]+`|\\bfunc\\b|\\bdef\\b|;\\s*$|\\{.*\\}")

	leadingPunctuationRe = regexp.MustCompile(`^[¿¡\s]+`)
	leadInClauseRe       = regexp.MustCompile(`(?i)^(hola|buenas|qué tal|oye|ey|jaja|jeje|por favor)\b`)
)

// stripLeadIn drops leading inverted punctuation (¿/¡) and a leading
// greeting/lead-in clause (e.g. "Hola, ¿qué es la IA?" -> "qué es la
// IA?") so that anchored pattern checks see the message's first
// substantive word rather than a greeting or an opening mark.
func stripLeadIn(message string) string {
	s := leadingPunctuationRe.ReplaceAllString(strings.TrimSpace(message), "")
	if idx := strings.IndexAny(s, ",;"); idx >= 0 && idx <= 20 {
		if leadInClauseRe.MatchString(s[:idx]) {
			s = leadingPunctuationRe.ReplaceAllString(strings.TrimSpace(s[idx+1:]), "")
		}
	}
	return s
}

func classifyMessageStructure(message string) types.MessageStructure {
	trimmed := strings.TrimSpace(message)
	words := strings.Fields(trimmed)
	wordCount := len(words)
	sentenceCount := len(strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}))
	if sentenceCount == 0 && wordCount > 0 {
		sentenceCount = 1
	}

	isQuestion := strings.HasSuffix(trimmed, "?") || questionWordRe.MatchString(stripLeadIn(trimmed))
	isCommand := commandVerbRe.MatchString(trimmed)
	isRequest := requestRe.MatchString(trimmed)
	isCasual := casualRe.MatchString(trimmed) && wordCount <= 6
	containsCode := codeFenceRe.MatchString(message)

	var msgType types.MessageType
	switch {
	case isQuestion:
		msgType = types.MessageQuestion
	case isCommand:
		msgType = types.MessageCommand
	case isRequest:
		msgType = types.MessageRequest
	case isCasual:
		msgType = types.MessageCasual
	default:
		msgType = types.MessageStatement
	}

	var complexity types.Complexity
	switch {
	case wordCount <= 8 && sentenceCount <= 1:
		complexity = types.ComplexitySimple
	case wordCount <= 25 && sentenceCount <= 3:
		complexity = types.ComplexityModerate
	default:
		complexity = types.ComplexityComplex
	}

	return types.MessageStructure{
		Type:          msgType,
		IsQuestion:    isQuestion,
		IsCommand:     isCommand,
		IsRequest:     isRequest,
		IsCasual:      isCasual,
		Complexity:    complexity,
		WordCount:     wordCount,
		SentenceCount: sentenceCount,
		ContainsCode:  containsCode,
	}
}

type questionTypePattern struct {
	tag types.QuestionTypeTag
	re  *regexp.Regexp
}

var questionTypePatterns = []questionTypePattern{
	{types.QuestionExplanation, regexp.MustCompile(`(?i)^\s*(por qué|cómo funciona|explica|explícame)\b`)},
	{types.QuestionProcedural, regexp.MustCompile(`(?i)\b(cómo se hace|cómo hago|cómo puedo|pasos para|cómo instalo|cómo configuro)\b`)},
	{types.QuestionOpinion, regexp.MustCompile(`(?i)\b(qué opinas|qué piensas|crees que|te parece)\b`)},
	{types.QuestionComparison, regexp.MustCompile(`(?i)\b(diferencia entre|mejor que|o\s+\w+,?\s+cuál|comparad[oa])\b`)},
	{types.QuestionFuture, regexp.MustCompile(`(?i)\b(qué pasará|en el futuro|va a|vas a|ocurrirá)\b`)},
	{types.QuestionRecommendation, regexp.MustCompile(`(?i)\b(qué me recomiendas|recomiéndame|sugerencias|cuál debería)\b`)},
	{types.QuestionHypothetical, regexp.MustCompile(`(?i)\b(qué pasaría si|si pudieras|imagina que|supongamos que)\b`)},
	{types.QuestionClarification, regexp.MustCompile(`(?i)\b(a qué te refieres|puedes aclarar|qué quieres decir)\b`)},
	{types.QuestionFactual, regexp.MustCompile(`(?i)^\s*(qué es|quién es|cuándo|dónde está|cuánto)\b`)},
}

// classifyQuestionType tags a question by shape; non-questions and
// questions matching no specific pattern fall back to general_question
// or other per spec §4.4a.
func classifyQuestionType(message string, isQuestion bool) types.QuestionType {
	if !isQuestion {
		return types.QuestionType{Type: types.QuestionOther}
	}
	stripped := stripLeadIn(message)
	for _, p := range questionTypePatterns {
		if p.re.MatchString(stripped) {
			return types.QuestionType{Type: p.tag}
		}
	}
	return types.QuestionType{Type: types.QuestionGeneral}
}
