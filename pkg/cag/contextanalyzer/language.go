package contextanalyzer

import (
	"regexp"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

// languageMarkers are short, high-frequency function words whose mere
// presence is a strong signal for a language — not a full lexicon.
var languageMarkers = map[types.LanguageCode][]string{
	types.LangEs: {"el", "la", "los", "las", "que", "es", "está", "qué", "cómo", "por", "para", "con", "una", "uno", "pero", "también", "muy", "más"},
	types.LangEn: {"the", "is", "are", "what", "how", "and", "you", "that", "with", "for", "this", "but", "have", "can"},
	types.LangFr: {"le", "la", "les", "est", "qui", "que", "avec", "pour", "mais", "vous", "c'est", "des", "une"},
	types.LangPt: {"o", "a", "os", "as", "é", "está", "para", "com", "mas", "você", "isso", "muito", "não"},
	types.LangIt: {"il", "lo", "gli", "è", "che", "come", "per", "con", "ma", "sono", "molto", "questo"},
}

// languageGrammar is a small set of grammar-shaped regexes per language,
// each worth more than a bare marker hit.
var languageGrammar = map[types.LanguageCode][]*regexp.Regexp{
	types.LangEs: {regexp.MustCompile(`(?i)\b(qué|cómo|cuándo|dónde|por qué|quién|cuál)\s+es\b`), regexp.MustCompile(`(?i)\bestá[ns]?\b`)},
	types.LangEn: {regexp.MustCompile(`(?i)\b(what|how|when|where|why|who|which)\s+(is|are|do|does)\b`), regexp.MustCompile(`(?i)\b(isn't|aren't|doesn't|don't)\b`)},
	types.LangFr: {regexp.MustCompile(`(?i)\bqu'est-ce que\b`), regexp.MustCompile(`(?i)\best-ce que\b`)},
	types.LangPt: {regexp.MustCompile(`(?i)\bo que\s+é\b`), regexp.MustCompile(`(?i)\bvocê\b`)},
	types.LangIt: {regexp.MustCompile(`(?i)\bche cosa\b`), regexp.MustCompile(`(?i)\bcome\s+(funziona|si)\b`)},
}

// languageDiacritics gives a small bonus for diacritic marks distinctive
// of a language family, to help disambiguate short messages where marker
// words alone are inconclusive.
func diacriticBonus(lower string) map[types.LanguageCode]float64 {
	bonus := make(map[types.LanguageCode]float64)
	for _, r := range lower {
		switch r {
		case 'á', 'é', 'í', 'ó', 'ú', 'ñ':
			bonus[types.LangEs] += 0.3
		case 'ã', 'õ', 'ç':
			bonus[types.LangPt] += 0.3
		case 'à', 'è', 'ì', 'ò', 'ù':
			bonus[types.LangIt] += 0.15
			bonus[types.LangFr] += 0.15
		}
	}
	return bonus
}

var languageNames = map[types.LanguageCode]string{
	types.LangEs: "español",
	types.LangEn: "english",
	types.LangFr: "français",
	types.LangPt: "português",
	types.LangIt: "italiano",
}

// detectLanguage scores each candidate language by marker words, grammar
// regexes and diacritic bonus, defaulting to Spanish at low confidence
// when no signal clearly wins, per spec §4.4a.
func detectLanguage(message string) types.Language {
	lower := strings.ToLower(message)
	padded := " " + lower + " "

	scores := make(map[types.LanguageCode]float64)
	for lang, markers := range languageMarkers {
		for _, m := range markers {
			if strings.Contains(padded, " "+m+" ") {
				scores[lang] += 1
			}
		}
	}
	for lang, patterns := range languageGrammar {
		for _, re := range patterns {
			if re.MatchString(message) {
				scores[lang] += 2
			}
		}
	}
	for lang, b := range diacriticBonus(lower) {
		scores[lang] += b
	}

	var best types.LanguageCode
	var bestScore float64
	for lang, score := range scores {
		if score > bestScore {
			bestScore = score
			best = lang
		}
	}

	if bestScore == 0 {
		return types.Language{Code: types.LangEs, Name: languageNames[types.LangEs], Confidence: 0.5}
	}

	confidence := 0.5 + 0.1*bestScore
	if confidence > 0.95 {
		confidence = 0.95
	}
	return types.Language{Code: best, Name: languageNames[best], Confidence: confidence}
}
