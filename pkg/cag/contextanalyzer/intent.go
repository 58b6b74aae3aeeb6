package contextanalyzer

import (
	"regexp"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

type intentPattern struct {
	name    types.IntentName
	re      *regexp.Regexp
	weight  float64
}

// intentPatterns is a fixed, weighted pattern table. Order within a
// single intent does not matter; position of the earliest match across
// intents is what breaks ties (spec §4.4a).
var intentPatterns = []intentPattern{
	{types.IntentSaludar, regexp.MustCompile(`(?i)^\s*(hola|buenos días|buenas tardes|buenas noches|qué tal|hey|hi)\b`), 0.9},
	{types.IntentAgradecer, regexp.MustCompile(`(?i)\b(gracias|te agradezco|muchas gracias|mil gracias)\b`), 0.9},
	{types.IntentDespedirse, regexp.MustCompile(`(?i)\b(adiós|hasta luego|nos vemos|hasta pronto|me despido|chao)\b`), 0.9},
	{types.IntentConfirmar, regexp.MustCompile(`(?i)^\s*(sí|si|claro|correcto|de acuerdo|exacto|efectivamente)\b`), 0.85},
	{types.IntentNegar, regexp.MustCompile(`(?i)^\s*(no|para nada|negativo|en absoluto)\b`), 0.85},
	{types.IntentAclarar, regexp.MustCompile(`(?i)\b(a qué te refieres|no entiendo|puedes aclarar|qué quieres decir|no comprendo)\b`), 0.8},
	{types.IntentAccionComando, regexp.MustCompile(`(?i)^\s*(ejecuta|abre|cierra|configura|instala|borra|elimina|crea un|genera un archivo)\b`), 0.75},
	{types.IntentGenerarContenido, regexp.MustCompile(`(?i)\b(escribe|redacta|genera|crea una|compón|desarrolla un texto|elabora)\b`), 0.7},
	{types.IntentSolicitarOpinion, regexp.MustCompile(`(?i)\b(qué piensas|qué opinas|crees que|tu opinión|te parece)\b`), 0.7},
	{types.IntentBuscarInformacion, regexp.MustCompile(`(?i)\b(qué es|quién es|cómo funciona|dime|explícame|busca|quiero saber|cuéntame sobre|información sobre)\b`), 0.65},
}

// detectIntent finds all matching patterns, sums their weights, and adds
// a 0.1 tie-break bonus to whichever intent's earliest match occurs
// first in the message.
func detectIntent(message string) types.Intent {
	scores := make(map[types.IntentName]float64)
	earliest := make(map[types.IntentName]int)
	matched := false

	for _, p := range intentPatterns {
		loc := p.re.FindStringIndex(message)
		if loc == nil {
			continue
		}
		matched = true
		scores[p.name] += p.weight
		if existing, ok := earliest[p.name]; !ok || loc[0] < existing {
			earliest[p.name] = loc[0]
		}
	}

	if !matched {
		return types.Intent{Name: types.IntentConversar, Confidence: 0.4}
	}

	bestEarliest := -1
	for _, pos := range earliest {
		if bestEarliest == -1 || pos < bestEarliest {
			bestEarliest = pos
		}
	}
	for name, pos := range earliest {
		if pos == bestEarliest {
			scores[name] += 0.1
		}
	}

	var best types.IntentName
	var bestScore float64
	for name, score := range scores {
		if score > bestScore {
			bestScore = score
			best = name
		}
	}

	if bestScore > 1 {
		bestScore = 1
	}
	return types.Intent{Name: best, Confidence: bestScore}
}
