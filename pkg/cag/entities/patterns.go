package entities

import (
	"regexp"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

// pattern is one entry of the fixed, language-aware pattern table: a regex,
// the entity type it signals, a base confidence, and an optional transform
// applied to the raw match before it becomes an Entity.Name.
type pattern struct {
	re         *regexp.Regexp
	entityType types.EntityType
	confidence float64
	transform  func(string) string
}

func stripTitle(s string) string {
	titles := []string{"Sr.", "Sra.", "Dr.", "Dra.", "Lic.", "Ing.", "Mr.", "Mrs.", "Ms.", "Dr"}
	for _, t := range titles {
		if strings.HasPrefix(s, t+" ") {
			return strings.TrimSpace(strings.TrimPrefix(s, t+" "))
		}
	}
	return s
}

// patternTable is intentionally narrow and heuristic, not a full NER model:
// it covers the cases named in the spec at a confidence high enough to be
// useful and low enough to be safely overridden by a known-entity match.
var patternTable = []pattern{
	// Titled persons: "Dr. Juan Pérez", "Sra. María López"
	{
		re:         regexp.MustCompile(`\b(?:Sr|Sra|Dr|Dra|Lic|Ing|Mr|Mrs|Ms)\.?\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)?\b`),
		entityType: types.EntityPerson,
		confidence: 0.8,
		transform:  stripTitle,
	},
	// Proper name bigram/trigram: "Juan Carlos Pérez"
	{
		re:         regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+){1,2}\b`),
		entityType: types.EntityPerson,
		confidence: 0.55,
	},
	// Organizations with legal suffix
	{
		re:         regexp.MustCompile(`\b[A-Z][A-Za-záéíóúñÁÉÍÓÚÑ&\.\s]{1,40}\s+(?:S\.A\.|S\.A\.S\.|S\.R\.L\.|Inc\.|LLC|Ltd\.|Corp\.|Co\.)\b`),
		entityType: types.EntityOrganization,
		confidence: 0.85,
	},
	// Uppercase acronym orgs, e.g. "NASA", "OTAN" (3-6 letters)
	{
		re:         regexp.MustCompile(`\b[A-ZÑ]{3,6}\b`),
		entityType: types.EntityOrganization,
		confidence: 0.5,
	},
	// Places with preposition: "en Madrid", "desde Barcelona"
	{
		re:         regexp.MustCompile(`\b(?:en|desde|hacia|a|de)\s+([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)?)\b`),
		entityType: types.EntityLocation,
		confidence: 0.55,
		transform: func(s string) string {
			parts := strings.SplitN(s, " ", 2)
			if len(parts) == 2 {
				return parts[1]
			}
			return s
		},
	},
	// Dates: "12/05/2024", "2024-05-12", "12 de mayo de 2024"
	{
		re:         regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		entityType: types.EntityDate,
		confidence: 0.9,
	},
	{
		re:         regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		entityType: types.EntityDate,
		confidence: 0.9,
	},
	{
		re:         regexp.MustCompile(`\b\d{1,2}\s+de\s+(?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)(?:\s+de\s+\d{4})?\b`),
		entityType: types.EntityDate,
		confidence: 0.85,
	},
	// Technology keywords
	{
		re:         regexp.MustCompile(`(?i)\b(?:inteligencia artificial|machine learning|blockchain|cloud computing|big data|internet of things|ciberseguridad|realidad virtual|realidad aumentada)\b`),
		entityType: types.EntityTechnology,
		confidence: 0.75,
	},
	// Programming languages
	{
		re:         regexp.MustCompile(`(?i)\b(?:python|javascript|typescript|golang|go|java|rust|kotlin|swift|c\+\+|c#|ruby|php)\b`),
		entityType: types.EntityTechnology,
		confidence: 0.7,
	},
	// Money: "$1,200.50", "1200 USD", "€500"
	{
		re:         regexp.MustCompile(`(?:\$|€|£)\s?\d[\d,]*(?:\.\d+)?|\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|MXN|dólares|pesos|euros)\b`),
		entityType: types.EntityMoney,
		confidence: 0.85,
	},
	// Emails
	{
		re:         regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
		entityType: types.EntityEmail,
		confidence: 0.95,
	},
	// URLs
	{
		re:         regexp.MustCompile(`\bhttps?://[^\s]+`),
		entityType: types.EntityURL,
		confidence: 0.95,
	},
}

// countryCityList holds lowercase city and country names that
// extractByPattern matches as substrings of the lowercased text and reports
// as location entities.
var countryCityList = map[string]bool{
	"madrid": true, "barcelona": true, "méxico": true, "mexico": true,
	"bogotá": true, "bogota": true, "lima": true, "santiago": true,
	"buenos aires": true, "españa": true, "espana": true, "francia": true,
	"colombia": true, "argentina": true, "chile": true, "perú": true, "peru": true,
	"new york": true, "london": true, "paris": true, "tokyo": true,
}
