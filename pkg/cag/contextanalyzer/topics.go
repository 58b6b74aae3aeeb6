package contextanalyzer

import (
	"sort"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

const maxTopics = 5

// topicTaxonomy is a fixed set of named themes with keyword lists, per
// spec §4.4a. It is intentionally heuristic: a message scores against
// every topic's keyword list, not a trained classifier.
var topicTaxonomy = map[string][]string{
	"tecnología":             {"tecnología", "tecnologia", "software", "hardware", "dispositivo", "gadget", "innovación", "digital"},
	"programación":           {"programación", "programacion", "código", "codigo", "función", "variable", "algoritmo", "desarrollador", "python", "javascript", "golang"},
	"inteligencia artificial": {"inteligencia artificial", "machine learning", "aprendizaje automático", "red neuronal", "modelo", "chatbot", "llm", "ia"},
	"ciencia":                {"ciencia", "científico", "experimento", "investigación", "hipótesis", "teoría", "física", "química", "biología"},
	"matemáticas":            {"matemáticas", "matematicas", "ecuación", "cálculo", "álgebra", "geometría", "número", "estadística"},
	"salud":                  {"salud", "médico", "enfermedad", "síntoma", "tratamiento", "hospital", "doctor", "paciente"},
	"nutrición":              {"nutrición", "nutricion", "dieta", "alimento", "caloría", "vitamina", "proteína", "comida saludable"},
	"historia":               {"historia", "histórico", "guerra", "imperio", "civilización", "siglo", "revolución"},
	"literatura":             {"literatura", "novela", "poema", "escritor", "libro", "autor", "cuento"},
	"arte":                   {"arte", "pintura", "escultura", "museo", "artista", "exposición"},
	"música":                 {"música", "musica", "canción", "álbum", "banda", "concierto", "instrumento"},
	"negocios":               {"negocio", "empresa", "startup", "emprendimiento", "cliente", "mercado"},
	"economía":               {"economía", "economia", "inflación", "pib", "finanzas", "inversión", "bolsa"},
	"viajes":                 {"viaje", "turismo", "vuelo", "hotel", "destino", "pasaporte", "vacaciones"},
	"deportes":               {"deporte", "fútbol", "futbol", "partido", "equipo", "jugador", "entrenamiento"},
	"educación":              {"educación", "educacion", "escuela", "universidad", "estudiante", "profesor", "curso"},
	"política":               {"política", "politica", "gobierno", "elección", "presidente", "ley", "congreso"},
	"medio ambiente":         {"medio ambiente", "clima", "contaminación", "sostenibilidad", "reciclaje", "ecosistema"},
	"psicología":             {"psicología", "psicologia", "emoción", "ansiedad", "terapia", "conducta", "mente"},
	"filosofía":              {"filosofía", "filosofia", "ética", "existencia", "razón", "metafísica"},
}

// extractTopics scores each taxonomy topic by keyword matches against
// the message, keeping the top 5 by confidence, per spec §4.4a.
func extractTopics(message string) []types.Topic {
	lower := strings.ToLower(message)
	words := strings.Fields(lower)
	wordCount := len(words)
	if wordCount == 0 {
		return nil
	}

	now := nowTopics()
	var out []types.Topic
	for name, keywords := range topicTaxonomy {
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		density := float64(matched) / float64(wordCount)
		if density > 1 {
			density = 1
		}
		base := 0.5 + (float64(matched)/float64(len(keywords)))*0.5
		if base > 0.9 {
			base = 0.9
		}
		confidence := base * (0.7 + 0.3*density)
		out = append(out, types.Topic{
			Name:        name,
			Confidence:  confidence,
			Occurrences: matched,
			FirstSeen:   now,
			LastSeen:    now,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > maxTopics {
		out = out[:maxTopics]
	}
	return out
}
