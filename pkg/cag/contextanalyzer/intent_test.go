package contextanalyzer

import (
	"testing"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

func TestDetectIntent_Greeting(t *testing.T) {
	in := detectIntent("hola, buenos días")
	if in.Name != types.IntentSaludar {
		t.Fatalf("expected greeting intent, got %s", in.Name)
	}
	if in.Confidence <= 0 || in.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", in.Confidence)
	}
}

func TestDetectIntent_NoMatchFallsBackToConversar(t *testing.T) {
	in := detectIntent("xyzzy plugh zork")
	if in.Name != types.IntentConversar || in.Confidence != 0.4 {
		t.Fatalf("expected conversar fallback at 0.4, got %+v", in)
	}
}

func TestDetectIntent_EarliestMatchBreaksTies(t *testing.T) {
	// SolicitarOpinion and GenerarContenido carry the same 0.7 weight;
	// "qué piensas" occurs before "escribe", so SolicitarOpinion should
	// win the earliest-match tie-break bonus.
	in := detectIntent("qué piensas de esto, escribe un poema")
	if in.Name != types.IntentSolicitarOpinion {
		t.Fatalf("expected earliest match (solicitar opinion) to win, got %s", in.Name)
	}
}

func TestDetectIntent_ConfidenceCappedAtOne(t *testing.T) {
	in := detectIntent("hola, gracias, adiós")
	if in.Confidence > 1 {
		t.Fatalf("confidence must be capped at 1, got %v", in.Confidence)
	}
}
