package globalmemory

import (
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

var sensitiveKeywords = []string{"password", "secret", "private", "confidential", "personal"}
var restrictedKeywords = []string{"internal", "restricted", "employee", "salary"}

var sensitiveEntityTypes = map[types.EntityType]bool{
	types.EntityPerson: true,
}

// classifySensitivity applies the rules of spec §4.6: explicit override
// wins, then entity-type rule, then keyword scan of name+description,
// defaulting to public.
func classifySensitivity(name, description string, entityType types.EntityType, override *types.SensitivityLevel) types.SensitivityLevel {
	if override != nil {
		return *override
	}
	if sensitiveEntityTypes[entityType] {
		return types.SensitivitySensitive
	}

	text := strings.ToLower(name + " " + description)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(text, kw) {
			return types.SensitivitySensitive
		}
	}
	for _, kw := range restrictedKeywords {
		if strings.Contains(text, kw) {
			return types.SensitivityRestricted
		}
	}
	return types.SensitivityPublic
}

// levelRank orders sensitivity levels from least to most restrictive
// (public 0, restricted 1, sensitive 2); isAllowed permits an entity whose
// rank does not exceed the authorized level's.
func levelRank(l types.SensitivityLevel) int {
	switch l {
	case types.SensitivitySensitive:
		return 2
	case types.SensitivityRestricted:
		return 1
	default:
		return 0
	}
}

func isAllowed(entityLevel, authorizedLevel types.SensitivityLevel) bool {
	return levelRank(entityLevel) <= levelRank(authorizedLevel)
}
