// Package entities implements the EntityExtractor: pattern-based and
// known-entity extraction of named entities from free text, fused into a
// single ranked list, plus relation extraction between co-occurring
// entities.
package entities

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/trigoo007/cagcore/pkg/asyncx"
	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/fsx"
)

const (
	maxEntities   = 15
	minMatchChars = 3
)

// Extractor runs pattern extraction and known-entity matching in parallel
// and fuses the results, per spec §4.2.
type Extractor struct {
	persons       *catalog
	organizations *catalog
	locations     *catalog
	concepts      *catalog
}

func NewExtractor(fs fsx.FileSystem, baseDir string) *Extractor {
	if baseDir == "" {
		baseDir = "entities"
	}
	return &Extractor{
		persons:       newCatalog(fs, fs.Join(baseDir, "persons.json")),
		organizations: newCatalog(fs, fs.Join(baseDir, "organizations.json")),
		locations:     newCatalog(fs, fs.Join(baseDir, "locations.json")),
		concepts:      newCatalog(fs, fs.Join(baseDir, "concepts.json")),
	}
}

// Load reads all four catalogs from disk into memory. Call once at startup.
func (x *Extractor) Load(ctx context.Context) error {
	for _, c := range []*catalog{x.persons, x.organizations, x.locations, x.concepts} {
		if err := c.load(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (x *Extractor) catalogFor(t types.EntityType) *catalog {
	switch t {
	case types.EntityPerson:
		return x.persons
	case types.EntityOrganization:
		return x.organizations
	case types.EntityLocation:
		return x.locations
	default:
		return x.concepts
	}
}

// SaveEntity appends entry to the catalog matching its type.
func (x *Extractor) SaveEntity(ctx context.Context, e types.Entity) error {
	c := x.catalogFor(e.Type)
	return c.save(ctx, catalogEntry{
		Name:        e.Name,
		Description: e.Description,
		Aliases:     e.Aliases,
	})
}

// ExtractEntities runs pattern and known-entity extraction in parallel and
// fuses the results, per spec §4.2.
func (x *Extractor) ExtractEntities(ctx context.Context, text string) ([]types.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	now := nowUTC()

	results, err := asyncx.All(ctx,
		func(ctx context.Context) ([]types.Entity, error) {
			return x.extractByPattern(text, now), nil
		},
		func(ctx context.Context) ([]types.Entity, error) {
			return x.extractKnown(text, now), nil
		},
	)
	if err != nil {
		return nil, err
	}

	fused := fuseEntities(append(results[0], results[1]...))
	if len(fused) > maxEntities {
		fused = fused[:maxEntities]
	}
	return fused, nil
}

func (x *Extractor) extractByPattern(text string, now timeNow) []types.Entity {
	var out []types.Entity
	for _, p := range patternTable {
		for _, match := range p.re.FindAllString(text, -1) {
			name := match
			if p.transform != nil {
				name = p.transform(name)
			}
			name = strings.TrimSpace(name)
			if len(name) < minMatchChars {
				continue
			}
			out = append(out, types.Entity{
				Name:             name,
				Type:             p.entityType,
				Confidence:       p.confidence,
				Occurrences:      1,
				FirstSeen:        now.t,
				LastSeen:         now.t,
				SensitivityLevel: types.SensitivityPublic,
			})
		}
	}

	lower := strings.ToLower(text)
	for city := range countryCityList {
		if strings.Contains(lower, city) && len(city) >= minMatchChars {
			out = append(out, types.Entity{
				Name:             city,
				Type:             types.EntityLocation,
				Confidence:       0.8,
				Occurrences:      1,
				FirstSeen:        now.t,
				LastSeen:         now.t,
				SensitivityLevel: types.SensitivityPublic,
			})
		}
	}
	return out
}

func (x *Extractor) extractKnown(text string, now timeNow) []types.Entity {
	padded := " " + strings.ToLower(text) + " "

	var out []types.Entity
	add := func(entityType types.EntityType, c *catalog) {
		for _, m := range c.matches(padded) {
			conf := 0.85
			if m.viaAlias {
				conf = 0.85 * 0.95
			}
			out = append(out, types.Entity{
				Name:             m.entry.Name,
				Type:             entityType,
				Confidence:       conf,
				Description:      m.entry.Description,
				Aliases:          m.entry.Aliases,
				Occurrences:      1,
				FirstSeen:        now.t,
				LastSeen:         now.t,
				SensitivityLevel: types.SensitivityPublic,
			})
		}
	}
	add(types.EntityPerson, x.persons)
	add(types.EntityOrganization, x.organizations)
	add(types.EntityLocation, x.locations)
	add(types.EntityConcept, x.concepts)
	return out
}

// fuseEntities deduplicates by (lower(name), type), keeping the
// highest-confidence occurrence, then sorts by confidence desc, then name
// length desc.
func fuseEntities(candidates []types.Entity) []types.Entity {
	byKey := make(map[string]types.Entity, len(candidates))
	for _, e := range candidates {
		key := e.Key()
		existing, ok := byKey[key]
		if !ok || e.Confidence > existing.Confidence {
			if ok {
				e.Occurrences = existing.Occurrences + 1
			}
			byKey[key] = e
		} else {
			existing.Occurrences++
			byKey[key] = existing
		}
	}

	out := make([]types.Entity, 0, len(byKey))
	for _, e := range byKey {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return len(out[i].Name) > len(out[j].Name)
	})
	return out
}

// SearchEntities scans all four catalogs for a query substring, optionally
// filtered by type.
func (x *Extractor) SearchEntities(ctx context.Context, query string, entityType *types.EntityType) []types.Entity {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var cats []struct {
		t types.EntityType
		c *catalog
	}
	if entityType == nil {
		cats = []struct {
			t types.EntityType
			c *catalog
		}{
			{types.EntityPerson, x.persons},
			{types.EntityOrganization, x.organizations},
			{types.EntityLocation, x.locations},
			{types.EntityConcept, x.concepts},
		}
	} else {
		cats = []struct {
			t types.EntityType
			c *catalog
		}{{*entityType, x.catalogFor(*entityType)}}
	}

	now := nowUTC()
	var out []types.Entity
	for _, cat := range cats {
		cat.c.mu.RLock()
		for _, e := range cat.c.entries {
			if strings.Contains(strings.ToLower(e.Name), query) {
				out = append(out, types.Entity{
					Name:             e.Name,
					Type:             cat.t,
					Confidence:       0.85,
					Description:      e.Description,
					Aliases:          e.Aliases,
					Occurrences:      1,
					FirstSeen:        now.t,
					LastSeen:         now.t,
					SensitivityLevel: types.SensitivityPublic,
				})
			}
		}
		cat.c.mu.RUnlock()
	}
	return out
}

// verbPatterns maps a relation type to a regex describing the connecting
// verb phrase and the (source type, target type) it applies between.
var verbPatterns = []struct {
	relType    string
	re         *regexp.Regexp
	sourceType types.EntityType
	targetType types.EntityType
}{
	{"fundador_de", regexp.MustCompile(`(?i)fund[óo]|fundador de|creador de`), types.EntityPerson, types.EntityOrganization},
	{"trabaja_en", regexp.MustCompile(`(?i)trabaja en|empleado de|labora en`), types.EntityPerson, types.EntityOrganization},
	{"ubicado_en", regexp.MustCompile(`(?i)ubicad[oa] en|se encuentra en|est[áa] en`), types.EntityOrganization, types.EntityLocation},
}

const coOccurrenceWindow = 50

// ExtractEntityRelations finds verb-connected and co-occurring entity
// pairs within text, per spec §4.2.
func (x *Extractor) ExtractEntityRelations(text string, ents []types.Entity) []types.Relation {
	if len(ents) < 2 {
		return nil
	}

	lower := strings.ToLower(text)
	offsets := make(map[string]int, len(ents))
	for _, e := range ents {
		idx := strings.Index(lower, strings.ToLower(e.Name))
		if idx >= 0 {
			offsets[e.Key()] = idx
		}
	}

	var relations []types.Relation
	seen := make(map[string]bool)

	for i, a := range ents {
		for j, b := range ents {
			if i == j {
				continue
			}
			oa, aok := offsets[a.Key()]
			ob, bok := offsets[b.Key()]
			if !aok || !bok {
				continue
			}

			for _, vp := range verbPatterns {
				if a.Type != vp.sourceType || b.Type != vp.targetType {
					continue
				}
				lo, hi := oa, ob
				if lo > hi {
					lo, hi = hi, lo
				}
				slice := text[lo:hi]
				if vp.re.MatchString(slice) {
					key := a.Name + "\x00" + b.Name + "\x00" + vp.relType
					if seen[key] {
						continue
					}
					seen[key] = true
					relations = append(relations, types.Relation{
						Source:     a.Name,
						Target:     b.Name,
						Type:       vp.relType,
						Confidence: 0.75,
					})
				}
			}

			if i < j && abs(oa-ob) <= coOccurrenceWindow {
				key := a.Name + "\x00" + b.Name + "\x00co-ocurrencia"
				if !seen[key] {
					seen[key] = true
					relations = append(relations, types.Relation{
						Source:     a.Name,
						Target:     b.Name,
						Type:       "co-ocurrencia",
						Confidence: 0.6,
					})
				}
			}
		}
	}

	sort.Slice(relations, func(i, j int) bool { return relations[i].Confidence > relations[j].Confidence })
	return relations
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
