package extractor

import (
	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// Concept is one hazard-profile fact and the property keys that carry it,
// in lookup order.
type Concept struct {
	ID          string
	Title       string
	Keys        []string
	MultiValued bool
}

func conceptKeys(local string) []string {
	return []string{chemical.IDPrefix + local, local}
}

// ProfileConcepts lists the profile concepts in display order.
var ProfileConcepts = []Concept{
	{ID: "health", Title: "Health Level", Keys: conceptKeys("hasHealthLevel")},
	{ID: "flammability", Title: "Flammability Level", Keys: conceptKeys("hasFlammabilityLevel")},
	{ID: "instability", Title: "Instability/Reactivity Level", Keys: conceptKeys("hasInstabilityLevel")},
	{ID: "physical_hazards", Title: "Physical Hazards", Keys: conceptKeys("hasPhysicalHazard"), MultiValued: true},
	{ID: "health_hazards", Title: "Health Hazards", Keys: conceptKeys("hasHealthHazard"), MultiValued: true},
	{ID: "stability", Title: "Stability", Keys: conceptKeys("hasStability")},
	{ID: "instability_conditions", Title: "Instability Conditions", Keys: conceptKeys("hasInstabilityCondition"), MultiValued: true},
	{ID: "incompatibility", Title: "Incompatible Materials", Keys: conceptKeys("hasIncompatibleMaterial"), MultiValued: true},
	{ID: "reactivity", Title: "Reactive Substances", Keys: conceptKeys("hasReactiveSubstance"), MultiValued: true},
	{ID: "polymerization", Title: "Polymerization", Keys: conceptKeys("hasPolymerization")},
}

// lookup returns the first value present under keys.
func lookup(data map[string]chemical.PropertyValue, keys []string) (chemical.PropertyValue, bool) {
	for _, k := range keys {
		if v, ok := data[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// ExtractProfile builds the hazard profile of an entity's data in the fixed
// ProfileConcepts order. Missing keys and values that resolve to nothing
// are skipped.
func ExtractProfile(data map[string]chemical.PropertyValue) []chemical.Section {
	sections := make([]chemical.Section, 0, len(ProfileConcepts))
	for _, c := range ProfileConcepts {
		v, ok := lookup(data, c.Keys)
		if !ok {
			continue
		}
		if c.MultiValued {
			if items := ResolveList(v); len(items) > 0 {
				sections = append(sections, chemical.Section{Title: c.Title, Content: items})
			}
			continue
		}
		if s := CleanText(ResolveScalar(v)); s != "" {
			sections = append(sections, chemical.Section{Title: c.Title, Content: []string{s}})
		}
	}
	return sections
}
