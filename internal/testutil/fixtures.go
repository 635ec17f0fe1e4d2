package testutil

import (
	"bytes"
	"encoding/json"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// SampleGraphJSON is a small bundled-graph document in the "@graph" object
// form. The first node is a non-chemical that shares a name with a chemical.
const SampleGraphJSON = `{
  "@context": {"owl": "http://www.w3.org/2002/07/owl#", "rdfs": "http://www.w3.org/2000/01/rdf-schema#"},
  "@graph": [
    {"@id": "id#Guide127", "@type": "id#Procedure", "name": "Acetone"},
    {
      "@id": "id#Acetone",
      "@type": ["owl:NamedIndividual", "id#Chemical"],
      "name": "Acetone",
      "hasPolymerization": "Will not occur",
      "id#hasHealthLevel": "1",
      "hasFlammabilityLevel": {"@value": 3},
      "id#hasInstabilityLevel": {"@value": "0"},
      "hasPhysicalHazard": [{"@id": "id#HighlyFlammableLiquid"}, {"rdfs:label": "Vapor may travel to ignition source"}],
      "id#hasHealthHazard": ["Health Haz eye irritation", "Phys  haz vapors cause dizziness", ""],
      "hasStability": "Stable under normal conditions",
      "hasIncompatibleMaterial": ["Strong oxidizers", {"@value": "Strong acids"}],
      "id#hasFirstAidEye": ["Post Flush with water for 15 minutes", "Remove contact lenses"],
      "hasFirstAidInhalation": {"@value": "Move to fresh air"},
      "hasSmallFire": "Fire Fighting Use dry chemical, CO2, or alcohol-resistant foam",
      "hasLargeSpill": [{"label": ["Dike far ahead of spill", "ignored second label"]}],
      "hasAccidentalGeneral": "see guide 127"
    },
    {"@id": "id#EthylAcetate", "@type": "Chemical", "name": "Ethyl Acetate", "hasFlammabilityLevel": "3"},
    {"@id": "id#SodiumChloride", "@type": "Chemical", "hasHealthLevel": "1"},
    {"@id": "id#Aluminum..DiethylEther", "@type": "id#Chemical", "hasHealthLevel": "3", "hasInstabilityLevel": "3"},
    {
      "@id": "id#Water",
      "@type": "id#Chemical",
      "name": "Water",
      "owl:sameAs": {"@id": "id#DihydrogenMonoxide"}
    },
    {"@type": "id#Chemical", "name": "Orphan without id"}
  ]
}`

// SampleDocument decodes SampleGraphJSON the way the graph loader does.
func SampleDocument() *chemical.GraphDocument {
	var raw struct {
		Graph []chemical.GraphNode `json:"@graph"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(SampleGraphJSON)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		panic(err)
	}
	return &chemical.GraphDocument{Nodes: raw.Graph, Source: "testutil"}
}

// SampleEntities returns the entities of SampleDocument.
func SampleEntities() []*chemical.Entity {
	return SampleDocument().Entities()
}

// EntityByID returns the entity with id, or nil.
func EntityByID(entities []*chemical.Entity, id string) *chemical.Entity {
	for _, e := range entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}
