package chemical

// Graph vocabulary understood when reading the bundled document.
const (
	// IDPrefix marks graph-local identifiers ("id#Acetone").
	IDPrefix = "id#"

	OWLSameAsIRI   = "http://www.w3.org/2002/07/owl#sameAs"
	OWLSameAsCURIE = "owl:sameAs"

	RDFSLabelIRI   = "http://www.w3.org/2000/01/rdf-schema#label"
	RDFSLabelCURIE = "rdfs:label"

	SchemaNameIRI = "http://schema.org/name"

	// ChemicalTypeLocalName is the local name of the entity type treated as
	// a chemical, whatever namespace prefix carries it.
	ChemicalTypeLocalName = "Chemical"
)

// JSON-LD keywords.
const (
	KeywordID      = "@id"
	KeywordType    = "@type"
	KeywordValue   = "@value"
	KeywordGraph   = "@graph"
	KeywordContext = "@context"
)

// sameAsKeys are the property keys carrying equivalence assertions.
var sameAsKeys = []string{OWLSameAsCURIE, OWLSameAsIRI, "sameAs", IDPrefix + "sameAs"}

// labelKeys are the property keys carrying an RDFS label, in lookup order.
var labelKeys = []string{"label", RDFSLabelCURIE, RDFSLabelIRI}

// nameKeys are the property keys carrying an entity's display name, tried
// before falling back to the label keys.
var nameKeys = []string{"name", IDPrefix + "hasName", "hasName", "schema:name", SchemaNameIRI}
