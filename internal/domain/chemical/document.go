package chemical

import (
	"context"
	"strings"
	"time"
)

// GraphNode is one JSON-LD node object of the bundled graph document, as
// decoded from JSON.
type GraphNode map[string]interface{}

// GraphDocument is the parsed bundled document: its node list plus where and
// when it was read.
type GraphDocument struct {
	Nodes    []GraphNode
	Source   string
	LoadedAt time.Time
}

// DocumentSource supplies the bundled graph document. Implementations read
// from disk, object storage or a property graph.
type DocumentSource interface {
	Load(ctx context.Context) (*GraphDocument, error)
	Name() string
}

// AliasStore persists the alias cache rows. ReplaceAll must be
// all-or-nothing: on error the previous rows remain.
type AliasStore interface {
	LoadAll(ctx context.Context) ([]ChemicalAlias, error)
	ReplaceAll(ctx context.Context, aliases []ChemicalAlias) error
}

// ID returns the node's "@id".
func (n GraphNode) ID() string {
	return scalarString(n[KeywordID])
}

// Types returns the node's "@type" values.
func (n GraphNode) Types() []string {
	switch v := n[KeywordType].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}

// IsChemical reports whether any of the node's types has the local name
// "Chemical" under any namespace ("Chemical", "id#Chemical", IRIs).
func (n GraphNode) IsChemical() bool {
	for _, t := range n.Types() {
		if strings.EqualFold(localName(t), ChemicalTypeLocalName) {
			return true
		}
	}
	return false
}

// Name returns the node's display name from the name keys or the label
// keys. It does not fall back to the identifier.
func (n GraphNode) Name() string {
	for _, k := range nameKeys {
		if s := firstString(n[k]); s != "" {
			return s
		}
	}
	for _, k := range labelKeys {
		if s := firstString(n[k]); s != "" {
			return s
		}
	}
	return ""
}

// SameAs returns the identifiers this node declares itself equivalent to.
func (n GraphNode) SameAs() []string {
	var out []string
	for _, k := range sameAsKeys {
		raw, ok := n[k]
		if !ok {
			continue
		}
		out = append(out, referenceIDs(raw)...)
	}
	return out
}

// ToEntity converts a node into an Entity. JSON-LD keywords ("@id",
// "@type", "@context") are not copied into Data.
func (n GraphNode) ToEntity() *Entity {
	e := &Entity{
		ID:   n.ID(),
		Name: n.Name(),
		Type: EntityTypeOther,
		Data: make(map[string]PropertyValue, len(n)),
	}
	if n.IsChemical() {
		e.Type = EntityTypeChemical
	}
	for k, raw := range n {
		if strings.HasPrefix(k, "@") {
			continue
		}
		if v := ValueOf(raw); v != nil {
			e.Data[k] = v
		}
	}
	return e
}

// Entities converts every node of the document that carries an identifier.
func (d *GraphDocument) Entities() []*Entity {
	if d == nil {
		return nil
	}
	out := make([]*Entity, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID() == "" {
			continue
		}
		out = append(out, n.ToEntity())
	}
	return out
}

// Index maps node identifiers to nodes.
func (d *GraphDocument) Index() map[string]GraphNode {
	idx := make(map[string]GraphNode, len(d.Nodes))
	for _, n := range d.Nodes {
		if id := n.ID(); id != "" {
			idx[id] = n
		}
	}
	return idx
}

func localName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/:"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// firstString unwraps strings, literals and single-level lists.
func firstString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		for _, item := range v {
			if s := firstString(item); s != "" {
				return s
			}
		}
	case map[string]interface{}:
		if s := scalarString(v[KeywordValue]); s != "" {
			return s
		}
		return scalarString(v["value"])
	}
	return ""
}

func referenceIDs(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case map[string]interface{}:
		if id := scalarString(v[KeywordID]); id != "" {
			return []string{id}
		}
	case []interface{}:
		var out []string
		for _, item := range v {
			out = append(out, referenceIDs(item)...)
		}
		return out
	}
	return nil
}
