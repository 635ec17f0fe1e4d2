package neo4j

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/graphdoc"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

const (
	defaultNodeLabel  = "Resource"
	defaultIDProperty = "uri"
	// typesProperty holds a node's "@type" values.
	typesProperty = "types"
	// sameAsRelType marks an equivalence edge. It becomes "owl:sameAs".
	sameAsRelType = "SAME_AS"
	// keyProperty on a relationship overrides the JSON-LD key the edge maps to.
	keyProperty = "key"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reader is the part of Driver the source needs.
type reader interface {
	ExecuteRead(ctx context.Context, work func(Transaction) (interface{}, error)) (interface{}, error)
}

// GraphSource rebuilds the bundled graph document from a property graph.
// Every node labelled NodeLabel becomes one JSON-LD node: its IDProperty is
// the "@id", its "types" list the "@type", and its other properties are
// copied as is. Each outgoing relationship to another resource adds a
// {"@id": target} reference under the relationship's "key" property, or its
// type when unset. SAME_AS edges map to "owl:sameAs".
type GraphSource struct {
	db         reader
	label      string
	idProperty string
	logger     logging.Logger
}

// NewGraphSource returns a source over driver. The node label and id
// property come from cfg, defaulting to "Resource" and "uri".
func NewGraphSource(driver *Driver, cfg Neo4jConfig, log logging.Logger) (*GraphSource, error) {
	return newGraphSource(driver, cfg, log)
}

func newGraphSource(db reader, cfg Neo4jConfig, log logging.Logger) (*GraphSource, error) {
	label := cfg.NodeLabel
	if label == "" {
		label = defaultNodeLabel
	}
	idProp := cfg.IDProperty
	if idProp == "" {
		idProp = defaultIDProperty
	}
	for _, ident := range []string{label, idProp} {
		if !identPattern.MatchString(ident) {
			return nil, errors.InvalidParam(fmt.Sprintf("invalid neo4j identifier %q", ident))
		}
	}
	return &GraphSource{db: db, label: label, idProperty: idProp, logger: logging.OrNop(log)}, nil
}

// Name identifies the source in logs and events.
func (s *GraphSource) Name() string {
	return "neo4j:" + s.label
}

func (s *GraphSource) nodesQuery() string {
	return fmt.Sprintf("MATCH (n:`%s`) WHERE n.`%s` IS NOT NULL RETURN n.`%s` AS id, properties(n) AS props ORDER BY id",
		s.label, s.idProperty, s.idProperty)
}

func (s *GraphSource) edgesQuery() string {
	return fmt.Sprintf("MATCH (a:`%s`)-[r]->(b:`%s`) WHERE a.`%s` IS NOT NULL AND b.`%s` IS NOT NULL "+
		"RETURN a.`%s` AS subject, type(r) AS rel, r.`%s` AS key, b.`%s` AS object ORDER BY subject, rel, object",
		s.label, s.label, s.idProperty, s.idProperty, s.idProperty, keyProperty, s.idProperty)
}

type edge struct {
	subject, key, object string
}

// Load reads all resource nodes and edges in one read transaction.
func (s *GraphSource) Load(ctx context.Context) (*chemical.GraphDocument, error) {
	out, err := s.db.ExecuteRead(ctx, func(tx Transaction) (interface{}, error) {
		res, err := tx.Run(ctx, s.nodesQuery(), nil)
		if err != nil {
			return nil, err
		}
		nodes, err := CollectRecords(ctx, res, s.mapNode)
		if err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, s.edgesQuery(), nil)
		if err != nil {
			return nil, err
		}
		edges, err := CollectRecords(ctx, res, mapEdge)
		if err != nil {
			return nil, err
		}
		return assemble(nodes, edges), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "failed to read graph from neo4j")
	}

	doc := &chemical.GraphDocument{
		Nodes:    out.([]chemical.GraphNode),
		Source:   s.Name(),
		LoadedAt: time.Now().UTC(),
	}
	s.logger.Debug("Loaded graph from neo4j", logging.Int("nodes", len(doc.Nodes)))
	return doc, nil
}

func (s *GraphSource) mapNode(rec *neo4j.Record) (chemical.GraphNode, error) {
	id, _ := rec.Get("id")
	idStr, ok := id.(string)
	if !ok || idStr == "" {
		return nil, fmt.Errorf("node id %v is not a string", id)
	}
	rawProps, _ := rec.Get("props")
	props, _ := rawProps.(map[string]any)

	node := chemical.GraphNode{chemical.KeywordID: idStr}
	for k, v := range props {
		switch k {
		case s.idProperty:
		case typesProperty:
			node[chemical.KeywordType] = v
		default:
			node[k] = v
		}
	}
	return graphdoc.CanonicalNode(node), nil
}

func mapEdge(rec *neo4j.Record) (edge, error) {
	subject, _ := rec.Get("subject")
	rel, _ := rec.Get("rel")
	key, _ := rec.Get("key")
	object, _ := rec.Get("object")

	e := edge{}
	if str, ok := subject.(string); ok {
		e.subject = norm.NFC.String(str)
	}
	if str, ok := object.(string); ok {
		e.object = norm.NFC.String(str)
	}
	relType, _ := rel.(string)
	if k, ok := key.(string); ok && k != "" {
		e.key = k
	} else if relType == sameAsRelType {
		e.key = chemical.OWLSameAsCURIE
	} else {
		e.key = relType
	}
	if e.subject == "" || e.object == "" || e.key == "" {
		return e, fmt.Errorf("incomplete edge %v -[%v]-> %v", subject, rel, object)
	}
	return e, nil
}

// assemble attaches edges to their subject nodes. A key that already holds
// a node property keeps it and gains the references after it.
func assemble(nodes []chemical.GraphNode, edges []edge) []chemical.GraphNode {
	byID := make(map[string]chemical.GraphNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = n
	}

	grouped := make(map[string]map[string][]interface{})
	for _, e := range edges {
		if _, ok := byID[e.subject]; !ok {
			continue
		}
		if grouped[e.subject] == nil {
			grouped[e.subject] = make(map[string][]interface{})
		}
		grouped[e.subject][e.key] = append(grouped[e.subject][e.key], map[string]interface{}{chemical.KeywordID: e.object})
	}

	for subject, keys := range grouped {
		node := byID[subject]
		for k, refs := range keys {
			existing, ok := node[k]
			switch {
			case !ok && len(refs) == 1:
				node[k] = refs[0]
			case !ok:
				node[k] = refs
			default:
				node[k] = append(asList(existing), refs...)
			}
		}
	}
	return nodes
}

func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return append([]interface{}(nil), t...)
	default:
		return []interface{}{t}
	}
}

var _ chemical.DocumentSource = (*GraphSource)(nil)
