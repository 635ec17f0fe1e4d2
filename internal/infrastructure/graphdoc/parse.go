// Package graphdoc loads the bundled JSON-LD graph document, keeps the
// current entity snapshot in memory and watches the document file for
// changes.
package graphdoc

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// Parse decodes a graph document from r. Two shapes are accepted: a
// top-level array of node objects, or an object holding the nodes under
// "@graph". A bare object with an "@id" is read as a one-node document.
// Non-object array items are skipped. Strings are brought to Unicode NFC so
// that names typed on different platforms compare equal.
func Parse(r io.Reader, source string) (*chemical.GraphDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "read graph document").
			WithDetail("source=" + source)
	}
	return ParseBytes(data, source)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte, source string) (*chemical.GraphDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeGraphMalformed, "graph document is empty").
			WithDetail("source=" + source)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphMalformed, "decode graph document").
			WithDetail("source=" + source)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if g, ok := v[chemical.KeywordGraph]; ok {
			arr, ok := g.([]interface{})
			if !ok {
				return nil, errors.New(errors.ErrCodeGraphMalformed, `"@graph" is not an array`).
					WithDetail("source=" + source)
			}
			items = arr
		} else if _, ok := v[chemical.KeywordID]; ok {
			items = []interface{}{v}
		} else {
			return nil, errors.New(errors.ErrCodeGraphMalformed, "graph document has no nodes").
				WithDetail("source=" + source)
		}
	default:
		return nil, errors.New(errors.ErrCodeGraphMalformed, "graph document must be an array or an object").
			WithDetail("source=" + source)
	}

	nodes := make([]chemical.GraphNode, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		nodes = append(nodes, chemical.GraphNode(canonical(obj).(map[string]interface{})))
	}

	return &chemical.GraphDocument{Nodes: nodes, Source: source, LoadedAt: time.Now().UTC()}, nil
}

// CanonicalNode returns a copy of n with every key and string value in NFC.
// Sources that do not go through Parse use it to match parsed documents.
func CanonicalNode(n chemical.GraphNode) chemical.GraphNode {
	return chemical.GraphNode(canonical(map[string]interface{}(n)).(map[string]interface{}))
}

// canonical rewrites every string key and value to NFC.
func canonical(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return norm.NFC.String(val)
	case []interface{}:
		for i := range val {
			val[i] = canonical(val[i])
		}
		return val
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[norm.NFC.String(k)] = canonical(item)
		}
		return out
	default:
		return v
	}
}
