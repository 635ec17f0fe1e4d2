package alias

import (
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// rowNamespace seeds the name-based UUIDs of alias rows so that the same
// pair gets the same id on every rebuild.
var rowNamespace = uuid.MustParse("6f1c2b0e-3d4a-5b8c-9e7f-0a1b2c3d4e5f")

func rowID(source chemical.AliasSource, mainName, aliasName string) string {
	return uuid.NewSHA1(rowNamespace, []byte(string(source)+"\x00"+mainName+"\x00"+aliasName)).String()
}

// BuiltinAliases expands the built-in table into alias rows.
func BuiltinAliases() []chemical.ChemicalAlias {
	var rows []chemical.ChemicalAlias
	for _, e := range builtinTable {
		for _, a := range e.Aliases {
			rows = append(rows, chemical.ChemicalAlias{
				ID:        rowID(chemical.AliasSourceBuiltin, e.MainName, a),
				MainName:  e.MainName,
				AliasName: a,
				Source:    chemical.AliasSourceBuiltin,
			})
		}
	}
	return rows
}

// MineEquivalences turns owl:sameAs assertions into alias rows. The node
// making the assertion supplies the main name; each referenced node supplies
// an alias, named by its own name when the document contains it and by its
// formatted identifier otherwise. Self-references are skipped.
func MineEquivalences(doc *chemical.GraphDocument) []chemical.ChemicalAlias {
	if doc == nil {
		return nil
	}
	byID := doc.Index()
	seen := make(map[string]struct{})

	var rows []chemical.ChemicalAlias
	for _, n := range doc.Nodes {
		targets := n.SameAs()
		if len(targets) == 0 {
			continue
		}
		mainName := nodeDisplayName(n)
		if mainName == "" {
			continue
		}
		for _, target := range targets {
			aliasName := chemical.FormatIdentifier(target)
			if tn, ok := byID[target]; ok {
				if name := tn.Name(); name != "" {
					aliasName = name
				}
			}
			if aliasName == "" || strings.EqualFold(aliasName, mainName) {
				continue
			}
			row := chemical.ChemicalAlias{
				ID:        rowID(chemical.AliasSourceGraph, mainName, aliasName),
				MainName:  mainName,
				AliasName: aliasName,
				Source:    chemical.AliasSourceGraph,
			}
			if _, dup := seen[row.Key()]; dup {
				continue
			}
			seen[row.Key()] = struct{}{}
			rows = append(rows, row)
		}
	}
	return rows
}

func nodeDisplayName(n chemical.GraphNode) string {
	if name := n.Name(); name != "" {
		return name
	}
	return chemical.FormatIdentifier(n.ID())
}

// dedupe keeps the first occurrence of every (main, alias) pair and drops
// rows that violate the row invariants.
func dedupe(rows []chemical.ChemicalAlias) (kept []chemical.ChemicalAlias, dropped int) {
	seen := make(map[string]struct{}, len(rows))
	kept = make([]chemical.ChemicalAlias, 0, len(rows))
	for _, r := range rows {
		if r.Validate() != nil {
			dropped++
			continue
		}
		if _, dup := seen[r.Key()]; dup {
			dropped++
			continue
		}
		seen[r.Key()] = struct{}{}
		if r.ID == "" {
			r.ID = rowID(r.Source, r.MainName, r.AliasName)
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
