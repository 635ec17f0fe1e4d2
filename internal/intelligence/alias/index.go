package alias

import (
	"strings"
	"time"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// index answers the four getMainName tiers over one set of names.
// It is built once and never mutated.
type index struct {
	rows []chemical.ChemicalAlias

	mainByLower      map[string]string
	mainByAliasLower map[string]string
	mainByNorm       map[string]string

	aliasesByLower map[string][]string
	aliasesByNorm  map[string][]string

	builtAt time.Time
}

// newIndex indexes mains (including mains without aliases) and rows.
// When a name maps to several mains the first one seen wins, and main
// spellings take precedence over alias spellings in the normalized map.
func newIndex(mains []string, rows []chemical.ChemicalAlias) *index {
	idx := &index{
		rows:             rows,
		mainByLower:      make(map[string]string),
		mainByAliasLower: make(map[string]string),
		mainByNorm:       make(map[string]string),
		aliasesByLower:   make(map[string][]string),
		aliasesByNorm:    make(map[string][]string),
		builtAt:          time.Now(),
	}

	addMain := func(m string) {
		lower := strings.ToLower(m)
		if _, ok := idx.mainByLower[lower]; !ok {
			idx.mainByLower[lower] = m
		}
		if n := chemical.Normalize(m); n != "" {
			if _, ok := idx.mainByNorm[n]; !ok {
				idx.mainByNorm[n] = m
			}
		}
	}
	for _, m := range mains {
		addMain(m)
	}
	for _, r := range rows {
		addMain(r.MainName)
	}

	for _, r := range rows {
		lowerAlias := strings.ToLower(r.AliasName)
		if _, ok := idx.mainByAliasLower[lowerAlias]; !ok {
			idx.mainByAliasLower[lowerAlias] = r.MainName
		}
		if n := chemical.Normalize(r.AliasName); n != "" {
			if _, ok := idx.mainByNorm[n]; !ok {
				idx.mainByNorm[n] = r.MainName
			}
		}
		lowerMain := strings.ToLower(r.MainName)
		idx.aliasesByLower[lowerMain] = append(idx.aliasesByLower[lowerMain], r.AliasName)
		if n := chemical.Normalize(r.MainName); n != "" {
			idx.aliasesByNorm[n] = append(idx.aliasesByNorm[n], r.AliasName)
		}
	}
	return idx
}

func (idx *index) exactMain(name string) (string, bool) {
	m, ok := idx.mainByLower[strings.ToLower(name)]
	return m, ok
}

func (idx *index) exactAlias(name string) (string, bool) {
	m, ok := idx.mainByAliasLower[strings.ToLower(name)]
	return m, ok
}

func (idx *index) normalized(name string) (string, bool) {
	n := chemical.Normalize(name)
	if n == "" {
		return "", false
	}
	m, ok := idx.mainByNorm[n]
	return m, ok
}

// builtinIndex is the static index over the built-in table.
var builtinIndex = func() *index {
	mains := make([]string, 0, len(builtinTable))
	for _, e := range builtinTable {
		mains = append(mains, e.MainName)
	}
	return newIndex(mains, BuiltinAliases())
}()
