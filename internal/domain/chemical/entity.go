// Package chemical holds the domain model of the chemical-safety lookup:
// knowledge-graph entities and their property values, alias rows, the
// display sections extracted from entities, and the pure name functions
// (Normalize, FormatIdentifier, SynthesizeCandidateIDs) shared by the
// resolver, the matcher and the extractor.
package chemical

import (
	"fmt"
	"strings"
)

// EntityType classifies graph entities. Only chemicals are matched.
type EntityType string

const (
	EntityTypeChemical EntityType = "chemical"
	EntityTypeOther    EntityType = "other"
)

// Entity is an immutable knowledge-graph node. Snapshots of entities are
// shared between concurrent lookups and must never be mutated.
type Entity struct {
	ID   string                   `json:"id"`
	Name string                   `json:"name,omitempty"`
	Type EntityType               `json:"type"`
	Data map[string]PropertyValue `json:"data,omitempty"`
}

// IsChemical reports whether the entity takes part in matching.
func (e *Entity) IsChemical() bool {
	return e != nil && e.Type == EntityTypeChemical
}

// DisplayName returns the entity name, falling back to the formatted id.
func (e *Entity) DisplayName() string {
	if e == nil {
		return ""
	}
	if e.Name != "" {
		return e.Name
	}
	return FormatIdentifier(e.ID)
}

// Property returns the first value present under any of keys.
func (e *Entity) Property(keys ...string) (PropertyValue, bool) {
	if e == nil {
		return nil, false
	}
	for _, k := range keys {
		if v, ok := e.Data[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// AliasSource records where an alias row came from.
type AliasSource string

const (
	AliasSourceBuiltin AliasSource = "builtin"
	AliasSourceGraph   AliasSource = "graph"
)

// ChemicalAlias is one row of the alias cache. Rows are never updated in
// place; the whole set is replaced on reload.
type ChemicalAlias struct {
	ID        string      `json:"id"`
	MainName  string      `json:"main_name"`
	AliasName string      `json:"alias_name"`
	Source    AliasSource `json:"source"`
}

// Validate checks the row invariants that do not depend on other rows.
func (a ChemicalAlias) Validate() error {
	if strings.TrimSpace(a.MainName) == "" {
		return fmt.Errorf("alias %q: empty main name", a.AliasName)
	}
	if strings.TrimSpace(a.AliasName) == "" {
		return fmt.Errorf("alias for %q: empty alias name", a.MainName)
	}
	if a.AliasName == a.MainName {
		return fmt.Errorf("alias %q: alias equals main name", a.AliasName)
	}
	switch a.Source {
	case AliasSourceBuiltin, AliasSourceGraph:
	default:
		return fmt.Errorf("alias %q: unknown source %q", a.AliasName, a.Source)
	}
	return nil
}

// Key is the uniqueness key of a row.
func (a ChemicalAlias) Key() string {
	return a.MainName + "\x00" + a.AliasName
}

// Section is one titled block of a chemical's hazard profile.
type Section struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// StepGroup is one category of emergency procedure steps.
type StepGroup struct {
	Category string   `json:"category"`
	Steps    []string `json:"steps"`
}
