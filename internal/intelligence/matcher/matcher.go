// Package matcher locates the knowledge-graph entity that best matches a
// free-text chemical name. Matching is layered and deterministic: exact
// name, then the explicit identifier, then every alias of the name, with
// identifier synthesis from the name as the fallback.
package matcher

import (
	"strings"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
)

// Tier identifies which matching rule produced a hit.
type Tier int

const (
	TierNone Tier = iota
	TierExactName
	TierIdentifier
	TierAlias
)

func (t Tier) String() string {
	switch t {
	case TierExactName:
		return "exact_name"
	case TierIdentifier:
		return "identifier"
	case TierAlias:
		return "alias"
	default:
		return "none"
	}
}

// NameExpander expands a name into every spelling it is known by, canonical
// name first. *alias.Resolver satisfies it.
type NameExpander interface {
	GetAllPossibleNames(name string) []string
}

// Result is the outcome of a match. Entity is nil when nothing matched.
type Result struct {
	Entity *chemical.Entity
	Tier   Tier
	// MatchedName is the name (the target or one of its aliases) whose
	// lookup produced the hit.
	MatchedName string
}

// Found reports whether an entity was matched.
func (r Result) Found() bool { return r.Entity != nil }

// Matcher runs the layered search against entity snapshots.
type Matcher struct {
	expander NameExpander
	logger   logging.Logger
}

// New creates a Matcher. A nil expander disables the alias tier.
func New(expander NameExpander, logger logging.Logger) *Matcher {
	return &Matcher{expander: expander, logger: logging.OrNop(logger)}
}

// FindEntity returns the matched entity, or nil.
func (m *Matcher) FindEntity(entities []*chemical.Entity, targetName, targetID string) *chemical.Entity {
	return m.Match(entities, targetName, targetID).Entity
}

// Match runs every tier in order. Each tier scans the whole entity slice
// before the next tier starts.
//
// The identifier tier runs against the target itself only when targetID is
// supplied. Without one, every alias is tried by exact name first, and ids
// synthesized from the target and its aliases are the last resort.
func (m *Matcher) Match(entities []*chemical.Entity, targetName, targetID string) Result {
	if e := exactName(entities, targetName); e != nil {
		return m.hit(e, TierExactName, targetName)
	}

	withID := strings.TrimSpace(targetID) != ""
	if withID {
		if e := byIdentifier(entities, targetName, targetID); e != nil {
			return m.hit(e, TierIdentifier, targetName)
		}
	}

	names := m.expand(targetName)
	for _, name := range names {
		if e := exactName(entities, name); e != nil {
			return m.hit(e, TierAlias, name)
		}
		if !withID {
			continue
		}
		if e := byIdentifier(entities, name, ""); e != nil {
			return m.hit(e, TierAlias, name)
		}
	}

	if !withID {
		if e := byIdentifier(entities, targetName, ""); e != nil {
			return m.hit(e, TierIdentifier, targetName)
		}
		for _, name := range names {
			if e := byIdentifier(entities, name, ""); e != nil {
				return m.hit(e, TierAlias, name)
			}
		}
	}

	m.logger.Debug("no entity matched",
		logging.String("target_name", targetName),
		logging.String("target_id", targetID),
		logging.Int("entities", len(entities)))
	return Result{Tier: TierNone}
}

func (m *Matcher) expand(name string) []string {
	if m.expander == nil || strings.TrimSpace(name) == "" {
		return nil
	}
	return m.expander.GetAllPossibleNames(name)
}

func (m *Matcher) hit(e *chemical.Entity, tier Tier, name string) Result {
	m.logger.Debug("entity matched",
		logging.String("entity_id", e.ID),
		logging.String("tier", tier.String()),
		logging.String("matched_name", name))
	return Result{Entity: e, Tier: tier, MatchedName: name}
}

// FindEntity is a convenience wrapper for one-off lookups.
func FindEntity(entities []*chemical.Entity, expander NameExpander, targetName, targetID string) *chemical.Entity {
	return New(expander, nil).FindEntity(entities, targetName, targetID)
}

func exactName(entities []*chemical.Entity, name string) *chemical.Entity {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	for _, e := range entities {
		if e.IsChemical() && e.Name != "" && strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}

// byIdentifier tries the candidate ids (the explicit id, then ids
// synthesized from name) against every chemical's identifier, then falls
// back to normalized equality of name with the entity's name or id.
func byIdentifier(entities []*chemical.Entity, name, id string) *chemical.Entity {
	var candidates []string
	if strings.TrimSpace(id) != "" {
		candidates = append(candidates, id)
	}
	if strings.TrimSpace(name) != "" {
		candidates = append(candidates, chemical.SynthesizeCandidateIDs(name)...)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		bare := chemical.StripIDPrefix(c)
		want := chemical.Normalize(bare)
		if want == "" {
			continue
		}
		if _, dup := seen[want]; dup {
			continue
		}
		seen[want] = struct{}{}
		prefixed := chemical.Normalize(chemical.IDPrefix + bare)
		for _, e := range entities {
			if !e.IsChemical() {
				continue
			}
			if chemical.Normalize(chemical.StripIDPrefix(e.ID)) == want || chemical.Normalize(e.ID) == prefixed {
				return e
			}
		}
	}

	want := chemical.Normalize(name)
	if want == "" {
		return nil
	}
	for _, e := range entities {
		if !e.IsChemical() {
			continue
		}
		if chemical.Normalize(e.Name) == want || chemical.Normalize(chemical.StripIDPrefix(e.ID)) == want {
			return e
		}
	}
	return nil
}
