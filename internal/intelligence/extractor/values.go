// Package extractor turns a chemical entity's raw graph properties into
// hazard profile sections and emergency procedure groups.
package extractor

import (
	"regexp"
	"strings"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// ResolveScalar unwraps one display string from v: the first element of a
// list, the formatted identifier of a reference, a literal's value, or the
// first label of a label object. It returns "" when nothing resolves.
func ResolveScalar(v chemical.PropertyValue) string {
	switch val := v.(type) {
	case chemical.Scalar:
		return strings.TrimSpace(string(val))
	case chemical.Reference:
		return chemical.FormatIdentifier(val.ID)
	case chemical.Literal:
		return strings.TrimSpace(val.Value)
	case chemical.LabelObject:
		return ResolveScalar(val.Label)
	case chemical.List:
		if len(val) == 0 {
			return ""
		}
		return ResolveScalar(val[0])
	default:
		return ""
	}
}

// ResolveList resolves every element of a list value, dropping blanks, and
// passes each through CleanText. Non-list values become a one-element list.
func ResolveList(v chemical.PropertyValue) []string {
	items, ok := v.(chemical.List)
	if !ok {
		items = chemical.List{v}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := ResolveScalar(item)
		if strings.TrimSpace(s) == "" {
			continue
		}
		if s = CleanText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var (
	physHazAbbrev   = regexp.MustCompile(`(?i)\bphys\s*haz\b`)
	healthHazAbbrev = regexp.MustCompile(`(?i)\bhealth\s*haz\b`)
	postPrefix      = regexp.MustCompile(`(?i)^\s*post\s+`)
	fireFightPrefix = regexp.MustCompile(`(?i)^\s*fire\s+fighting\s+`)
)

// CleanText applies the fixed display rewrites. Abbreviations are expanded
// first; the "Post " and "Fire Fighting " prefixes are then dropped.
func CleanText(text string) string {
	s := physHazAbbrev.ReplaceAllString(text, "Physical Hazards")
	s = healthHazAbbrev.ReplaceAllString(s, "Health Hazards")
	s = postPrefix.ReplaceAllString(s, "")
	s = fireFightPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
