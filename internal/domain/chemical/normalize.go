package chemical

import (
	"regexp"
	"strings"
)

var (
	lowerUpperBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	digitUpperBoundary = regexp.MustCompile(`([0-9])([A-Z])`)
)

// Normalize reduces a chemical name to its comparison key: lowercase ASCII
// letters and digits only. Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	lower := strings.ToLower(name)
	var sb strings.Builder
	sb.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// SameName reports whether a and b are equal under Normalize. Two names that
// normalize to the empty string are never considered the same.
func SameName(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// StripIDPrefix removes the graph-local "id#" prefix, if present.
func StripIDPrefix(id string) string {
	return strings.TrimPrefix(id, IDPrefix)
}

// FormatIdentifier renders a graph-local identifier as a display name:
//
//	"id#SodiumChloride"       -> "Sodium Chloride"
//	"Aluminum..DiethylEther"  -> "Aluminum, Diethyl Ether"
//
// The rules run in a fixed order and the output is relied on verbatim by
// display text, so they must not be reordered.
func FormatIdentifier(id string) string {
	s := StripIDPrefix(id)
	s = lowerUpperBoundary.ReplaceAllString(s, "$1 $2")
	s = digitUpperBoundary.ReplaceAllString(s, "$1 $2")
	s = strings.ReplaceAll(s, "..", ", ")
	return strings.TrimSpace(s)
}
