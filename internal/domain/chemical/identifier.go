package chemical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// identifierStripChars are removed before camel-casing a free-text name.
const identifierStripChars = ",[]()"

// SynthesizeCandidateIDs guesses graph identifiers for a free-text name.
// Graph identifiers are camel-cased and encode commas as "..", which user
// input rarely does. The result is ordered by search precedence and may
// contain duplicates; an empty name yields a single empty candidate.
func SynthesizeCandidateIDs(name string) []string {
	if strings.TrimSpace(name) == "" {
		return []string{""}
	}

	primary := camelJoin(strings.Fields(stripChars(name, identifierStripChars)))
	candidates := []string{primary}

	if strings.Contains(name, ",") {
		parts := splitTrim(name, ",")
		candidates = append(candidates, strings.Join(parts, ".."))

		titled := make([]string, len(parts))
		for i, p := range parts {
			titled[i] = camelJoin(strings.Fields(p))
		}
		candidates = append(candidates, strings.Join(titled, ".."))
	}

	// Digit runs are left as typed. Identical to the primary candidate for
	// now but tried separately so a digit-aware transform can slot in here.
	candidates = append(candidates, camelJoin(strings.Fields(stripChars(name, identifierStripChars))))

	return candidates
}

// titleToken upper-cases the first rune and lower-cases the rest.
func titleToken(tok string) string {
	if tok == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(tok)
	return string(unicode.ToUpper(r)) + strings.ToLower(tok[size:])
}

func camelJoin(tokens []string) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(titleToken(t))
	}
	return sb.String()
}

func stripChars(s, chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

// splitTrim splits on sep, trims every part and drops empty ones.
func splitTrim(s, sep string) []string {
	raw := strings.Split(s, sep)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
