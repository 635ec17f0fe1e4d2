package alias

import (
	"regexp"
	"strings"
)

var bracketGroup = regexp.MustCompile(`[\(\[]([^\)\]]*)[\)\]]`)

// FormattingVariations rewrites the graph's compound-name encodings
// (commas, brackets, "..", "|") into the spellings users and graph labels
// tend to use. The input is returned only when a rule reproduces it. Blank
// variations are dropped; duplicates are left to the caller's set.
func FormattingVariations(name string) []string {
	var out []string
	add := func(s string) {
		if s = collapseSpaces(s); s != "" {
			out = append(out, s)
		}
	}

	if strings.Contains(name, ",") {
		parts := splitTrim(name, ",")
		add(strings.Join(parts, " "))
		reversed := make([]string, len(parts))
		for i, p := range parts {
			reversed[len(parts)-1-i] = p
		}
		add(strings.Join(reversed, " "))
		for _, p := range parts {
			add(p)
		}
	}

	if strings.ContainsAny(name, "([") {
		add(bracketGroup.ReplaceAllString(name, " "))
		for _, m := range bracketGroup.FindAllStringSubmatch(name, -1) {
			add(m[1])
		}
	}

	if strings.Contains(name, "..") {
		add(strings.ReplaceAll(name, "..", ", "))
		add(strings.ReplaceAll(name, "..", " "))
	}

	if strings.Contains(name, "|") {
		add(strings.ReplaceAll(name, "|", ","))
		add(strings.ReplaceAll(name, "|", " "))
	}

	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

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
