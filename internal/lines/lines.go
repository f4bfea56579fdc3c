// Package lines exposes a Markdown body as its ordered sequence of trimmed lines.
package lines

import "strings"

// Split returns every line of body with surrounding whitespace removed.
// Blank lines are kept as empty strings so extractors can see paragraph breaks.
func Split(body string) []string {
	raw := strings.Split(body, "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		out[i] = strings.TrimSpace(line)
	}
	return out
}

// HasAnyPrefix reports whether line starts with one of prefixes.
func HasAnyPrefix(line string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
