package catalog

import "strings"

// titleTriggers maps a substring of a catalog title to its fixed styled form.
// Order matters: the first contained trigger wins.
var titleTriggers = []struct {
	contains string
	styled   string
}{
	{"Test of Time", "Software That Stands<br>the <span>Test of Time</span>"},
	{"Tool Setup", "My Local <span>Tool Setup</span>"},
}

// StyleTitle returns the HTML display form of a catalog title. Known titles
// map to fixed strings; otherwise the last two words are wrapped in a span.
// Titles of fewer than two words are returned unchanged.
func StyleTitle(title string) string {
	for _, t := range titleTriggers {
		if strings.Contains(title, t.contains) {
			return t.styled
		}
	}
	words := strings.Split(title, " ")
	if len(words) < 2 {
		return title
	}
	n := len(words)
	rest := strings.Join(words[:n-2], " ")
	return rest + " <span>" + strings.Join(words[n-2:], " ") + "</span>"
}
