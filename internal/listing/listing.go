// Package listing extracts the entries of a collection index page: an H1
// title, a header H2, an optional "Published/Upcoming" section H2, and one
// entry per H3 with bolded status/date, a summary paragraph and an
// [Explore](...) link.
package listing

import (
	"regexp"
	"strings"

	"github.com/starford/pagesmith/internal/lines"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/theme"
)

const defaultStatus = "Live"

var exploreRe = regexp.MustCompile(`\[Explore\]\((.*?)\)`)

// Defaults are the placeholder values a listing keeps when the document
// does not supply the corresponding line.
type Defaults struct {
	Title        string `yaml:"title"`
	HeaderTitle  string `yaml:"header_title"`
	Intro        string `yaml:"intro"`
	SectionLabel string `yaml:"section_label"`
	SectionTitle string `yaml:"section_title"`
}

// DefaultPlaceholders returns the stock listing placeholders.
func DefaultPlaceholders() Defaults {
	return Defaults{
		Title:        "Stempy Editions",
		HeaderTitle:  "Collections on <span>Durable Software Development</span>",
		Intro:        "Notes, research, and curated content",
		SectionLabel: "Collections",
		SectionTitle: "Published & Upcoming",
	}
}

// Result is the structured form of a listing page.
type Result struct {
	Title        string
	Subtitle     string
	HeaderTitle  string
	Intro        string
	SectionLabel string
	SectionTitle string
	Entries      []models.IndexEntry
}

// Data returns the result as template data.
func (r Result) Data() models.TemplateData {
	articles := make([]map[string]any, len(r.Entries))
	for i, e := range r.Entries {
		articles[i] = e.Data()
	}
	return models.TemplateData{
		"title":         r.Title,
		"subtitle":      r.Subtitle,
		"header_title":  r.HeaderTitle,
		"intro":         r.Intro,
		"section_label": r.SectionLabel,
		"section_title": r.SectionTitle,
		"articles":      articles,
	}
}

// Extractor parses listing bodies. It holds only read-only configuration.
type Extractor struct {
	defaults Defaults
	theme    theme.Theme
}

// New creates an Extractor.
func New(defaults Defaults, th theme.Theme) *Extractor {
	return &Extractor{defaults: defaults, theme: th}
}

// Extract folds the body's lines through the listing state machine.
func (x *Extractor) Extract(body string) Result {
	s := &state{
		x: x,
		res: Result{
			Title:        x.defaults.Title,
			Subtitle:     x.defaults.Title,
			HeaderTitle:  x.defaults.HeaderTitle,
			Intro:        x.defaults.Intro,
			SectionLabel: x.defaults.SectionLabel,
			SectionTitle: x.defaults.SectionTitle,
		},
	}
	for _, line := range lines.Split(body) {
		s.step(line)
	}
	s.closeEntry()
	return s.res
}

// state is the fold accumulator. open is nil outside any H3 entry.
type state struct {
	x    *Extractor
	res  Result
	open *models.IndexEntry
}

// step applies the first matching rule to line.
func (s *state) step(line string) {
	switch {
	case strings.HasPrefix(line, "# "):
		title := strings.TrimSpace(line[2:])
		s.res.Title, s.res.Subtitle = title, title

	case strings.HasPrefix(line, "## ") && s.res.HeaderTitle == s.x.defaults.HeaderTitle:
		s.res.HeaderTitle = strings.TrimSpace(line[3:])

	case strings.HasPrefix(line, "## ") && (strings.Contains(line, "Published") || strings.Contains(line, "Upcoming")):
		// No guard: a later matching H2 overrides an earlier one.
		s.res.SectionTitle = strings.TrimSpace(line[3:])

	case strings.HasPrefix(line, "### "):
		s.closeEntry()
		s.open = &models.IndexEntry{
			Title:  strings.TrimSpace(line[4:]),
			Status: defaultStatus,
		}

	case s.open != nil && lines.HasAnyPrefix(line, "**Status:**", "<strong>Status:</strong>"):
		s.applyStatus(line)

	case s.open != nil && line != "" &&
		!lines.HasAnyPrefix(line, "#", "**", "[", "---", "*") &&
		s.open.Summary == "":
		s.open.Summary = line

	case s.open != nil && strings.HasPrefix(line, "[Explore]"):
		if m := exploreRe.FindStringSubmatch(line); m != nil {
			s.open.Link = m[1]
		}

	case s.open == nil && line != "" &&
		!lines.HasAnyPrefix(line, "#", "---") &&
		s.res.Intro == s.x.defaults.Intro:
		if !lines.HasAnyPrefix(line, "**", "[") {
			s.res.Intro = line
		}
	}
}

func (s *state) applyStatus(line string) {
	text := strings.ReplaceAll(line, "**Status:**", "")
	text = strings.TrimSpace(strings.ReplaceAll(text, "<strong>Status:</strong>", ""))
	parts := strings.Split(text, "|")
	if len(parts) < 2 {
		return
	}
	s.open.Status = strings.TrimSpace(parts[0])
	s.open.Date = strings.TrimSpace(strings.ReplaceAll(parts[1], "Updated", ""))
}

// closeEntry appends the open entry, if any, assigning its accent colour by
// position and its status class by lookup.
func (s *state) closeEntry() {
	if s.open == nil {
		return
	}
	entry := *s.open
	entry.AccentColor = s.x.theme.Accent(len(s.res.Entries))
	entry.StatusClass = s.x.theme.StatusClass(entry.Status)
	s.res.Entries = append(s.res.Entries, entry)
	s.open = nil
}
