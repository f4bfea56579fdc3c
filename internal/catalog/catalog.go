// Package catalog extracts the software catalog shape: a styled H1 title, an
// intro line, era sections (H2 with parentheses) each holding narrative text
// and a Markdown table, and a closing numbered traits list.
package catalog

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/pagesmith/internal/lines"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/theme"
)

// DefaultSubtitle is used when no subtitle is configured.
const DefaultSubtitle = "A Curated Collection"

var boldRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Result is the structured form of a catalog page.
type Result struct {
	Title    string // styled H1, empty when the body has none
	Subtitle string
	Intro    string
	Eras     []models.EraSection
	Traits   []models.Trait
}

// Data returns the result as template data. header_title mirrors title.
func (r Result) Data() models.TemplateData {
	eras := make([]map[string]any, len(r.Eras))
	for i, e := range r.Eras {
		eras[i] = e.Data()
	}
	traits := make([]map[string]any, len(r.Traits))
	for i, t := range r.Traits {
		traits[i] = t.Data()
	}
	return models.TemplateData{
		"title":        r.Title,
		"subtitle":     r.Subtitle,
		"header_title": r.Title,
		"intro":        r.Intro,
		"era_sections": eras,
		"traits":       traits,
	}
}

// Extractor parses catalog bodies. It holds only read-only configuration.
type Extractor struct {
	subtitle string
	theme    theme.Theme
}

// New creates an Extractor. An empty subtitle selects DefaultSubtitle.
func New(subtitle string, th theme.Theme) *Extractor {
	if subtitle == "" {
		subtitle = DefaultSubtitle
	}
	return &Extractor{subtitle: subtitle, theme: th}
}

// Extract folds the body's lines through the catalog state machine.
func (x *Extractor) Extract(body string) Result {
	s := &state{x: x, res: Result{Subtitle: x.subtitle}}
	for _, line := range lines.Split(body) {
		s.step(line)
	}
	s.closeEra()
	return s.res
}

// openEra is an era section still collecting its table and narrative lines.
type openEra struct {
	section models.EraSection
	table   []string
	desc    []string
}

type state struct {
	x        *Extractor
	res      Result
	open     *openEra
	inTable  bool
	inTraits bool
}

func (s *state) step(line string) {
	switch {
	case strings.HasPrefix(line, "# "):
		s.res.Title = StyleTitle(strings.TrimSpace(line[2:]))

	case line != "" && !lines.HasAnyPrefix(line, "#", "---", "|") &&
		s.res.Intro == "" && !s.inTraits && s.open == nil:
		s.res.Intro = line

	case strings.HasPrefix(line, "## ") && strings.Contains(line, "("):
		s.closeEra()
		s.open = &openEra{section: s.x.eraHeader(strings.TrimSpace(line[3:]))}
		s.inTable = false

	case strings.HasPrefix(line, "## ") && strings.Contains(line, "Traits"):
		s.closeEra()
		s.inTraits = true

	case s.inTraits && startsWithDigit(line) && strings.Contains(line, ".") && strings.Contains(line, "**"):
		if t, ok := parseTrait(line); ok {
			s.res.Traits = append(s.res.Traits, t)
		}

	case strings.HasPrefix(line, "|") && !strings.HasPrefix(line, "|---"):
		s.inTable = true
		if s.open != nil {
			s.open.table = append(s.open.table, line)
		}

	case s.inTable && !strings.HasPrefix(line, "|"):
		// first non-table line ends the table and is consumed
		s.inTable = false

	case s.open != nil && !s.inTable && !s.inTraits && line != "" && !lines.HasAnyPrefix(line, "---", "#"):
		s.open.desc = append(s.open.desc, line)
	}
}

// closeEra appends the open era when its table produced at least one row.
func (s *state) closeEra() {
	if s.open == nil {
		return
	}
	era := s.open
	s.open = nil
	rows := ParseTable(era.table)
	if len(rows) == 0 {
		return
	}
	era.section.Software = rows
	era.section.Description = DescriptionHTML(era.desc)
	s.res.Eras = append(s.res.Eras, era.section)
}

// eraHeader parses "30+ Years (Legends)" or the badge-first "HOST (Windows 11 Host)".
func (x *Extractor) eraHeader(text string) models.EraSection {
	parts := strings.Split(text, "(")
	first := strings.TrimSpace(parts[0])
	second := first
	if len(parts) > 1 {
		second = strings.TrimSpace(strings.TrimRight(parts[1], ")"))
	}

	var years, name, badge string
	if isBadgeCode(first) || x.theme.IsBadge(first) {
		badge, name, years = first, second, first
	} else {
		years, name, badge = first, second, second
	}
	class, color := x.theme.Badge(badge)
	return models.EraSection{
		Years:      years,
		Name:       name,
		BadgeClass: class,
		Color:      color,
	}
}

// isBadgeCode reports whether s holds only upper-case letters, spaces and dots.
func isBadgeCode(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) && !unicode.IsSpace(r) && r != '.' {
			return false
		}
	}
	return true
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsDigit(r)
}

// parseTrait reads "1. **Title** — description". Entries without a bold
// title are rejected.
func parseTrait(line string) (models.Trait, bool) {
	_, text, ok := strings.Cut(line, ".")
	if !ok {
		return models.Trait{}, false
	}
	text = strings.TrimSpace(text)
	m := boldRe.FindStringSubmatch(text)
	if m == nil {
		return models.Trait{}, false
	}
	var desc string
	if _, after, found := strings.Cut(text, "—"); found {
		desc = strings.TrimSpace(after)
	}
	return models.Trait{Title: m[1], Description: desc}, true
}

// ParseTable converts buffered table lines into rows. The first line is the
// header and is skipped, as is any row with fewer than six pipe-split cells.
func ParseTable(table []string) []models.SoftwareRow {
	if len(table) < 2 {
		return nil
	}
	var rows []models.SoftwareRow
	for _, line := range table[1:] {
		cells := strings.Split(line, "|")
		if len(cells) < 6 {
			continue
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, models.SoftwareRow{
			Name:        strings.TrimSpace(strings.ReplaceAll(cells[1], "**", "")),
			Year:        cells[2],
			YearsActive: cells[3],
			Category:    cells[4],
			Description: cells[5],
		})
	}
	return rows
}

// DescriptionHTML renders narrative lines: runs of "- " bullets become a
// <ul>, every other line a <p> with **bold** converted to <strong>.
func DescriptionHTML(desc []string) string {
	var b strings.Builder
	inList := false
	for _, line := range desc {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if item, ok := strings.CutPrefix(line, "- "); ok {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + item + "</li>")
			continue
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		b.WriteString("<p>" + boldRe.ReplaceAllString(line, "<strong>$1</strong>") + "</p>")
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}
