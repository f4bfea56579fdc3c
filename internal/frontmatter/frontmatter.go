// Package frontmatter splits Markdown sources into front matter and body and
// resolves the document title.
package frontmatter

import (
	"bytes"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/value"
)

// Meta is the typed view of the well-known front-matter keys.
type Meta struct {
	Title    string   `json:"title,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Date     string   `json:"date,omitempty"`
	Template string   `json:"template,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Result holds the output of splitting a Markdown file.
type Result struct {
	Meta Meta
	Raw  value.Map
	Body string
}

// Parse separates the leading front-matter block from the body. Content
// without a block, with an unterminated block, or with invalid YAML is
// returned whole as the body with empty front matter.
func Parse(data []byte) Result {
	var raw map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader(data), &raw)
	if err != nil {
		return Result{Raw: value.Map{}, Body: string(data)}
	}
	fm := value.FromMap(raw)
	return Result{
		Meta: Meta{
			Title:    strings.TrimSpace(fm.Text("title")),
			Excerpt:  fm.Text("excerpt"),
			Date:     fm.Text("date"),
			Template: fm.Text("template"),
			Tags:     fm.Strings("tags"),
		},
		Raw:  fm,
		Body: string(rest),
	}
}

// Load parses a source file into a Document. relPath is slash-separated.
func Load(relPath string, data []byte, fileIndex int) models.Document {
	r := Parse(data)
	name := path.Base(relPath)
	return models.Document{
		Path:        relPath,
		Name:        name,
		Title:       ResolveTitle(r.Meta.Title, r.Body, name),
		Body:        r.Body,
		Frontmatter: r.Raw,
		FileIndex:   fileIndex,
	}
}

// ResolveTitle returns the front-matter title, else the first H1 of body,
// else the file name rendered as a title.
func ResolveTitle(fmTitle, body, fileName string) string {
	if fmTitle != "" {
		return fmTitle
	}
	if h1 := FirstHeading(body); h1 != "" {
		return h1
	}
	return FilenameTitle(fileName)
}

// FirstHeading returns the text of the first "# " line, or "".
func FirstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if h, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(h)
		}
	}
	return ""
}

// FilenameTitle turns "my-first_post.md" into "My First Post".
func FilenameTitle(fileName string) string {
	name := strings.TrimSuffix(fileName, path.Ext(fileName))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
}

// FormatDate renders a front-matter date as "January 2006". Unparseable
// input is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2006")
		}
	}
	return s
}
