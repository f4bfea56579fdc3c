// Package gallery expands {% include gallery %} macros into <figure> blocks
// built from image lists stored in front matter.
package gallery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/pagesmith/internal/value"
)

// DefaultID is the front-matter key read when the macro has no id parameter.
const DefaultID = "gallery"

var (
	macroRe = regexp.MustCompile(`\{%\s*include\s+gallery\s*([^%]*?)%\}`)
	paramRe = regexp.MustCompile(`(\w+)\s*=\s*["'](.*?)["']`)
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Item is one image of a gallery.
type Item struct {
	ImagePath string
	URL       string
	Alt       string
	Title     string
}

// Expand replaces every gallery macro in body. Missing or empty galleries
// become an HTML comment; the rest of the body is left untouched.
func Expand(body string, fm value.Map) string {
	if !strings.Contains(body, "{%") {
		return body
	}
	return macroRe.ReplaceAllStringFunc(body, func(macro string) string {
		m := macroRe.FindStringSubmatch(macro)
		return render(ParseParams(m[1]), fm)
	})
}

// ParseParams reads key="value" and key='value' pairs. Later keys win.
func ParseParams(s string) map[string]string {
	params := make(map[string]string)
	for _, m := range paramRe.FindAllStringSubmatch(s, -1) {
		params[m[1]] = m[2]
	}
	return params
}

// Items resolves the gallery stored under id. Entries that are not maps are
// ignored.
func Items(fm value.Map, id string) []Item {
	entries := fm.Maps(id)
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		path := e.Text("image_path")
		if path == "" {
			path = e.Text("imagePath")
		}
		items = append(items, Item{
			ImagePath: path,
			URL:       e.Text("url"),
			Alt:       e.Text("alt"),
			Title:     e.Text("title"),
		})
	}
	return items
}

// Layout returns the explicit layout, or one chosen from the item count.
func Layout(params map[string]string, count int) string {
	if layout, ok := params["layout"]; ok {
		return layout
	}
	switch {
	case count == 2:
		return "half"
	case count >= 3:
		return "third"
	default:
		return ""
	}
}

func render(params map[string]string, fm value.Map) string {
	id, ok := params["id"]
	if !ok {
		id = DefaultID
	}
	items := Items(fm, id)
	if len(items) == 0 {
		return fmt.Sprintf("<!-- Gallery '%s' not found or empty -->", commentText(id))
	}

	var classes []string
	for _, c := range []string{Layout(params, len(items)), params["class"]} {
		if strings.TrimSpace(c) != "" {
			classes = append(classes, c)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<figure class=\"%s\">\n", strings.Join(classes, " "))
	for _, it := range items {
		if strings.TrimSpace(it.ImagePath) == "" {
			continue
		}
		img := fmt.Sprintf("<img src=\"%s\" alt=\"%s\">", escape(it.ImagePath), escape(it.Alt))
		if strings.TrimSpace(it.URL) == "" {
			b.WriteString("    " + img + "\n")
			continue
		}
		fmt.Fprintf(&b, "    <a href=\"%s\"", escape(it.URL))
		if strings.TrimSpace(it.Title) != "" {
			fmt.Fprintf(&b, " title=\"%s\"", escape(it.Title))
		}
		b.WriteString(">\n")
		b.WriteString("      " + img + "\n")
		b.WriteString("    </a>\n")
	}
	if caption := params["caption"]; strings.TrimSpace(caption) != "" {
		fmt.Fprintf(&b, "  <figcaption>%s</figcaption>\n", escape(caption))
	}
	b.WriteString("</figure>\n")
	return b.String()
}

func escape(s string) string {
	return attrEscaper.Replace(s)
}

// commentText makes s safe inside an HTML comment: markup is escaped and
// no "--" survives to close the comment early.
func commentText(s string) string {
	s = escape(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
