// Package render executes page templates from the templates directory.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/starford/pagesmith/internal/checksum"
	"github.com/starford/pagesmith/internal/models"
)

// DefaultTemplate is used when a content type names no template.
const DefaultTemplate = "default.html"

// Renderer holds the parsed template set. Reload swaps the set atomically
// so renders in flight keep using the previous one.
type Renderer struct {
	dir string

	mu          sync.RWMutex
	set         *template.Template
	fingerprint string
}

// New parses every .html and .tmpl file under dir. A missing directory
// yields an empty set.
func New(dir string) (*Renderer, error) {
	r := &Renderer{dir: dir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Funcs are available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": toHTML,
		"inc":      func(i int) int { return i + 1 },
	}
}

// Reload re-parses the template directory.
func (r *Renderer) Reload() error {
	var files []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".tmpl":
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("render: walk %s: %w", r.dir, err)
	}

	// Name and content of every file, so an edit to any template changes it.
	parts := make([][]byte, 0, 2*len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("render: read %s: %w", f, err)
		}
		rel, _ := filepath.Rel(r.dir, f)
		parts = append(parts, []byte(filepath.ToSlash(rel)+"\x00"), data)
	}

	set := template.New("pagesmith").Funcs(Funcs())
	if len(files) > 0 {
		if set, err = set.ParseFiles(files...); err != nil {
			return fmt.Errorf("render: parse templates: %w", err)
		}
	}

	r.mu.Lock()
	r.set = set
	r.fingerprint = checksum.Sum(parts...)
	r.mu.Unlock()
	return nil
}

// Fingerprint identifies the loaded template set. It changes whenever a
// template file is added, removed or edited and the set is reloaded.
func (r *Renderer) Fingerprint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fingerprint
}

// Has reports whether a template with the given file name is loaded.
func (r *Renderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Lookup(name) != nil
}

// Render executes the named template. When it is not loaded a minimal page
// carrying only the title is returned instead.
func (r *Renderer) Render(name string, data models.TemplateData) (string, error) {
	r.mu.RLock()
	tpl := r.set.Lookup(name)
	r.mu.RUnlock()

	if tpl == nil {
		return Fallback(data), nil
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// Fallback renders the page used when a template is missing.
func Fallback(data models.TemplateData) string {
	title, _ := data["title"].(string)
	if title == "" {
		title = "Untitled"
	}
	return "<html><body><h1>" + html.EscapeString(title) + "</h1></body></html>"
}

func toHTML(value any) template.HTML {
	switch v := value.(type) {
	case nil:
		return ""
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
