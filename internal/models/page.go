// Package models defines the domain types for pagesmith.
package models

import (
	"time"

	"github.com/starford/pagesmith/internal/value"
)

// TemplateData is the name→value mapping handed to the template renderer.
// Values are strings, bools, ints, nested maps or lists of maps.
type TemplateData map[string]any

// Merge copies every entry of other into d, overwriting existing keys.
func (d TemplateData) Merge(other TemplateData) {
	for key, v := range other {
		d[key] = v
	}
}

// Document is one Markdown source with its front matter already split off.
type Document struct {
	Path        string    // slash-separated path relative to the source root
	Name        string    // base file name, e.g. "index.md"
	Title       string    // resolved title (front matter, first H1, or file name)
	Body        string    // Markdown body without the front-matter block
	Frontmatter value.Map // every front-matter key, loosely typed
	FileIndex   int       // position among all documents of the build
}

// SourceFile is a lightweight listing entry for a Markdown source.
type SourceFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is the result of running one document through the pipeline.
type Page struct {
	SourcePath  string       `json:"source_path"`
	OutputPath  string       `json:"output_path"`
	Processor   string       `json:"processor"`
	ContentType string       `json:"content_type"`
	Template    string       `json:"template"`
	Title       string       `json:"title"`
	Data        TemplateData `json:"data"`
}
