// Package processor selects and runs the extraction strategy for a document.
package processor

import (
	"github.com/starford/pagesmith/internal/models"
)

// Built-in processor names.
const (
	NameCatalog = "software_list"
	NameListing = "index_page"
	NameArticle = "standard_article"
)

// Result is the output of a processor run.
type Result struct {
	Data models.TemplateData
	// SkipProseConversion is true when Data already holds finished HTML and
	// the body must not be run through the Markdown renderer.
	SkipProseConversion bool
}

// Processor is one extraction strategy. Implementations must be safe for
// concurrent use; Process never fails, it falls back to defaults instead.
type Processor interface {
	Name() string
	Priority() int
	Detect(doc models.Document) bool
	Process(doc models.Document) Result
}
