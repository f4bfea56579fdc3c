package processor

import (
	"fmt"
	"strings"

	"github.com/starford/pagesmith/internal/catalog"
	"github.com/starford/pagesmith/internal/frontmatter"
	"github.com/starford/pagesmith/internal/listing"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/theme"
)

// Env is the read-only configuration shared by the built-in processors.
type Env struct {
	Theme           theme.Theme
	Listing         listing.Defaults
	ListingFile     string // file name that marks the root listing, e.g. "index.md"
	CatalogSubtitle string
	Compiled        string // build month shown in listing and catalog footers
}

// Catalog handles software catalog documents.
type Catalog struct {
	x        *catalog.Extractor
	compiled string
}

// NewCatalog creates the catalog processor.
func NewCatalog(env Env) *Catalog {
	return &Catalog{x: catalog.New(env.CatalogSubtitle, env.Theme), compiled: env.Compiled}
}

func (p *Catalog) Name() string  { return NameCatalog }
func (p *Catalog) Priority() int { return 100 }

// Detect accepts bodies carrying a table with Software and Years Active columns.
func (p *Catalog) Detect(doc models.Document) bool {
	return strings.Contains(doc.Body, "| Software |") && strings.Contains(doc.Body, "| Years Active |")
}

func (p *Catalog) Process(doc models.Document) Result {
	res := p.x.Extract(doc.Body)
	data := res.Data()
	if res.Title == "" {
		data["title"] = doc.Title
		data["header_title"] = catalog.StyleTitle(doc.Title)
	}
	data["footer_text"] = fmt.Sprintf("Compiled <span>%s</span> · A tribute to software that endures", p.compiled)
	return Result{Data: data, SkipProseConversion: true}
}

// Listing handles the root collection index.
type Listing struct {
	x        *listing.Extractor
	file     string
	compiled string
}

// NewListing creates the listing processor.
func NewListing(env Env) *Listing {
	file := env.ListingFile
	if file == "" {
		file = "index.md"
	}
	return &Listing{x: listing.New(env.Listing, env.Theme), file: file, compiled: env.Compiled}
}

func (p *Listing) Name() string  { return NameListing }
func (p *Listing) Priority() int { return 90 }

// Detect accepts the listing file by name, wherever it sits.
func (p *Listing) Detect(doc models.Document) bool {
	return doc.Name == p.file
}

func (p *Listing) Process(doc models.Document) Result {
	data := p.x.Extract(doc.Body).Data()
	date := frontmatter.FormatDate(doc.Frontmatter.Text("date"))
	if date == "" {
		date = p.compiled
	}
	data["date"] = date
	data["footer_text"] = fmt.Sprintf("Compiled <span>%s</span> · New collections ship as they are ready", date)
	return Result{Data: data, SkipProseConversion: true}
}

// Article is the fallback processor; it accepts everything and leaves the
// body to the prose renderer.
type Article struct {
	theme theme.Theme
}

// NewArticle creates the article processor.
func NewArticle(env Env) *Article {
	return &Article{theme: env.Theme}
}

func (p *Article) Name() string                { return NameArticle }
func (p *Article) Priority() int               { return 0 }
func (p *Article) Detect(models.Document) bool { return true }

func (p *Article) Process(doc models.Document) Result {
	return Result{Data: models.TemplateData{
		"accent_color": p.theme.Accent(doc.FileIndex),
		"date":         frontmatter.FormatDate(doc.Frontmatter.Text("date")),
		"excerpt":      doc.Frontmatter.Text("excerpt"),
	}}
}
