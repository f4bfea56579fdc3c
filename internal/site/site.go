// Package site turns a tree of Markdown sources into rendered pages.
package site

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/pagesmith/internal/checksum"
	"github.com/starford/pagesmith/internal/frontmatter"
	"github.com/starford/pagesmith/internal/gallery"
	"github.com/starford/pagesmith/internal/manifest"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/processor"
	"github.com/starford/pagesmith/internal/prose"
	"github.com/starford/pagesmith/internal/render"
	"github.com/starford/pagesmith/internal/storage"
)

// Defaults applied when the configuration leaves a value empty.
const (
	DefaultContentType = "default"
	DefaultFooterText  = "Articles"
	DefaultBackLink    = "../index.html"
	DefaultWorkers     = 4
)

// typeAliases maps processor names to the content type they render with
// when no content type carries the processor's own name.
var typeAliases = map[string]string{
	processor.NameListing: "index",
	processor.NameCatalog: "software_list",
}

// ContentType describes how one family of pages is laid out.
type ContentType struct {
	Template     string   `yaml:"template"`
	CSSFiles     []string `yaml:"css_files"`
	BackLink     string   `yaml:"back_link"`
	SourcePath   string   `yaml:"source_path"`
	OutputSubdir string   `yaml:"output_subdir"`
	FooterText   string   `yaml:"footer_text"`
	IncludePaths []string `yaml:"include_paths"`
}

// Config holds the build settings that do not come from the processors.
type Config struct {
	ContentTypes map[string]ContentType
	FooterText   string
	Workers      int
	Incremental  bool
	// Fingerprint identifies settings outside Config that shape page
	// output, such as the theme and processor rules. Changing it rebuilds
	// every page on the next incremental build.
	Fingerprint string
}

// EventCallback is called for every page the builder writes, removes or
// fails on. kind is one of the Event* constants.
type EventCallback func(kind, path string)

// Event kinds reported through EventCallback.
const (
	EventBuilt   = "page.built"
	EventRemoved = "page.removed"
	EventFailed  = "page.failed"
	EventReload  = "site.reload"
)

// Option configures a Builder.
type Option func(*Builder)

// WithManifest records every build in store and enables incremental builds.
func WithManifest(store manifest.Store) Option {
	return func(b *Builder) {
		b.manifest = store
	}
}

// WithLogger sets the builder's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithEvents registers a callback for page events.
func WithEvents(cb EventCallback) Option {
	return func(b *Builder) {
		b.events = cb
	}
}

// Builder runs documents through the processor pipeline and writes the
// rendered pages to the output tree. A Builder is safe for concurrent use
// by its own workers; callers must not run two Builds at once.
type Builder struct {
	cfg       Config
	settings  string // digest of everything in cfg that affects output
	typeNames []string
	source    *storage.FS
	output    *storage.FS
	registry  *processor.Registry
	prose     *prose.Renderer
	templates *render.Renderer
	manifest  manifest.Store
	logger    *slog.Logger
	events    EventCallback
}

// New creates a Builder reading from source and writing to output.
func New(cfg Config, source, output *storage.FS, registry *processor.Registry, templates *render.Renderer, opts ...Option) *Builder {
	if cfg.FooterText == "" {
		cfg.FooterText = DefaultFooterText
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	names := make([]string, 0, len(cfg.ContentTypes))
	for name := range cfg.ContentTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	b := &Builder{
		cfg:       cfg,
		settings:  settingsDigest(cfg),
		typeNames: names,
		source:    source,
		output:    output,
		registry:  registry,
		prose:     prose.New(),
		templates: templates,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func settingsDigest(cfg Config) string {
	// Map keys marshal sorted, so equal configs give equal digests.
	types, _ := json.Marshal(cfg.ContentTypes)
	return checksum.Sum(types, []byte("\x00"+cfg.FooterText+"\x00"+cfg.Fingerprint))
}

// Source returns the source tree.
func (b *Builder) Source() *storage.FS { return b.source }

// CompiledMonth formats t the way page footers show the build date.
func CompiledMonth(t time.Time) string {
	return t.Format("January 2006")
}

// Extract runs one document through the pipeline without writing anything.
// relPath is slash-separated and relative to the source root.
func (b *Builder) Extract(relPath string, content []byte, fileIndex int) (models.Page, error) {
	page, _, err := b.extract(relPath, content, fileIndex)
	return page, err
}

func (b *Builder) extract(relPath string, content []byte, fileIndex int) (models.Page, models.Document, error) {
	doc := frontmatter.Load(relPath, content, fileIndex)
	doc.Body = gallery.Expand(doc.Body, doc.Frontmatter)

	p, err := b.registry.Select(doc)
	if err != nil {
		return models.Page{}, doc, err
	}
	res := p.Process(doc)

	typeName, ct := b.contentType(p.Name(), relPath)
	data := b.baseData(doc, ct)
	data.Merge(res.Data)
	if !res.SkipProseConversion {
		body, err := b.prose.Render(doc.Body)
		if err != nil {
			return models.Page{}, doc, fmt.Errorf("site: %s: %w", relPath, err)
		}
		data["body_content"] = body
	}

	title, _ := data["title"].(string)
	return models.Page{
		SourcePath:  relPath,
		OutputPath:  OutputPath(relPath, ct),
		Processor:   p.Name(),
		ContentType: typeName,
		Template:    b.templateFor(doc, ct),
		Title:       title,
		Data:        data,
	}, doc, nil
}

// contentType resolves the content type for a page: the processor's own
// name or alias, else the first type (by name) whose source_path prefixes
// relPath, else the default type.
func (b *Builder) contentType(processorName, relPath string) (string, ContentType) {
	for _, name := range []string{processorName, typeAliases[processorName]} {
		if ct, ok := b.cfg.ContentTypes[name]; ok && name != "" {
			return name, ct
		}
	}
	for _, name := range b.typeNames {
		ct := b.cfg.ContentTypes[name]
		if ct.SourcePath != "" && strings.HasPrefix(relPath, ct.SourcePath) {
			return name, ct
		}
	}
	return DefaultContentType, b.cfg.ContentTypes[DefaultContentType]
}

func (b *Builder) baseData(doc models.Document, ct ContentType) models.TemplateData {
	footer := ct.FooterText
	if footer == "" {
		footer = b.cfg.FooterText
	}
	backLink := ct.BackLink
	if backLink == "" {
		backLink = DefaultBackLink
	}
	css := ct.CSSFiles
	if css == nil {
		css = []string{}
	}
	return models.TemplateData{
		"title":       doc.Title,
		"css_files":   css,
		"footer_text": footer,
		"back_link":   backLink,
	}
}

// templateFor prefers a front-matter template that exists over the content
// type's template.
func (b *Builder) templateFor(doc models.Document, ct ContentType) string {
	if name := doc.Frontmatter.Text("template"); name != "" && b.templates.Has(name) {
		return name
	}
	if ct.Template != "" {
		return ct.Template
	}
	return render.DefaultTemplate
}

// OutputPath maps a source path to its page path under the output root.
func OutputPath(relPath string, ct ContentType) string {
	rel := relPath
	if prefix := strings.TrimSuffix(ct.SourcePath, "/"); prefix != "" {
		if trimmed, ok := strings.CutPrefix(rel, prefix+"/"); ok {
			rel = trimmed
		}
	}
	rel = strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
	return path.Join(ct.OutputSubdir, rel)
}
