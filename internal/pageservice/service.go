// Package pageservice is the read side shared by the HTTP API and the MCP
// server: manifest queries, source access and on-demand extraction.
package pageservice

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/pagesmith/internal/apperr"
	"github.com/starford/pagesmith/internal/manifest"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/site"
)

// PageDetail is a built page together with freshly extracted template data.
type PageDetail struct {
	SourcePath  string              `json:"source_path"`
	OutputPath  string              `json:"output_path"`
	Processor   string              `json:"processor"`
	ContentType string              `json:"content_type"`
	Template    string              `json:"template"`
	Title       string              `json:"title"`
	Checksum    string              `json:"checksum,omitempty"`
	BuiltAt     *time.Time          `json:"built_at,omitempty"`
	Data        models.TemplateData `json:"data"`
}

// Service coordinates the builder and the manifest.
type Service struct {
	builder *site.Builder
	db      manifest.Store
}

// NewService creates a new page service.
func NewService(builder *site.Builder, db manifest.Store) *Service {
	return &Service{builder: builder, db: db}
}

// ListPages returns manifest rows ordered by source path.
func (s *Service) ListPages(_ context.Context, limit, offset int, processor string) ([]manifest.PageRow, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, processor)
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []manifest.PageRow{}
	}
	return rows, total, nil
}

// GetPage re-extracts the source at path and attaches its manifest row, if
// the page has been built.
func (s *Service) GetPage(ctx context.Context, p string) (*PageDetail, error) {
	data, err := s.ReadSource(ctx, p)
	if err != nil {
		return nil, err
	}
	idx, err := s.fileIndex(p)
	if err != nil {
		return nil, err
	}
	page, err := s.builder.Extract(p, data, idx)
	if err != nil {
		return nil, err
	}
	detail := &PageDetail{
		SourcePath:  page.SourcePath,
		OutputPath:  page.OutputPath,
		Processor:   page.Processor,
		ContentType: page.ContentType,
		Template:    page.Template,
		Title:       page.Title,
		Data:        page.Data,
	}
	if row, err := s.db.GetPage(p); err == nil {
		detail.Checksum = row.Checksum
		builtAt := row.BuiltAt
		detail.BuiltAt = &builtAt
	}
	return detail, nil
}

// Extract runs content through the pipeline as if it were stored at p.
// Nothing is written.
func (s *Service) Extract(_ context.Context, p string, content []byte) (*models.Page, error) {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || path.Ext(p) != ".md" {
		return nil, fmt.Errorf("pageservice: path %q must name a .md file: %w", p, apperr.ErrInvalidInput)
	}
	idx, err := s.fileIndex(p)
	if err != nil {
		return nil, err
	}
	page, err := s.builder.Extract(p, content, idx)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ReadSource returns the raw Markdown stored at p.
func (s *Service) ReadSource(_ context.Context, p string) ([]byte, error) {
	if path.Ext(p) != ".md" {
		return nil, fmt.Errorf("pageservice: %s is not a Markdown source: %w", p, apperr.ErrInvalidInput)
	}
	return s.builder.Source().Read(p)
}

// ListSources returns every Markdown source below dir.
func (s *Service) ListSources(_ context.Context, dir string) ([]models.SourceFile, error) {
	return s.builder.Source().List(dir)
}

// Search queries page titles and bodies.
func (s *Service) Search(_ context.Context, query string, limit int) ([]manifest.SearchResult, error) {
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []manifest.SearchResult{}
	}
	return results, nil
}

// fileIndex returns p's position among the sorted sources, or the position
// it would take if it were added.
func (s *Service) fileIndex(p string) (int, error) {
	files, err := s.builder.Source().List("")
	if err != nil {
		return 0, err
	}
	for i, f := range files {
		if f.Path >= p {
			return i, nil
		}
	}
	return len(files), nil
}
