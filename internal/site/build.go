package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/pagesmith/internal/apperr"
	"github.com/starford/pagesmith/internal/checksum"
	"github.com/starford/pagesmith/internal/manifest"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/storage"
)

// Failure records one document the build could not produce.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarises a build.
type Report struct {
	Built    []string      `json:"built"`
	Skipped  []string      `json:"skipped"`
	Removed  []string      `json:"removed"`
	Failed   []Failure     `json:"failed"`
	Copied   int           `json:"copied"`
	Duration time.Duration `json:"duration"`
}

func (r *Report) sort() {
	sort.Strings(r.Built)
	sort.Strings(r.Skipped)
	sort.Strings(r.Removed)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Path < r.Failed[j].Path })
}

// Build converts every source document. With force set, or without a
// manifest, every document is rebuilt; otherwise documents whose checksum
// (content, file index, settings and templates) and output are unchanged
// are skipped. Per-document failures are recorded
// in the report and never stop the batch.
func (b *Builder) Build(ctx context.Context, force bool) (*Report, error) {
	start := time.Now()

	files, err := b.source.List("")
	if err != nil {
		return nil, fmt.Errorf("site: discover sources: %w", err)
	}

	previous := map[string]string{}
	if b.manifest != nil {
		if previous, err = b.manifest.AllChecksums(); err != nil {
			return nil, fmt.Errorf("site: load manifest: %w", err)
		}
	}
	skipUnchanged := b.manifest != nil && b.cfg.Incremental && !force

	report := &Report{}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, f := range files {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			built, err := b.buildOne(f.Path, i, previous[f.Path], skipUnchanged)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed = append(report.Failed, Failure{Path: f.Path, Error: err.Error()})
				b.logger.Warn("build: document failed", slog.String("path", f.Path), slog.String("error", err.Error()))
				b.emit(EventFailed, f.Path)
			case built:
				report.Built = append(report.Built, f.Path)
				b.emit(EventBuilt, f.Path)
			default:
				report.Skipped = append(report.Skipped, f.Path)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Removed = b.prune(files, previous)
	report.sort()
	report.Copied = b.copyIncludes()
	report.Duration = time.Since(start)

	b.logger.Info("build: complete",
		slog.Int("built", len(report.Built)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("removed", len(report.Removed)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("copied", report.Copied),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// buildOne renders one document. It reports false when the document was
// skipped as unchanged.
func (b *Builder) buildOne(relPath string, fileIndex int, prevSum string, skipUnchanged bool) (bool, error) {
	data, err := b.source.Read(relPath)
	if err != nil {
		return false, err
	}
	sum := checksum.Sum(data, []byte("\x00"+strconv.Itoa(fileIndex)),
		[]byte(b.settings), []byte(b.templates.Fingerprint()))

	if skipUnchanged && prevSum == sum {
		if row, err := b.manifest.GetPage(relPath); err == nil && b.output.Exists(row.OutputPath) {
			return false, nil
		}
	}

	page, doc, err := b.extract(relPath, data, fileIndex)
	if err != nil {
		return false, err
	}
	if !b.templates.Has(page.Template) {
		b.logger.Warn("build: template not found, using fallback",
			slog.String("path", relPath), slog.String("template", page.Template))
	}
	html, err := b.templates.Render(page.Template, page.Data)
	if err != nil {
		return false, err
	}
	if err := b.output.Write(page.OutputPath, []byte(html)); err != nil {
		return false, err
	}

	if b.manifest != nil {
		if prev, err := b.manifest.GetPage(relPath); err == nil && prev.OutputPath != page.OutputPath {
			b.removeOutput(prev.OutputPath)
		}
		row := manifest.PageRow{
			SourcePath: relPath,
			OutputPath: page.OutputPath,
			Processor:  page.Processor,
			Title:      page.Title,
			Checksum:   sum,
		}
		if err := b.manifest.UpsertPage(row, doc.Body); err != nil {
			return false, err
		}
	}
	b.logger.Debug("build: wrote page",
		slog.String("path", relPath),
		slog.String("output", page.OutputPath),
		slog.String("processor", page.Processor))
	return true, nil
}

// prune removes outputs and manifest rows of sources that no longer exist.
func (b *Builder) prune(files []models.SourceFile, previous map[string]string) []string {
	if b.manifest == nil {
		return nil
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.Path] = true
	}

	var removed []string
	for p := range previous {
		if present[p] {
			continue
		}
		if row, err := b.manifest.GetPage(p); err == nil {
			b.removeOutput(row.OutputPath)
		}
		if err := b.manifest.DeletePage(p); err != nil {
			b.logger.Warn("build: prune failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed = append(removed, p)
		b.emit(EventRemoved, p)
	}
	return removed
}

func (b *Builder) removeOutput(outputPath string) {
	if err := b.output.Delete(outputPath); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		b.logger.Warn("build: remove output failed", slog.String("output", outputPath), slog.String("error", err.Error()))
	}
}

// copyIncludes copies every content type's include paths from the source
// tree to the output tree.
func (b *Builder) copyIncludes() int {
	total := 0
	for _, name := range b.typeNames {
		ct := b.cfg.ContentTypes[name]
		for _, p := range ct.IncludePaths {
			n, err := storage.CopyTree(b.output, b.source, path.Join(ct.SourcePath, p), path.Join(ct.OutputSubdir, p))
			total += n
			if err != nil {
				b.logger.Warn("build: copy include failed",
					slog.String("content_type", name),
					slog.String("path", p),
					slog.String("error", err.Error()))
			}
		}
	}
	return total
}

func (b *Builder) emit(kind, p string) {
	if b.events != nil {
		b.events(kind, p)
	}
}
