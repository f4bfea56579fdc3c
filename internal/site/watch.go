package site

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const rebuildDelay = 200 * time.Millisecond

// Watch rebuilds the site whenever a source document or template changes,
// until ctx is cancelled. Bursts of events are debounced into one build.
// Template changes reload the template set and force a full rebuild.
//
// New directories created at runtime are added to the watch list. The
// output directory is never watched even when it lives below the source
// root.
func (b *Builder) Watch(ctx context.Context, templatesDir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	skip := b.output.Root()
	roots := []string{b.source.Root()}
	if templatesDir != "" {
		if abs, err := filepath.Abs(templatesDir); err == nil {
			templatesDir = abs
			roots = append(roots, abs)
		}
	}
	for _, root := range roots {
		if err := addDirsRecursive(w, root, skip); err != nil {
			return err
		}
	}

	b.logger.Info("watcher: started", slog.String("root", b.source.Root()), slog.String("templates", templatesDir))

	var timer *time.Timer
	var fire <-chan time.Time
	force := false

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(rebuildDelay)
			fire = timer.C
		} else {
			timer.Reset(rebuildDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			b.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			b.rebuild(ctx, force)
			force = false

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := ev.Name
			if within(name, skip) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, name, skip); addErr != nil {
						b.logger.Warn("watcher: add new dir failed",
							slog.String("path", name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			switch {
			case templatesDir != "" && within(name, templatesDir):
				force = true
				schedule()
			case strings.HasSuffix(name, ".md"):
				schedule()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// A removed directory takes its documents with it.
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (b *Builder) rebuild(ctx context.Context, force bool) {
	if force {
		if err := b.templates.Reload(); err != nil {
			b.logger.Warn("watcher: reload templates failed", slog.String("error", err.Error()))
		}
	}
	report, err := b.Build(ctx, force)
	if err != nil {
		b.logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
		return
	}
	if force || len(report.Built)+len(report.Removed) > 0 {
		b.emit(EventReload, "")
	}
}

// within reports whether name is dir or lies below it.
func within(name, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// addDirsRecursive adds root and all its subdirectories, except skip, to
// the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path == skip {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
