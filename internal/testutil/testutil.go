// Package testutil provides shared test helpers for setting up source trees,
// builders and manifest databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/pagesmith/internal/listing"
	"github.com/starford/pagesmith/internal/manifest"
	"github.com/starford/pagesmith/internal/processor"
	"github.com/starford/pagesmith/internal/render"
	"github.com/starford/pagesmith/internal/site"
	"github.com/starford/pagesmith/internal/storage"
	"github.com/starford/pagesmith/internal/theme"
)

// Compiled is the build month every test builder stamps on its pages.
const Compiled = "March 2025"

// DefaultTemplate is written as default.html into every test template dir.
const DefaultTemplate = `<title>{{.title}}</title><main>{{safeHTML .body_content}}</main>`

// TestDB creates a temporary manifest database that is automatically cleaned up.
func TestDB(t *testing.T) *manifest.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "pagesmith-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := manifest.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSource creates a temporary source directory with a storage provider.
func TestSource(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Site bundles a builder with the directories it works in.
type Site struct {
	SourceDir    string
	OutputDir    string
	TemplatesDir string
	DB           *manifest.DB
	Builder      *site.Builder
}

// WriteSource writes a source file, creating parent directories.
func (s *Site) WriteSource(t *testing.T, rel, content string) {
	t.Helper()
	abs := filepath.Join(s.SourceDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestSite creates temp source, output and template trees plus a manifest
// and a builder wired to all of them with the stock processors.
func TestSite(t *testing.T, cfg site.Config) *Site {
	t.Helper()
	s := &Site{TemplatesDir: t.TempDir(), OutputDir: t.TempDir()}

	var src *storage.FS
	s.SourceDir, src = TestSource(t)
	out, err := storage.NewFS(s.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.TemplatesDir, render.DefaultTemplate), []byte(DefaultTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err := render.New(s.TemplatesDir)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := processor.Build(processor.Env{
		Theme:    theme.Default(),
		Listing:  listing.DefaultPlaceholders(),
		Compiled: Compiled,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	s.DB = TestDB(t)
	s.Builder = site.New(cfg, src, out, reg, tpl,
		site.WithManifest(s.DB),
		site.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return s
}
