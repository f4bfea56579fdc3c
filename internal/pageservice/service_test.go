package pageservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/pagesmith/internal/apperr"
	"github.com/starford/pagesmith/internal/site"
	"github.com/starford/pagesmith/internal/testutil"
)

func TestExtract_UsesSortedPositionForAccent(t *testing.T) {
	ts := testutil.TestSite(t, site.Config{})
	ts.WriteSource(t, "a.md", "# A")
	ts.WriteSource(t, "c.md", "# C")
	svc := NewService(ts.Builder, ts.DB)

	// "b.md" would sit between a.md and c.md, so it takes index 1.
	page, err := svc.Extract(context.Background(), "b.md", []byte("# B"))
	if err != nil {
		t.Fatal(err)
	}
	if page.Data["accent_color"] != "purple" {
		t.Errorf("accent_color = %v, want purple", page.Data["accent_color"])
	}

	page, _ = svc.Extract(context.Background(), "z.md", []byte("# Z"))
	if page.Data["accent_color"] != "cyan" {
		t.Errorf("accent_color = %v, want cyan", page.Data["accent_color"])
	}
}

func TestExtract_CleansPath(t *testing.T) {
	ts := testutil.TestSite(t, site.Config{})
	svc := NewService(ts.Builder, ts.DB)

	page, err := svc.Extract(context.Background(), "/blog/../notes/x.md", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if page.SourcePath != "notes/x.md" {
		t.Errorf("source path = %s", page.SourcePath)
	}
	if _, err := svc.Extract(context.Background(), "notes/x.txt", nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetPage(t *testing.T) {
	ts := testutil.TestSite(t, site.Config{})
	ts.WriteSource(t, "p.md", "# P")
	svc := NewService(ts.Builder, ts.DB)
	ctx := context.Background()

	if _, err := svc.GetPage(ctx, "missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}

	detail, err := svc.GetPage(ctx, "p.md")
	if err != nil {
		t.Fatal(err)
	}
	if detail.BuiltAt != nil {
		t.Error("unbuilt page has built_at")
	}

	if _, err := ts.Builder.Build(ctx, false); err != nil {
		t.Fatal(err)
	}
	detail, _ = svc.GetPage(ctx, "p.md")
	if detail.BuiltAt == nil || detail.OutputPath != "p.html" || detail.Title != "P" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestListAndSearch_EmptyAreNonNil(t *testing.T) {
	ts := testutil.TestSite(t, site.Config{})
	svc := NewService(ts.Builder, ts.DB)

	rows, total, err := svc.ListPages(context.Background(), 0, 0, "")
	if err != nil || rows == nil || total != 0 {
		t.Errorf("rows = %v, total = %d, err = %v", rows, total, err)
	}
	results, err := svc.Search(context.Background(), "nothing", 0)
	if err != nil || results == nil {
		t.Errorf("results = %v, err = %v", results, err)
	}
}
