package processor

import (
	"errors"
	"testing"

	"github.com/starford/pagesmith/internal/apperr"
	"github.com/starford/pagesmith/internal/listing"
	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/theme"
	"github.com/starford/pagesmith/internal/value"
)

func testEnv() Env {
	return Env{
		Theme:       theme.Default(),
		Listing:     listing.DefaultPlaceholders(),
		ListingFile: "index.md",
		Compiled:    "November 2025",
	}
}

type stub struct {
	name     string
	priority int
	accept   bool
}

func (s stub) Name() string                   { return s.name }
func (s stub) Priority() int                  { return s.priority }
func (s stub) Detect(models.Document) bool    { return s.accept }
func (s stub) Process(models.Document) Result { return Result{} }

func TestNewRegistry_RequiresFallback(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Fatal("expected error without fallback")
	}
}

func TestRegistry_PriorityOrderStableTies(t *testing.T) {
	reg, err := NewRegistry(stub{name: "fallback", priority: 0, accept: true})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	reg.Register(stub{name: "a", priority: 50, accept: true})
	reg.Register(stub{name: "b", priority: 50, accept: true})
	reg.Register(stub{name: "c", priority: 80, accept: false})

	var names []string
	for _, p := range reg.Processors() {
		names = append(names, p.Name())
	}
	want := []string{"c", "a", "b", "fallback"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}

	p, err := reg.Select(models.Document{Path: "x.md"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if p.Name() != "a" {
		t.Errorf("selected %q, want a (first registered among equal priority)", p.Name())
	}
}

func TestRegistry_Unclassifiable(t *testing.T) {
	reg, _ := NewRegistry(stub{name: "never", accept: false})
	_, err := reg.Select(models.Document{Path: "notes/x.md"})
	if !errors.Is(err, apperr.ErrUnclassifiable) {
		t.Fatalf("err = %v, want ErrUnclassifiable", err)
	}
}

func TestBuild_SelectsBuiltins(t *testing.T) {
	reg, err := Build(testEnv(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cases := []struct {
		doc  models.Document
		want string
	}{
		{models.Document{Name: "index.md", Body: "# List"}, NameListing},
		{models.Document{Name: "index.md", Body: "| Software | Year | Years Active |"}, NameCatalog},
		{models.Document{Name: "tools.md", Body: "| Software | Year | Years Active |"}, NameCatalog},
		{models.Document{Name: "post.md", Body: ""}, NameArticle},
	}
	for _, c := range cases {
		p, err := reg.Select(c.doc)
		if err != nil {
			t.Fatalf("Select(%s): %v", c.doc.Name, err)
		}
		if p.Name() != c.want {
			t.Errorf("Select(%s) = %s, want %s", c.doc.Name, p.Name(), c.want)
		}
	}
}

func TestBuild_RuleOverrides(t *testing.T) {
	prio := 200
	rules := []RuleConfig{
		{Type: NameListing, Priority: &prio, Detector: &DetectorConfig{SourcePath: "collections/", ContentPattern: `^# `}},
	}
	reg, err := Build(testEnv(), rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := models.Document{Name: "a.md", Path: "collections/a.md", Body: "# A\n| Software | Years Active |"}
	p, _ := reg.Select(doc)
	if p.Name() != NameListing || p.Priority() != 200 {
		t.Errorf("selected %s/%d, want listing/200", p.Name(), p.Priority())
	}
	p, _ = reg.Select(models.Document{Name: "index.md", Path: "index.md"})
	if p.Name() != NameArticle {
		t.Errorf("replaced detector should no longer match by file name, got %s", p.Name())
	}
}

func TestBuild_InvalidRule(t *testing.T) {
	if _, err := Build(testEnv(), []RuleConfig{{Type: "nope"}}); err == nil {
		t.Error("expected unknown type error")
	}
	bad := RuleConfig{Type: NameArticle, Detector: &DetectorConfig{ContentPattern: "("}}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestCatalog_FallsBackToDocumentTitle(t *testing.T) {
	body := "| Software | Year | Years Active | Category | Notes |\n|---|---|---|---|---|\n"
	res := NewCatalog(testEnv()).Process(models.Document{Title: "Editor Productivity Tips", Body: body})
	if !res.SkipProseConversion {
		t.Error("catalog output must skip prose conversion")
	}
	if res.Data["title"] != "Editor Productivity Tips" {
		t.Errorf("title = %v", res.Data["title"])
	}
	if res.Data["header_title"] != "Editor <span>Productivity Tips</span>" {
		t.Errorf("header_title = %v", res.Data["header_title"])
	}
}

func TestListing_DateFromFrontmatterOrCompiled(t *testing.T) {
	p := NewListing(testEnv())
	res := p.Process(models.Document{Name: "index.md", Frontmatter: value.Map{}})
	if res.Data["date"] != "November 2025" {
		t.Errorf("date = %v, want compiled month", res.Data["date"])
	}
	fm := value.FromMap(map[string]any{"date": "2024-03-09"})
	res = p.Process(models.Document{Name: "index.md", Frontmatter: fm})
	if res.Data["date"] != "March 2024" {
		t.Errorf("date = %v, want March 2024", res.Data["date"])
	}
}

func TestArticle_AccentAndMetadata(t *testing.T) {
	fm := value.FromMap(map[string]any{"excerpt": "Short", "date": "2023-07-01"})
	res := NewArticle(testEnv()).Process(models.Document{FileIndex: 4, Frontmatter: fm})
	if res.SkipProseConversion {
		t.Error("article must request prose conversion")
	}
	if res.Data["accent_color"] != "purple" {
		t.Errorf("accent = %v, want purple", res.Data["accent_color"])
	}
	if res.Data["excerpt"] != "Short" || res.Data["date"] != "July 2023" {
		t.Errorf("data = %v", res.Data)
	}
}
