package listing

import (
	"testing"

	"github.com/starford/pagesmith/internal/models"
	"github.com/starford/pagesmith/internal/theme"
)

func newTestExtractor(palette ...string) *Extractor {
	th := theme.Default()
	if len(palette) > 0 {
		th.AccentColors = palette
	}
	return New(DefaultPlaceholders(), th)
}

func TestExtract_SingleEntry(t *testing.T) {
	body := "# List\n\n### Item One\n**Status:** Live | Updated Jan 2024\n\nFirst item.\n\n[Explore](./a.html)\n"
	res := newTestExtractor("gold", "purple").Extract(body)

	if len(res.Entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(res.Entries))
	}
	want := models.IndexEntry{
		Title:       "Item One",
		Status:      "Live",
		Date:        "Jan 2024",
		Summary:     "First item.",
		Link:        "./a.html",
		AccentColor: "gold",
		StatusClass: "live",
	}
	if res.Entries[0] != want {
		t.Errorf("entry = %+v, want %+v", res.Entries[0], want)
	}
	if res.Title != "List" || res.Subtitle != "List" {
		t.Errorf("title/subtitle = %q/%q, want List/List", res.Title, res.Subtitle)
	}
}

func TestExtract_SummaryNotOverwritten(t *testing.T) {
	body := "### Entry\nFirst paragraph.\nSecond paragraph.\n"
	res := newTestExtractor().Extract(body)
	if len(res.Entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(res.Entries))
	}
	if got := res.Entries[0].Summary; got != "First paragraph." {
		t.Errorf("summary = %q, want %q", got, "First paragraph.")
	}
}

func TestExtract_AccentRotationAndStatusClass(t *testing.T) {
	body := `### A
**Status:** In Progress | Updated Feb 2025
### B
<strong>Status:</strong> Archived | Mar 2025
### C
`
	res := newTestExtractor("gold", "purple").Extract(body)
	if len(res.Entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(res.Entries))
	}
	colors := []string{"gold", "purple", "gold"}
	for i, e := range res.Entries {
		if e.AccentColor != colors[i] {
			t.Errorf("entry %d accent = %q, want %q", i, e.AccentColor, colors[i])
		}
	}
	if res.Entries[0].StatusClass != "soon" || res.Entries[0].Date != "Feb 2025" {
		t.Errorf("entry A = %+v", res.Entries[0])
	}
	if res.Entries[1].Status != "Archived" || res.Entries[1].StatusClass != "live" {
		t.Errorf("entry B = %+v, want unknown status mapped to live", res.Entries[1])
	}
	if res.Entries[2].Status != "Live" || res.Entries[2].Summary != "" || res.Entries[2].Link != "" {
		t.Errorf("entry C should carry defaults, got %+v", res.Entries[2])
	}
}

func TestExtract_StatusWithoutSeparatorKeepsDefault(t *testing.T) {
	res := newTestExtractor().Extract("### X\n**Status:** Soon\n")
	if got := res.Entries[0].Status; got != "Live" {
		t.Errorf("status = %q, want Live", got)
	}
}

func TestExtract_HeadingsAndIntro(t *testing.T) {
	body := `# Editions
**Bold line is not intro**
Welcome to the collection.
Second line ignored.
## Collections on Go
## Published Work
## Upcoming Work
### Only
`
	res := newTestExtractor().Extract(body)
	if res.HeaderTitle != "Collections on Go" {
		t.Errorf("header title = %q", res.HeaderTitle)
	}
	if res.SectionTitle != "Upcoming Work" {
		t.Errorf("section title = %q, want last match to win", res.SectionTitle)
	}
	if res.Intro != "Welcome to the collection." {
		t.Errorf("intro = %q", res.Intro)
	}
	if res.SectionLabel != "Collections" {
		t.Errorf("section label = %q", res.SectionLabel)
	}
}

func TestExtract_EmptyBodyKeepsPlaceholders(t *testing.T) {
	d := DefaultPlaceholders()
	res := New(d, theme.Default()).Extract("")
	if res.Title != d.Title || res.HeaderTitle != d.HeaderTitle || res.Intro != d.Intro {
		t.Errorf("placeholders not kept: %+v", res)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(res.Entries))
	}
	data := res.Data()
	if articles, ok := data["articles"].([]map[string]any); !ok || len(articles) != 0 {
		t.Errorf("articles = %#v, want empty list", data["articles"])
	}
}

func TestExtract_LinkOnlyInsideEntry(t *testing.T) {
	body := "[Explore](./outside.html)\n### In\n[Explore](./inside.html)\n"
	res := newTestExtractor().Extract(body)
	if got := res.Entries[0].Link; got != "./inside.html" {
		t.Errorf("link = %q, want ./inside.html", got)
	}
}

func TestExtract_SummaryKeptAfterEmptyStatus(t *testing.T) {
	res := newTestExtractor().Extract("### E\n**Status:** | Updated Jan 2024\nSummary here.\n")
	e := res.Entries[0]
	if e.Status != "" || e.Date != "Jan 2024" {
		t.Errorf("entry = %+v, want empty status and date Jan 2024", e)
	}
	if e.Summary != "Summary here." {
		t.Errorf("summary = %q, want %q", e.Summary, "Summary here.")
	}
}
