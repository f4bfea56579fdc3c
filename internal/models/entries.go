package models

// IndexEntry is one H3 block of a listing page.
type IndexEntry struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	AccentColor string `json:"accent_color"`
	StatusClass string `json:"status_class"`
}

// Data returns the entry as template data.
func (e IndexEntry) Data() map[string]any {
	return map[string]any{
		"title":        e.Title,
		"status":       e.Status,
		"date":         e.Date,
		"summary":      e.Summary,
		"link":         e.Link,
		"accent_color": e.AccentColor,
		"status_class": e.StatusClass,
	}
}

// SoftwareRow is one data row of a catalog table.
type SoftwareRow struct {
	Name        string `json:"name"`
	Year        string `json:"year"`
	YearsActive string `json:"years_active"`
	Category    string `json:"category"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Data returns the row as template data.
func (r SoftwareRow) Data() map[string]any {
	return map[string]any{
		"name":         r.Name,
		"year":         r.Year,
		"years_active": r.YearsActive,
		"category":     r.Category,
		"description":  r.Description,
		"url":          r.URL,
	}
}

// EraSection is one categorized block of a catalog page.
type EraSection struct {
	Years       string        `json:"years"`
	Name        string        `json:"name"`
	BadgeClass  string        `json:"badge_class"`
	Color       string        `json:"color"`
	Software    []SoftwareRow `json:"software"`
	Description string        `json:"description"`
}

// Data returns the section as template data.
func (s EraSection) Data() map[string]any {
	software := make([]map[string]any, len(s.Software))
	for i, row := range s.Software {
		software[i] = row.Data()
	}
	return map[string]any{
		"years":       s.Years,
		"name":        s.Name,
		"badge_class": s.BadgeClass,
		"color":       s.Color,
		"software":    software,
		"description": s.Description,
	}
}

// Trait is one numbered entry after a catalog's traits heading.
type Trait struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Data returns the trait as template data.
func (t Trait) Data() map[string]any {
	return map[string]any{
		"title":       t.Title,
		"description": t.Description,
	}
}
