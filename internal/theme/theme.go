// Package theme holds the read-only styling tables shared by every extractor:
// accent palette, era badge classes and colours, and status classes.
package theme

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Fallbacks used when a lookup misses.
const (
	FallbackBadgeClass  = "legends"
	FallbackBadgeColor  = "gold"
	FallbackStatusClass = "live"
)

// Theme is safe to share between concurrent builds; nothing mutates it after load.
type Theme struct {
	AccentColors  []string          `yaml:"accent_colors"`
	BadgeClasses  map[string]string `yaml:"badge_classes"`
	BadgeColors   map[string]string `yaml:"badge_colors"`
	StatusClasses map[string]string `yaml:"status_classes"`
}

// Validate validates the theme.
func (t *Theme) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.AccentColors, validation.Required, validation.Each(validation.Required)),
	)
}

// Default returns the built-in palette and lookup tables.
func Default() Theme {
	return Theme{
		AccentColors: []string{"gold", "purple", "cyan"},
		BadgeClasses: map[string]string{
			"Legends":        "legends",
			"Veterans":       "veterans",
			"Established":    "established",
			"Mature":         "mature",
			"Proven":         "proven",
			"Rising Stars":   "rising",
			"Rising":         "rising",
			"HOST":           "legends",
			"VIRTUALIZATION": "veterans",
			"BROWSERS":       "established",
			".NET STACK":     "mature",
			"TOOLS":          "proven",
			"AI":             "rising",
		},
		BadgeColors: map[string]string{
			"Legends":        "gold",
			"Veterans":       "purple",
			"Established":    "cyan",
			"Mature":         "blue",
			"Proven":         "rose",
			"Rising Stars":   "green",
			"Rising":         "green",
			"HOST":           "gold",
			"VIRTUALIZATION": "purple",
			"BROWSERS":       "cyan",
			".NET STACK":     "blue",
			"TOOLS":          "rose",
			"AI":             "green",
		},
		StatusClasses: map[string]string{
			"Live":        "live",
			"In Progress": "soon",
			"Soon":        "soon",
			"Upcoming":    "soon",
		},
	}
}

// Accent returns the palette colour for position i, rotating through the palette.
func (t Theme) Accent(i int) string {
	palette := t.AccentColors
	if len(palette) == 0 {
		palette = Default().AccentColors
	}
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// StatusClass maps a listing status to its CSS class.
func (t Theme) StatusClass(status string) string {
	if class, ok := t.StatusClasses[status]; ok {
		return class
	}
	return FallbackStatusClass
}

// IsBadge reports whether name is a known badge key.
func (t Theme) IsBadge(name string) bool {
	_, ok := t.BadgeClasses[name]
	return ok
}

// Badge returns the CSS class and colour of an era badge.
func (t Theme) Badge(name string) (class, color string) {
	class, ok := t.BadgeClasses[name]
	if !ok {
		class = FallbackBadgeClass
	}
	color, ok = t.BadgeColors[name]
	if !ok {
		color = FallbackBadgeColor
	}
	return class, color
}
