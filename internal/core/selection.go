package core

import (
	"fmt"
	"slices"
	"strings"
)

// Themes lists the supported color themes in display order.
// The first entry is the default.
var Themes = []string{
	"blues",
	"cividis",
	"greens",
	"inferno",
	"magma",
	"plasma",
	"reds",
	"rainbow",
	"turbo",
	"viridis",
}

// DefaultTheme is the theme a new selection starts with.
func DefaultTheme() string {
	return Themes[0]
}

// ThemeNames returns a copy of Themes.
func ThemeNames() []string {
	return slices.Clone(Themes)
}

// CanonicalTheme returns the canonical (lowercase) name for a theme,
// or an error wrapping ErrInvalidTheme.
func CanonicalTheme(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if slices.Contains(Themes, n) {
		return n, nil
	}
	return "", fmt.Errorf("theme %q: %w", name, ErrInvalidTheme)
}

// Selection is the user's current year and theme choice.
// It is scoped to one session and never shared between sessions.
type Selection struct {
	Year  int    `json:"year" yaml:"year"`
	Theme string `json:"theme" yaml:"theme"`
}

// NewSelection returns the default selection for ds: the most recent year
// and the first theme.
func NewSelection(ds *Dataset) Selection {
	return Selection{
		Year:  ds.LatestYear(),
		Theme: DefaultTheme(),
	}
}

// WithYear returns a copy of s with Year set, or an error wrapping
// ErrInvalidYear when year is not present in ds.
func (s Selection) WithYear(ds *Dataset, year int) (Selection, error) {
	if !ds.HasYear(year) {
		return s, fmt.Errorf("year %d: %w", year, ErrInvalidYear)
	}
	s.Year = year
	return s, nil
}

// WithTheme returns a copy of s with Theme set, or an error wrapping
// ErrInvalidTheme when name is not one of Themes.
func (s Selection) WithTheme(name string) (Selection, error) {
	theme, err := CanonicalTheme(name)
	if err != nil {
		return s, err
	}
	s.Theme = theme
	return s, nil
}

// Validate checks both fields against their domains.
func (s Selection) Validate(ds *Dataset) error {
	if !ds.HasYear(s.Year) {
		return fmt.Errorf("year %d: %w", s.Year, ErrInvalidYear)
	}
	if !slices.Contains(Themes, s.Theme) {
		return fmt.Errorf("theme %q: %w", s.Theme, ErrInvalidTheme)
	}
	return nil
}

// ParseSelection builds a selection from raw control values. Empty values
// keep the defaults for ds; anything else must be in its domain.
func ParseSelection(ds *Dataset, year, theme string) (Selection, error) {
	return NewSelection(ds).Update(ds, year, theme)
}

// Update applies raw control values to s. Empty values leave the field
// unchanged. On error s is returned unmodified.
func (s Selection) Update(ds *Dataset, year, theme string) (Selection, error) {
	next := s

	if y := strings.TrimSpace(year); y != "" {
		parsed, err := ParseYear(y)
		if err != nil {
			return s, fmt.Errorf("year %q: %w", year, ErrInvalidYear)
		}
		if next, err = next.WithYear(ds, parsed); err != nil {
			return s, err
		}
	}

	if strings.TrimSpace(theme) != "" {
		var err error
		if next, err = next.WithTheme(theme); err != nil {
			return s, err
		}
	}

	return next, nil
}
