// Package render turns a dataset and a selection into view models for the
// choropleth, heatmap, ranked table and about panel. Everything here is a
// pure function of its inputs; callers re-run Build on every change.
package render

import (
	"github.com/JonMunkholm/popdash/internal/core"
)

// Dashboard is everything a front end needs to draw one selection.
type Dashboard struct {
	Selection  core.Selection         `json:"selection"`
	Years      []int                  `json:"years"`
	Themes     []string               `json:"themes"`
	Choropleth *Choropleth            `json:"choropleth"`
	Heatmap    *Heatmap               `json:"heatmap"`
	Table      *RankedTable           `json:"table"`
	Migration  *core.MigrationSummary `json:"migration"`
	About      About                  `json:"about"`
	Report     core.LoadReport        `json:"load_report"`
}

// Builder holds the tunables of the pipeline. The zero value is ready to use.
type Builder struct {
	MigrationThreshold int64
}

// Build runs filter, sort and all renderers for sel with default settings.
func Build(ds *core.Dataset, sel core.Selection) (*Dashboard, error) {
	return Builder{}.Build(ds, sel)
}

// Build renders every panel for sel. An unknown theme wraps
// core.ErrInvalidTheme; a year with no records yields a
// *core.EmptySelectionError rather than a zero-filled dashboard.
func (b Builder) Build(ds *core.Dataset, sel core.Selection) (*Dashboard, error) {
	theme, err := core.CanonicalTheme(sel.Theme)
	if err != nil {
		return nil, err
	}
	sel.Theme = theme

	view, err := core.SelectYear(ds, sel.Year)
	if err != nil {
		return nil, err
	}

	choro, err := NewChoropleth(view, sel.Theme)
	if err != nil {
		return nil, err
	}
	heat, err := NewHeatmap(ds, sel.Theme)
	if err != nil {
		return nil, err
	}
	mig, err := core.Migration(ds, sel.Year, b.MigrationThreshold)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Selection:  sel,
		Years:      ds.Years(),
		Themes:     core.ThemeNames(),
		Choropleth: choro,
		Heatmap:    heat,
		Table:      NewRankedTable(view),
		Migration:  mig,
		About:      NewAbout(mig),
		Report:     ds.Report(),
	}, nil
}
