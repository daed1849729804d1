package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/a-h/templ"
)

const pageTitle = "US Population Dashboard"

// Dashboard renders the full page for one selection.
func Dashboard(d *render.Dashboard) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<div class="app">`)
		h.child(Sidebar(d.Selection, d.Years, d.Themes))
		h.raw(`<main class="content">`)
		h.tagf(`<h1>%s <span class="muted">%d</span></h1>`, pageTitle, d.Selection.Year)

		h.raw(`<section class="row">`)
		h.raw(`<div class="panel wide"><h2>Population by state</h2>`)
		h.child(ChoroplethSVG(d.Choropleth))
		h.raw(`</div><div class="panel"><h2>Top states</h2>`)
		h.child(RankedTable(d.Table, d.Selection.Theme))
		h.raw(`</div></section>`)

		h.raw(`<section class="row"><div class="panel wide"><h2>Population history</h2>`)
		h.child(HeatmapSVG(d.Heatmap))
		h.raw(`</div><div class="panel">`)
		h.child(AboutPanel(d.About, d.Migration))
		h.raw(`</div></section>`)

		h.raw(`</main></div>`)
		return h.err
	})
	return Layout(pageTitle, body)
}

// EmptyState renders the page when the selected year has no data.
// The sidebar stays usable so the visitor can pick another year.
func EmptyState(sel core.Selection, years []int, themes []string, msg core.UserMessage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<div class="app">`)
		h.child(Sidebar(sel, years, themes))
		h.raw(`<main class="content"><div class="panel empty">`)
		h.tagf(`<h2>No data for %d</h2>`, sel.Year)
		h.child(ErrorAlert(msg.Message, msg.Action, msg.Code))
		h.raw(`</div></main></div>`)
		return h.err
	})
	return Layout(pageTitle, body)
}

// Sidebar renders the year and theme controls. Changing either submits
// the form.
func Sidebar(sel core.Selection, years []int, themes []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<aside class="sidebar"><h2>`)
		h.text(pageTitle)
		h.raw(`</h2><form method="post" action="/selection">`)

		h.raw(`<label for="year">Select a year</label><select id="year" name="year" onchange="this.form.submit()">`)
		for _, y := range years {
			v := strconv.Itoa(y)
			if y == sel.Year {
				h.tagf(`<option value="%s" selected>%s</option>`, v, v)
			} else {
				h.tagf(`<option value="%s">%s</option>`, v, v)
			}
		}
		h.raw(`</select>`)

		h.raw(`<label for="theme">Select a color theme</label><select id="theme" name="theme" onchange="this.form.submit()">`)
		for _, t := range themes {
			if t == sel.Theme {
				h.tagf(`<option value="%s" selected>%s</option>`, t, t)
			} else {
				h.tagf(`<option value="%s">%s</option>`, t, t)
			}
		}
		h.raw(`</select>`)

		h.raw(`<noscript><button type="submit">Apply</button></noscript></form>`)
		h.tagf(`<p class="exports">Download %d: <a href="/api/export/%d.csv">CSV</a> <a href="/api/export/%d.xlsx">Excel</a></p>`,
			sel.Year, sel.Year, sel.Year)
		h.raw(`</aside>`)
		return h.err
	})
}

// RankedTable renders every state of the year with a bar scaled to the
// year's maximum.
func RankedTable(t *render.RankedTable, theme string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ramp, err := render.RampFor(theme)
		if err != nil {
			return err
		}

		h := newHTMLWriter(ctx, w)
		h.raw(`<div class="table-scroll"><table class="ranked"><thead><tr><th>#</th><th>State</th><th>Population</th></tr></thead><tbody>`)
		for _, row := range t.Rows {
			h.tagf(`<tr><td>%d</td><td><a href="/chart/trend/%s.svg" title="Population trend">%s</a></td>`,
				row.Rank, row.StateCode, row.StateName)
			h.tagf(`<td><div class="bar-label">%s</div><div class="bar"><span style="width:%.1f%%;background:%s"></span></div></td></tr>`,
				render.FormatPopulation(row.Population), row.Share*100, ramp.Hex(row.Share))
		}
		h.tagf(`</tbody></table></div><p class="muted">Total: %s</p>`, render.FormatPopulation(t.Total))
		return h.err
	})
}

// AboutPanel renders the data source and migration definitions.
func AboutPanel(a render.About, mig *core.MigrationSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		h.raw(`<div class="about"><h2>`)
		h.text(a.Title)
		h.tagf(`</h2><p><a href="%s" rel="noopener" target="_blank">%s</a></p><dl>`, templ.URL(a.SourceURL), a.Source)
		for _, d := range a.Definitions {
			h.tagf(`<dt>%s <span class="value">%s</span></dt><dd>%s</dd>`, d.Term, d.Value, d.Text)
		}
		h.raw(`</dl>`)

		if mig != nil && mig.Comparable {
			h.raw(`<div class="movers">`)
			moverList(h, "Largest gains", mig.Gains)
			moverList(h, "Largest losses", mig.Losses)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func moverList(h *htmlWriter, title string, changes []core.PopulationChange) {
	const limit = 5
	h.tagf(`<div><h3>%s</h3><ol>`, title)
	for i, c := range changes {
		if i == limit {
			break
		}
		h.tagf(`<li>%s <span class="delta">%s</span></li>`, c.StateName, signed(c.Delta))
	}
	h.raw(`</ol></div>`)
}

func signed(n int64) string {
	if n > 0 {
		return "+" + render.FormatPopulation(n)
	}
	return render.FormatPopulation(n)
}
