package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/a-h/templ"
)

// Tile map geometry.
const (
	tileSize = 48
	tileGap  = 4
	tilePad  = 8
)

// ChoroplethSVG draws the tile-grid map. Tiles with no data keep the
// neutral fill and show only their code.
func ChoroplethSVG(c *render.Choropleth) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		step := tileSize + tileGap
		width := tilePad*2 + render.GridCols*step
		height := tilePad*2 + render.GridRows*step + 40

		h.tagf(`<svg xmlns="http://www.w3.org/2000/svg" class="choropleth" viewBox="0 0 %d %d" role="img" aria-label="Population by state, %d">`,
			width, height, c.Year)
		for _, r := range c.Regions {
			x := tilePad + r.Col*step
			y := tilePad + r.Row*step
			h.raw(`<g class="tile"><title>`)
			if r.HasValue {
				h.text(r.StateName + ": " + render.FormatPopulation(r.Population))
			} else {
				h.text(r.StateCode + ": no data")
			}
			h.tagf(`</title><rect x="%d" y="%d" width="%d" height="%d" rx="4" fill="%s"/>`,
				x, y, tileSize, tileSize, r.Fill)
			h.tagf(`<text x="%d" y="%d" text-anchor="middle" dominant-baseline="central" fill="%s" font-size="13">%s</text></g>`,
				x+tileSize/2, y+tileSize/2, r.TextColor, r.StateCode)
		}
		legend(h, c.Legend, tilePad, tilePad+render.GridRows*step+8, width-tilePad*2)
		h.raw(`</svg>`)

		if len(c.Unplaced) > 0 {
			h.raw(`<p class="muted">Not shown on the map: `)
			for i, r := range c.Unplaced {
				if i > 0 {
					h.raw(", ")
				}
				h.text(r.StateName + " (" + render.FormatPopulation(r.Population) + ")")
			}
			h.raw(`</p>`)
		}
		return h.err
	})
}

// Heatmap geometry.
const (
	cellW      = 16
	cellH      = 22
	yearLabelW = 44
	stateLabel = 120
)

// HeatmapSVG draws one row per year and one column per state.
func HeatmapSVG(hm *render.Heatmap) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(ctx, w)
		width := yearLabelW + len(hm.States)*cellW + tilePad
		gridH := len(hm.Years) * cellH
		height := stateLabel + gridH + 48

		h.tagf(`<svg xmlns="http://www.w3.org/2000/svg" class="heatmap" viewBox="0 0 %d %d" role="img" aria-label="Population by year and state">`,
			width, height)

		for col, name := range hm.States {
			x := yearLabelW + col*cellW + cellW/2
			h.tagf(`<text transform="translate(%d,%d) rotate(-60)" font-size="10">%s</text>`,
				x, stateLabel-4, name)
		}

		for row, year := range hm.Years {
			y := stateLabel + row*cellH
			h.tagf(`<text x="%d" y="%d" text-anchor="end" dominant-baseline="central" font-size="11">%d</text>`,
				yearLabelW-6, y+cellH/2, year)
			for col, cell := range hm.Cells[row] {
				x := yearLabelW + col*cellW
				h.tagf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s">`, x, y, cellW-1, cellH-1, cell.Fill)
				if cell.HasValue {
					h.raw(`<title>`)
					h.text(hm.States[col] + " " + strconv.Itoa(year) + ": " + render.FormatPopulation(cell.Population))
					h.raw(`</title>`)
				}
				h.raw(`</rect>`)
			}
		}

		legend(h, hm.Legend, yearLabelW, stateLabel+gridH+8, width-yearLabelW-tilePad)
		h.raw(`</svg>`)
		return h.err
	})
}

// legend draws a horizontal swatch strip with the end values labelled.
func legend(h *htmlWriter, stops []render.LegendStop, x, y, width int) {
	if len(stops) == 0 {
		return
	}
	sw := width / len(stops)
	for i, s := range stops {
		h.tagf(`<rect x="%d" y="%d" width="%d" height="10" fill="%s"/>`, x+i*sw, y, sw, s.Fill)
	}
	first, last := stops[0], stops[len(stops)-1]
	h.tagf(`<text x="%d" y="%d" font-size="10">%s</text>`, x, y+24, render.FormatPopulation(first.Value))
	h.tagf(`<text x="%d" y="%d" font-size="10" text-anchor="end">%s</text>`, x+sw*len(stops), y+24, render.FormatPopulation(last.Value))
}
