package render

import (
	"github.com/JonMunkholm/popdash/internal/core"
)

// HeatCell is one (year, state) cell. Cells with no record are empty.
type HeatCell struct {
	Population int64  `json:"population"`
	HasValue   bool   `json:"has_value"`
	Fill       string `json:"fill"`
}

// Heatmap is the full-history view model: one row per year and one column
// per state.
type Heatmap struct {
	Theme  string       `json:"theme"`
	Years  []int        `json:"years"`
	States []string     `json:"states"`
	Cells  [][]HeatCell `json:"cells"` // [year][state]
	Domain Domain       `json:"domain"`
	Legend []LegendStop `json:"legend"`
}

// NewHeatmap builds the heatmap over every record in ds. Rows and columns
// follow first-encounter order; duplicate (year, state) cells keep the
// maximum population. The color domain is the extent of the cell values.
func NewHeatmap(ds *core.Dataset, theme string) (*Heatmap, error) {
	ramp, err := RampFor(theme)
	if err != nil {
		return nil, err
	}

	h := &Heatmap{Theme: ramp.Name}
	yearIdx := make(map[int]int)
	stateIdx := make(map[string]int)

	type key struct{ row, col int }
	values := make(map[key]int64)

	for _, r := range ds.Records() {
		row, ok := yearIdx[r.Year]
		if !ok {
			row = len(h.Years)
			yearIdx[r.Year] = row
			h.Years = append(h.Years, r.Year)
		}
		col, ok := stateIdx[r.StateName]
		if !ok {
			col = len(h.States)
			stateIdx[r.StateName] = col
			h.States = append(h.States, r.StateName)
		}

		k := key{row, col}
		if cur, ok := values[k]; !ok || r.Population > cur {
			values[k] = r.Population
		}
	}

	first := true
	for _, v := range values {
		if first {
			h.Domain = Domain{Min: v, Max: v}
			first = false
			continue
		}
		h.Domain.Min = min(h.Domain.Min, v)
		h.Domain.Max = max(h.Domain.Max, v)
	}

	h.Cells = make([][]HeatCell, len(h.Years))
	for row := range h.Cells {
		h.Cells[row] = make([]HeatCell, len(h.States))
		for col := range h.Cells[row] {
			cell := HeatCell{Fill: NeutralFill}
			if v, ok := values[key{row, col}]; ok {
				cell = HeatCell{
					Population: v,
					HasValue:   true,
					Fill:       ramp.Hex(h.Domain.Normalize(v)),
				}
			}
			h.Cells[row][col] = cell
		}
	}

	h.Legend = ramp.Legend(h.Domain, 5)
	return h, nil
}
