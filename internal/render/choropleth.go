package render

import (
	"github.com/JonMunkholm/popdash/internal/core"
)

// Tile is a fixed cell of the tile-grid map.
type Tile struct {
	Code string
	Row  int
	Col  int
}

// GridRows and GridCols are the dimensions of TileLayout.
const (
	GridRows = 8
	GridCols = 12
)

// TileLayout places the 50 states, DC and Puerto Rico on a grid that keeps
// rough geographic adjacency.
var TileLayout = []Tile{
	{"AK", 0, 0}, {"ME", 0, 11},
	{"VT", 1, 10}, {"NH", 1, 11},
	{"WA", 2, 1}, {"ID", 2, 2}, {"MT", 2, 3}, {"ND", 2, 4}, {"MN", 2, 5}, {"IL", 2, 6},
	{"WI", 2, 7}, {"MI", 2, 8}, {"NY", 2, 9}, {"RI", 2, 10}, {"MA", 2, 11},
	{"OR", 3, 1}, {"NV", 3, 2}, {"WY", 3, 3}, {"SD", 3, 4}, {"IA", 3, 5}, {"IN", 3, 6},
	{"OH", 3, 7}, {"PA", 3, 8}, {"NJ", 3, 9}, {"CT", 3, 10},
	{"CA", 4, 1}, {"UT", 4, 2}, {"CO", 4, 3}, {"NE", 4, 4}, {"MO", 4, 5}, {"KY", 4, 6},
	{"WV", 4, 7}, {"VA", 4, 8}, {"MD", 4, 9}, {"DE", 4, 10},
	{"AZ", 5, 2}, {"NM", 5, 3}, {"KS", 5, 4}, {"AR", 5, 5}, {"TN", 5, 6}, {"NC", 5, 7},
	{"SC", 5, 8}, {"DC", 5, 9},
	{"OK", 6, 4}, {"LA", 6, 5}, {"MS", 6, 6}, {"AL", 6, 7}, {"GA", 6, 8},
	{"HI", 7, 0}, {"TX", 7, 4}, {"FL", 7, 9}, {"PR", 7, 11},
}

// Region is one tile of the choropleth. Tiles without a record for the
// year have HasValue=false and the neutral fill.
type Region struct {
	StateCode  string  `json:"state_code"`
	StateName  string  `json:"state,omitempty"`
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	Population int64   `json:"population"`
	HasValue   bool    `json:"has_value"`
	Share      float64 `json:"share"`
	Fill       string  `json:"fill"`
	TextColor  string  `json:"text_color"`
}

// Choropleth is the map view model for one year.
type Choropleth struct {
	Year     int                     `json:"year"`
	Theme    string                  `json:"theme"`
	Domain   Domain                  `json:"domain"`
	Regions  []Region                `json:"regions"`
	Unplaced []core.PopulationRecord `json:"unplaced,omitempty"`
	Legend   []LegendStop            `json:"legend"`
}

// NewChoropleth colors each tile by its state's population on [0, max].
// Records whose code has no tile are returned in Unplaced.
func NewChoropleth(view *core.YearView, theme string) (*Choropleth, error) {
	ramp, err := RampFor(theme)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]core.PopulationRecord, len(view.Subset))
	for _, r := range view.Subset {
		if cur, ok := byCode[r.StateCode]; !ok || r.Population > cur.Population {
			byCode[r.StateCode] = r
		}
	}

	dom := Domain{Min: 0, Max: view.MaxPopulation}
	c := &Choropleth{
		Year:    view.Year,
		Theme:   ramp.Name,
		Domain:  dom,
		Regions: make([]Region, 0, len(TileLayout)),
		Legend:  ramp.Legend(dom, 5),
	}

	placed := make(map[string]bool, len(TileLayout))
	for _, tile := range TileLayout {
		placed[tile.Code] = true
		region := Region{
			StateCode: tile.Code,
			Row:       tile.Row,
			Col:       tile.Col,
			Fill:      NeutralFill,
			TextColor: "#6b7280",
		}
		if rec, ok := byCode[tile.Code]; ok {
			t := dom.Normalize(rec.Population)
			region.StateName = rec.StateName
			region.Population = rec.Population
			region.HasValue = true
			region.Share = view.Share(rec.Population)
			region.Fill = ramp.Hex(t)
			region.TextColor = ramp.TextColor(t)
		}
		c.Regions = append(c.Regions, region)
	}

	for _, r := range view.Subset {
		if !placed[r.StateCode] {
			c.Unplaced = append(c.Unplaced, r)
		}
	}

	return c, nil
}

// Region returns the region for a state code.
func (c *Choropleth) Region(code string) (Region, bool) {
	for _, r := range c.Regions {
		if r.StateCode == code {
			return r, true
		}
	}
	return Region{}, false
}
