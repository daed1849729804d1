package render

import (
	"github.com/JonMunkholm/popdash/internal/core"
)

// RankedRow is one line of the ranked table.
type RankedRow struct {
	Rank       int     `json:"rank"`
	StateName  string  `json:"state"`
	StateCode  string  `json:"state_code"`
	Population int64   `json:"population"`
	Share      float64 `json:"share"` // population / year maximum
}

// RankedTable lists every state of one year, most populous first.
type RankedTable struct {
	Year          int         `json:"year"`
	MaxPopulation int64       `json:"max_population"`
	Total         int64       `json:"total"`
	Rows          []RankedRow `json:"rows"`
}

// NewRankedTable builds the table from view.Ranked with no row limit.
func NewRankedTable(view *core.YearView) *RankedTable {
	t := &RankedTable{
		Year:          view.Year,
		MaxPopulation: view.MaxPopulation,
		Total:         view.Total(),
		Rows:          make([]RankedRow, len(view.Ranked)),
	}
	for i, r := range view.Ranked {
		t.Rows[i] = RankedRow{
			Rank:       i + 1,
			StateName:  r.StateName,
			StateCode:  r.StateCode,
			Population: r.Population,
			Share:      view.Share(r.Population),
		}
	}
	return t
}

// Top returns at most n rows. n <= 0 returns all rows.
func (t *RankedTable) Top(n int) []RankedRow {
	if n <= 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}
