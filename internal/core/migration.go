package core

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultMigrationThreshold is the year-over-year change, in people, above
// which a state counts as having significant inbound (or outbound) migration.
const DefaultMigrationThreshold = 50000

// PopulationChange is one state's population change into a given year.
type PopulationChange struct {
	StateName    string `json:"state"`
	StateCode    string `json:"state_code"`
	Year         int    `json:"year"`
	Population   int64  `json:"population"`
	PreviousYear int    `json:"previous_year,omitempty"`
	Previous     int64  `json:"previous,omitempty"`
	HasPrevious  bool   `json:"has_previous"`
	Delta        int64  `json:"delta"`
}

// MigrationSummary describes gains, losses, and the share of states with
// significant migration for one year.
type MigrationSummary struct {
	Year          int                `json:"year"`
	Threshold     int64              `json:"threshold"`
	Comparable    bool               `json:"comparable"` // false when no state has an earlier year
	Gains         []PopulationChange `json:"gains"`      // largest delta first
	Losses        []PopulationChange `json:"losses"`     // smallest delta first
	InboundShare  float64            `json:"inbound_share"`
	OutboundShare float64            `json:"outbound_share"`
}

// PopulationChanges computes, for every state present in year, the change
// from the closest earlier year recorded for that state. States with no
// earlier year have HasPrevious=false and Delta=0. Output follows dataset
// order. Duplicate (state, year) pairs resolve to their maximum.
func PopulationChanges(ds *Dataset, year int) ([]PopulationChange, error) {
	if !ds.HasYear(year) {
		return nil, &EmptySelectionError{Year: year}
	}

	byState := make(map[string]map[int]int64)
	for _, r := range ds.records {
		years, ok := byState[r.StateCode]
		if !ok {
			years = make(map[int]int64)
			byState[r.StateCode] = years
		}
		if cur, ok := years[r.Year]; !ok || r.Population > cur {
			years[r.Year] = r.Population
		}
	}

	done := make(map[string]bool)
	var changes []PopulationChange
	for _, r := range ds.records {
		if r.Year != year || done[r.StateCode] {
			continue
		}
		done[r.StateCode] = true

		years := byState[r.StateCode]
		c := PopulationChange{
			StateName:  r.StateName,
			StateCode:  r.StateCode,
			Year:       year,
			Population: years[year],
		}

		prev := 0
		for y := range years {
			if y < year && y > prev {
				prev = y
			}
		}
		if prev != 0 {
			c.HasPrevious = true
			c.PreviousYear = prev
			c.Previous = years[prev]
			c.Delta = c.Population - c.Previous
		}

		changes = append(changes, c)
	}

	return changes, nil
}

// Migration summarizes PopulationChanges for year. A threshold <= 0 uses
// DefaultMigrationThreshold.
func Migration(ds *Dataset, year int, threshold int64) (*MigrationSummary, error) {
	if threshold <= 0 {
		threshold = DefaultMigrationThreshold
	}

	changes, err := PopulationChanges(ds, year)
	if err != nil {
		return nil, err
	}

	sum := &MigrationSummary{Year: year, Threshold: threshold}

	var withPrev []PopulationChange
	inbound, outbound := 0, 0
	for _, c := range changes {
		if !c.HasPrevious {
			continue
		}
		withPrev = append(withPrev, c)
		switch {
		case c.Delta > threshold:
			inbound++
		case c.Delta < -threshold:
			outbound++
		}
	}

	if len(withPrev) == 0 {
		return sum, nil
	}

	sum.Comparable = true
	sum.InboundShare = float64(inbound) / float64(len(changes))
	sum.OutboundShare = float64(outbound) / float64(len(changes))

	sum.Gains = slices.Clone(withPrev)
	slices.SortStableFunc(sum.Gains, func(a, b PopulationChange) int {
		return cmp.Or(cmp.Compare(b.Delta, a.Delta), strings.Compare(a.StateName, b.StateName))
	})

	sum.Losses = slices.Clone(withPrev)
	slices.SortStableFunc(sum.Losses, func(a, b PopulationChange) int {
		return cmp.Or(cmp.Compare(a.Delta, b.Delta), strings.Compare(a.StateName, b.StateName))
	})

	return sum, nil
}
