package core

import "slices"

// YearView is the filter/sort stage output for one year.
type YearView struct {
	Year          int                `json:"year"`
	Subset        []PopulationRecord `json:"-"`
	Ranked        []PopulationRecord `json:"ranked"`
	MaxPopulation int64              `json:"max_population"`
}

// YearSubset returns every record whose Year equals year, in dataset order.
func YearSubset(ds *Dataset, year int) []PopulationRecord {
	var out []PopulationRecord
	for _, r := range ds.records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// RankByPopulation returns a copy of subset sorted by population, highest
// first. Equal populations keep their relative order.
func RankByPopulation(subset []PopulationRecord) []PopulationRecord {
	ranked := slices.Clone(subset)
	slices.SortStableFunc(ranked, func(a, b PopulationRecord) int {
		switch {
		case a.Population > b.Population:
			return -1
		case a.Population < b.Population:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// MaxPopulation returns the largest population in subset.
// An empty subset yields an EmptySelectionError for year, never a zero value.
func MaxPopulation(subset []PopulationRecord, year int) (int64, error) {
	if len(subset) == 0 {
		return 0, &EmptySelectionError{Year: year}
	}
	top := subset[0].Population
	for _, r := range subset[1:] {
		if r.Population > top {
			top = r.Population
		}
	}
	return top, nil
}

// SelectYear runs the filter/sort stage for year.
func SelectYear(ds *Dataset, year int) (*YearView, error) {
	subset := YearSubset(ds, year)

	top, err := MaxPopulation(subset, year)
	if err != nil {
		return nil, err
	}

	return &YearView{
		Year:          year,
		Subset:        subset,
		Ranked:        RankByPopulation(subset),
		MaxPopulation: top,
	}, nil
}

// Share returns population / MaxPopulation in [0, 1], or 0 when the
// maximum is zero.
func (v *YearView) Share(population int64) float64 {
	if v.MaxPopulation <= 0 {
		return 0
	}
	return float64(population) / float64(v.MaxPopulation)
}

// Total returns the summed population of the year.
func (v *YearView) Total() int64 {
	var total int64
	for _, r := range v.Subset {
		total += r.Population
	}
	return total
}
