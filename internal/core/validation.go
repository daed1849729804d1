package core

// validation.go checks input headers and rows before they become records.
//
// Validation happens at two levels:
//  1. Header validation: every FieldSpec must resolve to a column, by name or alias
//  2. Row validation: each cell must parse as its FieldSpec type

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ColumnMap holds the resolved position of each required column.
type ColumnMap struct {
	Year       int
	StateName  int
	StateCode  int
	Population int
	width      int // minimum row width covering all columns
}

// resolve looks up a FieldSpec by canonical name then aliases.
func resolve(idx HeaderIndex, spec FieldSpec) (int, bool) {
	if pos, ok := idx[strings.ToLower(spec.Name)]; ok {
		return pos, true
	}
	for _, alias := range spec.Aliases {
		if pos, ok := idx[strings.ToLower(alias)]; ok {
			return pos, true
		}
	}
	return 0, false
}

// ValidateHeaders resolves the required columns in a CSV header.
// Returns an error listing every missing column.
func ValidateHeaders(headers []string, specs []FieldSpec) (ColumnMap, error) {
	idx := MakeHeaderIndex(headers)
	positions := make(map[string]int, len(specs))
	var missing []string

	for _, spec := range specs {
		pos, ok := resolve(idx, spec)
		if !ok {
			missing = append(missing, spec.Name)
			continue
		}
		positions[spec.Name] = pos
	}

	if len(missing) > 0 {
		return ColumnMap{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	cm := ColumnMap{
		Year:       positions["year"],
		StateName:  positions["states"],
		StateCode:  positions["states_code"],
		Population: positions["population"],
	}
	for _, p := range positions {
		if p+1 > cm.width {
			cm.width = p + 1
		}
	}
	return cm, nil
}

// ParseRow converts a CSV row to a PopulationRecord.
// The first problem found is returned as a ValidationError.
func (cm ColumnMap) ParseRow(row []string) (PopulationRecord, error) {
	if len(row) < cm.width {
		return PopulationRecord{}, ValidationError{
			Message: fmt.Sprintf("row has %d columns, expected at least %d", len(row), cm.width),
		}
	}

	year, err := ParseYear(row[cm.Year])
	if err != nil {
		return PopulationRecord{}, ValidationError{Field: "year", Value: row[cm.Year], Message: err.Error()}
	}

	name := CleanCell(row[cm.StateName])
	if name == "" {
		return PopulationRecord{}, ValidationError{Field: "states", Message: "required field is empty"}
	}

	code := NormalizeStateCode(row[cm.StateCode])
	if code == "" {
		return PopulationRecord{}, ValidationError{Field: "states_code", Message: "required field is empty"}
	}

	pop, err := ParsePopulation(row[cm.Population])
	if err != nil {
		return PopulationRecord{}, ValidationError{Field: "population", Value: row[cm.Population], Message: err.Error()}
	}

	return PopulationRecord{
		Year:       year,
		StateName:  name,
		StateCode:  code,
		Population: pop,
	}, nil
}

// isBlankRow reports whether every cell is empty after trimming.
func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
