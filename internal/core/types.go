// Package core provides the domain logic for the population dashboard.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"fmt"
	"slices"
	"strings"
)

// PopulationRecord is one row of the loaded dataset: the population of a
// single state in a single year.
type PopulationRecord struct {
	Year       int    `json:"year" yaml:"year"`
	StateName  string `json:"state" yaml:"state"`
	StateCode  string `json:"state_code" yaml:"state_code"`
	Population int64  `json:"population" yaml:"population"`
}

// FieldType represents the expected data type for a CSV column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldNumeric
)

// FieldSpec describes one required input column.
type FieldSpec struct {
	Name    string    // Canonical column header
	Aliases []string  // Alternative headers accepted for the same column
	Type    FieldType // Expected data type
}

// PopulationFieldSpecs lists the columns the loader requires.
// Any other column in the file is ignored.
var PopulationFieldSpecs = []FieldSpec{
	{Name: "year", Type: FieldInteger},
	{Name: "states", Aliases: []string{"state", "state_name"}, Type: FieldText},
	{Name: "states_code", Aliases: []string{"state_code", "code"}, Type: FieldText},
	{Name: "population", Type: FieldNumeric},
}

// RowIssue records a row the loader skipped or flagged.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// LoadReport summarizes a dataset load.
type LoadReport struct {
	RowsRead   int        `json:"rows_read"`
	Loaded     int        `json:"loaded"`
	Skipped    int        `json:"skipped"`
	Duplicates int        `json:"duplicates"`
	Issues     []RowIssue `json:"issues,omitempty"`
}

// Dataset is the immutable collection of records loaded at start-up.
// It is safe for concurrent use because nothing mutates it after construction.
type Dataset struct {
	records []PopulationRecord
	years   []int // distinct, descending
	source  string
	report  LoadReport
}

// NewDataset builds a Dataset from records, taking ownership of a copy.
// Returns a DataLoadError if records is empty.
func NewDataset(source string, records []PopulationRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, &DataLoadError{Source: source, Kind: LoadEmpty, Err: errNoRows}
	}

	ds := &Dataset{
		records: slices.Clone(records),
		source:  source,
		report:  LoadReport{RowsRead: len(records), Loaded: len(records)},
	}

	seen := make(map[int]bool)
	for _, r := range ds.records {
		if !seen[r.Year] {
			seen[r.Year] = true
			ds.years = append(ds.years, r.Year)
		}
	}
	slices.Sort(ds.years)
	slices.Reverse(ds.years)

	return ds, nil
}

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []PopulationRecord {
	return slices.Clone(d.records)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Years returns the distinct years in the dataset, most recent first.
func (d *Dataset) Years() []int {
	return slices.Clone(d.years)
}

// LatestYear returns the most recent year in the dataset.
func (d *Dataset) LatestYear() int {
	return d.years[0]
}

// HasYear reports whether any record belongs to year.
func (d *Dataset) HasYear(year int) bool {
	return slices.Contains(d.years, year)
}

// Source describes where the dataset was loaded from (file path or table).
func (d *Dataset) Source() string {
	return d.source
}

// Report returns the load report.
func (d *Dataset) Report() LoadReport {
	r := d.report
	r.Issues = slices.Clone(d.report.Issues)
	return r
}

// StateHistory returns every record for a state code, ordered by year.
func (d *Dataset) StateHistory(code string) []PopulationRecord {
	var out []PopulationRecord
	for _, r := range d.records {
		if r.StateCode == code {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b PopulationRecord) int {
		return a.Year - b.Year
	})
	return out
}

// States returns the distinct (code, name) pairs in first-encounter order.
func (d *Dataset) States() []PopulationRecord {
	seen := make(map[string]bool)
	var out []PopulationRecord
	for _, r := range d.records {
		if seen[r.StateCode] {
			continue
		}
		seen[r.StateCode] = true
		out = append(out, PopulationRecord{StateName: r.StateName, StateCode: r.StateCode})
	}
	return out
}

// LookupState resolves a state code or full name, case-insensitively.
// The returned record carries only StateName and StateCode.
func (d *Dataset) LookupState(query string) (PopulationRecord, error) {
	q := strings.TrimSpace(query)
	for _, s := range d.States() {
		if strings.EqualFold(s.StateCode, q) || strings.EqualFold(s.StateName, q) {
			return s, nil
		}
	}
	return PopulationRecord{}, fmt.Errorf("state %q: %w", query, ErrUnknownState)
}
