package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxReportedIssues caps how many skipped rows are kept in a LoadReport.
// Skipped rows beyond the cap are still counted.
const MaxReportedIssues = 50

// LoadOptions controls how a dataset file is read.
type LoadOptions struct {
	// Strict fails the load on the first malformed row or duplicate
	// (state_code, year) pair instead of skipping and logging it.
	Strict bool

	// Logger receives per-row warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// LoadCSV reads the dataset from a CSV file on disk.
func LoadCSV(path string, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		kind := LoadUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			kind = LoadNotFound
		}
		return nil, &DataLoadError{Source: path, Kind: kind, Err: err}
	}
	defer f.Close()

	return ReadCSV(f, path, opts)
}

// ReadCSV reads the dataset from r. source names the input in errors and logs.
//
// A UTF-8 (or UTF-16) byte-order mark is honored and stripped, and invalid
// UTF-8 is replaced with U+FFFD before parsing.
func ReadCSV(r io.Reader, source string, opts LoadOptions) (*Dataset, error) {
	log := opts.logger().With("source", source)

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{Source: source, Kind: LoadEmpty, Err: errors.New("file has no header row")}
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Kind: LoadUnreadable, Err: err}
	}

	cols, err := ValidateHeaders(header, PopulationFieldSpecs)
	if err != nil {
		return nil, &DataLoadError{Source: source, Kind: LoadMissingColumn, Err: err}
	}

	var (
		records []PopulationRecord
		report  LoadReport
		seen    = make(map[string]int) // "CODE/year" -> first line
	)

	skip := func(line int, reason string) {
		report.Skipped++
		if len(report.Issues) < MaxReportedIssues {
			report.Issues = append(report.Issues, RowIssue{Line: line, Reason: reason})
		}
		log.Warn("skipping dataset row", "line", line, "reason", reason)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		line, _ := reader.FieldPos(0)

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, &DataLoadError{Source: source, Kind: LoadUnreadable, Err: err}
			}
			if opts.Strict {
				return nil, &DataLoadError{Source: source, Kind: LoadMalformedRow, Line: parseErr.Line, Err: err}
			}
			report.RowsRead++
			skip(parseErr.Line, parseErr.Err.Error())
			continue
		}

		if isBlankRow(row) {
			continue
		}
		report.RowsRead++

		rec, err := cols.ParseRow(row)
		if err != nil {
			if opts.Strict {
				return nil, &DataLoadError{Source: source, Kind: LoadMalformedRow, Line: line, Err: err}
			}
			skip(line, err.Error())
			continue
		}

		key := rec.StateCode + "/" + strconv.Itoa(rec.Year)
		if first, dup := seen[key]; dup {
			dupErr := fmt.Errorf("duplicate %s for %d (first seen at line %d)", rec.StateCode, rec.Year, first)
			if opts.Strict {
				return nil, &DataLoadError{Source: source, Kind: LoadMalformedRow, Line: line, Err: dupErr}
			}
			report.Duplicates++
			log.Warn("duplicate dataset row kept", "line", line, "state_code", rec.StateCode, "year", rec.Year)
		} else {
			seen[key] = line
		}

		records = append(records, rec)
	}

	ds, err := NewDataset(source, records)
	if err != nil {
		return nil, err
	}

	report.Loaded = len(records)
	ds.report = report

	log.Info("dataset loaded",
		"records", report.Loaded,
		"years", len(ds.years),
		"skipped", report.Skipped,
		"duplicates", report.Duplicates,
	)

	return ds, nil
}
