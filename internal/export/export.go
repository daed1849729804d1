// Package export writes ranked population tables as CSV or Excel files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/xuri/excelize/v2"
)

// Header is the column row shared by both formats.
var Header = []string{"rank", "state", "state_code", "year", "population", "share"}

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ParseFormat accepts "csv" or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Filename returns the download name for a year, e.g. us-population-2019.csv.
func Filename(year int, f Format) string {
	return fmt.Sprintf("us-population-%d.%s", year, f)
}

// Write dispatches to WriteCSV or WriteXLSX. heat is only used by XLSX
// and may be nil.
func Write(w io.Writer, f Format, table *render.RankedTable, heat *render.Heatmap) error {
	if f == FormatXLSX {
		return WriteXLSX(w, table, heat)
	}
	return WriteCSV(w, table)
}

// WriteCSV writes the ranked table with a header row.
func WriteCSV(w io.Writer, table *render.RankedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	year := strconv.Itoa(table.Year)
	for _, row := range table.Rows {
		rec := []string{
			strconv.Itoa(row.Rank),
			row.StateName,
			row.StateCode,
			year,
			strconv.FormatInt(row.Population, 10),
			strconv.FormatFloat(row.Share, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with the ranked table on the first sheet and,
// when heat is non-nil, the year-by-state history on a second sheet.
func WriteXLSX(w io.Writer, table *render.RankedTable, heat *render.Heatmap) error {
	f := excelize.NewFile()
	defer f.Close()

	ranked := fmt.Sprintf("Population %d", table.Year)
	if err := f.SetSheetName("Sheet1", ranked); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ranked, cell, h)
	}
	f.SetColWidth(ranked, "B", "B", 22)
	f.SetColWidth(ranked, "E", "E", 14)

	for i, row := range table.Rows {
		r := i + 2
		f.SetCellValue(ranked, fmt.Sprintf("A%d", r), row.Rank)
		f.SetCellValue(ranked, fmt.Sprintf("B%d", r), row.StateName)
		f.SetCellValue(ranked, fmt.Sprintf("C%d", r), row.StateCode)
		f.SetCellValue(ranked, fmt.Sprintf("D%d", r), table.Year)
		f.SetCellValue(ranked, fmt.Sprintf("E%d", r), row.Population)
		f.SetCellValue(ranked, fmt.Sprintf("F%d", r), row.Share)
	}

	if heat != nil {
		if err := writeHistorySheet(f, heat); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

func writeHistorySheet(f *excelize.File, heat *render.Heatmap) error {
	const sheet = "History"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	f.SetCellValue(sheet, "A1", "year")
	for col, name := range heat.States {
		cell, _ := excelize.CoordinatesToCellName(col+2, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for row, year := range heat.Years {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		f.SetCellValue(sheet, cell, year)
		for col, c := range heat.Cells[row] {
			if !c.HasValue {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row+2)
			f.SetCellValue(sheet, cell, c.Population)
		}
	}
	return nil
}
