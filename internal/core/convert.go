package core

// convert.go turns raw CSV cells into typed record fields.
//
// Exported census files are rarely pristine:
//   - Excel formula prefixes (="2019")
//   - Surrounding quotes and stray whitespace
//   - Thousands separators in population counts (39,512,223)
//   - Integral floats written by dataframe tools (578759.0)

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue // first occurrence wins
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseYear parses a year cell. Values like "2019.0" are accepted.
func ParseYear(s string) (int, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, fmt.Errorf("empty year")
	}
	if y, err := strconv.Atoi(s); err == nil {
		return checkYear(y)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return checkYear(int(f))
}

func checkYear(y int) (int, error) {
	if y < 1000 || y > 9999 {
		return 0, fmt.Errorf("year %d out of range", y)
	}
	return y, nil
}

// ParsePopulation parses a non-negative whole population count.
// Thousands separators are removed; integral floats are accepted.
func ParsePopulation(s string) (int64, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, fmt.Errorf("empty population")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")

	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative population %d", n)
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative population %s", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("fractional population %s", s)
	}
	return int64(f), nil
}

// NormalizeStateCode upper-cases and trims a state code.
func NormalizeStateCode(s string) string {
	return strings.ToUpper(CleanCell(s))
}
