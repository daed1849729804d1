package core

import (
	"errors"
	"fmt"
)

// LoadErrorKind classifies why a dataset could not be loaded.
type LoadErrorKind string

const (
	LoadNotFound      LoadErrorKind = "not found"
	LoadUnreadable    LoadErrorKind = "unreadable"
	LoadMissingColumn LoadErrorKind = "missing required column"
	LoadEmpty         LoadErrorKind = "empty dataset"
	LoadMalformedRow  LoadErrorKind = "malformed row"
)

var errNoRows = errors.New("no usable rows")

// DataLoadError is returned when the dataset is missing, unreadable, lacks
// required columns, or (in strict mode) contains a malformed row.
// It is fatal at start-up.
type DataLoadError struct {
	Source string
	Kind   LoadErrorKind
	Line   int // CSV line for LoadMalformedRow, 0 otherwise
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("load dataset %s: %s", e.Source, e.Kind)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// EmptySelectionError is returned when a selected year has no records.
// The selection domain is derived from the dataset, so this only happens when
// a caller bypasses selection validation.
type EmptySelectionError struct {
	Year int
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("no records for year %d", e.Year)
}

var (
	// ErrInvalidYear is wrapped when a requested year is not in the dataset.
	ErrInvalidYear = errors.New("invalid year selection")

	// ErrInvalidTheme is wrapped when a requested theme is not in Themes.
	ErrInvalidTheme = errors.New("invalid theme selection")

	// ErrUnknownState is wrapped when a state code or name matches no record.
	ErrUnknownState = errors.New("unknown state")
)

// IsEmptySelection reports whether err is (or wraps) an EmptySelectionError.
func IsEmptySelection(err error) bool {
	var target *EmptySelectionError
	return errors.As(err, &target)
}

// IsInvalidSelection reports whether err wraps ErrInvalidYear or ErrInvalidTheme.
func IsInvalidSelection(err error) bool {
	return errors.Is(err, ErrInvalidYear) || errors.Is(err, ErrInvalidTheme)
}
