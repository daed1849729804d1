package core

// error_messages.go maps technical errors to user-friendly messages with a
// code users can quote to support.
//
// # Dataset Errors (DATA001-DATA099)
//
//	DATA001 - Dataset not found: the configured data file does not exist
//	          Action: Check DATASET_PATH
//	DATA002 - Dataset unreadable: the file could not be read or parsed as CSV
//	          Action: Ensure the file is a comma-separated UTF-8 file
//	DATA003 - Missing column: a required column is missing from the header
//	          Action: The file needs year, states, states_code and population
//	DATA004 - Empty dataset: no usable rows were found
//	          Action: Check the file contents
//	DATA005 - Malformed row: a row could not be parsed (strict mode)
//	          Action: Fix the row or disable DATASET_STRICT
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - Empty selection: the selected year has no records
//	SEL002 - Invalid year: the year is not one of the dataset's years
//	SEL003 - Invalid theme: the theme is not one of the supported themes
//	SEL004 - Unknown state: no record has the requested state code or name
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused / reset: the database could not be reached
//	DB002 - Relation missing: the configured table does not exist
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no typed error or pattern matches. Support staff should check
// application logs for the original technical error.
//
// Typed errors (DataLoadError, EmptySelectionError, the selection sentinels)
// are matched with errors.As / errors.Is first. Remaining errors are matched
// case-insensitively by substring; the first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgNotFound = UserMessage{
		Message: "The population dataset was not found",
		Action:  "Check that DATASET_PATH points to the CSV file",
		Code:    "DATA001",
	}
	msgUnreadable = UserMessage{
		Message: "The population dataset could not be read",
		Action:  "Ensure the file is a comma-separated UTF-8 file",
		Code:    "DATA002",
	}
	msgMissingColumn = UserMessage{
		Message: "A required column is missing from the dataset",
		Action:  "The file needs year, states, states_code and population columns",
		Code:    "DATA003",
	}
	msgEmpty = UserMessage{
		Message: "The dataset contains no usable rows",
		Action:  "Check the file contents",
		Code:    "DATA004",
	}
	msgMalformed = UserMessage{
		Message: "The dataset contains a malformed row",
		Action:  "Fix the row or disable DATASET_STRICT to skip it",
		Code:    "DATA005",
	}
	msgEmptySelection = UserMessage{
		Message: "No population data for the selected year",
		Action:  "Pick another year from the sidebar",
		Code:    "SEL001",
	}
	msgInvalidYear = UserMessage{
		Message: "That year is not available",
		Action:  "Choose one of the listed years",
		Code:    "SEL002",
	}
	msgInvalidTheme = UserMessage{
		Message: "That color theme is not available",
		Action:  "Choose one of the listed themes",
		Code:    "SEL003",
	}
	msgUnknownState = UserMessage{
		Message: "No population data for that state",
		Action:  "Use a two-letter state code such as CA",
		Code:    "SEL004",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps untyped technical errors (case-insensitive) to user messages.
// More specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "does not exist (sqlstate 42p01)",
		msg: UserMessage{
			Message: "The population table does not exist",
			Action:  "Run `popreport import` or check DB_TABLE",
			Code:    "DB002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := SelectYear(ds, 1999)
//	msg := MapError(err)
//	// msg.Code == "SEL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var loadErr *DataLoadError
	if errors.As(err, &loadErr) {
		switch loadErr.Kind {
		case LoadNotFound:
			return msgNotFound
		case LoadMissingColumn:
			return msgMissingColumn
		case LoadEmpty:
			return msgEmpty
		case LoadMalformedRow:
			return msgMalformed
		default:
			return msgUnreadable
		}
	}

	if IsEmptySelection(err) {
		return msgEmptySelection
	}
	if errors.Is(err, ErrInvalidYear) {
		return msgInvalidYear
	}
	if errors.Is(err, ErrUnknownState) {
		return msgUnknownState
	}
	if errors.Is(err, ErrInvalidTheme) {
		return msgInvalidTheme
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
