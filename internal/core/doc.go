// Package core provides the domain logic for the population dashboard.
//
// This package owns the data model and every computation the dashboard
// performs, independent of any UI or transport layer. It is used by the web
// server, the terminal report commands, and the TUI without modification.
//
// # Architecture
//
// The package is organized around a few small concepts:
//
//   - Dataset: the immutable set of [PopulationRecord] values loaded once at
//     start-up and shared read-only by every session.
//   - Selection: the per-session year and color theme, constrained to the
//     years present in the dataset and the fixed [Themes] list.
//   - Filter/sort stage: [YearSubset], [RankByPopulation] and
//     [MaxPopulation], combined by [SelectYear] into a [YearView].
//   - Migration: year-over-year population deltas summarized by [Migration].
//
// # Loading
//
// [LoadCSV] reads a header-first CSV file. Column names are matched
// case-insensitively and a few aliases are accepted:
//
//	year, states (state, state_name), states_code (state_code, code), population
//
// Rows that cannot be parsed are skipped and counted in the [LoadReport]
// unless [LoadOptions.Strict] is set, in which case the first bad row fails
// the load with a [DataLoadError].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DATA001-DATA004: dataset loading (missing file, unreadable, columns, empty)
//   - SEL001-SEL003: selection errors (empty year, invalid year, invalid theme)
//   - DB001-DB002: database source errors
//   - RATE001: request throttling
package core
