package render

import (
	"fmt"

	"github.com/JonMunkholm/popdash/internal/core"
)

// CensusURL is the source of the population estimates.
const CensusURL = "https://www.census.gov/data/datasets/time-series/demo/popest/2010s-state-total.html"

// Definition is one glossary entry of the about panel.
type Definition struct {
	Term  string `json:"term"`
	Text  string `json:"text"`
	Value string `json:"value"` // "-" when the year has no earlier year to compare
}

// About is the static explanation panel, filled with the selected year's
// migration figures.
type About struct {
	Title       string       `json:"title"`
	Source      string       `json:"source"`
	SourceURL   string       `json:"source_url"`
	Definitions []Definition `json:"definitions"`
}

// NewAbout builds the about panel text. mig may be nil.
func NewAbout(mig *core.MigrationSummary) About {
	gains, migration := "-", "-"
	threshold := int64(core.DefaultMigrationThreshold)
	if mig != nil {
		threshold = mig.Threshold
		if mig.Comparable {
			gains = describeExtremes(mig)
			migration = fmt.Sprintf("%s in, %s out", FormatShare(mig.InboundShare), FormatShare(mig.OutboundShare))
		}
	}

	return About{
		Title:     "About",
		Source:    "Data: U.S. Census Bureau",
		SourceURL: CensusURL,
		Definitions: []Definition{
			{
				Term:  "Gains/Losses",
				Text:  "States with high inbound or outbound migration for the selected year.",
				Value: gains,
			},
			{
				Term: "States Migration",
				Text: fmt.Sprintf("Percentage of states whose population changed by more than %s people from the previous year.",
					FormatPopulation(threshold)),
				Value: migration,
			},
		},
	}
}

func describeExtremes(mig *core.MigrationSummary) string {
	if len(mig.Gains) == 0 {
		return "-"
	}
	g, l := mig.Gains[0], mig.Losses[0]
	return fmt.Sprintf("%s %+d, %s %+d", g.StateName, g.Delta, l.StateName, l.Delta)
}
