package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPopulation renders n with thousands separators, e.g. 39,512,223.
func FormatPopulation(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatShare renders a share in [0, 1] as a percentage with one decimal.
func FormatShare(share float64) string {
	return message.NewPrinter(language.English).Sprintf("%.1f%%", share*100)
}
