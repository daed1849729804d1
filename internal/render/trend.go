package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/popdash/internal/core"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Trend chart dimensions in pixels.
const (
	TrendWidth  = 640
	TrendHeight = 280
)

// WriteTrendSVG draws a state's population over time as an SVG line chart.
// The line uses the darkest color of the theme.
func WriteTrendSVG(w io.Writer, history []core.PopulationRecord, theme string) error {
	if len(history) == 0 {
		return fmt.Errorf("trend: %w", core.ErrUnknownState)
	}
	ramp, err := RampFor(theme)
	if err != nil {
		return err
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	var top float64
	for i, r := range history {
		xs[i] = float64(r.Year)
		ys[i] = float64(r.Population)
		top = max(top, ys[i])
	}
	// go-chart needs at least two distinct x values
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	line := drawing.ColorFromHex(strings.TrimPrefix(ramp.Hex(0.85), "#"))
	ch := chart.Chart{
		Title:      history[0].StateName,
		Width:      TrendWidth,
		Height:     TrendHeight,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 12}},
		XAxis: chart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Population",
			Range:          &chart.ContinuousRange{Min: 0, Max: max(top*1.1, 1)},
			ValueFormatter: populationFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    history[0].StateCode,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: line,
					StrokeWidth: 2,
					DotColor:    line,
					DotWidth:    3,
				},
			},
		},
	}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render trend for %s: %w", history[0].StateCode, err)
	}
	return nil
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%d", int(f))
	}
	return ""
}

func populationFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return FormatPopulation(int64(f))
	}
	return ""
}
