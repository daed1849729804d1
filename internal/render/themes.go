package render

import (
	"fmt"
	"math"

	"github.com/JonMunkholm/popdash/internal/core"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// NeutralFill is used for regions and cells that have no value.
const NeutralFill = "#e5e7eb"

// rampStops holds the anchor colors of each theme, low to high.
var rampStops = map[string][]string{
	"blues":   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"greens":  {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"reds":    {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"viridis": {"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"magma":   {"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f", "#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf"},
	"inferno": {"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4"},
	"plasma":  {"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"},
	"cividis": {"#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8678", "#a59c74", "#c3b369", "#e1cc55", "#fee838"},
	"turbo": {"#30123b", "#4145ab", "#4675ed", "#39a2fc", "#1bcfd4", "#24eca6", "#61fc6c", "#a4fc3b",
		"#d1e834", "#f3c63a", "#fe9b2d", "#f36315", "#d93806", "#b11901", "#7a0402"},
	"rainbow": {"#96005a", "#0000c8", "#0019ff", "#0098ff", "#2cff96", "#97ff00", "#ffea00", "#ff6f00", "#ff0000"},
}

// ramps is built once from rampStops; every core.Themes entry has one.
var ramps = func() map[string]Ramp {
	out := make(map[string]Ramp, len(rampStops))
	for name, hexes := range rampStops {
		stops := make([]colorful.Color, len(hexes))
		for i, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				panic(fmt.Sprintf("render: bad stop %q in theme %s: %v", h, name, err))
			}
			stops[i] = c
		}
		out[name] = Ramp{Name: name, stops: stops}
	}
	return out
}()

// Ramp is a continuous color scale interpolated in Lab space between
// fixed anchor colors.
type Ramp struct {
	Name  string
	stops []colorful.Color
}

// RampFor returns the ramp for a theme name (case-insensitive).
func RampFor(theme string) (Ramp, error) {
	name, err := core.CanonicalTheme(theme)
	if err != nil {
		return Ramp{}, err
	}
	r, ok := ramps[name]
	if !ok {
		return Ramp{}, fmt.Errorf("theme %q has no color ramp: %w", name, core.ErrInvalidTheme)
	}
	return r, nil
}

// At returns the color at position t, clamped to [0, 1].
func (r Ramp) At(t float64) colorful.Color {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	last := len(r.stops) - 1
	pos := t * float64(last)
	i := int(pos)
	if i >= last {
		return r.stops[last]
	}
	if pos == float64(i) {
		return r.stops[i]
	}
	return r.stops[i].BlendLab(r.stops[i+1], pos-float64(i)).Clamped()
}

// Hex returns At(t) as a #rrggbb string.
func (r Ramp) Hex(t float64) string {
	return r.At(t).Hex()
}

// TextColor picks black or white text for legibility on the fill at t.
func (r Ramp) TextColor(t float64) string {
	l, _, _ := r.At(t).Lab()
	if l > 0.6 {
		return "#111827"
	}
	return "#ffffff"
}

// LegendStop is one swatch of a rendered legend.
type LegendStop struct {
	Value int64  `json:"value"`
	Fill  string `json:"fill"`
}

// Legend samples n evenly spaced colors across the domain.
func (r Ramp) Legend(d Domain, n int) []LegendStop {
	if n < 2 {
		n = 2
	}
	out := make([]LegendStop, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		out[i] = LegendStop{
			Value: d.Min + int64(math.Round(t*float64(d.Max-d.Min))),
			Fill:  r.Hex(t),
		}
	}
	return out
}

// Domain is the numeric range a ramp is stretched over.
type Domain struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Normalize maps v into [0, 1]. A degenerate domain maps everything to 0.
func (d Domain) Normalize(v int64) float64 {
	if d.Max <= d.Min {
		return 0
	}
	t := float64(v-d.Min) / float64(d.Max-d.Min)
	return math.Min(1, math.Max(0, t))
}
