package render

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/popdash/internal/core"
)

func TestRampFor_EveryTheme(t *testing.T) {
	for _, name := range core.Themes {
		r, err := RampFor(name)
		if err != nil {
			t.Errorf("RampFor(%q) error = %v", name, err)
			continue
		}
		stops := rampStops[name]
		if got := r.Hex(0); got != stops[0] {
			t.Errorf("%s: Hex(0) = %s, want %s", name, got, stops[0])
		}
		if got := r.Hex(1); got != stops[len(stops)-1] {
			t.Errorf("%s: Hex(1) = %s, want %s", name, got, stops[len(stops)-1])
		}
	}
	if len(rampStops) != len(core.Themes) {
		t.Errorf("len(rampStops) = %d, want %d", len(rampStops), len(core.Themes))
	}
}

func TestRampFor_Invalid(t *testing.T) {
	if _, err := RampFor("sepia"); !errors.Is(err, core.ErrInvalidTheme) {
		t.Errorf("RampFor(sepia) error = %v, want ErrInvalidTheme", err)
	}
	r, err := RampFor("Viridis")
	if err != nil || r.Name != "viridis" {
		t.Errorf("RampFor(Viridis) = %q, %v", r.Name, err)
	}
}

func TestRamp_AtClamps(t *testing.T) {
	r, _ := RampFor("reds")

	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{1.5, 1},
	}
	for _, tt := range tests {
		if r.Hex(tt.in) != r.Hex(tt.want) {
			t.Errorf("Hex(%v) = %s, want %s", tt.in, r.Hex(tt.in), r.Hex(tt.want))
		}
	}
}

func TestRamp_MonotonicLightness(t *testing.T) {
	// Sequential single-hue ramps darken as values grow.
	for _, name := range []string{"blues", "greens", "reds"} {
		r, _ := RampFor(name)
		prev := 2.0
		for i := 0; i <= 10; i++ {
			l, _, _ := r.At(float64(i) / 10).Lab()
			if l > prev+0.01 {
				t.Errorf("%s: lightness increased at step %d", name, i)
			}
			prev = l
		}
	}
}

func TestDomain_Normalize(t *testing.T) {
	tests := []struct {
		name string
		d    Domain
		v    int64
		want float64
	}{
		{"min", Domain{0, 100}, 0, 0},
		{"max", Domain{0, 100}, 100, 1},
		{"mid", Domain{100, 300}, 200, 0.5},
		{"below", Domain{100, 300}, 50, 0},
		{"above", Domain{100, 300}, 500, 1},
		{"degenerate", Domain{5, 5}, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Normalize(tt.v); got != tt.want {
				t.Errorf("Normalize(%d) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestRamp_Legend(t *testing.T) {
	r, _ := RampFor("blues")
	legend := r.Legend(Domain{0, 100}, 5)
	if len(legend) != 5 {
		t.Fatalf("len = %d, want 5", len(legend))
	}
	if legend[0].Value != 0 || legend[4].Value != 100 || legend[2].Value != 50 {
		t.Errorf("legend values = %+v", legend)
	}
	if legend[0].Fill != "#f7fbff" || legend[4].Fill != "#08306b" {
		t.Errorf("legend fills = %s..%s", legend[0].Fill, legend[4].Fill)
	}
}

func TestFormatPopulation(t *testing.T) {
	if got := FormatPopulation(39512223); got != "39,512,223" {
		t.Errorf("FormatPopulation() = %q", got)
	}
	if got := FormatShare(0.0146); got != "1.5%" {
		t.Errorf("FormatShare() = %q", got)
	}
}
