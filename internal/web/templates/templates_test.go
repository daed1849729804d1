package templates

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/a-h/templ"
)

const sampleCSV = `states,states_code,year,population
California,CA,2018,39461588
Texas,TX,2018,28628666
Wyoming,WY,2018,577601
California,CA,2019,39512223
Texas,TX,2019,28995881
Wyoming,WY,2019,578759
Guam,GU,2019,168485
`

func buildDashboard(t *testing.T) *render.Dashboard {
	t.Helper()
	ds, err := core.ReadCSV(strings.NewReader(sampleCSV), "test.csv", core.LoadOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	d, err := render.Build(ds, core.NewSelection(ds))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDashboard_Renders(t *testing.T) {
	d := buildDashboard(t)

	var buf bytes.Buffer
	if err := Dashboard(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<option value="2019" selected>2019</option>`,
		`<option value="blues" selected>blues</option>`,
		`class="choropleth"`,
		`class="heatmap"`,
		"California: 39,512,223",
		"Not shown on the map: Guam (168,485)",
		"/api/export/2019.xlsx",
		"States Migration",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestChoroplethSVG_Standalone(t *testing.T) {
	d := buildDashboard(t)

	var buf bytes.Buffer
	if err := ChoroplethSVG(d.Choropleth).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("not a standalone svg: %.60s", out)
	}
	if got := strings.Count(out, "<rect"); got < len(render.TileLayout) {
		t.Errorf("rect count = %d, want at least %d tiles", got, len(render.TileLayout))
	}
	if !strings.Contains(out, "NY: no data") {
		t.Error("unstyled tile should say no data")
	}
}

func TestHeatmapSVG_Cells(t *testing.T) {
	d := buildDashboard(t)

	var buf bytes.Buffer
	if err := HeatmapSVG(d.Heatmap).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	// 2 years x 4 states + 5 legend swatches
	if got := strings.Count(out, "<rect"); got != 2*4+5 {
		t.Errorf("rect count = %d, want 13", got)
	}
	if !strings.Contains(out, "Guam 2019: 168,485") {
		t.Error("missing Guam 2019 cell title")
	}
}

func TestEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert(`<script>alert(1)</script>`, "a & b", "X1").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, "a &amp; b") {
		t.Errorf("action not escaped: %s", out)
	}
}

func TestEmptyState(t *testing.T) {
	sel := core.Selection{Year: 2031, Theme: "blues"}
	msg := core.MapError(&core.EmptySelectionError{Year: 2031})

	var buf bytes.Buffer
	if err := EmptyState(sel, []int{2019, 2018}, core.Themes, msg).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No data for 2031") || !strings.Contains(out, "SEL001") {
		t.Errorf("empty state missing message: %s", out)
	}
	if !strings.Contains(out, `name="year"`) {
		t.Error("empty state should keep the year control")
	}
}

func TestTagf(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"number", `<td>%d</td>`, []any{42}, `<td>42</td>`},
		{"string", `<td>%s</td>`, []any{`<b>&</b>`}, `<td>&lt;b&gt;&amp;&lt;/b&gt;</td>`},
		{"attribute", `<a title="%s">`, []any{`x" onclick="y`}, `<a title="x&#34; onclick=&#34;y">`},
		{"url", `<a href="%s">`, []any{templ.URL("javascript:alert(1)")}, `<a href="about:invalid#TemplFailedSanitizationURL">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newHTMLWriter(context.Background(), &buf)
			h.tagf(tt.format, tt.args...)
			if h.err != nil {
				t.Fatal(h.err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("tagf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRankedTable_EscapesStateFields(t *testing.T) {
	table := &render.RankedTable{
		Year:  2019,
		Total: 10,
		Rows: []render.RankedRow{
			{Rank: 1, StateName: `<img src=x onerror=alert(1)>`, StateCode: `"><x`, Population: 10, Share: 1},
		},
	}

	var buf bytes.Buffer
	if err := RankedTable(table, "blues").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<img") || strings.Contains(out, `"><x`) {
		t.Errorf("state fields not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;img src=x onerror=alert(1)&gt;") {
		t.Errorf("escaped state name missing: %s", out)
	}
}
