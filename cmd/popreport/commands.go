package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/export"
	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/JonMunkholm/popdash/internal/store"
	"github.com/JonMunkholm/popdash/internal/tui"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

const barWidth = 24

func runTop(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	sel, err := core.ParseSelection(ds, year, theme)
	if err != nil {
		return err
	}
	d, err := cur.builder.Build(ds, sel)
	if err != nil {
		return err
	}
	printTop(cmd.OutOrStdout(), d, limit)
	return nil
}

// printTop writes the ranked table and the migration summary for d.
func printTop(w io.Writer, d *render.Dashboard, n int) {
	fmt.Fprintln(w, heading.Render(fmt.Sprintf("US population %d", d.Selection.Year)))
	fmt.Fprintln(w, muted.Render(fmt.Sprintf("%d states, total %s", len(d.Table.Rows), render.FormatPopulation(d.Table.Total))))

	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Rank", "State", "Code", "Population", "Of max", ""})
	t.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
	})
	for _, row := range d.Table.Top(n) {
		t.Append([]string{
			strconv.Itoa(row.Rank),
			row.StateName,
			row.StateCode,
			render.FormatPopulation(row.Population),
			render.FormatShare(row.Share),
			strings.Repeat("█", max(int(row.Share*barWidth), 1)),
		})
	}
	t.Render()

	for _, def := range d.About.Definitions {
		if def.Value == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", muted.Render(def.Term+":"), def.Value)
	}
}

func runTrend(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	rec, err := resolveState(ds, args[0])
	if err != nil {
		return err
	}
	printTrend(cmd.OutOrStdout(), rec, ds.StateHistory(rec.StateCode))
	return nil
}

// resolveState matches query against state codes and names, exactly first
// and then fuzzily. The best fuzzy match wins.
func resolveState(ds *core.Dataset, query string) (core.PopulationRecord, error) {
	if rec, err := ds.LookupState(query); err == nil {
		return rec, nil
	}

	states := ds.States()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = strings.ToLower(s.StateName + " " + s.StateCode)
	}

	matches := fuzzy.Find(strings.ToLower(strings.TrimSpace(query)), names)
	if len(matches) == 0 {
		return core.PopulationRecord{}, fmt.Errorf("state %q: %w", query, core.ErrUnknownState)
	}
	return states[matches[0].Index], nil
}

func printTrend(w io.Writer, rec core.PopulationRecord, history []core.PopulationRecord) {
	data := make([]float64, len(history))
	for i, r := range history {
		data[i] = float64(r.Population)
	}

	first, last := history[0], history[len(history)-1]
	caption := fmt.Sprintf("%s (%s) %d-%d", rec.StateName, rec.StateCode, first.Year, last.Year)

	fmt.Fprintln(w, asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	))
	fmt.Fprintf(w, "%s %s -> %s (%+d)\n",
		muted.Render("change:"),
		render.FormatPopulation(first.Population),
		render.FormatPopulation(last.Population),
		last.Population-first.Population,
	)
}

func runYears(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, y := range ds.Years() {
		fmt.Fprintln(w, y)
	}
	return nil
}

func runThemes(cmd *cobra.Command, args []string) error {
	printThemes(cmd.OutOrStdout())
	return nil
}

// printThemes lists every theme with a swatch of its ramp.
func printThemes(w io.Writer) {
	const steps = 12
	for _, name := range core.ThemeNames() {
		ramp, err := render.RampFor(name)
		if err != nil {
			continue
		}
		var swatch strings.Builder
		for i := range steps {
			c := ramp.Hex(float64(i) / (steps - 1))
			swatch.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("  "))
		}
		fmt.Fprintf(w, "%-8s %s\n", name, swatch.String())
	}
}

// dumpDoc is the document written by dump.
type dumpDoc struct {
	Source  string       `json:"source" yaml:"source"`
	Years   []int        `json:"years" yaml:"years"`
	Report  dumpReport   `json:"load_report" yaml:"load_report"`
	Records []dumpRecord `json:"records" yaml:"records"`
}

type dumpReport struct {
	RowsRead   int `json:"rows_read" yaml:"rows_read"`
	Loaded     int `json:"loaded" yaml:"loaded"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
}

type dumpRecord struct {
	Year       int    `json:"year" yaml:"year"`
	State      string `json:"state" yaml:"state"`
	StateCode  string `json:"state_code" yaml:"state_code"`
	Population int64  `json:"population" yaml:"population"`
}

func runDump(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}

	records := ds.Records()
	if year != "" {
		sel, err := core.ParseSelection(ds, year, "")
		if err != nil {
			return err
		}
		records = core.YearSubset(ds, sel.Year)
	}

	return writeDump(cmd.OutOrStdout(), newDumpDoc(ds, records), format)
}

func newDumpDoc(ds *core.Dataset, records []core.PopulationRecord) dumpDoc {
	rep := ds.Report()
	doc := dumpDoc{
		Source: ds.Source(),
		Years:  ds.Years(),
		Report: dumpReport{
			RowsRead:   rep.RowsRead,
			Loaded:     rep.Loaded,
			Skipped:    rep.Skipped,
			Duplicates: rep.Duplicates,
		},
		Records: make([]dumpRecord, len(records)),
	}
	for i, r := range records {
		doc.Records[i] = dumpRecord{Year: r.Year, State: r.StateName, StateCode: r.StateCode, Population: r.Population}
	}
	return doc
}

func writeDump(w io.Writer, doc dumpDoc, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported dump format %q (use yaml or json)", format)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(strings.ToLower(format))
	if err != nil {
		return err
	}

	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	sel, err := core.ParseSelection(ds, year, "")
	if err != nil {
		return err
	}
	d, err := cur.builder.Build(ds, sel)
	if err != nil {
		return err
	}

	path := out
	if path == "" {
		path = export.Filename(sel.Year, f)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(file, f, d.Table, d.Heatmap); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d states)\n", path, len(d.Table.Rows))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	sel, err := core.ParseSelection(ds, year, theme)
	if err != nil {
		return err
	}
	_, err = tui.Run(ds, sel, cur.builder)
	return err
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := cur.cfg
	if cfg.Database.URL == "" {
		return fmt.Errorf("import needs DATABASE_URL")
	}

	path := importFile
	if path == "" {
		path = cfg.Dataset.Path
	}
	target := table
	if target == "" {
		target = cfg.Database.Table
	}

	ds, err := core.LoadCSV(path, core.LoadOptions{Strict: cfg.Dataset.Strict, Logger: cur.logger})
	if err != nil {
		return err
	}

	pool, err := store.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := store.Import(cmd.Context(), pool, target, ds, store.ImportOptions{Replace: replace})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows from %s into %s\n", n, path, target)
	return nil
}
