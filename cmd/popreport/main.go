// Command popreport prints population reports in the terminal and manages
// the Postgres copy of the dataset.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/popdash/internal/config"
	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/logging"
	"github.com/JonMunkholm/popdash/internal/render"
	"github.com/JonMunkholm/popdash/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dataPath string
	source   string
	logLevel string

	year   string
	theme  string
	limit  int
	format string
	out    string

	importFile string
	table      string
	replace    bool
)

// app is what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	builder render.Builder
}

var cur app

func main() {
	rootCmd := &cobra.Command{
		Use:           "popreport",
		Short:         "US population reports in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset CSV (overrides DATASET_PATH)")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "csv or postgres (overrides DATASET_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	topCmd := &cobra.Command{
		Use:   "top",
		Short: "ranked states for a year",
		Args:  cobra.NoArgs,
		RunE:  runTop,
	}
	topCmd.Flags().StringVar(&year, "year", "", "year (default: most recent)")
	topCmd.Flags().StringVar(&theme, "theme", "", "color theme")
	topCmd.Flags().IntVar(&limit, "limit", 10, "rows to show, 0 for all")

	trendCmd := &cobra.Command{
		Use:   "trend <state>",
		Short: "plot one state's population over time",
		Long:  "Plot one state's population over time. The state may be a code, a name, or a fuzzy fragment such as \"carolina\".",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrend,
	}

	yearsCmd := &cobra.Command{
		Use:   "years",
		Short: "list the years in the dataset",
		Args:  cobra.NoArgs,
		RunE:  runYears,
	}

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "list the color themes",
		Args:  cobra.NoArgs,
		RunE:  runThemes,
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "print the dataset as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE:  runDump,
	}
	dumpCmd.Flags().StringVar(&format, "format", "yaml", "yaml or json")
	dumpCmd.Flags().StringVar(&year, "year", "", "only this year")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "write a year's ranked table as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&year, "year", "", "year (default: most recent)")
	exportCmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: us-population-<year>.<format>)")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&year, "year", "", "starting year")
	tuiCmd.Flags().StringVar(&theme, "theme", "", "starting theme")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "copy a dataset CSV into Postgres",
		Args:  cobra.NoArgs,
		RunE:  runImport,
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV to import (default: DATASET_PATH)")
	importCmd.Flags().StringVar(&table, "table", "", "target table (default: DB_TABLE)")
	importCmd.Flags().BoolVar(&replace, "replace", false, "truncate the table first")

	rootCmd.AddCommand(topCmd, trendCmd, yearsCmd, themesCmd, dumpCmd, exportCmd, tuiCmd, importCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		msg := core.MapError(err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if msg.Code != "ERR000" {
			fmt.Fprintf(os.Stderr, "%s (%s)\n", msg.Action, msg.Code)
		}
		stop()
		os.Exit(1)
	}
}

// setup loads .env and configuration, applies flag overrides, and sends
// logs to stderr so report output stays clean.
func setup(cmd *cobra.Command) error {
	godotenv.Overload()

	if dataPath != "" {
		os.Setenv("DATASET_PATH", dataPath)
	}
	if source != "" {
		os.Setenv("DATASET_SOURCE", source)
	}
	if logLevel != "" {
		os.Setenv("LOG_LEVEL", logLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	cur = app{
		cfg:     cfg,
		logger:  logger,
		builder: render.Builder{MigrationThreshold: cfg.Dataset.MigrationThreshold},
	}
	return nil
}

func loadDataset(ctx context.Context) (*core.Dataset, error) {
	return store.LoadDataset(ctx, cur.cfg, cur.logger)
}
