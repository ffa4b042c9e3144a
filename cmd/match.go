package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"facility-matcher/core/config"
	"facility-matcher/core/database"
	"facility-matcher/core/logger"
	"facility-matcher/core/match"
	"facility-matcher/core/table"
	"facility-matcher/feature/matching"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// matchFlags holds the options of the match command.
type matchFlags struct {
	primary         string
	reference       string
	referenceTable  string
	primaryColumn   string
	referenceColumn string
	threshold       float64
	output          string
	primaryLabel    string
	referenceLabel  string
	workers         int
	rawStrings      bool
}

var matchOpts matchFlags

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a primary facility list against a reference list",
	Long: `Matches every facility of the primary list to its best counterpart in the
reference list and writes the reconciled table.

Examples:
  # CSV against XLSX, export to Excel
  match --primary mfl.csv --reference dhis2.xlsx --primary-column HF --reference-column OrgUnit --output out.xlsx

  # Reference list from the registry database
  match --primary mfl.csv --reference-table dhis2_org_units --primary-column HF --reference-column name`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		if !cmd.Flags().Changed("threshold") {
			matchOpts.threshold = cfg.Matching.DefaultThreshold
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return runMatch(ctx, cfg, matchOpts, logg)
	},
}

func init() {
	RootCmd.AddCommand(matchCmd)

	f := matchCmd.Flags()
	f.StringVar(&matchOpts.primary, "primary", "", "Primary (master) list file: .csv, .tsv or .xlsx")
	f.StringVar(&matchOpts.reference, "reference", "", "Reference list file")
	f.StringVar(&matchOpts.referenceTable, "reference-table", "", "Load the reference list from this database table")
	f.StringVar(&matchOpts.primaryColumn, "primary-column", "", "Facility name column in the primary list")
	f.StringVar(&matchOpts.referenceColumn, "reference-column", "", "Facility name column in the reference list")
	f.Float64Var(&matchOpts.threshold, "threshold", 70, "Match threshold (0-100)")
	f.StringVarP(&matchOpts.output, "output", "o", "", "Output file (.csv or .xlsx); defaults to hf_name_matching_results.csv")
	f.StringVar(&matchOpts.primaryLabel, "primary-label", "", "Label for primary columns (e.g. MFL)")
	f.StringVar(&matchOpts.referenceLabel, "reference-label", "", "Label for reference columns (e.g. DHIS2)")
	f.IntVar(&matchOpts.workers, "workers", 0, "Concurrent fuzzy searches (default from config)")
	f.BoolVar(&matchOpts.rawStrings, "raw-strings", false, "Keep every cell as text")

	_ = matchCmd.MarkFlagRequired("primary")
	_ = matchCmd.MarkFlagRequired("primary-column")
	_ = matchCmd.MarkFlagRequired("reference-column")
	matchCmd.MarkFlagsMutuallyExclusive("reference", "reference-table")
	matchCmd.MarkFlagsOneRequired("reference", "reference-table")
}

func readFile(path string, opts table.ReadOptions) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, err
	}
	defer f.Close()
	return table.Read(filepath.Base(path), f, opts)
}

func (m matchFlags) options(cfg match.Config) match.Options {
	opts := cfg.Options(m.threshold)
	if m.primaryLabel != "" {
		opts.PrimaryLabel = m.primaryLabel
	}
	if m.referenceLabel != "" {
		opts.ReferenceLabel = m.referenceLabel
	}
	if m.workers > 0 {
		opts.Workers = m.workers
	}
	return opts
}

func (m matchFlags) outputPath() (string, string) {
	out := m.output
	if out == "" {
		out = matching.ExportBaseName + ".csv"
	}
	format := matching.FormatCSV
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		format = matching.FormatXLSX
	}
	return out, format
}

func runMatch(ctx context.Context, cfg *config.Config, m matchFlags, logg *zap.Logger) error {
	readOpts := table.ReadOptions{RawStrings: m.rawStrings}

	primary, err := readFile(m.primary, readOpts)
	if err != nil {
		return fmt.Errorf("failed to read primary list: %w", err)
	}

	var reference table.Table
	if m.referenceTable != "" {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required for --reference-table: %w", err)
		}
		if reference, err = database.LoadTable(ctx, db, m.referenceTable); err != nil {
			return fmt.Errorf("failed to load reference table: %w", err)
		}
	} else if reference, err = readFile(m.reference, readOpts); err != nil {
		return fmt.Errorf("failed to read reference list: %w", err)
	}

	logg.Info("Lists loaded",
		zap.String("primary", primary.Name),
		zap.Int("primary_rows", primary.Len()),
		zap.String("reference", reference.Name),
		zap.Int("reference_rows", reference.Len()))

	start := time.Now()
	res, err := match.Reconcile(ctx, primary, reference, m.primaryColumn, m.referenceColumn, m.options(cfg.Matching))
	if err != nil {
		return err
	}

	out, format := m.outputPath()
	exp, err := matching.Render(res, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, exp.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logg.Info("Matching completed",
		zap.Int("total", res.Summary.Total),
		zap.Int("matched", res.Summary.Matched),
		zap.Int("unmatched", res.Summary.Unmatched),
		zap.Int("exact", res.Summary.Exact),
		zap.Int("orphans", res.Summary.Orphans),
		zap.String("output", out),
		zap.Duration("execution_time", time.Since(start)))

	return nil
}
