// Package reconcile implements the reconcile command: load the supplied
// tables, run the engine in the selected mode, report the summary and write
// the requested exports.
package reconcile

import (
	"github.com/spf13/cobra"

	"treeworks/jobrecon/cmd/root"
	"treeworks/jobrecon/internal/columns"
	"treeworks/jobrecon/internal/export"
	"treeworks/jobrecon/internal/ingest"
	"treeworks/jobrecon/internal/logging"
	"treeworks/jobrecon/internal/match"
	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/recon"
	"treeworks/jobrecon/internal/report"

	"github.com/shopspring/decimal"
)

var (
	trackerFile string
	reportFile  string
	ledgerFile  string
	modeStr     string
	exclusions  []string
	noDefaults  bool
	months      []string
	poTypes     []string
	statuses    []string
	clients     []string
	outCSV      string
	outXLSX     string
)

// Cmd represents the reconcile command.
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a reconciliation over the supplied files",
	Long: `Run a reconciliation in one of three modes: primary-secondary (tracker vs
TM report), secondary-tertiary (TM report vs ledger), or three-way.`,
	Run: reconcileFunc,
}

func init() {
	Cmd.Flags().StringVar(&trackerFile, "tracker", "", "Job tracker file (.xlsx or .csv)")
	Cmd.Flags().StringVar(&reportFile, "report", "", "TM report file (.xlsx or .csv)")
	Cmd.Flags().StringVar(&ledgerFile, "ledger", "", "Ledger export file (.csv or .xlsx)")
	Cmd.Flags().StringVarP(&modeStr, "mode", "m", string(models.ModePrimarySecondary),
		"Reconciliation mode: primary-secondary, secondary-tertiary or three-way")
	Cmd.Flags().StringSliceVar(&exclusions, "exclude", nil, "Contractor names to exclude (exact match)")
	Cmd.Flags().BoolVar(&noDefaults, "no-default-exclusions", false, "Do not apply the configured default exclusions")
	Cmd.Flags().StringSliceVar(&months, "months", nil, "Restrict to these month buckets (e.g. 'Mar 2025')")
	Cmd.Flags().StringSliceVar(&poTypes, "po-types", nil, "Restrict to these PO types")
	Cmd.Flags().StringSliceVar(&statuses, "statuses", nil, "Restrict to these statuses")
	Cmd.Flags().StringSliceVar(&clients, "clients", nil, "Restrict to these client names")
	Cmd.Flags().StringVar(&outCSV, "out-csv", "", "Write all mismatches to this CSV file")
	Cmd.Flags().StringVar(&outXLSX, "out-xlsx", "", "Write a drill-down workbook to this file")
}

func reconcileFunc(cmd *cobra.Command, args []string) {
	mode, ok := models.ParseMode(modeStr)
	if !ok {
		root.Log.Fatalf("Unknown mode %q", modeStr)
	}

	cfg := root.Cfg
	logger := logging.NewLogrusAdapterFromLogger(root.Log)

	aliases, err := loadAliases(cfg.Columns.AliasFile)
	if err != nil {
		root.Log.Fatalf("Error loading column aliases: %v", err)
	}

	norm := cfg.Normalizer()
	matcher := match.NewMatcher(norm, cfg.Thresholds())
	tolerance := decimal.NewFromFloat(cfg.Recon.CostTolerance)
	engine := recon.New(norm, matcher, tolerance, logger)
	loader := ingest.NewLoader(norm, aliases, logger)

	in, err := loadInputs(loader)
	if err != nil {
		root.Log.Fatalf("Error loading input files: %v", err)
	}

	excluded := exclusions
	if !noDefaults {
		excluded = append(excluded, cfg.Recon.DefaultExclusions...)
	}
	runCfg := models.RunConfig{
		Mode:       mode,
		Exclusions: models.NewStringSet(excluded...),
		Filters: models.Filters{
			Periods: models.NewStringSet(months...),
			POTypes: models.NewStringSet(poTypes...),
			Status:  models.NewStringSet(statuses...),
			Clients: models.NewStringSet(clients...),
		},
	}

	res, err := engine.Run(in, runCfg)
	if err != nil {
		root.Log.Fatalf("Reconciliation failed: %v", err)
	}

	report.AttachSuggestions(res)
	sum := report.Summarize(res)
	printSummary(sum)

	if outCSV != "" {
		mismatches := report.FlattenMismatches(res)
		if err := export.WriteMismatchCSV(outCSV, mismatches); err != nil {
			root.Log.Fatalf("Error writing mismatch CSV: %v", err)
		}
		root.Log.Infof("Wrote %d mismatches to %s", len(mismatches), outCSV)
	}
	if outXLSX != "" {
		if err := export.WriteWorkbook(outXLSX, res, sum); err != nil {
			root.Log.Fatalf("Error writing workbook: %v", err)
		}
		root.Log.Infof("Wrote drill-down workbook to %s", outXLSX)
	}
}

func loadAliases(path string) (map[models.Source]map[models.LogicalField][]string, error) {
	if path == "" {
		return nil, nil
	}
	return columns.LoadAliasFile(path)
}

// loadInputs loads whichever files were supplied; the engine decides whether
// the selected mode's tables are all present.
func loadInputs(loader *ingest.Loader) (recon.Inputs, error) {
	var in recon.Inputs
	var err error
	if trackerFile != "" {
		if in.Primary, err = loader.Load(trackerFile, models.SourcePrimary); err != nil {
			return in, err
		}
	}
	if reportFile != "" {
		if in.Secondary, err = loader.Load(reportFile, models.SourceSecondary); err != nil {
			return in, err
		}
	}
	if ledgerFile != "" {
		if in.Tertiary, err = loader.Load(ledgerFile, models.SourceTertiary); err != nil {
			return in, err
		}
	}
	return in, nil
}

func printSummary(sum report.Summary) {
	root.Log.Infof("Match rate: %.1f%% (%d matching, %d not matching)",
		sum.MatchPercent, sum.TotalMatched, sum.TotalMismatched)
	for _, cat := range models.AllCategories {
		if n, ok := sum.CategoryCounts[cat]; ok && !cat.IsMatch() {
			root.Log.Infof("  %s: %d", cat.Label(), n)
		}
	}
	if sum.InvalidKeys > 0 {
		root.Log.Infof("%d rows ignored due to blank or invalid job key", sum.InvalidKeys)
	}
	if sum.FilteredOut > 0 {
		root.Log.Infof("%d rows removed by filters/exclusions", sum.FilteredOut)
	}
	if sum.SkippedRows > 0 {
		root.Log.Warnf("%d rows skipped due to processing errors", sum.SkippedRows)
	}
}
