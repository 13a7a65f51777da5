// Package inspect implements the inspect command: resolve a file's column
// map ahead of a run and list the filter values a primary table offers.
package inspect

import (
	"strings"

	"github.com/spf13/cobra"

	"treeworks/jobrecon/cmd/root"
	"treeworks/jobrecon/internal/columns"
	"treeworks/jobrecon/internal/ingest"
	"treeworks/jobrecon/internal/logging"
	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/recon"
)

var (
	inputFile string
	sourceStr string
)

// Cmd represents the inspect command.
var Cmd = &cobra.Command{
	Use:   "inspect",
	Short: "Resolve a file's columns and show its filterable values",
	Run:   inspectFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (.xlsx or .csv) (required)")
	Cmd.Flags().StringVarP(&sourceStr, "source", "s", string(models.SourcePrimary),
		"Role of the file: primary, secondary or tertiary")
	_ = Cmd.MarkFlagRequired("input")
}

func inspectFunc(cmd *cobra.Command, args []string) {
	src := models.Source(sourceStr)
	switch src {
	case models.SourcePrimary, models.SourceSecondary, models.SourceTertiary:
	default:
		root.Log.Fatalf("Unknown source role %q", sourceStr)
	}

	logger := logging.NewLogrusAdapterFromLogger(root.Log)
	loader := ingest.NewLoader(root.Cfg.Normalizer(), nil, logger)

	table, err := loader.Load(inputFile, src)
	if err != nil {
		root.Log.Fatalf("Error loading %s: %v", inputFile, err)
	}

	root.Log.Infof("Loaded %d records from %s", len(table.Records), inputFile)
	for _, field := range columns.Required(src) {
		if header := table.Column(field); header != "" {
			root.Log.Infof("  %-12s -> %q", field, header)
		} else {
			root.Log.Warnf("  %-12s -> UNRESOLVED", field)
		}
	}
	if missing := unresolvedFields(table, src); len(missing) > 0 {
		root.Log.Fatalf("Required columns not resolved for %s: %s",
			src, strings.Join(missing, ", "))
	}

	if src == models.SourcePrimary {
		opts := recon.CollectFilterOptions(table)
		root.Log.Infof("Months:   %s", strings.Join(opts.Periods, ", "))
		root.Log.Infof("PO types: %s", strings.Join(opts.POTypes, ", "))
		root.Log.Infof("Statuses: %s", strings.Join(opts.Status, ", "))
		root.Log.Infof("Clients:  %s", strings.Join(opts.Clients, ", "))
	}
}

// unresolvedFields lists the required logical fields the table failed to
// resolve, in required order.
func unresolvedFields(t *models.Table, src models.Source) []string {
	var missing []string
	for _, field := range columns.Required(src) {
		if t.Column(field) == "" {
			missing = append(missing, string(field))
		}
	}
	return missing
}
